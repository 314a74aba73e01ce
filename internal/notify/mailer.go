// Package notify renders and sends the complaint emails: submission
// confirmation, status update and password reset.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/config"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/logging"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/queue"
)

// Sender delivers built messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

var (
	confirmationTmpl = template.Must(template.New("confirmation").Parse(`Dear User,

Thank you for submitting your complaint. Your complaint has been successfully registered in our system.

Tracking ID: {{.TrackingID}}

Complaint Details:
- Bus Number: {{.Complaint.BusNumber}}
- Route Number: {{.Complaint.RouteNumber}}
- Type: {{.Complaint.ComplaintType}}
- Location: {{.Complaint.Location}}
- Date: {{.Complaint.Date}}

You can track the status of your complaint using the tracking ID on our website.

Best regards,
Bus Complaint Management System`))

	statusTmpl = template.Must(template.New("status").Parse(`Dear User,

This is to inform you that the status of your complaint has been updated.

Tracking ID: {{.TrackingID}}
New Status: {{.Status}}

Remarks: {{if .Remarks}}{{.Remarks}}{{else}}No additional remarks{{end}}

You can track your complaint using the tracking ID on our website.

Best regards,
Bus Complaint Management System`))

	resetTmpl = template.Must(template.New("reset").Parse(`Dear User,

We received a request to reset the password of your account.

Use the link below to choose a new password. The link expires in one hour.

{{.Link}}

If you did not request a password reset, you can ignore this email.

Best regards,
Bus Complaint Management System`))
)

// Mailer renders templates and hands messages to a Sender. With no sender
// configured it only logs, which keeps development setups working.
type Mailer struct {
	sender      Sender
	from        string
	frontendURL string
}

// NewMailer builds a Mailer from SMTP settings. An empty host disables
// delivery.
func NewMailer(cfg config.SMTPConfig, frontendURL string) *Mailer {
	m := &Mailer{from: cfg.From, frontendURL: frontendURL}
	if cfg.Host != "" {
		m.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// NewMailerWithSender is used by tests and alternative transports.
func NewMailerWithSender(s Sender, from, frontendURL string) *Mailer {
	return &Mailer{sender: s, from: from, frontendURL: frontendURL}
}

// Deliver sends the email described by ev.
func (m *Mailer) Deliver(ctx context.Context, ev queue.NotificationEvent) error {
	switch ev.Kind {
	case queue.KindConfirmation:
		if ev.Complaint == nil {
			return fmt.Errorf("confirmation for %s without complaint", ev.TrackingID)
		}
		return m.send(ctx, ev.Email, "Complaint Submission Confirmation", confirmationTmpl, ev)
	case queue.KindStatusUpdate:
		return m.send(ctx, ev.Email, "Complaint Status Update", statusTmpl, ev)
	default:
		return fmt.Errorf("unknown notification kind %q", ev.Kind)
	}
}

// SendPasswordReset mails a reset link carrying token.
func (m *Mailer) SendPasswordReset(ctx context.Context, email, token string) error {
	data := struct{ Link string }{Link: m.frontendURL + "/reset-password?token=" + url.QueryEscape(token)}
	return m.send(ctx, email, "Password Reset Request", resetTmpl, data)
}

func (m *Mailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	log := logging.FromContext(ctx).With(slog.String("to", to), slog.String("subject", subject))

	if m.sender == nil {
		// bodies can carry reset tokens; keep them out of info logs
		log.Info("smtp disabled, email not sent")
		log.Debug("unsent email body", slog.String("body", body.String()))
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body.String())

	if err := m.sender.DialAndSend(msg); err != nil {
		log.Error("email send failed", slog.Any("err", err))
		return fmt.Errorf("send %s: %w", tmpl.Name(), err)
	}
	log.Info("email sent")
	return nil
}
