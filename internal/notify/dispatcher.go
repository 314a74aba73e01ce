package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/metrics"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/queue"
)

// Dispatcher is what handlers notify through. Every method is best effort:
// false means the email was not accepted for delivery, and the failure has
// already been logged.
type Dispatcher interface {
	SendConfirmation(ctx context.Context, email, trackingID string, c *model.Complaint) bool
	SendStatusUpdate(ctx context.Context, email, trackingID, status, remarks string) bool
	SendPasswordReset(ctx context.Context, email, token string) bool
}

// Deliverer sends emails. *Mailer implements it.
type Deliverer interface {
	Deliver(ctx context.Context, ev queue.NotificationEvent) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// Publisher hands events to a broker. *queue.Publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, ev queue.NotificationEvent) error
}

const (
	queueSize       = 256
	deliveryTimeout = 30 * time.Second
)

// AsyncDispatcher offloads confirmation and status emails. Events go to the
// broker when one is configured; otherwise, or when publishing fails, a
// bounded pool of local workers delivers them. Password reset emails are
// sent inline because the caller reports their outcome.
type AsyncDispatcher struct {
	mailer    Deliverer
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
	jobs   chan queue.NotificationEvent
	wg     sync.WaitGroup
}

var _ Dispatcher = (*AsyncDispatcher)(nil)

// NewAsyncDispatcher starts the given number of local workers. pub may be nil.
func NewAsyncDispatcher(mailer Deliverer, pub Publisher, workers int, m *metrics.Metrics) *AsyncDispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &AsyncDispatcher{
		mailer:    mailer,
		publisher: pub,
		metrics:   m,
		now:       time.Now,
		jobs:      make(chan queue.NotificationEvent, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *AsyncDispatcher) SendConfirmation(ctx context.Context, email, trackingID string, c *model.Complaint) bool {
	return d.dispatch(ctx, queue.NotificationEvent{
		Kind:       queue.KindConfirmation,
		Email:      email,
		TrackingID: trackingID,
		Complaint:  c,
	})
}

func (d *AsyncDispatcher) SendStatusUpdate(ctx context.Context, email, trackingID, status, remarks string) bool {
	return d.dispatch(ctx, queue.NotificationEvent{
		Kind:       queue.KindStatusUpdate,
		Email:      email,
		TrackingID: trackingID,
		Status:     status,
		Remarks:    remarks,
	})
}

func (d *AsyncDispatcher) SendPasswordReset(ctx context.Context, email, token string) bool {
	err := d.mailer.SendPasswordReset(ctx, email, token)
	d.metrics.Notification("password_reset", err == nil)
	if err != nil {
		slog.Error("password reset email failed", "email", email, "err", err)
		return false
	}
	return true
}

// Deliver sends one event and records the outcome. Workers and the broker
// consumer both deliver through it.
func (d *AsyncDispatcher) Deliver(ctx context.Context, ev queue.NotificationEvent) error {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()
	err := d.mailer.Deliver(ctx, ev)
	d.metrics.Notification(ev.Kind, err == nil)
	return err
}

func (d *AsyncDispatcher) dispatch(ctx context.Context, ev queue.NotificationEvent) bool {
	ev.CreatedAt = d.now().UTC()
	if d.publisher != nil {
		// the request context may end before the broker confirms
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		err := d.publisher.Publish(pctx, ev)
		cancel()
		if err == nil {
			return true
		}
		slog.Warn("publish notification failed, delivering locally",
			"kind", ev.Kind, "tracking_id", ev.TrackingID, "err", err)
	}
	return d.enqueue(ev)
}

func (d *AsyncDispatcher) enqueue(ev queue.NotificationEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		slog.Warn("dispatcher closed, notification dropped", "kind", ev.Kind, "tracking_id", ev.TrackingID)
		return false
	}
	select {
	case d.jobs <- ev:
		return true
	default:
		slog.Error("notification queue full, dropped", "kind", ev.Kind, "tracking_id", ev.TrackingID)
		d.metrics.Notification(ev.Kind, false)
		return false
	}
}

func (d *AsyncDispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.jobs {
		if err := d.Deliver(context.Background(), ev); err != nil {
			slog.Error("notification delivery failed",
				"kind", ev.Kind, "tracking_id", ev.TrackingID, "err", err)
		}
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *AsyncDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}
