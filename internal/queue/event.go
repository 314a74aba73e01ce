// Package queue carries notification events over RabbitMQ: the payload,
// a publisher used by the API and a consumer that hands deliveries to the
// mailer.
package queue

import (
	"time"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
)

// NotificationQueue is the durable queue notification events are routed to.
const NotificationQueue = "complaint.notifications"

// Event kinds.
const (
	KindConfirmation = "confirmation"
	KindStatusUpdate = "status_update"
)

// NotificationEvent is published after a complaint is stored or its status
// changes. It holds everything the mailer needs so consumers never query the
// primary database.
type NotificationEvent struct {
	Kind       string           `json:"kind"`
	Email      string           `json:"email"`
	TrackingID string           `json:"tracking_id"`
	Complaint  *model.Complaint `json:"complaint,omitempty"` // confirmation only
	Status     string           `json:"status,omitempty"`    // status_update only
	Remarks    string           `json:"remarks,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
