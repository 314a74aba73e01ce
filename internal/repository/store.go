package repository

import (
	"context"
	"time"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
)

// UserStore persists users. Implementations normalize nothing; callers pass
// already-normalized emails.
type UserStore interface {
	// CreateUser inserts u and sets u.ID. ErrEmailExists on a taken email.
	CreateUser(ctx context.Context, u *model.User) error
	// GetUserByEmail returns ErrNotFound when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateUserPassword returns ErrNotFound when no user has the email.
	UpdateUserPassword(ctx context.Context, email, passwordHash string) error
}

// ComplaintStore persists complaints.
type ComplaintStore interface {
	// CreateComplaint inserts c and sets c.ID. ErrDuplicate when the
	// (bus_number, route_number, complaint_type, date) unique key is taken.
	CreateComplaint(ctx context.Context, c *model.Complaint) error
	// FindDuplicate returns the oldest complaint matching q, or nil.
	FindDuplicate(ctx context.Context, q DuplicateQuery) (*model.Complaint, error)
	// GetComplaint returns ErrNotFound for unknown or malformed ids.
	GetComplaint(ctx context.Context, id string) (*model.Complaint, error)
	// ListComplaints returns matches newest first; never nil.
	ListComplaints(ctx context.Context, f ComplaintFilter) ([]model.Complaint, error)
	// UpdateComplaintStatus returns ErrNotFound for unknown ids.
	UpdateComplaintStatus(ctx context.Context, id, status, remarks string, at time.Time) error
	ComplaintStats(ctx context.Context) (model.ComplaintStats, error)
}

// DuplicateQuery selects complaints for the same bus, route and type that
// were either created inside [WindowStart, WindowEnd) or concern the same
// trip date.
type DuplicateQuery struct {
	BusNumber     string
	RouteNumber   string
	ComplaintType string
	Date          string
	WindowStart   time.Time
	WindowEnd     time.Time
}

// ComplaintFilter is an AND of the non-empty fields. StartDate and EndDate
// are inclusive YYYY-MM-DD bounds on the trip date.
type ComplaintFilter struct {
	Status    string
	Type      string
	UserEmail string
	StartDate string
	EndDate   string
}
