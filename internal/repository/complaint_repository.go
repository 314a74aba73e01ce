package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
)

// ComplaintRepo owns the complaint policy: required fields, the one
// complaint per bus/route/type/day rule, and the status workflow. It
// does not notify anyone; the handler decides what to send after a
// successful write.
type ComplaintRepo struct {
	store ComplaintStore
	now   func() time.Time
}

func NewComplaintRepo(store ComplaintStore) *ComplaintRepo {
	return &ComplaintRepo{store: store, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (r *ComplaintRepo) WithClock(now func() time.Time) *ComplaintRepo {
	r.now = now
	return r
}

// Submit validates in, rejects same-day duplicates and stores a new pending
// complaint for userEmail. It returns the tracking id.
func (r *ComplaintRepo) Submit(ctx context.Context, in model.ComplaintInput, userEmail string) (string, error) {
	in = in.Trimmed()
	if missing := in.MissingFields(); len(missing) > 0 {
		return "", validationError("missing required fields: %s", strings.Join(missing, ", "))
	}
	day, err := time.Parse(model.DateLayout, in.Date)
	if err != nil {
		return "", validationError("date must be in YYYY-MM-DD format")
	}

	q := DuplicateQuery{
		BusNumber:     in.BusNumber,
		RouteNumber:   in.RouteNumber,
		ComplaintType: in.ComplaintType,
		Date:          in.Date,
		WindowStart:   day,
		WindowEnd:     day.Add(24 * time.Hour),
	}
	existing, err := r.store.FindDuplicate(ctx, q)
	if err != nil {
		return "", fmt.Errorf("duplicate check: %w", err)
	}
	if existing != nil {
		return "", &DuplicateComplaintError{ExistingID: existing.ID}
	}

	now := r.now().UTC()
	c := &model.Complaint{
		BusNumber:     in.BusNumber,
		RouteNumber:   in.RouteNumber,
		ComplaintType: in.ComplaintType,
		Description:   in.Description,
		Location:      in.Location,
		Date:          in.Date,
		Status:        model.StatusPending,
		UserEmail:     userEmail,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.store.CreateComplaint(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// lost the race against a concurrent submission for the same key
			dup := &DuplicateComplaintError{}
			if existing, ferr := r.store.FindDuplicate(ctx, q); ferr == nil && existing != nil {
				dup.ExistingID = existing.ID
			}
			return "", dup
		}
		return "", fmt.Errorf("insert complaint: %w", err)
	}
	return c.ID, nil
}

// GetByID returns the complaint with the given tracking id.
func (r *ComplaintRepo) GetByID(ctx context.Context, id string) (*model.Complaint, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	return r.store.GetComplaint(ctx, id)
}

// GetByUser returns the complaints submitted by email, newest first.
func (r *ComplaintRepo) GetByUser(ctx context.Context, email string) ([]model.Complaint, error) {
	return r.store.ListComplaints(ctx, ComplaintFilter{UserEmail: email})
}

// ListFiltered returns complaints matching every non-empty filter field,
// newest first. Date bounds must be YYYY-MM-DD.
func (r *ComplaintRepo) ListFiltered(ctx context.Context, f ComplaintFilter) ([]model.Complaint, error) {
	f.Status = strings.TrimSpace(f.Status)
	f.Type = strings.TrimSpace(f.Type)
	for name, v := range map[string]string{"startDate": f.StartDate, "endDate": f.EndDate} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, v); err != nil {
			return nil, validationError("%s must be in YYYY-MM-DD format", name)
		}
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return []model.Complaint{}, nil
	}
	return r.store.ListComplaints(ctx, f)
}

// UpdateStatus sets status and remarks and returns the updated complaint.
func (r *ComplaintRepo) UpdateStatus(ctx context.Context, id, status, remarks string) (*model.Complaint, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, validationError("status is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	if err := r.store.UpdateComplaintStatus(ctx, id, status, remarks, r.now().UTC()); err != nil {
		return nil, err
	}
	return r.store.GetComplaint(ctx, id)
}

// Stats returns totals and status/type distributions.
func (r *ComplaintRepo) Stats(ctx context.Context) (model.ComplaintStats, error) {
	return r.store.ComplaintStats(ctx)
}
