package model

import (
	"strings"
	"time"
)

// Complaint statuses. The set is open: admins may store any non-empty
// value, these are the ones the workflow knows about.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// DateLayout is the wire and storage format of a complaint's trip date.
const DateLayout = "2006-01-02"

// Complaint is a rider's report about a bus trip. ID doubles as the public
// tracking id. Status and Remarks change only through admin action.
type Complaint struct {
	ID            string    `json:"id"`
	BusNumber     string    `json:"bus_number"`
	RouteNumber   string    `json:"route_number"`
	ComplaintType string    `json:"complaint_type"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Date          string    `json:"date"` // trip date, YYYY-MM-DD
	Status        string    `json:"status"`
	Remarks       string    `json:"remarks"`
	UserEmail     string    `json:"user_email"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ComplaintInput is the rider-supplied part of a complaint.
type ComplaintInput struct {
	BusNumber     string `json:"bus_number"`
	RouteNumber   string `json:"route_number"`
	ComplaintType string `json:"complaint_type"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	Date          string `json:"date"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (in ComplaintInput) Trimmed() ComplaintInput {
	return ComplaintInput{
		BusNumber:     strings.TrimSpace(in.BusNumber),
		RouteNumber:   strings.TrimSpace(in.RouteNumber),
		ComplaintType: strings.TrimSpace(in.ComplaintType),
		Description:   strings.TrimSpace(in.Description),
		Location:      strings.TrimSpace(in.Location),
		Date:          strings.TrimSpace(in.Date),
	}
}

// MissingFields lists the wire names of required fields that are empty.
func (in ComplaintInput) MissingFields() []string {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"bus_number", in.BusNumber},
		{"route_number", in.RouteNumber},
		{"complaint_type", in.ComplaintType},
		{"description", in.Description},
		{"location", in.Location},
		{"date", in.Date},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Bucket is one group of an aggregation: the grouped value and its count.
// The `_id` key matches the document-store aggregation output clients
// already consume.
type Bucket struct {
	Value string `json:"_id"`
	Count int64  `json:"count"`
}

// ComplaintStats summarizes the complaint collection for the admin dashboard.
type ComplaintStats struct {
	Total              int64    `json:"total_complaints"`
	StatusDistribution []Bucket `json:"status_distribution"`
	TypeDistribution   []Bucket `json:"type_distribution"`
}
