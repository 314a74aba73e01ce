package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

const complaintCols = `id, bus_number, route_number, complaint_type, description, location,
	trip_date, status, remarks, user_email, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (*model.Complaint, error) {
	var (
		c                model.Complaint
		created, updated string
	)
	if err := row.Scan(&c.ID, &c.BusNumber, &c.RouteNumber, &c.ComplaintType, &c.Description,
		&c.Location, &c.Date, &c.Status, &c.Remarks, &c.UserEmail, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTS(created); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTS(updated); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComplaint inserts c and assigns its ID.
func (s *Store) CreateComplaint(ctx context.Context, c *model.Complaint) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO complaints (`+complaintCols+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, c.BusNumber, c.RouteNumber, c.ComplaintType, c.Description, c.Location,
		c.Date, c.Status, c.Remarks, c.UserEmail, formatTS(c.CreatedAt), formatTS(c.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	c.ID = id
	return nil
}

// FindDuplicate returns the oldest complaint matching q, or nil.
func (s *Store) FindDuplicate(ctx context.Context, q repository.DuplicateQuery) (*model.Complaint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+complaintCols+` FROM complaints
		 WHERE bus_number=? AND route_number=? AND complaint_type=?
		   AND ((created_at >= ? AND created_at < ?) OR trip_date=?)
		 ORDER BY created_at ASC LIMIT 1`,
		q.BusNumber, q.RouteNumber, q.ComplaintType,
		formatTS(q.WindowStart), formatTS(q.WindowEnd), q.Date)
	c, err := scanComplaint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// GetComplaint fetches one complaint by id.
func (s *Store) GetComplaint(ctx context.Context, id string) (*model.Complaint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+complaintCols+` FROM complaints WHERE id=? LIMIT 1`, id)
	c, err := scanComplaint(row)
	if err != nil {
		return nil, wrapError(err)
	}
	return c, nil
}

// ListComplaints returns complaints matching f, newest first.
func (s *Store) ListComplaints(ctx context.Context, f repository.ComplaintFilter) ([]model.Complaint, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v string) {
		where = append(where, cond)
		args = append(args, v)
	}
	if f.Status != "" {
		add("status = ?", f.Status)
	}
	if f.Type != "" {
		add("complaint_type = ?", f.Type)
	}
	if f.UserEmail != "" {
		add("user_email = ?", f.UserEmail)
	}
	if f.StartDate != "" {
		add("trip_date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		add("trip_date <= ?", f.EndDate)
	}

	query := `SELECT ` + complaintCols + ` FROM complaints`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateComplaintStatus sets status, remarks and updated_at.
func (s *Store) UpdateComplaintStatus(ctx context.Context, id, status, remarks string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE complaints SET status=?, remarks=?, updated_at=? WHERE id=?",
		status, remarks, formatTS(at), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ComplaintStats counts complaints overall, by status and by type.
func (s *Store) ComplaintStats(ctx context.Context) (model.ComplaintStats, error) {
	var st model.ComplaintStats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM complaints").Scan(&st.Total); err != nil {
		return st, err
	}
	var err error
	if st.StatusDistribution, err = s.groupCount(ctx, "status"); err != nil {
		return st, err
	}
	if st.TypeDistribution, err = s.groupCount(ctx, "complaint_type"); err != nil {
		return st, err
	}
	return st, nil
}

// groupCount is only called with the fixed column names above.
func (s *Store) groupCount(ctx context.Context, col string) ([]model.Bucket, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+col+", COUNT(*) FROM complaints GROUP BY "+col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Bucket{}
	for rows.Next() {
		var b model.Bucket
		if err := rows.Scan(&b.Value, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
