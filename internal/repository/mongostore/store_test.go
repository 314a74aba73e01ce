package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

// testStore uses a throwaway database and skips when MongoDB is unreachable.
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	s, err := NewStore(uri, "complaint_system_test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	ctx := context.Background()
	require.NoError(t, s.db.Drop(ctx))
	require.NoError(t, s.ensureIndexes(ctx))

	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close()
	})
	return s
}

func newComplaint(typ, date string, created time.Time) *model.Complaint {
	return &model.Complaint{
		BusNumber:     "42",
		RouteNumber:   "7A",
		ComplaintType: typ,
		Description:   "bus never came",
		Location:      "Depot",
		Date:          date,
		Status:        model.StatusPending,
		UserEmail:     "rider@example.com",
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestUserCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u := &model.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "h1", Role: model.RoleAdmin,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Len(t, u.ID, 24)

	err := s.CreateUser(ctx, &model.User{Name: "B", Email: "ann@example.com", PasswordHash: "x", Role: model.RoleUser})
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	got, err := s.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, model.RoleAdmin, got.Role)
	assert.True(t, got.CreatedAt.Equal(u.CreatedAt))

	require.NoError(t, s.UpdateUserPassword(ctx, "ann@example.com", "h2"))
	got, err = s.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.UpdateUserPassword(ctx, "missing@example.com", "x"), repository.ErrNotFound)
}

func TestComplaintCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	c := newComplaint("delay", "2024-01-10", created)
	require.NoError(t, s.CreateComplaint(ctx, c))
	assert.ErrorIs(t, s.CreateComplaint(ctx, newComplaint("delay", "2024-01-10", created)), repository.ErrDuplicate)

	got, err := s.GetComplaint(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, "2024-01-10", got.Date)

	_, err = s.GetComplaint(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.GetComplaint(ctx, "0123456789abcdef01234567")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	later := created.Add(time.Hour)
	require.NoError(t, s.UpdateComplaintStatus(ctx, c.ID, model.StatusResolved, "fixed", later))
	got, err = s.GetComplaint(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "fixed", got.Remarks)
	assert.True(t, got.UpdatedAt.Equal(later))
	assert.ErrorIs(t, s.UpdateComplaintStatus(ctx, "0123456789abcdef01234567", "x", "", later), repository.ErrNotFound)
}

func TestFindDuplicateAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	first := newComplaint("delay", "2024-01-09", day.Add(10*time.Hour))
	second := newComplaint("cleanliness", "2024-01-12", day.Add(11*time.Hour))
	require.NoError(t, s.CreateComplaint(ctx, first))
	require.NoError(t, s.CreateComplaint(ctx, second))

	dup, err := s.FindDuplicate(ctx, repository.DuplicateQuery{
		BusNumber: "42", RouteNumber: "7A", ComplaintType: "delay",
		Date: "2024-01-10", WindowStart: day, WindowEnd: day.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, dup)
	assert.Equal(t, first.ID, dup.ID)

	dup, err = s.FindDuplicate(ctx, repository.DuplicateQuery{
		BusNumber: "42", RouteNumber: "7A", ComplaintType: "delay",
		Date: "2024-02-01", WindowStart: day.AddDate(0, 1, 0), WindowEnd: day.AddDate(0, 1, 1),
	})
	require.NoError(t, err)
	assert.Nil(t, dup)

	all, err := s.ListComplaints(ctx, repository.ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	ranged, err := s.ListComplaints(ctx, repository.ComplaintFilter{StartDate: "2024-01-10"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, second.ID, ranged[0].ID)

	none, err := s.ListComplaints(ctx, repository.ComplaintFilter{Status: "escalated"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	st, err := s.ComplaintStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.Total)
	assert.ElementsMatch(t, []model.Bucket{{Value: "pending", Count: 2}}, st.StatusDistribution)
	assert.Len(t, st.TypeDistribution, 2)
}
