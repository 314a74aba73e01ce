package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/database"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/model"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository/sqlstore"
)

func newSQLStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	s := sqlstore.New(db)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// clock returns a time source that advances by step on every call.
func clock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

func sampleInput() model.ComplaintInput {
	return model.ComplaintInput{
		BusNumber:     "42",
		RouteNumber:   "7A",
		ComplaintType: "delay",
		Description:   "Bus was 40 minutes late",
		Location:      "Central Station",
		Date:          "2024-01-10",
	}
}

func newComplaintRepo(t *testing.T) *repository.ComplaintRepo {
	start := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	return repository.NewComplaintRepo(newSQLStore(t)).WithClock(clock(start, time.Minute))
}

func TestSubmit_CreatesPending(t *testing.T) {
	ctx := context.Background()
	repo := newComplaintRepo(t)

	id, err := repo.Submit(ctx, sampleInput(), "rider@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	c, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, c.Status)
	assert.Equal(t, "rider@example.com", c.UserEmail)
	assert.Equal(t, "", c.Remarks)
	assert.True(t, c.CreatedAt.Equal(c.UpdatedAt))
}

func TestSubmit_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := newComplaintRepo(t)

	first, err := repo.Submit(ctx, sampleInput(), "a@example.com")
	require.NoError(t, err)

	_, err = repo.Submit(ctx, sampleInput(), "b@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	var dup *repository.DuplicateComplaintError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, first, dup.ExistingID)

	all, err := repo.ListFiltered(ctx, repository.ComplaintFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	other := sampleInput()
	other.Date = "2024-01-11"
	_, err = repo.Submit(ctx, other, "a@example.com")
	assert.NoError(t, err)

	other = sampleInput()
	other.ComplaintType = "rude driver"
	_, err = repo.Submit(ctx, other, "a@example.com")
	assert.NoError(t, err)
}

func TestSubmit_DuplicateAfterTrim(t *testing.T) {
	ctx := context.Background()
	repo := newComplaintRepo(t)

	_, err := repo.Submit(ctx, sampleInput(), "a@example.com")
	require.NoError(t, err)

	in := sampleInput()
	in.BusNumber = "  42 "
	_, err = repo.Submit(ctx, in, "a@example.com")
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestSubmit_Validation(t *testing.T) {
	ctx := context.Background()
	repo := newComplaintRepo(t)

	in := sampleInput()
	in.Location = "   "
	in.Description = ""
	_, err := repo.Submit(ctx, in, "a@example.com")
	assert.ErrorIs(t, err, repository.ErrValidation)
	assert.Contains(t, err.Error(), "description, location")

	in = sampleInput()
	in.Date = "10/01/2024"
	_, err = repo.Submit(ctx, in, "a@example.com")
	assert.ErrorIs(t, err, repository.ErrValidation)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newComplaintRepo(t)
	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByID(context.Background(), " ")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetByUser_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newComplaintRepo(t)

	var ids []string
	for _, typ := range []string{"delay", "cleanliness", "overcrowding"} {
		in := sampleInput()
		in.ComplaintType = typ
		id, err := repo.Submit(ctx, in, "me@example.com")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	in := sampleInput()
	in.BusNumber = "9"
	_, err := repo.Submit(ctx, in, "someone@example.com")
	require.NoError(t, err)

	mine, err := repo.GetByUser(ctx, "me@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, ids[2], mine[0].ID)
	assert.Equal(t, ids[0], mine[2].ID)

	none, err := repo.GetByUser(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListFiltered(t *testing.T) {
	ctx := context.Background()
	repo := newComplaintRepo(t)

	for i, date := range []string{"2024-01-01", "2024-01-15", "2024-02-01"} {
		in := sampleInput()
		in.Date = date
		if i == 1 {
			in.ComplaintType = "cleanliness"
		}
		_, err := repo.Submit(ctx, in, "a@example.com")
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter repository.ComplaintFilter
		want   int
	}{
		{"no filter", repository.ComplaintFilter{}, 3},
		{"status", repository.ComplaintFilter{Status: model.StatusPending}, 3},
		{"unknown status", repository.ComplaintFilter{Status: "archived"}, 0},
		{"type", repository.ComplaintFilter{Type: "delay"}, 2},
		{"inclusive range", repository.ComplaintFilter{StartDate: "2024-01-01", EndDate: "2024-01-15"}, 2},
		{"start only", repository.ComplaintFilter{StartDate: "2024-01-02"}, 2},
		{"end only", repository.ComplaintFilter{EndDate: "2024-01-01"}, 1},
		{"type and range", repository.ComplaintFilter{Type: "delay", StartDate: "2024-01-10"}, 1},
		{"inverted range", repository.ComplaintFilter{StartDate: "2024-03-01", EndDate: "2024-01-01"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListFiltered(ctx, tt.filter)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}

	_, err := repo.ListFiltered(ctx, repository.ComplaintFilter{StartDate: "yesterday"})
	assert.ErrorIs(t, err, repository.ErrValidation)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := newComplaintRepo(t)

	id, err := repo.Submit(ctx, sampleInput(), "a@example.com")
	require.NoError(t, err)

	c, err := repo.UpdateStatus(ctx, id, model.StatusResolved, "fixed")
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, c.Status)
	assert.Equal(t, "fixed", c.Remarks)
	assert.True(t, c.UpdatedAt.After(c.CreatedAt))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, got.Status)

	_, err = repo.UpdateStatus(ctx, id, " ", "")
	assert.ErrorIs(t, err, repository.ErrValidation)

	_, err = repo.UpdateStatus(ctx, "missing", model.StatusRejected, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	repo := newComplaintRepo(t)

	var ids []string
	for _, typ := range []string{"delay", "delay", "cleanliness"} {
		in := sampleInput()
		in.ComplaintType = typ
		if len(ids) == 1 {
			in.BusNumber = "43"
		}
		id, err := repo.Submit(ctx, in, "a@example.com")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := repo.UpdateStatus(ctx, ids[0], model.StatusInProgress, "")
	require.NoError(t, err)

	st, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, st.Total)
	assert.ElementsMatch(t, []model.Bucket{
		{Value: model.StatusPending, Count: 2},
		{Value: model.StatusInProgress, Count: 1},
	}, st.StatusDistribution)
	assert.ElementsMatch(t, []model.Bucket{
		{Value: "delay", Count: 2},
		{Value: "cleanliness", Count: 1},
	}, st.TypeDistribution)
}

// racyStore hides existing records from the first duplicate check so the
// insert hits the unique key.
type racyStore struct {
	repository.ComplaintStore
	checks int
}

func (s *racyStore) FindDuplicate(ctx context.Context, q repository.DuplicateQuery) (*model.Complaint, error) {
	s.checks++
	if s.checks == 1 {
		return nil, nil
	}
	return s.ComplaintStore.FindDuplicate(ctx, q)
}

func TestSubmit_UniqueKeyClosesRace(t *testing.T) {
	ctx := context.Background()
	store := newSQLStore(t)
	first, err := repository.NewComplaintRepo(store).Submit(ctx, sampleInput(), "a@example.com")
	require.NoError(t, err)

	racy := &racyStore{ComplaintStore: store}
	_, err = repository.NewComplaintRepo(racy).Submit(ctx, sampleInput(), "b@example.com")
	var dup *repository.DuplicateComplaintError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, first, dup.ExistingID)
	assert.Equal(t, 2, racy.checks)
}
