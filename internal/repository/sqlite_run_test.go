package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(db)
	ctx := context.Background()

	run := testutil.NewTestRun(
		testutil.WithCounts(3, 1, 2),
		testutil.WithWarnings("tasks[0].duration_minutes: defaulted to 60", "unknown timezone"),
	)
	run.Fallback = true
	require.NoError(t, repo.Create(ctx, run))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, 4, got.TaskCount)
	assert.Equal(t, 3, got.PlacedCount)
	assert.Equal(t, 1, got.UnplacedCount)
	assert.Equal(t, 2, got.BreakCount)
	assert.True(t, got.Fallback)
	assert.JSONEq(t, string(run.RequestJSON), string(got.RequestJSON))
	assert.Equal(t, run.Warnings, got.Warnings)
}

func TestRunRepo_CreateAssignsIDAndTime(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(db)
	fixed := time.Date(2025, 11, 22, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	run := &domain.ScheduleRun{Timezone: "UTC", RequestJSON: []byte("{}"), ResponseJSON: []byte("{}")}
	require.NoError(t, repo.Create(context.Background(), run))

	assert.NotEmpty(t, run.ID)
	assert.True(t, fixed.Equal(run.CreatedAt))
}

func TestRunRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(db)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunRepo_LatestAndListRecent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(db)
	ctx := context.Background()
	base := time.Date(2025, 11, 22, 8, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		run := testutil.NewTestRun(testutil.WithRunID(id), testutil.WithCreatedAt(base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, repo.Create(ctx, run))
	}

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", latest.ID)

	runs, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)

	runs, err = repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRunRepo_DuplicateIDRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestRun(testutil.WithRunID("dup"))))
	assert.Error(t, repo.Create(ctx, testutil.NewTestRun(testutil.WithRunID("dup"))))
}

func TestRunRepo_Create_RollsBackOnWarningFailure(t *testing.T) {
	db := testutil.NewTestDB(t)
	boom := errors.New("disk full")
	uow := &testutil.FaultyUoW{DB: db, FailAt: 2, Err: boom}
	repo := NewSQLiteRunRepoWithUoW(db, uow)
	ctx := context.Background()

	run := testutil.NewTestRun(testutil.WithWarnings("first"))
	err := repo.Create(ctx, run)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, uow.Execs)

	_, err = repo.GetByID(ctx, run.ID)
	assert.ErrorIs(t, err, ErrNotFound, "run row must not survive a failed warning insert")
}
