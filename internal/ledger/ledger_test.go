package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timesheet/internal/ledger"
	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/tests/testutil"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func request(pid, sid string, seconds int64) ledger.LogRequest {
	return ledger.LogRequest{
		ProjectID:      pid,
		SubprojectID:   sid,
		ProjectName:    "Project " + pid,
		SubprojectName: "Sub " + sid,
		Duration:       seconds,
		Description:    "work",
		StartTime:      t0,
		EndTime:        t0.Add(time.Duration(seconds) * time.Second),
	}
}

func TestLogTimeAppendsAndPersists(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	l, err := ledger.Load(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, l.Entries())

	entry, err := l.LogTime(ctx, request("p1", "s1", 185))
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "2024-03-04", entry.Date)
	assert.Equal(t, "Project p1", entry.ProjectName)
	assert.Equal(t, int64(185), entry.Duration)

	s.ClearCache()
	reloaded, err := ledger.Load(ctx, s)
	require.NoError(t, err)
	require.Len(t, reloaded.Entries(), 1)
	assert.Equal(t, entry.ID, reloaded.Entries()[0].ID)
	assert.True(t, reloaded.Entries()[0].StartTime.Equal(t0))
}

func TestLogTimeRejectsUnresolvedPair(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Load(ctx, testutil.NewTestStore(t))
	require.NoError(t, err)

	req := request("p1", "", 60)
	_, err = l.LogTime(ctx, req)
	assert.ErrorIs(t, err, model.ErrUnresolvedProjectOrSubproject)

	req = request("p1", "s1", 60)
	req.SubprojectName = " "
	_, err = l.LogTime(ctx, req)
	assert.ErrorIs(t, err, model.ErrUnresolvedProjectOrSubproject)
	assert.Empty(t, l.Entries())
}

func TestLogTimeAcceptsLongSessions(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Load(ctx, testutil.NewTestStore(t))
	require.NoError(t, err)

	entry, err := l.LogTime(ctx, request("p1", "s1", ledger.MaxDuration+3600))
	require.NoError(t, err)
	assert.Equal(t, int64(ledger.MaxDuration+3600), entry.Duration)

	_, err = l.LogTime(ctx, request("p1", "s1", -1))
	assert.ErrorIs(t, err, model.ErrInvalidDuration)
	assert.Len(t, l.Entries(), 1)
}

func TestUpdateTime(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Load(ctx, testutil.NewTestStore(t))
	require.NoError(t, err)

	entry, err := l.LogTime(ctx, request("p1", "s1", 60))
	require.NoError(t, err)

	require.NoError(t, l.UpdateTime(ctx, entry.ID, 3600))
	got, ok := l.Get(entry.ID)
	require.True(t, ok)
	assert.Equal(t, int64(3600), got.Duration)

	assert.ErrorIs(t, l.UpdateTime(ctx, entry.ID, -1), model.ErrInvalidDuration)
	assert.ErrorIs(t, l.UpdateTime(ctx, entry.ID, ledger.MaxDuration+1), model.ErrInvalidDuration)
	assert.ErrorIs(t, l.UpdateTime(ctx, "missing", 10), model.ErrLogNotFound)

	got, _ = l.Get(entry.ID)
	assert.Equal(t, int64(3600), got.Duration)
}

func TestRemoveProjectLeavesOtherProjects(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Load(ctx, testutil.NewTestStore(t))
	require.NoError(t, err)

	_, err = l.LogTime(ctx, request("P1", "a", 10))
	require.NoError(t, err)
	keep, err := l.LogTime(ctx, request("P2", "a", 20))
	require.NoError(t, err)

	removed, err := l.RemoveProject(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	require.Len(t, l.Entries(), 1)
	assert.Equal(t, keep.ID, l.Entries()[0].ID)
}

func TestRemoveSubprojectMatchesPair(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Load(ctx, testutil.NewTestStore(t))
	require.NoError(t, err)

	_, err = l.LogTime(ctx, request("P1", "1", 10))
	require.NoError(t, err)
	_, err = l.LogTime(ctx, request("P2", "1", 20))
	require.NoError(t, err)

	removed, err := l.RemoveSubproject(ctx, "P1", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	require.Len(t, l.Entries(), 1)
	assert.Equal(t, "P2", l.Entries()[0].ProjectID)
}

func TestObserversSeeEveryMutation(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Load(ctx, testutil.NewTestStore(t))
	require.NoError(t, err)

	var seen []int
	l.Subscribe(func(_ context.Context, entries []model.TimeLogEntry) error {
		seen = append(seen, len(entries))
		return nil
	})

	e, err := l.LogTime(ctx, request("p", "s", 1))
	require.NoError(t, err)
	require.NoError(t, l.UpdateTime(ctx, e.ID, 2))
	_, err = l.RemoveProject(ctx, "p")
	require.NoError(t, err)
	_, err = l.RemoveProject(ctx, "p")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1, 0}, seen)
}

func TestBetween(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Load(ctx, testutil.NewTestStore(t))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		req := request("p", "s", 60)
		req.StartTime = t0.AddDate(0, 0, i)
		_, err := l.LogTime(ctx, req)
		require.NoError(t, err)
	}

	got := l.Between("2024-03-05", "2024-03-07")
	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-05", got[0].Date)
	assert.Equal(t, "2024-03-07", got[2].Date)
}
