package tracker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/store"
	"github.com/nhle/timesheet/internal/timer"
	"github.com/nhle/timesheet/internal/tracker"
	"github.com/nhle/timesheet/tests/testutil"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func open(t *testing.T) (*tracker.Tracker, *testutil.Clock, *store.SQLiteStore) {
	t.Helper()
	s := testutil.NewTestStore(t)
	clock := testutil.NewClock(t0)
	tr, err := tracker.Open(context.Background(), s, tracker.WithClock(clock.Now))
	require.NoError(t, err)
	return tr, clock, s
}

func TestLogScenario(t *testing.T) {
	ctx := context.Background()
	tr, clock, _ := open(t)

	// Website Redesign / Wireframing.
	require.NoError(t, tr.Select(ctx, "1", "1-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Set(t0.Add(125 * time.Second))
	elapsed, err := tr.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(125), elapsed)

	clock.Set(t0.Add(200 * time.Second))
	require.NoError(t, tr.Start(ctx))
	clock.Set(t0.Add(260 * time.Second))

	pending, err := tr.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(185), pending.Duration)

	entry, err := tr.ConfirmLog(ctx, "draft review")
	require.NoError(t, err)
	assert.Equal(t, int64(185), entry.Duration)
	assert.Equal(t, "draft review", entry.Description)
	assert.Equal(t, "Website Redesign", entry.ProjectName)
	assert.Equal(t, "Wireframing", entry.SubprojectName)
	assert.True(t, entry.StartTime.Equal(t0))
	assert.True(t, entry.EndTime.Equal(t0.Add(260*time.Second)))

	require.Len(t, tr.Ledger().Entries(), 1)
	assert.Equal(t, timer.Idle, tr.Timer().State())
	assert.Equal(t, int64(0), tr.Timer().Snapshot().ElapsedTime)
	assert.Nil(t, tr.Pending())

	p, _ := tr.Registry().Project("1")
	assert.Equal(t, int64(185), p.TotalTime)
}

func TestStartRequiresCompleteSelection(t *testing.T) {
	ctx := context.Background()
	tr, _, _ := open(t)

	assert.ErrorIs(t, tr.Start(ctx), model.ErrInvalidSelection)
	require.NoError(t, tr.Select(ctx, "1", ""))
	assert.ErrorIs(t, tr.Start(ctx), model.ErrInvalidSelection)

	assert.ErrorIs(t, tr.Select(ctx, "99", ""), model.ErrProjectNotFound)
	assert.ErrorIs(t, tr.Select(ctx, "1", "2-1"), model.ErrSubprojectNotFound)
}

func TestCancelLogDiscardsSession(t *testing.T) {
	ctx := context.Background()
	tr, clock, _ := open(t)

	require.NoError(t, tr.Select(ctx, "2", "2-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(time.Minute)
	_, err := tr.Stop(ctx)
	require.NoError(t, err)

	require.NoError(t, tr.CancelLog(ctx))
	assert.Empty(t, tr.Ledger().Entries())
	assert.Equal(t, timer.Idle, tr.Timer().State())
	assert.ErrorIs(t, tr.CancelLog(ctx), model.ErrNoPendingLog)
	_, err = tr.ConfirmLog(ctx, "x")
	assert.ErrorIs(t, err, model.ErrNoPendingLog)
}

func TestResumeDisplacesRunningSession(t *testing.T) {
	ctx := context.Background()
	tr, clock, _ := open(t)

	require.NoError(t, tr.Select(ctx, "1", "1-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(30 * time.Second)
	queued, err := tr.PauseToQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(30), queued.ElapsedTime)
	assert.True(t, queued.StartTime.Equal(t0))
	assert.Equal(t, timer.Idle, tr.Timer().State())

	require.NoError(t, tr.Select(ctx, "2", "2-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(45 * time.Second)

	before := tr.Queue().Len()
	require.NoError(t, tr.Resume(ctx, queued.ID))
	assert.Equal(t, before, tr.Queue().Len(), "one resumed, one displaced")

	_, stillQueued := tr.Queue().Get(queued.ID)
	assert.False(t, stillQueued)

	displaced := tr.Queue().List()[0]
	assert.Equal(t, "2", displaced.ProjectID)
	assert.Equal(t, int64(45), displaced.ElapsedTime)

	assert.Equal(t, model.Selection{ProjectID: "1", SubprojectID: "1-1"}, tr.Selection())
	assert.Equal(t, timer.Running, tr.Timer().State())
	clock.Advance(5 * time.Second)
	assert.Equal(t, int64(35), tr.Timer().Elapsed())

	pending, err := tr.Stop(ctx)
	require.NoError(t, err)
	assert.True(t, pending.StartTime.Equal(t0), "queued session keeps its original start")
}

func TestResumeWithNothingRunning(t *testing.T) {
	ctx := context.Background()
	tr, clock, _ := open(t)

	require.NoError(t, tr.Select(ctx, "3", "3-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(10 * time.Second)
	q, err := tr.PauseToQueue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, tr.Queue().Len())

	require.NoError(t, tr.Resume(ctx, q.ID))
	assert.Equal(t, 0, tr.Queue().Len())
	assert.Equal(t, int64(10), tr.Timer().Elapsed())

	assert.ErrorIs(t, tr.Resume(ctx, q.ID), model.ErrQueuedSessionNotFound)
}

func TestSelectDisplacesActiveSession(t *testing.T) {
	ctx := context.Background()
	tr, clock, _ := open(t)

	require.NoError(t, tr.Select(ctx, "1", "1-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(20 * time.Second)

	// Re-selecting the same pair keeps the session running.
	require.NoError(t, tr.Select(ctx, "1", "1-1"))
	assert.Equal(t, timer.Running, tr.Timer().State())
	assert.Equal(t, 0, tr.Queue().Len())

	require.NoError(t, tr.Select(ctx, "1", "1-2"))
	assert.Equal(t, timer.Idle, tr.Timer().State())
	require.Equal(t, 1, tr.Queue().Len())
	assert.Equal(t, int64(20), tr.Queue().List()[0].ElapsedTime)
	assert.Equal(t, "1-1", tr.Queue().List()[0].SubprojectID)
}

func TestDiscardDoesNotLog(t *testing.T) {
	ctx := context.Background()
	tr, clock, _ := open(t)

	require.NoError(t, tr.Select(ctx, "1", "1-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(time.Minute)
	q, err := tr.PauseToQueue(ctx)
	require.NoError(t, err)

	require.NoError(t, tr.Discard(ctx, q.ID))
	assert.Equal(t, 0, tr.Queue().Len())
	assert.Empty(t, tr.Ledger().Entries())
}

func TestDeleteProjectClearsSessionState(t *testing.T) {
	ctx := context.Background()
	tr, clock, s := open(t)

	require.NoError(t, tr.Select(ctx, "1", "1-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(time.Minute)
	_, err := tr.PauseToQueue(ctx)
	require.NoError(t, err)
	require.NoError(t, tr.Start(ctx))
	clock.Advance(time.Minute)
	_, err = tr.Stop(ctx)
	require.NoError(t, err)
	_, err = tr.ConfirmLog(ctx, "")
	require.NoError(t, err)
	require.NoError(t, tr.Start(ctx))

	require.NoError(t, tr.DeleteProject(ctx, "1"))
	assert.Empty(t, tr.Ledger().Entries())
	assert.Equal(t, 0, tr.Queue().Len())
	assert.Equal(t, model.Selection{}, tr.Selection())
	assert.Equal(t, timer.Idle, tr.Timer().State())

	sel, err := s.GetSelection(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Selection{}, sel)
}

func TestEditCellUpdatesTotals(t *testing.T) {
	ctx := context.Background()
	tr, clock, _ := open(t)

	require.NoError(t, tr.Select(ctx, "1", "1-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(30 * time.Minute)
	_, err := tr.Stop(ctx)
	require.NoError(t, err)
	_, err = tr.ConfirmLog(ctx, "")
	require.NoError(t, err)

	require.NoError(t, tr.EditCell(ctx, "1", "1-1", "2024-03-04", 2*3600))
	p, _ := tr.Registry().Project("1")
	assert.Equal(t, int64(7200), p.TotalTime)

	assert.ErrorIs(t, tr.EditCell(ctx, "1", "1-2", "2024-03-04", 60), model.ErrLogNotFound)
}

func TestStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	tr, clock, s := open(t)

	require.NoError(t, tr.Select(ctx, "4", "4-2"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(90 * time.Second)

	s.ClearCache()
	again, err := tracker.Open(ctx, s, tracker.WithClock(clock.Now))
	require.NoError(t, err)

	st := again.Status(clock.Now())
	assert.Equal(t, timer.Running, st.State)
	assert.Equal(t, int64(90), st.Elapsed)
	assert.Equal(t, "Data Analytics Platform", st.ProjectName)
	assert.Equal(t, "Dashboard UI", st.SubprojectName)
}

func TestRefreshPicksUpOtherWriter(t *testing.T) {
	ctx := context.Background()
	tr, clock, s := open(t)

	other, err := tracker.Open(ctx, s, tracker.WithClock(clock.Now))
	require.NoError(t, err)
	require.NoError(t, other.Select(ctx, "3", "3-1"))
	require.NoError(t, other.Start(ctx))
	clock.Advance(30 * time.Second)
	_, err = other.PauseToQueue(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, tr.Queue().Len())
	require.NoError(t, tr.Refresh(ctx))

	assert.Equal(t, 1, tr.Queue().Len())
	assert.Equal(t, timer.Idle, tr.Timer().State())
	assert.Equal(t, model.Selection{ProjectID: "3", SubprojectID: "3-1"}, tr.Selection())
}

func TestStopLogsSessionLongerThanADay(t *testing.T) {
	ctx := context.Background()
	tr, clock, _ := open(t)

	require.NoError(t, tr.Select(ctx, "1", "1-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(25 * time.Hour)

	pending, err := tr.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), pending.Duration)

	entry, err := tr.ConfirmLog(ctx, "overnight migration")
	require.NoError(t, err)
	assert.Equal(t, int64(90000), entry.Duration)
	require.Len(t, tr.Ledger().Entries(), 1)
	assert.Equal(t, timer.Idle, tr.Timer().State())
	assert.Nil(t, tr.Pending())
}

func TestReopenDropsStaleSubproject(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	clock := testutil.NewClock(t0)

	start := t0.Add(-time.Minute)
	require.NoError(t, s.SaveSelection(ctx, model.Selection{ProjectID: "1", SubprojectID: "gone"}))
	require.NoError(t, s.SaveStopwatch(ctx, model.StopwatchSnapshot{
		IsRunning:    true,
		StartTime:    &start,
		SessionStart: &start,
	}))

	tr, err := tracker.Open(ctx, s, tracker.WithClock(clock.Now))
	require.NoError(t, err)

	assert.Equal(t, model.Selection{ProjectID: "1"}, tr.Selection())
	assert.Equal(t, timer.Idle, tr.Timer().State())

	snap, err := s.GetStopwatch(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
	sel, err := s.GetSelection(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Selection{ProjectID: "1"}, sel)

	require.NoError(t, tr.Select(ctx, "1", "1-2"))
	require.NoError(t, tr.Start(ctx))
	_, err = tr.PauseToQueue(ctx)
	require.NoError(t, err)
}

func TestReopenClearsUnknownProject(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	clock := testutil.NewClock(t0)

	require.NoError(t, s.SaveSelection(ctx, model.Selection{ProjectID: "99", SubprojectID: "99-1"}))
	tr, err := tracker.Open(ctx, s, tracker.WithClock(clock.Now))
	require.NoError(t, err)
	assert.Equal(t, model.Selection{}, tr.Selection())

	require.NoError(t, tr.Select(ctx, "2", "2-1"))
	require.NoError(t, tr.Start(ctx))
	clock.Advance(time.Minute)

	again, err := tracker.Open(ctx, s, tracker.WithClock(clock.Now))
	require.NoError(t, err)
	assert.Equal(t, timer.Running, again.Timer().State())
	assert.Equal(t, int64(60), again.Timer().Elapsed())
}
