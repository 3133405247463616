package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/tests/testutil"
)

func TestCheckReportsChanges(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	clock := testutil.NewClock(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))

	p := New(s, time.Hour)
	p.now = clock.Now

	st, changed := p.Check(ctx)
	assert.True(t, changed, "first check always reports")
	assert.False(t, st.Running)

	_, changed = p.Check(ctx)
	assert.False(t, changed)

	start := clock.Now()
	require.NoError(t, s.SaveStopwatch(ctx, model.StopwatchSnapshot{IsRunning: true, StartTime: &start}))
	clock.Advance(3 * time.Second)

	st, changed = p.Check(ctx)
	assert.True(t, changed)
	assert.True(t, st.Running)
	assert.Equal(t, int64(3), st.Elapsed)
	assert.Equal(t, st, p.Status())
}

func TestStartDeliversStatus(t *testing.T) {
	s := testutil.NewTestStore(t)
	start := time.Now()
	require.NoError(t, s.SaveStopwatch(context.Background(), model.StopwatchSnapshot{IsRunning: true, StartTime: &start}))

	p := New(s, 10*time.Millisecond)
	cmd := p.Start()
	require.NotNil(t, cmd)
	defer p.Stop()

	msg, ok := cmd().(TimerStatusMsg)
	require.True(t, ok)
	assert.True(t, msg.Status.Running)

	assert.Nil(t, p.Start(), "second start is a no-op")
}

func TestRestartAfterStop(t *testing.T) {
	s := testutil.NewTestStore(t)
	p := New(s, 10*time.Millisecond)

	cmd := p.Start()
	require.NotNil(t, cmd)
	_, ok := cmd().(TimerStatusMsg)
	require.True(t, ok)
	p.Stop()

	start := time.Now()
	require.NoError(t, s.SaveStopwatch(context.Background(), model.StopwatchSnapshot{IsRunning: true, StartTime: &start}))

	cmd = p.Start()
	require.NotNil(t, cmd)
	defer p.Stop()

	msg, ok := cmd().(TimerStatusMsg)
	require.True(t, ok)
	assert.True(t, msg.Status.Running)
}
