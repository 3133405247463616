package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/store"
	"github.com/nhle/timesheet/tests/testutil"
)

func TestMissingKeysReturnZeroValues(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	projects, err := s.GetProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	logs, err := s.GetTimeLogs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)

	snap, err := s.GetStopwatch(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	sel, err := s.GetSelection(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Selection{}, sel)

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)

	loggedIn, err := s.GetLoginState(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)
}

func TestProjectsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	in := []model.Project{{
		ID: "1", Name: "Website Redesign", TotalTime: 60,
		Subprojects: []model.Subproject{{ID: "1-1", Name: "Wireframing", TotalTime: 60}},
	}}
	require.NoError(t, s.SaveProjects(ctx, in))

	s.ClearCache()
	out, err := s.GetProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCachedReadsDoNotShareSlices(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.SaveQueuedSessions(ctx, []model.QueuedSession{{ID: "a", ElapsedTime: 5}}))

	first, err := s.GetQueuedSessions(ctx)
	require.NoError(t, err)
	first[0].ElapsedTime = 999

	second, err := s.GetQueuedSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), second[0].ElapsedTime)
}

func TestStopwatchSaveAndClear(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveStopwatch(ctx, model.StopwatchSnapshot{
		IsRunning: true, StartTime: &start, ElapsedTime: 12, SessionStart: &start,
	}))

	snap, err := s.GetStopwatch(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, snap.IsRunning)
	assert.Equal(t, int64(12), snap.ElapsedTime)
	assert.True(t, snap.StartTime.Equal(start))

	require.NoError(t, s.ClearStopwatch(ctx))
	snap, err = s.GetStopwatch(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSelection(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.SaveSelection(ctx, model.Selection{ProjectID: "1", SubprojectID: "1-2"}))
	sel, err := s.GetSelection(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Selection{ProjectID: "1", SubprojectID: "1-2"}, sel)

	require.NoError(t, s.SaveSelection(ctx, model.Selection{ProjectID: "2"}))
	sel, err = s.GetSelection(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Selection{ProjectID: "2"}, sel)
}

func TestSettingsAndLogin(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	require.NoError(t, s.SaveSetting(ctx, model.SettingProgressBarEnabled, true))
	require.NoError(t, s.SaveSetting(ctx, model.SettingProgressBarColor, "#ff0000"))
	require.NoError(t, s.SaveSetting(ctx, model.SettingDarkMode, true))
	assert.Error(t, s.SaveSetting(ctx, "timesheet-holidays", true))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.ProgressBar.Enabled)
	assert.Equal(t, "#ff0000", settings.ProgressBar.Color)
	assert.True(t, settings.DarkMode)
	assert.False(t, settings.ColorCodedProjects)

	require.NoError(t, s.SaveLoginState(ctx, true))
	loggedIn, err := s.GetLoginState(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)

	require.NoError(t, s.SaveLoginState(ctx, false))
	loggedIn, err = s.GetLoginState(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)
}

// A second handle on the same file sees a write once its cache entry
// expires, and never an older value afterwards.
func TestCacheExpiryAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "timesheet.db")

	writer, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { writer.Close() })
	reader, err := store.NewSQLiteStore(path, store.WithCacheTTL(50*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { reader.Close() })

	require.NoError(t, writer.SaveTimeLogs(ctx, []model.TimeLogEntry{{ID: "old"}}))
	logs, err := reader.GetTimeLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	require.NoError(t, writer.SaveTimeLogs(ctx, []model.TimeLogEntry{{ID: "old"}, {ID: "new"}}))
	logs, err = reader.GetTimeLogs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 1, "served from cache")

	time.Sleep(100 * time.Millisecond)
	logs, err = reader.GetTimeLogs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "timesheet.db")

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveLoginState(ctx, true))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	loggedIn, err := s.GetLoginState(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)
}
