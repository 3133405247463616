package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/timesheet/internal/model"
)

func TestDeltaSecondsTruncatesAndClamps(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(125), model.DeltaSeconds(start, start.Add(125900*time.Millisecond)))
	assert.Equal(t, int64(0), model.DeltaSeconds(start, start.Add(-time.Minute)))
}

func TestSnapshotDisplay(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	now := start.Add(time.Minute)

	running := model.StopwatchSnapshot{IsRunning: true, StartTime: &start, ElapsedTime: 30}
	assert.Equal(t, int64(90), running.Display(now))
	assert.True(t, running.Active())

	paused := model.StopwatchSnapshot{ElapsedTime: 30}
	assert.Equal(t, int64(30), paused.Display(now))
	assert.True(t, paused.Active())

	assert.False(t, model.StopwatchSnapshot{}.Active())
}

func TestSelection(t *testing.T) {
	assert.False(t, model.Selection{ProjectID: "1"}.Complete())
	sel := model.Selection{ProjectID: "1", SubprojectID: "1-2"}
	assert.True(t, sel.Complete())
	assert.True(t, sel.Matches("1", "1-2"))
	assert.False(t, sel.Matches("1", "1-3"))
}

func TestSettingKeys(t *testing.T) {
	for _, k := range model.SettingKeys() {
		assert.True(t, model.IsSettingKey(k), k)
	}
	assert.False(t, model.IsSettingKey("timesheet-logs"))
}
