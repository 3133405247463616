package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
)

func entry(id, pid, sid, date string, seconds int64) model.TimeLogEntry {
	return model.TimeLogEntry{
		ID: id, ProjectID: pid, SubprojectID: sid,
		ProjectName: "Project " + pid, SubprojectName: "Sub " + sid,
		Duration: seconds, Date: date,
	}
}

func TestWorkweek(t *testing.T) {
	// Sunday belongs to the week that started the Monday before.
	sunday := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	days := report.Workweek(sunday)
	require.Len(t, days, 5)
	assert.Equal(t, "2024-03-04", model.DateKey(days[0]))
	assert.Equal(t, "2024-03-08", model.DateKey(days[4]))

	wednesday := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-04", model.DateKey(report.Workweek(wednesday)[0]))
}

func TestWeeklySheet(t *testing.T) {
	logs := []model.TimeLogEntry{
		entry("a", "2", "2-1", "2024-03-04", 3600),
		entry("b", "1", "1-1", "2024-03-04", 1800),
		entry("c", "1", "1-1", "2024-03-05", 1800),
		entry("d", "1", "1-1", "2024-03-09", 9999), // Saturday
		entry("e", "1", "1-1", "2024-03-11", 9999), // next week
	}

	s := report.Weekly(logs, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))
	require.Len(t, s.Days, 5)
	require.Len(t, s.Rows, 2)

	assert.Equal(t, "1", s.Rows[0].ProjectID)
	assert.Equal(t, []int64{1800, 1800, 0, 0, 0}, s.Rows[0].Cells)
	assert.Equal(t, int64(3600), s.Rows[0].Total)
	assert.Equal(t, []int64{5400, 1800, 0, 0, 0}, s.DayTotals)
	assert.Equal(t, int64(7200), s.Total)
}

func TestDailySheet(t *testing.T) {
	logs := []model.TimeLogEntry{
		entry("a", "1", "1-1", "2024-03-04", 60),
		entry("b", "1", "1-1", "2024-03-05", 60),
	}
	s := report.Daily(logs, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))
	require.Len(t, s.Rows, 1)
	assert.Equal(t, int64(60), s.Total)
}

func TestHoursAndClock(t *testing.T) {
	assert.Equal(t, "0.0", report.Hours(0))
	assert.Equal(t, "1.5", report.Hours(5400))
	assert.Equal(t, "0.1", report.Hours(185))
	assert.Equal(t, "00:03:05", report.Clock(185))
	assert.Equal(t, "25:00:01", report.Clock(90001))
}

func TestCellEdit(t *testing.T) {
	logs := []model.TimeLogEntry{
		entry("a", "1", "1-1", "2024-03-04", 1800),
		entry("b", "1", "1-1", "2024-03-04", 1800),
		entry("c", "1", "1-1", "2024-03-05", 600),
	}

	id, d, err := report.CellEdit(logs, "1", "1-1", "2024-03-04", 7200)
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	assert.Equal(t, int64(5400), d)

	id, d, err = report.CellEdit(logs, "1", "1-1", "2024-03-04", 1800)
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	assert.Equal(t, int64(0), d)

	_, _, err = report.CellEdit(logs, "1", "1-1", "2024-03-04", 900)
	assert.ErrorIs(t, err, model.ErrInvalidDuration)

	_, _, err = report.CellEdit(logs, "1", "1-1", "2024-03-06", 900)
	assert.ErrorIs(t, err, model.ErrLogNotFound)
}

func TestParseDuration(t *testing.T) {
	d, err := report.ParseDuration("1.5")
	require.NoError(t, err)
	assert.Equal(t, int64(5400), d)

	d, err = report.ParseDuration("1h30m10s")
	require.NoError(t, err)
	assert.Equal(t, int64(5410), d)

	_, err = report.ParseDuration("-2")
	assert.ErrorIs(t, err, model.ErrInvalidDuration)
	_, err = report.ParseDuration("soon")
	assert.Error(t, err)
}

func TestFrequent(t *testing.T) {
	var projects []model.Project
	for i, total := range []int64{10, 0, 50, 30, 20, 40, 5} {
		projects = append(projects, model.Project{
			ID:        string(rune('a' + i)),
			TotalTime: total,
			Subprojects: []model.Subproject{
				{ID: "x", TotalTime: total},
			},
		})
	}

	top := report.FrequentProjects(projects, report.FrequentLimit)
	require.Len(t, top, 5)
	assert.Equal(t, "c", top[0].ID)
	assert.Equal(t, "f", top[1].ID)
	assert.Equal(t, "a", top[4].ID)

	subs := report.FrequentSubprojects(projects, 2)
	require.Len(t, subs, 2)
	assert.Equal(t, "c", subs[0].Project.ID)
	assert.Equal(t, int64(40), subs[1].Subproject.TotalTime)
}

func TestDailyProgress(t *testing.T) {
	day := time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC)
	logs := []model.TimeLogEntry{
		entry("a", "1", "1-1", "2024-03-04", 4*3600),
		entry("b", "1", "1-1", "2024-03-03", 4*3600),
	}

	p := report.DailyProgress(logs, day, 8, 3600)
	assert.Equal(t, int64(5*3600), p.Logged)
	assert.InDelta(t, 0.625, p.Fraction(), 1e-9)

	p = report.DailyProgress(logs, day, 2, 0)
	assert.Equal(t, 1.0, p.Fraction())
	assert.Equal(t, 0.0, report.Progress{}.Fraction())
}

func TestTableIncludesTotals(t *testing.T) {
	s := report.Build([]model.TimeLogEntry{entry("a", "1", "1-1", "2024-03-04", 5400)}, []string{"2024-03-04"})
	out := report.Table(s)
	assert.Contains(t, out, "Project 1")
	assert.Contains(t, out, "Mon 03-04")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "Total")
}
