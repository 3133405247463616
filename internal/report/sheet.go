// Package report derives the timesheet views from the time log: daily and
// weekly hour grids, daily progress and the most used projects.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/nhle/timesheet/internal/model"
)

// Row is one project/subproject line of a sheet. Cells align with
// Sheet.Days and hold seconds.
type Row struct {
	ProjectID      string  `json:"projectId" yaml:"project_id"`
	SubprojectID   string  `json:"subprojectId" yaml:"subproject_id"`
	ProjectName    string  `json:"projectName" yaml:"project_name"`
	SubprojectName string  `json:"subprojectName" yaml:"subproject_name"`
	Cells          []int64 `json:"cells" yaml:"cells"`
	Total          int64   `json:"total" yaml:"total"`
}

// Sheet is a grid of logged seconds per row and day.
type Sheet struct {
	Days      []string `json:"days" yaml:"days"`
	Rows      []Row    `json:"rows" yaml:"rows"`
	DayTotals []int64  `json:"dayTotals" yaml:"day_totals"`
	Total     int64    `json:"total" yaml:"total"`
}

// Workweek returns Monday through Friday of the week containing day.
func Workweek(day time.Time) []time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	monday := time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, day.Location())

	days := make([]time.Time, 5)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// Daily builds the sheet for a single day.
func Daily(logs []model.TimeLogEntry, day time.Time) Sheet {
	return Build(logs, []string{model.DateKey(day)})
}

// Weekly builds the Monday to Friday sheet for the week containing day.
func Weekly(logs []model.TimeLogEntry, day time.Time) Sheet {
	week := Workweek(day)
	keys := make([]string, len(week))
	for i, d := range week {
		keys[i] = model.DateKey(d)
	}
	return Build(logs, keys)
}

// Build groups logs falling on days by project/subproject pair. Rows are
// ordered by project name, then subproject name. Entries keep the names
// recorded when they were logged.
func Build(logs []model.TimeLogEntry, days []string) Sheet {
	col := make(map[string]int, len(days))
	for i, d := range days {
		col[d] = i
	}

	type pair struct{ pid, sid string }
	index := make(map[pair]int)
	sheet := Sheet{Days: days, DayTotals: make([]int64, len(days))}

	for _, e := range logs {
		c, ok := col[e.Date]
		if !ok {
			continue
		}
		k := pair{e.ProjectID, e.SubprojectID}
		i, ok := index[k]
		if !ok {
			i = len(sheet.Rows)
			index[k] = i
			sheet.Rows = append(sheet.Rows, Row{
				ProjectID:      e.ProjectID,
				SubprojectID:   e.SubprojectID,
				ProjectName:    e.ProjectName,
				SubprojectName: e.SubprojectName,
				Cells:          make([]int64, len(days)),
			})
		}
		sheet.Rows[i].Cells[c] += e.Duration
		sheet.Rows[i].Total += e.Duration
		sheet.DayTotals[c] += e.Duration
		sheet.Total += e.Duration
	}

	sort.SliceStable(sheet.Rows, func(a, b int) bool {
		ra, rb := sheet.Rows[a], sheet.Rows[b]
		if ra.ProjectName != rb.ProjectName {
			return ra.ProjectName < rb.ProjectName
		}
		return ra.SubprojectName < rb.SubprojectName
	})
	return sheet
}

// Hours formats seconds as hours with one decimal.
func Hours(seconds int64) string {
	return fmt.Sprintf("%.1f", float64(seconds)/3600)
}

// Clock formats seconds as HH:MM:SS.
func Clock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
