package report

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/timesheet/internal/model"
)

// DayLabel formats a date key as "Mon 03-04". Unparseable keys are
// returned unchanged.
func DayLabel(key string) string {
	d, err := time.Parse(model.DateLayout, key)
	if err != nil {
		return key
	}
	return d.Format("Mon 01-02")
}

// Table renders the sheet as a bordered text grid in hours.
func Table(s Sheet) string {
	headers := []string{"Project", "Subproject"}
	for _, d := range s.Days {
		headers = append(headers, DayLabel(d))
	}
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(s.Rows)+1)
	for _, r := range s.Rows {
		row := []string{r.ProjectName, r.SubprojectName}
		for _, c := range r.Cells {
			row = append(row, Hours(c))
		}
		rows = append(rows, append(row, Hours(r.Total)))
	}

	footer := []string{"Total", ""}
	for _, c := range s.DayTotals {
		footer = append(footer, Hours(c))
	}
	rows = append(rows, append(footer, Hours(s.Total)))

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		Render()
}
