package timesheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timesheet/internal/keys"
	"github.com/nhle/timesheet/internal/report"
	"github.com/nhle/timesheet/internal/theme"
	"github.com/nhle/timesheet/internal/tracker"
)

// CloseMsg signals the parent to leave the timesheet.
type CloseMsg struct{}

// EditedMsg reports a completed cell edit.
type EditedMsg struct{}

// Span selects between the weekly and the daily grid.
type Span int

const (
	SpanWeek Span = iota
	SpanDay
)

// Model shows logged hours as a grid and lets individual cells be
// rewritten.
type Model struct {
	tracker *tracker.Tracker
	keys    *keys.KeyMap
	table   table.Model
	input   textinput.Model
	sheet   report.Sheet

	day     time.Time
	span    Span
	column  int
	editing bool

	status    string
	statusErr bool
	width     int
	height    int
}

// New creates the timesheet view anchored on day.
func New(t *tracker.Tracker, k *keys.KeyMap, day time.Time, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "hours, e.g. 1.5 or 1h30m"
	ti.CharLimit = 16

	tbl := table.New(table.WithFocused(true))
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(theme.ColorBlue)
	s.Selected = s.Selected.Foreground(theme.ColorWhite).Background(theme.ColorSubtle)
	tbl.SetStyles(s)

	m := Model{
		tracker: t,
		keys:    k,
		table:   tbl,
		input:   ti,
		day:     day,
		width:   width,
		height:  height,
	}
	m.Refresh()
	return m
}

// SetSpan switches between the weekly and the daily grid.
func (m *Model) SetSpan(s Span) {
	m.span = s
	m.column = 0
	m.Refresh()
}

// SetDay moves the sheet to the period containing day.
func (m *Model) SetDay(day time.Time) {
	m.day = day
	m.Refresh()
}

// Sheet returns the grid currently shown.
func (m Model) Sheet() report.Sheet {
	return m.sheet
}

// Refresh rebuilds the grid from the time log.
func (m *Model) Refresh() {
	logs := m.tracker.Ledger().Entries()
	if m.span == SpanDay {
		m.sheet = report.Daily(logs, m.day)
	} else {
		m.sheet = report.Weekly(logs, m.day)
	}
	if m.column >= len(m.sheet.Days) {
		m.column = len(m.sheet.Days) - 1
	}

	cursor := m.table.Cursor()
	m.table.SetRows(nil)
	m.table.SetColumns(m.columns())
	m.table.SetRows(m.rows())
	if cursor >= len(m.sheet.Rows) {
		cursor = len(m.sheet.Rows) - 1
	}
	if cursor >= 0 {
		m.table.SetCursor(cursor)
	}
	m.table.SetHeight(m.tableHeight())
}

func (m Model) columns() []table.Column {
	nameWidth := 16
	cols := []table.Column{
		{Title: "Project", Width: nameWidth},
		{Title: "Subproject", Width: nameWidth},
	}
	for i, d := range m.sheet.Days {
		title := report.DayLabel(d)
		if i == m.column {
			title = "[" + title + "]"
		}
		cols = append(cols, table.Column{Title: title, Width: 11})
	}
	return append(cols, table.Column{Title: "Total", Width: 7})
}

func (m Model) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.sheet.Rows))
	for _, r := range m.sheet.Rows {
		row := table.Row{r.ProjectName, r.SubprojectName}
		for _, c := range r.Cells {
			row = append(row, report.Hours(c))
		}
		rows = append(rows, append(row, report.Hours(r.Total)))
	}
	return rows
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.PrevWeek):
		m.shift(-1)
		return m, nil

	case key.Matches(msg, m.keys.NextWeek):
		m.shift(1)
		return m, nil

	case key.Matches(msg, m.keys.ToggleSpan):
		if m.span == SpanWeek {
			m.SetSpan(SpanDay)
		} else {
			m.SetSpan(SpanWeek)
		}
		return m, nil

	case key.Matches(msg, m.keys.NextFocus):
		if m.column < len(m.sheet.Days)-1 {
			m.column++
			m.table.SetColumns(m.columns())
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevFocus):
		if m.column > 0 {
			m.column--
			m.table.SetColumns(m.columns())
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if len(m.sheet.Rows) == 0 {
			return m, nil
		}
		r := m.sheet.Rows[m.table.Cursor()]
		m.editing = true
		m.input.SetValue(report.Hours(r.Cells[m.column]))
		m.input.CursorEnd()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		seconds, err := report.ParseDuration(m.input.Value())
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		r := m.sheet.Rows[m.table.Cursor()]
		date := m.sheet.Days[m.column]
		if err := m.tracker.EditCell(context.Background(), r.ProjectID, r.SubprojectID, date, seconds); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("%s / %s on %s set to %sh", r.ProjectName, r.SubprojectName, report.DayLabel(date), report.Hours(seconds)), false)
		m.Refresh()
		return m, func() tea.Msg { return EditedMsg{} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// shift moves one period back or forward.
func (m *Model) shift(n int) {
	if m.span == SpanDay {
		m.day = m.day.AddDate(0, 0, n)
	} else {
		m.day = m.day.AddDate(0, 0, 7*n)
	}
	m.Refresh()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// View renders the grid.
func (m Model) View() string {
	var b strings.Builder

	title := "Week of " + report.DayLabel(m.sheet.Days[0])
	if m.span == SpanDay {
		title = report.DayLabel(m.sheet.Days[0])
	}
	b.WriteString(theme.TitleStyle.Render(title))
	b.WriteString("\n\n")

	if len(m.sheet.Rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("Nothing logged in this period."))
	} else {
		b.WriteString(m.table.View())
	}

	totals := make([]string, 0, len(m.sheet.DayTotals))
	for i, t := range m.sheet.DayTotals {
		totals = append(totals, fmt.Sprintf("%s %sh", report.DayLabel(m.sheet.Days[i]), report.Hours(t)))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.DimmedStyle.Render(strings.Join(totals, "  ")))
	b.WriteString("\n")
	b.WriteString(theme.TitleStyle.Render("Total " + report.Hours(m.sheet.Total) + "h"))

	if m.editing {
		b.WriteString("\n\n")
		b.WriteString("Set hours: " + m.input.View())
	}
	if m.status != "" {
		style := theme.NoticeStyle
		if m.statusErr {
			style = theme.ErrorStyle
		}
		b.WriteString("\n\n")
		b.WriteString(style.Render(m.status))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("[/] prev/next | d day/week | ←/→ column | e edit | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// Editing reports whether a cell edit is in progress.
func (m Model) Editing() bool {
	return m.editing
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(m.tableHeight())
}

func (m Model) tableHeight() int {
	h := m.height - 12
	if h < 3 {
		h = 3
	}
	return h
}
