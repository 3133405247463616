package timerview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timesheet/internal/keys"
	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
	"github.com/nhle/timesheet/internal/theme"
	"github.com/nhle/timesheet/internal/timer"
	"github.com/nhle/timesheet/internal/tracker"
	"github.com/nhle/timesheet/internal/ui"
)

// StopRequestedMsg asks the parent to collect a description for a
// stopped session.
type StopRequestedMsg struct {
	Pending        model.PendingLog
	ProjectName    string
	SubprojectName string
}

// ChangedMsg signals that tracker state was modified.
type ChangedMsg struct{}

// Focus identifies the panel receiving navigation keys.
type Focus int

const (
	FocusProjects Focus = iota
	FocusSubprojects
	FocusTimer
)

const focusCount = 3

// Model is the main tracking screen: project list, subproject list and
// the stopwatch with its queue.
type Model struct {
	tracker     *tracker.Tracker
	keys        *keys.KeyMap
	settings    model.Settings
	targetHours float64
	progress    progress.Model
	now         func() time.Time

	focus      Focus
	projectIdx int
	subIdx     int
	queueIdx   int

	status    string
	statusErr bool
	width     int
	height    int
}

// New creates the timer screen over t.
func New(t *tracker.Tracker, k *keys.KeyMap, settings model.Settings, targetHours float64, width, height int) Model {
	m := Model{
		tracker:     t,
		keys:        k,
		targetHours: targetHours,
		now:         time.Now,
		width:       width,
		height:      height,
	}
	m.SetSettings(settings)
	m.SyncCursor()
	return m
}

// SetSettings applies display preferences.
func (m *Model) SetSettings(s model.Settings) {
	m.settings = s
	color := s.ProgressBar.Color
	if color == "" {
		color = model.DefaultSettings().ProgressBar.Color
	}
	m.progress = progress.New(progress.WithSolidFill(color), progress.WithoutPercentage())
	m.progress.Width = m.panelWidth(2) - 8
}

// SyncCursor moves the list cursors to the current selection.
func (m *Model) SyncCursor() {
	sel := m.tracker.Selection()
	for i, p := range m.tracker.Registry().Projects() {
		if p.ID != sel.ProjectID {
			continue
		}
		m.projectIdx = i
		for j, sp := range p.Subprojects {
			if sp.ID == sel.SubprojectID {
				m.subIdx = j
			}
		}
	}
	m.clampCursors()
}

// FocusArea returns the focused panel.
func (m Model) FocusArea() Focus {
	return m.focus
}

// SetStatus shows a message in the status line.
func (m *Model) SetStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
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
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	ctx := context.Background()

	switch {
	case key.Matches(msg, m.keys.NextFocus):
		m.focus = (m.focus + 1) % focusCount
		return m, nil

	case key.Matches(msg, m.keys.PrevFocus):
		m.focus = (m.focus + focusCount - 1) % focusCount
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil

	case key.Matches(msg, m.keys.Select):
		return m.selectFocused(ctx)

	case key.Matches(msg, m.keys.StartStop):
		return m.startStop(ctx)

	case key.Matches(msg, m.keys.PauseToQueue):
		qs, err := m.tracker.PauseToQueue(ctx)
		if m.report(err) {
			return m, nil
		}
		m.SetStatus(fmt.Sprintf("Queued %s / %s at %s", qs.ProjectName, qs.SubprojectName, report.Clock(qs.ElapsedTime)), false)
		return m, changed

	case key.Matches(msg, m.keys.Reset):
		if m.report(m.tracker.Reset(ctx)) {
			return m, nil
		}
		m.SetStatus("Timer reset", false)
		return m, changed

	case key.Matches(msg, m.keys.Resume):
		return m.resumeQueued(ctx)

	case key.Matches(msg, m.keys.Discard):
		if m.focus != FocusTimer {
			return m, nil
		}
		queued := m.tracker.Queue().List()
		if len(queued) == 0 {
			return m, nil
		}
		qs := queued[m.queueIdx]
		if m.report(m.tracker.Discard(ctx, qs.ID)) {
			return m, nil
		}
		m.SetStatus(fmt.Sprintf("Discarded %s / %s", qs.ProjectName, qs.SubprojectName), false)
		m.clampCursors()
		return m, changed
	}
	return m, nil
}

func (m Model) selectFocused(ctx context.Context) (Model, tea.Cmd) {
	projects := m.tracker.Registry().Projects()
	if len(projects) == 0 {
		return m, nil
	}
	p := projects[m.projectIdx]

	switch m.focus {
	case FocusProjects:
		if m.report(m.tracker.Select(ctx, p.ID, "")) {
			return m, nil
		}
		m.subIdx = 0
		m.focus = FocusSubprojects
		return m, changed

	case FocusSubprojects:
		if len(p.Subprojects) == 0 {
			m.SetStatus("Project has no subprojects", true)
			return m, nil
		}
		sp := p.Subprojects[m.subIdx]
		if m.report(m.tracker.Select(ctx, p.ID, sp.ID)) {
			return m, nil
		}
		m.focus = FocusTimer
		m.SetStatus(fmt.Sprintf("Selected %s / %s", p.Name, sp.Name), false)
		return m, changed

	case FocusTimer:
		return m.resumeQueued(ctx)
	}
	return m, nil
}

func (m Model) startStop(ctx context.Context) (Model, tea.Cmd) {
	if m.tracker.Timer().State() != timer.Running {
		err := m.tracker.Start(ctx)
		if errors.Is(err, model.ErrInvalidSelection) {
			m.SetStatus("Select a project and subproject first", true)
			return m, nil
		}
		if m.report(err) {
			return m, nil
		}
		m.SetStatus("Timer started", false)
		return m, changed
	}

	pending, err := m.tracker.Stop(ctx)
	if errors.Is(err, model.ErrEmptySession) {
		m.SetStatus("Nothing to log", false)
		return m, changed
	}
	if m.report(err) {
		return m, nil
	}
	st := m.tracker.Status(m.now())
	return m, func() tea.Msg {
		return StopRequestedMsg{Pending: pending, ProjectName: st.ProjectName, SubprojectName: st.SubprojectName}
	}
}

func (m Model) resumeQueued(ctx context.Context) (Model, tea.Cmd) {
	queued := m.tracker.Queue().List()
	if len(queued) == 0 {
		m.SetStatus("Queue is empty", false)
		return m, nil
	}
	if m.queueIdx >= len(queued) {
		m.queueIdx = len(queued) - 1
	}
	qs := queued[m.queueIdx]
	if m.report(m.tracker.Resume(ctx, qs.ID)) {
		return m, nil
	}
	m.SyncCursor()
	m.SetStatus(fmt.Sprintf("Resumed %s / %s", qs.ProjectName, qs.SubprojectName), false)
	return m, changed
}

func changed() tea.Msg { return ChangedMsg{} }

// report shows err in the status line and reports whether there was one.
func (m *Model) report(err error) bool {
	if err == nil {
		return false
	}
	m.SetStatus(err.Error(), true)
	return true
}

func (m *Model) move(delta int) {
	switch m.focus {
	case FocusProjects:
		m.projectIdx += delta
		m.subIdx = 0
	case FocusSubprojects:
		m.subIdx += delta
	case FocusTimer:
		m.queueIdx += delta
	}
	m.clampCursors()
}

func (m *Model) clampCursors() {
	projects := m.tracker.Registry().Projects()
	m.projectIdx = clamp(m.projectIdx, len(projects))
	subs := 0
	if len(projects) > 0 {
		subs = len(projects[m.projectIdx].Subprojects)
	}
	m.subIdx = clamp(m.subIdx, subs)
	m.queueIdx = clamp(m.queueIdx, m.tracker.Queue().Len())
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// View renders the three panels side by side.
func (m Model) View() string {
	widths := ui.Columns(m.width, 3)
	projects := m.tracker.Registry().Projects()

	left := m.panel(FocusProjects, widths[0], "Projects", m.projectLines(projects))
	middle := m.panel(FocusSubprojects, widths[1], "Subprojects", m.subprojectLines(projects))
	right := m.panel(FocusTimer, widths[2], "Stopwatch", m.timerLines())

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, middle, right)
	if m.status != "" {
		style := theme.NoticeStyle
		if m.statusErr {
			style = theme.ErrorStyle
		}
		body = lipgloss.JoinVertical(lipgloss.Left, body, style.Render(m.status))
	}
	return body
}

func (m Model) panel(f Focus, width int, title string, lines []string) string {
	style := theme.PanelStyle
	if m.focus == f {
		style = theme.FocusedPanelStyle
	}
	content := theme.TitleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return style.Width(width - 2).Height(m.height - 4).Render(content)
}

func (m Model) projectLines(projects []model.Project) []string {
	sel := m.tracker.Selection()
	lines := make([]string, 0, len(projects))
	for i, p := range projects {
		name := theme.ProjectStyle(p.ID, m.settings.ColorCodedProjects).Render(p.Name)
		label := fmt.Sprintf("%s %s", name, theme.DimmedStyle.Render(report.Hours(p.TotalTime)+"h"))
		if p.ID == sel.ProjectID {
			label = "● " + label
		}
		lines = append(lines, m.item(label, m.focus == FocusProjects && i == m.projectIdx))
	}
	if len(lines) == 0 {
		lines = append(lines, theme.HelpStyle.Render("No projects. Press 'm' to add one."))
	}
	return lines
}

func (m Model) subprojectLines(projects []model.Project) []string {
	var lines []string
	if len(projects) > 0 {
		p := projects[m.projectIdx]
		sel := m.tracker.Selection()
		for i, sp := range p.Subprojects {
			label := fmt.Sprintf("%s %s", sp.Name, theme.DimmedStyle.Render(report.Hours(sp.TotalTime)+"h"))
			if sel.Matches(p.ID, sp.ID) {
				label = "● " + label
			}
			lines = append(lines, m.item(label, m.focus == FocusSubprojects && i == m.subIdx))
		}
		if len(p.Subprojects) == 0 {
			lines = append(lines, theme.HelpStyle.Render("No subprojects"))
		}
	}

	if m.settings.FrequentSubprojects {
		frequent := report.FrequentSubprojects(projects, report.FrequentLimit)
		if len(frequent) > 0 {
			lines = append(lines, "", theme.TitleStyle.Render("Frequent"))
			for _, f := range frequent {
				lines = append(lines, theme.DimmedStyle.Render(fmt.Sprintf("  %s / %s", f.Project.Name, f.Subproject.Name)))
			}
		}
	}
	return lines
}

func (m Model) timerLines() []string {
	now := m.now()
	st := m.tracker.Status(now)

	target := "No selection"
	if st.ProjectName != "" {
		target = st.ProjectName
		if st.SubprojectName != "" {
			target += " / " + st.SubprojectName
		}
	}

	lines := []string{
		target,
		theme.ClockStyle.Render(report.Clock(st.Elapsed)),
		theme.StateStyle(st.State.String()).Render(st.State.String()),
	}
	if st.SessionStart != nil {
		lines = append(lines, theme.DimmedStyle.Render("since "+st.SessionStart.Local().Format("15:04")))
	}

	if m.settings.ProgressBar.Enabled {
		running := int64(0)
		if st.State != timer.Idle {
			running = st.Elapsed
		}
		p := report.DailyProgress(m.tracker.Ledger().Entries(), now, m.targetHours, running)
		lines = append(lines, "",
			fmt.Sprintf("Today %sh of %sh", report.Hours(p.Logged), report.Hours(p.Target)),
			m.progress.ViewAs(p.Fraction()))
	}

	queued := m.tracker.Queue().List()
	lines = append(lines, "", theme.TitleStyle.Render(fmt.Sprintf("Queue (%d)", len(queued))))
	for i, qs := range queued {
		label := fmt.Sprintf("%s / %s %s", qs.ProjectName, qs.SubprojectName, theme.DimmedStyle.Render(report.Clock(qs.ElapsedTime)))
		lines = append(lines, m.item(label, m.focus == FocusTimer && i == m.queueIdx))
	}
	return lines
}

func (m Model) item(label string, selected bool) string {
	if selected {
		return theme.SelectedItemStyle.Render(label)
	}
	return theme.ListItemStyle.Render(label)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.progress.Width = m.panelWidth(2) - 8
}

func (m Model) panelWidth(i int) int {
	cols := ui.Columns(m.width, 3)
	if len(cols) == 0 {
		return 0
	}
	return cols[i]
}
