package logform

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
)

// ConfirmedMsg asks the parent to log the pending session.
type ConfirmedMsg struct {
	Description string
}

// CancelledMsg asks the parent to drop the pending session.
type CancelledMsg struct{}

type bindings struct {
	description string
	confirm     bool
}

// Model is the description dialog shown after the stopwatch is stopped.
type Model struct {
	form    *huh.Form
	fb      *bindings
	pending model.PendingLog
	label   string
	width   int
	height  int
}

// New creates an empty dialog; call Start to open it for a session.
func New(width, height int) Model {
	return Model{fb: &bindings{}, width: width, height: height}
}

// Start opens the dialog for pending, labelled with the pair's names.
func (m *Model) Start(pending model.PendingLog, projectName, subprojectName string) tea.Cmd {
	m.pending = pending
	m.label = fmt.Sprintf("%s / %s", projectName, subprojectName)
	m.fb.description = ""
	m.fb.confirm = true
	m.form = m.buildForm()
	return m.form.Init()
}

func (m Model) buildForm() *huh.Form {
	title := fmt.Sprintf("Log %s to %s", report.Clock(m.pending.Duration), m.label)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Description(fmt.Sprintf("%s to %s",
					m.pending.StartTime.Format("Jan 2 15:04"),
					m.pending.EndTime.Format("15:04"))).
				Placeholder("What did you work on?").
				CharLimit(500).
				Value(&m.fb.description),
			huh.NewConfirm().
				Affirmative("Log time").
				Negative("Discard").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		if m.fb.confirm {
			desc := m.fb.description
			return m, func() tea.Msg { return ConfirmedMsg{Description: desc} }
		}
		return m, func() tea.Msg { return CancelledMsg{} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, cmd
}

// View renders the dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
}

// Active reports whether the dialog is open.
func (m Model) Active() bool {
	return m.form != nil
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}
