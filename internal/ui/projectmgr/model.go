package projectmgr

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timesheet/internal/keys"
	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
	"github.com/nhle/timesheet/internal/theme"
	"github.com/nhle/timesheet/internal/tracker"
)

// ProjectListCloseMsg signals the parent to close the project view.
type ProjectListCloseMsg struct{}

// ProjectChangedMsg signals that projects were modified (created/updated/deleted).
type ProjectChangedMsg struct{}

type projectMode int

const (
	modeList projectMode = iota
	modeForm
	modeConfirmDelete
)

type formKind int

const (
	formNewProject formKind = iota
	formNewSubproject
	formRename
)

type formBindings struct {
	name       string
	subproject string
	confirm    bool
}

type projectSavedMsg struct{ err error }
type projectDeletedMsg struct{ err error }

// row is one line of the two-level list. sub is -1 for a project row.
type row struct {
	project int
	sub     int
}

// Model is the Bubble Tea model for project management.
type Model struct {
	mode        projectMode
	kind        formKind
	tracker     *tracker.Tracker
	keys        *keys.KeyMap
	selectedIdx int
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new project manager model.
func New(t *tracker.Tracker, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:    modeList,
		tracker: t,
		keys:    k,
		fb:      &formBindings{},
		width:   width, height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case projectSavedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Project saved"
		}
		m.mode = modeList
		return m, func() tea.Msg { return ProjectChangedMsg{} }

	case projectDeletedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Deleted"
		}
		m.mode = modeList
		m.clamp()
		return m, func() tea.Msg { return ProjectChangedMsg{} }

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	rows := m.rows()

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return ProjectListCloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(rows) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(rows)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(rows) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(rows) - 1
			}
		}
		return m, nil

	case msg.String() == "n":
		return m.openForm(formNewProject, "", "")

	case msg.String() == "s":
		if len(rows) == 0 {
			return m, nil
		}
		return m.openForm(formNewSubproject, "", "")

	case msg.String() == "e":
		if len(rows) == 0 {
			return m, nil
		}
		return m.openForm(formRename, m.rowName(rows[m.selectedIdx]), "")

	case msg.String() == "d":
		if len(rows) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm(rows[m.selectedIdx])
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) openForm(kind formKind, name, sub string) (Model, tea.Cmd) {
	m.kind = kind
	m.fb.name = name
	m.fb.subproject = sub
	m.form = m.buildForm()
	m.mode = modeForm
	return m, m.form.Init()
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

func (m Model) buildForm() *huh.Form {
	var fields []huh.Field
	switch m.kind {
	case formNewProject:
		fields = []huh.Field{
			huh.NewInput().Title("Project").Placeholder("Project name").Value(&m.fb.name).Validate(required),
			huh.NewInput().Title("First subproject").Placeholder("Subproject name").Value(&m.fb.subproject).Validate(required),
		}
	case formNewSubproject:
		p := m.tracker.Registry().Projects()[m.rows()[m.selectedIdx].project]
		fields = []huh.Field{
			huh.NewInput().Title("Subproject").Description("In " + p.Name).Placeholder("Subproject name").Value(&m.fb.name).Validate(required),
		}
	default:
		fields = []huh.Field{
			huh.NewInput().Title("Name").Value(&m.fb.name).Validate(required),
		}
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm(r row) *huh.Form {
	title := fmt.Sprintf("Delete project %q?", m.rowName(r))
	desc := "Its subprojects, time logs and queued sessions are removed too."
	if r.sub >= 0 {
		title = fmt.Sprintf("Delete subproject %q?", m.rowName(r))
		desc = "Its time logs and queued sessions are removed too."
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(desc).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m, m.save()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if m.fb.confirm {
			return m, m.delete(m.rows()[m.selectedIdx])
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// rows flattens projects and their subprojects into list order.
func (m Model) rows() []row {
	var rows []row
	for i, p := range m.tracker.Registry().Projects() {
		rows = append(rows, row{project: i, sub: -1})
		for j := range p.Subprojects {
			rows = append(rows, row{project: i, sub: j})
		}
	}
	return rows
}

func (m Model) rowName(r row) string {
	p := m.tracker.Registry().Projects()[r.project]
	if r.sub < 0 {
		return p.Name
	}
	return p.Subprojects[r.sub].Name
}

func (m *Model) clamp() {
	n := len(m.rows())
	if m.selectedIdx >= n {
		m.selectedIdx = n - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

// View renders the project manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Projects"))
	b.WriteString("\n\n")

	projects := m.tracker.Registry().Projects()
	rows := m.rows()
	if len(rows) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No projects yet. Press 'n' to create one."))
	}
	for i, r := range rows {
		p := projects[r.project]
		var label string
		if r.sub < 0 {
			label = fmt.Sprintf("%s  %sh", p.Name, report.Hours(p.TotalTime))
		} else {
			sp := p.Subprojects[r.sub]
			label = fmt.Sprintf("    %s  %sh", sp.Name, report.Hours(sp.TotalTime))
		}

		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"n new project | s new subproject | e rename | d delete | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// Editing reports whether a form is open.
func (m Model) Editing() bool {
	return m.mode != modeList
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
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

// save applies the submitted form. Tracker state is only touched from
// Update; the command just carries the result.
func (m Model) save() tea.Cmd {
	ctx := context.Background()
	reg := m.tracker.Registry()
	name := strings.TrimSpace(m.fb.name)

	var err error
	switch m.kind {
	case formNewProject:
		_, err = reg.AddProject(ctx, name, strings.TrimSpace(m.fb.subproject))
	case formNewSubproject:
		p := reg.Projects()[m.rows()[m.selectedIdx].project]
		_, err = reg.AddSubproject(ctx, p.ID, name)
	case formRename:
		r := m.rows()[m.selectedIdx]
		p := reg.Projects()[r.project]
		if r.sub < 0 {
			err = reg.UpdateProject(ctx, p.ID, model.ProjectUpdate{Name: &name})
		} else {
			err = reg.UpdateSubproject(ctx, p.ID, p.Subprojects[r.sub].ID, model.SubprojectUpdate{Name: &name})
		}
	}
	return func() tea.Msg { return projectSavedMsg{err: err} }
}

func (m Model) delete(r row) tea.Cmd {
	ctx := context.Background()
	p := m.tracker.Registry().Projects()[r.project]

	var err error
	if r.sub < 0 {
		err = m.tracker.DeleteProject(ctx, p.ID)
	} else {
		err = m.tracker.DeleteSubproject(ctx, p.ID, p.Subprojects[r.sub].ID)
	}
	return func() tea.Msg { return projectDeletedMsg{err: err} }
}
