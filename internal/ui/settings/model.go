package settings

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timesheet/internal/credential"
	"github.com/nhle/timesheet/internal/keys"
	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/store"
	"github.com/nhle/timesheet/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeList     Mode = iota // Show current values
	ModeForm                 // Edit preferences
	ModePassword             // Store the IMAP password
	ModePasscode             // Change the login passcode
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg carries the preferences after a successful save.
type SavedMsg struct {
	Settings model.Settings
}

// formBindings holds the values huh binds to. It is shared by pointer so
// copies of Model see the same fields.
type formBindings struct {
	progress  bool
	color     string
	colorCode bool
	frequent  bool
	darkMode  bool
	secret    string
	confirm   string
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Model is the Bubble Tea model for the preferences screen.
type Model struct {
	mode     Mode
	store    store.SettingsStore
	vault    *credential.Vault
	settings model.Settings
	form     *huh.Form
	fb       *formBindings

	statusMsg string
	statusErr bool

	keys          *keys.KeyMap
	width, height int
}

// New creates the settings view. vault may be nil when no keyring backend
// is available; credential actions are then disabled.
func New(s store.SettingsStore, vault *credential.Vault, current model.Settings, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:     ModeList,
		store:    s,
		vault:    vault,
		settings: current,
		fb:       &formBindings{},
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Settings returns the preferences currently shown.
func (m Model) Settings() model.Settings {
	return m.settings
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.SetSize(wsm.Width, wsm.Height)
		return m, nil
	}

	if m.mode != ModeList {
		return m.updateForm(msg)
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(kmsg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case kmsg.String() == "e":
		m.fb.progress = m.settings.ProgressBar.Enabled
		m.fb.color = m.settings.ProgressBar.Color
		m.fb.colorCode = m.settings.ColorCodedProjects
		m.fb.frequent = m.settings.FrequentSubprojects
		m.fb.darkMode = m.settings.DarkMode
		return m.open(ModeForm, m.buildPreferencesForm())

	case kmsg.String() == "p":
		if m.vault == nil {
			m.setStatus("No keyring available", true)
			return m, nil
		}
		m.fb.secret = ""
		return m.open(ModePassword, m.buildPasswordForm())

	case kmsg.String() == "c":
		if m.vault == nil {
			m.setStatus("No keyring available", true)
			return m, nil
		}
		m.fb.secret = ""
		m.fb.confirm = ""
		return m.open(ModePasscode, m.buildPasscodeForm())
	}
	return m, nil
}

func (m Model) open(mode Mode, f *huh.Form) (Model, tea.Cmd) {
	m.mode = mode
	m.form = f
	m.statusMsg = ""
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = ModeList
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.mode = ModeList
		return m, nil
	case huh.StateCompleted:
		mode := m.mode
		m.mode = ModeList
		switch mode {
		case ModeForm:
			return m.savePreferences()
		case ModePassword:
			m.saveSecret(m.vault.Set(credential.KeyIMAPPassword, m.fb.secret), "IMAP password saved")
		case ModePasscode:
			m.saveSecret(m.vault.SetPasscode(m.fb.secret), "Passcode changed")
		}
		m.fb.secret = ""
		m.fb.confirm = ""
		return m, nil
	}
	return m, cmd
}

func (m *Model) saveSecret(err error, ok string) {
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(ok, false)
}

func (m Model) savePreferences() (Model, tea.Cmd) {
	ctx := context.Background()
	values := map[string]any{
		model.SettingProgressBarEnabled:  m.fb.progress,
		model.SettingProgressBarColor:    strings.TrimSpace(m.fb.color),
		model.SettingColorCodedProjects:  m.fb.colorCode,
		model.SettingFrequentSubprojects: m.fb.frequent,
		model.SettingDarkMode:            m.fb.darkMode,
	}
	for _, k := range model.SettingKeys() {
		if err := m.store.SaveSetting(ctx, k, values[k]); err != nil {
			m.setStatus(fmt.Sprintf("Error: %v", err), true)
			return m, nil
		}
	}

	next, err := m.store.GetSettings(ctx)
	if err != nil {
		m.setStatus(fmt.Sprintf("Error: %v", err), true)
		return m, nil
	}
	m.settings = next
	m.setStatus("Settings saved", false)
	return m, func() tea.Msg { return SavedMsg{Settings: next} }
}

func (m Model) buildPreferencesForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Daily progress bar").
				Value(&m.fb.progress),
			huh.NewInput().
				Title("Progress bar color").
				Placeholder("#10b981").
				Value(&m.fb.color).
				Validate(func(s string) error {
					if !hexColor.MatchString(strings.TrimSpace(s)) {
						return fmt.Errorf("use a hex color like #10b981")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Color-coded projects").
				Value(&m.fb.colorCode),
			huh.NewConfirm().
				Title("Show frequent subprojects").
				Value(&m.fb.frequent),
			huh.NewConfirm().
				Title("Dark mode").
				Value(&m.fb.darkMode),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

func (m Model) buildPasswordForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP password").
				Description("Stored in the system keyring.").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.secret),
		),
	).WithWidth(m.formWidth())
}

func (m Model) buildPasscodeForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New passcode").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.secret).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("passcode is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Repeat passcode").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.confirm).
				Validate(func(s string) error {
					if s != m.fb.secret {
						return fmt.Errorf("passcodes do not match")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth())
}

func (m *Model) setStatus(s string, isErr bool) {
	m.statusMsg = s
	m.statusErr = isErr
}

// View renders the settings view.
func (m Model) View() string {
	if m.mode != ModeList && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Settings"))
	b.WriteString("\n\n")

	rows := []struct{ label, value string }{
		{"Daily progress bar", onOff(m.settings.ProgressBar.Enabled)},
		{"Progress bar color", lipgloss.NewStyle().Foreground(lipgloss.Color(m.settings.ProgressBar.Color)).Render(m.settings.ProgressBar.Color)},
		{"Color-coded projects", onOff(m.settings.ColorCodedProjects)},
		{"Frequent subprojects", onOff(m.settings.FrequentSubprojects)},
		{"Dark mode", onOff(m.settings.DarkMode)},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-22s %s\n", r.label, r.value))
	}

	if m.statusMsg != "" {
		style := theme.NoticeStyle
		if m.statusErr {
			style = theme.ErrorStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("e edit | p IMAP password | c change passcode | esc back"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// Editing reports whether a form is open.
func (m Model) Editing() bool {
	return m.mode != ModeList
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
