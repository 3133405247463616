package login

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timesheet/internal/credential"
	"github.com/nhle/timesheet/internal/store"
	"github.com/nhle/timesheet/internal/theme"
)

// LoggedInMsg is emitted once the passcode has been accepted.
type LoggedInMsg struct{}

// Model is the passcode gate shown before any timesheet data.
type Model struct {
	input  textinput.Model
	vault  *credential.Vault
	store  store.SettingsStore
	setup  bool
	first  string
	err    string
	width  int
	height int
}

// New creates the gate. When no passcode exists yet the user is asked to
// choose one.
func New(vault *credential.Vault, s store.SettingsStore, width, height int) Model {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 64
	ti.Prompt = "passcode: "
	ti.Focus()

	m := Model{input: ti, vault: vault, store: s, width: width, height: height}
	if vault == nil {
		m.err = "no keyring available"
		return m
	}
	has, err := vault.HasPasscode()
	if err != nil {
		m.err = err.Error()
	}
	m.setup = !has && err == nil
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch kmsg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.vault == nil {
		return m, nil
	}
	value := m.input.Value()
	m.input.Reset()
	if strings.TrimSpace(value) == "" {
		m.err = "passcode must not be empty"
		return m, nil
	}

	if m.setup {
		if m.first == "" {
			m.first = value
			m.err = ""
			return m, nil
		}
		if value != m.first {
			m.first = ""
			m.err = "passcodes do not match"
			return m, nil
		}
		if err := m.vault.SetPasscode(value); err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.setup = false
	} else if err := m.vault.CheckPasscode(value); err != nil {
		if errors.Is(err, credential.ErrWrongPasscode) {
			m.err = "wrong passcode"
		} else {
			m.err = err.Error()
		}
		return m, nil
	}

	if err := m.store.SaveLoginState(context.Background(), true); err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""
	return m, func() tea.Msg { return LoggedInMsg{} }
}

// View renders the gate centred in the terminal.
func (m Model) View() string {
	title := "Enter passcode"
	switch {
	case m.setup && m.first == "":
		title = "Choose a passcode"
	case m.setup:
		title = "Repeat the passcode"
	}

	lines := []string{theme.TitleStyle.Render("Timesheet"), "", title, m.input.View()}
	if m.err != "" {
		lines = append(lines, "", theme.ErrorStyle.Render(m.err))
	}
	lines = append(lines, "", theme.HelpStyle.Render("enter submit | ctrl+c quit"))

	box := theme.FocusedPanelStyle.Padding(1, 3).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
