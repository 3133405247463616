package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down      key.Binding
	Up        key.Binding
	NextFocus key.Binding
	PrevFocus key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Stopwatch
	StartStop    key.Binding
	PauseToQueue key.Binding
	Reset        key.Binding

	// Queue
	Resume  key.Binding
	Discard key.Binding

	// Screens
	Timesheet key.Binding
	Projects  key.Binding
	Settings  key.Binding

	// Timesheet navigation
	PrevWeek   key.Binding
	NextWeek   key.Binding
	ToggleSpan key.Binding
	Edit       key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		NextFocus: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/→", "next panel"),
		),
		PrevFocus: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab/←", "previous panel"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		StartStop: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "start/stop"),
		),
		PauseToQueue: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause to queue"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset timer"),
		),
		Resume: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resume queued"),
		),
		Discard: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "discard queued"),
		),
		Timesheet: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "timesheet"),
		),
		Projects: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manage projects"),
		),
		Settings: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "settings"),
		),
		PrevWeek: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous period"),
		),
		NextWeek: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next period"),
		),
		ToggleSpan: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "day/week"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.NextFocus, k.StartStop,
		k.PauseToQueue, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextFocus, k.PrevFocus, k.Select, k.Back, k.Quit},
		{k.StartStop, k.PauseToQueue, k.Reset, k.Resume, k.Discard},
		{k.Timesheet, k.PrevWeek, k.NextWeek, k.ToggleSpan, k.Edit},
		{k.Projects, k.Settings, k.Command, k.Help},
	}
}
