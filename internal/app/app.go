package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timesheet/internal/credential"
	"github.com/nhle/timesheet/internal/keys"
	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
	"github.com/nhle/timesheet/internal/store"
	appsync "github.com/nhle/timesheet/internal/sync"
	"github.com/nhle/timesheet/internal/timer"
	"github.com/nhle/timesheet/internal/tracker"
	"github.com/nhle/timesheet/internal/ui"
	"github.com/nhle/timesheet/internal/ui/command"
	helpview "github.com/nhle/timesheet/internal/ui/help"
	"github.com/nhle/timesheet/internal/ui/login"
	"github.com/nhle/timesheet/internal/ui/logform"
	"github.com/nhle/timesheet/internal/ui/projectmgr"
	settingsview "github.com/nhle/timesheet/internal/ui/settings"
	"github.com/nhle/timesheet/internal/ui/timerview"
	"github.com/nhle/timesheet/internal/ui/timesheet"
)

// tickMsg refreshes the live stopwatch display.
type tickMsg time.Time

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewTimer ViewState = iota
	ViewTimesheet
	ViewProjects
	ViewSettings
	ViewHelp
	ViewCommand
	ViewLogForm
	ViewLogin
)

// Deps bundles what the root model needs from main.
type Deps struct {
	Config   *model.AppConfig
	Store    store.Store
	Tracker  *tracker.Tracker
	Vault    *credential.Vault
	Settings model.Settings
	LoggedIn bool
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the tracker.
type Model struct {
	currentView   ViewState
	previousView  ViewState
	layout        ui.Layout
	cfg           *model.AppConfig
	store         store.Store
	tracker       *tracker.Tracker
	vault         *credential.Vault
	keys          *keys.KeyMap
	timerView     timerview.Model
	timesheetView timesheet.Model
	projectView   projectmgr.Model
	settingsView  settingsview.Model
	helpView      helpview.Model
	commandView   command.Model
	logForm       logform.Model
	loginView     login.Model
	poller        *appsync.Poller
	darkDetected  bool
	startup       tea.Cmd
	ready         bool
	notice        string
	noticeErr     bool
}

// New creates a new root application model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	now := time.Now()

	m := Model{
		currentView:   ViewTimer,
		cfg:           d.Config,
		store:         d.Store,
		tracker:       d.Tracker,
		vault:         d.Vault,
		keys:          k,
		timerView:     timerview.New(d.Tracker, k, d.Settings, d.Config.Display.TargetHours, 80, 24),
		timesheetView: timesheet.New(d.Tracker, k, now, 80, 24),
		projectView:   projectmgr.New(d.Tracker, k, 80, 24),
		settingsView:  settingsview.New(d.Store, d.Vault, d.Settings, k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
		commandView:   command.New(80, 24),
		logForm:       logform.New(80, 24),
		loginView:     login.New(d.Vault, d.Store, 80, 24),
		poller:        appsync.New(d.Store, d.Config.StatusPollInterval()),
		darkDetected:  lipgloss.HasDarkBackground(),
	}
	m.applyTheme(d.Settings)

	if d.Config.Security.RequireLogin && !d.LoggedIn {
		m.currentView = ViewLogin
	} else if p := d.Tracker.Pending(); p != nil {
		m.startup = m.openLogForm(*p)
	}
	return m
}

// Init starts the display tick and the status poller.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewLogin {
		return m.loginView.Init()
	}
	return tea.Batch(m.startup, m.tick(), m.poller.Start())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.TickInterval(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

// applyTheme forces a dark background when the dark-mode preference is set
// and otherwise keeps what the terminal reported.
func (m Model) applyTheme(s model.Settings) {
	lipgloss.SetHasDarkBackground(s.DarkMode || m.darkDetected)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.timerView.SetSize(contentWidth, contentHeight)
		m.timesheetView.SetSize(contentWidth, contentHeight)
		m.projectView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.logForm.SetSize(contentWidth, contentHeight)
		m.loginView.SetSize(msg.Width, msg.Height)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case tickMsg:
		return m, m.tick()

	case appsync.TimerStatusMsg:
		if m.externalChange(msg.Status) {
			if err := m.tracker.Refresh(context.Background()); err != nil {
				m.setNotice(err.Error(), true)
			}
			m.timerView.SyncCursor()
			m.timesheetView.Refresh()
		}
		return m, m.poller.WaitForNextResult()

	case login.LoggedInMsg:
		m.currentView = ViewTimer
		var cmd tea.Cmd
		if p := m.tracker.Pending(); p != nil {
			cmd = m.openLogForm(*p)
		}
		return m, tea.Batch(cmd, m.tick(), m.poller.Start())

	case timerview.StopRequestedMsg:
		m.currentView = ViewLogForm
		return m, m.logForm.Start(msg.Pending, msg.ProjectName, msg.SubprojectName)

	case timerview.ChangedMsg, timesheet.EditedMsg:
		m.timesheetView.Refresh()
		return m, nil

	case logform.ConfirmedMsg:
		m.currentView = ViewTimer
		entry, err := m.tracker.ConfirmLog(context.Background(), msg.Description)
		if err != nil {
			m.setNotice(err.Error(), true)
		} else {
			m.setNotice(fmt.Sprintf("Logged %sh to %s / %s", report.Hours(entry.Duration), entry.ProjectName, entry.SubprojectName), false)
		}
		m.timesheetView.Refresh()
		return m, nil

	case logform.CancelledMsg:
		m.currentView = ViewTimer
		if err := m.tracker.CancelLog(context.Background()); err != nil {
			m.setNotice(err.Error(), true)
		} else {
			m.setNotice("Session discarded", false)
		}
		return m, nil

	case timesheet.CloseMsg:
		m.currentView = ViewTimer
		return m, nil

	case projectmgr.ProjectListCloseMsg:
		m.currentView = ViewTimer
		return m, nil

	case projectmgr.ProjectChangedMsg:
		m.timerView.SyncCursor()
		m.timesheetView.Refresh()
		return m, nil

	case settingsview.DoneMsg:
		m.currentView = ViewTimer
		return m, nil

	case settingsview.SavedMsg:
		m.timerView.SetSettings(msg.Settings)
		m.applyTheme(msg.Settings)
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case command.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case submitResultMsg:
		if msg.err != nil {
			m.setNotice("Submit failed: "+msg.err.Error(), true)
		} else {
			m.setNotice(fmt.Sprintf("Timesheet saved to %s", msg.mailbox), false)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return m, tea.Quit
		}
		if m.capturesInput() {
			break
		}
		m.notice = ""

		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.currentView == ViewTimer {
				m.poller.Stop()
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Command):
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case key.Matches(msg, m.keys.Back):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}

		case key.Matches(msg, m.keys.Timesheet):
			if m.currentView == ViewTimer {
				return m, m.switchTo(ViewTimesheet)
			}

		case key.Matches(msg, m.keys.Projects):
			if m.currentView == ViewTimer {
				return m, m.switchTo(ViewProjects)
			}

		case key.Matches(msg, m.keys.Settings):
			if m.currentView == ViewTimer {
				return m, m.switchTo(ViewSettings)
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturesInput reports whether the active view is reading text, in which
// case global keys are passed through untouched.
func (m Model) capturesInput() bool {
	switch m.currentView {
	case ViewCommand, ViewLogForm, ViewLogin:
		return true
	case ViewTimesheet:
		return m.timesheetView.Editing()
	case ViewProjects:
		return m.projectView.Editing()
	case ViewSettings:
		return m.settingsView.Editing()
	}
	return false
}

// externalChange reports whether the persisted stopwatch differs from the
// one this process holds.
func (m Model) externalChange(st appsync.TimerStatus) bool {
	if st.Error != nil {
		return false
	}
	local := m.tracker.Timer().Snapshot()
	if st.Snapshot == nil {
		return local.Active()
	}
	remote := *st.Snapshot
	return remote.IsRunning != local.IsRunning ||
		remote.ElapsedTime != local.ElapsedTime ||
		!sameTime(remote.StartTime, local.StartTime)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (m *Model) switchTo(v ViewState) tea.Cmd {
	m.previousView = m.currentView
	m.currentView = v
	switch v {
	case ViewTimesheet:
		m.timesheetView.Refresh()
		return m.timesheetView.Init()
	case ViewProjects:
		return m.projectView.Init()
	case ViewSettings:
		return m.settingsView.Init()
	}
	return nil
}

func (m *Model) openLogForm(p model.PendingLog) tea.Cmd {
	st := m.tracker.Status(time.Now())
	m.currentView = ViewLogForm
	return m.logForm.Start(p, st.ProjectName, st.SubprojectName)
}

func (m *Model) setNotice(s string, isErr bool) {
	m.notice = s
	m.noticeErr = isErr
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewTimer:
		m.timerView, cmd = m.timerView.Update(msg)
	case ViewTimesheet:
		m.timesheetView, cmd = m.timesheetView.Update(msg)
	case ViewProjects:
		m.projectView, cmd = m.projectView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewLogForm:
		m.logForm, cmd = m.logForm.Update(msg)
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.currentView == ViewLogin {
		return m.loginView.View()
	}

	header := m.layout.RenderHeader("Timesheet", m.timerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewTimer:
		return m.timerView.View()
	case ViewTimesheet:
		return m.timesheetView.View()
	case ViewProjects:
		return m.projectView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewLogForm:
		return m.logForm.View()
	default:
		return ""
	}
}

// timerStatus returns the header indicator for the stopwatch.
func (m Model) timerStatus() string {
	if m.poller.Status().Error != nil {
		return "⚠ store unreachable"
	}
	st := m.tracker.Status(time.Now())
	switch st.State {
	case timer.Running:
		return "● " + report.Clock(st.Elapsed)
	case timer.Paused:
		return "❚❚ " + report.Clock(st.Elapsed)
	}
	if st.Queued > 0 {
		return fmt.Sprintf("idle | %d queued", st.Queued)
	}
	return "idle"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.notice != "" {
		if m.noticeErr {
			return "⚠ " + m.notice
		}
		return m.notice
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewLogForm:
		return "enter next | esc discard"
	case ViewTimesheet:
		return "[/] period | d day/week | e edit | esc back"
	case ViewProjects:
		return "n new | s subproject | e rename | d delete | esc back"
	case ViewSettings:
		return "e edit | p IMAP password | c passcode | esc back"
	default:
		return "q quit | ? help | space start/stop | p queue | w timesheet | m projects | : command"
	}
}
