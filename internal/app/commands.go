package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/timesheet/internal/credential"
	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
	"github.com/nhle/timesheet/internal/submit"
	"github.com/nhle/timesheet/internal/timer"
	"github.com/nhle/timesheet/internal/ui/command"
	"github.com/nhle/timesheet/internal/ui/timerview"
	"github.com/nhle/timesheet/internal/ui/timesheet"
)

// submitTimeout bounds one IMAP append.
const submitTimeout = 30 * time.Second

// submitResultMsg reports the outcome of a timesheet submission.
type submitResultMsg struct {
	mailbox string
	err     error
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	ctx := context.Background()

	switch c.Name {
	case "quit", "q":
		m.poller.Stop()
		return tea.Quit

	case "help":
		return m.switchTo(ViewHelp)

	case "start":
		if err := m.tracker.Start(ctx); err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		return changed

	case "pause":
		elapsed, err := m.tracker.Pause(ctx)
		if err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		m.setNotice("Paused at "+report.Clock(elapsed), false)
		return changed

	case "stop":
		pending, err := m.tracker.Stop(ctx)
		if errors.Is(err, model.ErrEmptySession) {
			m.setNotice("Nothing to log", false)
			return changed
		}
		if err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		return m.openLogForm(pending)

	case "queue":
		if m.tracker.Timer().State() == timer.Idle {
			m.setNotice(fmt.Sprintf("%d queued session(s)", m.tracker.Queue().Len()), false)
			return nil
		}
		qs, err := m.tracker.PauseToQueue(ctx)
		if err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		m.setNotice(fmt.Sprintf("Queued %s / %s", qs.ProjectName, qs.SubprojectName), false)
		return changed

	case "reset":
		if err := m.tracker.Reset(ctx); err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		return changed

	case "timesheet", "week":
		m.timesheetView.SetSpan(timesheet.SpanWeek)
		return m.switchTo(ViewTimesheet)

	case "today":
		m.timesheetView.SetDay(time.Now())
		m.timesheetView.SetSpan(timesheet.SpanDay)
		return m.switchTo(ViewTimesheet)

	case "projects":
		return m.switchTo(ViewProjects)

	case "settings":
		return m.switchTo(ViewSettings)

	case "select":
		if len(c.Args) < 2 {
			m.setNotice("usage: select <project> <subproject>", true)
			return nil
		}
		p, sp, err := m.tracker.Registry().Find(c.Args[0], strings.Join(c.Args[1:], " "))
		if err == nil {
			err = m.tracker.Select(ctx, p.ID, sp.ID)
		}
		if err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		m.timerView.SyncCursor()
		m.setNotice(fmt.Sprintf("Selected %s / %s", p.Name, sp.Name), false)
		return changed

	case "add-project":
		if len(c.Args) < 2 {
			m.setNotice("usage: add-project <name> <first subproject>", true)
			return nil
		}
		p, err := m.tracker.Registry().AddProject(ctx, c.Args[0], strings.Join(c.Args[1:], " "))
		if err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		m.setNotice("Added project "+p.Name, false)
		return changed

	case "add-subproject":
		if len(c.Args) < 2 {
			m.setNotice("usage: add-subproject <project> <name>", true)
			return nil
		}
		p, err := m.tracker.Registry().FindProject(c.Args[0])
		if err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		sp, err := m.tracker.Registry().AddSubproject(ctx, p.ID, strings.Join(c.Args[1:], " "))
		if err != nil {
			m.setNotice(err.Error(), true)
			return nil
		}
		m.setNotice(fmt.Sprintf("Added %s / %s", p.Name, sp.Name), false)
		return changed

	case "submit":
		m.setNotice("Submitting timesheet...", false)
		return m.submitWeek()

	default:
		m.setNotice(fmt.Sprintf("unknown command %q", c.Name), true)
		return nil
	}
}

func changed() tea.Msg { return timerview.ChangedMsg{} }

// submitWeek appends the current week's timesheet as a draft. The log is
// copied before the command runs.
func (m Model) submitWeek() tea.Cmd {
	cfg := m.cfg.Submit
	vault := m.vault
	logs := m.tracker.Ledger().Entries()
	day := time.Now()

	return func() tea.Msg {
		if vault == nil {
			return submitResultMsg{err: errors.New("no keyring available for the IMAP password")}
		}
		password, err := vault.Get(credential.KeyIMAPPassword)
		if err != nil {
			return submitResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		res, err := submit.Week(ctx, cfg, password, logs, day)
		return submitResultMsg{mailbox: res.Mailbox, err: err}
	}
}
