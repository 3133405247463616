// Package sync watches the persisted stopwatch so views that do not own
// the timer can show whether a session is running. Another process (the
// CLI, a second TUI) may drive the timer through the same database.
package sync

import (
	"context"
	"log"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/store"
)

// DefaultInterval is how often the snapshot is read.
const DefaultInterval = time.Second

// readTimeout bounds a single snapshot read.
const readTimeout = 5 * time.Second

// TimerStatus is the observed state of the persisted stopwatch.
type TimerStatus struct {
	Running  bool
	Elapsed  int64
	Snapshot *model.StopwatchSnapshot
	Checked  time.Time
	Error    error
}

// TimerStatusMsg is a tea.Msg sent when the observed status changes.
type TimerStatusMsg struct {
	Status TimerStatus
}

// Poller periodically reads the stopwatch snapshot from the store.
type Poller struct {
	store    store.StopwatchStore
	interval time.Duration
	now      func() time.Time
	resultCh chan TimerStatusMsg
	stopCh   chan struct{}
	mu       gosync.Mutex
	running  bool
	status   TimerStatus
	seen     bool
}

// New creates a Poller reading s every interval.
func New(s store.StopwatchStore, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		store:    s,
		interval: interval,
		now:      time.Now,
		resultCh: make(chan TimerStatusMsg, 16),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a tea.Cmd that waits
// for the first status message. A stopped poller can be started again.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.seen = false
	p.stopCh = make(chan struct{})
	stop := p.stopCh
	p.mu.Unlock()

	go p.loop(stop)

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Status returns the last observed status.
func (p *Poller) Status() TimerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Check reads the snapshot once and reports whether the running state or
// elapsed time changed since the previous check.
func (p *Poller) Check(ctx context.Context) (TimerStatus, bool) {
	snap, err := p.store.GetStopwatch(ctx)
	now := p.now()

	st := TimerStatus{Snapshot: snap, Checked: now, Error: err}
	if err != nil {
		log.Printf("timer status: reading stopwatch: %v", err)
	} else if snap != nil {
		st.Running = snap.IsRunning
		st.Elapsed = snap.Display(now)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	changed := !p.seen ||
		st.Running != p.status.Running ||
		st.Elapsed != p.status.Elapsed ||
		(st.Error == nil) != (p.status.Error == nil)
	p.status = st
	p.seen = true
	return st, changed
}

func (p *Poller) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	if st, changed := p.Check(ctx); changed {
		p.sendResult(TimerStatusMsg{Status: st})
	}
}

// sendResult sends a status message without blocking.
func (p *Poller) sendResult(msg TimerStatusMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if the UI is behind; the next change is sent anyway.
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	p.mu.Lock()
	stop := p.stopCh
	p.mu.Unlock()

	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-stop:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next status
// change. Call it after handling a TimerStatusMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
