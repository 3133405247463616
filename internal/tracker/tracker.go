// Package tracker wires the project registry, time log, stopwatch and
// session queue together behind the operations the TUI and CLI expose.
package tracker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nhle/timesheet/internal/ledger"
	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/queue"
	"github.com/nhle/timesheet/internal/registry"
	"github.com/nhle/timesheet/internal/report"
	"github.com/nhle/timesheet/internal/store"
	"github.com/nhle/timesheet/internal/timer"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now for the tracker and its stopwatch.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// Status is a point-in-time summary of the tracker.
type Status struct {
	State          timer.State       `json:"state" yaml:"state"`
	Selection      model.Selection   `json:"selection" yaml:"selection"`
	ProjectName    string            `json:"projectName,omitempty" yaml:"project_name,omitempty"`
	SubprojectName string            `json:"subprojectName,omitempty" yaml:"subproject_name,omitempty"`
	Elapsed        int64             `json:"elapsed" yaml:"elapsed"`
	SessionStart   *time.Time        `json:"sessionStart,omitempty" yaml:"session_start,omitempty"`
	Queued         int               `json:"queued" yaml:"queued"`
	Pending        *model.PendingLog `json:"pending,omitempty" yaml:"pending,omitempty"`
}

// Tracker owns the four core components and the current selection.
type Tracker struct {
	store     store.Store
	now       func() time.Time
	registry  *registry.Registry
	ledger    *ledger.Ledger
	timer     *timer.Timer
	queue     *queue.Queue
	selection model.Selection
	pending   *model.PendingLog
}

// Open loads every component from s and subscribes the registry to the
// time log.
func Open(ctx context.Context, s store.Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{store: s, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}

	var err error
	if t.registry, err = registry.Load(ctx, s); err != nil {
		return nil, err
	}
	if t.ledger, err = ledger.Load(ctx, s); err != nil {
		return nil, err
	}
	if err := t.registry.Attach(ctx, t.ledger); err != nil {
		return nil, err
	}
	if t.timer, err = timer.New(ctx, s, timer.WithClock(t.now)); err != nil {
		return nil, err
	}
	if t.queue, err = queue.Load(ctx, s); err != nil {
		return nil, err
	}
	if t.selection, err = s.GetSelection(ctx); err != nil {
		return nil, fmt.Errorf("loading selection: %w", err)
	}
	if err := t.reconcile(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// reconcile repairs a persisted selection that points at a deleted project
// or subproject. A project-only selection is kept. An active stopwatch whose
// pair no longer resolves cannot be logged or queued, so it is reset.
func (t *Tracker) reconcile(ctx context.Context) error {
	sel := t.selection
	if p, ok := t.registry.Project(sel.ProjectID); !ok {
		sel = model.Selection{}
	} else if _, ok := p.Subproject(sel.SubprojectID); !ok {
		sel.SubprojectID = ""
	}

	if t.timer.Snapshot().Active() && !sel.Complete() {
		log.Printf("tracker: dropping %ds session for unknown %s/%s",
			t.timer.Elapsed(), t.selection.ProjectID, t.selection.SubprojectID)
		if err := t.timer.Reset(ctx); err != nil {
			return err
		}
	}

	if sel != t.selection {
		return t.saveSelection(ctx, sel)
	}
	return nil
}

// Registry returns the project registry.
func (t *Tracker) Registry() *registry.Registry { return t.registry }

// Ledger returns the time log.
func (t *Tracker) Ledger() *ledger.Ledger { return t.ledger }

// Queue returns the queued session set.
func (t *Tracker) Queue() *queue.Queue { return t.queue }

// Timer returns the stopwatch.
func (t *Tracker) Timer() *timer.Timer { return t.timer }

// Selection returns the selected pair.
func (t *Tracker) Selection() model.Selection { return t.selection }

// Pending returns the stopped session awaiting a description, if any.
func (t *Tracker) Pending() *model.PendingLog { return t.pending }

// Status summarises the tracker at now.
func (t *Tracker) Status(now time.Time) Status {
	snap := t.timer.Snapshot()
	st := Status{
		State:        t.timer.State(),
		Selection:    t.selection,
		Elapsed:      snap.Display(now),
		SessionStart: snap.SessionStart,
		Queued:       t.queue.Len(),
		Pending:      t.pending,
	}
	if p, ok := t.registry.Project(t.selection.ProjectID); ok {
		st.ProjectName = p.Name
		if sp, ok := p.Subproject(t.selection.SubprojectID); ok {
			st.SubprojectName = sp.Name
		}
	}
	return st
}

// Refresh drops cached reads and reloads every component, picking up
// changes written by another process. A pending log survives.
func (t *Tracker) Refresh(ctx context.Context) error {
	t.store.ClearCache()
	fresh, err := Open(ctx, t.store, WithClock(t.now))
	if err != nil {
		return err
	}
	pending := t.pending
	*t = *fresh
	t.pending = pending
	return nil
}

// Select changes the selected pair. subprojectID may be empty while the
// user is still choosing. An active session for a different pair is moved
// to the queue first.
func (t *Tracker) Select(ctx context.Context, projectID, subprojectID string) error {
	if projectID == "" {
		return model.ErrInvalidSelection
	}
	p, ok := t.registry.Project(projectID)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrProjectNotFound, projectID)
	}
	if subprojectID != "" {
		if _, ok := p.Subproject(subprojectID); !ok {
			return fmt.Errorf("%w: %s", model.ErrSubprojectNotFound, subprojectID)
		}
	}

	if t.timer.Snapshot().Active() && !t.selection.Matches(projectID, subprojectID) {
		if _, err := t.displace(ctx); err != nil {
			return err
		}
	}
	return t.saveSelection(ctx, model.Selection{ProjectID: projectID, SubprojectID: subprojectID})
}

// Start runs the stopwatch for the selected pair.
func (t *Tracker) Start(ctx context.Context) error {
	if !t.selection.Complete() {
		return model.ErrInvalidSelection
	}
	if _, _, err := t.registry.Resolve(t.selection.ProjectID, t.selection.SubprojectID); err != nil {
		return err
	}
	if err := t.timer.Start(ctx, t.selection); err != nil {
		return err
	}
	t.pending = nil
	return nil
}

// Pause stops the clock without handing the session off.
func (t *Tracker) Pause(ctx context.Context) (int64, error) {
	return t.timer.Pause(ctx)
}

// PauseToQueue moves the active session into the queue and leaves the
// stopwatch idle.
func (t *Tracker) PauseToQueue(ctx context.Context) (model.QueuedSession, error) {
	if !t.timer.Snapshot().Active() {
		return model.QueuedSession{}, model.ErrNotRunning
	}
	return t.displace(ctx)
}

// Stop ends the session and holds it as a pending log until ConfirmLog or
// CancelLog.
func (t *Tracker) Stop(ctx context.Context) (model.PendingLog, error) {
	if !t.timer.Snapshot().Active() {
		return model.PendingLog{}, model.ErrNotRunning
	}
	if !t.selection.Complete() {
		return model.PendingLog{}, model.ErrInvalidSelection
	}

	p, err := t.timer.Stop(ctx)
	if err != nil {
		t.pending = nil
		return model.PendingLog{}, err
	}
	p.ProjectID = t.selection.ProjectID
	p.SubprojectID = t.selection.SubprojectID
	t.pending = &p
	return p, nil
}

// ConfirmLog writes the pending session to the time log with description
// and resets the stopwatch.
func (t *Tracker) ConfirmLog(ctx context.Context, description string) (model.TimeLogEntry, error) {
	if t.pending == nil {
		return model.TimeLogEntry{}, model.ErrNoPendingLog
	}
	p := *t.pending

	proj, sub, err := t.registry.Resolve(p.ProjectID, p.SubprojectID)
	if err != nil {
		return model.TimeLogEntry{}, err
	}

	entry, err := t.ledger.LogTime(ctx, ledger.LogRequest{
		ProjectID:      proj.ID,
		SubprojectID:   sub.ID,
		ProjectName:    proj.Name,
		SubprojectName: sub.Name,
		Duration:       p.Duration,
		Description:    description,
		StartTime:      p.StartTime,
		EndTime:        p.EndTime,
	})
	if err != nil {
		return model.TimeLogEntry{}, err
	}

	if err := t.Reset(ctx); err != nil {
		return entry, err
	}
	return entry, nil
}

// CancelLog drops the pending session without logging it.
func (t *Tracker) CancelLog(ctx context.Context) error {
	if t.pending == nil {
		return model.ErrNoPendingLog
	}
	return t.Reset(ctx)
}

// Reset forces the stopwatch idle and drops any pending log.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.timer.Reset(ctx); err != nil {
		return err
	}
	t.pending = nil
	return nil
}

// Resume restarts a queued session. Any active session is queued in its
// place with its live elapsed time.
func (t *Tracker) Resume(ctx context.Context, queuedID string) error {
	qs, ok := t.queue.Get(queuedID)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrQueuedSessionNotFound, queuedID)
	}
	if _, _, err := t.registry.Resolve(qs.ProjectID, qs.SubprojectID); err != nil {
		return err
	}

	if t.timer.Snapshot().Active() {
		if _, err := t.displace(ctx); err != nil {
			return err
		}
	}
	if _, err := t.queue.Remove(ctx, queuedID); err != nil {
		return err
	}
	if err := t.saveSelection(ctx, model.Selection{ProjectID: qs.ProjectID, SubprojectID: qs.SubprojectID}); err != nil {
		return err
	}
	if err := t.timer.Resume(ctx, qs.ElapsedTime, qs.StartTime); err != nil {
		return err
	}
	t.pending = nil
	return nil
}

// Discard abandons a queued session without logging it.
func (t *Tracker) Discard(ctx context.Context, queuedID string) error {
	return t.queue.Discard(ctx, queuedID)
}

// UpdateLogDuration corrects the duration of a logged entry.
func (t *Tracker) UpdateLogDuration(ctx context.Context, logID string, seconds int64) error {
	return t.ledger.UpdateTime(ctx, logID, seconds)
}

// EditCell sets the total of a timesheet cell by adjusting the first entry
// logged against the pair on date.
func (t *Tracker) EditCell(ctx context.Context, projectID, subprojectID, date string, seconds int64) error {
	id, d, err := report.CellEdit(t.ledger.Entries(), projectID, subprojectID, date, seconds)
	if err != nil {
		return err
	}
	return t.ledger.UpdateTime(ctx, id, d)
}

// DeleteProject removes a project, its time log entries and its queued
// sessions. Selecting it clears the selection and the stopwatch.
func (t *Tracker) DeleteProject(ctx context.Context, projectID string) error {
	if err := t.registry.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	if _, err := t.queue.RemoveProject(ctx, projectID, ""); err != nil {
		return err
	}
	if t.selection.ProjectID == projectID {
		return t.clearSelection(ctx)
	}
	return nil
}

// DeleteSubproject removes a subproject with its entries and queued
// sessions.
func (t *Tracker) DeleteSubproject(ctx context.Context, projectID, subprojectID string) error {
	if err := t.registry.DeleteSubproject(ctx, projectID, subprojectID); err != nil {
		return err
	}
	if _, err := t.queue.RemoveProject(ctx, projectID, subprojectID); err != nil {
		return err
	}
	if t.selection.Matches(projectID, subprojectID) {
		return t.clearSelection(ctx)
	}
	return nil
}

// displace queues the active session with its live elapsed time and
// resets the stopwatch.
func (t *Tracker) displace(ctx context.Context) (model.QueuedSession, error) {
	proj, sub, err := t.registry.Resolve(t.selection.ProjectID, t.selection.SubprojectID)
	if err != nil {
		return model.QueuedSession{}, err
	}

	now := t.now()
	snap := t.timer.Snapshot()
	elapsed := snap.Display(now)
	start := now.Add(-time.Duration(elapsed) * time.Second)
	if snap.SessionStart != nil {
		start = *snap.SessionStart
	}

	qs, err := t.queue.Add(ctx, model.QueuedSession{
		ProjectID:      proj.ID,
		SubprojectID:   sub.ID,
		ProjectName:    proj.Name,
		SubprojectName: sub.Name,
		ElapsedTime:    elapsed,
		StartTime:      start,
	})
	if err != nil {
		return model.QueuedSession{}, err
	}
	if err := t.Reset(ctx); err != nil {
		return qs, err
	}
	return qs, nil
}

func (t *Tracker) clearSelection(ctx context.Context) error {
	if err := t.Reset(ctx); err != nil {
		return err
	}
	return t.saveSelection(ctx, model.Selection{})
}

func (t *Tracker) saveSelection(ctx context.Context, sel model.Selection) error {
	if err := t.store.SaveSelection(ctx, sel); err != nil {
		return fmt.Errorf("saving selection: %w", err)
	}
	t.selection = sel
	return nil
}
