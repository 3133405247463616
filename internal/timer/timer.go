// Package timer implements the single session stopwatch. Its state is
// written through to storage on every transition so a restarted process
// continues counting from the persisted snapshot.
package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/store"
)

// State is the derived stopwatch state.
type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StateOf derives the state of a snapshot.
func StateOf(snap model.StopwatchSnapshot) State {
	switch {
	case snap.IsRunning:
		return Running
	case snap.ElapsedTime > 0:
		return Paused
	default:
		return Idle
	}
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) {
		t.now = now
	}
}

// Timer is the session stopwatch.
type Timer struct {
	store store.StopwatchStore
	now   func() time.Time
	snap  model.StopwatchSnapshot
}

// New restores the stopwatch from s.
func New(ctx context.Context, s store.StopwatchStore, opts ...Option) (*Timer, error) {
	t := &Timer{store: s, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.Reload(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload replaces the in-memory snapshot with the persisted one.
func (t *Timer) Reload(ctx context.Context) error {
	snap, err := t.store.GetStopwatch(ctx)
	if err != nil {
		return fmt.Errorf("loading stopwatch: %w", err)
	}
	if snap == nil {
		t.snap = model.StopwatchSnapshot{}
		return nil
	}
	t.snap = normalize(*snap)
	return nil
}

// Snapshot returns the current snapshot.
func (t *Timer) Snapshot() model.StopwatchSnapshot {
	return t.snap
}

// State returns the current state.
func (t *Timer) State() State {
	return StateOf(t.snap)
}

// Display returns the seconds to show at now.
func (t *Timer) Display(now time.Time) int64 {
	return t.snap.Display(now)
}

// Elapsed returns the seconds tracked so far.
func (t *Timer) Elapsed() int64 {
	return t.snap.Display(t.now())
}

// Start runs the stopwatch for sel. Accumulated time from an earlier
// pause is kept, and the first start of a session records its start time.
func (t *Timer) Start(ctx context.Context, sel model.Selection) error {
	if !sel.Complete() {
		return model.ErrInvalidSelection
	}
	if t.snap.IsRunning {
		return model.ErrAlreadyRunning
	}

	now := t.now()
	next := t.snap
	next.IsRunning = true
	next.StartTime = &now
	if next.SessionStart == nil {
		next.SessionStart = &now
	}
	return t.persist(ctx, next)
}

// Pause folds the running segment into the elapsed time and returns the
// new total.
func (t *Timer) Pause(ctx context.Context) (int64, error) {
	if !t.snap.IsRunning {
		return t.snap.ElapsedTime, model.ErrNotRunning
	}
	next := t.fold(t.now())
	if err := t.persist(ctx, next); err != nil {
		return t.snap.ElapsedTime, err
	}
	return next.ElapsedTime, nil
}

// Stop pauses the session and returns it as a pending log spanning from
// the session start to now. The timer stays paused until Reset, so the
// tracked time survives until the log is confirmed or cancelled. A session
// with no tracked time is reset and reported as ErrEmptySession.
func (t *Timer) Stop(ctx context.Context) (model.PendingLog, error) {
	if !t.snap.Active() {
		return model.PendingLog{}, model.ErrNotRunning
	}

	now := t.now()
	next := t.snap
	if next.IsRunning {
		next = t.fold(now)
	}
	if next.ElapsedTime == 0 {
		if err := t.Reset(ctx); err != nil {
			return model.PendingLog{}, err
		}
		return model.PendingLog{}, model.ErrEmptySession
	}
	if err := t.persist(ctx, next); err != nil {
		return model.PendingLog{}, err
	}

	start := now.Add(-time.Duration(next.ElapsedTime) * time.Second)
	if next.SessionStart != nil {
		start = *next.SessionStart
	}
	return model.PendingLog{
		Duration:  next.ElapsedTime,
		StartTime: start,
		EndTime:   now,
	}, nil
}

// Resume seeds the stopwatch with a queued session's elapsed time and
// original start, and runs it from now.
func (t *Timer) Resume(ctx context.Context, elapsed int64, sessionStart time.Time) error {
	if elapsed < 0 {
		elapsed = 0
	}
	now := t.now()
	next := model.StopwatchSnapshot{
		IsRunning:   true,
		StartTime:   &now,
		ElapsedTime: elapsed,
	}
	if sessionStart.IsZero() {
		next.SessionStart = &now
	} else {
		start := sessionStart
		next.SessionStart = &start
	}
	return t.persist(ctx, next)
}

// Reset forces the timer idle and removes the persisted snapshot.
func (t *Timer) Reset(ctx context.Context) error {
	if err := t.store.ClearStopwatch(ctx); err != nil {
		return fmt.Errorf("clearing stopwatch: %w", err)
	}
	t.snap = model.StopwatchSnapshot{}
	return nil
}

// fold returns the snapshot paused at now.
func (t *Timer) fold(now time.Time) model.StopwatchSnapshot {
	next := t.snap
	if next.IsRunning && next.StartTime != nil {
		next.ElapsedTime += model.DeltaSeconds(*next.StartTime, now)
	}
	next.IsRunning = false
	next.StartTime = nil
	return next
}

func (t *Timer) persist(ctx context.Context, next model.StopwatchSnapshot) error {
	if err := t.store.SaveStopwatch(ctx, next); err != nil {
		return fmt.Errorf("saving stopwatch: %w", err)
	}
	t.snap = next
	return nil
}

// normalize repairs snapshots that break the running/start-time pairing.
func normalize(s model.StopwatchSnapshot) model.StopwatchSnapshot {
	if s.IsRunning && s.StartTime == nil {
		s.IsRunning = false
	}
	if !s.IsRunning {
		s.StartTime = nil
	}
	if s.ElapsedTime < 0 {
		s.ElapsedTime = 0
	}
	return s
}
