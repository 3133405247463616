// Package ledger holds the time log: every span of work that has been
// logged against a project/subproject pair.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/store"
)

// MaxDuration is the largest duration a manual edit may set. Stopwatch
// sessions are logged whatever their length.
const MaxDuration = 24 * 60 * 60

// Observer is notified after every successful mutation with the full,
// updated entry set. The slice must not be modified.
type Observer func(ctx context.Context, entries []model.TimeLogEntry) error

// LogRequest describes a span of work to append. The caller resolves the
// project and subproject before logging so names can be denormalised.
type LogRequest struct {
	ProjectID      string
	SubprojectID   string
	ProjectName    string
	SubprojectName string
	Duration       int64
	Description    string
	StartTime      time.Time
	EndTime        time.Time
}

// Ledger is the in-memory view of the persisted time log.
type Ledger struct {
	store     store.LogStore
	entries   []model.TimeLogEntry
	observers []Observer
}

// Load reads the persisted time log.
func Load(ctx context.Context, s store.LogStore) (*Ledger, error) {
	entries, err := s.GetTimeLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading time logs: %w", err)
	}
	return &Ledger{store: s, entries: entries}, nil
}

// Subscribe registers fn to run after each mutation.
func (l *Ledger) Subscribe(fn Observer) {
	l.observers = append(l.observers, fn)
}

// Entries returns a copy of every entry in insertion order.
func (l *Ledger) Entries() []model.TimeLogEntry {
	out := make([]model.TimeLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Get returns the entry with the given id.
func (l *Ledger) Get(id string) (model.TimeLogEntry, bool) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.TimeLogEntry{}, false
}

// Between returns entries whose Date falls in [from, to], both given in
// model.DateLayout.
func (l *Ledger) Between(from, to string) []model.TimeLogEntry {
	var out []model.TimeLogEntry
	for _, e := range l.entries {
		if e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	return out
}

// LogTime appends a new entry and returns it.
func (l *Ledger) LogTime(ctx context.Context, req LogRequest) (model.TimeLogEntry, error) {
	if req.ProjectID == "" || req.SubprojectID == "" ||
		strings.TrimSpace(req.ProjectName) == "" || strings.TrimSpace(req.SubprojectName) == "" {
		return model.TimeLogEntry{}, model.ErrUnresolvedProjectOrSubproject
	}
	if req.Duration < 0 {
		return model.TimeLogEntry{}, model.ErrInvalidDuration
	}

	entry := model.TimeLogEntry{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ProjectID:      req.ProjectID,
		SubprojectID:   req.SubprojectID,
		ProjectName:    req.ProjectName,
		SubprojectName: req.SubprojectName,
		Duration:       req.Duration,
		Description:    strings.TrimSpace(req.Description),
		Date:           model.DateKey(req.StartTime),
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
	}

	next := append(l.Entries(), entry)
	if err := l.commit(ctx, next); err != nil {
		return model.TimeLogEntry{}, fmt.Errorf("logging time: %w", err)
	}
	return entry, nil
}

// UpdateTime replaces the duration of the entry with the given id.
func (l *Ledger) UpdateTime(ctx context.Context, id string, seconds int64) error {
	if seconds < 0 || seconds > MaxDuration {
		return model.ErrInvalidDuration
	}

	next := l.Entries()
	found := false
	for i := range next {
		if next[i].ID == id {
			next[i].Duration = seconds
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", model.ErrLogNotFound, id)
	}

	if err := l.commit(ctx, next); err != nil {
		return fmt.Errorf("updating time log %s: %w", id, err)
	}
	return nil
}

// RemoveProject deletes every entry logged against projectID and returns
// how many were removed.
func (l *Ledger) RemoveProject(ctx context.Context, projectID string) (int, error) {
	return l.removeWhere(ctx, func(e model.TimeLogEntry) bool {
		return e.ProjectID == projectID
	})
}

// RemoveSubproject deletes every entry logged against the given pair.
func (l *Ledger) RemoveSubproject(ctx context.Context, projectID, subprojectID string) (int, error) {
	return l.removeWhere(ctx, func(e model.TimeLogEntry) bool {
		return e.ProjectID == projectID && e.SubprojectID == subprojectID
	})
}

func (l *Ledger) removeWhere(ctx context.Context, match func(model.TimeLogEntry) bool) (int, error) {
	next := make([]model.TimeLogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if !match(e) {
			next = append(next, e)
		}
	}
	removed := len(l.entries) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := l.commit(ctx, next); err != nil {
		return 0, fmt.Errorf("removing time logs: %w", err)
	}
	return removed, nil
}

// commit persists next, swaps it in and notifies observers. The in-memory
// set only changes once the write has succeeded.
func (l *Ledger) commit(ctx context.Context, next []model.TimeLogEntry) error {
	if err := l.store.SaveTimeLogs(ctx, next); err != nil {
		return err
	}
	l.entries = next

	for _, fn := range l.observers {
		if err := fn(ctx, l.Entries()); err != nil {
			return fmt.Errorf("notifying ledger observer: %w", err)
		}
	}
	return nil
}
