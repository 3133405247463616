// Package queue holds sessions that were set aside so another one could
// run. The whole set is persisted as one list on every change.
package queue

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/store"
)

// Queue is the set of queued sessions in insertion order.
type Queue struct {
	store    store.QueueStore
	sessions []model.QueuedSession
}

// Load reads the persisted queue.
func Load(ctx context.Context, s store.QueueStore) (*Queue, error) {
	sessions, err := s.GetQueuedSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading queued sessions: %w", err)
	}
	return &Queue{store: s, sessions: sessions}, nil
}

// List returns a copy of the queued sessions.
func (q *Queue) List() []model.QueuedSession {
	out := make([]model.QueuedSession, len(q.sessions))
	copy(out, q.sessions)
	return out
}

// Len returns the number of queued sessions.
func (q *Queue) Len() int {
	return len(q.sessions)
}

// Get returns the queued session with the given id.
func (q *Queue) Get(id string) (model.QueuedSession, bool) {
	for _, s := range q.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return model.QueuedSession{}, false
}

// Add appends a session. Several entries for the same project/subproject
// pair may coexist; they are not merged.
func (q *Queue) Add(ctx context.Context, s model.QueuedSession) (model.QueuedSession, error) {
	if s.ID == "" {
		s.ID = uuid.Must(uuid.NewV7()).String()
	}
	if s.ElapsedTime < 0 {
		s.ElapsedTime = 0
	}

	next := append(q.List(), s)
	if err := q.save(ctx, next); err != nil {
		return model.QueuedSession{}, fmt.Errorf("queueing session: %w", err)
	}
	return s, nil
}

// Remove takes the session with the given id out of the queue and
// returns it.
func (q *Queue) Remove(ctx context.Context, id string) (model.QueuedSession, error) {
	next := make([]model.QueuedSession, 0, len(q.sessions))
	var removed model.QueuedSession
	found := false
	for _, s := range q.sessions {
		if !found && s.ID == id {
			removed = s
			found = true
			continue
		}
		next = append(next, s)
	}
	if !found {
		return model.QueuedSession{}, fmt.Errorf("%w: %s", model.ErrQueuedSessionNotFound, id)
	}

	if err := q.save(ctx, next); err != nil {
		return model.QueuedSession{}, fmt.Errorf("removing queued session: %w", err)
	}
	return removed, nil
}

// Discard abandons a queued session. Its time is not logged.
func (q *Queue) Discard(ctx context.Context, id string) error {
	_, err := q.Remove(ctx, id)
	return err
}

// RemoveProject drops every queued session for projectID and, when
// subprojectID is non-empty, only those for that pair.
func (q *Queue) RemoveProject(ctx context.Context, projectID, subprojectID string) (int, error) {
	next := make([]model.QueuedSession, 0, len(q.sessions))
	for _, s := range q.sessions {
		if s.ProjectID == projectID && (subprojectID == "" || s.SubprojectID == subprojectID) {
			continue
		}
		next = append(next, s)
	}
	removed := len(q.sessions) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := q.save(ctx, next); err != nil {
		return 0, fmt.Errorf("removing queued sessions: %w", err)
	}
	return removed, nil
}

func (q *Queue) save(ctx context.Context, next []model.QueuedSession) error {
	if err := q.store.SaveQueuedSessions(ctx, next); err != nil {
		return err
	}
	q.sessions = next
	return nil
}
