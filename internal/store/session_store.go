package store

import (
	"context"

	"github.com/nhle/timesheet/internal/model"
)

// GetQueuedSessions returns the paused sessions waiting to be resumed.
func (s *SQLiteStore) GetQueuedSessions(ctx context.Context) ([]model.QueuedSession, error) {
	var sessions []model.QueuedSession
	if _, err := s.get(ctx, KeyQueuedSessions, &sessions, true); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SaveQueuedSessions replaces the whole queue.
func (s *SQLiteStore) SaveQueuedSessions(ctx context.Context, sessions []model.QueuedSession) error {
	if sessions == nil {
		sessions = []model.QueuedSession{}
	}
	return s.put(ctx, KeyQueuedSessions, sessions, true)
}

// GetStopwatch returns the persisted timer snapshot. The snapshot bypasses
// the read cache because a second process may be driving the same timer.
func (s *SQLiteStore) GetStopwatch(ctx context.Context) (*model.StopwatchSnapshot, error) {
	var snap model.StopwatchSnapshot
	found, err := s.get(ctx, KeyStopwatch, &snap, false)
	if err != nil || !found {
		return nil, err
	}
	return &snap, nil
}

// SaveStopwatch writes the timer snapshot.
func (s *SQLiteStore) SaveStopwatch(ctx context.Context, snap model.StopwatchSnapshot) error {
	return s.put(ctx, KeyStopwatch, snap, false)
}

// ClearStopwatch removes the timer snapshot.
func (s *SQLiteStore) ClearStopwatch(ctx context.Context) error {
	return s.remove(ctx, KeyStopwatch)
}

// GetSelection returns the stored selection. Missing IDs come back empty.
func (s *SQLiteStore) GetSelection(ctx context.Context) (model.Selection, error) {
	var sel model.Selection
	if _, err := s.get(ctx, KeySelectedProject, &sel.ProjectID, false); err != nil {
		return model.Selection{}, err
	}
	if _, err := s.get(ctx, KeySelectedSubproject, &sel.SubprojectID, false); err != nil {
		return model.Selection{}, err
	}
	return sel, nil
}

// SaveSelection writes both selection keys. An empty ID removes its key.
func (s *SQLiteStore) SaveSelection(ctx context.Context, sel model.Selection) error {
	pairs := []struct{ key, id string }{
		{KeySelectedProject, sel.ProjectID},
		{KeySelectedSubproject, sel.SubprojectID},
	}
	for _, p := range pairs {
		var err error
		if p.id == "" {
			err = s.remove(ctx, p.key)
		} else {
			err = s.put(ctx, p.key, p.id, false)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
