package store

import (
	"context"

	"github.com/nhle/timesheet/internal/model"
)

// GetTimeLogs returns the stored ledger entries in insertion order.
func (s *SQLiteStore) GetTimeLogs(ctx context.Context) ([]model.TimeLogEntry, error) {
	var logs []model.TimeLogEntry
	if _, err := s.get(ctx, KeyTimeLogs, &logs, true); err != nil {
		return nil, err
	}
	return logs, nil
}

// SaveTimeLogs replaces the whole ledger.
func (s *SQLiteStore) SaveTimeLogs(ctx context.Context, logs []model.TimeLogEntry) error {
	if logs == nil {
		logs = []model.TimeLogEntry{}
	}
	return s.put(ctx, KeyTimeLogs, logs, true)
}
