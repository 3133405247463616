package store

import (
	"context"

	"github.com/nhle/timesheet/internal/model"
)

// GetProjects returns the stored project list, or nil if none has been saved.
func (s *SQLiteStore) GetProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if _, err := s.get(ctx, KeyProjects, &projects, true); err != nil {
		return nil, err
	}
	return projects, nil
}

// SaveProjects replaces the whole project list.
func (s *SQLiteStore) SaveProjects(ctx context.Context, projects []model.Project) error {
	if projects == nil {
		projects = []model.Project{}
	}
	return s.put(ctx, KeyProjects, projects, true)
}
