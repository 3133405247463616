package store

import (
	"context"

	"github.com/nhle/timesheet/internal/model"
)

// Persisted keys. The names match the layout of earlier versions of the
// application so exported data stays recognisable.
const (
	KeyProjects           = "timesheet-projects"
	KeyTimeLogs           = "timesheet-logs"
	KeyQueuedSessions     = "queued-projects"
	KeySelectedProject    = "selected-project-id"
	KeySelectedSubproject = "selected-subproject-id"
	KeyStopwatch          = "stopwatch-state"
	KeyLoggedIn           = "is-logged-in"
)

// ProjectStore persists the project registry as one list value.
type ProjectStore interface {
	GetProjects(ctx context.Context) ([]model.Project, error)
	SaveProjects(ctx context.Context, projects []model.Project) error
}

// LogStore persists the time log ledger as one list value.
type LogStore interface {
	GetTimeLogs(ctx context.Context) ([]model.TimeLogEntry, error)
	SaveTimeLogs(ctx context.Context, logs []model.TimeLogEntry) error
}

// QueueStore persists the queued session set as one list value.
type QueueStore interface {
	GetQueuedSessions(ctx context.Context) ([]model.QueuedSession, error)
	SaveQueuedSessions(ctx context.Context, sessions []model.QueuedSession) error
}

// StopwatchStore persists the single session timer snapshot.
type StopwatchStore interface {
	// GetStopwatch returns nil when no snapshot is stored.
	GetStopwatch(ctx context.Context) (*model.StopwatchSnapshot, error)
	SaveStopwatch(ctx context.Context, snap model.StopwatchSnapshot) error
	ClearStopwatch(ctx context.Context) error
}

// SelectionStore persists the selected project and subproject IDs.
type SelectionStore interface {
	GetSelection(ctx context.Context) (model.Selection, error)
	SaveSelection(ctx context.Context, sel model.Selection) error
}

// SettingsStore persists user preferences and the login flag.
type SettingsStore interface {
	GetSettings(ctx context.Context) (model.Settings, error)
	SaveSetting(ctx context.Context, key string, value any) error
	GetLoginState(ctx context.Context) (bool, error)
	SaveLoginState(ctx context.Context, loggedIn bool) error
}

// Store defines the persistence interface for every piece of timesheet
// state. Each component writes its own disjoint keys.
type Store interface {
	ProjectStore
	LogStore
	QueueStore
	StopwatchStore
	SelectionStore
	SettingsStore

	// ClearCache drops every cached read so the next read hits the database.
	ClearCache()
	Close() error
}
