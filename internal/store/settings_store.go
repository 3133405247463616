package store

import (
	"context"
	"fmt"

	"github.com/nhle/timesheet/internal/model"
)

// GetSettings assembles the user preferences, falling back to defaults for
// every key that has never been written.
func (s *SQLiteStore) GetSettings(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()

	fields := []struct {
		key  string
		dest any
	}{
		{model.SettingProgressBarEnabled, &settings.ProgressBar.Enabled},
		{model.SettingProgressBarColor, &settings.ProgressBar.Color},
		{model.SettingColorCodedProjects, &settings.ColorCodedProjects},
		{model.SettingFrequentSubprojects, &settings.FrequentSubprojects},
		{model.SettingDarkMode, &settings.DarkMode},
	}
	for _, f := range fields {
		if _, err := s.get(ctx, f.key, f.dest, true); err != nil {
			return model.DefaultSettings(), err
		}
	}
	return settings, nil
}

// SaveSetting writes a single preference value.
func (s *SQLiteStore) SaveSetting(ctx context.Context, key string, value any) error {
	if !model.IsSettingKey(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	return s.put(ctx, key, value, true)
}

// GetLoginState reports whether the login gate has been passed.
func (s *SQLiteStore) GetLoginState(ctx context.Context) (bool, error) {
	var loggedIn bool
	if _, err := s.get(ctx, KeyLoggedIn, &loggedIn, false); err != nil {
		return false, err
	}
	return loggedIn, nil
}

// SaveLoginState records the login flag. Logging out removes the key.
func (s *SQLiteStore) SaveLoginState(ctx context.Context, loggedIn bool) error {
	if !loggedIn {
		return s.remove(ctx, KeyLoggedIn)
	}
	return s.put(ctx, KeyLoggedIn, true, false)
}
