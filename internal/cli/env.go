package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/timesheet/internal/credential"
	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/store"
	"github.com/nhle/timesheet/internal/tracker"
)

// env is what a command works with: configuration, the open store and the
// tracker loaded from it.
type env struct {
	cfg     *model.AppConfig
	store   store.Store
	tracker *tracker.Tracker
	// vault is nil when no keyring backend could be opened.
	vault *credential.Vault
	now   func() time.Time
	close func() error
}

// openEnv is replaced in tests.
var openEnv = defaultOpenEnv

func defaultOpenEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Data.DBPath = dbPath
	}

	s, err := store.NewSQLiteStore(cfg.Data.DBPath, store.WithCacheTTL(cfg.CacheTTL()))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	t, err := tracker.Open(cmd.Context(), s)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("loading timesheet: %w", err)
	}

	vault, err := credential.Open()
	if err != nil {
		log.Printf("keyring unavailable: %v", err)
		vault = nil
	}

	return &env{cfg: cfg, store: s, tracker: t, vault: vault, now: time.Now, close: s.Close}, nil
}

// Close releases the store.
func (e *env) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

// requireLogin refuses when the login gate is enabled and not passed.
func (e *env) requireLogin(ctx context.Context) error {
	if !e.cfg.Security.RequireLogin {
		return nil
	}
	ok, err := e.store.GetLoginState(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: run 'timesheet login' first", model.ErrNotLoggedIn)
	}
	return nil
}

// withEnv wraps a command body with opening and closing the environment.
func withEnv(run func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		return run(cmd, args, e)
	}
}

// withLogin is withEnv for commands that change or reveal timesheet data.
func withLogin(run func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		if err := e.requireLogin(cmd.Context()); err != nil {
			return err
		}
		return run(cmd, args, e)
	})
}
