package cli

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/timesheet/internal/app"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive timesheet",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	return withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		ctx := cmd.Context()

		// bubbletea owns stdout; log lines go to a file next to the database.
		logPath := filepath.Join(filepath.Dir(e.cfg.Data.DBPath), "timesheet.log")
		f, err := tea.LogToFile(logPath, "timesheet")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		settings, err := e.store.GetSettings(ctx)
		if err != nil {
			return err
		}
		loggedIn, err := e.store.GetLoginState(ctx)
		if err != nil {
			return err
		}

		m := app.New(app.Deps{
			Config:   e.cfg,
			Store:    e.store,
			Tracker:  e.tracker,
			Vault:    e.vault,
			Settings: settings,
			LoggedIn: loggedIn,
		})
		_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	})(cmd, args)
}
