package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
)

var (
	logsDate   string
	logsWeek   bool
	logsFormat string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List or correct time log entries",
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time log entries for a day or a week",
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		day, err := parseDay(logsDate, e.now())
		if err != nil {
			return err
		}
		from, to := model.DateKey(day), model.DateKey(day)
		if logsWeek {
			week := report.Workweek(day)
			from, to = model.DateKey(week[0]), model.DateKey(week[len(week)-1])
		}
		entries := e.tracker.Ledger().Between(from, to)

		out := cmd.OutOrStdout()
		if done, err := writeStructured(out, logsFormat, entries); done {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No entries.")
			return nil
		}
		for _, le := range entries {
			fmt.Fprintf(out, "%-36s  %s  %s  %s / %s", le.ID, le.Date, report.Clock(le.Duration), le.ProjectName, le.SubprojectName)
			if le.Description != "" {
				fmt.Fprintf(out, "  %s", le.Description)
			}
			fmt.Fprintln(out)
		}
		return nil
	}),
}

var logsEditCmd = &cobra.Command{
	Use:   "edit <id> <duration>",
	Short: "Set the duration of an entry",
	Long: `Set the duration of a time log entry. The duration is either decimal
hours ("1.5") or a Go duration ("1h30m") and must not exceed 24 hours.`,
	Args: cobra.ExactArgs(2),
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		seconds, err := report.ParseDuration(args[1])
		if err != nil {
			return err
		}
		if err := e.tracker.UpdateLogDuration(cmd.Context(), args[0], seconds); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], report.Clock(seconds))
		return nil
	}),
}

func init() {
	logsListCmd.Flags().StringVar(&logsDate, "date", "", "Day to list (YYYY-MM-DD)")
	logsListCmd.Flags().BoolVar(&logsWeek, "week", false, "List the whole workweek")
	logsListCmd.Flags().StringVar(&logsFormat, "format", formatTable, "Output format: table, json or yaml")

	logsCmd.AddCommand(logsListCmd)
	logsCmd.AddCommand(logsEditCmd)
}
