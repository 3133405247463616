package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
)

var (
	reportWeek   bool
	reportDate   string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show logged hours for a day or a week",
	Long: `Print the hours grid for one day, or with --week for Monday to Friday
of the week containing the date. Dates use YYYY-MM-DD and default to
today.`,
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		day, err := parseDay(reportDate, e.now())
		if err != nil {
			return err
		}

		logs := e.tracker.Ledger().Entries()
		sheet := report.Daily(logs, day)
		if reportWeek {
			sheet = report.Weekly(logs, day)
		}

		out := cmd.OutOrStdout()
		if done, err := writeStructured(out, reportFormat, sheet); done {
			return err
		}
		fmt.Fprintln(out, report.Table(sheet))
		return nil
	}),
}

// parseDay reads a YYYY-MM-DD date in local time. An empty value means the
// day of now.
func parseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	d, err := time.ParseInLocation(model.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Show the whole workweek")
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Day to report (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportFormat, "format", formatTable, "Output format: table, json or yaml")
}
