package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
	"github.com/nhle/timesheet/internal/timer"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stopwatch, selection and queue",
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		st := e.tracker.Status(e.now())
		out := cmd.OutOrStdout()
		if done, err := writeStructured(out, statusFormat, st); done {
			return err
		}

		target := "nothing selected"
		if st.ProjectName != "" {
			target = st.ProjectName + " / " + st.SubprojectName
		}
		fmt.Fprintf(out, "%-8s %s  %s\n", st.State, report.Clock(st.Elapsed), target)
		if st.SessionStart != nil {
			fmt.Fprintf(out, "since    %s\n", st.SessionStart.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(out, "queued   %d\n", st.Queued)
		return nil
	}),
}

var selectCmd = &cobra.Command{
	Use:   "select <project> [subproject]",
	Short: "Select the project and subproject to track",
	Long: `Select by id or by name. Selecting a different pair while a session
is active moves that session to the queue.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		reg := e.tracker.Registry()
		if len(args) == 1 {
			p, err := reg.FindProject(args[0])
			if err != nil {
				return err
			}
			if err := e.tracker.Select(cmd.Context(), p.ID, ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", p.Name)
			return nil
		}

		p, sp, err := reg.Find(args[0], args[1])
		if err != nil {
			return err
		}
		if err := e.tracker.Select(cmd.Context(), p.ID, sp.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Selected %s / %s\n", p.Name, sp.Name)
		return nil
	}),
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start or resume the stopwatch for the selected pair",
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		if err := e.tracker.Start(cmd.Context()); err != nil {
			return err
		}
		st := e.tracker.Status(e.now())
		fmt.Fprintf(cmd.OutOrStdout(), "Started %s / %s at %s\n", st.ProjectName, st.SubprojectName, report.Clock(st.Elapsed))
		return nil
	}),
}

var pauseToQueue bool

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the stopwatch, optionally moving the session to the queue",
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		out := cmd.OutOrStdout()
		if pauseToQueue {
			qs, err := e.tracker.PauseToQueue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Queued %s / %s at %s (%s)\n", qs.ProjectName, qs.SubprojectName, report.Clock(qs.ElapsedTime), qs.ID)
			return nil
		}

		elapsed, err := e.tracker.Pause(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Paused at %s\n", report.Clock(elapsed))
		return nil
	}),
}

var (
	stopMessage string
	stopDiscard bool
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the stopwatch and log the session",
	Long: `Stop the session and add it to the time log. Without -m the
description is asked for interactively when a terminal is attached.
--discard drops the session instead.`,
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		pending, err := e.tracker.Stop(ctx)
		if errors.Is(err, model.ErrEmptySession) {
			fmt.Fprintln(out, "Nothing to log.")
			return nil
		}
		if err != nil {
			return err
		}

		if stopDiscard {
			if err := e.tracker.CancelLog(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "Discarded %s\n", report.Clock(pending.Duration))
			return nil
		}

		desc := stopMessage
		if !cmd.Flags().Changed("message") && isTTY() {
			keep := true
			form := huh.NewForm(huh.NewGroup(
				huh.NewText().
					Title(fmt.Sprintf("Log %s", report.Clock(pending.Duration))).
					Placeholder("What did you work on?").
					Value(&desc),
				huh.NewConfirm().
					Affirmative("Log time").
					Negative("Discard").
					Value(&keep),
			))
			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					keep = false
				} else {
					return err
				}
			}
			if !keep {
				if err := e.tracker.CancelLog(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "Discarded.")
				return nil
			}
		}

		entry, err := e.tracker.ConfirmLog(ctx, desc)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Logged %s to %s / %s (%s)\n", report.Clock(entry.Duration), entry.ProjectName, entry.SubprojectName, entry.ID)
		return nil
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the stopwatch without logging",
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		if e.tracker.Timer().State() == timer.Idle {
			fmt.Fprintln(cmd.OutOrStdout(), "Stopwatch is already idle.")
			return nil
		}
		if err := e.tracker.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Stopwatch reset.")
		return nil
	}),
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", formatTable, "Output format: table, json or yaml")
	pauseCmd.Flags().BoolVar(&pauseToQueue, "queue", false, "Move the session to the queue")
	stopCmd.Flags().StringVarP(&stopMessage, "message", "m", "", "Description for the log entry")
	stopCmd.Flags().BoolVar(&stopDiscard, "discard", false, "Drop the session instead of logging it")
}
