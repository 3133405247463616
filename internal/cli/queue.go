package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/timesheet/internal/report"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List, resume or discard paused sessions",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued sessions",
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		out := cmd.OutOrStdout()
		queued := e.tracker.Queue().List()
		if len(queued) == 0 {
			fmt.Fprintln(out, "Queue is empty.")
			return nil
		}
		for _, qs := range queued {
			fmt.Fprintf(out, "%-36s  %s  %s / %s  since %s\n",
				qs.ID, report.Clock(qs.ElapsedTime), qs.ProjectName, qs.SubprojectName,
				qs.StartTime.Local().Format("Jan 2 15:04"))
		}
		return nil
	}),
}

var queueResumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Resume a queued session; an active session takes its place in the queue",
	Args:  cobra.ExactArgs(1),
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		if err := e.tracker.Resume(cmd.Context(), args[0]); err != nil {
			return err
		}
		st := e.tracker.Status(e.now())
		fmt.Fprintf(cmd.OutOrStdout(), "Resumed %s / %s at %s\n", st.ProjectName, st.SubprojectName, report.Clock(st.Elapsed))
		return nil
	}),
}

var queueDiscardCmd = &cobra.Command{
	Use:   "discard <id>",
	Short: "Drop a queued session without logging it",
	Args:  cobra.ExactArgs(1),
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		if err := e.tracker.Discard(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Discarded.")
		return nil
	}),
}

func init() {
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueResumeCmd)
	queueCmd.AddCommand(queueDiscardCmd)
}
