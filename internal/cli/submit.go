package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/timesheet/internal/credential"
	"github.com/nhle/timesheet/internal/submit"
)

var (
	submitDate   string
	submitDryRun bool
)

// submitTimeout bounds the IMAP round trip.
const submitTimeout = 30 * time.Second

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Save the week's timesheet as a draft email",
	Long: `Compose the Monday to Friday timesheet as a plain-text email and
append it to the configured IMAP mailbox (Drafts by default), where it
can be reviewed and sent. The IMAP password is read from the keyring.`,
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		day, err := parseDay(submitDate, e.now())
		if err != nil {
			return err
		}
		logs := e.tracker.Ledger().Entries()
		out := cmd.OutOrStdout()

		if submitDryRun {
			from := e.cfg.Submit.From
			if from == "" {
				from = e.cfg.Submit.Username
			}
			raw, err := submit.WeeklyDraft(logs, day, from, e.cfg.Submit.To).Bytes()
			if err != nil {
				return err
			}
			_, err = out.Write(raw)
			return err
		}

		if e.vault == nil {
			return errors.New("no keyring available for the IMAP password")
		}
		password, err := e.vault.Get(credential.KeyIMAPPassword)
		if errors.Is(err, credential.ErrNotFound) {
			return fmt.Errorf("no IMAP password stored; set one in the settings screen: %w", err)
		}
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), submitTimeout)
		defer cancel()
		res, err := submit.Week(ctx, e.cfg.Submit, password, logs, day)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved timesheet draft to %s (%d bytes)\n", res.Mailbox, res.Size)
		return nil
	}),
}

func init() {
	submitCmd.Flags().StringVar(&submitDate, "week", "", "Any day of the week to submit (YYYY-MM-DD)")
	submitCmd.Flags().BoolVar(&submitDryRun, "dry-run", false, "Print the message instead of uploading it")
}
