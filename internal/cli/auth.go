package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nhle/timesheet/internal/credential"
)

// readPasscode is replaced in tests.
var readPasscode = promptPasscode

func promptPasscode(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("a terminal is required to enter the passcode")
	}
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading passcode: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Unlock the timesheet with the passcode",
	Long: `Check the passcode against the keyring and record the session as
logged in. The first login chooses the passcode.`,
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		if e.vault == nil {
			return errors.New("no keyring available to store the passcode")
		}
		out := cmd.OutOrStdout()

		has, err := e.vault.HasPasscode()
		if err != nil {
			return err
		}

		passcode, err := readPasscode(out, "Passcode: ")
		if err != nil {
			return err
		}

		if !has {
			again, err := readPasscode(out, "Repeat passcode: ")
			if err != nil {
				return err
			}
			if again != passcode {
				return errors.New("passcodes do not match")
			}
			if err := e.vault.SetPasscode(passcode); err != nil {
				return err
			}
		} else if err := e.vault.CheckPasscode(passcode); err != nil {
			if errors.Is(err, credential.ErrWrongPasscode) {
				return err
			}
			return fmt.Errorf("checking passcode: %w", err)
		}

		if err := e.store.SaveLoginState(cmd.Context(), true); err != nil {
			return err
		}
		fmt.Fprintln(out, "Logged in.")
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Lock the timesheet until the next login",
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		if err := e.store.SaveLoginState(cmd.Context(), false); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	}),
}
