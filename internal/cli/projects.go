package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
)

var (
	projectsFormat string
	projectsFreq   bool
	deleteYes      bool
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Manage projects and subprojects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with their subprojects and logged hours",
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		out := cmd.OutOrStdout()
		projects := e.tracker.Registry().Projects()
		if projectsFreq {
			projects = report.FrequentProjects(projects, report.FrequentLimit)
		}
		if done, err := writeStructured(out, projectsFormat, projects); done {
			return err
		}

		for _, p := range projects {
			fmt.Fprintf(out, "%-4s %-32s %6sh\n", p.ID, p.Name, report.Hours(p.TotalTime))
			for _, sp := range p.Subprojects {
				fmt.Fprintf(out, "     %-6s %-25s %6sh\n", sp.ID, sp.Name, report.Hours(sp.TotalTime))
			}
		}
		return nil
	}),
}

var projectsAddCmd = &cobra.Command{
	Use:   "add <name> <first subproject>",
	Short: "Create a project with its first subproject",
	Args:  cobra.ExactArgs(2),
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		p, err := e.tracker.Registry().AddProject(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added project %s (%s)\n", p.Name, p.ID)
		return nil
	}),
}

var projectsAddSubCmd = &cobra.Command{
	Use:   "add-sub <project> <name>",
	Short: "Add a subproject to a project",
	Args:  cobra.ExactArgs(2),
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		reg := e.tracker.Registry()
		p, err := reg.FindProject(args[0])
		if err != nil {
			return err
		}
		sp, err := reg.AddSubproject(cmd.Context(), p.ID, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s / %s (%s)\n", p.Name, sp.Name, sp.ID)
		return nil
	}),
}

var projectsRenameCmd = &cobra.Command{
	Use:   "rename <project> [subproject] <new name>",
	Short: "Rename a project, or a subproject when three arguments are given",
	Args:  cobra.RangeArgs(2, 3),
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		ctx := cmd.Context()
		reg := e.tracker.Registry()
		name := args[len(args)-1]

		if len(args) == 2 {
			p, err := reg.FindProject(args[0])
			if err != nil {
				return err
			}
			if err := reg.UpdateProject(ctx, p.ID, model.ProjectUpdate{Name: &name}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", p.Name, strings.TrimSpace(name))
			return nil
		}

		p, sp, err := reg.Find(args[0], args[1])
		if err != nil {
			return err
		}
		if err := reg.UpdateSubproject(ctx, p.ID, sp.ID, model.SubprojectUpdate{Name: &name}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s / %s to %s\n", p.Name, sp.Name, strings.TrimSpace(name))
		return nil
	}),
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <project>",
	Short: "Delete a project with its logs and queued sessions",
	Args:  cobra.ExactArgs(1),
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		p, err := e.tracker.Registry().FindProject(args[0])
		if err != nil {
			return err
		}
		ok, err := confirmDelete(fmt.Sprintf("Delete project %q and everything logged to it?", p.Name))
		if err != nil || !ok {
			return err
		}
		if err := e.tracker.DeleteProject(cmd.Context(), p.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", p.Name)
		return nil
	}),
}

var projectsDeleteSubCmd = &cobra.Command{
	Use:   "delete-sub <project> <subproject>",
	Short: "Delete a subproject with its logs and queued sessions",
	Args:  cobra.ExactArgs(2),
	RunE: withLogin(func(cmd *cobra.Command, args []string, e *env) error {
		p, sp, err := e.tracker.Registry().Find(args[0], args[1])
		if err != nil {
			return err
		}
		ok, err := confirmDelete(fmt.Sprintf("Delete %s / %s and everything logged to it?", p.Name, sp.Name))
		if err != nil || !ok {
			return err
		}
		if err := e.tracker.DeleteSubproject(cmd.Context(), p.ID, sp.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s / %s\n", p.Name, sp.Name)
		return nil
	}),
}

// confirmDelete asks before a destructive change. --yes or a missing
// terminal skips the prompt.
func confirmDelete(title string) (bool, error) {
	if deleteYes || !isTTY() {
		return true, nil
	}
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func init() {
	projectsListCmd.Flags().StringVar(&projectsFormat, "format", formatTable, "Output format: table, json or yaml")
	projectsListCmd.Flags().BoolVar(&projectsFreq, "frequent", false, "Only the most used projects")
	projectsCmd.PersistentFlags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsAddSubCmd)
	projectsCmd.AddCommand(projectsRenameCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	projectsCmd.AddCommand(projectsDeleteSubCmd)
}
