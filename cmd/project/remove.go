package project

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/utils"
)

func NewCmdProjectRemove() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <project-id>",
		Short: "Remove a project with all its applications, images, configurations and releases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := utils.ParseID("project", args[0])
			if err != nil {
				return err
			}

			projects := app.GetProjectService()
			p, err := projects.Get(projectID)
			if err != nil {
				return utils.HandleCommandError("retrieving project", err, "project_id", projectID)
			}

			force, _ := cmd.Flags().GetBool("force")
			if !force {
				confirmed, err := Confirm(cmd, "Remove project "+p.Name+" and everything in it?")
				if err != nil {
					return err
				}
				if !confirmed {
					return output.FprintPlain(cmd, "Aborted.")
				}
			}

			if err := projects.Remove(projectID); err != nil {
				return utils.HandleCommandError("removing project", err, "project_id", projectID)
			}
			return output.FprintSuccess(cmd, "Project %s removed", p.Name)
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	return cmd
}

// Confirm asks a yes/no question on the command's input
func Confirm(cmd *cobra.Command, question string) (bool, error) {
	if err := output.FprintWarning(cmd, "%s [y/N]", question); err != nil {
		return false, err
	}
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
