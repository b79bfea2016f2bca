package project

import (
	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/utils"
)

func NewCmdProjectRename() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project-id> <name>",
		Short: "Rename a project (the slug is kept)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := utils.ParseID("project", args[0])
			if err != nil {
				return err
			}

			renamed, err := app.GetProjectService().Rename(projectID, args[1])
			if err != nil {
				return utils.HandleCommandError("renaming project", err, "project_id", projectID)
			}
			return output.FprintSuccess(cmd, "Project %s renamed to %s", renamed.ID, renamed.Name)
		},
	}
}
