package project

import (
	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/utils"
)

func NewCmdProjectShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show project details and its applications",
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
			applications, err := projects.ListApplications(projectID)
			if err != nil {
				return utils.HandleCommandError("listing applications", err, "project_id", projectID)
			}

			out, err := output.PrintProjectDetails(p)
			if err != nil {
				return utils.HandleCommandError("printing project details", err)
			}
			list, err := output.PrintApplicationList(applications)
			if err != nil {
				return utils.HandleCommandError("printing application list", err)
			}
			return output.FprintPlain(cmd, "%s\n%s", out, list)
		},
	}
}
