package project

import (
	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/utils"
)

func NewCmdProjectList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.GetProjectService().List()
			if err != nil {
				return utils.HandleCommandError("listing projects", err)
			}

			out, err := output.PrintProjectList(projects)
			if err != nil {
				return utils.HandleCommandError("printing project list table", err)
			}
			return output.FprintPlain(cmd, "%s", out)
		},
	}
}
