package project

import (
	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/utils"
	"github.com/cabotage/cabotage/project"
)

func NewCmdProjectCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Long: `Create a new project. The slug is derived from the name unless --slug is given
and must be unique within the organization.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, _ := cmd.Flags().GetString("slug")
			orgFlag, _ := cmd.Flags().GetString("organization")

			input := project.CreateProjectInput{Name: args[0], Slug: slug}
			if orgFlag != "" {
				orgID, err := utils.ParseID("organization", orgFlag)
				if err != nil {
					return err
				}
				input.OrganizationID = orgID
			}

			created, err := app.GetProjectService().Create(input)
			if err != nil {
				return utils.HandleCommandError("creating project", err, "name", args[0])
			}

			out, err := output.PrintProjectDetails(created)
			if err != nil {
				return utils.HandleCommandError("printing project details", err)
			}
			return output.FprintPlain(cmd, "%s", out)
		},
	}

	cmd.Flags().StringP("slug", "s", "", "Explicit slug (derived from the name if not specified)")
	cmd.Flags().StringP("organization", "o", "", "Owning organization ID")
	return cmd
}
