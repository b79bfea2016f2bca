// Package application provides commands for managing applications within projects.
package application

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/utils"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/project"
)

func NewCmdApplication() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "app",
		Aliases: []string{"application"},
		Short:   "Manage applications",
	}

	cmd.AddCommand(NewCmdApplicationCreate())
	cmd.AddCommand(NewCmdApplicationList())
	cmd.AddCommand(NewCmdApplicationShow())
	cmd.AddCommand(NewCmdApplicationSetPlatform())
	cmd.AddCommand(NewCmdApplicationRemove())
	return cmd
}

func platformNames() string {
	names := make([]string, 0, len(domain.Platforms()))
	for _, p := range domain.Platforms() {
		names = append(names, p.String())
	}
	return strings.Join(names, "|")
}

func NewCmdApplicationCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <project-id> <name>",
		Short: "Create an application in a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := utils.ParseID("project", args[0])
			if err != nil {
				return err
			}
			slug, _ := cmd.Flags().GetString("slug")
			platform, _ := cmd.Flags().GetString("platform")

			created, err := app.GetProjectService().CreateApplication(project.CreateApplicationInput{
				ProjectID: projectID,
				Name:      args[1],
				Slug:      slug,
				Platform:  platform,
			})
			if err != nil {
				return utils.HandleCommandError("creating application", err, "project_id", projectID)
			}

			out, err := output.PrintApplicationDetails(created)
			if err != nil {
				return utils.HandleCommandError("printing application details", err)
			}
			return output.FprintPlain(cmd, "%s", out)
		},
	}

	cmd.Flags().StringP("slug", "s", "", "Explicit slug (derived from the name if not specified)")
	cmd.Flags().StringP("platform", "p", "", "Target platform, one of "+platformNames())
	return cmd
}

func NewCmdApplicationList() *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-id>",
		Short: "List the applications of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := utils.ParseID("project", args[0])
			if err != nil {
				return err
			}

			applications, err := app.GetProjectService().ListApplications(projectID)
			if err != nil {
				return utils.HandleCommandError("listing applications", err, "project_id", projectID)
			}

			out, err := output.PrintApplicationList(applications)
			if err != nil {
				return utils.HandleCommandError("printing application list", err)
			}
			return output.FprintPlain(cmd, "%s", out)
		},
	}
}

func NewCmdApplicationShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <application-id>",
		Short: "Show application details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}

			a, err := app.GetProjectService().GetApplication(applicationID)
			if err != nil {
				return utils.HandleCommandError("retrieving application", err, "application_id", applicationID)
			}

			out, err := output.PrintApplicationDetails(a)
			if err != nil {
				return utils.HandleCommandError("printing application details", err)
			}
			return output.FprintPlain(cmd, "%s", out)
		},
	}
}

func NewCmdApplicationSetPlatform() *cobra.Command {
	return &cobra.Command{
		Use:   "set-platform <application-id> <" + platformNames() + ">",
		Short: "Change the target platform of an application",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}

			updated, err := app.GetProjectService().SetPlatform(applicationID, args[1])
			if err != nil {
				return utils.HandleCommandError("setting platform", err, "application_id", applicationID)
			}
			return output.FprintSuccess(cmd, "Application %s now targets %s", updated.Slug, updated.Platform)
		},
	}
}

func NewCmdApplicationRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <application-id>",
		Short: "Remove an application with its images, configurations and releases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}

			if err := app.GetProjectService().RemoveApplication(applicationID); err != nil {
				return utils.HandleCommandError("removing application", err, "application_id", applicationID)
			}
			return output.FprintSuccess(cmd, "Application %s removed", applicationID)
		},
	}
}
