// Package project provides commands for managing Cabotage projects.
package project

import "github.com/spf13/cobra"

func NewCmdProject() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(NewCmdProjectCreate())
	cmd.AddCommand(NewCmdProjectList())
	cmd.AddCommand(NewCmdProjectShow())
	cmd.AddCommand(NewCmdProjectRename())
	cmd.AddCommand(NewCmdProjectRemove())
	return cmd
}
