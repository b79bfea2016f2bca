// Package history provides the command that prints the mutation history of an entity.
package history

import (
	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/utils"
)

func NewCmdHistory() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <entity-id>",
		Short: "Show the recorded versions of a project, application, image, configuration or release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityID, err := utils.ParseID("entity", args[0])
			if err != nil {
				return err
			}

			entries, err := app.GetHistoryRepository().ForEntity(entityID)
			if err != nil {
				return utils.HandleCommandError("retrieving history", err, "entity_id", entityID)
			}

			out, err := output.PrintHistory(entries)
			if err != nil {
				return utils.HandleCommandError("printing history", err)
			}
			if err := output.FprintPlain(cmd, "%s", out); err != nil {
				return err
			}

			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				for _, e := range entries {
					if err := output.FprintPlain(cmd, "v%d %s\n  before: %s\n  after:  %s",
						e.VersionID, e.Operation, orNull(e.Before), orNull(e.After)); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Print the before and after state of every entry")
	return cmd
}

func orNull(raw []byte) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}
