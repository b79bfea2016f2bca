// Package version provides the version command for Cabotage.
package version

import (
	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/output"
)

// NewCmdVersion creates the version command
func NewCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version information for Cabotage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return output.FprintPlain(cmd, "%s", app.Version)
		},
	}
}
