// Package root implements the command line interface for Cabotage.
package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/application"
	"github.com/cabotage/cabotage/cmd/configuration"
	"github.com/cabotage/cabotage/cmd/history"
	"github.com/cabotage/cabotage/cmd/image"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/project"
	"github.com/cabotage/cabotage/cmd/release"
	"github.com/cabotage/cabotage/cmd/serve"
	"github.com/cabotage/cabotage/cmd/version"
	"github.com/cabotage/cabotage/config"
	"github.com/cabotage/cabotage/logging"
)

// skipInit lists commands that run without opening the database
var skipInit = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
}

func Execute() {
	if err := NewCmdRoot(config.GetDefaultDataDir()).Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCmdRoot(defaultDataDir string) *cobra.Command {
	var dataDir, configFile string

	cmd := &cobra.Command{
		Use:   "cabotage",
		Short: "Release management for containerized applications",
		Long: `Cabotage tracks projects, applications, image builds and configuration,
and assembles them into versioned, immutable releases rendered for envconsul.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipInit[cmd.Name()] {
				output.InitColors(output.NoColor.IsSet())
				return nil
			}

			opts := config.Options{ConfigFile: configFile}
			if cmd.Flags().Changed("data-dir") {
				opts.DataDir = dataDir
			}
			cfg, err := config.Load(opts)
			if err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			// CLI flags override config
			colorDisabled := !cfg.ColorEnabled || output.NoColor.IsSet()
			output.InitColors(colorDisabled)

			logLevel := cfg.LogLevel
			if logging.LogLevel.IsSet() {
				logLevel = logging.LogLevel.String()
			}
			logging.InitLogging(logLevel, cfg.LogFormat)

			if err := app.InitializeWithConfig(cfg); err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().
		StringVarP(&dataDir, "data-dir", "d", defaultDataDir, "Data directory for the database and encryption key")
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a configuration file")
	cmd.PersistentFlags().VarP(logging.LogLevel, "log-level", "l", "Set log verbosity level")
	cmd.PersistentFlags().VarP(output.NoColor, "no-color", "c", "Disable colored terminal output")
	cmd.PersistentFlags().Lookup("no-color").NoOptDefVal = "true"

	cmd.AddCommand(project.NewCmdProject())
	cmd.AddCommand(application.NewCmdApplication())
	cmd.AddCommand(configuration.NewCmdConfiguration())
	cmd.AddCommand(image.NewCmdImage())
	cmd.AddCommand(release.NewCmdRelease())
	cmd.AddCommand(history.NewCmdHistory())
	cmd.AddCommand(serve.NewCmdServe())
	cmd.AddCommand(version.NewCmdVersion())
	return cmd
}
