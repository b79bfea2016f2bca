// Package configuration provides commands for managing application configuration entries.
package configuration

import (
	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/utils"
	"github.com/cabotage/cabotage/configuration"
)

func NewCmdConfiguration() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage application configuration",
	}

	cmd.AddCommand(NewCmdConfigurationSet())
	cmd.AddCommand(NewCmdConfigurationUpdate())
	cmd.AddCommand(NewCmdConfigurationRemove())
	cmd.AddCommand(NewCmdConfigurationList())
	cmd.AddCommand(NewCmdConfigurationRender())
	return cmd
}

func NewCmdConfigurationSet() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <application-id> <name> <value>",
		Short: "Create a configuration entry",
		Long: `Create a configuration entry. Names are unique per application ignoring case.
Secret values are stored encrypted and read by envconsul from vault instead of consul.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}
			secret, _ := cmd.Flags().GetBool("secret")
			keySlug, _ := cmd.Flags().GetString("key")

			created, err := app.GetConfigurationService().Create(configuration.CreateInput{
				ApplicationID: applicationID,
				Name:          args[1],
				Value:         args[2],
				Secret:        secret,
				KeySlug:       keySlug,
			})
			if err != nil {
				return utils.HandleCommandError("setting configuration", err, "application_id", applicationID, "name", args[1])
			}

			out, err := output.PrintConfigurationDetails(created)
			if err != nil {
				return utils.HandleCommandError("printing configuration details", err)
			}
			return output.FprintPlain(cmd, "%s", out)
		},
	}

	cmd.Flags().BoolP("secret", "s", false, "Store the value as a secret")
	cmd.Flags().StringP("key", "k", "", "Explicit key slug, e.g. consul:shop/web/configuration/port")
	return cmd
}

func NewCmdConfigurationUpdate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <configuration-id>",
		Short: "Change the value or secret flag of a configuration entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configurationID, err := utils.ParseID("configuration", args[0])
			if err != nil {
				return err
			}

			var input configuration.UpdateInput
			if cmd.Flags().Changed("value") {
				value, _ := cmd.Flags().GetString("value")
				input.Value = &value
			}
			if cmd.Flags().Changed("secret") {
				secret, _ := cmd.Flags().GetBool("secret")
				input.Secret = &secret
			}
			if cmd.Flags().Changed("expect-version") {
				expected, _ := cmd.Flags().GetInt("expect-version")
				input.ExpectedVersionID = &expected
			}

			updated, err := app.GetConfigurationService().Update(configurationID, input)
			if err != nil {
				return utils.HandleCommandError("updating configuration", err, "configuration_id", configurationID)
			}

			out, err := output.PrintConfigurationDetails(updated)
			if err != nil {
				return utils.HandleCommandError("printing configuration details", err)
			}
			return output.FprintPlain(cmd, "%s", out)
		},
	}

	cmd.Flags().StringP("value", "v", "", "New value")
	cmd.Flags().BoolP("secret", "s", false, "Mark the entry as secret (--secret=false to clear)")
	cmd.Flags().Int("expect-version", 0, "Fail unless the stored version stamp matches")
	return cmd
}

func NewCmdConfigurationRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <configuration-id>",
		Short: "Remove a configuration entry",
		Long: `Remove a configuration entry. Releases that captured it are deposed
and its name becomes available again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configurationID, err := utils.ParseID("configuration", args[0])
			if err != nil {
				return err
			}

			if err := app.GetConfigurationService().Delete(configurationID); err != nil {
				return utils.HandleCommandError("removing configuration", err, "configuration_id", configurationID)
			}
			return output.FprintSuccess(cmd, "Configuration %s removed", configurationID)
		},
	}
}

func NewCmdConfigurationList() *cobra.Command {
	return &cobra.Command{
		Use:   "list <application-id>",
		Short: "List the configuration entries of an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}

			configurations, err := app.GetConfigurationService().List(applicationID)
			if err != nil {
				return utils.HandleCommandError("listing configuration", err, "application_id", applicationID)
			}

			out, err := output.PrintConfigurationList(configurations)
			if err != nil {
				return utils.HandleCommandError("printing configuration list", err)
			}
			return output.FprintPlain(cmd, "%s", out)
		},
	}
}

func NewCmdConfigurationRender() *cobra.Command {
	return &cobra.Command{
		Use:   "render <configuration-id>",
		Short: "Print the envconsul statement of a configuration entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configurationID, err := utils.ParseID("configuration", args[0])
			if err != nil {
				return err
			}

			statement, err := app.GetConfigurationService().EnvconsulStatement(configurationID)
			if err != nil {
				return utils.HandleCommandError("rendering configuration", err, "configuration_id", configurationID)
			}
			return output.FprintPlain(cmd, "%s", statement)
		},
	}
}
