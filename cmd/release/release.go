// Package release provides commands for planning, creating and inspecting releases.
package release

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/image"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/utils"
	"github.com/cabotage/cabotage/diff"
	"github.com/cabotage/cabotage/domain"
)

func NewCmdRelease() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Plan, create and inspect releases",
	}

	cmd.AddCommand(NewCmdReleasePlan())
	cmd.AddCommand(NewCmdReleaseCreate())
	cmd.AddCommand(NewCmdReleaseList())
	cmd.AddCommand(NewCmdReleaseShow())
	cmd.AddCommand(NewCmdReleaseStatus())
	cmd.AddCommand(NewCmdReleaseRender())
	cmd.AddCommand(NewCmdReleaseBuilt())
	cmd.AddCommand(NewCmdReleaseFailed())
	cmd.AddCommand(NewCmdReleaseRemove())
	return cmd
}

// FormatPlan describes the differences between the candidate and the current release
func FormatPlan(candidate domain.ReleaseSummary, current *domain.ReleaseSummary, imageDiff, configurationDiff diff.Result) string {
	if !imageDiff.HasChanges() && !configurationDiff.HasChanges() {
		return "No changes. The current release is up to date."
	}

	currentImage, currentConfiguration := map[string]any{}, map[string]any{}
	if current != nil {
		currentImage = current.ImageMap()
		currentConfiguration = current.ConfigurationMap()
	}

	var b strings.Builder
	if imageDiff.HasChanges() {
		b.WriteString("Image:\n")
		b.WriteString(diff.Describe(candidate.ImageMap(), currentImage, imageDiff))
	}
	if configurationDiff.HasChanges() {
		b.WriteString("Configuration:\n")
		b.WriteString(diff.Describe(candidate.ConfigurationMap(), currentConfiguration, configurationDiff))
	}
	return strings.TrimRight(b.String(), "\n")
}

func NewCmdReleasePlan() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <application-id>",
		Short: "Show what a new release would change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}

			releases := app.GetReleaseService()
			candidate, err := releases.Candidate(applicationID)
			if err != nil {
				return utils.HandleCommandError("building release candidate", err, "application_id", applicationID)
			}
			current, err := releases.CurrentRelease(applicationID)
			if err != nil {
				return utils.HandleCommandError("retrieving current release", err, "application_id", applicationID)
			}
			imageDiff, configurationDiff, err := releases.ReadyForDeployment(applicationID)
			if err != nil {
				return utils.HandleCommandError("comparing releases", err, "application_id", applicationID)
			}

			return output.FprintPlain(cmd, "%s", FormatPlan(candidate.AsDict(), current, imageDiff, configurationDiff))
		},
	}
}

func NewCmdReleaseCreate() *cobra.Command {
	return &cobra.Command{
		Use:   "create <application-id>",
		Short: "Create a release from the latest built image and the current configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}

			created, err := app.GetReleaseService().Create(applicationID)
			if err != nil {
				return utils.HandleCommandError("creating release", err, "application_id", applicationID)
			}
			return printRelease(cmd, created)
		},
	}
}

func NewCmdReleaseList() *cobra.Command {
	return &cobra.Command{
		Use:   "list <application-id>",
		Short: "List the releases of an application, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}

			releases, err := app.GetReleaseService().List(applicationID)
			if err != nil {
				return utils.HandleCommandError("listing releases", err, "application_id", applicationID)
			}

			out, err := output.PrintReleaseList(releases)
			if err != nil {
				return utils.HandleCommandError("printing release list", err)
			}
			return output.FprintPlain(cmd, "%s", out)
		},
	}
}

func getRelease(args []string) (*domain.Release, error) {
	releaseID, err := utils.ParseID("release", args[0])
	if err != nil {
		return nil, err
	}
	r, err := app.GetReleaseService().Get(releaseID)
	if err != nil {
		return nil, utils.HandleCommandError("retrieving release", err, "release_id", releaseID)
	}
	return r, nil
}

func printRelease(cmd *cobra.Command, r *domain.Release) error {
	releases := app.GetReleaseService()
	validity := releases.Validity(r)
	var reasons []string
	if validity == domain.ValidityDeposed {
		var err error
		if reasons, err = releases.DeposedReason(r); err != nil {
			return utils.HandleCommandError("checking release references", err, "release_id", r.ID)
		}
	}

	out, err := output.PrintReleaseDetails(r, validity, reasons)
	if err != nil {
		return utils.HandleCommandError("printing release details", err)
	}
	return output.FprintPlain(cmd, "%s", out)
}

func NewCmdReleaseShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <release-id>",
		Short: "Show release details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := getRelease(args)
			if err != nil {
				return err
			}
			return printRelease(cmd, r)
		},
	}
}

func NewCmdReleaseStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status <release-id>",
		Short: "Check whether everything a release references still exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := getRelease(args)
			if err != nil {
				return err
			}

			releases := app.GetReleaseService()
			reasons, err := releases.DeposedReason(r)
			if err != nil {
				return utils.HandleCommandError("checking release references", err, "release_id", r.ID)
			}
			if len(reasons) == 0 {
				return output.FprintSuccess(cmd, "Release %d is valid", r.Version)
			}
			if err := output.Fprint(cmd, output.Error, "Release %d is deposed", r.Version); err != nil {
				return err
			}
			return output.FprintPlain(cmd, "%s", strings.Join(reasons, "\n"))
		},
	}
}

func NewCmdReleaseRender() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <release-id>",
		Short: "Print the envconsul configuration of each process of a release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := getRelease(args)
			if err != nil {
				return err
			}

			rendered, err := app.GetReleaseService().EnvconsulConfigurations(r)
			if err != nil {
				return utils.HandleCommandError("rendering release", err, "release_id", r.ID)
			}

			if process, _ := cmd.Flags().GetString("process"); process != "" {
				text, ok := rendered[process]
				if !ok {
					return output.FprintWarning(cmd, "Release %d has no process %s", r.Version, process)
				}
				return output.FprintPlain(cmd, "%s", text)
			}

			names := make([]string, 0, len(rendered))
			for name := range rendered {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if err := output.FprintPlain(cmd, "# %s\n%s", name, rendered[name]); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("process", "p", "", "Render a single process")
	return cmd
}

func NewCmdReleaseBuilt() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "built <release-id>",
		Short: "Record that a release was built",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseID, err := utils.ParseID("release", args[0])
			if err != nil {
				return err
			}

			var metadata map[string]any
			if path, _ := cmd.Flags().GetString("metadata"); path != "" {
				if err := image.ReadYAMLFile(path, &metadata); err != nil {
					return err
				}
			}
			var buildLog *string
			if path, _ := cmd.Flags().GetString("build-log"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				text := string(data)
				buildLog = &text
			}

			updated, err := app.GetReleaseService().MarkBuilt(releaseID, metadata, buildLog)
			if err != nil {
				return utils.HandleCommandError("marking release built", err, "release_id", releaseID)
			}
			return output.FprintSuccess(cmd, "Release %d built", updated.Version)
		},
	}

	cmd.Flags().String("metadata", "", "YAML file with build metadata")
	cmd.Flags().String("build-log", "", "File with the build log")
	return cmd
}

func NewCmdReleaseFailed() *cobra.Command {
	return &cobra.Command{
		Use:   "failed <release-id> <detail>",
		Short: "Record that a release failed to build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseID, err := utils.ParseID("release", args[0])
			if err != nil {
				return err
			}

			updated, err := app.GetReleaseService().MarkFailed(releaseID, args[1], nil)
			if err != nil {
				return utils.HandleCommandError("marking release failed", err, "release_id", releaseID)
			}
			return output.FprintWarning(cmd, "Release %d marked as failed", updated.Version)
		},
	}
}

func NewCmdReleaseRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <release-id>",
		Short: "Remove a release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseID, err := utils.ParseID("release", args[0])
			if err != nil {
				return err
			}

			if err := app.GetReleaseService().Delete(releaseID); err != nil {
				return utils.HandleCommandError("removing release", err, "release_id", releaseID)
			}
			return output.FprintSuccess(cmd, "Release %s removed", releaseID)
		},
	}
}
