// Package image provides commands for recording image builds.
package image

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/cmd/output"
	"github.com/cabotage/cabotage/cmd/utils"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/image"
)

func NewCmdImage() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Record and inspect image builds",
	}

	cmd.AddCommand(NewCmdImageStart())
	cmd.AddCommand(NewCmdImageSucceed())
	cmd.AddCommand(NewCmdImageFail())
	cmd.AddCommand(NewCmdImageList())
	cmd.AddCommand(NewCmdImageShow())
	cmd.AddCommand(NewCmdImageLatest())
	cmd.AddCommand(NewCmdImageRemove())
	return cmd
}

// ReadYAMLFile decodes the YAML document at path into v
func ReadYAMLFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// optionalFile returns the contents of the file named by flag, or nil when the flag is unset
func optionalFile(cmd *cobra.Command, flag string) (*string, error) {
	path, _ := cmd.Flags().GetString(flag)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	s := string(data)
	return &s, nil
}

func printImage(cmd *cobra.Command, i *domain.Image) error {
	out, err := output.PrintImageDetails(i)
	if err != nil {
		return utils.HandleCommandError("printing image details", err)
	}
	return output.FprintPlain(cmd, "%s", out)
}

func NewCmdImageStart() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <application-id> <repository> <build-slug>",
		Short: "Record the start of an image build",
		Long: `Record the start of an image build. The image gets the next version of the
application, which is also its tag.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}
			dockerfile, err := optionalFile(cmd, "dockerfile")
			if err != nil {
				return err
			}
			procfile, err := optionalFile(cmd, "procfile")
			if err != nil {
				return err
			}

			started, err := app.GetImageService().RecordBuildStart(image.BuildStartInput{
				ApplicationID:  applicationID,
				RepositoryName: args[1],
				BuildSlug:      args[2],
				Dockerfile:     dockerfile,
				Procfile:       procfile,
			})
			if err != nil {
				return utils.HandleCommandError("recording build start", err, "application_id", applicationID)
			}
			return printImage(cmd, started)
		},
	}

	cmd.Flags().String("dockerfile", "", "Path to the Dockerfile used for the build")
	cmd.Flags().String("procfile", "", "Path to the Procfile declaring the processes")
	return cmd
}

func NewCmdImageSucceed() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "succeed <image-id> <build-id>",
		Short: "Record a successful image build",
		Long: `Record a successful image build. Processes are read from --processes
(a YAML map of name to {cmd, env}) or parsed from the Procfile recorded at start.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := utils.ParseID("image", args[0])
			if err != nil {
				return err
			}

			input := image.BuildSuccessInput{ImageID: args[1]}
			if path, _ := cmd.Flags().GetString("processes"); path != "" {
				if err := ReadYAMLFile(path, &input.Processes); err != nil {
					return err
				}
			}
			if path, _ := cmd.Flags().GetString("metadata"); path != "" {
				if err := ReadYAMLFile(path, &input.Metadata); err != nil {
					return err
				}
			}
			if input.BuildLog, err = optionalFile(cmd, "build-log"); err != nil {
				return err
			}

			built, err := app.GetImageService().RecordBuildSuccess(imageID, input)
			if err != nil {
				return utils.HandleCommandError("recording build success", err, "image_id", imageID)
			}
			return printImage(cmd, built)
		},
	}

	cmd.Flags().String("processes", "", "YAML file with the processes of the image")
	cmd.Flags().String("metadata", "", "YAML file with build metadata")
	cmd.Flags().String("build-log", "", "File with the build log")
	return cmd
}

func NewCmdImageFail() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fail <image-id> <detail>",
		Short: "Record a failed image build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := utils.ParseID("image", args[0])
			if err != nil {
				return err
			}
			buildLog, err := optionalFile(cmd, "build-log")
			if err != nil {
				return err
			}

			failed, err := app.GetImageService().RecordBuildFailure(imageID, args[1], buildLog)
			if err != nil {
				return utils.HandleCommandError("recording build failure", err, "image_id", imageID)
			}
			return printImage(cmd, failed)
		},
	}

	cmd.Flags().String("build-log", "", "File with the build log")
	return cmd
}

func NewCmdImageList() *cobra.Command {
	return &cobra.Command{
		Use:   "list <application-id>",
		Short: "List the images of an application, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}

			images, err := app.GetImageService().List(applicationID)
			if err != nil {
				return utils.HandleCommandError("listing images", err, "application_id", applicationID)
			}

			out, err := output.PrintImageList(images)
			if err != nil {
				return utils.HandleCommandError("printing image list", err)
			}
			return output.FprintPlain(cmd, "%s", out)
		},
	}
}

func NewCmdImageShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <image-id>",
		Short: "Show image details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := utils.ParseID("image", args[0])
			if err != nil {
				return err
			}

			i, err := app.GetImageService().Get(imageID)
			if err != nil {
				return utils.HandleCommandError("retrieving image", err, "image_id", imageID)
			}
			return printImage(cmd, i)
		},
	}
}

func NewCmdImageLatest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latest <application-id>",
		Short: "Show the newest image in a given build state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applicationID, err := utils.ParseID("application", args[0])
			if err != nil {
				return err
			}
			state, _ := cmd.Flags().GetString("state")

			images := app.GetImageService()
			var latest *domain.Image
			switch state {
			case "built":
				latest, err = images.LatestBuilt(applicationID)
			case "error":
				latest, err = images.LatestError(applicationID)
			case "building":
				latest, err = images.LatestBuilding(applicationID)
			default:
				return fmt.Errorf("invalid state '%s': must be one of built, error, building", state)
			}
			if err != nil {
				return utils.HandleCommandError("retrieving latest image", err, "application_id", applicationID)
			}
			if latest == nil {
				return output.FprintPlain(cmd, "No %s image found.", state)
			}
			return printImage(cmd, latest)
		},
	}

	cmd.Flags().StringP("state", "s", "built", "Build state: built, error or building")
	return cmd
}

func NewCmdImageRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <image-id>",
		Short: "Remove an image; releases built from it are deposed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := utils.ParseID("image", args[0])
			if err != nil {
				return err
			}

			if err := app.GetImageService().Delete(imageID); err != nil {
				return utils.HandleCommandError("removing image", err, "image_id", imageID)
			}
			return output.FprintSuccess(cmd, "Image %s removed", imageID)
		},
	}
}
