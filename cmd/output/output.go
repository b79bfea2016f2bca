// Package output provides functions to print messages with optional color formatting
package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/cabotage/cabotage/domain"
)

const (
	Plain   = color.FgWhite
	Success = color.FgGreen
	Warning = color.FgYellow
	Error   = color.FgRed
)

const timeFormat = "2006-01-02 15:04:05"

var maybeColorize func(kind color.Attribute, tmpl string, a ...any) string

// InitColors sets up color functions based on environment
func InitColors(isColorDisabled bool) {
	if color.NoColor || isColorDisabled {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return fmt.Sprintf(tmpl, a...)
		}
	} else {
		maybeColorize = func(kind color.Attribute, tmpl string, a ...any) string {
			return color.New(kind).SprintfFunc()(tmpl, a...)
		}
	}
}

// PrintMessage formats a message with color (if enabled)
func PrintMessage(kind color.Attribute, tmpl string, a ...any) string {
	if maybeColorize == nil || kind == Plain {
		return fmt.Sprintf(tmpl+"\n", a...)
	}
	return fmt.Sprintln(maybeColorize(kind, tmpl, a...))
}

// Fprint writes a formatted message of the given kind to the command's output
func Fprint(cmd *cobra.Command, kind color.Attribute, tmpl string, a ...any) error {
	_, err := fmt.Fprint(cmd.OutOrStdout(), PrintMessage(kind, tmpl, a...))
	return err
}

func FprintPlain(cmd *cobra.Command, tmpl string, a ...any) error {
	return Fprint(cmd, Plain, tmpl, a...)
}

func FprintSuccess(cmd *cobra.Command, tmpl string, a ...any) error {
	return Fprint(cmd, Success, tmpl, a...)
}

func FprintWarning(cmd *cobra.Command, tmpl string, a ...any) error {
	return Fprint(cmd, Warning, tmpl, a...)
}

func PrintTable(header []string, data [][]string) (string, error) {
	buf := strings.Builder{}

	table := tablewriter.NewTable(
		&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines: tw.Lines{
					ShowHeaderLine: tw.Off,
				},
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: []tw.Align{tw.AlignRight, tw.AlignLeft}},
			},
		}))

	if len(header) > 0 {
		table.Header(header)
	}

	if err := table.Bulk(data); err != nil {
		return "", fmt.Errorf("bulk adding data to table: %w", err)
	}

	if err := table.Render(); err != nil {
		return "", fmt.Errorf("rendering table: %w", err)
	}

	return buf.String(), nil
}

func details(data [][]string, what string) (string, error) {
	table, err := PrintTable([]string{}, data)
	if err != nil {
		return "", fmt.Errorf("printing %s details table: %w", what, err)
	}
	return table, nil
}

func list(header []string, data [][]string, what string) (string, error) {
	if len(data) == 0 {
		return PrintMessage(Plain, "No %s found.", what), nil
	}
	table, err := PrintTable(header, data)
	if err != nil {
		return "", fmt.Errorf("printing %s list table: %w", what, err)
	}
	return table, nil
}

func PrintProjectDetails(project *domain.Project) (string, error) {
	organization := "-"
	if project.OrganizationID != uuid.Nil {
		organization = project.OrganizationID.String()
	}
	return details([][]string{
		{"ID", project.ID.String()},
		{"Name", project.Name},
		{"Slug", project.Slug},
		{"Organization", organization},
		{"Version", strconv.Itoa(project.VersionID)},
		{"Created At", project.CreatedAt.Format(timeFormat)},
		{"Updated At", project.UpdatedAt.Format(timeFormat)},
	}, "project")
}

func PrintProjectList(projects []*domain.Project) (string, error) {
	var data [][]string
	for _, project := range projects {
		data = append(data, []string{
			project.ID.String(),
			project.Name,
			project.Slug,
			project.CreatedAt.Format(timeFormat),
		})
	}
	return list([]string{"ID", "Name", "Slug", "Created At"}, data, "projects")
}

func PrintApplicationDetails(application *domain.Application) (string, error) {
	return details([][]string{
		{"ID", application.ID.String()},
		{"Project", application.ProjectID.String()},
		{"Name", application.Name},
		{"Slug", application.Slug},
		{"Platform", application.Platform.String()},
		{"Version", strconv.Itoa(application.VersionID)},
		{"Created At", application.CreatedAt.Format(timeFormat)},
		{"Updated At", application.UpdatedAt.Format(timeFormat)},
	}, "application")
}

func PrintApplicationList(applications []*domain.Application) (string, error) {
	var data [][]string
	for _, application := range applications {
		data = append(data, []string{
			application.ID.String(),
			application.Name,
			application.Slug,
			application.Platform.String(),
		})
	}
	return list([]string{"ID", "Name", "Slug", "Platform"}, data, "applications")
}

// PrintConfigurationList prints configurations, masking secret values
func PrintConfigurationList(configurations []*domain.Configuration) (string, error) {
	var data [][]string
	for _, c := range configurations {
		data = append(data, []string{
			c.ID.String(),
			c.Name,
			MaskValue(c.Value, c.Secret),
			c.KeySlug,
			strconv.Itoa(c.VersionID),
		})
	}
	return list([]string{"ID", "Name", "Value", "Key", "Version"}, data, "configurations")
}

func PrintConfigurationDetails(c *domain.Configuration) (string, error) {
	return details([][]string{
		{"ID", c.ID.String()},
		{"Application", c.ApplicationID.String()},
		{"Name", c.Name},
		{"Value", MaskValue(c.Value, c.Secret)},
		{"Secret", strconv.FormatBool(c.Secret)},
		{"Key", c.KeySlug},
		{"Version", strconv.Itoa(c.VersionID)},
	}, "configuration")
}

// MaskValue hides secret values
func MaskValue(value string, secret bool) string {
	if secret {
		return "********"
	}
	return value
}

func PrintImageDetails(image *domain.Image) (string, error) {
	data := [][]string{
		{"ID", image.ID.String()},
		{"Application", image.ApplicationID.String()},
		{"Repository", image.RepositoryName},
		{"Tag", image.Tag()},
		{"Build", image.BuildSlug},
		{"Status", ColorizeStatus(image.Status())},
		{"Processes", FormatProcesses(image.Processes)},
	}
	if image.ImageID != nil {
		data = append(data, []string{"Image ID", *image.ImageID})
	}
	if image.ErrorDetail != nil {
		data = append(data, []string{"Error", *image.ErrorDetail})
	}
	data = append(data, []string{"Created At", image.CreatedAt.Format(timeFormat)})
	return details(data, "image")
}

func PrintImageList(images []*domain.Image) (string, error) {
	var data [][]string
	for _, image := range images {
		data = append(data, []string{
			image.ID.String(),
			image.Tag(),
			image.RepositoryName,
			ColorizeStatus(image.Status()),
			image.CreatedAt.Format(timeFormat),
		})
	}
	return list([]string{"ID", "Tag", "Repository", "Status", "Created At"}, data, "images")
}

func PrintReleaseDetails(release *domain.Release, validity domain.Validity, reasons []string) (string, error) {
	data := [][]string{
		{"ID", release.ID.String()},
		{"Application", release.ApplicationID.String()},
		{"Version", strconv.Itoa(release.Version)},
		{"Platform", release.Platform.String()},
		{"Status", ColorizeStatus(release.Status())},
		{"Validity", ColorizeStatus(validity.String())},
	}
	if !release.Image.IsZero() {
		data = append(data, []string{"Image", release.Image.Repository + ":" + release.Image.Tag})
	}
	data = append(data, []string{"Configuration", strings.Join(release.ConfigurationNames(), "\n")})
	if len(reasons) > 0 {
		data = append(data, []string{"Deposed", strings.Join(reasons, "\n")})
	}
	if release.ErrorDetail != nil {
		data = append(data, []string{"Error", *release.ErrorDetail})
	}
	data = append(data, []string{"Created At", release.CreatedAt.Format(timeFormat)})
	return details(data, "release")
}

func PrintReleaseList(releases []*domain.Release) (string, error) {
	var data [][]string
	for _, release := range releases {
		image := "-"
		if !release.Image.IsZero() {
			image = release.Image.Tag
		}
		data = append(data, []string{
			release.ID.String(),
			strconv.Itoa(release.Version),
			image,
			strconv.Itoa(len(release.Configuration)),
			ColorizeStatus(release.Status()),
			release.CreatedAt.Format(timeFormat),
		})
	}
	return list([]string{"ID", "Version", "Image", "Configs", "Status", "Created At"}, data, "releases")
}

func PrintHistory(entries []domain.HistoryEntry) (string, error) {
	var data [][]string
	for _, e := range entries {
		data = append(data, []string{
			strconv.Itoa(e.VersionID),
			e.Operation.String(),
			e.EntityType,
			e.RecordedAt.Format(timeFormat),
		})
	}
	return list([]string{"Version", "Operation", "Entity", "Recorded At"}, data, "history entries")
}

// FormatProcesses renders processes as "name: cmd" lines sorted by name
func FormatProcesses(processes map[string]domain.Process) string {
	if len(processes) == 0 {
		return "-"
	}
	names := make([]string, 0, len(processes))
	for name := range processes {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+processes[name].Cmd)
	}
	return strings.Join(lines, "\n")
}

// ColorizeStatus colors build states and validity labels
func ColorizeStatus(status string) string {
	if maybeColorize == nil {
		return status
	}
	switch status {
	case "built", "valid":
		return maybeColorize(Success, "%s", status)
	case "building", "unknown":
		return maybeColorize(Warning, "%s", status)
	case "error", "deposed", "deleted":
		return maybeColorize(Error, "%s", status)
	default:
		return status
	}
}

// NoColor is a flag that can be used to disable colored output in the CLI.
var NoColor = &noColorFlag{set: false}

type noColorFlag struct {
	set bool
}

func (f *noColorFlag) Set(value string) error {
	set, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean value %q", value)
	}
	f.set = set
	return nil
}

func (f *noColorFlag) String() string {
	if f.set {
		return "true"
	}
	return "false"
}

func (f *noColorFlag) Type() string {
	return "bool"
}

// IsSet returns true if the --no-color flag was explicitly set
func (f *noColorFlag) IsSet() bool {
	return f.set
}
