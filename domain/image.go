package domain

import (
	"bufio"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// MaxErrorDetailLength bounds the stored error detail of images and releases
const MaxErrorDetailLength = 2048

// Process is a named process declared by an image.
// Argv is set when the builder reported the command as an argument list;
// Cmd then holds the space-joined form for display.
type Process struct {
	Cmd  string      `json:"cmd" yaml:"cmd"`
	Argv []string    `json:"-" yaml:"-"`
	Env  [][2]string `json:"env" yaml:"env"`
}

var errInvalidCommand = fmt.Errorf("%w: process cmd must be a string or a list of strings", ErrValidation)

// MarshalJSON encodes cmd in the form it was reported in
func (p Process) MarshalJSON() ([]byte, error) {
	var cmd any = p.Cmd
	if p.Argv != nil {
		cmd = p.Argv
	}
	return json.Marshal(struct {
		Cmd any         `json:"cmd"`
		Env [][2]string `json:"env"`
	}{cmd, p.Env})
}

func (p *Process) UnmarshalJSON(data []byte) error {
	var raw struct {
		Cmd json.RawMessage `json:"cmd"`
		Env [][2]string     `json:"env"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Process{Env: raw.Env}
	if len(raw.Cmd) == 0 || string(raw.Cmd) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw.Cmd, &p.Cmd); err == nil {
		return nil
	}
	var argv []string
	if err := json.Unmarshal(raw.Cmd, &argv); err != nil {
		return errInvalidCommand
	}
	p.setArgv(argv)
	return nil
}

func (p *Process) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Cmd yaml.Node   `yaml:"cmd"`
		Env [][2]string `yaml:"env"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*p = Process{Env: raw.Env}
	switch raw.Cmd.Kind {
	case 0:
		return nil
	case yaml.ScalarNode:
		return raw.Cmd.Decode(&p.Cmd)
	case yaml.SequenceNode:
		var argv []string
		if err := raw.Cmd.Decode(&argv); err != nil {
			return errInvalidCommand
		}
		p.setArgv(argv)
		return nil
	default:
		return errInvalidCommand
	}
}

func (p *Process) setArgv(argv []string) {
	if argv == nil {
		argv = []string{}
	}
	p.Argv = argv
	p.Cmd = strings.Join(argv, " ")
}

type Image struct {
	ID             uuid.UUID
	ApplicationID  uuid.UUID
	RepositoryName string
	ImageID        *string // build identifier reported by the builder
	Version        int
	Built          bool
	Error          bool
	ErrorDetail    *string
	Deleted        bool
	BuildSlug      string
	Dockerfile     *string
	Procfile       *string
	Processes      map[string]Process
	Metadata       map[string]any
	BuildLog       *string
	VersionID      int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ImageSummary is the projection embedded in release snapshots
type ImageSummary struct {
	ID         string             `json:"id"`
	Repository string             `json:"repository"`
	Tag        string             `json:"tag"`
	Processes  map[string]Process `json:"processes"`
}

// IsZero reports whether the summary describes no image
func (s ImageSummary) IsZero() bool {
	return s.ID == ""
}

// MarshalJSON encodes an empty summary as {}
func (s ImageSummary) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte("{}"), nil
	}
	type plain ImageSummary
	return json.Marshal(plain(s))
}

func NewImage(applicationID uuid.UUID, repositoryName, buildSlug string) Image {
	return Image{
		ID:             uuid.New(),
		ApplicationID:  applicationID,
		RepositoryName: repositoryName,
		BuildSlug:      buildSlug,
	}
}

func (i *Image) Tag() string {
	return strconv.Itoa(i.Version)
}

func (i *Image) AsDict() ImageSummary {
	return ImageSummary{
		ID:         i.ID.String(),
		Repository: i.RepositoryName,
		Tag:        i.Tag(),
		Processes:  i.Processes,
	}
}

// Status returns a short label for the build state
func (i *Image) Status() string {
	return buildStatus(i.Built, i.Error, i.Deleted)
}

func buildStatus(built, failed, deleted bool) string {
	switch {
	case deleted:
		return "deleted"
	case failed:
		return "error"
	case built:
		return "built"
	default:
		return "building"
	}
}

// TruncateDetail caps error details at MaxErrorDetailLength runes
func TruncateDetail(detail string) string {
	runes := []rune(detail)
	if len(runes) <= MaxErrorDetailLength {
		return detail
	}
	return string(runes[:MaxErrorDetailLength])
}

var (
	procfileLine  = regexp.MustCompile(`^([A-Za-z0-9_-]+):\s*(.+)$`)
	envAssignment = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(\S*)$`)
)

// ParseProcfile parses "name: [KEY=VALUE ...] command" lines into processes.
// Leading KEY=VALUE tokens become the process environment.
func ParseProcfile(text string) (map[string]Process, error) {
	processes := map[string]Process{}
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		match := procfileLine.FindStringSubmatch(line)
		if match == nil {
			return nil, fmt.Errorf("%w: procfile line %d: expected 'name: command'", ErrValidation, lineNo)
		}
		name := match[1]
		if _, exists := processes[name]; exists {
			return nil, fmt.Errorf("%w: procfile line %d: duplicate process %q", ErrValidation, lineNo, name)
		}

		fields := strings.Fields(match[2])
		env := [][2]string{}
		for len(fields) > 1 {
			kv := envAssignment.FindStringSubmatch(fields[0])
			if kv == nil {
				break
			}
			env = append(env, [2]string{kv[1], kv[2]})
			fields = fields[1:]
		}
		processes[name] = Process{
			Cmd: strings.Join(fields, " "),
			Env: env,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading procfile: %w", err)
	}
	return processes, nil
}
