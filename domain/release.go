package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/cabotage/cabotage/diff"
)

// VolatileKeys are stripped before snapshots are compared
var VolatileKeys = []string{"id", "version_id"}

type Release struct {
	ID                   uuid.UUID
	ApplicationID        uuid.UUID
	Platform             Platform
	Image                ImageSummary
	Configuration        map[string]ConfigurationSummary
	ImageChanges         diff.Result
	ConfigurationChanges diff.Result
	Version              int
	Built                bool
	Error                bool
	ErrorDetail          *string
	Deleted              bool
	Metadata             map[string]any
	BuildLog             *string
	VersionID            int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ReleaseSummary is the projection returned across the API boundary
type ReleaseSummary struct {
	ID            string                          `json:"id"`
	ApplicationID string                          `json:"application_id"`
	Platform      Platform                        `json:"platform"`
	Image         ImageSummary                    `json:"image"`
	Configuration map[string]ConfigurationSummary `json:"configuration"`
}

// AsDict returns the summary projection. Unsaved releases have an empty id.
func (r *Release) AsDict() ReleaseSummary {
	id := ""
	if r.ID != uuid.Nil {
		id = r.ID.String()
	}
	configuration := r.Configuration
	if configuration == nil {
		configuration = map[string]ConfigurationSummary{}
	}
	return ReleaseSummary{
		ID:            id,
		ApplicationID: r.ApplicationID.String(),
		Platform:      r.Platform,
		Image:         r.Image,
		Configuration: configuration,
	}
}

func (r *Release) Status() string {
	return buildStatus(r.Built, r.Error, r.Deleted)
}

// ConfigurationNames returns the snapshotted configuration names in sorted order
func (r *Release) ConfigurationNames() []string {
	names := make([]string, 0, len(r.Configuration))
	for name := range r.Configuration {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ImageMap returns the image snapshot as a generic mapping for diffing
func (s ReleaseSummary) ImageMap() map[string]any {
	return toMap(s.Image)
}

// ConfigurationMap returns the configuration snapshot as a generic mapping for diffing
func (s ReleaseSummary) ConfigurationMap() map[string]any {
	return toMap(s.Configuration)
}

func toMap(v any) map[string]any {
	out := map[string]any{}
	data, err := json.Marshal(v)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// ExecStatement renders the envconsul exec stanza for a process
func ExecStatement(process Process) string {
	custom := make([]string, 0, len(process.Env))
	for _, kv := range process.Env {
		custom = append(custom, fmt.Sprintf("%s=%s", kv[0], kv[1]))
	}
	command := encodeString(process.Cmd)
	if process.Argv != nil {
		command = encodeStringList(process.Argv)
	}
	return "exec {\n" +
		"  command = " + command + "\n" +
		"  env = {\n" +
		"    pristine = true\n" +
		"    custom = " + encodeStringList(custom) + "\n" +
		"  }\n" +
		"}"
}

// encodeStringList encodes strings as a JSON array with ", " separators
func encodeStringList(values []string) string {
	encoded := make([]string, len(values))
	for i, v := range values {
		encoded[i] = encodeString(v)
	}
	return "[" + strings.Join(encoded, ", ") + "]"
}

// encodeString encodes s as an ASCII-only JSON string literal
func encodeString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	out := strings.TrimSuffix(buf.String(), "\n")

	var ascii strings.Builder
	for _, r := range out {
		switch {
		case r < 0x80:
			ascii.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&ascii, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(&ascii, `\u%04x`, r)
		}
	}
	return ascii.String()
}
