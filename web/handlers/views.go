package handlers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cabotage/cabotage/diff"
	"github.com/cabotage/cabotage/domain"
)

type ProjectView struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	VersionID      int       `json:"version_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ConvertProjectToView(p *domain.Project) ProjectView {
	return ProjectView{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		Name:           p.Name,
		Slug:           p.Slug,
		VersionID:      p.VersionID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func ConvertProjectsToViews(projects []*domain.Project) []ProjectView {
	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, ConvertProjectToView(p))
	}
	return views
}

type ApplicationView struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Platform  string    `json:"platform"`
	VersionID int       `json:"version_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ConvertApplicationToView(a *domain.Application) ApplicationView {
	return ApplicationView{
		ID:        a.ID,
		ProjectID: a.ProjectID,
		Name:      a.Name,
		Slug:      a.Slug,
		Platform:  a.Platform.String(),
		VersionID: a.VersionID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func ConvertApplicationsToViews(applications []*domain.Application) []ApplicationView {
	views := make([]ApplicationView, 0, len(applications))
	for _, a := range applications {
		views = append(views, ConvertApplicationToView(a))
	}
	return views
}

// ImageView is the image summary plus its build state
type ImageView struct {
	domain.ImageSummary
	Version     int            `json:"version"`
	Status      string         `json:"status"`
	ErrorDetail *string        `json:"error_detail,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (v ImageView) MarshalJSON() ([]byte, error) {
	// ImageSummary defines its own MarshalJSON which would otherwise be promoted
	return json.Marshal(struct {
		ID          string                    `json:"id"`
		Repository  string                    `json:"repository"`
		Tag         string                    `json:"tag"`
		Processes   map[string]domain.Process `json:"processes"`
		Version     int                       `json:"version"`
		Status      string                    `json:"status"`
		ErrorDetail *string                   `json:"error_detail,omitempty"`
		Metadata    map[string]any            `json:"metadata,omitempty"`
	}{v.ID, v.Repository, v.Tag, v.Processes, v.Version, v.Status, v.ErrorDetail, v.Metadata})
}

func ConvertImageToView(i *domain.Image) ImageView {
	return ImageView{
		ImageSummary: i.AsDict(),
		Version:      i.Version,
		Status:       i.Status(),
		ErrorDetail:  i.ErrorDetail,
		Metadata:     i.Metadata,
	}
}

// ConfigurationView never carries the value
type ConfigurationView struct {
	domain.ConfigurationSummary
	KeySlug string `json:"key_slug"`
}

func ConvertConfigurationToView(c *domain.Configuration) ConfigurationView {
	return ConfigurationView{ConfigurationSummary: c.AsDict(), KeySlug: c.KeySlug}
}

type ReleaseView struct {
	domain.ReleaseSummary
	Version              int                 `json:"version"`
	Status               string              `json:"status"`
	ImageChanges         map[string][]string `json:"image_changes"`
	ConfigurationChanges map[string][]string `json:"configuration_changes"`
	CreatedAt            time.Time           `json:"created_at"`
}

func ConvertReleaseToView(r *domain.Release) ReleaseView {
	return ReleaseView{
		ReleaseSummary:       r.AsDict(),
		Version:              r.Version,
		Status:               r.Status(),
		ImageChanges:         r.ImageChanges.AsDict(),
		ConfigurationChanges: r.ConfigurationChanges.AsDict(),
		CreatedAt:            r.CreatedAt,
	}
}

func ConvertReleasesToViews(releases []*domain.Release) []ReleaseView {
	views := make([]ReleaseView, 0, len(releases))
	for _, r := range releases {
		views = append(views, ConvertReleaseToView(r))
	}
	return views
}

type ReleaseStatusView struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	Validity      string    `json:"validity"`
	DeposedReason []string  `json:"deposed_reason"`
}

type ReadinessView struct {
	HasChanges    bool                `json:"has_changes"`
	Image         map[string][]string `json:"image"`
	Configuration map[string][]string `json:"configuration"`
}

func ConvertReadinessToView(imageDiff, configurationDiff diff.Result) ReadinessView {
	return ReadinessView{
		HasChanges:    imageDiff.HasChanges() || configurationDiff.HasChanges(),
		Image:         imageDiff.AsDict(),
		Configuration: configurationDiff.AsDict(),
	}
}

type HistoryView struct {
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	VersionID  int             `json:"version_id"`
	Operation  string          `json:"operation"`
	Before     json.RawMessage `json:"before"`
	After      json.RawMessage `json:"after"`
	RecordedAt time.Time       `json:"recorded_at"`
}

func ConvertHistoryToViews(entries []domain.HistoryEntry) []HistoryView {
	views := make([]HistoryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, HistoryView{
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			VersionID:  e.VersionID,
			Operation:  e.Operation.String(),
			Before:     rawOrNull(e.Before),
			After:      rawOrNull(e.After),
			RecordedAt: e.RecordedAt,
		})
	}
	return views
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
