// Package repository provides the data access layer for projects, applications,
// images, configurations and releases.
package repository

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/encryption"
)

type ProjectMapper struct{}

func (m *ProjectMapper) ToDomain(p *db.ProjectModel) *domain.Project {
	return &domain.Project{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		Name:           p.Name,
		Slug:           p.Slug,
		VersionID:      p.VersionID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *ProjectMapper) ToModel(p *domain.Project) *db.ProjectModel {
	return &db.ProjectModel{
		BaseModel:      baseModel(p.ID, p.VersionID, p.CreatedAt, p.UpdatedAt),
		OrganizationID: p.OrganizationID,
		Name:           p.Name,
		Slug:           p.Slug,
	}
}

type ApplicationMapper struct{}

func (m *ApplicationMapper) ToDomain(a *db.ApplicationModel) *domain.Application {
	platform, err := domain.ParsePlatform(a.Platform)
	if err != nil {
		platform = domain.DefaultPlatform
	}

	return &domain.Application{
		ID:        a.ID,
		ProjectID: a.ProjectID,
		Name:      a.Name,
		Slug:      a.Slug,
		Platform:  platform,
		VersionID: a.VersionID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (m *ApplicationMapper) ToModel(a *domain.Application) *db.ApplicationModel {
	return &db.ApplicationModel{
		BaseModel: baseModel(a.ID, a.VersionID, a.CreatedAt, a.UpdatedAt),
		ProjectID: a.ProjectID,
		Name:      a.Name,
		Slug:      a.Slug,
		Platform:  a.Platform.String(),
	}
}

type ImageMapper struct{}

func (m *ImageMapper) ToDomain(i *db.ImageModel) *domain.Image {
	image := &domain.Image{
		ID:             i.ID,
		ApplicationID:  i.ApplicationID,
		RepositoryName: i.RepositoryName,
		ImageID:        i.ImageID,
		Version:        i.Version,
		Built:          i.Built,
		Error:          i.Error,
		ErrorDetail:    i.ErrorDetail,
		Deleted:        i.Deleted,
		BuildSlug:      i.BuildSlug,
		Dockerfile:     i.Dockerfile,
		Procfile:       i.Procfile,
		BuildLog:       i.ImageBuildLog,
		VersionID:      i.VersionID,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}

	decodeColumn(i.Processes, &image.Processes, "images", "processes", i.ID.String())
	decodeColumn(i.ImageMetadata, &image.Metadata, "images", "image_metadata", i.ID.String())
	return image
}

func (m *ImageMapper) ToModel(i *domain.Image) (*db.ImageModel, error) {
	processes, err := encodeColumn(i.Processes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode processes: %w", err)
	}
	metadata, err := encodeColumn(i.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image metadata: %w", err)
	}

	return &db.ImageModel{
		BaseModel:      baseModel(i.ID, i.VersionID, i.CreatedAt, i.UpdatedAt),
		ApplicationID:  i.ApplicationID,
		RepositoryName: i.RepositoryName,
		ImageID:        i.ImageID,
		Version:        i.Version,
		Built:          i.Built,
		Error:          i.Error,
		ErrorDetail:    i.ErrorDetail,
		Deleted:        i.Deleted,
		BuildSlug:      i.BuildSlug,
		Dockerfile:     i.Dockerfile,
		Procfile:       i.Procfile,
		Processes:      processes,
		ImageMetadata:  metadata,
		ImageBuildLog:  i.BuildLog,
	}, nil
}

// ConfigurationMapper encrypts secret values on the way in and decrypts them on the way out
type ConfigurationMapper struct {
	encryption *encryption.EncryptionService
}

func NewConfigurationMapper(encryptionSvc *encryption.EncryptionService) *ConfigurationMapper {
	return &ConfigurationMapper{encryption: encryptionSvc}
}

func (m *ConfigurationMapper) ToDomain(c *db.ConfigurationModel) *domain.Configuration {
	value := c.Value
	if c.Secret {
		value = ""
		if m.encryption != nil {
			decrypted, err := m.encryption.Decrypt(c.Value)
			if err != nil {
				// The entry stays usable for rendering, which never needs the value
				slog.Error("Failed to decrypt configuration value",
					"configuration_id", c.ID,
					"configuration_name", c.Name,
					"error", err)
			} else {
				value = decrypted
			}
		}
	}

	return &domain.Configuration{
		ID:            c.ID,
		ApplicationID: c.ApplicationID,
		Name:          c.Name,
		Value:         value,
		KeySlug:       c.KeySlug,
		Secret:        c.Secret,
		Deleted:       c.Deleted,
		VersionID:     c.VersionID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (m *ConfigurationMapper) ToModel(c *domain.Configuration) (*db.ConfigurationModel, error) {
	value := c.Value
	if c.Secret {
		if m.encryption == nil {
			return nil, fmt.Errorf("cannot store secret configuration %s: no encryption key configured", c.Name)
		}
		encrypted, err := m.encryption.Encrypt(c.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt configuration %s: %w", c.Name, err)
		}
		value = encrypted
	}

	return &db.ConfigurationModel{
		BaseModel:     baseModel(c.ID, c.VersionID, c.CreatedAt, c.UpdatedAt),
		ApplicationID: c.ApplicationID,
		Name:          c.Name,
		NameKey:       domain.NameKey(c.Name),
		Value:         value,
		KeySlug:       c.KeySlug,
		Secret:        c.Secret,
		Deleted:       c.Deleted,
	}, nil
}

type ReleaseMapper struct{}

func (m *ReleaseMapper) ToDomain(r *db.ReleaseModel) *domain.Release {
	platform, err := domain.ParsePlatform(r.Platform)
	if err != nil {
		platform = domain.DefaultPlatform
	}

	release := &domain.Release{
		ID:            r.ID,
		ApplicationID: r.ApplicationID,
		Platform:      platform,
		Configuration: map[string]domain.ConfigurationSummary{},
		Version:       r.Version,
		Built:         r.Built,
		Error:         r.Error,
		ErrorDetail:   r.ErrorDetail,
		Deleted:       r.Deleted,
		BuildLog:      r.ReleaseBuildLog,
		VersionID:     r.VersionID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	id := r.ID.String()
	decodeColumn(r.Image, &release.Image, "releases", "image", id)
	decodeColumn(r.Configuration, &release.Configuration, "releases", "configuration", id)
	decodeColumn(r.ImageChanges, &release.ImageChanges, "releases", "image_changes", id)
	decodeColumn(r.ConfigurationChanges, &release.ConfigurationChanges, "releases", "configuration_changes", id)
	decodeColumn(r.ReleaseMetadata, &release.Metadata, "releases", "release_metadata", id)
	return release
}

func (m *ReleaseMapper) ToModel(r *domain.Release) (*db.ReleaseModel, error) {
	configuration := r.Configuration
	if configuration == nil {
		configuration = map[string]domain.ConfigurationSummary{}
	}

	model := &db.ReleaseModel{
		BaseModel:       baseModel(r.ID, r.VersionID, r.CreatedAt, r.UpdatedAt),
		ApplicationID:   r.ApplicationID,
		Platform:        r.Platform.String(),
		Version:         r.Version,
		Built:           r.Built,
		Error:           r.Error,
		ErrorDetail:     r.ErrorDetail,
		Deleted:         r.Deleted,
		ReleaseBuildLog: r.BuildLog,
	}

	var err error
	if model.Image, err = encodeValue(r.Image); err != nil {
		return nil, fmt.Errorf("failed to encode release image: %w", err)
	}
	if model.Configuration, err = encodeValue(configuration); err != nil {
		return nil, fmt.Errorf("failed to encode release configuration: %w", err)
	}
	if model.ImageChanges, err = encodeValue(r.ImageChanges.AsDict()); err != nil {
		return nil, fmt.Errorf("failed to encode release image changes: %w", err)
	}
	if model.ConfigurationChanges, err = encodeValue(r.ConfigurationChanges.AsDict()); err != nil {
		return nil, fmt.Errorf("failed to encode release configuration changes: %w", err)
	}

	if model.ReleaseMetadata, err = encodeColumn(r.Metadata); err != nil {
		return nil, fmt.Errorf("failed to encode release metadata: %w", err)
	}
	return model, nil
}

// encodeColumn marshals v, leaving nil maps as SQL NULL
func encodeColumn[T any](v map[string]T) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func encodeValue(v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func baseModel(id uuid.UUID, versionID int, createdAt, updatedAt time.Time) db.BaseModel {
	return db.BaseModel{
		ID:        id,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		VersionID: versionID,
	}
}

func decodeColumn(data datatypes.JSON, dest any, table, column, id string) {
	if len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, dest); err != nil {
		slog.Error("Failed to decode JSON column",
			"table", table,
			"column", column,
			"id", id,
			"error", err)
	}
}
