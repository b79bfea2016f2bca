// Package db provides database models and utilities for Cabotage.
package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BaseModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	VersionID int       `gorm:"not null" json:"version_id"` // optimistic concurrency stamp
}

func (m *BaseModel) GetID() uuid.UUID {
	return m.ID
}

func (m *BaseModel) GetVersionID() int {
	return m.VersionID
}

func (m *BaseModel) SetVersionID(v int) {
	m.VersionID = v
}

type ProjectModel struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_projects_org_slug" json:"organization_id"`
	Name           string    `gorm:"not null;check:name <> ''" json:"name"`
	Slug           string    `gorm:"not null;uniqueIndex:idx_projects_org_slug;check:slug <> ''" json:"slug"`

	Applications []ApplicationModel `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ProjectModel) TableName() string {
	return "projects"
}

type ApplicationModel struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_applications_project_slug" json:"project_id"`
	Name      string    `gorm:"not null;check:name <> ''" json:"name"`
	Slug      string    `gorm:"not null;uniqueIndex:idx_applications_project_slug;check:slug <> ''" json:"slug"`
	Platform  string    `gorm:"type:varchar(16);not null;check:platform IN ('wind','steam','diesel','stirling','nuclear','electric')" json:"platform"`

	Images         []ImageModel         `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
	Configurations []ConfigurationModel `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
	Releases       []ReleaseModel       `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ApplicationModel) TableName() string {
	return "applications"
}

type ImageModel struct {
	BaseModel
	ApplicationID  uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:idx_images_app_version" json:"application_id"`
	RepositoryName string         `gorm:"size:256;not null" json:"repository_name"`
	ImageID        *string        `gorm:"size:256" json:"image_id"`
	Version        int            `gorm:"not null;uniqueIndex:idx_images_app_version" json:"version"`
	Built          bool           `gorm:"not null" json:"built"`
	Error          bool           `gorm:"not null" json:"error"`
	ErrorDetail    *string        `gorm:"size:2048" json:"error_detail"`
	Deleted        bool           `gorm:"not null" json:"deleted"`
	BuildSlug      string         `gorm:"size:1024;not null" json:"build_slug"`
	Dockerfile     *string        `gorm:"type:text" json:"dockerfile"`
	Procfile       *string        `gorm:"type:text" json:"procfile"`
	Processes      datatypes.JSON `json:"processes"`
	ImageMetadata  datatypes.JSON `json:"image_metadata"`
	ImageBuildLog  *string        `gorm:"type:text" json:"image_build_log"`
}

func (ImageModel) TableName() string {
	return "images"
}

type ConfigurationModel struct {
	BaseModel
	ApplicationID uuid.UUID `gorm:"type:char(36);not null;index" json:"application_id"`
	Name          string    `gorm:"not null;check:name <> ''" json:"name"`
	NameKey       string    `gorm:"not null;index" json:"name_key"`  // lowercase form, unique among live rows (migration 0001)
	Value         string    `gorm:"type:text;not null" json:"value"` // fernet token when Secret
	KeySlug       string    `gorm:"type:text;not null" json:"key_slug"`
	Secret        bool      `gorm:"not null" json:"secret"`
	Deleted       bool      `gorm:"not null" json:"deleted"`
}

func (ConfigurationModel) TableName() string {
	return "configurations"
}

type ReleaseModel struct {
	BaseModel
	ApplicationID        uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:idx_releases_app_version" json:"application_id"`
	Platform             string         `gorm:"type:varchar(16);not null" json:"platform"`
	Image                datatypes.JSON `gorm:"not null" json:"image"`
	Configuration        datatypes.JSON `gorm:"not null" json:"configuration"`
	ImageChanges         datatypes.JSON `gorm:"not null" json:"image_changes"`
	ConfigurationChanges datatypes.JSON `gorm:"not null" json:"configuration_changes"`
	Version              int            `gorm:"not null;uniqueIndex:idx_releases_app_version" json:"version"`
	Built                bool           `gorm:"not null" json:"built"`
	Error                bool           `gorm:"not null" json:"error"`
	ErrorDetail          *string        `gorm:"size:2048" json:"error_detail"`
	Deleted              bool           `gorm:"not null" json:"deleted"`
	ReleaseMetadata      datatypes.JSON `json:"release_metadata"`
	ReleaseBuildLog      *string        `gorm:"type:text" json:"release_build_log"`
}

func (ReleaseModel) TableName() string {
	return "releases"
}

// HistoryModel is one append-only row of the change log
type HistoryModel struct {
	ID         uint           `gorm:"primaryKey;autoIncrement"`
	EntityType string         `gorm:"size:64;not null;uniqueIndex:idx_history_entity_version"`
	EntityID   uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:idx_history_entity_version"`
	VersionID  int            `gorm:"not null;uniqueIndex:idx_history_entity_version"`
	Operation  string         `gorm:"type:varchar(16);not null;check:operation IN ('insert','update','delete')"`
	Before     datatypes.JSON // null for inserts
	After      datatypes.JSON // null for deletes
	RecordedAt time.Time      `gorm:"not null"`
}

func (HistoryModel) TableName() string {
	return "history"
}

type MigrationModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"not null;unique"`
	AppliedAt time.Time `gorm:"not null"`
}

func (MigrationModel) TableName() string {
	return "migrations"
}
