// Package domain provides core domain types and entities for Cabotage.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type Project struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID // uuid.Nil when the project is not owned by an organization
	Name           string
	Slug           string
	VersionID      int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewProject creates a project, deriving the slug from the name unless one is supplied
func NewProject(organizationID uuid.UUID, name, explicitSlug string) Project {
	return Project{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Name:           name,
		Slug:           Slugify(name, explicitSlug),
	}
}

type Application struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Name      string
	Slug      string
	Platform  Platform
	VersionID int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewApplication(projectID uuid.UUID, name, explicitSlug string, platform Platform) Application {
	if platform == "" {
		platform = DefaultPlatform
	}
	return Application{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      name,
		Slug:      Slugify(name, explicitSlug),
		Platform:  platform,
	}
}

// Slugify returns the normalized slug for explicit, or for name when explicit is empty
func Slugify(name, explicit string) string {
	if explicit != "" {
		return slug.Make(explicit)
	}
	return slug.Make(name)
}

// ValidateSlug rejects slugs that normalize to nothing
func ValidateSlug(s string) error {
	if s == "" {
		return fmt.Errorf("%w: slug is empty after normalization", ErrValidation)
	}
	if !slug.IsSlug(s) {
		return fmt.Errorf("%w: invalid slug: %q", ErrValidation, s)
	}
	return nil
}
