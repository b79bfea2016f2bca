package project

import (
	"github.com/google/uuid"

	"github.com/cabotage/cabotage/domain"
)

// ProjectManager defines the contract for project and application management operations
type ProjectManager interface {
	List() ([]*domain.Project, error)
	Get(id uuid.UUID) (*domain.Project, error)
	Create(input CreateProjectInput) (*domain.Project, error)
	Rename(id uuid.UUID, name string) (*domain.Project, error)
	Remove(id uuid.UUID) error

	ListApplications(projectID uuid.UUID) ([]*domain.Application, error)
	GetApplication(id uuid.UUID) (*domain.Application, error)
	CreateApplication(input CreateApplicationInput) (*domain.Application, error)
	SetPlatform(id uuid.UUID, platform string) (*domain.Application, error)
	RemoveApplication(id uuid.UUID) error
}
