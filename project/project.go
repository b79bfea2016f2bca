// Package project provides project and application management services for Cabotage.
package project

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/repository"
)

type CreateProjectInput struct {
	OrganizationID uuid.UUID
	Name           string `validate:"required,max=255"`
	Slug           string `validate:"max=255"`
}

type CreateApplicationInput struct {
	ProjectID uuid.UUID `validate:"required"`
	Name      string    `validate:"required,max=255"`
	Slug      string    `validate:"max=255"`
	Platform  string
}

// ProjectService manages projects and the applications they own.
type ProjectService struct {
	projectRepository     repository.ProjectRepository
	applicationRepository repository.ApplicationRepository
}

// Ensure ProjectService implements ProjectManager
var _ ProjectManager = (*ProjectService)(nil)

// List returns all projects
func (s *ProjectService) List() ([]*domain.Project, error) {
	projects, err := s.projectRepository.List()
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "list_projects",
			"error", err)
		return nil, err
	}
	return projects, nil
}

// Get retrieves a project by ID
func (s *ProjectService) Get(id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepository.FindByID(id)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "get_project",
			"project_id", id,
			"error", err)
		return nil, err
	}
	return project, nil
}

// Create creates a project, deriving its slug from the name unless one is given
func (s *ProjectService) Create(input CreateProjectInput) (*domain.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	project := domain.NewProject(input.OrganizationID, input.Name, input.Slug)
	if err := domain.ValidateSlug(project.Slug); err != nil {
		return nil, err
	}

	if err := s.projectRepository.Create(&project); err != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "create_project",
			"project_name", project.Name,
			"project_slug", project.Slug,
			"error", err)
		return nil, err
	}

	slog.Info("Project created", "project_id", project.ID, "project_slug", project.Slug)
	return &project, nil
}

// Rename changes the display name of a project. The slug is kept.
func (s *ProjectService) Rename(id uuid.UUID, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	project.Name = name

	if err := s.projectRepository.Update(project); err != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "rename_project",
			"project_id", id,
			"error", err)
		return nil, err
	}
	return project, nil
}

// Remove deletes a project together with its applications and everything they own
func (s *ProjectService) Remove(id uuid.UUID) error {
	if err := s.projectRepository.Delete(id); err != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "remove_project",
			"project_id", id,
			"error", err)
		return err
	}

	slog.Info("Project removed", "project_id", id)
	return nil
}

func (s *ProjectService) ListApplications(projectID uuid.UUID) ([]*domain.Application, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}

	applications, err := s.applicationRepository.ListByProject(projectID)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "list_applications",
			"project_id", projectID,
			"error", err)
		return nil, err
	}
	return applications, nil
}

func (s *ProjectService) GetApplication(id uuid.UUID) (*domain.Application, error) {
	application, err := s.applicationRepository.FindByID(id)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "get_application",
			"application_id", id,
			"error", err)
		return nil, err
	}
	return application, nil
}

// CreateApplication creates an application inside a project. An empty platform means wind.
func (s *ProjectService) CreateApplication(input CreateApplicationInput) (*domain.Application, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	platform, err := domain.ParsePlatform(input.Platform)
	if err != nil {
		return nil, err
	}

	application := domain.NewApplication(input.ProjectID, input.Name, input.Slug, platform)
	if err := domain.ValidateSlug(application.Slug); err != nil {
		return nil, err
	}

	if err := s.applicationRepository.Create(&application); err != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "create_application",
			"project_id", input.ProjectID,
			"application_slug", application.Slug,
			"error", err)
		return nil, err
	}

	slog.Info("Application created",
		"application_id", application.ID,
		"project_id", application.ProjectID,
		"application_slug", application.Slug)
	return &application, nil
}

// SetPlatform changes the platform later releases of the application are tagged with
func (s *ProjectService) SetPlatform(id uuid.UUID, platform string) (*domain.Application, error) {
	parsed, err := domain.ParsePlatform(platform)
	if err != nil {
		return nil, err
	}

	application, err := s.GetApplication(id)
	if err != nil {
		return nil, err
	}
	if application.Platform == parsed {
		return application, nil
	}
	application.Platform = parsed

	if err := s.applicationRepository.Update(application); err != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "set_platform",
			"application_id", id,
			"platform", parsed,
			"error", err)
		return nil, err
	}
	return application, nil
}

// RemoveApplication deletes an application with its images, configurations and releases
func (s *ProjectService) RemoveApplication(id uuid.UUID) error {
	if err := s.applicationRepository.Delete(id); err != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "remove_application",
			"application_id", id,
			"error", err)
		return err
	}

	slog.Info("Application removed", "application_id", id)
	return nil
}

func NewProjectService(
	projectRepository repository.ProjectRepository,
	applicationRepository repository.ApplicationRepository,
) *ProjectService {
	return &ProjectService{
		projectRepository:     projectRepository,
		applicationRepository: applicationRepository,
	}
}
