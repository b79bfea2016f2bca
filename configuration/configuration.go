// Package configuration implements the per-application configuration registry.
package configuration

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/repository"
)

type CreateInput struct {
	ApplicationID uuid.UUID `validate:"required"`
	Name          string    `validate:"required,max=64"`
	Value         string    `validate:"max=2048"`
	Secret        bool
	// KeySlug overrides the derived "<backend>:<project>/<application>/configuration/<name>" key
	KeySlug string `validate:"max=1024"`
}

// UpdateInput changes the fields that are set. ExpectedVersionID, when set, must match the stored stamp.
type UpdateInput struct {
	Value             *string `validate:"omitempty,max=2048"`
	Secret            *bool
	ExpectedVersionID *int
}

type Registry interface {
	Create(input CreateInput) (*domain.Configuration, error)
	Update(id uuid.UUID, input UpdateInput) (*domain.Configuration, error)
	Delete(id uuid.UUID) error
	Get(id uuid.UUID) (*domain.Configuration, error)
	List(applicationID uuid.UUID) ([]*domain.Configuration, error)
	EnvconsulStatement(id uuid.UUID) (string, error)
}

type ConfigurationService struct {
	configurationRepository repository.ConfigurationRepository
	applicationRepository   repository.ApplicationRepository
	projectRepository       repository.ProjectRepository
}

var _ Registry = (*ConfigurationService)(nil)

// Create adds a configuration entry. Names are unique per application ignoring case.
func (s *ConfigurationService) Create(input CreateInput) (*domain.Configuration, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	application, err := s.applicationRepository.FindByID(input.ApplicationID)
	if err != nil {
		return nil, s.fail("create_configuration", err, "application_id", input.ApplicationID)
	}

	configuration := domain.NewConfiguration(application.ID, input.Name, input.Value, input.Secret)
	configuration.KeySlug = input.KeySlug
	if configuration.KeySlug == "" {
		project, err := s.projectRepository.FindByID(application.ProjectID)
		if err != nil {
			return nil, s.fail("create_configuration", err, "project_id", application.ProjectID)
		}
		configuration.KeySlug = domain.DeriveKeySlug(input.Secret, project.Slug, application.Slug, input.Name)
	}

	if err := s.configurationRepository.Create(&configuration); err != nil {
		return nil, s.fail("create_configuration", err,
			"application_id", application.ID,
			"configuration_name", input.Name)
	}

	slog.Info("Configuration created",
		"configuration_id", configuration.ID,
		"application_id", configuration.ApplicationID,
		"configuration_name", configuration.Name,
		"secret", configuration.Secret)
	return &configuration, nil
}

// Update changes the value and/or secret flag in place, bumping the version stamp
func (s *ConfigurationService) Update(id uuid.UUID, input UpdateInput) (*domain.Configuration, error) {
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	configuration, err := s.configurationRepository.FindByID(id)
	if err != nil {
		return nil, s.fail("update_configuration", err, "configuration_id", id)
	}
	if input.ExpectedVersionID != nil && *input.ExpectedVersionID != configuration.VersionID {
		err := fmt.Errorf("%w: configuration %s is at version %d, expected %d",
			domain.ErrConflict, id, configuration.VersionID, *input.ExpectedVersionID)
		return nil, s.fail("update_configuration", err, "configuration_id", id)
	}

	if input.Value != nil {
		configuration.Value = *input.Value
	}
	if input.Secret != nil && *input.Secret != configuration.Secret {
		configuration.Secret = *input.Secret
		configuration.KeySlug = domain.RebaseKeySlug(configuration.KeySlug, configuration.Secret)
	}

	if err := s.configurationRepository.Update(configuration); err != nil {
		return nil, s.fail("update_configuration", err, "configuration_id", id)
	}
	return configuration, nil
}

// Delete marks the entry deleted. Releases referencing it become deposed.
func (s *ConfigurationService) Delete(id uuid.UUID) error {
	configuration, err := s.configurationRepository.FindByID(id)
	if err != nil {
		return s.fail("delete_configuration", err, "configuration_id", id)
	}

	configuration.Deleted = true
	if err := s.configurationRepository.Update(configuration); err != nil {
		return s.fail("delete_configuration", err, "configuration_id", id)
	}

	slog.Info("Configuration deleted", "configuration_id", id, "configuration_name", configuration.Name)
	return nil
}

func (s *ConfigurationService) Get(id uuid.UUID) (*domain.Configuration, error) {
	configuration, err := s.configurationRepository.FindByID(id)
	if err != nil {
		return nil, s.fail("get_configuration", err, "configuration_id", id)
	}
	return configuration, nil
}

// List returns the live configurations of an application ordered by name
func (s *ConfigurationService) List(applicationID uuid.UUID) ([]*domain.Configuration, error) {
	if _, err := s.applicationRepository.FindByID(applicationID); err != nil {
		return nil, s.fail("list_configurations", err, "application_id", applicationID)
	}

	configurations, err := s.configurationRepository.ListByApplication(applicationID)
	if err != nil {
		return nil, s.fail("list_configurations", err, "application_id", applicationID)
	}
	return configurations, nil
}

func (s *ConfigurationService) EnvconsulStatement(id uuid.UUID) (string, error) {
	configuration, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return configuration.EnvconsulStatement()
}

func (s *ConfigurationService) fail(operation string, err error, attrs ...any) error {
	slog.Error("Service operation failed",
		append([]any{"layer", "service", "operation", operation, "error", err}, attrs...)...)
	return err
}

func NewConfigurationService(
	configurationRepository repository.ConfigurationRepository,
	applicationRepository repository.ApplicationRepository,
	projectRepository repository.ProjectRepository,
) *ConfigurationService {
	return &ConfigurationService{
		configurationRepository: configurationRepository,
		applicationRepository:   applicationRepository,
		projectRepository:       projectRepository,
	}
}
