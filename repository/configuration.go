package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/encryption"
	"github.com/cabotage/cabotage/versioning"
)

type ConfigurationRepository interface {
	// FindByID returns a live configuration; soft-deleted entries are not found
	FindByID(id uuid.UUID) (*domain.Configuration, error)
	// ListByApplication returns the live configurations ordered by name
	ListByApplication(applicationID uuid.UUID) ([]*domain.Configuration, error)
	Create(configuration *domain.Configuration) error
	Update(configuration *domain.Configuration) error
}

type configurationRepository struct {
	db     *gorm.DB
	mapper *ConfigurationMapper
}

func (r *configurationRepository) FindByID(id uuid.UUID) (*domain.Configuration, error) {
	var m db.ConfigurationModel
	if err := r.db.Where("id = ? AND deleted = ?", id, false).Take(&m).Error; err != nil {
		return nil, fmt.Errorf("configuration %s: %w", id, translate(err))
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *configurationRepository) ListByApplication(applicationID uuid.UUID) ([]*domain.Configuration, error) {
	var models []db.ConfigurationModel
	err := r.db.Where("application_id = ? AND deleted = ?", applicationID, false).
		Order("name_key ASC").
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	configurations := make([]*domain.Configuration, len(models))
	for i := range models {
		configurations[i] = r.mapper.ToDomain(&models[i])
	}
	return configurations, nil
}

func (r *configurationRepository) Create(configuration *domain.Configuration) error {
	m, err := r.mapper.ToModel(configuration)
	if err != nil {
		return err
	}
	if err := versioning.Create(r.db, m); err != nil {
		logFailure("create_configuration", err,
			"configuration_id", configuration.ID,
			"application_id", configuration.ApplicationID,
			"configuration_name", configuration.Name)
		return duplicateName(err, "configuration %q already exists for application", configuration.Name)
	}

	// The stored value is a token for secrets; keep the caller's plaintext
	value := configuration.Value
	*configuration = *r.mapper.ToDomain(m)
	configuration.Value = value
	return nil
}

func (r *configurationRepository) Update(configuration *domain.Configuration) error {
	m, err := r.mapper.ToModel(configuration)
	if err != nil {
		return err
	}
	if err := versioning.Update(r.db, m); err != nil {
		logFailure("update_configuration", err, "configuration_id", configuration.ID)
		return duplicateName(err, "configuration %q already exists for application", configuration.Name)
	}

	value := configuration.Value
	*configuration = *r.mapper.ToDomain(m)
	configuration.Value = value
	return nil
}

func NewConfigurationRepository(db *gorm.DB, encryptionSvc *encryption.EncryptionService) ConfigurationRepository {
	return &configurationRepository{
		db:     db,
		mapper: NewConfigurationMapper(encryptionSvc),
	}
}
