package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/versioning"
)

type ApplicationRepository interface {
	FindByID(id uuid.UUID) (*domain.Application, error)
	FindBySlug(projectID uuid.UUID, slug string) (*domain.Application, error)
	ListByProject(projectID uuid.UUID) ([]*domain.Application, error)
	Create(application *domain.Application) error
	Update(application *domain.Application) error
	Delete(id uuid.UUID) error
}

type applicationRepository struct {
	db     *gorm.DB
	mapper *ApplicationMapper
}

func (r *applicationRepository) FindByID(id uuid.UUID) (*domain.Application, error) {
	var m db.ApplicationModel
	if err := r.db.Where("id = ?", id).Take(&m).Error; err != nil {
		return nil, fmt.Errorf("application %s: %w", id, translate(err))
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *applicationRepository) FindBySlug(projectID uuid.UUID, slug string) (*domain.Application, error) {
	var m db.ApplicationModel
	err := r.db.Where("project_id = ? AND slug = ?", projectID, slug).Take(&m).Error
	if err != nil {
		return nil, fmt.Errorf("application %q: %w", slug, translate(err))
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *applicationRepository) ListByProject(projectID uuid.UUID) ([]*domain.Application, error) {
	var models []db.ApplicationModel
	err := r.db.Where("project_id = ?", projectID).
		Order("name ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	applications := make([]*domain.Application, len(models))
	for i := range models {
		applications[i] = r.mapper.ToDomain(&models[i])
	}
	return applications, nil
}

func (r *applicationRepository) Create(application *domain.Application) error {
	m := r.mapper.ToModel(application)
	if err := versioning.Create(r.db, m); err != nil {
		logFailure("create_application", err,
			"application_id", application.ID,
			"project_id", application.ProjectID,
			"application_slug", application.Slug)
		return duplicateName(err, "application slug %q is already taken in project", application.Slug)
	}
	*application = *r.mapper.ToDomain(m)
	return nil
}

func (r *applicationRepository) Update(application *domain.Application) error {
	m := r.mapper.ToModel(application)
	if err := versioning.Update(r.db, m); err != nil {
		logFailure("update_application", err, "application_id", application.ID)
		return duplicateName(err, "application slug %q is already taken in project", application.Slug)
	}
	*application = *r.mapper.ToDomain(m)
	return nil
}

func (r *applicationRepository) Delete(id uuid.UUID) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		application, err := versioning.Get[db.ApplicationModel](tx, id)
		if err != nil {
			return err
		}
		return deleteApplicationTree(tx, application)
	})
	if err != nil {
		logFailure("delete_application", err, "application_id", id)
	}
	return err
}

// deleteApplicationTree physically removes an application with its images,
// configurations and releases, soft-deleted rows included
func deleteApplicationTree(tx *gorm.DB, application *db.ApplicationModel) error {
	var releases []db.ReleaseModel
	if err := tx.Where("application_id = ?", application.ID).Find(&releases).Error; err != nil {
		return err
	}
	for i := range releases {
		if err := versioning.Delete(tx, &releases[i]); err != nil {
			return err
		}
	}

	var images []db.ImageModel
	if err := tx.Where("application_id = ?", application.ID).Find(&images).Error; err != nil {
		return err
	}
	for i := range images {
		if err := versioning.Delete(tx, &images[i]); err != nil {
			return err
		}
	}

	var configurations []db.ConfigurationModel
	if err := tx.Where("application_id = ?", application.ID).Find(&configurations).Error; err != nil {
		return err
	}
	for i := range configurations {
		if err := versioning.Delete(tx, &configurations[i]); err != nil {
			return err
		}
	}

	return versioning.Delete(tx, application)
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{
		db:     db,
		mapper: &ApplicationMapper{},
	}
}
