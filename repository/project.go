package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/versioning"
)

type ProjectRepository interface {
	FindByID(id uuid.UUID) (*domain.Project, error)
	FindBySlug(organizationID uuid.UUID, slug string) (*domain.Project, error)
	List() ([]*domain.Project, error)
	Create(project *domain.Project) error
	Update(project *domain.Project) error
	Delete(id uuid.UUID) error
}

type projectRepository struct {
	db     *gorm.DB
	mapper *ProjectMapper
}

func (r *projectRepository) List() ([]*domain.Project, error) {
	var models []db.ProjectModel
	if err := r.db.Order("name ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	projects := make([]*domain.Project, len(models))
	for i := range models {
		projects[i] = r.mapper.ToDomain(&models[i])
	}
	return projects, nil
}

func (r *projectRepository) FindByID(id uuid.UUID) (*domain.Project, error) {
	var m db.ProjectModel
	if err := r.db.Where("id = ?", id).Take(&m).Error; err != nil {
		return nil, fmt.Errorf("project %s: %w", id, translate(err))
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *projectRepository) FindBySlug(organizationID uuid.UUID, slug string) (*domain.Project, error) {
	var m db.ProjectModel
	err := r.db.Where("organization_id = ? AND slug = ?", organizationID, slug).Take(&m).Error
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", slug, translate(err))
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *projectRepository) Create(project *domain.Project) error {
	m := r.mapper.ToModel(project)
	if err := versioning.Create(r.db, m); err != nil {
		logFailure("create_project", err, "project_id", project.ID, "project_slug", project.Slug)
		return duplicateName(err, "project slug %q is already taken", project.Slug)
	}
	// Update the domain object with the stamp and timestamps that GORM populated
	*project = *r.mapper.ToDomain(m)
	return nil
}

func (r *projectRepository) Update(project *domain.Project) error {
	m := r.mapper.ToModel(project)
	if err := versioning.Update(r.db, m); err != nil {
		logFailure("update_project", err, "project_id", project.ID)
		return duplicateName(err, "project slug %q is already taken", project.Slug)
	}
	*project = *r.mapper.ToDomain(m)
	return nil
}

// Delete removes the project and everything it owns, writing history for every removed row
func (r *projectRepository) Delete(id uuid.UUID) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		project, err := versioning.Get[db.ProjectModel](tx, id)
		if err != nil {
			return err
		}

		var applications []db.ApplicationModel
		if err := tx.Where("project_id = ?", id).Find(&applications).Error; err != nil {
			return err
		}
		for i := range applications {
			if err := deleteApplicationTree(tx, &applications[i]); err != nil {
				return err
			}
		}

		return versioning.Delete(tx, project)
	})
	if err != nil {
		logFailure("delete_project", err, "project_id", id)
	}
	return err
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{
		db:     db,
		mapper: &ProjectMapper{},
	}
}
