package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/versioning"
)

type ReleaseRepository interface {
	FindByID(id uuid.UUID) (*domain.Release, error)
	ListByApplication(applicationID uuid.UUID) ([]*domain.Release, error)
	Latest(applicationID uuid.UUID, state BuildState) (*domain.Release, error)
	// Create sets the release version to one past the application's most recent release
	Create(release *domain.Release) error
	Update(release *domain.Release) error
}

type releaseRepository struct {
	db     *gorm.DB
	mapper *ReleaseMapper
}

func (r *releaseRepository) FindByID(id uuid.UUID) (*domain.Release, error) {
	var m db.ReleaseModel
	if err := r.db.Where("id = ? AND deleted = ?", id, false).Take(&m).Error; err != nil {
		return nil, fmt.Errorf("release %s: %w", id, translate(err))
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *releaseRepository) ListByApplication(applicationID uuid.UUID) ([]*domain.Release, error) {
	var models []db.ReleaseModel
	err := r.db.Where("application_id = ? AND deleted = ?", applicationID, false).
		Order("version DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	releases := make([]*domain.Release, len(models))
	for i := range models {
		releases[i] = r.mapper.ToDomain(&models[i])
	}
	return releases, nil
}

func (r *releaseRepository) Latest(applicationID uuid.UUID, state BuildState) (*domain.Release, error) {
	var m db.ReleaseModel
	err := state.scope(r.db.Where("application_id = ?", applicationID)).
		Order("version DESC").
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *releaseRepository) Create(release *domain.Release) error {
	m, err := r.mapper.ToModel(release)
	if err != nil {
		return err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		version, err := nextVersion(tx, &db.ReleaseModel{}, release.ApplicationID)
		if err != nil {
			return err
		}
		m.Version = version
		return versioning.Create(tx, m)
	})
	if err != nil {
		err = translate(err)
		logFailure("create_release", err,
			"release_id", release.ID,
			"application_id", release.ApplicationID)
		return err
	}

	*release = *r.mapper.ToDomain(m)
	return nil
}

func (r *releaseRepository) Update(release *domain.Release) error {
	m, err := r.mapper.ToModel(release)
	if err != nil {
		return err
	}
	if err := versioning.Update(r.db, m); err != nil {
		logFailure("update_release", err, "release_id", release.ID)
		return err
	}
	*release = *r.mapper.ToDomain(m)
	return nil
}

func NewReleaseRepository(db *gorm.DB) ReleaseRepository {
	return &releaseRepository{
		db:     db,
		mapper: &ReleaseMapper{},
	}
}
