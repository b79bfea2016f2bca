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

// BuildState selects images or releases by their build flags
type BuildState int

const (
	BuildStateAny BuildState = iota
	BuildStateBuilt
	BuildStateError
	BuildStateBuilding
)

func (s BuildState) String() string {
	switch s {
	case BuildStateBuilt:
		return "built"
	case BuildStateError:
		return "error"
	case BuildStateBuilding:
		return "building"
	default:
		return "any"
	}
}

// scope restricts a query to live rows in the given build state
func (s BuildState) scope(tx *gorm.DB) *gorm.DB {
	tx = tx.Where("deleted = ?", false)
	switch s {
	case BuildStateBuilt:
		return tx.Where("built = ?", true)
	case BuildStateError:
		return tx.Where("error = ?", true)
	case BuildStateBuilding:
		return tx.Where("built = ? AND error = ?", false, false)
	default:
		return tx
	}
}

type ImageRepository interface {
	// FindByID returns a live image; soft-deleted images are not found
	FindByID(id uuid.UUID) (*domain.Image, error)
	ListByApplication(applicationID uuid.UUID) ([]*domain.Image, error)
	// Latest returns the highest-versioned live image in state, or nil when there is none
	Latest(applicationID uuid.UUID, state BuildState) (*domain.Image, error)
	// Create allocates the next version number for the application and inserts the image
	Create(image *domain.Image) error
	Update(image *domain.Image) error
}

type imageRepository struct {
	db     *gorm.DB
	mapper *ImageMapper
}

func (r *imageRepository) FindByID(id uuid.UUID) (*domain.Image, error) {
	var m db.ImageModel
	if err := r.db.Where("id = ? AND deleted = ?", id, false).Take(&m).Error; err != nil {
		return nil, fmt.Errorf("image %s: %w", id, translate(err))
	}
	return r.mapper.ToDomain(&m), nil
}

func (r *imageRepository) ListByApplication(applicationID uuid.UUID) ([]*domain.Image, error) {
	var models []db.ImageModel
	err := r.db.Where("application_id = ? AND deleted = ?", applicationID, false).
		Order("version DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	images := make([]*domain.Image, len(models))
	for i := range models {
		images[i] = r.mapper.ToDomain(&models[i])
	}
	return images, nil
}

func (r *imageRepository) Latest(applicationID uuid.UUID, state BuildState) (*domain.Image, error) {
	var m db.ImageModel
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

func (r *imageRepository) Create(image *domain.Image) error {
	m, err := r.mapper.ToModel(image)
	if err != nil {
		return err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		version, err := nextVersion(tx, &db.ImageModel{}, image.ApplicationID)
		if err != nil {
			return err
		}
		m.Version = version
		return versioning.Create(tx, m)
	})
	if err != nil {
		err = translate(err)
		logFailure("create_image", err,
			"image_id", image.ID,
			"application_id", image.ApplicationID)
		return err
	}

	*image = *r.mapper.ToDomain(m)
	return nil
}

func (r *imageRepository) Update(image *domain.Image) error {
	m, err := r.mapper.ToModel(image)
	if err != nil {
		return err
	}
	if err := versioning.Update(r.db, m); err != nil {
		logFailure("update_image", err, "image_id", image.ID)
		return err
	}
	*image = *r.mapper.ToDomain(m)
	return nil
}

// nextVersion returns one past the highest version ever allocated for the application,
// soft-deleted rows included. Callers must insert within the same transaction; the
// unique (application_id, version) index rejects a concurrent duplicate.
func nextVersion(tx *gorm.DB, model any, applicationID uuid.UUID) (int, error) {
	var current int
	err := tx.Model(model).
		Where("application_id = ?", applicationID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, fmt.Errorf("failed to allocate version: %w", err)
	}
	return current + 1, nil
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{
		db:     db,
		mapper: &ImageMapper{},
	}
}
