package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/versioning"
)

type HistoryRepository interface {
	// ForEntity returns every recorded mutation of the entity ordered by version stamp
	ForEntity(entityID uuid.UUID) ([]domain.HistoryEntry, error)
}

type historyRepository struct {
	db *gorm.DB
}

func (r *historyRepository) ForEntity(entityID uuid.UUID) ([]domain.HistoryEntry, error) {
	entries, err := versioning.History(r.db, entityID)
	if err != nil {
		logFailure("list_history", err, "entity_id", entityID)
		return nil, err
	}
	return entries, nil
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}
