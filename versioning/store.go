// Package versioning persists entities with an optimistic-concurrency version stamp
// and records every mutation in an append-only history table.
package versioning

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/domain"
)

// Record is a gorm model that carries an id and a version stamp
type Record interface {
	GetID() uuid.UUID
	GetVersionID() int
	SetVersionID(int)
	TableName() string
}

// Versioned constrains PT to be a pointer to a model type T implementing Record
type Versioned[T any] interface {
	*T
	Record
}

// Create inserts record with version stamp 1 and logs an insert
func Create[T any, PT Versioned[T]](tx *gorm.DB, record PT) error {
	if record.GetID() == uuid.Nil {
		return fmt.Errorf("%w: %s record has no id", domain.ErrValidation, record.TableName())
	}

	return tx.Transaction(func(tx *gorm.DB) error {
		record.SetVersionID(1)
		if err := tx.Omit(clause.Associations).Create(record).Error; err != nil {
			return TranslateError(err)
		}
		return appendHistory(tx, record, domain.OperationInsert, 1, nil, record)
	})
}

// Update writes record if its version stamp still matches the stored one.
// On success the stamp is incremented in place.
func Update[T any, PT Versioned[T]](tx *gorm.DB, record PT) error {
	expected := record.GetVersionID()

	err := tx.Transaction(func(tx *gorm.DB) error {
		prior, err := load[T, PT](tx, record.GetID())
		if err != nil {
			return err
		}
		if prior.GetVersionID() != expected {
			return staleError(record, expected, prior.GetVersionID())
		}

		record.SetVersionID(expected + 1)
		result := tx.Model(record).
			Where("version_id = ?", expected).
			Select("*").
			Omit("created_at", clause.Associations).
			Updates(record)
		if result.Error != nil {
			return TranslateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return staleError(record, expected, -1)
		}

		return appendHistory(tx, record, domain.OperationUpdate, expected+1, prior, record)
	})
	if err != nil {
		record.SetVersionID(expected)
	}
	return err
}

// Delete physically removes record if its version stamp still matches.
// The delete is logged one stamp past the last stored version.
func Delete[T any, PT Versioned[T]](tx *gorm.DB, record PT) error {
	expected := record.GetVersionID()

	return tx.Transaction(func(tx *gorm.DB) error {
		prior, err := load[T, PT](tx, record.GetID())
		if err != nil {
			return err
		}
		if prior.GetVersionID() != expected {
			return staleError(record, expected, prior.GetVersionID())
		}

		result := tx.Where("id = ? AND version_id = ?", record.GetID(), expected).Delete(PT(new(T)))
		if result.Error != nil {
			return TranslateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return staleError(record, expected, -1)
		}

		return appendHistory(tx, record, domain.OperationDelete, expected+1, prior, nil)
	})
}

// Get loads the current state of the entity with the given id
func Get[T any, PT Versioned[T]](tx *gorm.DB, id uuid.UUID) (PT, error) {
	return load[T, PT](tx, id)
}

// History returns every recorded mutation of the entity, oldest first
func History(tx *gorm.DB, entityID uuid.UUID) ([]domain.HistoryEntry, error) {
	var models []db.HistoryModel
	err := tx.Where("entity_id = ?", entityID).
		Order("version_id ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.HistoryEntry, len(models))
	for i, m := range models {
		operation, err := domain.ParseOperation(m.Operation)
		if err != nil {
			operation = domain.OperationUnknown
		}
		entries[i] = domain.HistoryEntry{
			ID:         m.ID,
			EntityType: m.EntityType,
			EntityID:   m.EntityID,
			VersionID:  m.VersionID,
			Operation:  operation,
			Before:     rawOrNil(m.Before),
			After:      rawOrNil(m.After),
			RecordedAt: m.RecordedAt,
		}
	}
	return entries, nil
}

// TranslateError maps gorm errors onto the domain taxonomy, keeping the original in the chain
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: referenced record does not exist: %w", domain.ErrNotFound, err)
	case isLockContention(err):
		return fmt.Errorf("%w: database is busy: %w", domain.ErrConflict, err)
	default:
		return err
	}
}

func isLockContention(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

func load[T any, PT Versioned[T]](tx *gorm.DB, id uuid.UUID) (PT, error) {
	record := PT(new(T))
	if err := tx.Where("id = ?", id).Take(record).Error; err != nil {
		return nil, fmt.Errorf("%s %s: %w", record.TableName(), id, TranslateError(err))
	}
	return record, nil
}

func staleError(record Record, expected, actual int) error {
	if actual < 0 {
		return fmt.Errorf("%w: %s %s changed concurrently (expected version %d)",
			domain.ErrConflict, record.TableName(), record.GetID(), expected)
	}
	return fmt.Errorf("%w: %s %s is at version %d, expected %d",
		domain.ErrConflict, record.TableName(), record.GetID(), actual, expected)
}

func appendHistory(tx *gorm.DB, record Record, operation domain.Operation, versionID int, before, after any) error {
	entry := db.HistoryModel{
		EntityType: record.TableName(),
		EntityID:   record.GetID(),
		VersionID:  versionID,
		Operation:  operation.String(),
		RecordedAt: time.Now().UTC(),
	}

	var err error
	if entry.Before, err = snapshot(before); err != nil {
		return err
	}
	if entry.After, err = snapshot(after); err != nil {
		return err
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record history for %s %s: %w", entry.EntityType, entry.EntityID, TranslateError(err))
	}
	return nil
}

func snapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot record: %w", err)
	}
	return data, nil
}

func rawOrNil(data []byte) json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	return json.RawMessage(data)
}
