package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Migration represents a single database migration
type Migration struct {
	ID   int
	Name string
	Up   func(*gorm.DB) error
}

// allMigrations is the ordered list of schema changes AutoMigrate cannot express.
// They run after AutoMigrate, in order, each at most once.
var allMigrations = []Migration{
	{
		ID:   1,
		Name: "0001_configurations_unique_live_name",
		Up:   migration0001ConfigurationsUniqueLiveName,
	},
	{
		ID:   2,
		Name: "0002_history_entity_lookup",
		Up:   migration0002HistoryEntityLookup,
	},
	{
		ID:   3,
		Name: "0003_releases_latest_lookup",
		Up:   migration0003ReleasesLatestLookup,
	},
}

// AllModels returns all the models that need to be migrated
func AllModels() []any {
	return []any{
		&MigrationModel{},
		&ProjectModel{},
		&ApplicationModel{},
		&ImageModel{},
		&ConfigurationModel{},
		&ReleaseModel{},
		&HistoryModel{},
	}
}

// AutoMigrateAll runs auto-migration for all application models, then the manual migrations
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return err
	}
	return RunMigrations(db, len(allMigrations))
}

// RunMigrations runs all migrations up to and including the specified ID
// If targetID is 0 or negative, all migrations are run
func RunMigrations(db *gorm.DB, targetID int) error {
	if targetID <= 0 {
		targetID = len(allMigrations)
	}

	for _, migration := range allMigrations {
		if migration.ID > targetID {
			break
		}

		applied, err := migrationApplied(db, migration.Name)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", migration.Name, err)
		}
		if applied {
			continue
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", migration.Name, err)
			}
			if err := recordMigration(tx, migration.Name); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// AppliedMigrations returns the names of applied migrations in application order
func AppliedMigrations(db *gorm.DB) ([]string, error) {
	var names []string
	err := db.Model(&MigrationModel{}).Order("id").Pluck("name", &names).Error
	return names, err
}

func migrationApplied(db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.Model(&MigrationModel{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func recordMigration(db *gorm.DB, name string) error {
	migration := MigrationModel{
		Name:      name,
		AppliedAt: time.Now(),
	}
	return db.Create(&migration).Error
}

// migration0001ConfigurationsUniqueLiveName makes configuration names unique per
// application, ignoring case and soft-deleted rows
func migration0001ConfigurationsUniqueLiveName(db *gorm.DB) error {
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_configurations_app_name_live
		ON configurations (application_id, name_key)
		WHERE deleted = 0
	`).Error
}

// migration0002HistoryEntityLookup indexes history reads by entity id alone
func migration0002HistoryEntityLookup(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_history_entity_id
		ON history (entity_id, version_id)
	`).Error
}

// migration0003ReleasesLatestLookup serves the "latest release by status" queries
func migration0003ReleasesLatestLookup(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_releases_app_status
		ON releases (application_id, deleted, built, error, version DESC)
	`).Error
}
