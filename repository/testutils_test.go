package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/encryption"
)

type testRepositories struct {
	db             *gorm.DB
	projects       ProjectRepository
	applications   ApplicationRepository
	images         ImageRepository
	configurations ConfigurationRepository
	releases       ReleaseRepository
	history        HistoryRepository
}

func setupTestRepositories(t testing.TB) *testRepositories {
	database, err := db.InitDatabase(db.DBConfig{Path: ":memory:", LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAll(database))

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	encryptionSvc, err := encryption.NewEncryptionService(key)
	require.NoError(t, err)

	return &testRepositories{
		db:             database,
		projects:       NewProjectRepository(database),
		applications:   NewApplicationRepository(database),
		images:         NewImageRepository(database),
		configurations: NewConfigurationRepository(database, encryptionSvc),
		releases:       NewReleaseRepository(database),
		history:        NewHistoryRepository(database),
	}
}

func (r *testRepositories) createApplication(t require.TestingT) *domain.Application {
	project := domain.NewProject(uuid.Nil, "Shop "+uuid.NewString()[:8], "")
	require.NoError(t, r.projects.Create(&project))

	application := domain.NewApplication(project.ID, "Web", "", "")
	require.NoError(t, r.applications.Create(&application))
	return &application
}
