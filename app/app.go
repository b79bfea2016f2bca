// Package app wires the Cabotage database, repositories and services together.
package app

import (
	"os"

	"github.com/cabotage/cabotage/config"
	"github.com/cabotage/cabotage/configuration"
	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/encryption"
	"github.com/cabotage/cabotage/image"
	"github.com/cabotage/cabotage/project"
	"github.com/cabotage/cabotage/release"
	"github.com/cabotage/cabotage/repository"
	"gorm.io/gorm"
)

var (
	// Version is set at build time via -ldflags
	Version = "dev"

	database             *gorm.DB
	appConfig            *config.Config
	projectService       project.ProjectManager
	configurationService configuration.Registry
	imageService         image.Registry
	releaseService       release.Builder
	historyRepository    repository.HistoryRepository
)

// InitializeWithConfig opens the database and builds every service from cfg
func InitializeWithConfig(cfg *config.Config) error {
	appConfig = cfg

	if err := os.MkdirAll(appConfig.DataDir, 0o755); err != nil {
		return err
	}

	var err error
	database, err = db.InitDB(appConfig.DatabasePath)
	if err != nil {
		return err
	}

	if err := db.AutoMigrateAll(database); err != nil {
		return err
	}

	key := appConfig.EncryptionKey
	if key == "" {
		key, err = encryption.LoadOrCreateKey(appConfig.EncryptionKeyPath)
		if err != nil {
			return err
		}
	}
	encryptionSvc, err := encryption.NewEncryptionService(key)
	if err != nil {
		return err
	}

	Wire(database, encryptionSvc)
	return nil
}

// Wire builds the repositories and services on top of an opened database
func Wire(gdb *gorm.DB, encryptionSvc *encryption.EncryptionService) {
	database = gdb

	projectRepo := repository.NewProjectRepository(gdb)
	applicationRepo := repository.NewApplicationRepository(gdb)
	imageRepo := repository.NewImageRepository(gdb)
	configurationRepo := repository.NewConfigurationRepository(gdb, encryptionSvc)
	releaseRepo := repository.NewReleaseRepository(gdb)
	historyRepository = repository.NewHistoryRepository(gdb)

	projectService = project.NewProjectService(projectRepo, applicationRepo)
	configurationService = configuration.NewConfigurationService(configurationRepo, applicationRepo, projectRepo)
	imageService = image.NewImageService(imageRepo, applicationRepo)
	releaseService = release.NewReleaseService(releaseRepo, applicationRepo, imageRepo, configurationRepo)
}

func GetConfig() *config.Config {
	return appConfig
}

func GetProjectService() project.ProjectManager {
	return projectService
}

func GetConfigurationService() configuration.Registry {
	return configurationService
}

func GetImageService() image.Registry {
	return imageService
}

func GetReleaseService() release.Builder {
	return releaseService
}

func GetHistoryRepository() repository.HistoryRepository {
	return historyRepository
}

// SetProjectServiceForTesting allows overriding the project service for testing purposes
func SetProjectServiceForTesting(service project.ProjectManager) {
	projectService = service
}

// SetReleaseServiceForTesting allows overriding the release service for testing purposes
func SetReleaseServiceForTesting(service release.Builder) {
	releaseService = service
}
