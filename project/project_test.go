package project

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/repository"
)

func setupTestService(t *testing.T) (*ProjectService, repository.HistoryRepository) {
	database, err := db.InitDatabase(db.DBConfig{Path: ":memory:", LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAll(database))

	service := NewProjectService(
		repository.NewProjectRepository(database),
		repository.NewApplicationRepository(database),
	)
	return service, repository.NewHistoryRepository(database)
}

func TestProjectService_Create(t *testing.T) {
	tests := []struct {
		name         string
		input        CreateProjectInput
		expectedSlug string
		wantErr      error
	}{
		{
			name:         "slug derived from name",
			input:        CreateProjectInput{Name: "My Great Shop"},
			expectedSlug: "my-great-shop",
		},
		{
			name:         "explicit slug is normalized",
			input:        CreateProjectInput{Name: "Shop", Slug: "Custom Slug!"},
			expectedSlug: "custom-slug",
		},
		{
			name:    "empty name",
			input:   CreateProjectInput{Name: "   "},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "name without slug characters",
			input:   CreateProjectInput{Name: "!!!"},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := setupTestService(t)

			project, err := service.Create(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, project)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSlug, project.Slug)
			assert.Equal(t, 1, project.VersionID)
		})
	}
}

func TestProjectService_CreateDuplicateSlug(t *testing.T) {
	service, _ := setupTestService(t)
	orgID := uuid.New()

	_, err := service.Create(CreateProjectInput{OrganizationID: orgID, Name: "Shop"})
	require.NoError(t, err)

	_, err = service.Create(CreateProjectInput{OrganizationID: orgID, Name: "shop"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestProjectService_Rename(t *testing.T) {
	service, history := setupTestService(t)

	project, err := service.Create(CreateProjectInput{Name: "Shop"})
	require.NoError(t, err)

	renamed, err := service.Rename(project.ID, "Store")
	require.NoError(t, err)
	assert.Equal(t, "Store", renamed.Name)
	assert.Equal(t, "shop", renamed.Slug)
	assert.Equal(t, 2, renamed.VersionID)

	entries, err := history.ForEntity(project.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = service.Rename(uuid.New(), "Ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_Applications(t *testing.T) {
	service, _ := setupTestService(t)

	project, err := service.Create(CreateProjectInput{Name: "Shop"})
	require.NoError(t, err)

	web, err := service.CreateApplication(CreateApplicationInput{ProjectID: project.ID, Name: "Web"})
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformWind, web.Platform)
	assert.Equal(t, "web", web.Slug)

	worker, err := service.CreateApplication(CreateApplicationInput{
		ProjectID: project.ID,
		Name:      "Worker",
		Platform:  "steam",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformSteam, worker.Platform)

	_, err = service.CreateApplication(CreateApplicationInput{ProjectID: project.ID, Name: "WEB"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	_, err = service.CreateApplication(CreateApplicationInput{ProjectID: project.ID, Name: "Cron", Platform: "solar"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.CreateApplication(CreateApplicationInput{ProjectID: uuid.New(), Name: "Orphan"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	applications, err := service.ListApplications(project.ID)
	require.NoError(t, err)
	require.Len(t, applications, 2)
	assert.Equal(t, "Web", applications[0].Name)
	assert.Equal(t, "Worker", applications[1].Name)
}

func TestProjectService_SetPlatform(t *testing.T) {
	service, _ := setupTestService(t)

	project, err := service.Create(CreateProjectInput{Name: "Shop"})
	require.NoError(t, err)
	application, err := service.CreateApplication(CreateApplicationInput{ProjectID: project.ID, Name: "Web"})
	require.NoError(t, err)

	updated, err := service.SetPlatform(application.ID, "nuclear")
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformNuclear, updated.Platform)
	assert.Equal(t, 2, updated.VersionID)

	unchanged, err := service.SetPlatform(application.ID, "nuclear")
	require.NoError(t, err)
	assert.Equal(t, 2, unchanged.VersionID)

	_, err = service.SetPlatform(application.ID, "coal")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProjectService_RemoveCascades(t *testing.T) {
	service, history := setupTestService(t)

	project, err := service.Create(CreateProjectInput{Name: "Shop"})
	require.NoError(t, err)
	application, err := service.CreateApplication(CreateApplicationInput{ProjectID: project.ID, Name: "Web"})
	require.NoError(t, err)

	require.NoError(t, service.Remove(project.ID))

	_, err = service.Get(project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = service.GetApplication(application.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entries, err := history.ForEntity(application.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.OperationDelete, entries[1].Operation)

	assert.ErrorIs(t, service.Remove(project.ID), domain.ErrNotFound)
}

func TestProjectService_RemoveApplication(t *testing.T) {
	service, _ := setupTestService(t)

	project, err := service.Create(CreateProjectInput{Name: "Shop"})
	require.NoError(t, err)
	application, err := service.CreateApplication(CreateApplicationInput{ProjectID: project.ID, Name: "Web"})
	require.NoError(t, err)

	require.NoError(t, service.RemoveApplication(application.ID))

	applications, err := service.ListApplications(project.ID)
	require.NoError(t, err)
	assert.Empty(t, applications)
}
