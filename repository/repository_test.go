package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/diff"
	"github.com/cabotage/cabotage/domain"
)

func TestProjectRepository_CreateAndFind(t *testing.T) {
	repos := setupTestRepositories(t)
	orgID := uuid.New()

	project := domain.NewProject(orgID, "My Shop", "")
	require.NoError(t, repos.projects.Create(&project))
	assert.Equal(t, 1, project.VersionID)
	assert.False(t, project.CreatedAt.IsZero())

	found, err := repos.projects.FindByID(project.ID)
	require.NoError(t, err)
	assert.Equal(t, "my-shop", found.Slug)
	assert.Equal(t, orgID, found.OrganizationID)

	found, err = repos.projects.FindBySlug(orgID, "my-shop")
	require.NoError(t, err)
	assert.Equal(t, project.ID, found.ID)

	_, err = repos.projects.FindByID(uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRepository_SlugUniquePerOrganization(t *testing.T) {
	repos := setupTestRepositories(t)
	orgID := uuid.New()

	first := domain.NewProject(orgID, "Shop", "")
	require.NoError(t, repos.projects.Create(&first))

	second := domain.NewProject(orgID, "SHOP", "")
	err := repos.projects.Create(&second)
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	other := domain.NewProject(uuid.New(), "Shop", "")
	assert.NoError(t, repos.projects.Create(&other))
}

func TestProjectRepository_UpdateStaleStamp(t *testing.T) {
	repos := setupTestRepositories(t)

	project := domain.NewProject(uuid.Nil, "Shop", "")
	require.NoError(t, repos.projects.Create(&project))

	stale := project
	project.Name = "Store"
	require.NoError(t, repos.projects.Update(&project))
	assert.Equal(t, 2, project.VersionID)

	stale.Name = "Boutique"
	err := repos.projects.Update(&stale)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestProjectRepository_DeleteCascadesWithHistory(t *testing.T) {
	repos := setupTestRepositories(t)
	application := repos.createApplication(t)

	image := domain.NewImage(application.ID, "shop/web", "builds/1.tar.gz")
	require.NoError(t, repos.images.Create(&image))
	configuration := domain.NewConfiguration(application.ID, "PORT", "8080", false)
	configuration.KeySlug = "consul:shop/web/configuration/port"
	require.NoError(t, repos.configurations.Create(&configuration))

	require.NoError(t, repos.projects.Delete(application.ProjectID))

	_, err := repos.applications.FindByID(application.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int64
	require.NoError(t, repos.db.Model(&db.ImageModel{}).Count(&count).Error)
	assert.Zero(t, count)

	for _, id := range []uuid.UUID{application.ProjectID, application.ID, image.ID, configuration.ID} {
		history, err := repos.history.ForEntity(id)
		require.NoError(t, err)
		require.NotEmpty(t, history)
		assert.Equal(t, domain.OperationDelete, history[len(history)-1].Operation, id.String())
	}
}

func TestProjectRepository_DeleteMissing(t *testing.T) {
	repos := setupTestRepositories(t)
	assert.ErrorIs(t, repos.projects.Delete(uuid.New()), domain.ErrNotFound)
}

func TestApplicationRepository_SlugUniqueWithinProject(t *testing.T) {
	repos := setupTestRepositories(t)
	application := repos.createApplication(t)

	duplicate := domain.NewApplication(application.ProjectID, "web", "", domain.PlatformSteam)
	assert.ErrorIs(t, repos.applications.Create(&duplicate), domain.ErrDuplicateName)

	worker := domain.NewApplication(application.ProjectID, "Worker", "", domain.PlatformSteam)
	require.NoError(t, repos.applications.Create(&worker))

	applications, err := repos.applications.ListByProject(application.ProjectID)
	require.NoError(t, err)
	require.Len(t, applications, 2)
	assert.Equal(t, "Web", applications[0].Name)
	assert.Equal(t, domain.PlatformSteam, applications[1].Platform)
}

func TestApplicationRepository_MissingProject(t *testing.T) {
	repos := setupTestRepositories(t)

	application := domain.NewApplication(uuid.New(), "Web", "", "")
	assert.ErrorIs(t, repos.applications.Create(&application), domain.ErrNotFound)
}

func TestImageRepository_VersionsAreSequential(t *testing.T) {
	repos := setupTestRepositories(t)

	rapid.Check(t, func(t *rapid.T) {
		application := repos.createApplication(t)
		n := rapid.IntRange(1, 12).Draw(t, "images")

		for i := 1; i <= n; i++ {
			image := domain.NewImage(application.ID, "shop/web", "builds/x.tar.gz")
			require.NoError(t, repos.images.Create(&image))
			assert.Equal(t, i, image.Version)
		}

		images, err := repos.images.ListByApplication(application.ID)
		require.NoError(t, err)
		require.Len(t, images, n)
		for i, image := range images {
			assert.Equal(t, n-i, image.Version)
		}
	})
}

func TestImageRepository_VersionNotReusedAfterDelete(t *testing.T) {
	repos := setupTestRepositories(t)
	application := repos.createApplication(t)

	first := domain.NewImage(application.ID, "shop/web", "builds/1.tar.gz")
	require.NoError(t, repos.images.Create(&first))

	first.Deleted = true
	require.NoError(t, repos.images.Update(&first))

	_, err := repos.images.FindByID(first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	second := domain.NewImage(application.ID, "shop/web", "builds/2.tar.gz")
	require.NoError(t, repos.images.Create(&second))
	assert.Equal(t, 2, second.Version)
}

func TestImageRepository_Latest(t *testing.T) {
	repos := setupTestRepositories(t)
	application := repos.createApplication(t)

	latest, err := repos.images.Latest(application.ID, BuildStateBuilt)
	require.NoError(t, err)
	assert.Nil(t, latest)

	create := func(built, failed bool) *domain.Image {
		image := domain.NewImage(application.ID, "shop/web", "builds/x.tar.gz")
		require.NoError(t, repos.images.Create(&image))
		image.Built = built
		image.Error = failed
		require.NoError(t, repos.images.Update(&image))
		return &image
	}

	built := create(true, false)
	failed := create(false, true)
	building := create(false, false)
	deletedBuilt := create(true, false)
	deletedBuilt.Deleted = true
	require.NoError(t, repos.images.Update(deletedBuilt))

	tests := []struct {
		state    BuildState
		expected *domain.Image
	}{
		{state: BuildStateBuilt, expected: built},
		{state: BuildStateError, expected: failed},
		{state: BuildStateBuilding, expected: building},
		{state: BuildStateAny, expected: building},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			latest, err := repos.images.Latest(application.ID, tt.state)
			require.NoError(t, err)
			require.NotNil(t, latest)
			assert.Equal(t, tt.expected.ID, latest.ID)
		})
	}
}

func TestImageRepository_ProcessesRoundTrip(t *testing.T) {
	repos := setupTestRepositories(t)
	application := repos.createApplication(t)

	image := domain.NewImage(application.ID, "shop/web", "builds/1.tar.gz")
	image.Processes = map[string]domain.Process{
		"web": {Cmd: "serve", Env: [][2]string{{"PORT", "8080"}}},
	}
	image.Metadata = map[string]any{"sha": "abc123"}
	require.NoError(t, repos.images.Create(&image))

	found, err := repos.images.FindByID(image.ID)
	require.NoError(t, err)
	assert.Equal(t, image.Processes, found.Processes)
	assert.Equal(t, "abc123", found.Metadata["sha"])
}

func TestConfigurationRepository_SecretEncryptedAtRest(t *testing.T) {
	repos := setupTestRepositories(t)
	application := repos.createApplication(t)

	configuration := domain.NewConfiguration(application.ID, "DATABASE_PASSWORD", "hunter2", true)
	configuration.KeySlug = "vault:shop/web/configuration/database_password"
	require.NoError(t, repos.configurations.Create(&configuration))
	assert.Equal(t, "hunter2", configuration.Value)

	var stored db.ConfigurationModel
	require.NoError(t, repos.db.Where("id = ?", configuration.ID).Take(&stored).Error)
	assert.NotEqual(t, "hunter2", stored.Value)
	assert.NotEmpty(t, stored.Value)

	found, err := repos.configurations.FindByID(configuration.ID)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", found.Value)

	history, err := repos.history.ForEntity(configuration.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.NotContains(t, string(history[0].After), "hunter2")
}

func TestConfigurationRepository_NameUniqueIgnoringCase(t *testing.T) {
	repos := setupTestRepositories(t)
	application := repos.createApplication(t)

	port := domain.NewConfiguration(application.ID, "PORT", "8080", false)
	port.KeySlug = "consul:shop/web/configuration/port"
	require.NoError(t, repos.configurations.Create(&port))

	clash := domain.NewConfiguration(application.ID, "port", "9090", false)
	clash.KeySlug = "consul:shop/web/configuration/port"
	assert.ErrorIs(t, repos.configurations.Create(&clash), domain.ErrDuplicateName)

	port.Deleted = true
	require.NoError(t, repos.configurations.Update(&port))
	assert.NoError(t, repos.configurations.Create(&clash))

	live, err := repos.configurations.ListByApplication(application.ID)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "9090", live[0].Value)
}

func TestReleaseRepository_CreateAndRoundTrip(t *testing.T) {
	repos := setupTestRepositories(t)
	application := repos.createApplication(t)

	release := &domain.Release{
		ID:            uuid.New(),
		ApplicationID: application.ID,
		Platform:      domain.PlatformWind,
		Image: domain.ImageSummary{
			ID:         uuid.NewString(),
			Repository: "shop/web",
			Tag:        "1",
			Processes:  map[string]domain.Process{"web": {Cmd: "serve", Env: [][2]string{}}},
		},
		Configuration: map[string]domain.ConfigurationSummary{
			"PORT": {ID: uuid.NewString(), Name: "PORT", VersionID: 1},
		},
		ConfigurationChanges: diff.Result{Added: []string{"PORT"}},
	}
	require.NoError(t, repos.releases.Create(release))
	assert.Equal(t, 1, release.Version)

	found, err := repos.releases.FindByID(release.ID)
	require.NoError(t, err)
	assert.Equal(t, release.Image, found.Image)
	assert.Equal(t, release.Configuration, found.Configuration)
	assert.Equal(t, []string{"PORT"}, found.ConfigurationChanges.Added)
	assert.Empty(t, found.ImageChanges.Added)

	next := &domain.Release{ID: uuid.New(), ApplicationID: application.ID, Platform: domain.PlatformWind}
	require.NoError(t, repos.releases.Create(next))
	assert.Equal(t, 2, next.Version)
	assert.True(t, next.Image.IsZero())

	latest, err := repos.releases.Latest(application.ID, BuildStateAny)
	require.NoError(t, err)
	assert.Equal(t, next.ID, latest.ID)
}
