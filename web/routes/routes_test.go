package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/configuration"
	"github.com/cabotage/cabotage/db"
	"github.com/cabotage/cabotage/domain"
	"github.com/cabotage/cabotage/encryption"
	"github.com/cabotage/cabotage/image"
	"github.com/cabotage/cabotage/project"
	"github.com/cabotage/cabotage/testing/mocks"
)

type fixture struct {
	router      http.Handler
	project     *domain.Project
	application *domain.Application
	image       *domain.Image
	secret      *domain.Configuration
	release     *domain.Release
}

func setupFixture(t *testing.T) *fixture {
	database, err := db.InitDatabase(db.DBConfig{Path: ":memory:", LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAll(database))

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	encryptionSvc, err := encryption.NewEncryptionService(key)
	require.NoError(t, err)

	app.Wire(database, encryptionSvc)

	f := &fixture{router: NewRouter()}

	f.project, err = app.GetProjectService().Create(project.CreateProjectInput{Name: "Shop"})
	require.NoError(t, err)
	f.application, err = app.GetProjectService().CreateApplication(project.CreateApplicationInput{
		ProjectID: f.project.ID,
		Name:      "Web",
	})
	require.NoError(t, err)

	started, err := app.GetImageService().RecordBuildStart(image.BuildStartInput{
		ApplicationID:  f.application.ID,
		RepositoryName: "registry.example.com/shop/web",
		BuildSlug:      "build-1",
	})
	require.NoError(t, err)
	f.image, err = app.GetImageService().RecordBuildSuccess(started.ID, image.BuildSuccessInput{
		ImageID:   "sha256:abc",
		Processes: map[string]domain.Process{"web": {Cmd: "gunicorn app:wsgi"}},
	})
	require.NoError(t, err)

	f.secret, err = app.GetConfigurationService().Create(configuration.CreateInput{
		ApplicationID: f.application.ID,
		Name:          "API_KEY",
		Value:         "hunter2",
		Secret:        true,
	})
	require.NoError(t, err)

	f.release, err = app.GetReleaseService().Create(f.application.ID)
	require.NoError(t, err)
	return f
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthCheckRoute(t *testing.T) {
	f := setupFixture(t)

	w := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, app.Version, body["version"])
}

func TestProjectRoutes(t *testing.T) {
	f := setupFixture(t)

	w := f.get(t, "/projects")
	require.Equal(t, http.StatusOK, w.Code)
	projects := decode[[]map[string]any](t, w)
	require.Len(t, projects, 1)
	assert.Equal(t, "shop", projects[0]["slug"])

	w = f.get(t, "/projects/"+f.project.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Shop", decode[map[string]any](t, w)["name"])

	w = f.get(t, "/projects/"+f.project.ID.String()+"/applications")
	require.Equal(t, http.StatusOK, w.Code)
	applications := decode[[]map[string]any](t, w)
	require.Len(t, applications, 1)
	assert.Equal(t, "wind", applications[0]["platform"])
}

func TestErrorStatuses(t *testing.T) {
	f := setupFixture(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "bad uuid", path: "/projects/not-a-uuid", status: http.StatusBadRequest},
		{name: "unknown project", path: "/projects/" + uuid.NewString(), status: http.StatusNotFound},
		{name: "unknown application", path: "/applications/" + uuid.NewString() + "/candidate", status: http.StatusNotFound},
		{name: "unknown release", path: "/releases/" + uuid.NewString() + "/status", status: http.StatusNotFound},
		{name: "unknown image", path: "/images/" + uuid.NewString(), status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.get(t, tt.path)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
		})
	}
}

func TestApplicationReleaseRoutes(t *testing.T) {
	f := setupFixture(t)
	base := "/applications/" + f.application.ID.String()

	w := f.get(t, base)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "web", decode[map[string]any](t, w)["slug"])

	w = f.get(t, base+"/candidate")
	require.Equal(t, http.StatusOK, w.Code)
	candidate := decode[map[string]any](t, w)
	assert.Equal(t, "", candidate["id"])
	assert.Equal(t, "1", candidate["image"].(map[string]any)["tag"])

	w = f.get(t, base+"/readiness")
	require.Equal(t, http.StatusOK, w.Code)
	readiness := decode[map[string]any](t, w)
	assert.Equal(t, false, readiness["has_changes"])

	w = f.get(t, base+"/releases")
	require.Equal(t, http.StatusOK, w.Code)
	releases := decode[[]map[string]any](t, w)
	require.Len(t, releases, 1)
	assert.Equal(t, float64(1), releases[0]["version"])
}

func TestReleaseRoutes(t *testing.T) {
	f := setupFixture(t)
	base := "/releases/" + f.release.ID.String()

	w := f.get(t, base)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
	rel := decode[map[string]any](t, w)
	assert.Contains(t, rel["configuration"], "API_KEY")

	w = f.get(t, base+"/status")
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[map[string]any](t, w)
	assert.Equal(t, "valid", status["validity"])
	assert.Empty(t, status["deposed_reason"])

	w = f.get(t, base+"/envconsul")
	require.Equal(t, http.StatusOK, w.Code)
	rendered := decode[map[string]string](t, w)
	require.Contains(t, rendered, "web")
	assert.Contains(t, rendered["web"], `path = "shop/web/configuration/api_key"`)
	assert.Contains(t, rendered["web"], "secret {")

	require.NoError(t, app.GetImageService().Delete(f.image.ID))

	w = f.get(t, base+"/status")
	require.Equal(t, http.StatusOK, w.Code)
	status = decode[map[string]any](t, w)
	assert.Equal(t, "deposed", status["validity"])
	assert.Equal(t, []any{"Image(" + f.image.ID.String() + ") no longer exists!"}, status["deposed_reason"])
}

func TestEntityRoutes(t *testing.T) {
	f := setupFixture(t)

	w := f.get(t, "/images/"+f.image.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	img := decode[map[string]any](t, w)
	assert.Equal(t, "built", img["status"])
	assert.Equal(t, "registry.example.com/shop/web", img["repository"])

	w = f.get(t, "/configurations/"+f.secret.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
	cfg := decode[map[string]any](t, w)
	assert.Equal(t, true, cfg["secret"])
	assert.Equal(t, "vault:shop/web/configuration/api_key", cfg["key_slug"])

	w = f.get(t, "/history/"+f.image.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]map[string]any](t, w)
	require.Len(t, history, 2)
	assert.Equal(t, "insert", history[0]["operation"])
	assert.Nil(t, history[0]["before"])
	assert.Equal(t, "update", history[1]["operation"])
}

func TestInternalErrorsAreHidden(t *testing.T) {
	f := setupFixture(t)
	app.SetProjectServiceForTesting(&mocks.MockProjectManager{
		ListFunc: func() ([]*domain.Project, error) {
			return nil, errors.New("database is locked")
		},
	})

	w := f.get(t, "/projects")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decode[map[string]string](t, w)["error"])
	assert.NotContains(t, w.Body.String(), "locked")
}
