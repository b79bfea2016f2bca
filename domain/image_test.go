package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestImage_AsDict(t *testing.T) {
	img := NewImage(uuid.New(), "registry/app", "builds/1.tar.gz")
	img.Version = 7
	img.Processes = map[string]Process{"web": {Cmd: "serve", Env: [][2]string{{"PORT", "8080"}}}}

	summary := img.AsDict()

	assert.Equal(t, img.ID.String(), summary.ID)
	assert.Equal(t, "registry/app", summary.Repository)
	assert.Equal(t, "7", summary.Tag)
	assert.Equal(t, img.Processes, summary.Processes)
}

func TestImageSummary_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(ImageSummary{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	data, err = json.Marshal(ImageSummary{ID: "abc", Repository: "r", Tag: "1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc","repository":"r","tag":"1","processes":null}`, string(data))

	var decoded ImageSummary
	require.NoError(t, json.Unmarshal([]byte(`{}`), &decoded))
	assert.True(t, decoded.IsZero())
}

func TestImage_Status(t *testing.T) {
	img := Image{}
	assert.Equal(t, "building", img.Status())
	img.Built = true
	assert.Equal(t, "built", img.Status())
	img.Error = true
	assert.Equal(t, "error", img.Status())
	img.Deleted = true
	assert.Equal(t, "deleted", img.Status())
}

func TestParseProcfile(t *testing.T) {
	processes, err := ParseProcfile(`
# comment
web: PORT=8000 WORKERS=2 gunicorn app:wsgi
worker: celery -A app worker

release: ./manage.py migrate
`)
	require.NoError(t, err)

	assert.Equal(t, map[string]Process{
		"web": {
			Cmd: "gunicorn app:wsgi",
			Env: [][2]string{{"PORT", "8000"}, {"WORKERS", "2"}},
		},
		"worker":  {Cmd: "celery -A app worker", Env: [][2]string{}},
		"release": {Cmd: "./manage.py migrate", Env: [][2]string{}},
	}, processes)
}

func TestParseProcfile_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "missing separator", text: "web gunicorn"},
		{name: "duplicate process", text: "web: a\nweb: b"},
		{name: "empty command", text: "web:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProcfile(tt.text)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTruncateDetail(t *testing.T) {
	long := make([]rune, MaxErrorDetailLength+10)
	for i := range long {
		long[i] = 'é'
	}
	assert.Len(t, []rune(TruncateDetail(string(long))), MaxErrorDetailLength)
	assert.Equal(t, "short", TruncateDetail("short"))
}

func TestProcess_JSONCommandForms(t *testing.T) {
	var processes map[string]Process
	require.NoError(t, json.Unmarshal([]byte(`{
		"web": {"cmd": "gunicorn app:wsgi", "env": [["PORT", "8080"]]},
		"worker": {"cmd": ["celery", "-A", "app worker"], "env": []}
	}`), &processes))

	web := processes["web"]
	assert.Equal(t, "gunicorn app:wsgi", web.Cmd)
	assert.Nil(t, web.Argv)
	assert.Equal(t, [][2]string{{"PORT", "8080"}}, web.Env)

	worker := processes["worker"]
	assert.Equal(t, []string{"celery", "-A", "app worker"}, worker.Argv)
	assert.Equal(t, "celery -A app worker", worker.Cmd)

	data, err := json.Marshal(worker)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cmd": ["celery", "-A", "app worker"], "env": []}`, string(data))

	data, err = json.Marshal(web)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cmd": "gunicorn app:wsgi", "env": [["PORT", "8080"]]}`, string(data))

	var invalid Process
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"cmd": 42}`), &invalid), ErrValidation)
}

func TestProcess_YAMLCommandForms(t *testing.T) {
	var processes map[string]Process
	require.NoError(t, yaml.Unmarshal([]byte(`
web:
  cmd: gunicorn app:wsgi
  env:
    - [PORT, "8080"]
worker:
  cmd: [celery, -A, app]
`), &processes))

	assert.Equal(t, "gunicorn app:wsgi", processes["web"].Cmd)
	assert.Nil(t, processes["web"].Argv)
	assert.Equal(t, [][2]string{{"PORT", "8080"}}, processes["web"].Env)
	assert.Equal(t, []string{"celery", "-A", "app"}, processes["worker"].Argv)

	var invalid Process
	assert.ErrorIs(t, yaml.Unmarshal([]byte("cmd: {a: b}\n"), &invalid), ErrValidation)
}
