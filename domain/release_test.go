package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExecStatement(t *testing.T) {
	out := ExecStatement(Process{
		Cmd: "serve",
		Env: [][2]string{{"PORT", "8080"}, {"MODE", "a<b&c"}},
	})

	assert.Equal(t, "exec {\n"+
		"  command = \"serve\"\n"+
		"  env = {\n"+
		"    pristine = true\n"+
		"    custom = [\"PORT=8080\", \"MODE=a<b&c\"]\n"+
		"  }\n"+
		"}", out)
}

func TestExecStatement_NoEnv(t *testing.T) {
	out := ExecStatement(Process{Cmd: "worker"})

	assert.Contains(t, out, "    custom = []\n")
}

func TestExecStatement_ArgvCommand(t *testing.T) {
	out := ExecStatement(Process{Cmd: "celery -A app", Argv: []string{"celery", "-A", "app"}})

	assert.Contains(t, out, "  command = [\"celery\", \"-A\", \"app\"]\n")
}

func TestEncodeString_ASCIIOnly(t *testing.T) {
	assert.Equal(t, `"caf\u00e9"`, encodeString("café"))
	assert.Equal(t, `"\ud83d\ude80"`, encodeString("🚀"))
	assert.Equal(t, `"say \"hi\""`, encodeString(`say "hi"`))
}

func TestRelease_AsDict(t *testing.T) {
	appID := uuid.New()
	r := Release{ApplicationID: appID, Platform: PlatformSteam}

	summary := r.AsDict()

	assert.Equal(t, "", summary.ID)
	assert.Equal(t, appID.String(), summary.ApplicationID)
	assert.Equal(t, PlatformSteam, summary.Platform)
	assert.True(t, summary.Image.IsZero())
	assert.Empty(t, summary.ImageMap())
	assert.NotNil(t, summary.Configuration)
}

func TestReleaseSummary_ConfigurationMap(t *testing.T) {
	summary := ReleaseSummary{
		Configuration: map[string]ConfigurationSummary{
			"PORT": {ID: "1", Name: "PORT", VersionID: 2},
		},
	}

	assert.Equal(t, map[string]any{
		"PORT": map[string]any{"id": "1", "name": "PORT", "version_id": float64(2), "secret": false},
	}, summary.ConfigurationMap())
}

func TestRelease_ConfigurationNames(t *testing.T) {
	r := Release{Configuration: map[string]ConfigurationSummary{"b": {}, "A": {}, "a": {}}}
	assert.Equal(t, []string{"A", "a", "b"}, r.ConfigurationNames())
}
