package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")

	c, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/xdg/cabotage", c.DataDir)
	assert.Equal(t, "/tmp/xdg/cabotage/cabotage.db", c.DatabasePath)
	assert.Equal(t, "/tmp/xdg/cabotage/encryption.key", c.EncryptionKeyPath)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.True(t, c.ColorEnabled)
	assert.Equal(t, "127.0.0.1:8080", c.HTTPAddress())
	assert.Empty(t, c.EncryptionKey)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CABOTAGE_DATA_DIR", "/srv/cabotage")
	t.Setenv("CABOTAGE_LOG_LEVEL", "debug")
	t.Setenv("CABOTAGE_LOG_FORMAT", "json")
	t.Setenv("CABOTAGE_HTTP_PORT", "9000")
	t.Setenv("CABOTAGE_COLOR_ENABLED", "false")
	t.Setenv("CABOTAGE_ENCRYPTION_KEY", "key-from-env")

	c, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "/srv/cabotage", c.DataDir)
	assert.Equal(t, "/srv/cabotage/cabotage.db", c.DatabasePath)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, 9000, c.HTTPPort)
	assert.False(t, c.ColorEnabled)
	assert.Equal(t, "key-from-env", c.EncryptionKey)
}

func TestLoad_ConfigFileThenEnvThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cabotage.yaml")
	content := "data_dir: /from/file\nlog_level: warning\nhttp_port: 7000\ndatabase_path: /from/file/custom.db\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CABOTAGE_HTTP_PORT", "7001")

	c, err := Load(Options{ConfigFile: path, DataDir: "/from/flag"})
	require.NoError(t, err)

	assert.Equal(t, "/from/flag", c.DataDir)
	assert.Equal(t, "/from/file/custom.db", c.DatabasePath)
	assert.Equal(t, "/from/flag/encryption.key", c.EncryptionKeyPath)
	assert.Equal(t, "warning", c.LogLevel)
	assert.Equal(t, 7001, c.HTTPPort)
}

func TestLoad_MissingConfigFileUsesDefaults(t *testing.T) {
	c, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "absent.yaml"), DataDir: "/data"})
	require.NoError(t, err)
	assert.Equal(t, "/data", c.DataDir)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "log level", env: map[string]string{"CABOTAGE_LOG_LEVEL": "loud"}},
		{name: "log format", env: map[string]string{"CABOTAGE_LOG_FORMAT": "xml"}},
		{name: "port", env: map[string]string{"CABOTAGE_HTTP_PORT": "70000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			c, err := Load(Options{DataDir: "/data"})
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}
