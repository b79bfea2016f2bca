package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cabotage/cabotage/config"
	"github.com/cabotage/cabotage/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeWithConfig(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	cfg := &config.Config{
		DataDir:           dataDir,
		DatabasePath:      filepath.Join(dataDir, config.DatabaseFile),
		EncryptionKeyPath: filepath.Join(dataDir, config.EncryptionKeyFile),
		LogLevel:          "silent",
	}

	require.NoError(t, InitializeWithConfig(cfg))

	assert.FileExists(t, cfg.DatabasePath)
	assert.FileExists(t, cfg.EncryptionKeyPath)
	assert.Same(t, cfg, GetConfig())

	p, err := GetProjectService().Create(project.CreateProjectInput{Name: "Shop"})
	require.NoError(t, err)
	assert.Equal(t, "shop", p.Slug)

	history, err := GetHistoryRepository().ForEntity(p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	assert.NotNil(t, GetConfigurationService())
	assert.NotNil(t, GetImageService())
	assert.NotNil(t, GetReleaseService())
}

func TestInitializeWithConfig_InvalidKey(t *testing.T) {
	dataDir := t.TempDir()
	cfg := &config.Config{
		DataDir:       dataDir,
		DatabasePath:  filepath.Join(dataDir, config.DatabaseFile),
		EncryptionKey: "not-a-key",
	}

	assert.Error(t, InitializeWithConfig(cfg))

	_, err := os.Stat(filepath.Join(dataDir, config.EncryptionKeyFile))
	assert.True(t, os.IsNotExist(err))
}
