package db

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestGetGormLogLevel(t *testing.T) {
	tests := []struct {
		name           string
		logLevel       slog.Level
		expectedResult logger.LogLevel
	}{
		{
			name:           "debug level returns info",
			logLevel:       slog.LevelDebug,
			expectedResult: logger.Info,
		},
		{
			name:           "info level returns warn",
			logLevel:       slog.LevelInfo,
			expectedResult: logger.Warn,
		},
		{
			name:           "warn level returns warn",
			logLevel:       slog.LevelWarn,
			expectedResult: logger.Warn,
		},
		{
			name:           "error level returns error",
			logLevel:       slog.LevelError,
			expectedResult: logger.Error,
		},
		{
			name:           "silent level returns silent",
			logLevel:       slog.Level(1000),
			expectedResult: logger.Silent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: tt.logLevel,
			})
			originalLogger := slog.Default()
			slog.SetDefault(slog.New(handler))
			defer slog.SetDefault(originalLogger)

			assert.Equal(t, tt.expectedResult, getGormLogLevel())
		})
	}
}

func TestInitDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cabotage.db")

	db, err := InitDB(dbPath)
	require.NoError(t, err)
	require.NotNil(t, db)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	var foreignKeys int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&foreignKeys).Error)
	assert.Equal(t, 1, foreignKeys)
}

func TestInitDB_InvalidDirectory(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o600))

	db, err := InitDB(filepath.Join(parent, "cabotage.db"))
	assert.Error(t, err)
	assert.Nil(t, db)
}
