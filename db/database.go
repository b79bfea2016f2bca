// Package db provides functions to initialize and manage the SQLite database for Cabotage.
package db

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the database at dbPath using a GORM log level matching the slog level
func InitDB(dbPath string) (*gorm.DB, error) {
	slog.Debug("Initializing database", "path", dbPath)

	db, err := InitDatabase(DBConfig{
		Path:     dbPath,
		LogLevel: getGormLogLevel(),
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Database initialized successfully", "path", dbPath)
	return db, nil
}

// getGormLogLevel maps application log level to corresponding GORM log level
func getGormLogLevel() logger.LogLevel {
	l := slog.Default()

	switch {
	case l.Enabled(context.TODO(), slog.LevelDebug):
		return logger.Info // SQL queries only at debug
	case l.Enabled(context.TODO(), slog.LevelWarn):
		return logger.Warn
	case l.Enabled(context.TODO(), slog.LevelError):
		return logger.Error
	default:
		return logger.Silent
	}
}
