// Package config loads Cabotage configuration from defaults, an optional config file,
// CABOTAGE_* environment variables and command line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	DatabaseFile      = "cabotage.db"
	EncryptionKeyFile = "encryption.key"
	EnvPrefix         = "CABOTAGE"
)

// Config holds configuration for all services
type Config struct {
	// Core paths
	DataDir           string `mapstructure:"data_dir"`
	DatabasePath      string `mapstructure:"database_path"`
	EncryptionKeyPath string `mapstructure:"encryption_key_path"`

	// Logging
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	ColorEnabled bool   `mapstructure:"color_enabled"`

	// HTTP server
	HTTPHost string `mapstructure:"http_host"`
	HTTPPort int    `mapstructure:"http_port"`

	// Encryption of secret configuration values. When empty the key is read from,
	// or generated into, EncryptionKeyPath.
	EncryptionKey string `mapstructure:"encryption_key"`
}

// Options are the command line overrides applied on top of file and environment values
type Options struct {
	ConfigFile string
	DataDir    string
}

// GetDefaultDataDir returns the default data directory following the XDG Base Directory specification
func GetDefaultDataDir() string {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "cabotage")
	}

	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "cabotage")
}

// Load builds the configuration: defaults, then the config file, then environment, then opts
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if opts.DataDir != "" {
		c.DataDir = opts.DataDir
	}

	c.derivePaths()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", GetDefaultDataDir())
	v.SetDefault("database_path", "")
	v.SetDefault("encryption_key_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("color_enabled", true)
	v.SetDefault("http_host", "127.0.0.1")
	v.SetDefault("http_port", 8080)
	// No default key: one is generated on first use
	v.SetDefault("encryption_key", "")
}

// derivePaths calculates dependent paths from the base DataDir
func (c *Config) derivePaths() {
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, DatabaseFile)
	}
	if c.EncryptionKeyPath == "" {
		c.EncryptionKeyPath = filepath.Join(c.DataDir, EncryptionKeyFile)
	}
}

// validate ensures configuration values are valid
func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	validLogLevels := []string{"debug", "info", "warning", "error", "silent"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.LogFormat)
	}

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d (must be 1-65535)", c.HTTPPort)
	}

	return nil
}

// HTTPAddress returns the server address in host:port format
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}
