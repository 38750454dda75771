package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvStorageRoot   = "CTXWIN_STORAGE_ROOT"
	EnvSourceURL     = "CTXWIN_SOURCE_URL"
	EnvCheckInterval = "CTXWIN_CHECK_INTERVAL"
)

// Config holds the resolved settings.
//
// Source priority (highest to lowest):
//  1. Process environment (CTXWIN_*)
//  2. .env file (same keys)
//  3. YAML config file (--config, or <user config dir>/ctxwin/config.yaml)
//  4. Defaults
type Config struct {
	// StorageRoot is the directory holding models/context-windows/.
	StorageRoot string `yaml:"storage_root"`

	// SourceURL is the catalog the refresher fetches. Empty = models.dev.
	SourceURL string `yaml:"source_url"`

	// CheckInterval is how often `watch` re-checks staleness.
	CheckInterval time.Duration `yaml:"check_interval"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		StorageRoot:   defaultStorageRoot(),
		CheckInterval: time.Hour,
	}
}

func defaultStorageRoot() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ctxwin")
}

// DefaultConfigPath returns <user config dir>/ctxwin/config.yaml, or "" if the
// user config dir cannot be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ctxwin", "config.yaml")
}

// LoadConfig resolves configuration from configPath (empty = default path)
// and envFile (empty = none). Missing files are not errors; unparseable ones are.
func LoadConfig(configPath, envFile string) (Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("invalid config file %s: %w", configPath, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("invalid env file %s: %w", envFile, err)
		}
		if err := applyEnv(&cfg, func(key string) string { return vars[key] }); err != nil {
			return Config{}, fmt.Errorf("env file %s: %w", envFile, err)
		}
	}

	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}

	if cfg.StorageRoot == "" {
		cfg.StorageRoot = defaultStorageRoot()
	}
	if abs, err := filepath.Abs(cfg.StorageRoot); err == nil {
		cfg.StorageRoot = abs
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Hour
	}
	return cfg, nil
}

// applyEnv applies CTXWIN_* overrides read through lookup.
func applyEnv(cfg *Config, lookup func(string) string) error {
	if v := lookup(EnvStorageRoot); v != "" {
		cfg.StorageRoot = v
	}
	if v := lookup(EnvSourceURL); v != "" {
		cfg.SourceURL = v
	}
	if v := lookup(EnvCheckInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCheckInterval, err)
		}
		cfg.CheckInterval = d
	}
	return nil
}
