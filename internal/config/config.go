// Package config loads service configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backends supported for the events snapshot.
const (
	StorageJSONFile = "jsonfile"
	StorageSQLite   = "sqlite"
)

// BasicAuth enables HTTP basic authentication when both fields are set. The
// password is stored as an argon2id hash, never in the clear.
type BasicAuth struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// Config captures the runtime settings of the calendar service.
type Config struct {
	Listen            string    `yaml:"listen"`
	EventsPath        string    `yaml:"events_path"`
	Storage           string    `yaml:"storage"`
	SQLiteDSN         string    `yaml:"sqlite_dsn"`
	MetadataCacheSize int       `yaml:"metadata_cache_size"`
	BasicAuth         BasicAuth `yaml:"basic_auth"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		Listen:            ":8080",
		EventsPath:        "events.json",
		Storage:           StorageJSONFile,
		SQLiteDSN:         "file:calendar.db?_pragma=busy_timeout(5000)",
		MetadataCacheSize: 512,
	}
}

// AuthEnabled reports whether basic authentication is configured.
func (c Config) AuthEnabled() bool {
	return c.BasicAuth.Username != "" && c.BasicAuth.PasswordHash != ""
}

// Load reads the YAML file at path when it exists, then applies environment
// overrides. A missing file is not an error; an unreadable or malformed one
// is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// No file: defaults plus environment only.
		case err != nil:
			return Config{}, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	invalid := make([]string, 0, 2)

	if listen := strings.TrimSpace(os.Getenv("CALENDAR_LISTEN")); listen != "" {
		cfg.Listen = listen
	}
	if eventsPath := strings.TrimSpace(os.Getenv("CALENDAR_EVENTS_PATH")); eventsPath != "" {
		cfg.EventsPath = eventsPath
	}
	if storage := strings.TrimSpace(os.Getenv("CALENDAR_STORAGE")); storage != "" {
		cfg.Storage = storage
	}
	if dsn := strings.TrimSpace(os.Getenv("CALENDAR_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	if sizeValue := strings.TrimSpace(os.Getenv("CALENDAR_METADATA_CACHE_SIZE")); sizeValue != "" {
		size, err := strconv.Atoi(sizeValue)
		if err != nil || size < 0 {
			invalid = append(invalid, "CALENDAR_METADATA_CACHE_SIZE")
		} else {
			cfg.MetadataCacheSize = size
		}
	}

	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.Storage != StorageJSONFile && cfg.Storage != StorageSQLite {
		invalid = append(invalid, "storage")
	}
	if cfg.Storage == StorageJSONFile && cfg.EventsPath == "" {
		invalid = append(invalid, "events_path")
	}
	if cfg.Storage == StorageSQLite && cfg.SQLiteDSN == "" {
		invalid = append(invalid, "sqlite_dsn")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
