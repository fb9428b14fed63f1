package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CALENDAR_LISTEN",
		"CALENDAR_EVENTS_PATH",
		"CALENDAR_STORAGE",
		"CALENDAR_SQLITE_DSN",
		"CALENDAR_METADATA_CACHE_SIZE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {

	t.Run("applies defaults when no file exists", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.Listen != ":8080" {
			t.Fatalf("unexpected default listen address %q", cfg.Listen)
		}
		if cfg.EventsPath != "events.json" {
			t.Fatalf("unexpected default events path %q", cfg.EventsPath)
		}
		if cfg.Storage != StorageJSONFile {
			t.Fatalf("unexpected default storage %q", cfg.Storage)
		}
		if cfg.AuthEnabled() {
			t.Fatal("expected auth disabled by default")
		}
	})

	t.Run("reads the YAML file", func(t *testing.T) {
		clearEnv(t)

		path := filepath.Join(t.TempDir(), "calendar.yaml")
		body := `listen: ":9090"
storage: sqlite
sqlite_dsn: "file:test.db"
metadata_cache_size: 64
basic_auth:
    username: alice
    password_hash: "$argon2id$fake"
`
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Listen != ":9090" || cfg.Storage != StorageSQLite || cfg.SQLiteDSN != "file:test.db" {
			t.Fatalf("unexpected config %+v", cfg)
		}
		if cfg.MetadataCacheSize != 64 {
			t.Fatalf("unexpected cache size %d", cfg.MetadataCacheSize)
		}
		if !cfg.AuthEnabled() || cfg.BasicAuth.Username != "alice" {
			t.Fatalf("expected basic auth enabled, got %+v", cfg.BasicAuth)
		}
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		clearEnv(t)

		path := filepath.Join(t.TempDir(), "calendar.yaml")
		if err := os.WriteFile(path, []byte("listen: \":9090\"\n"), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}

		t.Setenv("CALENDAR_LISTEN", ":7070")
		t.Setenv("CALENDAR_EVENTS_PATH", "/var/lib/calendar/events.json")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Listen != ":7070" {
			t.Fatalf("expected the environment to win, got %q", cfg.Listen)
		}
		if cfg.EventsPath != "/var/lib/calendar/events.json" {
			t.Fatalf("unexpected events path %q", cfg.EventsPath)
		}
	})

	t.Run("rejects unknown storage backends", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CALENDAR_STORAGE", "postgres")

		if _, err := Load(""); err == nil {
			t.Fatal("expected an error for an unknown storage backend")
		}
	})

	t.Run("rejects malformed cache sizes", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CALENDAR_METADATA_CACHE_SIZE", "lots")

		if _, err := Load(""); err == nil {
			t.Fatal("expected an error for a malformed cache size")
		}
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		clearEnv(t)

		path := filepath.Join(t.TempDir(), "calendar.yaml")
		if err := os.WriteFile(path, []byte("listen: [broken"), 0o600); err != nil {
			t.Fatalf("write fixture: %v", err)
		}

		if _, err := Load(path); err == nil {
			t.Fatal("expected an error for malformed YAML")
		}
	})
}
