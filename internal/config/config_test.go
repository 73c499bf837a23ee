package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen == "" {
		t.Error("default listen is empty")
	}
	if len(cfg.EventTypes) == 0 {
		t.Error("default event type catalog is empty")
	}

	// The file must exist now with 0600 perms.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file perms = %o, want 600", perm)
	}
}

func TestLoadExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := []byte(`
listen: "0.0.0.0:9999"
api_base_url: "https://api.example.gov/v1"
refresh: "*/5 * * * *"
event_types:
  commission:
    label: "City Commission"
    color: "#2563eb"
  election:
    label: "Election"
    color: "#dc2626"
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != "0.0.0.0:9999" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.RefreshCron != "*/5 * * * *" {
		t.Errorf("refresh = %q", cfg.RefreshCron)
	}
	if len(cfg.EventTypes) != 2 {
		t.Errorf("got %d event types, want 2", len(cfg.EventTypes))
	}
	if info, ok := cfg.EventTypes["election"]; !ok || info.Color != "#dc2626" {
		t.Errorf("election type = %+v", info)
	}
	// Normalize fills the unset log level.
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("listen: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:7070"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Listen != "127.0.0.1:7070" {
		t.Errorf("round-trip listen = %q", loaded.Listen)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("expected error for empty path")
	}
}
