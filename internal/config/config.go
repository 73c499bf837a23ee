package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"civiccal/internal/model"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the admin API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the admin API.
	Listen string `yaml:"listen" json:"listen"`

	// APIBaseURL is the base URL of the upstream municipal calendar API,
	// e.g. "https://api.example.gov/v1".
	APIBaseURL string `yaml:"api_base_url" json:"api_base_url"`

	// Timezone is the IANA timezone used for calendar math (e.g.
	// "America/Chicago"). Empty or invalid values fall back to time.Local.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// background refresh of the visible period. Empty disables it.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel is the minimum log level ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level" json:"log_level"`

	// EventTypes is the closed catalog of event type tags with their
	// display label and color. Loaded once; read-only during a session.
	EventTypes model.TypeCatalog `yaml:"event_types" json:"event_types"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		APIBaseURL:  "http://127.0.0.1:9000/api",
		Timezone:    "",
		RefreshCron: "*/15 * * * *",
		LogLevel:    "info",
		EventTypes:  defaultEventTypes(),
		BasicAuth:   nil,
	}
}

func defaultEventTypes() model.TypeCatalog {
	return model.TypeCatalog{
		"commission":   {Label: "City Commission", Color: "#2563eb"},
		"county":       {Label: "County", Color: "#16a34a"},
		"school-board": {Label: "School Board", Color: "#d97706"},
		"election":     {Label: "Election", Color: "#dc2626"},
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = "http://127.0.0.1:9000/api"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.EventTypes) == 0 {
		c.EventTypes = defaultEventTypes()
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, create the parent directory if needed,
//     write a default config with 0600 perms, and return the defaults.
//   - If the file exists, read YAML, unmarshal and normalize.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".civiccal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
