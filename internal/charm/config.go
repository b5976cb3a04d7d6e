// ABOUTME: Configuration for the local store and the Charm KV backend
// ABOUTME: Handles charm server settings and XDG config paths

package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds vcardz configuration.
type Config struct {
	// CharmHost is the charm server URL (default: charm.2389.dev)
	CharmHost string `json:"charm_host,omitempty"`

	// AutoSync mirrors local deletes to the charm server while linked (default: true)
	AutoSync bool `json:"auto_sync"`

	// StaleThreshold makes reads sync first when the last sync is older.
	StaleThreshold Duration `json:"stale_threshold,omitempty"`

	// DBPath overrides the local SQLite database location.
	DBPath string `json:"db_path,omitempty"`

	// Linked is set once this device has been linked to a charm account.
	Linked bool `json:"linked,omitempty"`

	// LastSync records when the KV replica last pulled from the server.
	LastSync *time.Time `json:"last_sync,omitempty"`
}

// Duration is a time.Duration stored as a string such as "30m".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("stale_threshold: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("stale_threshold: %w", err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CharmHost:      "charm.2389.dev",
		AutoSync:       true,
		StaleThreshold: Duration(time.Hour),
	}
}

// ConfigDir returns the configuration directory path.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "vcardz")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "charm.json")
}

// LoadConfig loads configuration from disk, returns defaults if not found.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigPath(), err)
	}

	return cfg, nil
}

// SaveConfig writes configuration to disk.
func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigPath(), data, 0600)
}

// ConfigExists returns true if a config file exists.
func ConfigExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
