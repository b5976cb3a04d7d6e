// ABOUTME: Tests for vcardz configuration management
// ABOUTME: Verifies XDG paths, defaults, and load/save round trips

package charm

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigPathUsesXDG(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	want := filepath.Join(tmpDir, "vcardz", "charm.json")
	if got := ConfigPath(); got != want {
		t.Errorf("ConfigPath() = %s, want %s", got, want)
	}
	if ConfigDir() != filepath.Dir(ConfigPath()) {
		t.Error("expected ConfigDir to contain ConfigPath")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.AutoSync {
		t.Error("expected AutoSync to default to true")
	}
	if time.Duration(cfg.StaleThreshold) != time.Hour {
		t.Errorf("expected 1h stale threshold, got %v", time.Duration(cfg.StaleThreshold))
	}
	if ConfigExists() {
		t.Error("expected no config file yet")
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{
		CharmHost:      "charm.example.com",
		AutoSync:       false,
		StaleThreshold: Duration(15 * time.Minute),
		DBPath:         "/tmp/cards.db",
	}
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if !ConfigExists() {
		t.Fatal("expected config file to exist")
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := os.MkdirAll(ConfigDir(), 0750); err != nil {
		t.Fatal(err)
	}
	data := []byte(`{"auto_sync": true, "stale_threshold": "soon"}`)
	if err := os.WriteFile(ConfigPath(), data, 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for invalid stale_threshold")
	}
}
