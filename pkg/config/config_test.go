package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: "INFO"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics enabled by default")
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Expected default database type sqlite, got %q", cfg.Database.Type)
	}
	if cfg.Janitor.Interval != time.Hour {
		t.Errorf("Expected default janitor interval 1h, got %v", cfg.Janitor.Interval)
	}
}

func TestLoad_ParsesDurations(t *testing.T) {
	configPath := writeConfig(t, `
shutdown_timeout: 45s
janitor:
  interval: 10m
  retention: 168h
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ShutdownTimeout != 45*time.Second {
		t.Errorf("Expected shutdown_timeout 45s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Janitor.Interval != 10*time.Minute {
		t.Errorf("Expected janitor interval 10m, got %v", cfg.Janitor.Interval)
	}
	if cfg.Janitor.Retention != 168*time.Hour {
		t.Errorf("Expected janitor retention 168h, got %v", cfg.Janitor.Retention)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error: %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level INFO, got %q", cfg.Logging.Level)
	}
}

func TestLoad_InvalidLevelRejected(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: "VERBOSE"
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
}

func TestLoad_DisabledFlagsSurvive(t *testing.T) {
	configPath := writeConfig(t, `
api:
  enabled: false
janitor:
  enabled: false
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.API.IsEnabled() {
		t.Error("Expected API disabled")
	}
	if cfg.Janitor.IsEnabled() {
		t.Error("Expected janitor disabled")
	}
}

func TestValidate_PortConflict(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.API.Port = 9090
	cfg.Metrics.Port = 9090

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected port conflict error")
	}
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.PIDFile = "/run/drover.pid"
	cfg.ShutdownTimeout = 15 * time.Second

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Saved config missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if loaded.PIDFile != "/run/drover.pid" {
		t.Errorf("Expected pid_file to round-trip, got %q", loaded.PIDFile)
	}
	if loaded.ShutdownTimeout != 15*time.Second {
		t.Errorf("Expected shutdown_timeout 15s, got %v", loaded.ShutdownTimeout)
	}
}

func TestInitConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := InitConfigToPath(path, false); err != nil {
		t.Fatalf("First init failed: %v", err)
	}
	if err := InitConfigToPath(path, false); err == nil {
		t.Fatal("Expected error overwriting existing config without force")
	}
	if err := InitConfigToPath(path, true); err != nil {
		t.Fatalf("Force overwrite failed: %v", err)
	}
}
