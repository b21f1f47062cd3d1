package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultLogLevel        = "INFO"
	DefaultLogFormat       = "text"
	DefaultLogOutput       = "stdout"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsPort     = 9090
)

// GetDefaultConfig returns a complete configuration populated with defaults.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: DefaultLogOutput,
		},
		ShutdownTimeout: DefaultShutdownTimeout,
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    DefaultMetricsPort,
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero values with defaults.
// Called after unmarshaling a config file so partial files work.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = DefaultLogOutput
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = DefaultMetricsPort
	}

	cfg.Database.ApplyDefaults()
	cfg.Janitor.ApplyDefaults()
}

// GetDefaultConfigPath returns the default configuration file path:
// $XDG_CONFIG_HOME/drover/config.yaml (falling back to ~/.config).
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks whether a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// getConfigDir returns the drover configuration directory.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "drover")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Last resort: current directory
		return "."
	}
	return filepath.Join(home, ".config", "drover")
}
