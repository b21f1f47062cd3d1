package config

import (
	"fmt"
	"os"
)

// InitConfig creates a sample configuration file at the default location.
// Returns the path where the config was written.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a sample configuration file at the given path.
// Refuses to overwrite an existing file unless force is set.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	return SaveConfig(GetDefaultConfig(), path)
}
