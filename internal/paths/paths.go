// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
)

// CWD-relative directory names used when nothing else is configured.
const (
	DefaultConfigDirName = ".cardsets"
	DefaultDataDirName   = ".cardsets-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CARDSETS_CONFIG_DIR"
	EnvDataDir   = "CARDSETS_DATA_DIR"
)

// getwd can be overridden in tests.
var getwd = os.Getwd

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > CARDSETS_CONFIG_DIR env > $(CWD)/.cardsets.
// The result is always absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return cwdDefault(DefaultConfigDirName)
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > CARDSETS_DATA_DIR env > $(CWD)/.cardsets-db.
// The result is always absolute.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return cwdDefault(DefaultDataDirName)
}

func cwdDefault(name string) (string, error) {
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
