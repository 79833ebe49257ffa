package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// HomeEnv names the environment variable that overrides the home directory.
const HomeEnv = "RIMDEFS_HOME"

// HomeDirName is the home directory created under the working directory.
const HomeDirName = ".rimdefs"

// GetRimdefsHome returns the rimdefs home directory
// Priority order:
//  1. RIMDEFS_HOME environment variable (if set)
//  2. .rimdefs under the current working directory (fallback)
//
// The directory is created if it doesn't exist
func GetRimdefsHome() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create rimdefs home directory: %w", err)
		}
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	home := filepath.Join(cwd, HomeDirName)
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create rimdefs home directory: %w", err)
	}
	return home, nil
}

// DefaultConfigPath returns $RIMDEFS_HOME/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := GetRimdefsHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFileName), nil
}

// LoadEnv loads variables from the given .env files, or from ./.env when
// none are given. Missing files are ignored and variables already set in
// the environment win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
