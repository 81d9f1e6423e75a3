package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetUserPath returns the current user's home directory.
func GetUserPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return home, nil
}

// ExpandConfigDir expands a leading "~" and returns an absolute path.
func ExpandConfigDir(dir string) (string, error) {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := GetUserPath()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory %q: %w", dir, err)
	}
	return abs, nil
}
