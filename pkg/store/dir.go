package store

import (
	"os"
	"path/filepath"
)

// DefaultDir returns the per-user directory for measurement state files.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "gosplat"), nil
}
