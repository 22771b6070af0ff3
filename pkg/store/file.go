package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON blob per key as a sidecar file under a directory,
// so measurement state lives next to the clouds it belongs to and survives
// restarts.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir, creating it if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file a key is stored in
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

// Get returns the blob for key
func (f *FileStore) Get(key string) (string, bool) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set stores the blob under key
func (f *FileStore) Set(key, value string) error {
	if err := os.WriteFile(f.Path(key), []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes the key
func (f *FileStore) Remove(key string) error {
	err := os.Remove(f.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// sanitizeKey maps a caller-supplied key to a safe file name
func sanitizeKey(key string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"..", "_",
		" ", "_",
	)
	s := replacer.Replace(key)
	if s == "" {
		s = "default"
	}
	return s
}
