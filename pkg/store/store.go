// Package store provides the flat key-value blob store the measurement
// engine persists its state into. The engine owns the JSON shape and its
// versioning; the store only moves opaque strings.
package store

// Store is a flat key-value blob store.
type Store interface {
	// Get returns the blob for key, or ok=false when the key is absent.
	Get(key string) (string, bool)

	// Set stores the blob under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error
}
