package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Snapshotter persists a store's serialized snapshot to disk so a restart
// boots with yesterday's cache instead of an empty screen. Writes go to a
// temp file first and are renamed into place.
type Snapshotter struct {
	path string
}

// NewSnapshotter creates a snapshotter writing to path, creating parent
// directories as needed.
func NewSnapshotter(path string) (*Snapshotter, error) {
	if path == "" {
		return nil, errors.New("snapshot path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Snapshotter{path: path}, nil
}

// Load reads the persisted snapshot. A missing file is not an error; it
// returns (nil, nil) meaning first-ever boot.
func (s *Snapshotter) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return data, nil
}

// Save writes the snapshot atomically.
func (s *Snapshotter) Save(data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// RestoreInto loads the snapshot and restores it into store. A missing or
// unreadable snapshot leaves the store untouched; corruption is reported
// but treated as first boot by callers.
func (s *Snapshotter) RestoreInto(store Store) error {
	data, err := s.Load()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return store.Restore(data)
}

// SaveFrom snapshots store and persists it.
func (s *Snapshotter) SaveFrom(store Store) error {
	data, err := store.Snapshot()
	if err != nil {
		return err
	}
	return s.Save(data)
}
