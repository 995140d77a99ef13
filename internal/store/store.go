// Package store persists the phonebook to the filesystem as a JSON snapshot.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/smileynet/rolodex/internal/contact"
)

// ErrInvalidPath indicates the store was given an empty snapshot path.
var ErrInvalidPath = errors.New("store: invalid path")

// FileStore saves and loads the full ordered contact list as one JSON file.
// Writes are wholesale: marshal everything, overwrite the file. Last write
// wins, matching the single-user in-memory-list semantics.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore persisting to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string { return s.path }

// snapshot is the on-disk JSON structure. Versioned so a future layout
// change can migrate old files.
type snapshot struct {
	Version  int               `json:"version"`
	Contacts []contact.Contact `json:"contacts"`
}

// Save writes the contacts to the snapshot file, creating the parent
// directory if needed.
func (s *FileStore) Save(contacts []contact.Contact) error {
	if s.path == "" {
		return ErrInvalidPath
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: creating directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(snapshot{Version: 1, Contacts: contacts}, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshaling: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	return nil
}

// Load reads the snapshot file. A missing file yields an empty contact
// list, not an error: a fresh working directory is a valid empty book.
func (s *FileStore) Load() ([]contact.Contact, error) {
	if s.path == "" {
		return nil, ErrInvalidPath
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: reading %s: %w", s.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("store: parsing %s: %w", s.path, err)
	}
	return snap.Contacts, nil
}

// Remove deletes the snapshot file. Removing a missing file is not an error.
func (s *FileStore) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("store: removing %s: %w", s.path, err)
	}
	return nil
}
