// Package todo reads the global todo document. Only listing is wired up;
// the add and remove verbs are still CLI stubs.
package todo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Key is the document field holding the todo entries.
const Key = "todos"

// Store reads and (eventually) writes the todo document.
type Store struct {
	path string
}

// NewStore returns a store over the document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// List returns the raw todos value and whether the key exists. The parent
// directory is created on first use; a missing or unparseable document
// reads as an empty one.
func (s *Store) List() (json.RawMessage, bool, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, false, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	raw, ok := s.read()[Key]
	return raw, ok, nil
}

func (s *Store) read() map[string]json.RawMessage {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc
}
