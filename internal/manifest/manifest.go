// Package manifest reads and writes the per-project metadata document.
//
// The manifest is a JSON object stored at <root>/.proj/project.json.
// A directory is a project if and only if that file exists; the .proj
// directory on its own does not qualify.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// Dir is the manifest directory name relative to the project root.
	Dir = ".proj"
	// File is the manifest file name inside Dir.
	File = "project.json"
)

// Well-known manifest keys.
const (
	KeyName        = "name"
	KeyVersion     = "version"
	KeyDescription = "description"
	KeyTemplate    = "template"
	KeyStatus      = "status"
	KeyCompletion  = "completion"
)

// Defaults applied by New.
const (
	DefaultVersion     = "0.1.0"
	DefaultDescription = "New project"
	DefaultStatus      = "active"
)

// Manifest is the parsed metadata document. Unknown keys are preserved.
type Manifest struct {
	doc map[string]any
}

// PathIn returns the manifest file path for a project root.
func PathIn(root string) string {
	return filepath.Join(root, Dir, File)
}

// ExistsIn reports whether root contains a manifest file.
func ExistsIn(root string) bool {
	info, err := os.Stat(PathIn(root))
	return err == nil && info.Mode().IsRegular()
}

// New builds a manifest with the default fields for a fresh project.
func New(name string) *Manifest {
	return &Manifest{doc: map[string]any{
		KeyName:        name,
		KeyVersion:     DefaultVersion,
		KeyDescription: DefaultDescription,
		KeyTemplate:    nil,
		KeyStatus:      DefaultStatus,
		KeyCompletion:  0.0,
	}}
}

// Load reads and parses the manifest under root.
func Load(root string) (*Manifest, error) {
	data, err := os.ReadFile(PathIn(root))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", PathIn(root), err)
	}
	return &Manifest{doc: doc}, nil
}

// Save writes the manifest under root, creating the manifest directory if
// needed. The write is atomic: a temp file in the same directory is renamed
// over the target.
func (m *Manifest) Save(root string) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(dir, File)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename manifest: %w", err)
	}
	return nil
}

// Set stores a value from its raw CLI string form. Values are kept verbatim
// as strings, except the reserved completion key which becomes a float when
// the raw value parses as one.
func (m *Manifest) Set(key, raw string) {
	if key == KeyCompletion {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			m.doc[key] = f
			return
		}
	}
	m.doc[key] = raw
}

// SetValue stores an already-typed value.
func (m *Manifest) SetValue(key string, value any) {
	m.doc[key] = value
}

// Get returns the raw value for key and whether it exists.
func (m *Manifest) Get(key string) (any, bool) {
	v, ok := m.doc[key]
	return v, ok
}

// Name returns the manifest name, or "" when unset.
func (m *Manifest) Name() string { return m.stringKey(KeyName) }

// Version returns the manifest version, or "" when unset.
func (m *Manifest) Version() string { return m.stringKey(KeyVersion) }

// Description returns the manifest description, or "" when unset.
func (m *Manifest) Description() string { return m.stringKey(KeyDescription) }

// Status returns the manifest status, or "" when unset.
func (m *Manifest) Status() string { return m.stringKey(KeyStatus) }

// Template returns the template id or source URL, or "" when unset/null.
func (m *Manifest) Template() string { return m.stringKey(KeyTemplate) }

// Completion returns the completion fraction. String values that parse as
// floats are honored; anything else reads as 0.
func (m *Manifest) Completion() float64 {
	switch v := m.doc[KeyCompletion].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

func (m *Manifest) stringKey(key string) string {
	if s, ok := m.doc[key].(string); ok {
		return s
	}
	return ""
}
