// Package registry maintains the central projects directory: one entry per
// known project name, either the project's real directory or a symlink
// pointing at its real location elsewhere on the filesystem.
//
// Directory structure:
//
//	~/projects/
//	├── webapp/                ← project created inside the registry
//	└── tools -> /src/tools    ← entry for a project living elsewhere
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/manifest"
)

// Registry resolves project names against the central directory and keeps
// symlink entries for projects that live outside it.
type Registry struct {
	dir    string
	logger *zap.Logger
}

// New creates a registry over the central directory. The directory is not
// created until Ensure is called. A nil logger disables logging.
func New(dir string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		dir:    dir,
		logger: logger.Named("registry"),
	}
}

// Dir returns the central directory path.
func (r *Registry) Dir() string {
	return r.dir
}

// Ensure creates the central directory if it does not exist.
func (r *Registry) Ensure() error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	return nil
}

// Resolve scans the direct children of the central directory for an entry
// matching name whose target contains a valid manifest. The returned path is
// the registry-side path, which may be a symlink; it is not canonicalized.
func (r *Registry) Resolve(name string) (string, bool) {
	if !validEntryName(name) {
		return "", false
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if entry.Name() != name {
			continue
		}
		path := filepath.Join(r.dir, name)
		if manifest.ExistsIn(path) {
			return path, true
		}
	}
	return "", false
}

// Link records realPath in the registry by creating a symlink named after
// its final path component. It is a no-op when realPath already lives inside
// the central directory or when an entry with that name exists, even a stale
// one. Symlink failures are logged, not fatal.
func (r *Registry) Link(realPath string) {
	if r.Contains(realPath) {
		return
	}

	entry := filepath.Join(r.dir, filepath.Base(realPath))
	if _, err := os.Lstat(entry); err == nil {
		return
	}

	if err := os.Symlink(realPath, entry); err != nil {
		r.logger.Warn("failed to link project into registry",
			zap.String("path", realPath),
			zap.Error(err))
	}
}

// ForceLink replaces any stale entry for realPath's name with a fresh
// symlink. Unlike Link, failures are returned. No-op when realPath is
// already inside the central directory.
func (r *Registry) ForceLink(realPath string) error {
	if r.Contains(realPath) {
		return nil
	}

	name := filepath.Base(realPath)
	entry := filepath.Join(r.dir, name)
	if _, err := os.Lstat(entry); err == nil {
		if err := remove(entry); err != nil {
			return fmt.Errorf("failed to remove stale registry entry %s: %w", name, err)
		}
	}

	if err := os.Symlink(realPath, entry); err != nil {
		return fmt.Errorf("failed to link %s into registry: %w", name, err)
	}
	return nil
}

// Unlink removes the registry entry for name. Symlinks and files are
// removed directly; real directories are removed recursively.
func (r *Registry) Unlink(name string) error {
	if !validEntryName(name) {
		return fmt.Errorf("invalid registry entry name %q", name)
	}

	entry := filepath.Join(r.dir, name)
	if _, err := os.Lstat(entry); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat registry entry %s: %w", name, err)
	}

	if err := remove(entry); err != nil {
		return fmt.Errorf("failed to remove registry entry %s: %w", name, err)
	}
	return nil
}

// Contains reports whether path lies inside the central directory. The
// check is lexical; symlinks are not resolved.
func (r *Registry) Contains(path string) bool {
	rel, err := filepath.Rel(r.dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// remove deletes entry, falling back to recursive removal when the entry
// turns out to be a real directory rather than a symlink.
func remove(entry string) error {
	if err := os.Remove(entry); err == nil {
		return nil
	}
	return os.RemoveAll(entry)
}

// validEntryName rejects names that cannot be a direct child of the
// central directory.
func validEntryName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
