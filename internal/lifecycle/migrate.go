package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/project"
)

// Migrate moves the named project into destDir and returns its new path.
// The project is looked up in the registry first, then as a same-named
// directory under workRoot. An empty destDir targets the registry directory.
// With copyMode the source is duplicated instead of moved and any registry
// entry keeps pointing at the original.
func (s *Service) Migrate(name, destDir string, copyMode bool, workRoot string) (string, error) {
	if destDir == "" {
		destDir = s.registry.Dir()
	}
	dest := filepath.Join(destDir, name)

	resolved, viaLink, err := s.resolveForMove(name, workRoot)
	if err != nil {
		return "", err
	}
	source, err := filepath.EvalSymlinks(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", resolved, err)
	}

	if _, err := os.Lstat(dest); err == nil {
		return "", fmt.Errorf("destination already contains a project named '%s': %w", name, project.ErrConflict)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	if copyMode {
		if err := copyTree(source, dest); err != nil {
			return "", fmt.Errorf("failed to copy project: %w", err)
		}
		s.logger.Info("copied project",
			zap.String("name", name),
			zap.String("source", source),
			zap.String("dest", dest))
		return dest, nil
	}

	if err := os.Rename(source, dest); err != nil {
		return "", fmt.Errorf("failed to move project: %w", err)
	}

	// The moved tree left a dangling registry symlink behind.
	if viaLink {
		if err := s.registry.Unlink(name); err != nil {
			s.logger.Warn("failed to drop stale registry entry",
				zap.String("name", name),
				zap.Error(err))
		}
	}

	s.logger.Info("migrated project",
		zap.String("name", name),
		zap.String("source", source),
		zap.String("dest", dest))
	return dest, nil
}

// resolveForMove finds the live directory for name: the registry entry
// first, then a same-named directory under workRoot. viaLink reports that
// the project was reached through a registry symlink.
func (s *Service) resolveForMove(name, workRoot string) (path string, viaLink bool, err error) {
	if entry, ok := s.registry.Resolve(name); ok {
		info, err := os.Lstat(entry)
		return entry, err == nil && info.Mode()&os.ModeSymlink != 0, nil
	}

	if workRoot != "" {
		candidate := filepath.Join(workRoot, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, false, nil
		}
	}

	return "", false, fmt.Errorf("project '%s': %w", name, project.ErrNotFound)
}

// RemoveResult reports what Remove did.
type RemoveResult struct {
	// Removed is false when the user declined the confirmation.
	Removed bool

	// UnlinkedEntry is the registry symlink deleted because the project
	// lived outside the registry directory, empty otherwise.
	UnlinkedEntry string
}

// Remove permanently deletes the named registered project. Unless force is
// set the user confirms first; declining is a clean no-op.
func (s *Service) Remove(name string, force bool) (RemoveResult, error) {
	var res RemoveResult

	entry, ok := s.registry.Resolve(name)
	if !ok {
		return res, fmt.Errorf("project '%s': %w", name, project.ErrNotFound)
	}
	target, err := filepath.EvalSymlinks(entry)
	if err != nil {
		return res, fmt.Errorf("failed to resolve %s: %w", entry, err)
	}

	if !force {
		ask := fmt.Sprintf("⚠️  Are you sure you want to permanently remove '%s' ? [y/N]: ", name)
		if !s.ask.Confirm(ask) {
			return res, nil
		}
	}

	if err := os.RemoveAll(target); err != nil {
		return res, fmt.Errorf("failed to delete project '%s': %w", target, err)
	}
	res.Removed = true

	if !s.registry.Contains(target) {
		if err := s.registry.Unlink(name); err != nil {
			return res, err
		}
		res.UnlinkedEntry = filepath.Join(s.registry.Dir(), name)
	}

	s.logger.Info("removed project", zap.String("name", name), zap.String("path", target))
	return res, nil
}
