// Package discovery finds manifest-tagged directories beneath a set of
// roots, deduplicating by canonical path so a project reachable through
// both its real location and a registry symlink reports exactly once.
package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/manifest"
)

// Seen is the deduplication accumulator threaded through every walk.
// Discover calls spanning several roots share one Seen so the first root to
// reach a project claims it.
type Seen map[string]struct{}

// NewSeen returns an empty accumulator.
func NewSeen() Seen {
	return make(Seen)
}

// Insert records path and reports whether it was absent.
func (s Seen) Insert(path string) bool {
	if _, ok := s[path]; ok {
		return false
	}
	s[path] = struct{}{}
	return true
}

// Options select between the two traversal styles.
type Options struct {
	// Recursive descends into subdirectories. When false only each root's
	// direct children are inspected.
	Recursive bool

	// PruneHidden skips dot-directories entirely, including projects that
	// happen to live in one.
	PruneHidden bool

	// DescendIntoProjects keeps walking beneath a discovered project
	// looking for nested ones.
	DescendIntoProjects bool
}

// ScanOptions is the traversal used by the scan command: every directory
// is fair game, including hidden ones and project interiors.
func ScanOptions(recursive bool) Options {
	return Options{
		Recursive:           recursive,
		DescendIntoProjects: true,
	}
}

// ListOptions is the traversal used by the list command: always recursive,
// hidden directories pruned, and project subtrees treated as leaves.
func ListOptions() Options {
	return Options{
		Recursive:   true,
		PruneHidden: true,
	}
}

// Scanner walks directory trees looking for projects.
type Scanner struct {
	maxDepth int
	logger   *zap.Logger
}

// New creates a scanner. maxDepth caps recursion so symlink cycles that
// keep producing fresh canonical paths cannot walk forever; non-positive
// values fall back to 64. A nil logger disables logging.
func New(maxDepth int, logger *zap.Logger) *Scanner {
	if maxDepth <= 0 {
		maxDepth = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{maxDepth: maxDepth, logger: logger.Named("discovery")}
}

// Discover walks each root in order and returns canonical project paths in
// first-found order. The roots themselves are never candidates, only their
// descendants. Traversal is fail-open: unreadable or unresolvable entries
// are skipped, never fatal.
func (s *Scanner) Discover(roots []string, seen Seen, opts Options) []string {
	var found []string
	visiting := make(map[string]struct{})
	for _, root := range roots {
		s.walk(root, 0, seen, visiting, opts, &found)
	}
	return found
}

func (s *Scanner) walk(dir string, depth int, seen Seen, visiting map[string]struct{}, opts Options, found *[]string) {
	if depth >= s.maxDepth {
		s.logger.Debug("recursion depth cap reached", zap.String("dir", dir))
		return
	}

	// A canonical directory already on the current path means a symlink
	// cycle; entering it again would recurse forever under fresh names.
	canon, err := filepath.EvalSymlinks(dir)
	if err != nil {
		s.logger.Debug("skipping unresolvable directory",
			zap.String("dir", dir), zap.Error(err))
		return
	}
	if _, ok := visiting[canon]; ok {
		return
	}
	visiting[canon] = struct{}{}
	defer delete(visiting, canon)

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Debug("skipping unreadable directory",
			zap.String("dir", dir), zap.Error(err))
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// Symlinks to directories are traversed like directories; the
		// canonical seen-set is what prevents double counting.
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}

		if opts.PruneHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		isProject := manifest.ExistsIn(path)
		if isProject {
			real, err := filepath.EvalSymlinks(path)
			if err == nil && seen.Insert(real) {
				*found = append(*found, real)
			}
		}

		switch {
		case isProject && !opts.DescendIntoProjects:
			// Listing stops at project boundaries.
		case opts.Recursive:
			s.walk(path, depth+1, seen, visiting, opts, found)
		}
	}
}
