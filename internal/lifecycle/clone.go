package lifecycle

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/manifest"
	"github.com/fyrsmithlabs/proj/internal/project"
)

// urlPrefixes mark clone sources that name a remote repository rather than
// a registered project.
var urlPrefixes = []string{"http://", "https://", "git@"}

// Clone materializes source at the resolved destination and returns the new
// project path. A remote source is cloned with git; a registered project
// name is either git-cloned locally (gitClone, source is a repository) or
// copied file by file. Trees that arrive without a manifest get one
// synthesized from their contents.
//
// dest selects the parent: "" for the registry directory, "." or "./" for
// workRoot, an absolute path for itself. Any other value is taken as the
// full target path inside the registry directory.
func (s *Service) Clone(ctx context.Context, source, dest string, gitClone bool, workRoot string) (string, error) {
	target := s.cloneTarget(source, dest, workRoot)

	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("destination %s: %w", target, project.ErrConflict)
	}
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", parent, err)
	}

	remote := isRemoteSource(source)
	if remote {
		fmt.Fprintf(s.out, "🌐 Cloning repository '%s' into '%s'\n", source, target)
		if err := s.git.Clone(ctx, source, target); err != nil {
			return "", fmt.Errorf("git clone failed: %w", err)
		}
		fmt.Fprintln(s.out, "✅ Repository cloned successfully")
	} else {
		sourcePath, ok := s.registry.Resolve(source)
		if !ok {
			return "", fmt.Errorf("source project '%s': %w", source, project.ErrNotFound)
		}
		if gitClone && s.git.IsRepo(sourcePath) {
			fmt.Fprintf(s.out, "🌱 Cloning local Git repository '%s' into '%s'\n", sourcePath, target)
			if err := s.git.Clone(ctx, sourcePath, target); err != nil {
				return "", fmt.Errorf("git clone failed: %w", err)
			}
		} else {
			fmt.Fprintf(s.out, "📁 Copying project '%s' into '%s'\n", sourcePath, target)
			if err := copyTree(sourcePath, target); err != nil {
				return "", fmt.Errorf("failed to copy project directory: %w", err)
			}
		}
	}

	if !manifest.ExistsIn(target) {
		templateURL := ""
		if remote {
			templateURL = source
		}
		if err := s.synthesizeManifest(target, templateURL); err != nil {
			return "", err
		}
		fmt.Fprintf(s.out, "📦 Generated default project.json for '%s'\n", filepath.Base(target))
	}

	s.registry.Link(target)

	s.logger.Info("cloned project",
		zap.String("source", source),
		zap.String("dest", target),
		zap.Bool("remote", remote))
	return target, nil
}

// cloneTarget resolves the destination directory for a clone.
func (s *Service) cloneTarget(source, dest, workRoot string) string {
	name := cloneBaseName(source)
	switch {
	case dest == "." || dest == "./":
		return filepath.Join(workRoot, name)
	case dest == "":
		return filepath.Join(s.registry.Dir(), name)
	case filepath.IsAbs(dest):
		return filepath.Join(dest, name)
	default:
		return filepath.Join(s.registry.Dir(), dest)
	}
}

func isRemoteSource(source string) bool {
	for _, prefix := range urlPrefixes {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return false
}

// cloneBaseName derives the project directory name from a clone source: the
// last '/'-separated segment without a .git suffix.
func cloneBaseName(source string) string {
	name := source
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".git")
	if name == "" {
		name = "cloned_project"
	}
	return name
}

// copyTree copies the directory tree at src into dst, which must not exist
// yet. Symlinks are recreated as links, permissions carry over.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return nil
		}
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
