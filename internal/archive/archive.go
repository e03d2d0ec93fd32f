// Package archive turns live project directories into timestamped zip
// files under the archives directory and restores them. Every archive
// carries a small metadata entry so the original project name survives
// independently of the archive filename, which is lossy for names
// containing underscores.
package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/project"
	"github.com/fyrsmithlabs/proj/internal/registry"
)

const (
	// Ext is the archive file extension.
	Ext = ".zip"

	// MetadataName is the zip entry recording the archived project's
	// identity.
	MetadataName = ".proj-archive.json"

	timestampLayout = "20060102_150405"
)

// Metadata identifies an archived project.
type Metadata struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Service archives projects and restores them.
type Service struct {
	archivesDir string
	legacyDir   string
	registry    *registry.Registry
	logger      *zap.Logger
	progress    io.Writer
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithProgressOutput draws progress bars on w while archiving and
// restoring. No bars are drawn by default.
func WithProgressOutput(w io.Writer) Option {
	return func(s *Service) { s.progress = w }
}

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an archive service. legacyDir is the retired flat
// projects directory that name resolution still consults first. A nil
// logger disables logging.
func New(archivesDir, legacyDir string, reg *registry.Registry, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		archivesDir: archivesDir,
		legacyDir:   legacyDir,
		registry:    reg,
		logger:      logger.Named("archive"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the archives directory.
func (s *Service) Dir() string { return s.archivesDir }

// Archive zips the named project into the archives directory, then
// deletes the live tree and its registry entry. The returned path
// points at a valid archive even when the post-finalize deletion
// fails; before the archive is finalized any error aborts with nothing
// deleted.
func (s *Service) Archive(name, workRoot string) (string, error) {
	root, err := s.resolveProject(name, workRoot)
	if err != nil {
		return "", err
	}
	canonical, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	if err := os.MkdirAll(s.archivesDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archives directory: %w", err)
	}

	stamp := s.now().Format(timestampLayout)
	path := filepath.Join(s.archivesDir, name+"_"+stamp+Ext)

	if err := s.writeArchive(path, canonical, name); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn("failed to remove partial archive",
				zap.String("path", path),
				zap.Error(rmErr),
			)
		}
		return "", err
	}

	s.logger.Info("archived project",
		zap.String("name", name),
		zap.String("source", canonical),
		zap.String("archive", path),
	)

	// The archive is finalized; failures past this point no longer
	// invalidate it.
	if err := os.RemoveAll(canonical); err != nil {
		return path, fmt.Errorf("archived to %s but failed to delete %s: %w", path, canonical, err)
	}
	if err := s.registry.Unlink(name); err != nil {
		s.logger.Warn("failed to remove registry entry",
			zap.String("name", name),
			zap.Error(err),
		)
	}
	return path, nil
}

// resolveProject finds the live directory for name: the retired flat
// layout first, then the registry, then workRoot.
func (s *Service) resolveProject(name, workRoot string) (string, error) {
	candidates := []string{
		filepath.Join(s.legacyDir, name),
		filepath.Join(s.registry.Dir(), name),
	}
	if workRoot != "" {
		candidates = append(candidates, filepath.Join(workRoot, name))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("project %q: %w", name, project.ErrNotFound)
}

func (s *Service) writeArchive(path, root, name string) error {
	files, total, err := collectFiles(root)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", root, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	zw := zip.NewWriter(f)

	if err := s.writeEntries(zw, root, name, files, total); err != nil {
		zw.Close()
		f.Close()
		return err
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to flush archive: %w", err)
	}
	return nil
}

func (s *Service) writeEntries(zw *zip.Writer, root, name string, files []string, total int64) error {
	meta, err := json.Marshal(Metadata{
		ID:         uuid.NewString(),
		Name:       name,
		ArchivedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode archive metadata: %w", err)
	}
	w, err := zw.Create(MetadataName)
	if err != nil {
		return fmt.Errorf("failed to add archive metadata: %w", err)
	}
	if _, err := w.Write(meta); err != nil {
		return fmt.Errorf("failed to write archive metadata: %w", err)
	}

	var bar *pb.ProgressBar
	if s.progress != nil {
		bar = pb.New64(total)
		bar.Set(pb.Bytes, true)
		bar.SetWriter(s.progress)
		bar.Start()
		defer bar.Finish()
	}

	for _, file := range files {
		if err := addFile(zw, root, file, bar); err != nil {
			return err
		}
	}
	return nil
}

// collectFiles lists the regular files under root, following symlinks
// to files the way the walk-and-stat of the original tool did. Broken
// symlinks are skipped; an unreadable directory aborts.
func collectFiles(root string) ([]string, int64, error) {
	var files []string
	var total int64
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		files = append(files, p)
		total += info.Size()
		return nil
	})
	return files, total, err
}

func addFile(zw *zip.Writer, root, path string, bar *pb.ProgressBar) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return fmt.Errorf("failed to relativize %s: %w", path, err)
	}

	w, err := zw.Create(filepath.ToSlash(rel))
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", rel, err)
	}
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", rel, err)
	}
	defer src.Close()

	var dst io.Writer = w
	if bar != nil {
		dst = bar.NewProxyWriter(w)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to archive %s: %w", rel, err)
	}
	return nil
}
