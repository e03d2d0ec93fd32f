package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/project"
)

// RestoreResult reports where an archive landed.
type RestoreResult struct {
	// Archive is the stem of the archive that was restored, which can
	// differ from the requested name when it was resolved by project
	// name.
	Archive string

	// Path is the restored project directory.
	Path string

	// Linked reports whether a fresh registry symlink was created.
	Linked bool
}

// List returns the stems of all archives in lexical order. A missing
// archives directory reads as empty.
func (s *Service) List() ([]string, error) {
	entries, err := os.ReadDir(s.archivesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archives directory: %w", err)
	}

	var stems []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		stems = append(stems, strings.TrimSuffix(e.Name(), Ext))
	}
	return stems, nil
}

// Remove deletes the archive with the given stem, or every archive of
// the project with that name when no stem matches exactly. Returns the
// removed stems.
func (s *Service) Remove(name string) ([]string, error) {
	exact := filepath.Join(s.archivesDir, name+Ext)
	if _, err := os.Stat(exact); err == nil {
		if err := os.Remove(exact); err != nil {
			return nil, fmt.Errorf("failed to remove archive: %w", err)
		}
		s.logger.Info("removed archive", zap.String("archive", name))
		return []string{name}, nil
	}

	stems, err := s.List()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, stem := range stems {
		if s.recoverName(stem) != name {
			continue
		}
		if err := os.Remove(filepath.Join(s.archivesDir, stem+Ext)); err != nil {
			return removed, fmt.Errorf("failed to remove archive: %w", err)
		}
		s.logger.Info("removed archive", zap.String("archive", stem))
		removed = append(removed, stem)
	}
	if len(removed) == 0 {
		return nil, fmt.Errorf("archive %q: %w", name, project.ErrNotFound)
	}
	return removed, nil
}

// Restore extracts an archive into destDir (the registry directory
// when empty) under the project's original name and links the result
// into the registry when it lands outside. name is an archive stem or
// a project name; project names resolve to their newest archive.
func (s *Service) Restore(name, destDir string) (RestoreResult, error) {
	var res RestoreResult

	stem, err := s.findArchive(name)
	if err != nil {
		return res, err
	}
	res.Archive = stem
	original := s.recoverName(stem)

	if destDir == "" {
		destDir = s.registry.Dir()
	}
	dest := filepath.Join(destDir, original)
	if _, err := os.Lstat(dest); err == nil {
		return res, fmt.Errorf("destination %s: %w", dest, project.ErrConflict)
	}
	res.Path = dest

	if err := s.extract(stem, dest); err != nil {
		return res, err
	}

	s.logger.Info("restored archive",
		zap.String("archive", stem),
		zap.String("path", dest),
	)

	if !s.registry.Contains(dest) {
		if err := s.registry.ForceLink(dest); err != nil {
			return res, fmt.Errorf("restored to %s but failed to link it: %w", dest, err)
		}
		res.Linked = true
	}
	return res, nil
}

// findArchive picks the archive stem for name: an exact stem first,
// otherwise the newest archive whose project name matches. Timestamped
// stems sort lexically by age.
func (s *Service) findArchive(name string) (string, error) {
	if _, err := os.Stat(filepath.Join(s.archivesDir, name+Ext)); err == nil {
		return name, nil
	}

	stems, err := s.List()
	if err != nil {
		return "", err
	}
	best := ""
	for _, stem := range stems {
		if s.recoverName(stem) == name && stem > best {
			best = stem
		}
	}
	if best == "" {
		return "", fmt.Errorf("archive %q: %w", name, project.ErrNotFound)
	}
	return best, nil
}

// recoverName reports which project an archive stem belongs to,
// preferring the embedded metadata over filename parsing.
func (s *Service) recoverName(stem string) string {
	if meta, err := s.readMetadata(stem); err == nil && meta.Name != "" {
		return meta.Name
	}
	name, _, _ := strings.Cut(stem, "_")
	return name
}

func (s *Service) readMetadata(stem string) (*Metadata, error) {
	zr, err := zip.OpenReader(filepath.Join(s.archivesDir, stem+Ext))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != MetadataName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		var meta Metadata
		if err := json.NewDecoder(rc).Decode(&meta); err != nil {
			return nil, err
		}
		return &meta, nil
	}
	return nil, fmt.Errorf("%s has no %s entry", stem, MetadataName)
}

func (s *Service) extract(stem, dest string) error {
	zr, err := zip.OpenReader(filepath.Join(s.archivesDir, stem+Ext))
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	var bar *pb.ProgressBar
	if s.progress != nil {
		var total int64
		for _, f := range zr.File {
			total += int64(f.UncompressedSize64)
		}
		bar = pb.New64(total)
		bar.Set(pb.Bytes, true)
		bar.SetWriter(s.progress)
		bar.Start()
		defer bar.Finish()
	}

	for _, f := range zr.File {
		if f.Name == MetadataName {
			if bar != nil {
				bar.Add64(int64(f.UncompressedSize64))
			}
			continue
		}

		rel, ok := sanitizeEntryPath(f.Name)
		if !ok {
			s.logger.Warn("skipping unsafe archive entry", zap.String("entry", f.Name))
			continue
		}
		target := filepath.Join(dest, rel)

		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", rel, err)
			}
			continue
		}
		if err := extractFile(f, target, bar); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string, bar *pb.ProgressBar) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	var dst io.Writer = out
	if bar != nil {
		dst = bar.NewProxyWriter(out)
	}
	if _, err := io.Copy(dst, rc); err != nil {
		out.Close()
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return out.Close()
}

// sanitizeEntryPath normalizes an archive entry name to a relative
// path that cannot escape the extraction root. Traversal and empty
// segments are stripped; a name with nothing left is rejected.
func sanitizeEntryPath(name string) (string, bool) {
	var parts []string
	for _, part := range strings.Split(name, "/") {
		switch part {
		case "", ".", "..":
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "", false
	}
	return filepath.Join(parts...), true
}
