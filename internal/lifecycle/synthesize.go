package lifecycle

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fyrsmithlabs/proj/internal/manifest"
	"github.com/fyrsmithlabs/proj/internal/tools"
)

// fallbackVersion is assumed when a cloned tree carries no version hint.
const fallbackVersion = "0.0.1"

// synthesizeManifest writes a manifest for a cloned tree that arrived
// without one, recovering what it can from the tree itself. Cloned projects
// are presumed finished, so completion starts at 1.
func (s *Service) synthesizeManifest(root, templateURL string) error {
	m := manifest.New(filepath.Base(root))
	if templateURL != "" {
		m.SetValue(manifest.KeyTemplate, templateURL)
	}
	m.SetValue(manifest.KeyDescription, readmeDescription(root))
	m.SetValue(manifest.KeyVersion, s.detectVersion(root))
	m.SetValue(manifest.KeyCompletion, 1.0)
	m.SetValue(manifest.KeyStatus, "active")
	return m.Save(root)
}

// readmeDescription returns the first three lines of the first readable
// README variant, joined with spaces.
func readmeDescription(root string) string {
	for _, name := range []string{"README.md", "README.mkd", "README"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}

		var lines []string
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() && len(lines) < 3 {
			lines = append(lines, sc.Text())
		}
		return strings.Join(lines, " ")
	}
	return ""
}

// detectVersion recovers a version for a cloned tree: the nearest reachable
// git tag, then a __version__ assignment in an info.py, then the contents
// of a VERSION file.
func (s *Service) detectVersion(root string) string {
	version := fallbackVersion
	if s.git.IsRepo(root) {
		if tag, ok := tools.LatestTag(root); ok {
			version = tag
		}
	}
	if version == fallbackVersion {
		if v, ok := infoPyVersion(root); ok {
			version = v
		}
	}
	if version == fallbackVersion {
		if v, ok := versionFileContents(root); ok {
			version = v
		}
	}
	return version
}

// infoPyVersion locates the first info.py under root and pulls the first
// __version__ assignment out of it.
func infoPyVersion(root string) (string, bool) {
	var found string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == "info.py" {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if found == "" {
		return "", false
	}

	data, err := os.ReadFile(found)
	if err != nil {
		return "", false
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		rest, ok := strings.CutPrefix(sc.Text(), "__version__")
		if !ok {
			continue
		}
		parts := strings.Split(rest, "=")
		if len(parts) < 2 {
			continue
		}
		version := strings.TrimFunc(parts[1], func(r rune) bool {
			return r == '\'' || r == '"' || unicode.IsSpace(r)
		})
		return version, true
	}
	return "", false
}

// versionFileContents returns the trimmed contents of the first readable
// file named VERSION, matched case-insensitively.
func versionFileContents(root string) (version string, ok bool) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.EqualFold(d.Name(), "VERSION") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		version = strings.TrimSpace(string(data))
		ok = true
		return fs.SkipAll
	})
	return version, ok
}
