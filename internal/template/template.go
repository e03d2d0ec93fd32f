// Package template integrates the boilr template tool: listing the
// locally installed templates, asking the user to pick one, and
// applying a template to a project root.
package template

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/manifest"
	"github.com/fyrsmithlabs/proj/internal/prompt"
	"github.com/fyrsmithlabs/proj/internal/tools"
)

// Store finds installed boilr templates and applies them to project
// roots.
type Store struct {
	dir    string
	boilr  *tools.Boilr
	ask    prompt.Interactor
	out    io.Writer
	logger *zap.Logger
}

// NewStore creates a template store over the boilr templates directory.
// A nil out writes user-facing lines to stdout; a nil logger disables
// logging.
func NewStore(dir string, boilr *tools.Boilr, ask prompt.Interactor, out io.Writer, logger *zap.Logger) *Store {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:    dir,
		boilr:  boilr,
		ask:    ask,
		out:    out,
		logger: logger.Named("template"),
	}
}

// Dir returns the templates directory.
func (s *Store) Dir() string { return s.dir }

// List returns the installed template names, one per child directory.
// A missing templates directory reads as empty.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read templates directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		info, err := os.Stat(filepath.Join(s.dir, e.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// ChooseInteractive asks the user to pick one of the installed
// templates. Reports false when boilr is not set up, nothing is
// installed, or no valid choice was made.
func (s *Store) ChooseInteractive() (string, bool) {
	if _, err := os.Stat(s.dir); err != nil {
		return "", false
	}

	names, err := s.List()
	if err != nil {
		s.logger.Warn("failed to list templates", zap.Error(err))
		return "", false
	}
	if len(names) == 0 {
		fmt.Fprintf(s.out, "No templates found in %s\n", s.dir)
		return "", false
	}

	idx, ok := s.ask.Choose("Available templates:", "Select template: ", names)
	if !ok {
		return "", false
	}
	return names[idx], true
}

// Apply runs boilr to instantiate the named template inside root. The
// project's manifest JSON text is handed to boilr as the
// non-interactive answer data.
func (s *Store) Apply(ctx context.Context, name, root string, interactive bool) error {
	fmt.Fprintf(s.out, "⚙️ Applying boilr template: %s\n", name)

	defaults := "{}"
	if data, err := os.ReadFile(manifest.PathIn(root)); err == nil {
		defaults = string(data)
	}
	return s.boilr.Use(ctx, root, name, defaults, interactive)
}
