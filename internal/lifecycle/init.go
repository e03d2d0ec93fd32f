package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/manifest"
	"github.com/fyrsmithlabs/proj/internal/project"
	"github.com/fyrsmithlabs/proj/internal/tools"
)

// KeyValue is one KEY=VAL command-line argument.
type KeyValue struct {
	Key   string
	Value string
}

// ParseKeyValue splits a KEY=VAL argument at its first '='.
func ParseKeyValue(arg string) (KeyValue, error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok {
		return KeyValue{}, fmt.Errorf("invalid KEY=value: no `=` found in `%s`: %w", arg, project.ErrInvalidInput)
	}
	return KeyValue{Key: key, Value: value}, nil
}

// InitOptions carry the optional parts of project initialization.
type InitOptions struct {
	// Template names a boilr template to apply. When empty and the manifest
	// has no template recorded, the user is asked to pick one.
	Template string

	// Interactive lets boilr prompt for template variables instead of
	// feeding it the manifest as answer data.
	Interactive bool

	// Vars are manifest fields to set, applied after the manifest exists.
	Vars []KeyValue
}

// Initialize sets up root as a project: manifest, git repository, optional
// GitHub remote, optional boilr template, registry entry, and a best-effort
// initial commit. A root that is already a project keeps its manifest and
// runs only the remaining steps, so Initialize is safe to repeat.
func (s *Service) Initialize(ctx context.Context, root string, opts InitOptions) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("project root %s: %w", root, project.ErrNotFound)
	}
	if !info.IsDir() {
		return fmt.Errorf("project root %s is not a directory: %w", root, project.ErrInvalidInput)
	}

	name := filepath.Base(root)

	if manifest.ExistsIn(root) {
		fmt.Fprintln(s.out, manifest.Dir+" already exists.")
	} else {
		if err := manifest.New(name).Save(root); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "✅ Initialized project '%s'\n", name)
	}

	if err := s.git.Init(ctx, root); err != nil {
		s.logger.Warn("git init failed", zap.String("root", root), zap.Error(err))
	}

	s.maybeCreateUpstream(ctx, name, root)

	m, err := manifest.Load(root)
	if err != nil {
		return err
	}
	for _, kv := range opts.Vars {
		m.Set(kv.Key, kv.Value)
	}

	if m.Template() == "" {
		chosen, ok := opts.Template, opts.Template != ""
		if !ok {
			chosen, ok = s.templates.ChooseInteractive()
		}
		if ok {
			if err := s.templates.Apply(ctx, chosen, root, opts.Interactive); err != nil {
				fmt.Fprintf(s.out, "❌ Boilr failed: %v\n", err)
				s.logger.Warn("template apply failed",
					zap.String("template", chosen),
					zap.Error(err))
			}
			// Recorded even when boilr fails so a re-run does not ask again.
			m.SetValue(manifest.KeyTemplate, chosen)
		}
	}

	if err := m.Save(root); err != nil {
		return err
	}

	s.registry.Link(root)
	s.commitInitial(ctx, root)

	s.logger.Info("initialized project", zap.String("name", name), zap.String("root", root))
	return nil
}

// Create makes the project directory at path and initializes it. The path
// must not exist yet.
func (s *Service) Create(ctx context.Context, path string, opts InitOptions) error {
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("directory %s already exists: %w", path, project.ErrConflict)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return s.Initialize(ctx, path, opts)
}

// maybeCreateUpstream offers to create a GitHub repository for the project.
// The gh wizard owns the terminal while it runs; failures are reported but
// never abort initialization.
func (s *Service) maybeCreateUpstream(ctx context.Context, name, root string) {
	ask := fmt.Sprintf("Do you want to create a GitHub repository for '%s' and push the current branch? [y/N]: \n", name)
	if !s.ask.Confirm(ask) {
		return
	}

	if err := s.gh.CreateRepo(ctx, root); err != nil {
		fmt.Fprintf(s.out, "❌ Failed to create repo: %v\n", err)
		s.logger.Warn("gh repo create failed", zap.String("name", name), zap.Error(err))
		return
	}
	fmt.Fprintln(s.out, "✅ GitHub repo created and pushed!")
}

// commitInitial stages and pushes whatever initialization produced. Every
// step is best-effort: a missing remote or an empty tree must not fail init.
func (s *Service) commitInitial(ctx context.Context, root string) {
	if !s.git.InsideWorkTree(ctx, root) {
		return
	}

	if err := s.git.CommitAll(ctx, root, "initial commit"); err != nil {
		s.logger.Debug("initial commit failed", zap.Error(err))
	}

	branch := tools.CurrentBranch(root)
	if branch == "" {
		branch = "master"
	}
	if err := s.git.PushUpstream(ctx, root, branch); err != nil {
		s.logger.Debug("push failed", zap.String("branch", branch), zap.Error(err))
	}
}
