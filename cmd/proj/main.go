// Package main implements the proj CLI for managing manifest-tagged
// project directories.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/archive"
	"github.com/fyrsmithlabs/proj/internal/config"
	"github.com/fyrsmithlabs/proj/internal/discovery"
	"github.com/fyrsmithlabs/proj/internal/lifecycle"
	"github.com/fyrsmithlabs/proj/internal/logging"
	"github.com/fyrsmithlabs/proj/internal/prompt"
	"github.com/fyrsmithlabs/proj/internal/registry"
	"github.com/fyrsmithlabs/proj/internal/template"
	"github.com/fyrsmithlabs/proj/internal/tools"
)

var (
	// cfgFile overrides the default config file location
	cfgFile string
	// verbose switches logging to debug level
	verbose bool
	// version information
	version = "0.2.2"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "proj",
	Short: "Automate project setup, initialization, and scanning",
	Long: `proj tracks projects across the filesystem: directories tagged with a
.proj/project.json manifest. It initializes and scaffolds new projects,
scans for existing ones, and manages their lifecycle through migration,
cloning, and zip archives.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/proj/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// app bundles the services a command needs once configuration and logging
// are up.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *registry.Registry
	git      *tools.Git
	scanner  *discovery.Scanner
	projects *lifecycle.Service
}

// newApp loads configuration and wires up the service graph. The returned
// cleanup function flushes buffered log entries and must be deferred by the
// caller.
func newApp() (*app, func(), error) {
	cfg, err := config.LoadWithFile(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	cleanup := func() { _ = logging.Sync(logger) }

	runner := tools.ExecRunner{}
	git := tools.NewGit(cfg.Tools.Git, runner, logger)
	reg := registry.New(cfg.Paths.ProjectsDir, logger)
	ask := prompt.NewStdio()
	templates := template.NewStore(cfg.Paths.TemplatesDir,
		tools.NewBoilr(cfg.Tools.Boilr, runner), ask, os.Stdout, logger)

	projects, err := lifecycle.NewService(lifecycle.Deps{
		Registry:  reg,
		Git:       git,
		GH:        tools.NewGH(cfg.Tools.GH, runner),
		Templates: templates,
		Ask:       ask,
		Out:       os.Stdout,
	}, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		git:      git,
		scanner:  discovery.New(cfg.Scan.MaxDepth, logger),
		projects: projects,
	}, cleanup, nil
}

// archives builds the archive service, storing archives under dir when
// given and under the configured archives directory otherwise.
func (a *app) archives(dir string) *archive.Service {
	if dir == "" {
		dir = a.cfg.ArchivesDir()
	}
	return archive.New(dir, a.cfg.LegacyProjectsDir(), a.registry, a.logger,
		archive.WithProgressOutput(os.Stdout))
}

// workRoot is the directory commands operate from.
func workRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return dir, nil
}
