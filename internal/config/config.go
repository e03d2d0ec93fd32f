package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Config is the full proj configuration.
type Config struct {
	Paths PathsConfig `koanf:"paths"`
	Tools ToolsConfig `koanf:"tools"`
	Scan  ScanConfig  `koanf:"scan"`
	Log   LogConfig   `koanf:"log"`
}

// PathsConfig sets the directories proj operates on. Values may start with
// "~/" which expands to the user's home directory.
type PathsConfig struct {
	// ProjectsDir is the central registry directory holding one entry per
	// known project.
	ProjectsDir string `koanf:"projects_dir"`

	// StateDir holds proj's own state: archives and the legacy project
	// home checked first when resolving archive targets.
	StateDir string `koanf:"state_dir"`

	// TemplatesDir is where boilr keeps its downloaded templates.
	TemplatesDir string `koanf:"templates_dir"`

	// TodoFile is the todo list document.
	TodoFile string `koanf:"todo_file"`
}

// ToolsConfig names the external binaries proj shells out to.
type ToolsConfig struct {
	Git   string `koanf:"git"`
	GH    string `koanf:"gh"`
	Boilr string `koanf:"boilr"`
}

// ScanConfig tunes project discovery.
type ScanConfig struct {
	// MaxDepth caps recursion so symlink cycles through fresh canonical
	// paths cannot walk forever.
	MaxDepth int `koanf:"max_depth"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // console, json
}

// ArchivesDir returns the directory holding project archives.
func (c *Config) ArchivesDir() string {
	return filepath.Join(c.Paths.StateDir, "archives")
}

// LegacyProjectsDir returns the state-dir project home consulted first when
// resolving a project to archive.
func (c *Config) LegacyProjectsDir() string {
	return filepath.Join(c.Paths.StateDir, "projects")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Paths.ProjectsDir == "" {
		return fmt.Errorf("paths.projects_dir cannot be empty")
	}
	if c.Paths.StateDir == "" {
		return fmt.Errorf("paths.state_dir cannot be empty")
	}
	if c.Tools.Git == "" {
		return fmt.Errorf("tools.git cannot be empty")
	}
	if c.Scan.MaxDepth <= 0 {
		return fmt.Errorf("scan.max_depth must be positive, got %d", c.Scan.MaxDepth)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config, home string) {
	// Path defaults
	if cfg.Paths.ProjectsDir == "" {
		cfg.Paths.ProjectsDir = filepath.Join(home, "projects")
	}
	if cfg.Paths.StateDir == "" {
		cfg.Paths.StateDir = filepath.Join(home, ".proj")
	}
	if cfg.Paths.TemplatesDir == "" {
		cfg.Paths.TemplatesDir = filepath.Join(home, ".config", "boilr", "templates")
	}
	if cfg.Paths.TodoFile == "" {
		cfg.Paths.TodoFile = filepath.Join(home, ".config", "proj", "todos.json")
	}

	// Tool defaults
	if cfg.Tools.Git == "" {
		cfg.Tools.Git = "git"
	}
	if cfg.Tools.GH == "" {
		cfg.Tools.GH = "gh"
	}
	if cfg.Tools.Boilr == "" {
		cfg.Tools.Boilr = "boilr"
	}

	// Scan defaults
	if cfg.Scan.MaxDepth == 0 {
		cfg.Scan.MaxDepth = 64
	}

	// Log defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// expandPaths resolves leading "~/" segments in every configured path.
func expandPaths(cfg *Config, home string) {
	cfg.Paths.ProjectsDir = expandPath(cfg.Paths.ProjectsDir, home)
	cfg.Paths.StateDir = expandPath(cfg.Paths.StateDir, home)
	cfg.Paths.TemplatesDir = expandPath(cfg.Paths.TemplatesDir, home)
	cfg.Paths.TodoFile = expandPath(cfg.Paths.TodoFile, home)
}

// expandPath replaces a leading "~" or "~/" with the home directory.
func expandPath(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return filepath.Join(home, path[2:])
	}
	return path
}
