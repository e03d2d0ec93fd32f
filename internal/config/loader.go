// Package config provides configuration loading for proj.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// DefaultPath returns the default config file location,
// ~/.config/proj/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "proj", "config.yaml"), nil
}

// LoadWithFile loads configuration from a YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PROJ_PATHS_PROJECTS_DIR, PROJ_LOG_LEVEL, etc.)
//  2. YAML config file (~/.config/proj/config.yaml)
//  3. Hardcoded defaults
//
// The configPath parameter specifies the YAML file to load. If empty, the
// default path is used. A missing file is not an error; defaults apply.
//
// Environment variables are uppercased with a PROJ_ prefix; the first
// underscore after the prefix separates the section from the field name:
//
//	PROJ_PATHS_PROJECTS_DIR -> paths.projects_dir
//	PROJ_TOOLS_GIT          -> tools.git
//	PROJ_SCAN_MAX_DEPTH     -> scan.max_depth
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	if configPath == "" {
		configPath = filepath.Join(home, ".config", "proj", "config.yaml")
	}

	// Load from YAML file if it exists
	if _, err := os.Stat(configPath); err == nil {
		// Open the file once and validate via the descriptor to avoid a
		// TOCTOU race between the checks and the read.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Use rawbytes provider to avoid re-opening the file
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Override with environment variables.
	// Example: PROJ_PATHS_PROJECTS_DIR -> paths.projects_dir
	if err := k.Load(env.Provider("PROJ_", ".", func(s string) string {
		// Split on the first underscore only: section.field_name.
		// Underscores inside the field name are preserved.
		lower := strings.ToLower(strings.TrimPrefix(s, "PROJ_"))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg, home)
	expandPaths(&cfg, home)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
