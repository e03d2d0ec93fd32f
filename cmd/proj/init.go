package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/proj/internal/lifecycle"
)

var (
	// init command flags
	initInteractive bool
	initTemplate    string
	// create command flags
	createInteractive bool
	createTemplate    string
)

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(createCmd)

	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "prompt for template variables")
	initCmd.Flags().StringVarP(&initTemplate, "template", "t", "", "boilr template to apply")

	createCmd.Flags().BoolVarP(&createInteractive, "interactive", "i", false, "prompt for template variables")
	createCmd.Flags().StringVarP(&createTemplate, "template", "t", "", "boilr template to apply")
}

var initCmd = &cobra.Command{
	Use:   "init [KEY=value ...]",
	Short: "Initialize the current directory as a project",
	Long: `Initialize the current directory as a project.

Writes a .proj/project.json manifest, initializes a git repository if none
exists, optionally applies a boilr template, and links the directory into
the projects directory. Running it inside an existing project only applies
the given variables.

Examples:
  # Initialize the current directory
  proj init

  # Initialize with a template and manifest variables
  proj init --template webapp description="Internal dashboard" version=0.1.0

  # Pick a template interactively
  proj init --interactive`,
	Args: cobra.ArbitraryArgs,
	RunE: runInit,
}

var createCmd = &cobra.Command{
	Use:   "create <name> [KEY=value ...]",
	Short: "Create a new project",
	Long: `Create a new project directory and initialize it.

The name is taken as a path relative to the current directory unless
absolute. The new directory is initialized exactly like proj init.

Examples:
  # Create a project in the current directory
  proj create myapp

  # Create from a template with variables
  proj create myapp --template webapp owner=kit`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

func runInit(cmd *cobra.Command, args []string) error {
	vars, err := parseVars(args)
	if err != nil {
		return err
	}

	app, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := app.registry.Ensure(); err != nil {
		return err
	}

	root, err := workRoot()
	if err != nil {
		return err
	}

	return app.projects.Initialize(context.Background(), root, lifecycle.InitOptions{
		Template:    initTemplate,
		Interactive: initInteractive,
		Vars:        vars,
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	vars, err := parseVars(args[1:])
	if err != nil {
		return err
	}

	app, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := app.registry.Ensure(); err != nil {
		return err
	}

	path := name
	if !filepath.IsAbs(path) {
		root, err := workRoot()
		if err != nil {
			return err
		}
		path = filepath.Join(root, name)
	}

	err = app.projects.Create(context.Background(), path, lifecycle.InitOptions{
		Template:    createTemplate,
		Interactive: createInteractive,
		Vars:        vars,
	})
	if err != nil {
		return err
	}

	fmt.Printf("📁 Created new project '%s'\n", name)
	return nil
}

// parseVars converts KEY=value arguments into manifest assignments.
func parseVars(args []string) ([]lifecycle.KeyValue, error) {
	vars := make([]lifecycle.KeyValue, 0, len(args))
	for _, arg := range args {
		kv, err := lifecycle.ParseKeyValue(arg)
		if err != nil {
			return nil, err
		}
		vars = append(vars, kv)
	}
	return vars, nil
}
