package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	// clone command flags
	cloneGit bool
)

func init() {
	rootCmd.AddCommand(cloneCmd)
	cloneCmd.Flags().BoolVarP(&cloneGit, "git-clone", "g", false, "clone a local source with git instead of copying")
}

var cloneCmd = &cobra.Command{
	Use:   "clone <source> [dest]",
	Short: "Clone a project from a URL or the registry",
	Long: `Clone a remote repository or a registered local project.

Sources starting with http://, https:// or git@ are cloned with git. A
local project is copied, or git-cloned with --git-clone. The destination
defaults to the projects directory; "." targets the current directory. A
manifest is synthesized when the clone does not bring one along.

Examples:
  # Clone a repository into the projects directory
  proj clone https://github.com/kit/tool.git

  # Clone into the current directory
  proj clone git@github.com:kit/tool.git .

  # Copy a registered project under a new name
  proj clone myapp myapp-fork

  # Preserve history when cloning a local project
  proj clone myapp --git-clone`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runClone,
}

func runClone(cmd *cobra.Command, args []string) error {
	source := args[0]
	dest := ""
	if len(args) == 2 {
		dest = args[1]
	}

	app, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	cwd, err := workRoot()
	if err != nil {
		return err
	}

	path, err := app.projects.Clone(context.Background(), source, dest, cloneGit, cwd)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Project '%s' cloned successfully\n", filepath.Base(path))
	return nil
}
