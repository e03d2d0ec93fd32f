package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/discovery"
)

var (
	// scan command flags
	scanRecursive bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", false, "descend into subdirectories")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for projects",
	Long: `Scan the current directory and the projects directory for projects.

A project reachable both directly and through a registry symlink is
reported once.

Examples:
  # Report projects directly beneath the current directory
  proj scan

  # Walk the whole tree
  proj scan --recursive`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	app, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := app.registry.Ensure(); err != nil {
		app.logger.Warn("failed to create projects directory", zap.Error(err))
	}

	cwd, err := workRoot()
	if err != nil {
		return err
	}

	roots := []string{cwd, app.registry.Dir()}
	found := app.scanner.Discover(roots, discovery.NewSeen(), discovery.ScanOptions(scanRecursive))
	for _, path := range found {
		fmt.Printf("Found project: %s\n", filepath.Base(path))
	}
	return nil
}
