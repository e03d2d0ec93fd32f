package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	// restore command flags
	restoreDestination string
)

func init() {
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(archivesCmd)
	rootCmd.AddCommand(archiveRemoveCmd)
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().StringVarP(&restoreDestination, "destination", "d", "", "directory to restore into (defaults to the projects directory)")
}

var archiveCmd = &cobra.Command{
	Use:   "archive <name> [dest]",
	Short: "Archive a project",
	Long: `Zip a project into the archives directory and delete the live tree.

The project directory and its registry entry are removed once the archive
is written. An optional second argument stores the archive somewhere other
than the configured archives directory.

Examples:
  # Archive a project
  proj archive myapp

  # Archive into a specific directory
  proj archive myapp /mnt/backup`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runArchive,
}

var archivesCmd = &cobra.Command{
	Use:   "archives",
	Short: "List all archived projects",
	Long: `List the archives in the archives directory.

Examples:
  proj archives`,
	Args: cobra.NoArgs,
	RunE: runArchives,
}

var archiveRemoveCmd = &cobra.Command{
	Use:   "archive-remove <name>",
	Short: "Remove archived projects",
	Long: `Delete an archive by its full name, or every archive of a project when
given a bare project name.

Examples:
  # Remove one archive
  proj archive-remove myapp_20260812_143501

  # Remove all archives of a project
  proj archive-remove myapp`,
	Args: cobra.ExactArgs(1),
	RunE: runArchiveRemove,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Restore an archived project",
	Long: `Extract an archive back into a live project directory.

The archive is picked by its full name, or by project name in which case
the newest archive wins. The project is linked back into the projects
directory when it lands outside it.

Examples:
  # Restore the newest archive of a project
  proj restore myapp

  # Restore a specific archive somewhere else
  proj restore myapp_20260812_143501 --destination ~/work`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func runArchive(cmd *cobra.Command, args []string) error {
	name := args[0]
	dir := ""
	if len(args) == 2 {
		dir = args[1]
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

	path, err := app.archives(dir).Archive(name, cwd)
	if err != nil {
		return err
	}

	fmt.Printf("📦 Archived project '%s' to %s\n", name, path)
	return nil
}

func runArchives(cmd *cobra.Command, args []string) error {
	app, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	stems, err := app.archives("").List()
	if err != nil {
		return err
	}
	if len(stems) == 0 {
		fmt.Println("No archives found.")
		return nil
	}
	for _, stem := range stems {
		fmt.Printf("📦 %s\n", stem)
	}
	return nil
}

func runArchiveRemove(cmd *cobra.Command, args []string) error {
	app, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	removed, err := app.archives("").Remove(args[0])
	if err != nil {
		return err
	}
	for _, stem := range removed {
		fmt.Printf("🗑️  Removed archive '%s'\n", stem)
	}
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	app, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := app.archives("").Restore(args[0], restoreDestination)
	if err != nil {
		return err
	}

	if res.Linked {
		link := filepath.Join(app.registry.Dir(), filepath.Base(res.Path))
		fmt.Printf("🔗 Created symlink from '%s' → '%s'\n", link, res.Path)
	}
	fmt.Printf("✅ Restored archive '%s' to '%s'\n", res.Archive, res.Path)
	return nil
}
