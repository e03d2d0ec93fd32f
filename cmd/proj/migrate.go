package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// migrate command flags
	migrateDestination string
	migrateCopy        bool
	// remove command flags
	removeForce bool
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(removeCmd)

	migrateCmd.Flags().StringVarP(&migrateDestination, "destination", "d", "", "destination directory (defaults to the projects directory)")
	migrateCmd.Flags().BoolVarP(&migrateCopy, "copy", "c", false, "copy instead of move")

	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "skip the confirmation prompt")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <name>",
	Short: "Move a project to a destination directory",
	Long: `Move a project into a destination directory, keeping its name.

The project is resolved through the projects directory, falling back to a
same-named directory under the current one. A registry symlink left
dangling by the move is deleted.

Examples:
  # Move a project into the projects directory
  proj migrate myapp

  # Move it somewhere else
  proj migrate myapp --destination ~/work

  # Copy instead of moving
  proj migrate myapp --destination /mnt/backup --copy`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a project",
	Long: `Permanently delete a registered project and its registry entry.

Examples:
  # Remove with confirmation
  proj remove myapp

  # Remove without asking
  proj remove myapp --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	name := args[0]

	app, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	cwd, err := workRoot()
	if err != nil {
		return err
	}

	dest, err := app.projects.Migrate(name, migrateDestination, migrateCopy, cwd)
	if err != nil {
		return err
	}

	if migrateCopy {
		fmt.Printf("✅ Project '%s' copied to '%s'\n", name, dest)
	} else {
		fmt.Printf("✅ Project '%s' migrated to '%s'\n", name, dest)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	app, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := app.projects.Remove(name, removeForce)
	if err != nil {
		return err
	}
	if !res.Removed {
		fmt.Printf("❎ Aborted removal of '%s'\n", name)
		return nil
	}

	if res.UnlinkedEntry != "" {
		fmt.Printf("🔗 Removed symlink '%s'\n", res.UnlinkedEntry)
	}
	fmt.Printf("🗑️  Project '%s' removed successfully\n", name)
	return nil
}
