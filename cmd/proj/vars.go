package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/proj/internal/manifest"
	"github.com/fyrsmithlabs/proj/internal/project"
)

func init() {
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(getCmd)
}

var setCmd = &cobra.Command{
	Use:   "set KEY=value [KEY=value ...]",
	Short: "Set project variables",
	Long: `Set variables in the current directory's project manifest.

Values are stored as strings, except completion which is stored as a float
when it parses as one.

Examples:
  # Update progress
  proj set completion=0.75

  # Set several keys at once
  proj set status=archived description="Old prototype"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSet,
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a project variable",
	Long: `Print a variable from the current directory's project manifest.

Examples:
  proj get version
  proj get completion`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runSet(cmd *cobra.Command, args []string) error {
	vars, err := parseVars(args)
	if err != nil {
		return err
	}

	root, err := workRoot()
	if err != nil {
		return err
	}

	m, err := manifest.Load(root)
	if err != nil {
		return err
	}
	for _, kv := range vars {
		m.Set(kv.Key, kv.Value)
	}
	if err := m.Save(root); err != nil {
		return err
	}

	fmt.Println("✅ Updated project.json")
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	root, err := workRoot()
	if err != nil {
		return err
	}

	m, err := manifest.Load(root)
	if err != nil {
		return err
	}

	value, ok := m.Get(args[0])
	if !ok {
		return fmt.Errorf("key '%s' not found: %w", args[0], project.ErrNotFound)
	}

	// JSON form so strings print quoted and null prints as null.
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	fmt.Println(string(raw))
	return nil
}
