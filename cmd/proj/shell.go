package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/proj/internal/config"
	"github.com/fyrsmithlabs/proj/internal/shellinit"
)

func init() {
	rootCmd.AddCommand(initshellCmd)
}

var initshellCmd = &cobra.Command{
	Use:   "initshell",
	Short: "Print shell integration code",
	Long: `Print a shell function that makes "proj <name>" jump into a project,
source its .env, and show its status. The shell is detected from the
environment.

Add to your shell rc file:
  eval "$(proj initshell)"`,
	Args: cobra.NoArgs,
	RunE: runInitshell,
}

func runInitshell(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFile(cfgFile)
	if err != nil {
		return err
	}

	fmt.Println(shellinit.Script(shellinit.Detect(), cfg.Paths.ProjectsDir))
	return nil
}
