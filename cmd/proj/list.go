package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/discovery"
	"github.com/fyrsmithlabs/proj/internal/manifest"
	"github.com/fyrsmithlabs/proj/internal/tools"
)

var (
	// list command flags
	listStatus   string
	listProgress bool
)

var (
	flagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	barLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	barMid    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	barHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "active", `filter by status ("all" disables the filter)`)
	listCmd.Flags().BoolVarP(&listProgress, "progress", "p", false, "show progress bars")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Long: `List projects found beneath the current directory and the projects
directory, annotated with git status flags:

  +  untracked files
  c  uncommitted changes
  ^  unpushed commits

Examples:
  # List active projects
  proj list

  # List everything regardless of status
  proj list --status all

  # Show completion as a progress bar
  proj list --progress`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
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
	found := app.scanner.Discover(roots, discovery.NewSeen(), discovery.ListOptions())
	for _, path := range found {
		m, err := manifest.Load(path)
		if err != nil {
			app.logger.Debug("skipping unreadable manifest",
				zap.String("path", path), zap.Error(err))
			continue
		}

		status := m.Status()
		if status == "" {
			status = "active"
		}
		if listStatus != "all" && status != listStatus {
			continue
		}

		name := filepath.Base(path)
		completion := m.Completion()
		flags := statusFlagString(app.git, path)

		if listProgress {
			fmt.Printf("%s %s [%s] %.0f%%\n", name, flags, progressBar(completion), completion*100)
		} else {
			fmt.Printf("%s %s (status: %s, completion: %.0f%%)\n", name, flags, status, completion*100)
		}
	}
	return nil
}

// statusFlagString probes dir and renders its git status flags.
// Directories without version control render empty.
func statusFlagString(git *tools.Git, dir string) string {
	if !git.IsRepo(dir) {
		return ""
	}
	return renderFlags(git.Status(context.Background(), dir))
}

// renderFlags renders the status markers, each in red.
func renderFlags(flags tools.StatusFlags) string {
	var b strings.Builder
	if flags.Untracked {
		b.WriteString(flagStyle.Render("+"))
	}
	if flags.Uncommitted {
		b.WriteString(flagStyle.Render("c"))
	}
	if flags.Unpushed {
		b.WriteString(flagStyle.Render("^"))
	}
	return b.String()
}

const barWidth = 20

// progressBar renders completion as a fixed-width bar, red below a third,
// yellow below two thirds, green above. Out-of-range values are clamped.
func progressBar(completion float64) string {
	completion = math.Max(0, math.Min(1, completion))
	filled := int(math.Round(completion * barWidth))

	style := barLow
	switch {
	case completion >= 0.66:
		style = barHigh
	case completion >= 0.33:
		style = barMid
	}
	return style.Render(strings.Repeat("█", filled)) + strings.Repeat("░", barWidth-filled)
}
