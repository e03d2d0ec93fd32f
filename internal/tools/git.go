package tools

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// StatusFlags are the three display hints shown next to each project. They
// are computed on demand and never persisted.
type StatusFlags struct {
	// Untracked: files exist outside version control and are not
	// exclude-listed.
	Untracked bool

	// Uncommitted: staged or unstaged differences from HEAD exist.
	Uncommitted bool

	// Unpushed: an upstream is configured and @{u}..HEAD is non-empty.
	Unpushed bool
}

// Git shells out to the configured git binary.
type Git struct {
	bin    string
	runner Runner
	logger *zap.Logger
}

// NewGit creates a git wrapper. Empty bin defaults to "git", nil runner to
// ExecRunner, nil logger to a no-op logger.
func NewGit(bin string, runner Runner, logger *zap.Logger) *Git {
	if bin == "" {
		bin = "git"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Git{bin: bin, runner: runner, logger: logger.Named("git")}
}

// IsRepo reports whether dir has version-control metadata. Worktrees keep a
// .git file rather than a directory, so only existence is checked.
func (g *Git) IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Status probes dir for the three status flags. Probing is fail-open: a
// binary that cannot run, a missing upstream, or any unexpected failure
// reads as false. Callers check IsRepo first; the probe itself reports
// false/false/false for a non-repo.
func (g *Git) Status(ctx context.Context, dir string) StatusFlags {
	var flags StatusFlags

	if out, err := g.runner.Output(ctx, dir, g.bin, "ls-files", "--others", "--exclude-standard"); err == nil {
		flags.Untracked = len(bytes.TrimSpace(out)) > 0
	}

	// diff --quiet exits non-zero when differences exist.
	_, unstagedErr := g.runner.Output(ctx, dir, g.bin, "diff", "--quiet")
	_, stagedErr := g.runner.Output(ctx, dir, g.bin, "diff", "--cached", "--quiet")
	flags.Uncommitted = exitedNonZero(unstagedErr) || exitedNonZero(stagedErr)

	if _, err := g.runner.Output(ctx, dir, g.bin, "rev-parse", "--abbrev-ref", "@{u}"); err == nil {
		if out, err := g.runner.Output(ctx, dir, g.bin, "log", "@{u}..HEAD", "--oneline"); err == nil {
			flags.Unpushed = len(bytes.TrimSpace(out)) > 0
		}
	}

	return flags
}

// Init initializes a repository in dir. Already-initialized directories are
// left alone.
func (g *Git) Init(ctx context.Context, dir string) error {
	if g.IsRepo(dir) {
		return nil
	}
	_, err := g.runner.Output(ctx, dir, g.bin, "init")
	return err
}

// Clone clones src into dest with the user's terminal attached so git's
// own progress output shows through.
func (g *Git) Clone(ctx context.Context, src, dest string) error {
	return g.runner.Run(ctx, "", g.bin, "clone", src, dest)
}

// CommitAll stages everything in dir and commits with message.
func (g *Git) CommitAll(ctx context.Context, dir, message string) error {
	if err := g.runner.Run(ctx, dir, g.bin, "add", "-A"); err != nil {
		return err
	}
	return g.runner.Run(ctx, dir, g.bin, "commit", "-m", message)
}

// PushUpstream pushes branch and sets origin as its upstream.
func (g *Git) PushUpstream(ctx context.Context, dir, branch string) error {
	return g.runner.Run(ctx, dir, g.bin, "push", "--set-upstream", "origin", branch)
}

// InsideWorkTree reports whether dir is inside a git work tree.
func (g *Git) InsideWorkTree(ctx context.Context, dir string) bool {
	_, err := g.runner.Output(ctx, dir, g.bin, "rev-parse", "--is-inside-work-tree")
	return err == nil
}
