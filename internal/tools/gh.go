package tools

import "context"

// GH wraps the GitHub CLI.
type GH struct {
	bin    string
	runner Runner
}

// NewGH creates a gh wrapper. Empty bin defaults to "gh", nil runner to
// ExecRunner.
func NewGH(bin string, runner Runner) *GH {
	if bin == "" {
		bin = "gh"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &GH{bin: bin, runner: runner}
}

// CreateRepo launches `gh repo create` in dir with the terminal attached;
// gh's own wizard drives the repository setup and initial push.
func (g *GH) CreateRepo(ctx context.Context, dir string) error {
	return g.runner.Run(ctx, dir, g.bin, "repo", "create")
}
