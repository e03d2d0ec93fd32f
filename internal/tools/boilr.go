package tools

import "context"

// Boilr wraps the boilr template tool.
type Boilr struct {
	bin    string
	runner Runner
}

// NewBoilr creates a boilr wrapper. Empty bin defaults to "boilr", nil
// runner to ExecRunner.
func NewBoilr(bin string, runner Runner) *Boilr {
	if bin == "" {
		bin = "boilr"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Boilr{bin: bin, runner: runner}
}

// Use applies template into dir. When interactive is false, defaults is
// passed as the template's JSON answer data so boilr does not prompt.
func (b *Boilr) Use(ctx context.Context, dir, template, defaults string, interactive bool) error {
	args := []string{"template", "use", template, "."}
	if !interactive {
		args = append(args, "--use-defaults", "-d", defaults)
	}
	return b.runner.Run(ctx, dir, b.bin, args...)
}
