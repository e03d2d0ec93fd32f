// Package tools shells out to the external binaries proj depends on (git,
// gh, boilr) and reads repository metadata through go-git.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/fyrsmithlabs/proj/internal/project"
)

// Runner executes external binaries. It exists so command execution can be
// faked in tests.
type Runner interface {
	// Output runs the command in dir and returns its combined output.
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)

	// Run executes the command in dir with the user's terminal attached,
	// for tools that prompt or print progress.
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs commands via os/exec. Non-zero exits are reported as
// *project.ToolError so callers can distinguish "ran and failed" from
// "could not run".
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, wrapRunError(name, err)
	}
	return out, nil
}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return wrapRunError(name, err)
	}
	return nil
}

func wrapRunError(name string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &project.ToolError{Tool: name, ExitCode: exitErr.ExitCode()}
	}
	return fmt.Errorf("failed to run %s: %w", name, err)
}

// exitedNonZero reports whether err is a clean non-zero exit rather than a
// failure to launch the binary at all.
func exitedNonZero(err error) bool {
	return errors.Is(err, project.ErrExternalTool)
}
