// Package project defines the error taxonomy shared by every project
// operation.
package project

import (
	"errors"
	"fmt"
)

// Error kinds wrapped by commands with operation context, so callers can
// branch on the kind via errors.Is while users see a message naming the
// failing operation.
var (
	ErrNotFound     = errors.New("project not found")
	ErrConflict     = errors.New("destination already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrExternalTool = errors.New("external tool failed")
)

// ToolError reports a non-zero exit from an invoked external binary,
// carrying the exit code for display. It unwraps to ErrExternalTool.
type ToolError struct {
	Tool     string
	ExitCode int
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

func (e *ToolError) Unwrap() error { return ErrExternalTool }
