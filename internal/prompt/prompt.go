// Package prompt provides the interactive question helpers that commands
// inject, so non-interactive runs and tests can script the answers.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Interactor asks the user questions.
type Interactor interface {
	// Confirm prints prompt and reports whether the answer was
	// affirmative (y or yes, case-insensitive). Anything else, including
	// empty input or a read failure, is false.
	Confirm(prompt string) bool

	// Choose prints header followed by a numbered option list, then asks
	// for a selection: a 1-based index or a case-insensitive option
	// name. Returns the option index and whether a valid choice was
	// made.
	Choose(header, ask string, options []string) (int, bool)
}

// Terminal is the Interactor backed by a terminal or any reader/writer
// pair.
type Terminal struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewTerminal creates a Terminal over the given streams.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{reader: bufio.NewReader(in), out: out}
}

// NewStdio creates a Terminal over the process's stdin and stdout.
func NewStdio() *Terminal {
	return NewTerminal(os.Stdin, os.Stdout)
}

func (t *Terminal) Confirm(prompt string) bool {
	fmt.Fprint(t.out, prompt)

	line, ok := t.readLine()
	if !ok {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

func (t *Terminal) Choose(header, ask string, options []string) (int, bool) {
	if len(options) == 0 {
		return 0, false
	}

	fmt.Fprintln(t.out, header)
	for i, opt := range options {
		fmt.Fprintf(t.out, "  %d. %s\n", i+1, opt)
	}
	fmt.Fprint(t.out, ask)

	line, ok := t.readLine()
	if !ok {
		return 0, false
	}

	if idx, err := strconv.Atoi(line); err == nil {
		if idx >= 1 && idx <= len(options) {
			return idx - 1, true
		}
		return 0, false
	}

	for i, opt := range options {
		if strings.EqualFold(opt, line) {
			return i, true
		}
	}
	return 0, false
}

// readLine reads one trimmed line. A read failure with no data reads as
// "no answer".
func (t *Terminal) readLine() (string, bool) {
	line, err := t.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
