// Package shellinit emits the shell integration snippet that lets `proj
// NAME` change the caller's working directory. A subprocess cannot cd its
// parent shell, so the snippet wraps the binary in a shell function and is
// meant to be eval'd from the user's rc file.
package shellinit

import (
	"fmt"
	"os"
	"strings"
)

// bashScript is the bash/zsh integration: a proj() function that jumps into
// a project directory (loading its .env) when the first argument names one,
// and passes everything else through to the binary. The two %s verbs take
// the projects directory.
const bashScript = `
proj() {
    # If no args, just call the CLI
    if [ $# -eq 0 ]; then
        command proj
        return
    fi

    local proj_name="$1"
    shift  # Remove the first arg

    local proj_dir="%s/$proj_name"

    if [ -d "$proj_dir" ]; then
        real_path=$(readlink -f "$proj_dir")
        cd "$real_path" || return
        # Optionally activate .env if it exists
        if [ -f ".env" ]; then
            set -a
            source ".env"
            set +a
        fi
        # Print status
        command proj list | grep "^$proj_name"
    else
        # Not a project dir, pass everything through
        command proj "$proj_name" "$@"
    fi
}

alias todo="proj todo"
alias projects="cd %s/"
`

// Detect names the shell that sourced us: $BASH and $ZSH_NAME identify
// their shells directly, otherwise the last path segment of $SHELL decides.
// An empty environment reads as bash.
func Detect() string {
	if _, ok := os.LookupEnv("BASH"); ok {
		return "bash"
	}
	if _, ok := os.LookupEnv("ZSH_NAME"); ok {
		return "zsh"
	}

	shell := os.Getenv("SHELL")
	if i := strings.LastIndex(shell, "/"); i >= 0 {
		shell = shell[i+1:]
	}
	if shell == "" {
		return "bash"
	}
	return shell
}

// Script returns the integration snippet for shell, with project jumps
// rooted at projectsDir. Fish needs no integration yet and gets an empty
// script; unrecognized shells get a line that tells the user so.
func Script(shell, projectsDir string) string {
	switch shell {
	case "bash", "zsh":
		return fmt.Sprintf(bashScript, projectsDir, projectsDir)
	case "fish":
		return ""
	default:
		return "echo Unsupported shell\n"
	}
}
