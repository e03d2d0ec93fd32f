package shellinit

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// clearShellEnv unsets the shell-identifying variables for the duration of
// the test. t.Setenv registers the restore, os.Unsetenv does the clearing.
func clearShellEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{"BASH", "ZSH_NAME", "SHELL"} {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "bash variable wins",
			env:  map[string]string{"BASH": "/bin/bash", "SHELL": "/bin/fish"},
			want: "bash",
		},
		{
			name: "zsh variable wins over SHELL",
			env:  map[string]string{"ZSH_NAME": "zsh", "SHELL": "/bin/fish"},
			want: "zsh",
		},
		{
			name: "SHELL basename",
			env:  map[string]string{"SHELL": "/usr/local/bin/fish"},
			want: "fish",
		},
		{
			name: "SHELL without slashes",
			env:  map[string]string{"SHELL": "dash"},
			want: "dash",
		},
		{
			name: "empty environment falls back to bash",
			env:  nil,
			want: "bash",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearShellEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, Detect())
		})
	}
}

func TestScript_BashAndZsh(t *testing.T) {
	for _, shell := range []string{"bash", "zsh"} {
		script := Script(shell, "/home/kit/projects")

		assert.Contains(t, script, "proj() {")
		assert.Contains(t, script, `local proj_dir="/home/kit/projects/$proj_name"`)
		assert.Contains(t, script, `source ".env"`)
		assert.Contains(t, script, `command proj "$proj_name" "$@"`)
		assert.Contains(t, script, `alias todo="proj todo"`)
		assert.Contains(t, script, `alias projects="cd /home/kit/projects/"`)
		assert.False(t, strings.Contains(script, "%s"), "all placeholders must be filled")
	}
}

func TestScript_Fish(t *testing.T) {
	assert.Equal(t, "", Script("fish", "/home/kit/projects"))
}

func TestScript_Unsupported(t *testing.T) {
	assert.Equal(t, "echo Unsupported shell\n", Script("tcsh", "/home/kit/projects"))
}
