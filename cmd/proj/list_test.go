package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/proj/internal/tools"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name       string
		completion float64
		filled     int
	}{
		{name: "empty", completion: 0, filled: 0},
		{name: "half", completion: 0.5, filled: 10},
		{name: "full", completion: 1, filled: 20},
		{name: "rounds up", completion: 0.33, filled: 7},
		{name: "clamps negative", completion: -0.4, filled: 0},
		{name: "clamps above one", completion: 1.5, filled: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := progressBar(tt.completion)
			assert.Equal(t, tt.filled, strings.Count(bar, "█"))
			assert.Equal(t, barWidth-tt.filled, strings.Count(bar, "░"))
		})
	}
}

func TestRenderFlags(t *testing.T) {
	assert.Empty(t, renderFlags(tools.StatusFlags{}))

	all := renderFlags(tools.StatusFlags{Untracked: true, Uncommitted: true, Unpushed: true})
	plusAt := strings.Index(all, "+")
	cAt := strings.Index(all, "c")
	caretAt := strings.Index(all, "^")
	assert.GreaterOrEqual(t, plusAt, 0)
	assert.Greater(t, cAt, plusAt)
	assert.Greater(t, caretAt, cAt)

	assert.Contains(t, renderFlags(tools.StatusFlags{Uncommitted: true}), "c")
	assert.NotContains(t, renderFlags(tools.StatusFlags{Uncommitted: true}), "+")
}

func TestStatusFlagString_NonVersionedDir(t *testing.T) {
	git := tools.NewGit("git", nil, nil)
	assert.Empty(t, statusFlagString(git, t.TempDir()))
}
