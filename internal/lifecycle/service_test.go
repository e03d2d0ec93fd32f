package lifecycle

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/proj/internal/registry"
	"github.com/fyrsmithlabs/proj/internal/template"
	"github.com/fyrsmithlabs/proj/internal/tools"
)

// scriptedPrompt answers Confirm from a queue (empty means no) and Choose
// with a fixed selection. Every prompt string shown is recorded.
type scriptedPrompt struct {
	confirms []bool
	prompts  []string
	choice   int
	chooseOK bool
}

func (p *scriptedPrompt) Confirm(prompt string) bool {
	p.prompts = append(p.prompts, prompt)
	if len(p.confirms) == 0 {
		return false
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer
}

func (p *scriptedPrompt) Choose(header, ask string, options []string) (int, bool) {
	return p.choice, p.chooseOK
}

// recordingRunner records every command instead of executing it. Tools
// listed in errs fail with the configured error.
type recordingRunner struct {
	calls [][]string
	dirs  []string
	errs  map[string]error
}

func (r *recordingRunner) record(dir, name string, args []string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	r.dirs = append(r.dirs, dir)
	return r.errs[name]
}

func (r *recordingRunner) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return nil, r.record(dir, name, args)
}

func (r *recordingRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	return r.record(dir, name, args)
}

// callsTo filters recorded calls down to one binary.
func (r *recordingRunner) callsTo(name string) [][]string {
	var out [][]string
	for _, call := range r.calls {
		if call[0] == name {
			out = append(out, call)
		}
	}
	return out
}

// newTestService wires a lifecycle service against the given fakes, with a
// registry and template directory under a fresh temporary home.
func newTestService(t *testing.T, runner tools.Runner, ask *scriptedPrompt) (*Service, *registry.Registry, string, *bytes.Buffer) {
	t.Helper()

	home := t.TempDir()
	reg := registry.New(filepath.Join(home, "projects"), nil)
	require.NoError(t, reg.Ensure())

	templates := template.NewStore(
		filepath.Join(home, "templates"),
		tools.NewBoilr("boilr", runner),
		ask,
		io.Discard,
		nil,
	)

	var out bytes.Buffer
	svc, err := NewService(Deps{
		Registry:  reg,
		Git:       tools.NewGit("git", runner, nil),
		GH:        tools.NewGH("gh", runner),
		Templates: templates,
		Ask:       ask,
		Out:       &out,
	}, nil)
	require.NoError(t, err)

	return svc, reg, home, &out
}

func TestNewService_RequiresDeps(t *testing.T) {
	runner := &recordingRunner{}
	deps := Deps{
		Registry:  registry.New(t.TempDir(), nil),
		Git:       tools.NewGit("git", runner, nil),
		GH:        tools.NewGH("gh", runner),
		Templates: template.NewStore(t.TempDir(), tools.NewBoilr("boilr", runner), &scriptedPrompt{}, io.Discard, nil),
		Ask:       &scriptedPrompt{},
	}

	svc, err := NewService(deps, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)

	for name, broken := range map[string]func(Deps) Deps{
		"registry":  func(d Deps) Deps { d.Registry = nil; return d },
		"git":       func(d Deps) Deps { d.Git = nil; return d },
		"gh":        func(d Deps) Deps { d.GH = nil; return d },
		"templates": func(d Deps) Deps { d.Templates = nil; return d },
		"ask":       func(d Deps) Deps { d.Ask = nil; return d },
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewService(broken(deps), nil)
			assert.Error(t, err)
		})
	}
}

func TestParseKeyValue(t *testing.T) {
	kv, err := ParseKeyValue("status=paused")
	require.NoError(t, err)
	assert.Equal(t, KeyValue{Key: "status", Value: "paused"}, kv)

	kv, err = ParseKeyValue("description=a=b=c")
	require.NoError(t, err)
	assert.Equal(t, "a=b=c", kv.Value)

	kv, err = ParseKeyValue("completion=")
	require.NoError(t, err)
	assert.Equal(t, "", kv.Value)

	_, err = ParseKeyValue("nodelimiter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no `=` found in `nodelimiter`")
}
