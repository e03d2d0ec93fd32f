// Package lifecycle implements the project lifecycle operations: initialize,
// create, migrate, remove, and clone. It orchestrates the manifest, registry,
// template, and external-tool layers and prints user-facing progress lines to
// an injected writer so they interleave correctly with subprocess output.
package lifecycle

import (
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/proj/internal/prompt"
	"github.com/fyrsmithlabs/proj/internal/registry"
	"github.com/fyrsmithlabs/proj/internal/template"
	"github.com/fyrsmithlabs/proj/internal/tools"
)

// Deps are the collaborators a lifecycle service drives.
type Deps struct {
	Registry  *registry.Registry
	Git       *tools.Git
	GH        *tools.GH
	Templates *template.Store
	Ask       prompt.Interactor

	// Out receives user-facing progress lines. Defaults to stdout.
	Out io.Writer
}

// Service coordinates project lifecycle operations.
type Service struct {
	registry  *registry.Registry
	git       *tools.Git
	gh        *tools.GH
	templates *template.Store
	ask       prompt.Interactor
	out       io.Writer
	logger    *zap.Logger
}

// NewService creates a lifecycle service. A nil logger disables logging.
func NewService(deps Deps, logger *zap.Logger) (*Service, error) {
	if deps.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if deps.Git == nil {
		return nil, errors.New("git wrapper is required")
	}
	if deps.GH == nil {
		return nil, errors.New("gh wrapper is required")
	}
	if deps.Templates == nil {
		return nil, errors.New("template store is required")
	}
	if deps.Ask == nil {
		return nil, errors.New("interactor is required")
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		registry:  deps.Registry,
		git:       deps.Git,
		gh:        deps.GH,
		templates: deps.Templates,
		ask:       deps.Ask,
		out:       deps.Out,
		logger:    logger.Named("lifecycle"),
	}, nil
}
