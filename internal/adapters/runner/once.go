package runner

import (
	"context"

	"github.com/mikey/support-triage/internal/ports"
	"go.uber.org/zap"
)

// OnceRunner executes a single triage run and returns
type OnceRunner struct {
	pipeline ports.Pipeline
	notifier ports.Notifier
	logger   *zap.Logger
}

// NewOnceRunner creates a runner for one-shot mode
func NewOnceRunner(pipeline ports.Pipeline, notifier ports.Notifier, logger *zap.Logger) *OnceRunner {
	return &OnceRunner{
		pipeline: pipeline,
		notifier: notifier,
		logger:   logger,
	}
}

// Run implements ports.Runner
func (r *OnceRunner) Run(ctx context.Context) error {
	r.logger.Info("Starting single triage run")
	return pass(ctx, r.pipeline, r.notifier, r.logger)
}
