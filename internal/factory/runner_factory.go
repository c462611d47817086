package factory

import (
	"fmt"

	"github.com/mikey/support-triage/internal/adapters/runner"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/ports"
	"go.uber.org/zap"
)

// RunnerFactory creates runners based on configuration
type RunnerFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	pipeline ports.Pipeline
	notifier ports.Notifier
}

// NewRunnerFactory creates a new runner factory
func NewRunnerFactory(cfg *config.Config, logger *zap.Logger, pipeline ports.Pipeline, notifier ports.Notifier) *RunnerFactory {
	return &RunnerFactory{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline,
		notifier: notifier,
	}
}

// CreateRunner creates a runner for the configured schedule mode
func (f *RunnerFactory) CreateRunner() (ports.Runner, error) {
	schedule := f.cfg.GetSchedule()

	switch schedule.Mode {
	case "once", "":
		return runner.NewOnceRunner(f.pipeline, f.notifier, f.logger), nil
	case "cron":
		return runner.NewCronRunner(schedule.Cron, f.pipeline, f.notifier, f.logger)
	default:
		return nil, fmt.Errorf("unsupported schedule mode: %s", schedule.Mode)
	}
}
