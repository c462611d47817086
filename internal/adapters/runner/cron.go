package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/support-triage/internal/ports"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronRunner executes triage runs on a cron schedule
type CronRunner struct {
	spec     string
	schedule cron.Schedule
	pipeline ports.Pipeline
	notifier ports.Notifier
	logger   *zap.Logger
	cron     *cron.Cron

	// running is held for the whole duration of a pass
	running sync.Mutex
}

// NewCronRunner creates a runner for a standard 5-field cron expression
func NewCronRunner(spec string, pipeline ports.Pipeline, notifier ports.Notifier, logger *zap.Logger) (*CronRunner, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	return &CronRunner{
		spec:     spec,
		schedule: schedule,
		pipeline: pipeline,
		notifier: notifier,
		logger:   logger,
		cron:     cron.New(),
	}, nil
}

// Run schedules the pipeline and blocks until ctx is canceled. A pass that
// is in flight at shutdown is allowed to finish.
func (r *CronRunner) Run(ctx context.Context) error {
	passCtx := context.WithoutCancel(ctx)

	if _, err := r.cron.AddFunc(r.spec, func() { r.tick(passCtx) }); err != nil {
		return fmt.Errorf("failed to schedule triage run: %w", err)
	}

	r.cron.Start()
	r.logger.Info("Triage scheduler started",
		zap.String("schedule", r.spec),
		zap.Time("next_run", r.schedule.Next(time.Now())))

	<-ctx.Done()

	r.logger.Info("Stopping triage scheduler")
	<-r.cron.Stop().Done()
	return nil
}

// tick runs one pass unless the previous one is still going
func (r *CronRunner) tick(ctx context.Context) {
	if !r.running.TryLock() {
		r.logger.Warn("Previous triage run still in progress, skipping")
		return
	}
	defer r.running.Unlock()

	if err := pass(ctx, r.pipeline, r.notifier, r.logger); err != nil {
		r.logger.Error("Scheduled triage run failed", zap.Error(err))
	}
}
