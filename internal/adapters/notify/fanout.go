package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/ports"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Fanout delivers a report to several notifiers at once
type Fanout struct {
	notifiers []ports.Notifier
	logger    *zap.Logger
}

// NewFanout combines notifiers into one
func NewFanout(logger *zap.Logger, notifiers ...ports.Notifier) *Fanout {
	return &Fanout{
		notifiers: notifiers,
		logger:    logger,
	}
}

// Name implements ports.Notifier
func (f *Fanout) Name() string {
	return "fanout"
}

// Notify sends the report to every notifier and waits for all of them
func (f *Fanout) Notify(ctx context.Context, report *core.RunReport) error {
	var (
		wg   conc.WaitGroup
		mu   sync.Mutex
		errs error
	)

	for _, notifier := range f.notifiers {
		notifier := notifier
		wg.Go(func() {
			if err := notifier.Notify(ctx, report); err != nil {
				f.logger.Error("Notifier failed",
					zap.String("notifier", notifier.Name()),
					zap.String("run_id", report.RunID),
					zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	return errs
}
