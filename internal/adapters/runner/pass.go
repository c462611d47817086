package runner

import (
	"context"

	"github.com/mikey/support-triage/internal/ports"
	"go.uber.org/zap"
)

// pass runs the pipeline once and hands any report to the notifier.
// Notification failures are logged and never fail the pass.
func pass(ctx context.Context, pipeline ports.Pipeline, notifier ports.Notifier, logger *zap.Logger) error {
	report, err := pipeline.Run(ctx)
	if report != nil && notifier != nil {
		if notifyErr := notifier.Notify(ctx, report); notifyErr != nil {
			logger.Warn("Failed to deliver run summary",
				zap.String("run_id", report.RunID),
				zap.Error(notifyErr))
		}
	}
	return err
}
