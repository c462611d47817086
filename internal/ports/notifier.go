package ports

import (
	"context"

	"github.com/mikey/support-triage/internal/core"
)

// Notifier publishes the summary of a finished run
type Notifier interface {
	// Name identifies the notifier in logs
	Name() string

	// Notify sends the report
	Notify(ctx context.Context, report *core.RunReport) error
}
