package ports

import (
	"context"

	"github.com/mikey/support-triage/internal/core"
)

// Pipeline performs one complete triage run
type Pipeline interface {
	Run(ctx context.Context) (*core.RunReport, error)
}

// Runner decides when the pipeline runs
type Runner interface {
	// Run blocks until the runner is finished or ctx is canceled
	Run(ctx context.Context) error
}
