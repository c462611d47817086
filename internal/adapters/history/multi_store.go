package history

import (
	"context"
	"fmt"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Stopper is implemented by stores that hold background resources
type Stopper interface {
	Stop()
}

// NamedStore pairs a store with the sink name it was configured under
type NamedStore struct {
	Name  string
	Store core.HistoryStore
}

// MultiStore fans one save out to every configured sink
type MultiStore struct {
	sinks  []NamedStore
	logger *zap.Logger
}

// NewMultiStore combines sinks into one store
func NewMultiStore(logger *zap.Logger, sinks ...NamedStore) *MultiStore {
	return &MultiStore{
		sinks:  sinks,
		logger: logger,
	}
}

// Save writes to every sink even when an earlier one fails and reports all
// failures together
func (m *MultiStore) Save(ctx context.Context, runID string, entries []core.HistoryEntry) error {
	var errs error
	for _, sink := range m.sinks {
		if err := sink.Store.Save(ctx, runID, entries); err != nil {
			m.logger.Error("History sink failed",
				zap.String("sink", sink.Name),
				zap.String("run_id", runID),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("sink %s: %w", sink.Name, err))
		}
	}
	return errs
}

// Sinks returns the configured sink names in order
func (m *MultiStore) Sinks() []string {
	names := make([]string, 0, len(m.sinks))
	for _, sink := range m.sinks {
		names = append(names, sink.Name)
	}
	return names
}

// Stop releases every sink that holds resources
func (m *MultiStore) Stop() {
	for _, sink := range m.sinks {
		if stopper, ok := sink.Store.(Stopper); ok {
			stopper.Stop()
		}
	}
}
