package history

import (
	"context"
	"errors"
	"sync"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// ErrRunNotFound is returned when a run has no stored history
var ErrRunNotFound = errors.New("history run not found")

// DefaultMemoryRuns is how many runs a MemoryStore keeps when unset
const DefaultMemoryRuns = 16

// MemoryStore is an in-memory implementation of the HistoryStore interface
// that keeps the most recent runs
type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string][]core.HistoryEntry
	order   []string
	maxRuns int
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory store holding up to maxRuns runs
func NewMemoryStore(logger *zap.Logger, maxRuns int) *MemoryStore {
	if maxRuns <= 0 {
		maxRuns = DefaultMemoryRuns
	}
	return &MemoryStore{
		runs:    make(map[string][]core.HistoryEntry),
		maxRuns: maxRuns,
		logger:  logger,
	}
}

// Save stores a copy of entries under runID, evicting the oldest run when full
func (s *MemoryStore) Save(_ context.Context, runID string, entries []core.HistoryEntry) error {
	stored := make([]core.HistoryEntry, len(entries))
	copy(stored, entries)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; !exists {
		s.order = append(s.order, runID)
	}
	s.runs[runID] = stored

	for len(s.order) > s.maxRuns {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, evicted)
		s.logger.Debug("Evicted history run from memory", zap.String("run_id", evicted))
	}
	return nil
}

// Run returns the entries stored for runID
func (s *MemoryStore) Run(_ context.Context, runID string) ([]core.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	out := make([]core.HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// RunIDs returns the stored run IDs, oldest first
func (s *MemoryStore) RunIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
