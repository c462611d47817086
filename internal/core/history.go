package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// HistoryRecorder accumulates the audit trail of one run
type HistoryRecorder struct {
	store   HistoryStore
	logger  *zap.Logger
	entries []HistoryEntry
}

// NewHistoryRecorder creates a recorder that exports to store
func NewHistoryRecorder(store HistoryStore, logger *zap.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		store:  store,
		logger: logger,
	}
}

// Record appends one entry holding a snapshot of the ticket
func (h *HistoryRecorder) Record(ticket *Ticket, output *Completion, outcome Outcome, macroID int64, err error) HistoryEntry {
	entry := HistoryEntry{
		TicketID:    ticket.ID,
		Ticket:      ticket.Snapshot(),
		ModelOutput: output,
		Outcome:     outcome,
		MacroID:     macroID,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	h.entries = append(h.entries, entry)
	return entry
}

// Entries returns a copy of the recorded entries in append order
func (h *HistoryRecorder) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Export writes the whole history in one call
func (h *HistoryRecorder) Export(ctx context.Context, runID string) error {
	if err := h.store.Save(ctx, runID, h.Entries()); err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}

	h.logger.Info("History exported",
		zap.String("run_id", runID),
		zap.Int("entries", len(h.entries)))
	return nil
}
