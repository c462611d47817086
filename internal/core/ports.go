package core

import (
	"context"
)

// LLMClient defines the interface for text completion models
type LLMClient interface {
	// Complete runs the prompt through the model and returns the raw completion
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

// Helpdesk defines the interface for the ticketing system
type Helpdesk interface {
	// FetchOpenTickets retrieves up to count open tickets
	FetchOpenTickets(ctx context.Context, count int) ([]*Ticket, error)

	// ApplyMacro returns the raw JSON body of a macro applied to a blank ticket
	ApplyMacro(ctx context.Context, macroID int64) ([]byte, error)

	// UpdateTicket submits a reply payload to a ticket and returns the HTTP status
	UpdateTicket(ctx context.Context, ticketID int64, payload *ReplyPayload) (int, error)
}

// HistoryStore defines the interface for exporting run history
type HistoryStore interface {
	// Save persists all entries of one run
	Save(ctx context.Context, runID string, entries []HistoryEntry) error
}
