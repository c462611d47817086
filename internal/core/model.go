package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Category is a classification label produced by the model
type Category string

const (
	// CategoryResendTicket covers customers who lost their ticket confirmation mail
	CategoryResendTicket Category = "RESEND_TICKET"
	// CategoryDeleteAccount covers account and personal data deletion requests
	CategoryDeleteAccount Category = "DELETE_ACCOUNT"
)

// Ticket represents a support ticket and its classification
type Ticket struct {
	ID             int64
	CustomerEmail  string
	Status         string
	Subject        string
	Description    string
	Classification *string
}

// TicketSnapshot is a detached copy of a ticket as written to history
type TicketSnapshot struct {
	TicketID       int64   `json:"ticket_id"`
	CustomerEmail  string  `json:"customer_email"`
	Status         string  `json:"status"`
	Subject        string  `json:"subject"`
	Description    string  `json:"description"`
	Classification *string `json:"classification"`
}

// Classify sets the classification label
func (t *Ticket) Classify(label string) {
	t.Classification = &label
}

// ClassificationLabel returns the label or an empty string when unclassified
func (t *Ticket) ClassificationLabel() string {
	if t.Classification == nil {
		return ""
	}
	return *t.Classification
}

// Snapshot copies every field of the ticket. Later changes to the ticket
// are not reflected in the snapshot.
func (t *Ticket) Snapshot() TicketSnapshot {
	s := TicketSnapshot{
		TicketID:      t.ID,
		CustomerEmail: t.CustomerEmail,
		Status:        t.Status,
		Subject:       t.Subject,
		Description:   t.Description,
	}
	if t.Classification != nil {
		label := *t.Classification
		s.Classification = &label
	}
	return s
}

// AsMap returns the dictionary form of the snapshot
func (s TicketSnapshot) AsMap() map[string]interface{} {
	var classification interface{}
	if s.Classification != nil {
		classification = *s.Classification
	}
	return map[string]interface{}{
		"ticket_id":      s.TicketID,
		"customer_email": s.CustomerEmail,
		"status":         s.Status,
		"subject":        s.Subject,
		"description":    s.Description,
		"classification": classification,
	}
}

// MacroTable maps classification labels to helpdesk macro identifiers
type MacroTable map[Category]int64

// DefaultMacros is the built-in category to macro table
var DefaultMacros = MacroTable{
	CategoryResendTicket:  8140353174289,
	CategoryDeleteAccount: 8147065642385,
}

// Lookup returns the macro for a label
func (m MacroTable) Lookup(label string) (int64, bool) {
	id, ok := m[Category(label)]
	return id, ok
}

// NewMacroTable returns the default table with the given overrides applied
func NewMacroTable(overrides map[string]int64) MacroTable {
	table := make(MacroTable, len(DefaultMacros)+len(overrides))
	for category, id := range DefaultMacros {
		table[category] = id
	}
	for label, id := range overrides {
		table[Category(label)] = id
	}
	return table
}

// CompletionChoice is one generated alternative
type CompletionChoice struct {
	Text         string `json:"text"`
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
}

// CompletionUsage reports token accounting when the provider returns it
type CompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the raw output of a text completion call
type Completion struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   CompletionUsage    `json:"usage"`
}

// Text returns the text of the first choice
func (c *Completion) Text() string {
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Text
}

// NewTextCompletion wraps plain generated text into a completion
func NewTextCompletion(id, model, text, finishReason string) *Completion {
	return &Completion{
		ID:      id,
		Object:  "text_completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []CompletionChoice{{Text: text, Index: 0, FinishReason: finishReason}},
	}
}

// Outcome is what the pipeline did with one ticket
type Outcome string

const (
	OutcomeReplied   Outcome = "replied"
	OutcomeUnhandled Outcome = "unhandled"
	OutcomeExcluded  Outcome = "excluded"
	OutcomeFailed    Outcome = "failed"
)

// HistoryEntry pairs a ticket snapshot with the raw model output
type HistoryEntry struct {
	TicketID    int64
	Ticket      TicketSnapshot
	ModelOutput *Completion
	Outcome     Outcome
	MacroID     int64
	Error       string
}

type historyRecord struct {
	SupportTicket TicketSnapshot `json:"support_ticket"`
	LlamaOutput   *Completion    `json:"llama_output"`
	Outcome       Outcome        `json:"outcome"`
	MacroID       int64          `json:"macro_id,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// MarshalJSON writes the entry as an object keyed by the ticket identifier
func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]historyRecord{
		strconv.FormatInt(e.TicketID, 10): {
			SupportTicket: e.Ticket,
			LlamaOutput:   e.ModelOutput,
			Outcome:       e.Outcome,
			MacroID:       e.MacroID,
			Error:         e.Error,
		},
	})
}

// UnmarshalJSON reads an entry written by MarshalJSON
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var keyed map[string]historyRecord
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	if len(keyed) != 1 {
		return fmt.Errorf("history entry must have exactly one ticket key, got %d", len(keyed))
	}
	for key, record := range keyed {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ticket key %q: %w", key, err)
		}
		*e = HistoryEntry{
			TicketID:    id,
			Ticket:      record.SupportTicket,
			ModelOutput: record.LlamaOutput,
			Outcome:     record.Outcome,
			MacroID:     record.MacroID,
			Error:       record.Error,
		}
	}
	return nil
}

// TicketResult is the per-ticket result of a run
type TicketResult struct {
	Ticket  *Ticket
	Outcome Outcome
	MacroID int64
	Err     error
}

// RunReport summarizes one triage run
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []TicketResult
}

// Counts returns the number of tickets per outcome
func (r *RunReport) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, result := range r.Results {
		counts[result.Outcome]++
	}
	return counts
}

// Duration returns how long the run took
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
