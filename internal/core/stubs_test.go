package core

import (
	"context"
	"errors"
	"sync"
)

type stubLLM struct {
	labels  []string
	errAt   map[int]error
	prompts []string
}

func (s *stubLLM) Complete(_ context.Context, prompt string) (*Completion, error) {
	idx := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if err, ok := s.errAt[idx]; ok {
		return nil, err
	}
	if len(s.labels) == 0 {
		return nil, errors.New("no label configured")
	}
	label := s.labels[len(s.labels)-1]
	if idx < len(s.labels) {
		label = s.labels[idx]
	}
	return NewTextCompletion("cmpl-test", "stub-model", label, "stop"), nil
}

type updateCall struct {
	ticketID int64
	payload  *ReplyPayload
}

type stubHelpdesk struct {
	tickets    []*Ticket
	fetchErr   error
	macroBody  []byte
	macroErr   error
	updateErr  error
	macroCalls []int64
	updates    []updateCall
	onUpdate   func()
}

func (s *stubHelpdesk) FetchOpenTickets(_ context.Context, count int) ([]*Ticket, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.tickets) > count {
		return s.tickets[:count], nil
	}
	return s.tickets, nil
}

func (s *stubHelpdesk) ApplyMacro(_ context.Context, macroID int64) ([]byte, error) {
	s.macroCalls = append(s.macroCalls, macroID)
	return s.macroBody, s.macroErr
}

func (s *stubHelpdesk) UpdateTicket(_ context.Context, ticketID int64, payload *ReplyPayload) (int, error) {
	s.updates = append(s.updates, updateCall{ticketID: ticketID, payload: payload})
	if s.onUpdate != nil {
		s.onUpdate()
	}
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	return 200, nil
}

type stubStore struct {
	mu      sync.Mutex
	runID   string
	entries []HistoryEntry
	calls   int
	err     error
}

func (s *stubStore) Save(ctx context.Context, runID string, entries []HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	s.runID = runID
	s.entries = entries
	return s.err
}

type stubExclusions map[string]bool

func (s stubExclusions) IsExcluded(email string) bool {
	return s[email]
}

const validMacroBody = `{"result":{"ticket":{"comment":{"html_body":"<p>Ihre Tickets</p>","public":true}}}}`

func newTicket(id int64, description string) *Ticket {
	return &Ticket{
		ID:            id,
		CustomerEmail: "kunde@example.com",
		Status:        "open",
		Subject:       "Tickets",
		Description:   description,
	}
}
