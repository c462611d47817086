package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRecorderAppendsSnapshots(t *testing.T) {
	rec := NewHistoryRecorder(&stubStore{}, zaptest.NewLogger(t))
	ticket := newTicket(1, "a")
	ticket.Classify("RESEND_TICKET")
	output := NewTextCompletion("c1", "m", "RESEND_TICKET", "stop")

	entry := rec.Record(ticket, output, OutcomeReplied, 8140353174289, nil)
	ticket.Classify("CHANGED")
	rec.Record(newTicket(2, "b"), nil, OutcomeFailed, 0, errors.New("boom"))

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, entry, entries[0])
	assert.Equal(t, "RESEND_TICKET", *entries[0].Ticket.Classification)
	assert.Same(t, output, entries[0].ModelOutput)
	assert.Equal(t, "boom", entries[1].Error)
}

func TestRecorderEntriesIsACopy(t *testing.T) {
	rec := NewHistoryRecorder(&stubStore{}, zaptest.NewLogger(t))
	rec.Record(newTicket(1, "a"), nil, OutcomeUnhandled, 0, nil)

	entries := rec.Entries()
	entries[0].TicketID = 999

	assert.Equal(t, int64(1), rec.Entries()[0].TicketID)
}

func TestRecorderExportHandsOverEverything(t *testing.T) {
	store := &stubStore{}
	rec := NewHistoryRecorder(store, zaptest.NewLogger(t))
	rec.Record(newTicket(1, "a"), nil, OutcomeUnhandled, 0, nil)
	rec.Record(newTicket(2, "b"), nil, OutcomeUnhandled, 0, nil)

	require.NoError(t, rec.Export(context.Background(), "run-1"))

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, "run-1", store.runID)
	assert.Equal(t, rec.Entries(), store.entries)
}

func TestRecorderExportError(t *testing.T) {
	boom := errors.New("read-only fs")
	rec := NewHistoryRecorder(&stubStore{err: boom}, zaptest.NewLogger(t))

	err := rec.Export(context.Background(), "run-1")

	assert.ErrorIs(t, err, boom)
}
