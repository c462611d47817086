package notify

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mikey/support-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sampleReport() *core.RunReport {
	resend := &core.Ticket{ID: 1}
	resend.Classify("RESEND_TICKET")
	other := &core.Ticket{ID: 2}
	other.Classify("OTHER")

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &core.RunReport{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Results: []core.TicketResult{
			{Ticket: resend, Outcome: core.OutcomeReplied, MacroID: 8140353174289},
			{Ticket: other, Outcome: core.OutcomeUnhandled},
			{Ticket: &core.Ticket{ID: 3}, Outcome: core.OutcomeFailed, Err: errors.New("model unavailable")},
		},
	}
}

func TestConsoleNotifierSummary(t *testing.T) {
	var out bytes.Buffer
	n := NewConsoleNotifierTo(&out, zaptest.NewLogger(t), false)

	require.NoError(t, n.Notify(context.Background(), sampleReport()))

	assert.Contains(t, out.String(), "=== Triage Run run-1 ===")
	assert.Contains(t, out.String(), "Replied: 1  Unhandled: 1  Excluded: 0  Failed: 1")
	assert.NotContains(t, out.String(), "=== Tickets ===")
}

func TestConsoleNotifierVerboseTable(t *testing.T) {
	var out bytes.Buffer
	n := NewConsoleNotifierTo(&out, zaptest.NewLogger(t), true)

	require.NoError(t, n.Notify(context.Background(), sampleReport()))

	assert.Contains(t, out.String(), "RESEND_TICKET")
	assert.Contains(t, out.String(), "8140353174289")
	assert.Contains(t, out.String(), "model unavailable")
}

func TestFormatSummary(t *testing.T) {
	text := FormatSummary(sampleReport())

	assert.Contains(t, text, "`run-1`")
	assert.Contains(t, text, "3 tickets in 3s")
	assert.Contains(t, text, "replied: 1 | unhandled: 1 | excluded: 0 | failed: 1")
	assert.Contains(t, text, "ticket 3: model unavailable")
}

func TestSlackNotifierPostsSummary(t *testing.T) {
	var posted atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "C123", r.PostForm.Get("channel"))
		assert.Contains(t, r.PostForm.Get("text"), "run-1")
		posted.Store(true)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	t.Cleanup(server.Close)

	n := NewSlackNotifier("xoxb-test", "C123", server.URL, zaptest.NewLogger(t))

	require.NoError(t, n.Notify(context.Background(), sampleReport()))
	assert.True(t, posted.Load())
}

func TestSlackNotifierAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	t.Cleanup(server.Close)

	n := NewSlackNotifier("xoxb-test", "C404", server.URL+"/", zaptest.NewLogger(t))

	err := n.Notify(context.Background(), sampleReport())
	assert.ErrorContains(t, err, "channel_not_found")
}

type recordingNotifier struct {
	name  string
	err   error
	calls atomic.Int32
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Notify(context.Context, *core.RunReport) error {
	r.calls.Add(1)
	return r.err
}

func TestFanoutNotifiesAll(t *testing.T) {
	ok := &recordingNotifier{name: "ok"}
	broken := &recordingNotifier{name: "broken", err: errors.New("boom")}
	fanout := NewFanout(zaptest.NewLogger(t), ok, broken)

	err := fanout.Notify(context.Background(), sampleReport())

	assert.ErrorContains(t, err, "broken: boom")
	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, int32(1), broken.calls.Load())
}
