package zendesk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mikey/support-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const ticketListBody = `{
  "tickets": [
    {"id": 1, "status": "open", "subject": "Test subject 1", "description": "Test description 1",
     "via": {"channel": "email", "source": {"from": {"address": "test1@example.com"}}}},
    {"id": 2, "status": "open", "subject": "Test subject 2", "description": "Test description 2",
     "via": {"channel": "web", "source": {"from": {}}}},
    {"id": 3, "status": "new", "subject": "Test subject 3", "description": "Test description 3",
     "via": {"channel": "email", "source": {"from": {"address": "test3@example.com"}}}}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/api/v2", "agent@ticket.io", "secret", "type:ticket status:open", 5*time.Second, zaptest.NewLogger(t))
	require.NoError(t, err)
	return client
}

func TestFetchOpenTicketsList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/tickets", r.URL.Path)
		assert.Equal(t, "type:ticket status:open count:50", r.URL.Query().Get("query"))
		assert.Equal(t, "created_at", r.URL.Query().Get("sort_by"))
		assert.Equal(t, "asc", r.URL.Query().Get("sort_order"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "agent@ticket.io/token", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		_, _ = io.WriteString(w, ticketListBody)
	})

	tickets, err := client.FetchOpenTickets(context.Background(), 50)

	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, &core.Ticket{ID: 1, CustomerEmail: "test1@example.com", Status: "open",
		Subject: "Test subject 1", Description: "Test description 1"}, tickets[0])
	assert.Equal(t, "", tickets[1].CustomerEmail)
	assert.Nil(t, tickets[1].Classification)
	assert.Equal(t, "new", tickets[2].Status)
}

func TestFetchOpenTicketsSingle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ticket":{"id":77,"status":"open","subject":"s","description":"d","via":{"channel":"email","source":{"from":{"address":"a@b.de"}}}}}`)
	})

	tickets, err := client.FetchOpenTickets(context.Background(), 50)

	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, int64(77), tickets[0].ID)
	assert.Equal(t, "a@b.de", tickets[0].CustomerEmail)
}

func TestFetchOpenTicketsRespectsCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, ticketListBody)
	})

	tickets, err := client.FetchOpenTickets(context.Background(), 2)

	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestFetchOpenTicketsBadBody(t *testing.T) {
	for _, body := range []string{`not json`, `{"count": 0}`} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})

		_, err := client.FetchOpenTickets(context.Background(), 50)
		assert.Error(t, err, body)
	}
}

func TestFetchOpenTicketsStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Couldn't authenticate you"}`)
	})

	_, err := client.FetchOpenTickets(context.Background(), 50)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "authenticate")
}

func TestApplyMacro(t *testing.T) {
	const body = `{"result":{"ticket":{"comment":{"html_body":"<p>Hallo</p>","public":true}}}}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/macros/8140353174289/apply", r.URL.Path)
		_, _ = io.WriteString(w, body)
	})

	got, err := client.ApplyMacro(context.Background(), 8140353174289)

	require.NoError(t, err)
	assert.JSONEq(t, body, string(got))
}

func TestUpdateTicket(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v2/tickets/123", r.URL.Path)
		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, `{"ticket":{"comment":{"html_body":"Test reply","public":false}}}`, string(data))
		w.WriteHeader(http.StatusOK)
	})

	payload := &core.ReplyPayload{Ticket: core.ReplyTicket{Comment: core.ReplyComment{HTMLBody: "Test reply"}}}
	status, err := client.UpdateTicket(context.Background(), 123, payload)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestUpdateTicketRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	status, err := client.UpdateTicket(context.Background(), 1, &core.ReplyPayload{})

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	var statusErr *HTTPStatusError
	assert.True(t, errors.As(err, &statusErr))
}

func TestListActiveMacros(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/macros/active", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"macros": []map[string]any{{"id": 1, "title": "Resend"}}})
	})

	body, err := client.ListActiveMacros(context.Background())

	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `"Resend"`))
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client, err := NewClient(server.URL, "u", "t", "q", time.Second, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.ApplyMacro(context.Background(), 1)
	assert.Error(t, err)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(" ", "u", "t", "q", time.Second, zaptest.NewLogger(t))
	assert.Error(t, err)
}
