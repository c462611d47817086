package zendesk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikey/support-triage/internal/core"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// HTTPStatusError captures non-2xx helpdesk responses
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("zendesk: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Client is a Zendesk implementation of the core.Helpdesk interface
type Client struct {
	baseURL     string
	username    string
	apiToken    string
	searchQuery string
	httpClient  *http.Client
	logger      *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new Zendesk client
func NewClient(
	baseURL string,
	username string,
	apiToken string,
	searchQuery string,
	timeout time.Duration,
	logger *zap.Logger,
	opts ...Option,
) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("zendesk: base url must not be empty")
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	c := &Client{
		baseURL:     baseURL,
		username:    username,
		apiToken:    apiToken,
		searchQuery: searchQuery,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchOpenTickets retrieves up to count open tickets, oldest first
func (c *Client) FetchOpenTickets(ctx context.Context, count int) ([]*core.Ticket, error) {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("%s count:%d", c.searchQuery, count))
	params.Set("sort_by", "created_at")
	params.Set("sort_order", "asc")

	body, _, err := c.do(ctx, http.MethodGet, "tickets?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	tickets, err := parseTickets(body)
	if err != nil {
		return nil, err
	}
	if count > 0 && len(tickets) > count {
		tickets = tickets[:count]
	}

	c.logger.Debug("Fetched tickets", zap.Int("count", len(tickets)))
	return tickets, nil
}

// ApplyMacro returns the body of a macro applied to a blank ticket
func (c *Client) ApplyMacro(ctx context.Context, macroID int64) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("macros/%d/apply", macroID), nil)
	return body, err
}

// UpdateTicket submits a reply payload to a ticket
func (c *Client) UpdateTicket(ctx context.Context, ticketID int64, payload *core.ReplyPayload) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal reply payload: %w", err)
	}

	_, status, err := c.do(ctx, http.MethodPut, fmt.Sprintf("tickets/%d", ticketID), data)
	return status, err
}

// ListActiveMacros returns the raw listing of active macros
func (c *Client) ListActiveMacros(ctx context.Context) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodGet, "macros/active", nil)
	return body, err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	target := c.baseURL + path

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username+"/token", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Helpdesk request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.Error(err))
		return nil, 0, fmt.Errorf("failed to call helpdesk: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read helpdesk response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &HTTPStatusError{StatusCode: resp.StatusCode, URL: target, Body: strings.TrimSpace(string(body))}
		c.logger.Error("Helpdesk returned an error status",
			zap.String("method", method),
			zap.String("url", target),
			zap.Int("status", resp.StatusCode))
		return body, resp.StatusCode, statusErr
	}

	return body, resp.StatusCode, nil
}

// parseTickets accepts either a tickets array or a single ticket object
func parseTickets(body []byte) ([]*core.Ticket, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("zendesk: invalid JSON in ticket response")
	}

	root := gjson.ParseBytes(body)
	if list := root.Get("tickets"); list.IsArray() {
		var tickets []*core.Ticket
		for _, item := range list.Array() {
			tickets = append(tickets, ticketFromJSON(item))
		}
		return tickets, nil
	}

	if single := root.Get("ticket"); single.IsObject() {
		return []*core.Ticket{ticketFromJSON(single)}, nil
	}

	return nil, errors.New("zendesk: response holds neither tickets nor ticket")
}

func ticketFromJSON(data gjson.Result) *core.Ticket {
	var email string
	if data.Get("via.channel").String() == "email" {
		email = data.Get("via.source.from.address").String()
	}

	return &core.Ticket{
		ID:            data.Get("id").Int(),
		CustomerEmail: email,
		Status:        data.Get("status").String(),
		Subject:       data.Get("subject").String(),
		Description:   data.Get("description").String(),
	}
}
