package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCompleteJoinsTextBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-5-haiku-latest", req["model"])
		assert.EqualValues(t, 16, req["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01", "type": "message", "role": "assistant", "model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "RESEND_TICKET"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 700, "output_tokens": 4}
		}`))
	}))
	t.Cleanup(server.Close)

	client := NewAnthropicClient("test-key", server.URL, "claude-3-5-haiku-latest", 16, 0.1, 0.9, zaptest.NewLogger(t))

	completion, err := client.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "msg_01", completion.ID)
	assert.Equal(t, "RESEND_TICKET", completion.Text())
	assert.Equal(t, "stop", completion.Choices[0].FinishReason)
	assert.Equal(t, 704, completion.Usage.TotalTokens)
}

func TestCompleteMaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_02","type":"message","role":"assistant","model":"m",
			"content":[{"type":"text","text":"DELETE_"}],"stop_reason":"max_tokens","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	t.Cleanup(server.Close)

	client := NewAnthropicClient("k", server.URL, "m", 1, 0, 0, zaptest.NewLogger(t))

	completion, err := client.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "length", completion.Choices[0].FinishReason)
}

func TestCompleteNoText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_03","type":"message","role":"assistant","model":"m",
			"content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	t.Cleanup(server.Close)

	client := NewAnthropicClient("k", server.URL, "m", 1, 0, 0, zaptest.NewLogger(t))

	_, err := client.Complete(context.Background(), "prompt")

	assert.Error(t, err)
}
