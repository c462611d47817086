package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/support-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeInvoker struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (f *fakeInvoker) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func sentPayload(t *testing.T, f *fakeInvoker) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(f.input.Body, &payload))
	return payload
}

func TestCompleteMetaLlama(t *testing.T) {
	invoker := &fakeInvoker{body: `{"generation":" RESEND_TICKET","stop_reason":"stop"}`}
	client := NewBedrockClient(invoker, "meta.llama2-13b-chat-v1", 2000, 0.6, 0.8, zaptest.NewLogger(t))

	completion, err := client.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, " RESEND_TICKET", completion.Text())
	assert.Equal(t, "meta.llama2-13b-chat-v1", completion.Model)
	assert.Equal(t, "meta.llama2-13b-chat-v1", *invoker.input.ModelId)

	payload := sentPayload(t, invoker)
	assert.Equal(t, "prompt", payload["prompt"])
	assert.EqualValues(t, 2000, payload["max_gen_len"])
}

func TestCompleteClaude(t *testing.T) {
	invoker := &fakeInvoker{body: `{"completion":"DELETE_ACCOUNT","stop_reason":"max_tokens"}`}
	client := NewBedrockClient(invoker, "anthropic.claude-v2", 16, 0, 0, zaptest.NewLogger(t))

	completion, err := client.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "DELETE_ACCOUNT", completion.Text())
	assert.Equal(t, "length", completion.Choices[0].FinishReason)

	payload := sentPayload(t, invoker)
	assert.Contains(t, payload["prompt"], "Human: prompt")
	assert.EqualValues(t, 16, payload["max_tokens_to_sample"])
}

func TestCompleteTitan(t *testing.T) {
	invoker := &fakeInvoker{body: `{"results":[{"outputText":"RESEND_TICKET","completionReason":"FINISH"}]}`}
	client := NewBedrockClient(invoker, "amazon.titan-text-express-v1", 16, 0, 0, zaptest.NewLogger(t))

	completion, err := client.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "RESEND_TICKET", completion.Text())
	assert.Contains(t, sentPayload(t, invoker), "textGenerationConfig")
}

func TestCompleteTitanEmpty(t *testing.T) {
	invoker := &fakeInvoker{body: `{"results":[]}`}
	client := NewBedrockClient(invoker, "amazon.titan-text-express-v1", 16, 0, 0, zaptest.NewLogger(t))

	_, err := client.Complete(context.Background(), "prompt")

	assert.True(t, errors.Is(err, core.ErrNoChoices))
}

func TestCompleteGenericFallsBackToRawBody(t *testing.T) {
	invoker := &fakeInvoker{body: `{"unknown":"x"}`}
	client := NewBedrockClient(invoker, "cohere.command-text-v14", 16, 0, 0, zaptest.NewLogger(t))

	completion, err := client.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"unknown":"x"}`, completion.Text())
}

func TestCompleteInvokeError(t *testing.T) {
	invoker := &fakeInvoker{err: errors.New("throttled")}
	client := NewBedrockClient(invoker, "meta.llama2-13b-chat-v1", 16, 0, 0, zaptest.NewLogger(t))

	_, err := client.Complete(context.Background(), "prompt")

	assert.ErrorContains(t, err, "throttled")
}
