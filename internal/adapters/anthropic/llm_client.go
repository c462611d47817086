package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// AnthropicClient is an implementation of the LLMClient interface using the
// Anthropic Messages API
type AnthropicClient struct {
	client      anthropic.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewAnthropicClient creates a new Anthropic client. An empty baseURL targets
// the public API.
func NewAnthropicClient(
	apiKey string,
	baseURL string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicClient{
		client:      anthropic.NewClient(opts...),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

// Complete sends the prompt as a single user message
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (*core.Completion, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.modelName),
		MaxTokens:   int64(c.maxTokens),
		Temperature: anthropic.Float(float64(c.temperature)),
		TopP:        anthropic.Float(float64(c.topP)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, core.ErrNoChoices
	}

	finish := "stop"
	if message.StopReason == "max_tokens" {
		finish = "length"
	}

	completion := core.NewTextCompletion(message.ID, string(message.Model), text.String(), finish)
	completion.Usage = core.CompletionUsage{
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
		TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}

	c.logger.Debug("Anthropic completion finished",
		zap.String("id", message.ID),
		zap.Int64("tokens_in", message.Usage.InputTokens),
		zap.Int64("tokens_out", message.Usage.OutputTokens))

	return completion, nil
}
