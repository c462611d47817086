package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ContentGenerator is the part of genai.GenerativeModel the client uses
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	client    *genai.Client
	model     ContentGenerator
	modelName string
	logger    *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	gc := newGeminiClient(model, modelName, logger)
	gc.client = client
	return gc, nil
}

func newGeminiClient(model ContentGenerator, modelName string, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		model:     model,
		modelName: modelName,
		logger:    logger,
	}
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Complete generates a continuation of the prompt
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (*core.Completion, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, core.ErrNoChoices
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("empty response from Gemini")
	}

	completion := core.NewTextCompletion("gemini-"+uuid.NewString(), c.modelName, text.String(), finishReason(candidate.FinishReason))
	if resp.UsageMetadata != nil {
		completion.Usage = core.CompletionUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	c.logger.Debug("Gemini completion finished",
		zap.String("model", c.modelName),
		zap.Int("total_tokens", completion.Usage.TotalTokens))

	return completion, nil
}

func finishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonMaxTokens:
		return "length"
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return "content_filter"
	default:
		return "stop"
	}
}
