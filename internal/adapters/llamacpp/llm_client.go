package llamacpp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// LlamaCppClient is an implementation of the LLMClient interface backed by a
// llama.cpp server running a local GGUF model
type LlamaCppClient struct {
	httpClient    *http.Client
	serverURL     string
	modelPath     string
	maxTokens     int
	contextSize   int
	temperature   float32
	topP          float32
	repeatPenalty float32
	logger        *zap.Logger
}

type completionRequest struct {
	Prompt        string  `json:"prompt"`
	NPredict      int     `json:"n_predict"`
	Temperature   float32 `json:"temperature"`
	TopP          float32 `json:"top_p"`
	RepeatPenalty float32 `json:"repeat_penalty"`
	Stream        bool    `json:"stream"`
}

type completionResponse struct {
	Content         string `json:"content"`
	Model           string `json:"model"`
	StoppedLimit    bool   `json:"stopped_limit"`
	TokensPredicted int    `json:"tokens_predicted"`
	TokensEvaluated int    `json:"tokens_evaluated"`
}

// NewLlamaCppClient creates a new llama.cpp client
func NewLlamaCppClient(
	serverURL string,
	modelPath string,
	maxTokens int,
	contextSize int,
	temperature float32,
	topP float32,
	repeatPenalty float32,
	timeout time.Duration,
	logger *zap.Logger,
) *LlamaCppClient {
	return &LlamaCppClient{
		httpClient:    &http.Client{Timeout: timeout},
		serverURL:     strings.TrimRight(serverURL, "/"),
		modelPath:     modelPath,
		maxTokens:     maxTokens,
		contextSize:   contextSize,
		temperature:   temperature,
		topP:          topP,
		repeatPenalty: repeatPenalty,
		logger:        logger,
	}
}

// nPredict caps generation at the context window; a model cannot emit more
// tokens than fit in it
func (c *LlamaCppClient) nPredict() int {
	if c.contextSize > 0 && (c.maxTokens <= 0 || c.maxTokens > c.contextSize) {
		return c.contextSize
	}
	return c.maxTokens
}

// Complete runs the prompt through the llama.cpp /completion endpoint
func (c *LlamaCppClient) Complete(ctx context.Context, prompt string) (*core.Completion, error) {
	payload, err := json.Marshal(completionRequest{
		Prompt:        prompt,
		NPredict:      c.nPredict(),
		Temperature:   c.temperature,
		TopP:          c.topP,
		RepeatPenalty: c.repeatPenalty,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/completion", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create llama.cpp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call llama.cpp server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read llama.cpp response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llama.cpp server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal llama.cpp response: %w", err)
	}

	finishReason := "stop"
	if out.StoppedLimit {
		finishReason = "length"
	}
	model := out.Model
	if model == "" {
		model = c.modelPath
	}

	completion := core.NewTextCompletion("cmpl-"+uuid.NewString(), model, out.Content, finishReason)
	completion.Usage = core.CompletionUsage{
		PromptTokens:     out.TokensEvaluated,
		CompletionTokens: out.TokensPredicted,
		TotalTokens:      out.TokensEvaluated + out.TokensPredicted,
	}

	c.logger.Debug("llama.cpp completion finished",
		zap.Int("prompt_tokens", out.TokensEvaluated),
		zap.Int("completion_tokens", out.TokensPredicted),
		zap.Duration("elapsed", time.Since(start)))

	return completion, nil
}
