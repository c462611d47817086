package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/uuid"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// ModelInvoker is the subset of the Bedrock runtime API the client needs
type ModelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient is an implementation of the LLMClient interface using Amazon Bedrock
type BedrockClient struct {
	client      ModelInvoker
	modelID     string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(
	client ModelInvoker,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *BedrockClient {
	return &BedrockClient{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

// Complete invokes the configured model with a family specific payload
func (c *BedrockClient) Complete(ctx context.Context, prompt string) (*core.Completion, error) {
	payload, err := c.buildPayload(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	text, finish, err := c.parseResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Bedrock completion finished",
		zap.String("model_id", c.modelID),
		zap.Int("response_length", len(text)))

	return core.NewTextCompletion("bedrock-"+uuid.NewString(), c.modelID, text, finish), nil
}

func (c *BedrockClient) buildPayload(prompt string) ([]byte, error) {
	switch {
	case c.isAnthropicModel():
		return json.Marshal(map[string]interface{}{
			"prompt":               "\n\nHuman: " + prompt + "\n\nAssistant:",
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	case c.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	case c.isMetaLlamaModel():
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_gen_len": c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
}

func (c *BedrockClient) parseResponse(body []byte) (string, string, error) {
	switch {
	case c.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
			StopReason string `json:"stop_reason"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, normalizeStop(claudeResp.StopReason), nil

	case c.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText       string `json:"outputText"`
				CompletionReason string `json:"completionReason"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", "", core.ErrNoChoices
		}
		return titanResp.Results[0].OutputText, normalizeStop(titanResp.Results[0].CompletionReason), nil

	case c.isMetaLlamaModel():
		var llamaResp struct {
			Generation string `json:"generation"`
			StopReason string `json:"stop_reason"`
		}
		if err := json.Unmarshal(body, &llamaResp); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal Llama response: %w", err)
		}
		return llamaResp.Generation, normalizeStop(llamaResp.StopReason), nil

	default:
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		switch {
		case genericResp.Output != "":
			return genericResp.Output, "stop", nil
		case genericResp.Text != "":
			return genericResp.Text, "stop", nil
		case genericResp.Response != "":
			return genericResp.Response, "stop", nil
		}
		return string(body), "stop", nil
	}
}

// normalizeStop maps provider stop reasons onto completion finish reasons
func normalizeStop(reason string) string {
	switch strings.ToLower(reason) {
	case "length", "max_tokens", "max_tokens_reached", "length_exceeded":
		return "length"
	default:
		return "stop"
	}
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}

func (c *BedrockClient) isMetaLlamaModel() bool {
	return strings.HasPrefix(c.modelID, "meta.llama")
}
