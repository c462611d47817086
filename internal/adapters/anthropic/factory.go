package anthropic

import (
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// Factory creates new instances of AnthropicClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for AnthropicClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a new AnthropicClient
func (f *Factory) CreateLLMClient() (core.LLMClient, error) {
	anthropicCfg := f.cfg.GetAnthropic()

	f.logger.Info("Using Anthropic", zap.String("model", anthropicCfg.ModelName))

	return NewAnthropicClient(
		anthropicCfg.APIKey,
		anthropicCfg.BaseURL,
		anthropicCfg.ModelName,
		anthropicCfg.MaxTokens,
		anthropicCfg.Temperature,
		anthropicCfg.TopP,
		f.logger,
	), nil
}
