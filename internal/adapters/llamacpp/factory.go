package llamacpp

import (
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// Factory creates new instances of LlamaCppClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for LlamaCppClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a new LlamaCppClient
func (f *Factory) CreateLLMClient() (core.LLMClient, error) {
	llamaCfg := f.cfg.GetLlamaCpp()

	f.logger.Info("Using llama.cpp server",
		zap.String("server_url", llamaCfg.ServerURL),
		zap.String("model_path", llamaCfg.ModelPath),
		zap.Int("context_size", llamaCfg.ContextSize))

	return NewLlamaCppClient(
		llamaCfg.ServerURL,
		llamaCfg.ModelPath,
		llamaCfg.MaxTokens,
		llamaCfg.ContextSize,
		llamaCfg.Temperature,
		llamaCfg.TopP,
		llamaCfg.RepeatPenalty,
		llamaCfg.Timeout,
		f.logger,
	), nil
}
