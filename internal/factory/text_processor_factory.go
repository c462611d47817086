package factory

import (
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
)

// TextProcessorFactory builds the description preprocessor for the classifier
type TextProcessorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(cfg *config.Config, logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		cfg:    cfg,
		logger: logger.Named("text"),
	}
}

// CreateTextProcessor creates the processor used on ticket descriptions
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	limit := f.cfg.GetInt("triage.max_description_size")
	if limit > 0 {
		f.logger.Debug("Ticket descriptions will be truncated", zap.Int("max_description_size", limit))
	} else {
		f.logger.Debug("Ticket description truncation disabled")
	}
	return utils.NewTextProcessor(f.logger)
}
