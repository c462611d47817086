package factory

import (
	"github.com/mikey/support-triage/internal/adapters/zendesk"
	"github.com/mikey/support-triage/internal/config"
	"go.uber.org/zap"
)

// HelpdeskFactory creates helpdesk clients
type HelpdeskFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHelpdeskFactory creates a new helpdesk factory
func NewHelpdeskFactory(cfg *config.Config, logger *zap.Logger) *HelpdeskFactory {
	return &HelpdeskFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateHelpdesk creates the Zendesk client
func (f *HelpdeskFactory) CreateHelpdesk() (*zendesk.Client, error) {
	helpdeskCfg := f.cfg.GetHelpdesk()

	f.logger.Info("Using Zendesk helpdesk",
		zap.String("base_url", helpdeskCfg.BaseURL),
		zap.String("username", helpdeskCfg.Username))

	return zendesk.NewClient(
		helpdeskCfg.BaseURL,
		helpdeskCfg.Username,
		helpdeskCfg.APIToken,
		helpdeskCfg.SearchQuery,
		helpdeskCfg.Timeout,
		f.logger.Named("zendesk"),
	)
}
