package factory

import (
	"fmt"

	"github.com/mikey/support-triage/internal/adapters/notify"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/ports"
	"go.uber.org/zap"
)

// NotifierFactory creates run summary notifiers
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifier builds one notifier that fans out to every configured target
func (f *NotifierFactory) CreateNotifier() (ports.Notifier, error) {
	notifyCfg := f.cfg.GetNotify()

	var notifiers []ports.Notifier
	for _, target := range notifyCfg.Targets {
		switch target {
		case "console":
			notifiers = append(notifiers, notify.NewConsoleNotifier(f.logger, notifyCfg.Verbose))
		case "slack":
			if notifyCfg.Slack.Token == "" || notifyCfg.Slack.Channel == "" {
				return nil, fmt.Errorf("slack notifier requires notify.slack.token and notify.slack.channel")
			}
			notifiers = append(notifiers, notify.NewSlackNotifier(
				notifyCfg.Slack.Token,
				notifyCfg.Slack.Channel,
				notifyCfg.Slack.APIURL,
				f.logger.Named("slack"),
			))
		default:
			return nil, fmt.Errorf("unsupported notify target: %s", target)
		}
	}

	return notify.NewFanout(f.logger, notifiers...), nil
}
