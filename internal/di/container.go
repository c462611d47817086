package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/support-triage/internal/adapters/history"
	"github.com/mikey/support-triage/internal/adapters/zendesk"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/exclusion"
	"github.com/mikey/support-triage/internal/factory"
	"github.com/mikey/support-triage/internal/logging"
	"github.com/mikey/support-triage/internal/ports"
	"github.com/mikey/support-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// using the configuration found on the default search path
func BuildContainer() (*dig.Container, error) {
	return BuildContainerWith(config.New)
}

// BuildContainerWith creates the container with a custom configuration loader
func BuildContainerWith(loadConfig func() (*config.Config, error)) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	for _, constructor := range []interface{}{
		factory.NewLLMFactory,
		factory.NewHelpdeskFactory,
		factory.NewHistoryFactory,
		factory.NewNotifierFactory,
		factory.NewTextProcessorFactory,
		factory.NewRunnerFactory,
	} {
		if err := container.Provide(constructor); err != nil {
			return nil, err
		}
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register helpdesk
	if err := container.Provide(func(f *factory.HelpdeskFactory) (*zendesk.Client, error) {
		return f.CreateHelpdesk()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *zendesk.Client) core.Helpdesk {
		return c
	}); err != nil {
		return nil, err
	}

	// Register history store
	if err := container.Provide(func(f *factory.HistoryFactory) (*history.MultiStore, error) {
		return f.CreateHistoryStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *history.MultiStore) core.HistoryStore {
		return s
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register triage settings
	if err := container.Provide(func(cfg *config.Config) (config.TriageConfig, error) {
		return cfg.GetTriage()
	}); err != nil {
		return nil, err
	}

	// Register macro table
	if err := container.Provide(func(triage config.TriageConfig, logger *zap.Logger) core.MacroTable {
		if len(triage.Macros) > 0 {
			logger.Info("Loaded macro overrides", zap.Int("count", len(triage.Macros)))
		}
		return core.NewMacroTable(triage.Macros)
	}); err != nil {
		return nil, err
	}

	// Register excluded customer domains
	if err := container.Provide(func(triage config.TriageConfig, logger *zap.Logger) *exclusion.Checker {
		if len(triage.ExcludedDomains) > 0 {
			logger.Info("Loaded excluded domains", zap.Strings("domains", triage.ExcludedDomains))
		}
		return exclusion.NewChecker(triage.ExcludedDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(
		llmClient core.LLMClient,
		textProcessor *utils.TextProcessor,
		logger *zap.Logger,
		triage config.TriageConfig,
	) *core.Classifier {
		return core.NewClassifier(llmClient, textProcessor, logger, triage.MaxDescriptionSize)
	}); err != nil {
		return nil, err
	}

	// Register responder
	if err := container.Provide(func(
		helpdesk core.Helpdesk,
		macros core.MacroTable,
		logger *zap.Logger,
		triage config.TriageConfig,
	) *core.Responder {
		if triage.DryRun {
			logger.Warn("Dry run enabled, replies will not be submitted")
		}
		return core.NewResponder(helpdesk, macros, logger, triage.DryRun)
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(func(
		helpdesk core.Helpdesk,
		classifier *core.Classifier,
		responder *core.Responder,
		store core.HistoryStore,
		exclusions *exclusion.Checker,
		logger *zap.Logger,
		triage config.TriageConfig,
	) *core.TriageService {
		return core.NewTriageService(helpdesk, classifier, responder, store, exclusions, logger, triage.BatchSize)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *core.TriageService) ports.Pipeline {
		return s
	}); err != nil {
		return nil, err
	}

	// Register notifier
	if err := container.Provide(func(f *factory.NotifierFactory) (ports.Notifier, error) {
		return f.CreateNotifier()
	}); err != nil {
		return nil, err
	}

	// Register runner
	if err := container.Provide(func(f *factory.RunnerFactory) (ports.Runner, error) {
		return f.CreateRunner()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
