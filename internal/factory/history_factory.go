package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/support-triage/internal/adapters/history"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// HistoryFactory creates history stores based on configuration
type HistoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHistoryFactory creates a new history factory
func NewHistoryFactory(cfg *config.Config, logger *zap.Logger) *HistoryFactory {
	return &HistoryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateHistoryStore combines every configured sink into one store
func (f *HistoryFactory) CreateHistoryStore() (*history.MultiStore, error) {
	historyCfg, err := f.cfg.GetHistory()
	if err != nil {
		return nil, err
	}

	sinks := historyCfg.Sinks
	if len(sinks) == 0 {
		f.logger.Warn("No history sinks configured, keeping history in memory only")
		sinks = []string{"memory"}
	}

	var stores []history.NamedStore
	for _, sink := range sinks {
		store, err := f.createSink(sink, historyCfg)
		if err != nil {
			history.NewMultiStore(f.logger, stores...).Stop()
			return nil, err
		}
		stores = append(stores, history.NamedStore{Name: sink, Store: store})
	}

	f.logger.Info("History sinks configured", zap.Strings("sinks", sinks))
	return history.NewMultiStore(f.logger, stores...), nil
}

func (f *HistoryFactory) createSink(sink string, historyCfg config.HistoryConfig) (core.HistoryStore, error) {
	switch sink {
	case "file":
		return history.NewFileStore(historyCfg.FilePath, f.logger), nil
	case "memory":
		return history.NewMemoryStore(f.logger, history.DefaultMemoryRuns), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(historyCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return history.NewSQLiteStore(historyCfg.SQLitePath, f.logger, historyCfg.Retention, historyCfg.CleanupFrequency)
	case "mysql":
		return history.NewMySQLStore(historyCfg.MySQLDSN, f.logger, historyCfg.Retention, historyCfg.CleanupFrequency)
	default:
		return nil, fmt.Errorf("unsupported history sink: %s", sink)
	}
}
