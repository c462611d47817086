package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/support-triage/internal/adapters/history"
	"github.com/mikey/support-triage/internal/adapters/zendesk"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/di"
	"github.com/mikey/support-triage/internal/ports"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "", "Path to config file (default search path if empty)")
	dumpMacros = flag.String("dump-macros", "", "Write the active helpdesk macros to this file and exit")
)

func main() {
	flag.Parse()

	loader := config.New
	if *configFile != "" {
		loader = func() (*config.Config, error) { return config.NewFromFile(*configFile) }
	}

	// Build the dependency injection container
	container, err := di.BuildContainerWith(loader)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	var invoke interface{} = run
	if *dumpMacros != "" {
		invoke = dump
	}

	if err := container.Invoke(invoke); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	runner ports.Runner,
	llmClient core.LLMClient,
	store *history.MultiStore,
) error {
	defer logger.Sync()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := runner.Run(ctx)
	if runErr != nil {
		logger.Error("Triage run failed", zap.Error(runErr))
	}

	logger.Info("Shutting down...")

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
	store.Stop()

	logger.Info("Shutdown complete")
	return runErr
}

// dump writes the raw active macro listing so operators can look up macro IDs
func dump(logger *zap.Logger, helpdesk *zendesk.Client) error {
	defer logger.Sync()

	body, err := helpdesk.ListActiveMacros(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list macros: %w", err)
	}

	if err := os.WriteFile(*dumpMacros, body, 0644); err != nil {
		return fmt.Errorf("failed to write macros: %w", err)
	}

	logger.Info("Active macros written", zap.String("file", *dumpMacros), zap.Int("bytes", len(body)))
	return nil
}
