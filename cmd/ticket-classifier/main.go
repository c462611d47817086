package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/di"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
)

const previewSize = 500

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(func(
		logger *zap.Logger,
		classifier *core.Classifier,
		llmClient core.LLMClient,
		macros core.MacroTable,
		textProcessor *utils.TextProcessor,
	) error {
		defer logger.Sync()
		return classify(logger, flags, classifier, llmClient, macros, textProcessor)
	}); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

func classify(
	logger *zap.Logger,
	flags *di.CLIFlags,
	classifier *core.Classifier,
	llmClient core.LLMClient,
	macros core.MacroTable,
	textProcessor *utils.TextProcessor,
) error {
	// Read description from file or stdin
	var reader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		reader = file
		logger.Info("Reading ticket description from file", zap.String("file", flags.InputFile))
	} else {
		reader = os.Stdin
		logger.Info("Reading ticket description from stdin")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read ticket description: %w", err)
	}
	ticket := &core.Ticket{Description: string(data)}

	// Print ticket summary
	fmt.Printf("\n=== Ticket Summary ===\n")
	fmt.Printf("Description length: %d bytes\n", len(ticket.Description))
	if flags.Verbose {
		fmt.Printf("\nDescription preview:\n%s\n", textProcessor.TruncateText(ticket.Description, previewSize))
	}
	fmt.Printf("\n")

	fmt.Printf("=== Classification ===\n")
	fmt.Printf("Provider: %s\n", flags.Provider)

	startTime := time.Now()
	completion, err := classifier.Classify(context.Background(), ticket)
	if err != nil {
		return err
	}
	duration := time.Since(startTime)

	label := ticket.ClassificationLabel()
	macro := "unhandled"
	if id, ok := macros.Lookup(label); ok {
		macro = fmt.Sprintf("%d", id)
	}

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Label: %s\n", label)
	fmt.Printf("Macro: %s\n", macro)
	fmt.Printf("Model used: %s\n", completion.Model)
	if len(completion.Choices) > 0 {
		fmt.Printf("Finish reason: %s\n", completion.Choices[0].FinishReason)
	}
	fmt.Printf("Tokens: %d\n", completion.Usage.TotalTokens)
	fmt.Printf("Processing time: %v\n", duration)

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
	return nil
}
