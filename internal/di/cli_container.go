package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/factory"
	"github.com/mikey/support-triage/internal/logging"
	"github.com/mikey/support-triage/internal/utils"
)

// CLIFlags contains all command line flags for the classifier CLI
type CLIFlags struct {
	// LLM provider flags
	Provider           string
	MaxTokens          int
	Temperature        float64
	TopP               float64
	MaxDescriptionSize int

	// llama.cpp flags
	LlamaCppURL   string
	LlamaCppModel string
	LlamaCppCtx   int
	RepeatPenalty float64

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModelName string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Anthropic flags
	AnthropicAPIKey    string
	AnthropicModelName string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := registerFlags(flag.CommandLine)
	flag.Parse()
	return flags
}

// ParseFlagSet registers the CLI flags on fs and parses args
func ParseFlagSet(fs *flag.FlagSet, args []string) (*CLIFlags, error) {
	flags := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

func registerFlags(fs *flag.FlagSet) *CLIFlags {
	flags := &CLIFlags{}

	// LLM provider flags
	fs.StringVar(&flags.Provider, "provider", "llamacpp", "LLM provider (llamacpp, openai, gemini, bedrock, anthropic)")
	fs.IntVar(&flags.MaxTokens, "max-tokens", 2000, "Maximum tokens for the completion")
	fs.Float64Var(&flags.Temperature, "temperature", 0.6, "Temperature for LLM generation")
	fs.Float64Var(&flags.TopP, "top-p", 0.8, "Top-p for LLM generation")
	fs.IntVar(&flags.MaxDescriptionSize, "max-description-size", 4096, "Maximum ticket description size to send to the LLM")

	// llama.cpp flags
	fs.StringVar(&flags.LlamaCppURL, "llamacpp-url", "http://localhost:8080", "llama.cpp server URL")
	fs.StringVar(&flags.LlamaCppModel, "llamacpp-model", "models/7B/ggml-model-q4_1.gguf", "Model file served by llama.cpp")
	fs.IntVar(&flags.LlamaCppCtx, "context-size", 2048, "Context window of the local model")
	fs.Float64Var(&flags.RepeatPenalty, "repeat-penalty", 0.8, "Repeat penalty for llama.cpp")

	// OpenAI flags
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	fs.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "Base URL of an OpenAI compatible server")
	fs.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-3.5-turbo-instruct", "OpenAI completion model name")

	// Gemini flags
	fs.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	fs.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// Bedrock flags
	fs.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	fs.StringVar(&flags.BedrockModelID, "bedrock-model", "meta.llama2-13b-chat-v1", "Bedrock model ID")

	// Anthropic flags
	fs.StringVar(&flags.AnthropicAPIKey, "anthropic-api-key", "", "API key for Anthropic")
	fs.StringVar(&flags.AnthropicModelName, "anthropic-model", "claude-3-5-haiku-latest", "Anthropic model name")

	// Input flags
	fs.StringVar(&flags.InputFile, "file", "", "Input ticket description file (use stdin if not specified)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return CreateConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register macro table
	if err := container.Provide(func(cfg *config.Config) (core.MacroTable, error) {
		triage, err := cfg.GetTriage()
		if err != nil {
			return nil, err
		}
		return core.NewMacroTable(triage.Macros), nil
	}); err != nil {
		return nil, err
	}

	// Register classifier, no helpdesk is involved
	if err := container.Provide(func(
		llmClient core.LLMClient,
		textProcessor *utils.TextProcessor,
		logger *zap.Logger,
		cfg *config.Config,
	) *core.Classifier {
		return core.NewClassifier(llmClient, textProcessor, logger, cfg.GetInt("triage.max_description_size"))
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// CreateConfigFromFlags creates a configuration from command line flags
func CreateConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)
	v.Set("triage.max_description_size", flags.MaxDescriptionSize)

	// Set provider-specific configuration
	switch flags.Provider {
	case "llamacpp":
		v.Set("llamacpp.server_url", flags.LlamaCppURL)
		v.Set("llamacpp.model_path", flags.LlamaCppModel)
		v.Set("llamacpp.context_size", flags.LlamaCppCtx)
		v.Set("llamacpp.repeat_penalty", flags.RepeatPenalty)
		v.Set("llamacpp.max_tokens", flags.MaxTokens)
		v.Set("llamacpp.temperature", flags.Temperature)
		v.Set("llamacpp.top_p", flags.TopP)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.base_url", flags.OpenAIBaseURL)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
	case "anthropic":
		v.Set("anthropic.api_key", flags.AnthropicAPIKey)
		v.Set("anthropic.model_name", flags.AnthropicModelName)
		v.Set("anthropic.max_tokens", flags.MaxTokens)
		v.Set("anthropic.temperature", flags.Temperature)
		v.Set("anthropic.top_p", flags.TopP)
	}

	return config.NewFromViper(v)
}
