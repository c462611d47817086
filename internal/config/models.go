package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// LlamaCppConfig represents the configuration for a local llama.cpp server
type LlamaCppConfig struct {
	ServerURL     string
	ModelPath     string
	MaxTokens     int
	ContextSize   int
	Temperature   float32
	TopP          float32
	RepeatPenalty float32
	Timeout       time.Duration
}

// OpenAIConfig represents the configuration for OpenAI or an OpenAI-compatible server
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// AnthropicConfig represents the configuration for the Anthropic API
type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// HelpdeskConfig represents the Zendesk connection settings
type HelpdeskConfig struct {
	BaseURL     string
	Username    string
	APIToken    string
	SearchQuery string
	Timeout     time.Duration
}

// TriageConfig represents the pipeline settings
type TriageConfig struct {
	BatchSize          int
	MaxDescriptionSize int
	ExcludedDomains    []string
	// Macros overrides the built-in category to macro table. Keys are upper-cased
	// because viper lower-cases map keys.
	Macros map[string]int64
	DryRun bool
}

// HistoryConfig represents where run history is exported
type HistoryConfig struct {
	Sinks            []string
	FilePath         string
	SQLitePath       string
	MySQLDSN         string
	Retention        time.Duration
	CleanupFrequency time.Duration
}

// ScheduleConfig represents how runs are triggered
type ScheduleConfig struct {
	Mode string
	Cron string
}

// SlackConfig represents the Slack notifier settings
type SlackConfig struct {
	Token   string
	Channel string
	APIURL  string
}

// NotifyConfig represents the run summary notifiers
type NotifyConfig struct {
	Targets []string
	Verbose bool
	Slack   SlackConfig
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetLlamaCpp returns the llama.cpp configuration
func (c *Config) GetLlamaCpp() LlamaCppConfig {
	return LlamaCppConfig{
		ServerURL:     c.GetString("llamacpp.server_url"),
		ModelPath:     c.GetString("llamacpp.model_path"),
		MaxTokens:     c.GetInt("llamacpp.max_tokens"),
		ContextSize:   c.GetInt("llamacpp.context_size"),
		Temperature:   float32(c.GetFloat64("llamacpp.temperature")),
		TopP:          float32(c.GetFloat64("llamacpp.top_p")),
		RepeatPenalty: float32(c.GetFloat64("llamacpp.repeat_penalty")),
		Timeout:       c.durationOr("llamacpp.timeout", 5*time.Minute),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetAnthropic returns the Anthropic configuration
func (c *Config) GetAnthropic() AnthropicConfig {
	return AnthropicConfig{
		APIKey:      c.GetString("anthropic.api_key"),
		BaseURL:     c.GetString("anthropic.base_url"),
		ModelName:   c.GetString("anthropic.model_name"),
		MaxTokens:   c.GetInt("anthropic.max_tokens"),
		Temperature: float32(c.GetFloat64("anthropic.temperature")),
		TopP:        float32(c.GetFloat64("anthropic.top_p")),
	}
}

// GetHelpdesk returns the helpdesk configuration
func (c *Config) GetHelpdesk() HelpdeskConfig {
	return HelpdeskConfig{
		BaseURL:     c.GetString("helpdesk.base_url"),
		Username:    c.GetString("helpdesk.username"),
		APIToken:    c.GetString("helpdesk.api_token"),
		SearchQuery: c.GetString("helpdesk.search_query"),
		Timeout:     c.durationOr("helpdesk.timeout", 30*time.Second),
	}
}

// GetTriage returns the pipeline configuration
func (c *Config) GetTriage() (TriageConfig, error) {
	macros := make(map[string]int64)
	for label, raw := range c.v.GetStringMap("triage.macros") {
		id, err := cast.ToInt64E(raw)
		if err != nil {
			return TriageConfig{}, fmt.Errorf("invalid macro id for %s: %w", label, err)
		}
		macros[strings.ToUpper(label)] = id
	}

	return TriageConfig{
		BatchSize:          c.GetInt("triage.batch_size"),
		MaxDescriptionSize: c.GetInt("triage.max_description_size"),
		ExcludedDomains:    c.GetStringSlice("triage.excluded_domains"),
		Macros:             macros,
		DryRun:             c.GetBool("triage.dry_run"),
	}, nil
}

// GetHistory returns the history export configuration
func (c *Config) GetHistory() (HistoryConfig, error) {
	retention, err := c.GetDuration("history.retention")
	if err != nil {
		return HistoryConfig{}, fmt.Errorf("invalid history retention: %w", err)
	}
	cleanupFreq, err := c.GetDuration("history.cleanup_frequency")
	if err != nil {
		return HistoryConfig{}, fmt.Errorf("invalid history cleanup frequency: %w", err)
	}

	return HistoryConfig{
		Sinks:            c.GetStringSlice("history.sinks"),
		FilePath:         c.GetString("history.file_path"),
		SQLitePath:       c.GetString("history.sqlite_path"),
		MySQLDSN:         c.GetString("history.mysql_dsn"),
		Retention:        retention,
		CleanupFrequency: cleanupFreq,
	}, nil
}

// GetSchedule returns the run schedule configuration
func (c *Config) GetSchedule() ScheduleConfig {
	return ScheduleConfig{
		Mode: c.GetString("schedule.mode"),
		Cron: c.GetString("schedule.cron"),
	}
}

// GetNotify returns the notifier configuration
func (c *Config) GetNotify() NotifyConfig {
	return NotifyConfig{
		Targets: c.GetStringSlice("notify.targets"),
		Verbose: c.GetBool("notify.verbose"),
		Slack: SlackConfig{
			Token:   c.GetString("notify.slack.token"),
			Channel: c.GetString("notify.slack.channel"),
			APIURL:  c.GetString("notify.slack.api_url"),
		},
	}
}

// Validate checks the settings a full triage run cannot work without
func (c *Config) Validate() error {
	switch c.GetLLM().Provider {
	case "llamacpp", "openai", "gemini", "bedrock", "anthropic":
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.GetLLM().Provider)
	}

	helpdesk := c.GetHelpdesk()
	if helpdesk.Username == "" || helpdesk.APIToken == "" {
		return fmt.Errorf("helpdesk username and api token are required")
	}

	history, err := c.GetHistory()
	if err != nil {
		return err
	}
	for _, sink := range history.Sinks {
		switch sink {
		case "file", "sqlite", "mysql", "memory":
		default:
			return fmt.Errorf("unsupported history sink: %s", sink)
		}
	}

	if _, err := c.GetTriage(); err != nil {
		return err
	}

	switch mode := c.GetSchedule().Mode; mode {
	case "once", "cron":
	default:
		return fmt.Errorf("unsupported schedule mode: %s", mode)
	}

	return nil
}

// durationOr parses a duration key and falls back when the value is malformed
func (c *Config) durationOr(key string, fallback time.Duration) time.Duration {
	d, err := c.GetDuration(key)
	if err != nil {
		return fallback
	}
	return d
}
