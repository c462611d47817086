package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	// Credentials are usually kept in a .env file next to the binary
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/support-triage/")
	v.AddConfigPath("$HOME/.support-triage")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("SUPPORT_TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindLegacyEnv(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration from an explicit config file path
func NewFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("SUPPORT_TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// bindLegacyEnv keeps the USERNAME / API_TOKEN variables of older deployments working
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("helpdesk.username", "SUPPORT_TRIAGE_HELPDESK_USERNAME", "USERNAME")
	_ = v.BindEnv("helpdesk.api_token", "SUPPORT_TRIAGE_HELPDESK_API_TOKEN", "API_TOKEN")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "llamacpp")

	// llama.cpp server defaults
	v.SetDefault("llamacpp.server_url", "http://localhost:8080")
	v.SetDefault("llamacpp.model_path", "models/7B/ggml-model-q4_1.gguf")
	v.SetDefault("llamacpp.max_tokens", 2000)
	v.SetDefault("llamacpp.context_size", 2048)
	v.SetDefault("llamacpp.temperature", 0.6)
	v.SetDefault("llamacpp.top_p", 0.8)
	v.SetDefault("llamacpp.repeat_penalty", 0.8)
	v.SetDefault("llamacpp.timeout", "5m")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-3.5-turbo-instruct")
	v.SetDefault("openai.max_tokens", 16)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 16)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "meta.llama2-13b-chat-v1")
	v.SetDefault("bedrock.max_tokens", 16)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)

	// Anthropic defaults
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.model_name", "claude-3-5-haiku-latest")
	v.SetDefault("anthropic.max_tokens", 16)
	v.SetDefault("anthropic.temperature", 0.1)
	v.SetDefault("anthropic.top_p", 0.9)

	// Helpdesk defaults
	v.SetDefault("helpdesk.base_url", "https://ticketio.zendesk.com/api/v2/")
	v.SetDefault("helpdesk.username", "")
	v.SetDefault("helpdesk.api_token", "")
	v.SetDefault("helpdesk.search_query", `type:ticket group:"1. Level Customer Support" status:open`)
	v.SetDefault("helpdesk.timeout", "30s")

	// Triage defaults
	v.SetDefault("triage.batch_size", 50)
	v.SetDefault("triage.max_description_size", 4096)
	v.SetDefault("triage.excluded_domains", []string{})
	v.SetDefault("triage.macros", map[string]interface{}{})
	v.SetDefault("triage.dry_run", false)

	// History defaults
	v.SetDefault("history.sinks", []string{"file"})
	v.SetDefault("history.file_path", "history.json")
	v.SetDefault("history.sqlite_path", "data/triage_history.db")
	v.SetDefault("history.mysql_dsn", "user:password@tcp(localhost:3306)/support_triage")
	v.SetDefault("history.retention", "720h")
	v.SetDefault("history.cleanup_frequency", "1h")

	// Schedule defaults
	v.SetDefault("schedule.mode", "once")
	v.SetDefault("schedule.cron", "*/15 * * * *")

	// Notification defaults
	v.SetDefault("notify.targets", []string{"console"})
	v.SetDefault("notify.verbose", false)
	v.SetDefault("notify.slack.token", "")
	v.SetDefault("notify.slack.channel", "")
	v.SetDefault("notify.slack.api_url", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
