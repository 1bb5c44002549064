package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL keeps the deck in memory only.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LLMConfig selects and configures the generation service.
type LLMConfig struct {
	Provider     string `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	OpenAIAPIKey string `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`

	// BaseURL overrides the OpenAI-compatible endpoint.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	MetadataModel string `mapstructure:"metadata_model" validate:"required"`
	ImageModel    string `mapstructure:"image_model" validate:"required"`

	// Optional template files replacing the embedded prompts.
	MetadataPromptPath string `mapstructure:"metadata_prompt_path"`
	ImagePromptPath    string `mapstructure:"image_prompt_path"`

	// RateLimitPatterns are message substrings classified as rate limiting.
	// Empty means the built-in list.
	RateLimitPatterns []string `mapstructure:"rate_limit_patterns"`

	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

// GenerationConfig holds the pacing and retry policy.
type GenerationConfig struct {
	MaxRetries     int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	InitialDelay   time.Duration `mapstructure:"initial_delay" validate:"gte=0"`
	GrowthFactor   float64       `mapstructure:"growth_factor" validate:"gte=1"`
	BatchSize      int           `mapstructure:"batch_size" validate:"gt=0"`
	MetadataPacing time.Duration `mapstructure:"metadata_pacing" validate:"gte=0"`
	ImagePacing    time.Duration `mapstructure:"image_pacing" validate:"gte=0"`
}
