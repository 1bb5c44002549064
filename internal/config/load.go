package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. DECKFORGE_SERVER_PORT.
const EnvPrefix = "DECKFORGE"

// Default values applied before the config file and the environment.
var defaults = map[string]any{
	"server.port":                8080,
	"server.log_level":           "info",
	"server.shutdown_timeout":    "15s",
	"database.url":               "",
	"llm.provider":               "gemini",
	"llm.gemini_api_key":         "",
	"llm.openai_api_key":         "",
	"llm.base_url":               "",
	"llm.metadata_model":         "gemini-2.0-flash",
	"llm.image_model":            "gemini-2.0-flash-preview-image-generation",
	"llm.metadata_prompt_path":   "",
	"llm.image_prompt_path":      "",
	"llm.rate_limit_patterns":    []string{},
	"llm.request_timeout":        "120s",
	"generation.max_retries":     3,
	"generation.initial_delay":   "10s",
	"generation.growth_factor":   1.5,
	"generation.batch_size":      15,
	"generation.metadata_pacing": "3s",
	"generation.image_pacing":    "4s",
}

// Load reads configuration from ./config.yaml (when present) and the
// environment. Environment variables take precedence over the file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile behaves like Load but reads the given config file instead of
// searching the working directory. A missing explicit file is an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind the secrets so they resolve without a file entry.
	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"database.url", EnvPrefix + "_DATABASE_URL"},
		{"llm.gemini_api_key", EnvPrefix + "_LLM_GEMINI_API_KEY"},
		{"llm.openai_api_key", EnvPrefix + "_LLM_OPENAI_API_KEY"},
	}
	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks a configuration against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// Default returns a configuration populated with the default values only.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			LogLevel:        "info",
			ShutdownTimeout: 15 * time.Second,
		},
		LLM: LLMConfig{
			Provider:       "gemini",
			MetadataModel:  "gemini-2.0-flash",
			ImageModel:     "gemini-2.0-flash-preview-image-generation",
			RequestTimeout: 120 * time.Second,
		},
		Generation: GenerationConfig{
			MaxRetries:     3,
			InitialDelay:   10 * time.Second,
			GrowthFactor:   1.5,
			BatchSize:      15,
			MetadataPacing: 3 * time.Second,
			ImagePacing:    4 * time.Second,
		},
	}
}
