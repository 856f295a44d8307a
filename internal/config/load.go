package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables (VAULT_ prefix, underscores for
// nesting, e.g. VAULT_LOOP_MAX_RETRIES) take precedence over values
// from the config file, which take precedence over defaults.
// Returns a populated Config or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config.yaml in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("VAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks a Config against its struct validation tags.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vault.dir", "vault")
	v.SetDefault("loop.max_retries", 3)
	v.SetDefault("loop.max_loops", 50)
	v.SetDefault("summarizer.model_name", "gemini-2.0-flash")
	v.SetDefault("summarizer.timeout", "30s")
	v.SetDefault("summarizer.max_prompt_chars", 6000)
	v.SetDefault("log.level", "info")

	// AutomaticEnv only resolves keys viper already knows about, so the
	// optional keys need empty defaults for their env vars to be seen.
	v.SetDefault("summarizer.gemini_api_key", "")
	v.SetDefault("database.url", "")
}
