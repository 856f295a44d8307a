package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Vault      VaultConfig      `mapstructure:"vault"      validate:"required"`
	Loop       LoopConfig       `mapstructure:"loop"       validate:"required"`
	Summarizer SummarizerConfig `mapstructure:"summarizer" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"        validate:"required"`
}

// VaultConfig locates the task vault on disk.
type VaultConfig struct {
	// Dir is the root directory holding the state locations
	// (Intake, Pending, Personal, Business, Done) and the Logs trail.
	Dir string `mapstructure:"dir" validate:"required"`
}

// LoopConfig bounds the processing loop.
type LoopConfig struct {
	// MaxRetries is the per-task attempt ceiling. Exceeding it finalizes
	// the task as Failed rather than retrying forever.
	MaxRetries int `mapstructure:"max_retries" validate:"required,gt=0"`

	// MaxLoops is the iteration ceiling for one run. It exists purely as
	// a liveness safety valve against bugs that keep regenerating work.
	MaxLoops int `mapstructure:"max_loops" validate:"required,gt=0"`
}

// SummarizerConfig contains the LLM integration settings.
type SummarizerConfig struct {
	// GeminiAPIKey may be empty: the agent then runs with the summarizer
	// permanently unavailable and every task takes the degraded path.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	ModelName string `mapstructure:"model_name" validate:"required"`

	// Timeout bounds each summarizer call. A call exceeding it is treated
	// identically to the summarizer being unavailable.
	Timeout time.Duration `mapstructure:"timeout" validate:"required,gt=0"`

	// MaxPromptChars truncates task content before prompting.
	MaxPromptChars int `mapstructure:"max_prompt_chars" validate:"required,gt=0"`
}

// DatabaseConfig configures the optional Postgres mirror.
type DatabaseConfig struct {
	// URL is the Postgres connection string. Empty disables the mirror;
	// the filesystem audit trail remains authoritative either way.
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}
