package config

// ScheduleConfig defines the quiet-hours window during which only
// allowlisted domains are permitted.
type ScheduleConfig struct {
	Name  string `yaml:"name,omitempty"`
	Days  string `yaml:"days,omitempty"`  // CSV of "Mon".."Sun"
	Quiet string `yaml:"quiet,omitempty"` // "HH:MM-HH:MM", may wrap midnight
}

// PolicyConfig holds the deterministic policy engine's static inputs.
type PolicyConfig struct {
	Version      string   `yaml:"version,omitempty"`
	AllowDomains []string `yaml:"allow_domains,omitempty"`
	BlockDomains []string `yaml:"block_domains,omitempty"`
}

// JudgeConfig configures the generative classifier capability.
type JudgeConfig struct {
	// Provider selects the backend: "local" (default, HTTP JSON endpoint
	// compatible with Ollama/OpenAI chat completions) or "anthropic".
	Provider string `yaml:"provider,omitempty" validate:"omitempty,oneof=local anthropic"`
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`

	// AnthropicAPIKeyEnv names the environment variable holding the
	// Anthropic API key, consulted only when Provider == "anthropic".
	AnthropicAPIKeyEnv string `yaml:"anthropic_api_key_env,omitempty"`
}

// OCRConfig configures the OCR capability.
type OCRConfig struct {
	Enabled             bool    `yaml:"enabled"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold,omitempty" validate:"omitempty,min=0,max=1"`
	SaveScreenshots     bool    `yaml:"save_screenshots"`
	ScreenshotsDir      string  `yaml:"screenshots_dir,omitempty"`
}

// ASRConfig configures the optional audio-transcript scoring supplement.
// The engine itself is an external collaborator; this only toggles whether
// the fast scorer and judge consider audio_b64 payloads at all.
type ASRConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ReplicatorConfig configures the resumable local→secondary mirror task.
type ReplicatorConfig struct {
	PGDSN     string `yaml:"pg_dsn,omitempty"`
	Interval  string `yaml:"interval,omitempty"` // cron schedule, e.g. "@every 5s"
	BatchSize int    `yaml:"batch_size,omitempty" validate:"omitempty,min=1"`
}

// GuardianConfig configures the override-feedback learning loop.
type GuardianConfig struct {
	Interval string `yaml:"interval,omitempty"` // cron schedule, e.g. "@every 1h"
}

// RetentionConfig controls cleanup of on-disk artifacts the core accumulates
// (currently: saved screenshot files past their useful life). Event/decision
// rows themselves are never deleted by the core.
type RetentionConfig struct {
	ScreenshotTTLDays int    `yaml:"screenshot_ttl_days,omitempty" validate:"omitempty,min=1"`
	CleanupInterval   string `yaml:"cleanup_interval,omitempty"`
}
