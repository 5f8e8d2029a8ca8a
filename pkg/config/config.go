// Package config loads and validates the watchit daemon's configuration.
package config

// Config is the umbrella configuration object returned by Initialize and
// threaded through the rest of the application.
type Config struct {
	configDir string

	// Local encrypted event/decision store.
	DBPath string `yaml:"db_path" validate:"required"`
	DBKey  string `yaml:"db_key"`

	// Parent-facing control surface.
	ParentPIN string `yaml:"parent_pin"`

	Schedule ScheduleConfig   `yaml:"schedule"`
	Policy   PolicyConfig     `yaml:"policy"`
	Judge    JudgeConfig      `yaml:"judge"`
	OCR      OCRConfig        `yaml:"ocr"`
	ASR      ASRConfig        `yaml:"asr"`
	Replicator ReplicatorConfig `yaml:"replicator"`
	Guardian GuardianConfig   `yaml:"guardian"`
	Retention RetentionConfig `yaml:"retention"`

	BindHost string `yaml:"bind_host"`
	BindPort int    `yaml:"bind_port"`

	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
}

// ConfigDir returns the directory the configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}
