package config

// Built-in defaults, applied before user YAML is merged on top via mergo.
func defaultConfig() *Config {
	return &Config{
		DBPath: "watchit.db",

		Schedule: ScheduleConfig{
			Days:  "Mon,Tue,Wed,Thu,Fri,Sat,Sun",
			Quiet: "21:00-07:00",
		},
		Policy: PolicyConfig{
			Version:      "1",
			AllowDomains: []string{"wikipedia.org", "khanacademy.org", ".edu"},
			BlockDomains: []string{"pornhub.com", "xvideos.com", "redtube.com"},
		},
		Judge: JudgeConfig{
			Provider:           "local",
			Model:              "llama3.1",
			BaseURL:            "http://localhost:11434",
			AnthropicAPIKeyEnv: "ANTHROPIC_API_KEY",
		},
		OCR: OCRConfig{
			Enabled:             true,
			ConfidenceThreshold: 0.6,
			ScreenshotsDir:      "screenshots",
		},
		Replicator: ReplicatorConfig{
			Interval:  "@every 5s",
			BatchSize: 100,
		},
		Guardian: GuardianConfig{
			Interval: "@every 1h",
		},
		Retention: RetentionConfig{
			ScreenshotTTLDays: 30,
			CleanupInterval:   "@every 12h",
		},
		BindHost: "127.0.0.1",
		BindPort: 8787,
		DataDir:  "./data",
		LogLevel: "info",
	}
}
