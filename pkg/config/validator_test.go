package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.configDir = "."
	return cfg
}

func TestValidateAllAcceptsDefaults(t *testing.T) {
	require.NoError(t, NewValidator(validConfig()).ValidateAll())
}

func TestValidateStoreRequiresDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateScheduleRejectsMalformedQuietWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Schedule.Quiet = "not-a-range"
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule validation failed")
}

func TestValidateScheduleRejectsUnknownDay(t *testing.T) {
	cfg := validConfig()
	cfg.Schedule.Days = "Mon,Funday"
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateJudgeRequiresBaseURLForLocalProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Judge.Provider = "local"
	cfg.Judge.BaseURL = ""
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "judge validation failed")
}

func TestValidateJudgeRequiresAPIKeyEnvForAnthropicProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Judge.Provider = "anthropic"
	cfg.Judge.AnthropicAPIKeyEnv = ""
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateOCRConfidenceThresholdRange(t *testing.T) {
	cfg := validConfig()
	cfg.OCR.ConfidenceThreshold = 1.5
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateOCRRequiresScreenshotsDirWhenSaving(t *testing.T) {
	cfg := validConfig()
	cfg.OCR.SaveScreenshots = true
	cfg.OCR.ScreenshotsDir = ""
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateReplicatorOptionalWhenNoDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Replicator.PGDSN = ""
	cfg.Replicator.BatchSize = 0
	require.NoError(t, NewValidator(cfg).ValidateAll())
}

func TestValidateReplicatorBatchSizeWhenDSNSet(t *testing.T) {
	cfg := validConfig()
	cfg.Replicator.PGDSN = "postgres://localhost/watchit"
	cfg.Replicator.BatchSize = 0
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}
