package headlines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchit/watchit/pkg/agent/headlines"
	"github.com/watchit/watchit/pkg/models"
)

func TestAnalyze_HighRiskDomainBlocks(t *testing.T) {
	event := &models.Event{URL: "https://pornhub.com/video", Title: "video"}
	profile := &models.ChildProfile{Strictness: models.StrictnessStandard}

	result := headlines.Analyze(event, profile)
	assert.Equal(t, models.RiskHigh, result.Risk)
	assert.Equal(t, models.ActionBlock, result.Action)
	assert.Equal(t, 0.9, result.Confidence)
}

func TestAnalyze_LowRiskAllowlistedDomainAllows(t *testing.T) {
	event := &models.Event{URL: "https://en.wikipedia.org/wiki/Cat", Title: "Cat"}
	profile := &models.ChildProfile{Strictness: models.StrictnessStandard}

	result := headlines.Analyze(event, profile)
	assert.Equal(t, models.RiskLow, result.Risk)
	assert.Equal(t, models.ActionAllow, result.Action)
	assert.Equal(t, 0.88, result.Confidence)
}

func TestAnalyze_MediumRiskFallsThrough(t *testing.T) {
	// 1 violence keyword in 10 words: min(1, 5*1/10) = 0.5, above the 0.4
	// medium bar and below the 0.95 high-risk bar.
	event := &models.Event{
		URL:      "https://example.com/forum",
		Title:    "discussion",
		DataJSON: `{"text":"the hero has to kill the dragon to save everyone"}`,
	}
	profile := &models.ChildProfile{Strictness: models.StrictnessStandard}

	result := headlines.Analyze(event, profile)
	assert.Equal(t, models.RiskMedium, result.Risk)
	assert.Equal(t, models.ActionAllow, result.Action)
	assert.Equal(t, 0.55, result.Confidence)
}

func TestAnalyze_StrictBoostsBlockConfidence(t *testing.T) {
	event := &models.Event{URL: "https://pornhub.com/video", Title: "video"}
	profile := &models.ChildProfile{Strictness: models.StrictnessStrict}

	result := headlines.Analyze(event, profile)
	assert.InDelta(t, 0.95, result.Confidence, 0.0001)
}

func TestAnalyze_StrictPenalizesAllowConfidence(t *testing.T) {
	event := &models.Event{URL: "https://en.wikipedia.org/wiki/Cat", Title: "Cat"}
	profile := &models.ChildProfile{Strictness: models.StrictnessStrict}

	result := headlines.Analyze(event, profile)
	assert.InDelta(t, 0.83, result.Confidence, 0.0001)
}

func TestDomain_StripsWWWAndPort(t *testing.T) {
	require.Equal(t, "example.com", headlines.Domain("https://www.example.com:8443/path"))
}
