package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/policy"
)

func testConfig() policy.Config {
	return policy.Config{
		Version:      "1",
		ScheduleDays: "Mon,Tue,Wed,Thu,Fri,Sat,Sun",
		Quiet:        "21:00-07:00",
		AllowDomains: []string{"wikipedia.org", "khanacademy.org", ".edu"},
		BlockDomains: []string{"pornhub.com", "xvideos.com"},
		Timezone:     time.UTC,
	}
}

func TestEvaluate_Scenario1_Blocklist(t *testing.T) {
	event := &models.Event{URL: "https://pornhub.com/x", Title: "x", Kind: "nav"}
	outcome := policy.Evaluate(testConfig(), policy.Input{
		Event:   event,
		Profile: &models.ChildProfile{Strictness: models.StrictnessStandard},
		Now:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, models.ActionBlock, outcome.Action)
	assert.Equal(t, "blocklist pornhub.com", outcome.Reason)
	assert.Equal(t, []string{"adult"}, outcome.Categories)
}

func TestEvaluate_Scenario2_AllowlistBeatsQuietHours(t *testing.T) {
	event := &models.Event{URL: "https://en.wikipedia.org/wiki/Cat", Title: "Cat"}
	// Wednesday 23:00 UTC.
	now := time.Date(2026, 1, 7, 23, 0, 0, 0, time.UTC)
	outcome := policy.Evaluate(testConfig(), policy.Input{
		Event:   event,
		Profile: &models.ChildProfile{Strictness: models.StrictnessStandard},
		Now:     now,
	})
	assert.Equal(t, models.ActionAllow, outcome.Action)
}

func TestEvaluate_Scenario3_PrefilterHigh(t *testing.T) {
	event := &models.Event{URL: "https://example.com/x", Title: "x"}
	outcome := policy.Evaluate(testConfig(), policy.Input{
		Event:      event,
		FastScores: map[string]float64{"sexual": 0.96},
		Profile:    &models.ChildProfile{Strictness: models.StrictnessStandard},
		Now:        time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, models.ActionBlock, outcome.Action)
	assert.Equal(t, "prefilter high", outcome.Reason)
	assert.Equal(t, []string{"sexual"}, outcome.Categories)
}

func TestEvaluate_QuietHoursBlocksNonAllowlisted(t *testing.T) {
	event := &models.Event{URL: "https://example.com/x", Title: "x"}
	now := time.Date(2026, 1, 7, 3, 0, 0, 0, time.UTC) // 03:00 Wed, inside wrap-around window
	outcome := policy.Evaluate(testConfig(), policy.Input{
		Event:   event,
		Profile: &models.ChildProfile{Strictness: models.StrictnessStandard},
		Now:     now,
	})
	assert.Equal(t, models.ActionBlock, outcome.Action)
	assert.Equal(t, []string{"schedule"}, outcome.Categories)
}

func TestEvaluate_Pause(t *testing.T) {
	event := &models.Event{URL: "https://pornhub.com/x"}
	future := time.Now().Add(time.Hour).UnixMilli()
	outcome := policy.Evaluate(testConfig(), policy.Input{
		Event:       event,
		PausedUntil: &future,
		Now:         time.Now(),
	})
	assert.Equal(t, models.ActionAllow, outcome.Action)
	assert.Equal(t, "paused", outcome.Reason)
}

func TestEvaluate_HeadlineHighRiskBlocks(t *testing.T) {
	event := &models.Event{URL: "https://example.com/x"}
	outcome := policy.Evaluate(testConfig(), policy.Input{
		Event:    event,
		Profile:  &models.ChildProfile{Strictness: models.StrictnessStandard},
		Headline: &models.HeadlineResult{Risk: models.RiskHigh},
		Now:      time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, models.ActionBlock, outcome.Action)
	assert.Equal(t, []string{"headline"}, outcome.Categories)
}

func TestEvaluate_JudgeCoercesNonAllowBlockToBlock(t *testing.T) {
	event := &models.Event{URL: "https://example.com/x"}
	outcome := policy.Evaluate(testConfig(), policy.Input{
		Event:   event,
		Profile: &models.ChildProfile{Strictness: models.StrictnessStandard},
		Judge:   &models.JudgeResult{Action: models.ActionWarn, Severity: models.SeverityMedium},
		Now:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, models.ActionBlock, outcome.Action)
	assert.Equal(t, "llm:medium", outcome.Reason)
}

func TestEvaluate_DefaultAllow(t *testing.T) {
	event := &models.Event{URL: "https://example.com/x"}
	outcome := policy.Evaluate(testConfig(), policy.Input{
		Event:   event,
		Profile: &models.ChildProfile{Strictness: models.StrictnessStandard},
		Now:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, models.ActionAllow, outcome.Action)
	assert.Equal(t, "default allow", outcome.Reason)
}
