// Package headlines implements the cheap domain/title triage analyzer: a
// pure function with no I/O, evaluated before the more expensive
// URL/judge pass.
package headlines

import (
	"strings"

	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/safety"
	"github.com/watchit/watchit/pkg/urlutil"
)

// EarlyExitConfidence is the confidence threshold above which the URL
// analyzer short-circuits on an allow/block headline result.
const EarlyExitConfidence = 0.85

// Analyze runs the headline decision table over event and profile. Pure,
// no I/O.
func Analyze(event *models.Event, profile *models.ChildProfile) *models.HeadlineResult {
	scores := safety.AnalyzeEventFast(event, "")
	domain := strings.ToLower(Domain(event.URL))
	title := strings.ToLower(event.Title)

	sexual := scores[string(safety.CategorySexual)]
	violence := scores[string(safety.CategoryViolence)]
	profanity := scores[string(safety.CategoryProfanity)]

	var (
		risk       models.RiskLevel
		action     models.Action
		confidence float64
		flags      []string
	)

	switch {
	case containsHighRiskToken(domain) || containsHighRiskToken(title) || sexual >= 0.9 || violence >= 0.95:
		risk = models.RiskHigh
		action = models.ActionBlock
		confidence = 0.9
		flags = matchedHighRiskTokens(domain, title)

	case sexual < 0.15 && violence < 0.2 && profanity < 0.2 && matchesLowRiskFragment(domain):
		risk = models.RiskLow
		action = models.ActionAllow
		confidence = 0.88

	default:
		if sexual > 0.4 || violence > 0.4 {
			risk = models.RiskMedium
		} else {
			risk = models.RiskLow
		}
		action = models.ActionAllow
		confidence = 0.55
		flags = elevatedCategories(scores)
	}

	confidence = applyStrictnessAdjustment(confidence, action, profile)

	return &models.HeadlineResult{
		Risk:       risk,
		Flags:      flags,
		Confidence: confidence,
		Action:     action,
		FastScores: scores,
	}
}

// applyStrictnessAdjustment boosts block-confidence by +0.05 and penalizes
// allow-confidence by -0.05 under strict strictness, each clamped to [0,1].
func applyStrictnessAdjustment(confidence float64, action models.Action, profile *models.ChildProfile) float64 {
	if profile == nil || profile.Strictness.Normalized() != models.StrictnessStrict {
		return confidence
	}
	if action == models.ActionBlock {
		confidence += 0.05
	} else {
		confidence -= 0.05
	}
	return clamp01(confidence)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Domain returns the lowercased, www-stripped host of rawURL.
func Domain(rawURL string) string {
	return urlutil.Domain(rawURL)
}

func containsHighRiskToken(s string) bool {
	for _, tok := range safety.HighRiskTokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

func matchedHighRiskTokens(domain, title string) []string {
	var matched []string
	for _, tok := range safety.HighRiskTokens {
		if strings.Contains(domain, tok) || strings.Contains(title, tok) {
			matched = append(matched, tok)
		}
	}
	return matched
}

func matchesLowRiskFragment(domain string) bool {
	return urlutil.ContainsFragment(domain, safety.LowRiskDomainFragments)
}

func elevatedCategories(scores safety.Scores) []string {
	var flags []string
	for _, cat := range safety.Categories {
		if scores[string(cat)] > 0.4 {
			flags = append(flags, string(cat))
		}
	}
	return flags
}
