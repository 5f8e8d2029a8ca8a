// Package policy implements the deterministic policy engine: the single
// place that turns accumulated signals into a final moderation action.
// Pure function of its inputs; no I/O.
package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/safety"
	"github.com/watchit/watchit/pkg/urlutil"
)

// Config holds the policy engine's static, operator-configured inputs:
// sched_name/days/quiet, policy_version, and the allow/block domain sets.
type Config struct {
	Version      string
	ScheduleName string
	ScheduleDays string // CSV of "Mon".."Sun"
	Quiet        string // "HH:MM-HH:MM", may wrap midnight
	AllowDomains []string
	BlockDomains []string
	Timezone     *time.Location
}

// blockThresholds maps strictness to the fast-score block threshold.
var blockThresholds = map[models.Strictness]float64{
	models.StrictnessLenient:  0.95,
	models.StrictnessStandard: 0.9,
	models.StrictnessStrict:   0.8,
}

// Input is everything the policy engine needs to evaluate one event.
type Input struct {
	Event       *models.Event
	FastScores  map[string]float64
	Judge       *models.JudgeResult
	Profile     *models.ChildProfile
	Headline    *models.HeadlineResult
	PausedUntil *int64 // epoch-ms, nil if no pause setting exists
	Now         time.Time
}

// Evaluate runs the policy decision table, first match wins.
func Evaluate(cfg Config, in Input) models.Outcome {
	nowMS := in.Now.UnixMilli()

	// 1. Pause.
	if in.PausedUntil != nil && *in.PausedUntil > nowMS {
		return models.Outcome{Action: models.ActionAllow, Reason: "paused"}
	}

	domain := urlutil.Domain(in.Event.URL)

	// 2. Schedule.
	if inQuietHours(cfg, in.Now) && !urlutil.ContainsFragment(domain, cfg.AllowDomains) {
		return models.Outcome{
			Action:     models.ActionBlock,
			Reason:     "schedule quiet hours",
			Categories: []string{"schedule"},
		}
	}

	// 3. Allowlist.
	if urlutil.ContainsFragment(domain, cfg.AllowDomains) {
		return models.Outcome{Action: models.ActionAllow, Reason: "allowlist"}
	}

	// 4. Blocklist.
	if urlutil.ContainsFragment(domain, cfg.BlockDomains) {
		return models.Outcome{
			Action:     models.ActionBlock,
			Reason:     fmt.Sprintf("blocklist %s", domain),
			Categories: []string{"adult"},
		}
	}

	// 5. Threshold.
	strictness := models.StrictnessStandard
	if in.Profile != nil {
		strictness = in.Profile.Strictness.Normalized()
	}
	threshold := blockThresholds[strictness]
	var exceeded []string
	for _, cat := range safety.Categories {
		if in.FastScores[string(cat)] >= threshold {
			exceeded = append(exceeded, string(cat))
		}
	}
	if len(exceeded) > 0 {
		return models.Outcome{
			Action:     models.ActionBlock,
			Reason:     "prefilter high",
			Categories: exceeded,
		}
	}

	// 6. Headline risk.
	if in.Headline != nil && in.Headline.Risk == models.RiskHigh {
		return models.Outcome{
			Action:     models.ActionBlock,
			Categories: []string{"headline"},
		}
	}

	// 7. Judge.
	if in.Judge != nil {
		action := in.Judge.Action
		if action != models.ActionAllow && action != models.ActionBlock {
			action = models.ActionBlock
		}
		return models.Outcome{
			Action:     action,
			Reason:     fmt.Sprintf("llm:%s", in.Judge.Severity),
			Categories: in.Judge.Categories,
		}
	}

	// 8. Default.
	return models.Outcome{Action: models.ActionAllow, Reason: "default allow"}
}

// inQuietHours reports whether now (in cfg.Timezone, defaulting to local)
// falls inside the configured quiet window on a configured day. Windows
// may wrap midnight: if start > end the window is [start,24:00) ∪
// [00:00,end], inclusive of the end minute.
func inQuietHours(cfg Config, now time.Time) bool {
	if cfg.Quiet == "" {
		return false
	}
	start, end, ok := parseQuietWindow(cfg.Quiet)
	if !ok {
		return false
	}

	loc := cfg.Timezone
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)

	if cfg.ScheduleDays != "" && !dayScheduled(cfg.ScheduleDays, local.Weekday()) {
		return false
	}

	cur := local.Hour()*60 + local.Minute()
	if start <= end {
		return cur >= start && cur < end
	}
	return cur >= start || cur <= end
}

func dayScheduled(days string, weekday time.Weekday) bool {
	abbrev := weekday.String()[:3]
	for _, d := range strings.Split(days, ",") {
		if strings.TrimSpace(d) == abbrev {
			return true
		}
	}
	return false
}

// parseQuietWindow parses "HH:MM-HH:MM" into minutes-since-midnight.
func parseQuietWindow(quiet string) (start, end int, ok bool) {
	parts := strings.SplitN(quiet, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok1 := parseHHMM(parts[0])
	end, ok2 := parseHHMM(parts[1])
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return start, end, true
}

func parseHHMM(s string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h == 24 && m == 0 {
		return 24 * 60, true
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
