// Package safety implements the fast, deterministic, side-effect-free
// keyword/regex text scorer that underlies the headline and URL
// analyzers.
package safety

import (
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/watchit/watchit/pkg/models"
)

var (
	wordPattern    = regexp.MustCompile(`\S+`)
	patternCache   = map[Category]*regexp.Regexp{}
	patternCacheMu sync.Mutex
)

// categoryPattern lazily compiles and caches a single case-insensitive,
// word-boundary alternation of a category's keyword list.
func categoryPattern(cat Category) *regexp.Regexp {
	patternCacheMu.Lock()
	defer patternCacheMu.Unlock()

	if re, ok := patternCache[cat]; ok {
		return re
	}

	words := keywordLists[cat]
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = regexp.QuoteMeta(w)
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(escaped, "|") + `)\b`)
	patternCache[cat] = re
	return re
}

// Scores maps a Category to a score in [0,1].
type Scores map[string]float64

// Score computes a Scores map over the given text blob. Deterministic and
// side-effect-free: tokenizes on whitespace to find the word count W =
// max(1, |words|), then for each category counts case-insensitive
// word-boundary keyword matches and sets score = min(1, 5*matches/W),
// rounded to three decimals.
func Score(text string) Scores {
	words := wordPattern.FindAllString(text, -1)
	w := len(words)
	if w < 1 {
		w = 1
	}

	scores := make(Scores, len(Categories))
	for _, cat := range Categories {
		matches := len(categoryPattern(cat).FindAllString(text, -1))
		raw := 5.0 * float64(matches) / float64(w)
		if raw > 1 {
			raw = 1
		}
		scores[string(cat)] = round3(raw)
	}
	return scores
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// AnalyzeEventFast implements analyze_event_fast(event, extra_text): it
// concatenates data_json.dom_sample, data_json.text, the title (only
// when kind=="search"), and extra_text (typically OCR output) before
// scoring.
func AnalyzeEventFast(event *models.Event, extraText string) Scores {
	payload := event.DecodePayload()

	parts := []string{payload.DomSample, payload.Text}
	if event.Kind == "search" {
		parts = append(parts, event.Title)
	}
	parts = append(parts, extraText)

	return Score(strings.Join(parts, "\n"))
}
