package safety_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/safety"
)

func TestScore_EmptyText(t *testing.T) {
	scores := safety.Score("")
	for _, cat := range safety.Categories {
		assert.Equal(t, 0.0, scores[string(cat)])
	}
}

func TestScore_CountsWordBoundaryMatches(t *testing.T) {
	// 4 words, 1 match -> min(1, 5*1/4) = 1.25 -> clamped to 1.
	scores := safety.Score("please kill the target")
	assert.Equal(t, 1.0, scores[string(safety.CategoryViolence)])
}

func TestScore_DoesNotMatchSubstrings(t *testing.T) {
	scores := safety.Score("a skilled killjoy")
	assert.Equal(t, 0.0, scores[string(safety.CategoryViolence)])
}

func TestScore_CaseInsensitive(t *testing.T) {
	scores := safety.Score("KILL KILL KILL KILL")
	assert.Equal(t, 1.0, scores[string(safety.CategoryViolence)])
}

func TestAnalyzeEventFast_AggregatesSources(t *testing.T) {
	event := &models.Event{
		Kind:     "search",
		Title:    "kill",
		DataJSON: `{"dom_sample":"shoot","text":"gun"}`,
	}
	scores := safety.AnalyzeEventFast(event, "stab")
	require.Contains(t, scores, string(safety.CategoryViolence))
	assert.Greater(t, scores[string(safety.CategoryViolence)], 0.0)
}

func TestAnalyzeEventFast_TitleOnlyForSearchKind(t *testing.T) {
	event := &models.Event{
		Kind:     "navigation",
		Title:    "kill kill kill kill",
		DataJSON: `{}`,
	}
	scores := safety.AnalyzeEventFast(event, "")
	assert.Equal(t, 0.0, scores[string(safety.CategoryViolence)])
}
