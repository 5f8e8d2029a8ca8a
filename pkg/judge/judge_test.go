package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject_Clean(t *testing.T) {
	obj, ok := extractJSONObject(`{"a":1}`)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, obj)
}

func TestExtractJSONObject_WrappedInProse(t *testing.T) {
	obj, ok := extractJSONObject("Sure, here is the result:\n```json\n{\"action\":\"block\"}\n```\nLet me know if you need more.")
	require.True(t, ok)
	assert.Equal(t, `{"action":"block"}`, obj)
}

func TestExtractJSONObject_NestedBraces(t *testing.T) {
	obj, ok := extractJSONObject(`prefix {"a": {"b": 1}, "c": "}"} suffix`)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}, "c": "}"}`, obj)
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	_, ok := extractJSONObject("no json here")
	assert.False(t, ok)
}

func TestParseJudgeResult_Direct(t *testing.T) {
	result, ok := parseJudgeResult(`{"action":"allow","confidence":0.9}`)
	require.True(t, ok)
	assert.EqualValues(t, "allow", result.Action)
}

func TestParseJudgeResult_Wrapped(t *testing.T) {
	result, ok := parseJudgeResult("Here you go: {\"action\":\"warn\",\"confidence\":0.5}")
	require.True(t, ok)
	assert.EqualValues(t, "warn", result.Action)
}

func TestParseJudgeResult_MissingAction(t *testing.T) {
	_, ok := parseJudgeResult(`{"confidence":0.5}`)
	assert.False(t, ok)
}

func TestGuidanceCache_SetGet(t *testing.T) {
	c := NewGuidanceCache()
	assert.Equal(t, "", c.Get())

	c.Set("be careful with gaming forums")
	assert.Equal(t, "be careful with gaming forums", c.Get())
}

func TestSystemPrompt_AppendsGuidanceWhenPresent(t *testing.T) {
	base := systemPrompt("")
	withGuidance := systemPrompt("watch out for X")
	assert.NotContains(t, base, "watch out for X")
	assert.Contains(t, withGuidance, "watch out for X")
}
