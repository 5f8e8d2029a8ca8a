package urlagent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchit/watchit/pkg/agent/urlagent"
	"github.com/watchit/watchit/pkg/judge"
	"github.com/watchit/watchit/pkg/models"
)

type stubCapability struct {
	result models.JudgeResult
	err    error
	calls  int
}

func (s *stubCapability) Judge(_ context.Context, _ judge.Request) (models.JudgeResult, error) {
	s.calls++
	return s.result, s.err
}

func baseState() *models.MonitorState {
	return &models.MonitorState{
		Event:        &models.Event{ID: "e1", URL: "https://example.com/x", Title: "hi", DataJSON: `{}`},
		ChildProfile: &models.ChildProfile{Age: 10, Strictness: models.StrictnessStandard},
		NeedLLM:      true,
	}
}

func TestAnalyze_InvokesJudgeAndRecordsConfidence(t *testing.T) {
	cap := &stubCapability{result: models.JudgeResult{Action: models.ActionAllow, Confidence: 0.8, Severity: models.SeverityLow}}
	a := urlagent.New(cap, 0.5)
	state := baseState()

	require.NoError(t, a.Analyze(context.Background(), state, ""))
	assert.Equal(t, 1, cap.calls)
	assert.Equal(t, 0.8, state.Confidence)
	assert.False(t, state.NeedOCR)
}

func TestAnalyze_UncertainActionSetsNeedOCR(t *testing.T) {
	cap := &stubCapability{result: models.JudgeResult{Action: models.ActionWarn, Confidence: 0.9, Severity: models.SeverityLow}}
	a := urlagent.New(cap, 0.5)
	state := baseState()

	require.NoError(t, a.Analyze(context.Background(), state, ""))
	assert.True(t, state.NeedOCR)
}

func TestAnalyze_LowConfidenceSetsNeedOCR(t *testing.T) {
	cap := &stubCapability{result: models.JudgeResult{Action: models.ActionAllow, Confidence: 0.1, Severity: models.SeverityLow}}
	a := urlagent.New(cap, 0.5)
	state := baseState()

	require.NoError(t, a.Analyze(context.Background(), state, ""))
	assert.True(t, state.NeedOCR)
}

func TestAnalyze_HeadlineShortCircuitSkipsJudgeCall(t *testing.T) {
	cap := &stubCapability{result: models.JudgeResult{Action: models.ActionAllow, Confidence: 0.99}}
	a := urlagent.New(cap, 0.5)
	state := baseState()
	state.Headline = &models.HeadlineResult{Action: models.ActionBlock, Confidence: 0.9, Flags: []string{"adult"}}

	require.NoError(t, a.Analyze(context.Background(), state, ""))
	assert.Equal(t, 0, cap.calls)
	require.NotNil(t, state.Judge)
	assert.Equal(t, models.ActionBlock, state.Judge.Action)
	assert.Equal(t, models.SeverityMedium, state.Judge.Severity)
	assert.False(t, state.NeedLLM)
}

func TestAnalyze_OCRReinvocationAfterRealJudgeCallRunsJudgeAgain(t *testing.T) {
	cap := &stubCapability{result: models.JudgeResult{Action: models.ActionWarn, Confidence: 0.6, Severity: models.SeverityLow}}
	a := urlagent.New(cap, 0.9)
	state := baseState()

	require.NoError(t, a.Analyze(context.Background(), state, ""))
	assert.Equal(t, 1, cap.calls)
	require.NotNil(t, state.Judge)

	state.OCRText = "some ocr text"
	require.NoError(t, a.Analyze(context.Background(), state, ""))
	assert.Equal(t, 2, cap.calls, "a completed real judge call must not block an OCR-triggered re-judge")
}

func TestAnalyze_SecondEntryAfterShortCircuitIsNoop(t *testing.T) {
	cap := &stubCapability{result: models.JudgeResult{Action: models.ActionAllow, Confidence: 0.99}}
	a := urlagent.New(cap, 0.5)
	state := baseState()
	state.Headline = &models.HeadlineResult{Action: models.ActionAllow, Confidence: 0.9}

	require.NoError(t, a.Analyze(context.Background(), state, ""))
	require.NoError(t, a.Analyze(context.Background(), state, ""))
	assert.Equal(t, 0, cap.calls)
}
