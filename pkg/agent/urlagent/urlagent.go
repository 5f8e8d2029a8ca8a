// Package urlagent implements the URL/LLM judge analyzer: it aggregates
// text signals and invokes the Judge capability, tracking whether the
// result is confident enough to skip the OCR path.
package urlagent

import (
	"context"
	"strings"

	"github.com/watchit/watchit/pkg/agent/headlines"
	"github.com/watchit/watchit/pkg/asr"
	"github.com/watchit/watchit/pkg/judge"
	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/safety"
	"github.com/watchit/watchit/pkg/urlutil"
)

// TextCapChars is the maximum aggregated text sample length handed to the
// judge.
const TextCapChars = 2000

// Analyzer wraps the judge capability with the URL analyzer's aggregation
// and uncertainty logic.
type Analyzer struct {
	Capability             judge.Capability
	OCRConfidenceThreshold float64

	// ASR and ASREnabled wire in the optional audio-transcript supplement.
	// Left unset, the analyzer behaves as if no audio capability exists:
	// text comes from dom_sample/text/OCR only.
	ASR        asr.Capability
	ASREnabled bool
}

// New builds an Analyzer.
func New(capability judge.Capability, ocrConfidenceThreshold float64) *Analyzer {
	return &Analyzer{Capability: capability, OCRConfidenceThreshold: ocrConfidenceThreshold}
}

// Analyze runs the URL analyzer over state, mutating its fast scores,
// judge output, confidence, NeedLLM, and NeedOCR fields in place, plus the
// headline early-exit short-circuit.
func (a *Analyzer) Analyze(ctx context.Context, state *models.MonitorState, guidance string) error {
	state.LastToolRun = models.ToolURLLLM

	// Early-exit: once a high-confidence headline short-circuit has
	// synthesized a judge-shaped result, subsequent entries are no-ops.
	// This must not trigger after a real judge call completes: an
	// OCR-triggered re-invocation needs to replace that result with one
	// that accounts for the OCR text.
	if state.HeadlineShortCircuited && state.Judge != nil {
		return nil
	}

	if shortCircuit(state.Headline) {
		synthesizeFromHeadline(state)
		return nil
	}

	extraText := state.OCRText
	if a.ASREnabled && a.ASR != nil {
		if transcript, err := a.ASR.Transcribe(ctx, state.Event.DecodePayload().AudioB64); err == nil && transcript != "" {
			extraText = strings.TrimSpace(extraText + "\n" + transcript)
		}
	}

	// Always recomputed (never cached) so a later re-invocation carrying
	// fresh OCR text replaces the fast scores too.
	scores := safety.AnalyzeEventFast(state.Event, extraText)

	text := aggregateText(state.Event, extraText)
	domain := urlutil.Domain(state.Event.URL)

	age := 12
	strictness := models.StrictnessStandard
	if state.ChildProfile != nil {
		age = state.ChildProfile.ClampedAge()
		strictness = state.ChildProfile.Strictness.Normalized()
	}

	result, err := a.Capability.Judge(ctx, judge.Request{
		Title:      state.Event.Title,
		Domain:     domain,
		FastScores: scores,
		Text:       text,
		Age:        age,
		Strictness: strictness,
		Guidance:   guidance,
	})
	if err != nil {
		return err
	}

	state.FastScores = scores
	state.Judge = &result
	state.Confidence = clamp01(result.Confidence)
	state.NeedLLM = false
	state.NeedOCR = isUncertain(result, state.Confidence, a.OCRConfidenceThreshold)
	return nil
}

// shortCircuit reports whether the headline result is confident enough to
// skip the real judge call.
func shortCircuit(headline *models.HeadlineResult) bool {
	if headline == nil {
		return false
	}
	if headline.Action != models.ActionAllow && headline.Action != models.ActionBlock {
		return false
	}
	return headline.Confidence >= headlines.EarlyExitConfidence
}

// synthesizeFromHeadline builds a judge-shaped object from the headline
// result. Severity is medium for a short-circuited block and low for a
// short-circuited allow, irrespective of underlying scores: the headline
// verdict is authoritative here, not a hint to be re-weighed.
func synthesizeFromHeadline(state *models.MonitorState) {
	severity := models.SeverityLow
	if state.Headline.Action == models.ActionBlock {
		severity = models.SeverityMedium
	}

	state.Judge = &models.JudgeResult{
		IsHarmful:  state.Headline.Action == models.ActionBlock,
		Categories: state.Headline.Flags,
		Severity:   severity,
		Rationale:  "headline short-circuit",
		Action:     state.Headline.Action,
		Confidence: state.Headline.Confidence,
	}
	if state.FastScores == nil {
		state.FastScores = state.Headline.FastScores
	}
	state.Confidence = state.Headline.Confidence
	state.NeedLLM = false
	state.HeadlineShortCircuited = true
}

// aggregateText concatenates dom_sample, data_json.text, and extraText
// (OCR output) with newlines, trims the result, and caps it at
// TextCapChars.
func aggregateText(event *models.Event, extraText string) string {
	payload := event.DecodePayload()
	parts := make([]string, 0, 3)
	if payload.DomSample != "" {
		parts = append(parts, payload.DomSample)
	}
	if payload.Text != "" {
		parts = append(parts, payload.Text)
	}
	if extraText != "" {
		parts = append(parts, extraText)
	}

	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if runes := []rune(text); len(runes) > TextCapChars {
		text = string(runes[:TextCapChars])
	}
	return text
}

// isUncertain reports whether the judge result requires an OCR re-judge:
// a judge action in {warn,blur,notify}, a severity in {medium,high}, or a
// confidence below the OCR threshold.
func isUncertain(result models.JudgeResult, confidence, threshold float64) bool {
	switch result.Action {
	case models.ActionWarn, models.ActionBlur, models.ActionNotify:
		return true
	}
	switch result.Severity {
	case models.SeverityMedium, models.SeverityHigh:
		return true
	}
	return confidence < threshold
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
