// Package planner implements the bounded, advisor-driven state machine
// that routes each event through the analyzer stages. One call to Step is
// one planner visit; the loop lives in the pipeline package, which
// re-invokes Step and dispatches to the chosen analyzer until NextTool is
// policy or stop.
package planner

import (
	"context"

	"github.com/watchit/watchit/pkg/judge"
	"github.com/watchit/watchit/pkg/models"
)

// validNextTools is the advisor's allowed response vocabulary.
var validNextTools = map[models.Tool]bool{
	models.ToolHeadline: true,
	models.ToolURLLLM:   true,
	models.ToolOCR:      true,
	models.ToolPolicy:   true,
	models.ToolStop:     true,
}

// Planner wraps the judge capability used as a routing advisor with a set
// of deterministic guards layered on top of it, so a misbehaving or
// adversarial advisor response can never violate the state machine's
// termination or tool-ordering guarantees.
type Planner struct {
	Advisor judge.Advisor
}

// New builds a Planner.
func New(advisor judge.Advisor) *Planner {
	return &Planner{Advisor: advisor}
}

// Step runs one planner visit over state, setting state.NextTool and
// returning the reason for the routing decision (for logging only — not
// part of the persisted model).
func (p *Planner) Step(ctx context.Context, state *models.MonitorState) string {
	state.LoopCount++

	if state.LoopCount >= models.MaxLoops {
		state.NextTool = models.ToolPolicy
		return "max_loops_reached"
	}

	if state.IsUpgrade && !state.HasOCRRun {
		state.NextTool = models.ToolOCR
		return "upgrade_forces_ocr"
	}

	nextTool, reason := p.consultAdvisor(ctx, state)
	nextTool, reason = applyPostConditions(state, nextTool, reason)

	state.NextTool = nextTool
	return reason
}

func (p *Planner) consultAdvisor(ctx context.Context, state *models.MonitorState) (models.Tool, string) {
	if p.Advisor == nil {
		return models.ToolPolicy, "planner_fallback"
	}

	result, err := p.Advisor.Plan(ctx, buildPlanRequest(state))
	if err != nil || !validNextTools[result.NextTool] {
		return models.ToolPolicy, "planner_fallback"
	}
	return result.NextTool, result.Reason
}

func buildPlanRequest(state *models.MonitorState) judge.PlanRequest {
	req := judge.PlanRequest{
		EventKind:  state.Event.Kind,
		Title:      state.Event.Title,
		LoopCount:  state.LoopCount,
		HasOCRRun:  state.HasOCRRun,
		IsUpgrade:  state.IsUpgrade,
		NeedOCR:    state.NeedOCR,
		NeedLLM:    state.NeedLLM,
		Confidence: state.Confidence,
		ChildAge:   12,
		Strictness: models.StrictnessStandard,
	}
	if state.ChildProfile != nil {
		req.ChildAge = state.ChildProfile.ClampedAge()
		req.Strictness = state.ChildProfile.Strictness.Normalized()
	}
	if state.Headline != nil {
		req.HeadlineRisk = string(state.Headline.Risk)
	}
	return req
}

// applyPostConditions enforces the planner's deterministic routing rules,
// regardless of what the advisor returned:
//   - once OCR has run, a request for ocr or headline is rewritten to
//     url_llm (prevents redundant re-scans).
//   - on an upgrade, a request for headline is rewritten to ocr if OCR
//     hasn't run yet, else to url_llm.
func applyPostConditions(state *models.MonitorState, nextTool models.Tool, reason string) (models.Tool, string) {
	if state.HasOCRRun && (nextTool == models.ToolOCR || nextTool == models.ToolHeadline) {
		return models.ToolURLLLM, "post_condition_no_redundant_scan"
	}
	if state.IsUpgrade && nextTool == models.ToolHeadline {
		if !state.HasOCRRun {
			return models.ToolOCR, "post_condition_upgrade_headline_to_ocr"
		}
		return models.ToolURLLLM, "post_condition_upgrade_headline_to_url"
	}
	return nextTool, reason
}
