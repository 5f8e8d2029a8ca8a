// Package judge implements the structured generative classifier capability
// and the same capability reused as the planner's advisor. Concrete
// backends (local HTTP, Anthropic) live alongside the contract; callers
// depend only on Capability and Advisor.
package judge

import (
	"context"

	"github.com/watchit/watchit/pkg/models"
)

// Request is the input to a Judge call: everything the classifier needs to
// produce a structured moderation verdict for one piece of content.
type Request struct {
	Title      string
	Domain     string
	FastScores map[string]float64
	// Text is the aggregated, already-capped text sample, capped at 2,000
	// characters before it reaches the judge.
	Text       string
	Age        int
	Strictness models.Strictness
	// Guidance is the guardian-feedback guidance string, appended to the
	// system prompt verbatim when non-empty.
	Guidance string
}

// Capability is the structured generative classifier contract.
// Implementations absorb both transport failures and malformed output
// internally, returning models.FallbackOnCallFailure / FallbackOnParseFailure
// respectively with a nil error — callers never branch on a Judge error,
// only on ctx cancellation.
type Capability interface {
	Judge(ctx context.Context, req Request) (models.JudgeResult, error)
}

// PlanRequest is the compact state summary the planner hands to the
// advisor.
type PlanRequest struct {
	EventKind    string
	Domain       string
	Title        string
	LoopCount    int
	HasOCRRun    bool
	IsUpgrade    bool
	NeedOCR      bool
	NeedLLM      bool
	Confidence   float64
	HeadlineRisk string
	ChildAge     int
	Strictness   models.Strictness
}

// PlanResult is the advisor's routing decision.
type PlanResult struct {
	NextTool models.Tool
	Reason   string
}

// Advisor is the judge capability used as the planner's routing oracle.
// Treated as an untrusted oracle: the planner always applies
// deterministic guards on top of whatever this returns.
type Advisor interface {
	Plan(ctx context.Context, req PlanRequest) (PlanResult, error)
}

// OverrideSample is one guardian override fed into a Summarize call: the
// original automated decision plus what the guardian changed it to.
type OverrideSample struct {
	Title          string
	Domain         string
	OriginalAction models.Action
	ManualAction   models.Action
	Reason         string
}

// Summary is the judge-as-summarizer's structured output.
type Summary struct {
	Guidance string
	Patterns []string
}

// Summarizer is the judge capability reused by the guardian learning loop
// to distill recent overrides into guidance text and patterns. Like
// Advisor, a failed call surfaces a Go error — the guardian loop is
// responsible for leaving overrides unprocessed and retrying next cycle.
type Summarizer interface {
	Summarize(ctx context.Context, samples []OverrideSample) (Summary, error)
}
