package judge

import (
	"fmt"
	"strings"
)

const baseSystemPrompt = `You are a child-safety content classifier. Given a page's title, domain, ` +
	`heuristic keyword scores, a text sample, the viewing child's age, and the household's ` +
	`strictness posture, decide whether the content is harmful for that child to view.

Respond with ONLY a single JSON object, no prose, matching exactly this shape:
{"is_harmful": bool, "categories": [string], "severity": "low"|"medium"|"high", ` +
	`"rationale": string (<=30 words), "action": "allow"|"warn"|"blur"|"block"|"notify", ` +
	`"confidence": number between 0 and 1}`

// systemPrompt builds the judge's system prompt, appending guardian
// guidance verbatim when present: the judge reads the stored guidance on
// every call and appends it to its system prompt.
func systemPrompt(guidance string) string {
	if strings.TrimSpace(guidance) == "" {
		return baseSystemPrompt
	}
	return baseSystemPrompt + "\n\nHousehold guidance from prior parent overrides:\n" + guidance
}

// userPrompt renders the structured request into the single user-turn
// content sent to the backend.
func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", req.Title)
	fmt.Fprintf(&b, "Domain: %s\n", req.Domain)
	fmt.Fprintf(&b, "Child age: %d\n", req.Age)
	fmt.Fprintf(&b, "Strictness: %s\n", req.Strictness)
	fmt.Fprintf(&b, "Fast scores: %v\n", req.FastScores)
	b.WriteString("Text sample:\n")
	b.WriteString(req.Text)
	return b.String()
}

// planSystemPrompt and planUserPrompt render the planner-advisor variant of
// the same capability: the judge is asked which analyzer node to visit
// next rather than to classify content.
const planSystemPrompt = `You are the routing planner for a child-safety content pipeline. Given the ` +
	`current per-event state, choose the single next analyzer node to run.

Respond with ONLY a single JSON object, no prose, matching exactly this shape:
{"next_tool": "headline"|"url_llm"|"ocr"|"policy"|"stop", "reason": string}`

func planUserPrompt(req PlanRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event kind: %s\n", req.EventKind)
	fmt.Fprintf(&b, "Domain: %s\n", req.Domain)
	fmt.Fprintf(&b, "Title: %s\n", req.Title)
	fmt.Fprintf(&b, "Loop count: %d\n", req.LoopCount)
	fmt.Fprintf(&b, "Has OCR run: %t\n", req.HasOCRRun)
	fmt.Fprintf(&b, "Is upgrade: %t\n", req.IsUpgrade)
	fmt.Fprintf(&b, "Need OCR: %t\n", req.NeedOCR)
	fmt.Fprintf(&b, "Need LLM: %t\n", req.NeedLLM)
	fmt.Fprintf(&b, "Confidence so far: %.2f\n", req.Confidence)
	fmt.Fprintf(&b, "Headline risk: %s\n", req.HeadlineRisk)
	fmt.Fprintf(&b, "Child age: %d\n", req.ChildAge)
	fmt.Fprintf(&b, "Strictness: %s\n", req.Strictness)
	return b.String()
}

// summarizeSystemPrompt and summarizeUserPrompt render the guardian
// learning loop's summarization call: the judge is asked to distill recent
// overrides into reusable guidance rather than classify or route
// anything.
const summarizeSystemPrompt = `You summarize a household's parental overrides of an automated ` +
	`content-safety decision into reusable guidance for future classification.

Respond with ONLY a single JSON object, no prose, matching exactly this shape:
{"guidance": string (a few sentences of plain-language guidance), "patterns": [string]}`

func summarizeUserPrompt(samples []OverrideSample) string {
	var b strings.Builder
	b.WriteString("Recent overrides (original automated action -> what the parent changed it to):\n")
	for _, s := range samples {
		fmt.Fprintf(&b, "- %q (domain %s): %s -> %s (%s)\n", s.Title, s.Domain, s.OriginalAction, s.ManualAction, s.Reason)
	}
	return b.String()
}
