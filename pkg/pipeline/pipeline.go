// Package pipeline wires the planner loop, analyzers, policy engine, and
// persistence together into the two ingestion operations and the
// parent-facing control/read surface. It is the only package that knows
// the full shape of "one event through the system" — every other package
// operates on a MonitorState or a single record.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/watchit/watchit/pkg/agent/headlines"
	"github.com/watchit/watchit/pkg/agent/ocragent"
	"github.com/watchit/watchit/pkg/agent/urlagent"
	"github.com/watchit/watchit/pkg/bus"
	"github.com/watchit/watchit/pkg/guardian"
	"github.com/watchit/watchit/pkg/judge"
	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/planner"
	"github.com/watchit/watchit/pkg/policy"
	"github.com/watchit/watchit/pkg/services"
)

// indefinitePause is the horizon applied when pause() is called without a
// positive minutes argument: effectively indefinite.
const indefinitePause = 10 * 365 * 24 * time.Hour

// Pipeline is the glue coordinator: ingest -> persist -> planner loop ->
// policy -> persist decision -> bus publish. It does not signal the
// replicator, which picks up new rows on its own schedule.
type Pipeline struct {
	Events    *services.EventService
	Children  *services.ChildService
	Analyses  *services.AnalysisService
	Decisions *services.DecisionService
	Settings  *services.SettingsService

	Planner  *planner.Planner
	Headline func(event *models.Event, profile *models.ChildProfile) *models.HeadlineResult
	URL      *urlagent.Analyzer
	OCR      *ocragent.Analyzer

	PolicyConfig policy.Config
	Bus          *bus.Bus
	Guidance     *judge.GuidanceCache
	Guardian     *guardian.Service

	// ParentPIN gates pause; resume takes no PIN. Empty disables the check
	// (no PIN configured).
	ParentPIN string

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

// New builds a Pipeline. Headline defaults to headlines.Analyze.
func New(events *services.EventService, children *services.ChildService, analyses *services.AnalysisService,
	decisions *services.DecisionService, settings *services.SettingsService, pl *planner.Planner,
	urlAnalyzer *urlagent.Analyzer, ocrAnalyzer *ocragent.Analyzer, policyConfig policy.Config,
	b *bus.Bus, guidance *judge.GuidanceCache, guardianSvc *guardian.Service, parentPIN string) *Pipeline {
	return &Pipeline{
		Events:       events,
		Children:     children,
		Analyses:     analyses,
		Decisions:    decisions,
		Settings:     settings,
		Planner:      pl,
		Headline:     headlines.Analyze,
		URL:          urlAnalyzer,
		OCR:          ocrAnalyzer,
		PolicyConfig: policyConfig,
		Bus:          b,
		Guidance:     guidance,
		Guardian:     guardianSvc,
		ParentPIN:    parentPIN,
		Now:          time.Now,
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Ingest implements ingest(event).
func (p *Pipeline) Ingest(ctx context.Context, req models.IngestRequest) (models.DecisionMessage, error) {
	if req.TS == 0 {
		req.TS = p.now().UnixMilli()
	}
	event, err := p.Events.Create(ctx, req)
	if err != nil {
		return models.DecisionMessage{}, fmt.Errorf("ingest: %w", err)
	}
	return p.run(ctx, event, false)
}

// IngestUpgrade implements ingest_upgrade(event_with_id): a resubmission
// of an existing event carrying additional payload, routed through the
// planner a second time with IsUpgrade set so it is forced through OCR.
func (p *Pipeline) IngestUpgrade(ctx context.Context, req models.IngestUpgradeRequest) (models.DecisionMessage, error) {
	event, err := p.Events.Upgrade(ctx, req)
	if err != nil {
		return models.DecisionMessage{}, fmt.Errorf("ingest_upgrade: %w", err)
	}
	return p.run(ctx, event, true)
}

// run drives one event through the planner loop to a persisted decision,
// publishing the result on the bus before returning it.
func (p *Pipeline) run(ctx context.Context, event *models.Event, isUpgrade bool) (models.DecisionMessage, error) {
	profile, err := p.Children.GetOrCreate(ctx, event.ChildID)
	if err != nil {
		return models.DecisionMessage{}, fmt.Errorf("load child profile: %w", err)
	}

	state := &models.MonitorState{
		Event:        event,
		ChildProfile: profile,
		IsUpgrade:    isUpgrade,
		NextTool:     models.ToolHeadline,
	}

	guidance := p.Guidance.Get()

	for {
		switch state.NextTool {
		case models.ToolPolicy, models.ToolStop:
			outcome := p.evaluatePolicy(ctx, state)
			decision, err := p.Decisions.Create(ctx, outcome, event.ID, p.PolicyConfig.Version)
			if err != nil {
				return models.DecisionMessage{}, fmt.Errorf("persist decision: %w", err)
			}
			state.Decision = decision

			msg := models.NewDecisionMessage(state)
			if p.Bus != nil {
				p.Bus.Publish(msg)
			}
			p.recordAnalysis(ctx, state)
			return msg, nil

		case models.ToolHeadline:
			state.LastToolRun = models.ToolHeadline
			state.Headline = p.Headline(state.Event, state.ChildProfile)
			if state.Headline != nil {
				state.Confidence = state.Headline.Confidence
			}

		case models.ToolURLLLM:
			if p.URL != nil {
				if err := p.URL.Analyze(ctx, state, guidance); err != nil {
					if ctx.Err() != nil {
						return models.DecisionMessage{}, ctx.Err()
					}
					slog.Warn("url analyzer failed, proceeding without judge result", "event_id", event.ID, "error", err)
				}
			}

		case models.ToolOCR:
			if p.OCR != nil {
				if err := p.OCR.Analyze(ctx, state, guidance); err != nil {
					if ctx.Err() != nil {
						return models.DecisionMessage{}, ctx.Err()
					}
					slog.Warn("ocr analyzer failed, proceeding without ocr text", "event_id", event.ID, "error", err)
				}
			}
		}

		reason := p.Planner.Step(ctx, state)
		slog.Debug("planner step", "event_id", event.ID, "next_tool", state.NextTool, "reason", reason)
	}
}

// evaluatePolicy loads the pause setting and runs the deterministic policy
// engine.
func (p *Pipeline) evaluatePolicy(ctx context.Context, state *models.MonitorState) models.Outcome {
	var pausedUntil *int64
	if raw, ok, err := p.Settings.Get(ctx, models.SettingPausedUntil); err != nil {
		slog.Warn("failed to read pause setting, proceeding unpaused", "error", err)
	} else if ok {
		var ms int64
		if _, err := fmt.Sscanf(raw, "%d", &ms); err == nil {
			pausedUntil = &ms
		}
	}

	return policy.Evaluate(p.PolicyConfig, policy.Input{
		Event:       state.Event,
		FastScores:  state.FastScores,
		Judge:       state.Judge,
		Profile:     state.ChildProfile,
		Headline:    state.Headline,
		PausedUntil: pausedUntil,
		Now:         p.now(),
	})
}

// recordAnalysis persists a summary analysis row for the event once a
// decision has been produced, capturing whatever fast scores and judge
// output accumulated along the way.
func (p *Pipeline) recordAnalysis(ctx context.Context, state *models.MonitorState) {
	if p.Analyses == nil {
		return
	}
	analysis := models.Analysis{
		EventID: state.Event.ID,
		Model:   "pipeline",
		Version: "1",
		Scores:  state.FastScores,
	}
	if state.Judge != nil {
		analysis.Label = string(state.Judge.Action)
	} else if state.Headline != nil {
		analysis.Label = string(state.Headline.Risk)
	}
	if _, err := p.Analyses.Record(ctx, analysis); err != nil {
		slog.Warn("failed to record analysis", "event_id", state.Event.ID, "error", err)
	}
}
