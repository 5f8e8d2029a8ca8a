// Package guardian implements the override-feedback learning loop:
// periodically distills recent guardian overrides into guidance text the
// judge appends to its system prompt on every call.
package guardian

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/watchit/watchit/pkg/judge"
	"github.com/watchit/watchit/pkg/masking"
	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/services"
)

// maxOverridesPerCycle caps how many unprocessed overrides a single cycle
// fetches; maxPromptSamples caps how many of those go into the
// summarizer prompt, keeping it compact regardless of backlog size.
const (
	maxOverridesPerCycle = 100
	maxPromptSamples     = 15
)

// Service runs the guardian learning loop on a cron schedule.
type Service struct {
	decisions  *services.DecisionService
	events     *services.EventService
	settings   *services.SettingsService
	summarizer judge.Summarizer
	cache      *judge.GuidanceCache

	interval string
	cron     *cron.Cron
	logger   *slog.Logger
}

// New builds a guardian Service. interval defaults to "@every 1h" when
// empty.
func New(decisions *services.DecisionService, events *services.EventService, settings *services.SettingsService,
	summarizer judge.Summarizer, cache *judge.GuidanceCache, interval string) *Service {
	if interval == "" {
		interval = "@every 1h"
	}
	return &Service{decisions: decisions, events: events, settings: settings, summarizer: summarizer, cache: cache, interval: interval, logger: slog.Default()}
}

// SetLogger overrides the logger used for this loop's lifecycle and cycle
// messages. Intended for cmd/watchitd to inject a per-session rotating
// file logger.
func (s *Service) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Start launches the cron-scheduled learning loop, seeding the guidance
// cache from any previously persisted feedback first.
func (s *Service) Start(ctx context.Context) error {
	if feedback, ok, err := s.loadFeedback(ctx); err != nil {
		s.logger.Warn("guardian: failed to load persisted feedback", "error", err)
	} else if ok {
		s.cache.Set(feedback.Guidance)
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.interval, func() {
		if err := s.RunCycle(ctx); err != nil {
			s.logger.Error("guardian cycle failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule guardian loop: %w", err)
	}
	s.cron.Start()
	s.logger.Info("guardian learning loop started", "interval", s.interval)
	return nil
}

// Stop halts the cron loop, waiting for any in-flight cycle to finish.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunCycle performs one learning-loop pass. Also invoked opportunistically
// by the override control-surface operation after an override is recorded
// — callers there should not block their response on its result.
func (s *Service) RunCycle(ctx context.Context) error {
	overrides, err := s.decisions.ListUnprocessedOverrides(ctx, maxOverridesPerCycle)
	if err != nil {
		return fmt.Errorf("list unprocessed overrides: %w", err)
	}
	if len(overrides) == 0 {
		return nil
	}

	sampleCount := len(overrides)
	if sampleCount > maxPromptSamples {
		sampleCount = maxPromptSamples
	}

	samples := make([]judge.OverrideSample, 0, sampleCount)
	for _, d := range overrides[:sampleCount] {
		event, err := s.events.Get(ctx, d.EventID)
		if err != nil {
			s.logger.Warn("guardian: skipping override with missing event", "decision_id", d.ID, "error", err)
			continue
		}
		manual := d.Action
		if d.ManualAction != nil {
			manual = *d.ManualAction
		}
		samples = append(samples, judge.OverrideSample{
			Title:          event.Title,
			Domain:         event.URL,
			OriginalAction: d.OriginalAction,
			ManualAction:   manual,
			Reason:         d.Reason,
		})
	}

	summary, err := s.summarizer.Summarize(ctx, samples)
	if err != nil {
		return fmt.Errorf("summarize overrides: %w", err)
	}

	previous, _, err := s.loadFeedback(ctx)
	if err != nil {
		s.logger.Warn("guardian: failed to load prior feedback, proceeding without merge", "error", err)
	}

	merged := mergeFeedback(previous, summary, len(overrides))
	if err := s.persistFeedback(ctx, merged); err != nil {
		return fmt.Errorf("persist feedback: %w", err)
	}

	ids := make([]string, 0, len(overrides))
	for _, d := range overrides {
		ids = append(ids, d.ID)
	}
	if err := s.decisions.MarkOverridesProcessed(ctx, ids); err != nil {
		return fmt.Errorf("mark overrides processed: %w", err)
	}

	s.cache.Set(merged.Guidance)
	s.logger.Info("guardian learning loop updated guidance",
		"sample_count", merged.SampleCount, "patterns", len(merged.Patterns),
		"guidance", masking.RedactGuidance(merged.Guidance))
	return nil
}

func (s *Service) loadFeedback(ctx context.Context) (models.GuardianFeedback, bool, error) {
	raw, ok, err := s.settings.Get(ctx, models.SettingGuardianFeedback)
	if err != nil {
		return models.GuardianFeedback{}, false, err
	}
	if !ok || raw == "" {
		return models.GuardianFeedback{}, false, nil
	}
	var feedback models.GuardianFeedback
	if err := json.Unmarshal([]byte(raw), &feedback); err != nil {
		return models.GuardianFeedback{}, false, fmt.Errorf("decode stored feedback: %w", err)
	}
	return feedback, true, nil
}

func (s *Service) persistFeedback(ctx context.Context, feedback models.GuardianFeedback) error {
	raw, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}
	return s.settings.Set(ctx, models.SettingGuardianFeedback, string(raw))
}

// mergeFeedback combines previously stored feedback with a fresh summary:
// guidance sentences are deduplicated case-insensitively, patterns are
// set-unioned, and sample_count accumulates.
func mergeFeedback(previous models.GuardianFeedback, fresh judge.Summary, newSamples int) models.GuardianFeedback {
	return models.GuardianFeedback{
		Guidance:    mergeSentences(previous.Guidance, fresh.Guidance),
		Patterns:    unionPatterns(previous.Patterns, fresh.Patterns),
		GeneratedAt: time.Now().UnixMilli(),
		SampleCount: previous.SampleCount + newSamples,
	}
}

func mergeSentences(previous, fresh string) string {
	seen := make(map[string]bool)
	var merged []string

	addAll := func(text string) {
		for _, raw := range strings.Split(text, ".") {
			sentence := strings.TrimSpace(raw)
			if sentence == "" {
				continue
			}
			key := strings.ToLower(sentence)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, sentence)
		}
	}

	addAll(previous)
	addAll(fresh)

	if len(merged) == 0 {
		return ""
	}
	return strings.Join(merged, ". ") + "."
}

func unionPatterns(previous, fresh []string) []string {
	seen := make(map[string]bool, len(previous)+len(fresh))
	var merged []string
	for _, p := range previous {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		merged = append(merged, p)
	}
	for _, p := range fresh {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		merged = append(merged, p)
	}
	return merged
}
