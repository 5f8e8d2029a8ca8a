package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/watchit/watchit/pkg/bus"
	"github.com/watchit/watchit/pkg/models"
)

// ErrInvalidPIN is returned by Pause when ParentPIN is configured and the
// caller's PIN doesn't match it.
var ErrInvalidPIN = fmt.Errorf("invalid parent pin")

// Pause implements pause(pin, minutes?): records paused_until as
// now()+minutes, or an effectively indefinite horizon (10 years) when
// minutes is missing or non-positive.
func (p *Pipeline) Pause(ctx context.Context, req models.PauseRequest) error {
	if p.ParentPIN != "" && req.PIN != p.ParentPIN {
		return ErrInvalidPIN
	}

	horizon := indefinitePause
	if req.Minutes > 0 {
		horizon = time.Duration(req.Minutes) * time.Minute
	}
	until := p.now().Add(horizon).UnixMilli()

	return p.Settings.Set(ctx, models.SettingPausedUntil, strconv.FormatInt(until, 10))
}

// Resume implements resume(): deletes the pause setting.
func (p *Pipeline) Resume(ctx context.Context) error {
	return p.Settings.Delete(ctx, models.SettingPausedUntil)
}

// Override implements override(decision_id, action): applies the
// override, then opportunistically (non-blocking) refreshes guardian
// feedback. The refresh failing is logged but never surfaced to the
// caller — the override itself must already be durable by the time the
// refresh is kicked off.
func (p *Pipeline) Override(ctx context.Context, req models.OverrideRequest) error {
	if err := p.Decisions.Override(ctx, req.DecisionID, req.Action); err != nil {
		return fmt.Errorf("override: %w", err)
	}

	if p.Guardian != nil {
		go func() {
			bgCtx := context.Background()
			if err := p.Guardian.RunCycle(bgCtx); err != nil {
				slog.Warn("override-triggered guardian refresh failed", "decision_id", req.DecisionID, "error", err)
			}
		}()
	}
	return nil
}

// ListEvents implements list_events(child_id?, limit).
func (p *Pipeline) ListEvents(ctx context.Context, childID string, limit int) ([]*models.Event, error) {
	return p.Events.ListRecent(ctx, childID, limit)
}

// ListDecisions implements list_decisions(child_id?, limit).
func (p *Pipeline) ListDecisions(ctx context.Context, childID string, limit int) ([]*models.Decision, error) {
	return p.Decisions.ListRecentForChild(ctx, childID, limit)
}

// ListChildren implements list_children().
func (p *Pipeline) ListChildren(ctx context.Context) ([]*models.ChildProfile, error) {
	return p.Children.List(ctx)
}

// StreamDecisions implements stream_decisions(): returns a subscription
// publishing one server-sent message per decision. Callers must call
// Unsubscribe when done.
func (p *Pipeline) StreamDecisions() *bus.Subscription {
	return p.Bus.Subscribe()
}
