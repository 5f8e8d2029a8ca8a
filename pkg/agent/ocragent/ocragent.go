// Package ocragent implements the single-shot, screenshot-driven re-judge
// analyzer. It is guaranteed to run at most once per event lifetime.
package ocragent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/watchit/watchit/pkg/agent/urlagent"
	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/ocrcap"
)

// MaxScreenshots is the most screenshots OCR will process per event.
const MaxScreenshots = 3

// Analyzer runs OCR over an event's screenshots, then re-invokes the URL
// analyzer with the recognized text.
type Analyzer struct {
	Engine ocrcap.Engine
	URL    *urlagent.Analyzer
}

// New builds an Analyzer.
func New(engine ocrcap.Engine, urlAnalyzer *urlagent.Analyzer) *Analyzer {
	return &Analyzer{Engine: engine, URL: urlAnalyzer}
}

// Analyze implements the OCR analyzer contract:
//  1. If HasOCRRun, no-op (next_tool=planner implicitly — the caller
//     advances the planner loop regardless).
//  2. Mark HasOCRRun.
//  3. Extract up to MaxScreenshots screenshots; if none, set
//     NeedsScreenshot and return.
//  4. OCR each screenshot, concatenating non-empty text. Empty result is
//     tolerated.
//  5. Re-invoke the URL analyzer with the OCR text as extra text.
func (a *Analyzer) Analyze(ctx context.Context, state *models.MonitorState, guidance string) error {
	state.LastToolRun = models.ToolOCR

	if state.HasOCRRun {
		return nil
	}
	state.HasOCRRun = true

	payload := state.Event.DecodePayload()
	if len(payload.ScreenshotsB64) == 0 {
		state.NeedsScreenshot = true
		return nil
	}

	shots := payload.ScreenshotsB64
	if len(shots) > MaxScreenshots {
		shots = shots[:MaxScreenshots]
	}

	var texts []string
	for i, b64 := range shots {
		img, err := ocrcap.DecodeBase64(b64)
		if err != nil {
			slog.Warn("ocr: failed to decode screenshot, skipping", "event_id", state.Event.ID, "index", i, "error", err)
			continue
		}

		text, err := a.Engine.RecognizeText(ctx, img)
		if err != nil {
			slog.Warn("ocr: recognition failed, skipping", "event_id", state.Event.ID, "index", i, "error", err)
			continue
		}
		if text != "" {
			texts = append(texts, text)
		}
	}

	if len(texts) == 0 {
		// Failure tolerated: planner proceeds without OCR text.
		return nil
	}

	state.OCRText = strings.Join(texts, "\n")
	state.NeedOCR = false

	if a.URL == nil {
		return nil
	}
	return a.URL.Analyze(ctx, state, guidance)
}
