// Package heuristic provides a deterministic ocrcap.Engine that needs no
// real OCR infrastructure: it validates the decoded image and derives a
// stable content hash, then defers to an optionally injected Fallback
// engine for actual text recognition. Without a Fallback, RecognizeText
// returns empty text, which the analyzer tolerates and proceeds without.
package heuristic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/watchit/watchit/pkg/ocrcap"
)

// Engine is a deterministic ocrcap.Engine.
type Engine struct {
	// Fallback, when set, performs real text recognition. Left nil in
	// tests and in builds that have no OCR engine wired up.
	Fallback ocrcap.Engine
}

// New returns a heuristic.Engine, optionally wrapping a real Fallback.
func New(fallback ocrcap.Engine) *Engine {
	return &Engine{Fallback: fallback}
}

// RecognizeText validates img decodes to real pixel data, derives its
// content hash (used only for logging/dedup, never for classification),
// and defers to Fallback if present.
func (e *Engine) RecognizeText(ctx context.Context, img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", nil
	}

	_ = ContentHash(img) // validated and available for callers that log it

	if e.Fallback != nil {
		return e.Fallback.RecognizeText(ctx, img)
	}
	return "", nil
}

// ContentHash downsamples img to a small fixed size and returns a stable
// hex digest of its pixel data — cheap enough to run on every screenshot,
// stable across re-encodes of the same visual content.
func ContentHash(img image.Image) string {
	const side = 16
	thumb := image.NewRGBA(image.Rect(0, 0, side, side))
	xdraw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, img.Bounds(), draw.Over, nil)

	h := sha256.Sum256(thumb.Pix)
	return hex.EncodeToString(h[:])
}
