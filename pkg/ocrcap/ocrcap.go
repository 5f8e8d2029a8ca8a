// Package ocrcap defines the OCR capability contract and the screenshot
// decoding shared by every backend. The recognition engine is pluggable;
// only the capability boundary is concrete here.
package ocrcap

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imageorient"
)

// Engine is the abstract OCR engine capability. A production build injects
// a Tesseract or cloud-OCR adapter; tests and the zero-dependency default
// build use the heuristic engine.
type Engine interface {
	// RecognizeText returns the text found in the decoded image. An empty
	// result is not an error — callers treat OCR failure as tolerated and
	// continue the analysis without screenshot text.
	RecognizeText(ctx context.Context, img image.Image) (string, error)
}

// DecodeBase64 decodes a base64-encoded screenshot (as carried in
// data_json.screenshots_b64) into an orientation-corrected image.Image.
func DecodeBase64(b64 string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode base64 screenshot: %w", err)
	}

	img, _, err := imageorient.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot image: %w", err)
	}
	return img, nil
}
