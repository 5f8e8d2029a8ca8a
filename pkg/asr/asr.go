// Package asr defines the audio-transcript capability consulted by the
// URL analyzer when enable_asr is set, supplementing screenshot/OCR text
// with a spoken-audio transcript. The engine itself is an external
// collaborator the same way the OCR engine is; this package only supplies
// the contract and a stub that keeps the wiring point real.
package asr

import "context"

// Capability transcribes an event's audio_b64 samples into text for the
// fast scorer and judge to consider alongside OCR output.
type Capability interface {
	Transcribe(ctx context.Context, audioB64 []string) (string, error)
}

// NoopCapability implements Capability without a real ASR engine: it
// reports no transcript for any input, the correct behavior when no
// transcription backend is configured.
type NoopCapability struct{}

// Transcribe always returns an empty transcript.
func (NoopCapability) Transcribe(_ context.Context, _ []string) (string, error) {
	return "", nil
}
