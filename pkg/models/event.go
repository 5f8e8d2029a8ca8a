// Package models defines the core entities and message shapes of the
// content-safety pipeline: events, child profiles, analyses, decisions,
// settings, and the planner's per-event working memory.
package models

import "encoding/json"

// Event is an observed browsing action submitted by the client. It is
// immutable after creation except for DataJSON, which may be replaced
// exactly once by an upgrade submission that supplies screenshots.
type Event struct {
	ID       string `json:"id"`
	ChildID  string `json:"child_id"`
	TS       int64  `json:"ts"` // epoch milliseconds
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	TabID    string `json:"tab_id"`
	Referrer string `json:"referrer"`
	DataJSON string `json:"data_json"` // opaque, JSON-encoded EventPayload
}

// EventPayload is the structure conventionally stored in Event.DataJSON.
// It is opaque to the store but interpreted by the analyzers.
type EventPayload struct {
	DomSample      string   `json:"dom_sample,omitempty"`
	Text           string   `json:"text,omitempty"`
	ScreenshotsB64 []string `json:"screenshots_b64,omitempty"`
	// AudioB64 supplements the fast scorer and judge with an optional ASR
	// transcript source; consulted only when the ASR capability is enabled.
	AudioB64 []string `json:"audio_b64,omitempty"`
}

// DecodePayload parses Event.DataJSON into an EventPayload. An empty or
// malformed payload decodes to the zero value rather than erroring, since
// the payload is defined as opaque to the store.
func (e *Event) DecodePayload() EventPayload {
	var p EventPayload
	if e.DataJSON == "" {
		return p
	}
	_ = json.Unmarshal([]byte(e.DataJSON), &p)
	return p
}

// IngestRequest is the input to ingest(event).
type IngestRequest struct {
	ChildID  string `json:"child_id"`
	TS       int64  `json:"ts"`
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	TabID    string `json:"tab_id"`
	Referrer string `json:"referrer"`
	DataJSON string `json:"data_json"`
}

// IngestUpgradeRequest is the input to ingest_upgrade(event_with_id): a
// resubmission of an existing event carrying additional payload (typically
// screenshots) to enable OCR.
type IngestUpgradeRequest struct {
	EventID  string `json:"event_id"`
	DataJSON string `json:"data_json"`
}
