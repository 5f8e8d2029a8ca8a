package models

// DecisionMessage is the shape published on the decision bus and returned
// from ingest/ingest_upgrade.
type DecisionMessage struct {
	DecisionID string   `json:"decision_id"`
	EventID    string   `json:"event_id"`
	Action     Action   `json:"action"`
	Reason     string   `json:"reason"`
	Categories []string `json:"categories"`

	Upgrade    bool    `json:"upgrade"`
	NeedsOCR   bool    `json:"needs_ocr"`
	Confidence float64 `json:"confidence"`

	URL     string `json:"url"`
	Title   string `json:"title"`
	TS      int64  `json:"ts"`
	ChildID string `json:"child_id"`

	HeadlineAgent *HeadlineResult `json:"headline_agent"`

	ManualFlagged  bool    `json:"manual_flagged"`
	ManualAction   *Action `json:"manual_action"`
	OriginalAction Action  `json:"original_action"`
}

// NewDecisionMessage builds the published/returned decision message from a
// completed MonitorState and its Decision.
func NewDecisionMessage(state *MonitorState) DecisionMessage {
	d := state.Decision
	msg := DecisionMessage{
		DecisionID:     d.ID,
		EventID:        d.EventID,
		Action:         d.Action,
		Reason:         d.Reason,
		Categories:     d.Categories,
		Upgrade:        state.IsUpgrade,
		NeedsOCR:       state.NeedsScreenshot,
		Confidence:     state.Confidence,
		URL:            state.Event.URL,
		Title:          state.Event.Title,
		TS:             state.Event.TS,
		ChildID:        state.Event.ChildID,
		HeadlineAgent:  state.Headline,
		ManualFlagged:  d.ManualFlagged,
		ManualAction:   d.ManualAction,
		OriginalAction: d.OriginalAction,
	}
	return msg
}

// PauseRequest is the input to pause(pin, minutes?).
type PauseRequest struct {
	PIN     string `json:"pin"`
	Minutes int    `json:"minutes,omitempty"`
}

// OverrideRequest is the input to override(decision_id, action).
type OverrideRequest struct {
	DecisionID string `json:"decision_id"`
	Action     Action `json:"action"`
}
