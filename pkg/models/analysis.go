package models

// Analysis is an append-only artifact keyed to an event. One event may have
// multiple analyses (fast, judge, headline).
type Analysis struct {
	ID        string             `json:"id"`
	EventID   string             `json:"event_id"`
	Model     string             `json:"model"`
	Version   string             `json:"version"`
	Scores    map[string]float64 `json:"scores"`
	Label     string             `json:"label"`
	LatencyMS int64              `json:"latency_ms"`
	CreatedAt int64              `json:"created_at"`
}
