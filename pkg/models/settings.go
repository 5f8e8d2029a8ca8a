package models

// Well-known settings keys. Settings is a process-wide key/value map; these
// are the keys the core itself reads and writes.
const (
	SettingPausedUntil      = "paused_until"
	SettingActiveChildID    = "active_child_id"
	SettingPGLastEventTS    = "pg_last_event_ts"
	SettingPGLastDecisionTS = "pg_last_decision_ts"
	SettingGuardianFeedback = "guardian_feedback"
)

// GuardianFeedback is the guardian learning loop's persisted output, stored
// JSON-encoded under SettingGuardianFeedback and read by the judge on every
// call to append to its system prompt.
type GuardianFeedback struct {
	Guidance    string   `json:"guidance"`
	Patterns    []string `json:"patterns"`
	GeneratedAt int64    `json:"generated_at"`
	SampleCount int      `json:"sample_count"`
}
