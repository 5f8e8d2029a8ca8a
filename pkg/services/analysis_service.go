package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/watchit/watchit/pkg/models"
)

// AnalysisService persists the append-only analysis artifacts produced by
// each analyzer stage; one event may have multiple analyses over its lifetime.
type AnalysisService struct {
	db *sql.DB
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(db *sql.DB) *AnalysisService {
	return &AnalysisService{db: db}
}

// Record inserts a new analysis row for an event. Analyses are never
// updated or deleted.
func (s *AnalysisService) Record(ctx context.Context, a models.Analysis) (*models.Analysis, error) {
	if a.EventID == "" {
		return nil, NewValidationError("event_id", "required")
	}

	scoresJSON, err := json.Marshal(a.Scores)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis scores: %w", err)
	}

	a.ID = uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO analysis(id, event_id, model, version, scores_json, label, latency_ms, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EventID, a.Model, a.Version, string(scoresJSON), a.Label, a.LatencyMS, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}
	return &a, nil
}

// ListForEvent returns every analysis recorded against an event, oldest
// first.
func (s *AnalysisService) ListForEvent(ctx context.Context, eventID string) ([]*models.Analysis, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, event_id, model, version, scores_json, label, latency_ms, created_at
FROM analysis WHERE event_id = ? ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []*models.Analysis
	for rows.Next() {
		var a models.Analysis
		var scoresJSON string
		if err := rows.Scan(&a.ID, &a.EventID, &a.Model, &a.Version, &scoresJSON, &a.Label, &a.LatencyMS, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		if scoresJSON != "" {
			_ = json.Unmarshal([]byte(scoresJSON), &a.Scores)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
