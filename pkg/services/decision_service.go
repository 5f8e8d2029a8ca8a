package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/watchit/watchit/pkg/models"
)

// DecisionService persists the policy engine's decisions and applies
// guardian overrides.
type DecisionService struct {
	db *sql.DB
}

// NewDecisionService creates a new DecisionService.
func NewDecisionService(db *sql.DB) *DecisionService {
	return &DecisionService{db: db}
}

// Create inserts a decision for an event, exactly once. OriginalAction is
// set to Action at creation and never changes afterward.
func (s *DecisionService) Create(ctx context.Context, outcome models.Outcome, eventID, policyVersion string) (*models.Decision, error) {
	if eventID == "" {
		return nil, NewValidationError("event_id", "required")
	}

	categoriesJSON, err := json.Marshal(outcome.Categories)
	if err != nil {
		return nil, fmt.Errorf("marshal categories: %w", err)
	}

	d := &models.Decision{
		ID:             uuid.New().String(),
		EventID:        eventID,
		PolicyVersion:  policyVersion,
		Action:         outcome.Action,
		Reason:         outcome.Reason,
		Categories:     outcome.Categories,
		OriginalAction: outcome.Action,
		CreatedAt:      time.Now().UnixMilli(),
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO decision(id, event_id, policy_version, action, reason, categories_json, original_action, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.EventID, d.PolicyVersion, string(d.Action), d.Reason, string(categoriesJSON), string(d.OriginalAction), d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert decision: %w", err)
	}
	return d, nil
}

// Override records a guardian override of a decision's action. It never
// mutates Action or OriginalAction directly — only the manual_* columns,
// preserving an auditable history of the automated outcome.
func (s *DecisionService) Override(ctx context.Context, decisionID string, action models.Action) error {
	if decisionID == "" {
		return NewValidationError("decision_id", "required")
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE decision
SET manual_action = ?, manual_flagged = 1, manual_processed = 0, manual_updated_at = ?
WHERE id = ?`, string(action), time.Now().UnixMilli(), decisionID)
	if err != nil {
		return fmt.Errorf("override decision: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("override decision: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get fetches a decision by ID.
func (s *DecisionService) Get(ctx context.Context, id string) (*models.Decision, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, event_id, policy_version, action, reason, categories_json, original_action,
       manual_action, manual_flagged, manual_processed, manual_updated_at, created_at
FROM decision WHERE id = ?`, id)
	return scanDecision(row)
}

// ListRecentForChild returns the most recent decisions for a child (joined
// through event), newest first, bounded by limit.
func (s *DecisionService) ListRecentForChild(ctx context.Context, childID string, limit int) ([]*models.Decision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT d.id, d.event_id, d.policy_version, d.action, d.reason, d.categories_json, d.original_action,
       d.manual_action, d.manual_flagged, d.manual_processed, d.manual_updated_at, d.created_at
FROM decision d JOIN event e ON e.id = d.event_id
WHERE e.child_id = ? ORDER BY d.created_at DESC LIMIT ?`, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []*models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListUnprocessedOverrides returns overrides the guardian loop has not yet
// consumed, ordered by manual_updated_at descending, bounded by limit.
func (s *DecisionService) ListUnprocessedOverrides(ctx context.Context, limit int) ([]*models.Decision, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, event_id, policy_version, action, reason, categories_json, original_action,
       manual_action, manual_flagged, manual_processed, manual_updated_at, created_at
FROM decision
WHERE manual_flagged = 1 AND manual_processed = 0
ORDER BY manual_updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed overrides: %w", err)
	}
	defer rows.Close()

	var out []*models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkOverridesProcessed flags the given decision IDs as consumed by the
// guardian loop.
func (s *DecisionService) MarkOverridesProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark-processed tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE decision SET manual_processed = 1 WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare mark-processed: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("mark decision %s processed: %w", id, err)
		}
	}
	return tx.Commit()
}

func scanDecision(row rowScanner) (*models.Decision, error) {
	var (
		d                                       models.Decision
		action, originalAction, categoriesJSON  string
		manualAction                            sql.NullString
		manualFlagged, manualProcessed          int
		manualUpdatedAt                         sql.NullInt64
	)
	err := row.Scan(&d.ID, &d.EventID, &d.PolicyVersion, &action, &d.Reason, &categoriesJSON, &originalAction,
		&manualAction, &manualFlagged, &manualProcessed, &manualUpdatedAt, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan decision: %w", err)
	}

	d.Action = models.Action(action)
	d.OriginalAction = models.Action(originalAction)
	d.ManualFlagged = manualFlagged != 0
	d.ManualProcessed = manualProcessed != 0
	if categoriesJSON != "" {
		_ = json.Unmarshal([]byte(categoriesJSON), &d.Categories)
	}
	if manualAction.Valid {
		a := models.Action(manualAction.String)
		d.ManualAction = &a
	}
	if manualUpdatedAt.Valid {
		d.ManualUpdatedAt = &manualUpdatedAt.Int64
	}
	return &d, nil
}
