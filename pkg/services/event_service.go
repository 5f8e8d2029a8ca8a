package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/watchit/watchit/pkg/models"
)

// EventService manages event ingestion and retrieval against the local
// store.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Create inserts a new event, generating its ID server-side. Events are
// immutable after creation except via Upgrade.
func (s *EventService) Create(ctx context.Context, req models.IngestRequest) (*models.Event, error) {
	if req.ChildID == "" {
		return nil, NewValidationError("child_id", "required")
	}
	if req.Kind == "" {
		return nil, NewValidationError("kind", "required")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	event := &models.Event{
		ID:       uuid.New().String(),
		ChildID:  req.ChildID,
		TS:       req.TS,
		Kind:     req.Kind,
		URL:      req.URL,
		Title:    req.Title,
		TabID:    req.TabID,
		Referrer: req.Referrer,
		DataJSON: req.DataJSON,
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO event(id, child_id, ts, kind, url, title, tab_id, referrer, data_json)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.ChildID, event.TS, event.Kind, event.URL, event.Title, event.TabID, event.Referrer, event.DataJSON)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// Upgrade replaces an existing event's DataJSON exactly once, as required
// by an ingest_upgrade submission.
func (s *EventService) Upgrade(ctx context.Context, req models.IngestUpgradeRequest) (*models.Event, error) {
	if req.EventID == "" {
		return nil, NewValidationError("event_id", "required")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `UPDATE event SET data_json = ? WHERE id = ?`, req.DataJSON, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("upgrade event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("upgrade event: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, req.EventID)
}

// Get fetches a single event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, child_id, ts, kind, url, title, tab_id, referrer, data_json FROM event WHERE id = ?`, id)
	return scanEvent(row)
}

// ListRecent returns the most recent events for a child, newest first,
// bounded by limit.
func (s *EventService) ListRecent(ctx context.Context, childID string, limit int) ([]*models.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, child_id, ts, kind, url, title, tab_id, referrer, data_json
FROM event WHERE child_id = ? ORDER BY ts DESC LIMIT ?`, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.ChildID, &e.TS, &e.Kind, &e.URL, &e.Title, &e.TabID, &e.Referrer, &e.DataJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}
