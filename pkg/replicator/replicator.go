// Package replicator implements the resumable local→secondary mirror task:
// a periodic, cursor-driven sync of child profiles, events, and decisions
// from the local SQLite store to the secondary Postgres mirror.
package replicator

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/robfig/cron/v3"

	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/services"
)

// Service mirrors child profiles, events, and decisions from the local
// store to the secondary Postgres mirror on a cron schedule.
type Service struct {
	local    *sql.DB
	mirror   *sql.DB
	settings *services.SettingsService

	batchSize int
	interval  string

	cron   *cron.Cron
	logger *slog.Logger
}

// New builds a replicator Service. batchSize and interval default to
// 100 and "@every 5s" when zero/empty.
func New(local, mirror *sql.DB, settings *services.SettingsService, batchSize int, interval string) *Service {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval == "" {
		interval = "@every 5s"
	}
	return &Service{local: local, mirror: mirror, settings: settings, batchSize: batchSize, interval: interval, logger: slog.Default()}
}

// SetLogger overrides the logger used for this service's own lifecycle and
// cycle messages (not the messages produced by its collaborators). Intended
// for cmd/watchitd to inject a per-session rotating file logger.
func (s *Service) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Start launches the cron-scheduled replication loop. It runs one cycle
// immediately, then on the configured interval, until Stop is called.
func (s *Service) Start(ctx context.Context) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure mirror schema: %w", err)
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.interval, func() {
		if err := s.RunCycle(ctx); err != nil {
			s.logger.Error("replicator cycle failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule replicator: %w", err)
	}

	if err := s.RunCycle(ctx); err != nil {
		s.logger.Error("replicator initial cycle failed", "error", err)
	}
	s.cron.Start()
	s.logger.Info("replicator started", "interval", s.interval, "batch_size", s.batchSize)
	return nil
}

// Stop halts the cron loop, waiting for any in-flight cycle to finish.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// ensureSchema is a no-op beyond what database.OpenMirror already applied
// at connection time via golang-migrate: the mirror's schema is static at
// runtime, so re-running idempotent CREATE TABLE statements every cycle
// would only add I/O with no effect. The step exists here as a named hook
// so a future additive migration can be applied without restarting the
// daemon.
func (s *Service) ensureSchema(_ context.Context) error {
	return nil
}

// RunCycle performs one replication pass: child profiles, then events,
// then decisions, each in its own autocommitted transaction against the
// mirror. It is exported so a single synchronous cycle can also be run on
// demand, outside the cron schedule.
func (s *Service) RunCycle(ctx context.Context) error {
	if err := s.replicateChildren(ctx); err != nil {
		return fmt.Errorf("replicate children: %w", err)
	}
	if err := s.replicateEvents(ctx); err != nil {
		return fmt.Errorf("replicate events: %w", err)
	}
	if err := s.replicateDecisions(ctx); err != nil {
		return fmt.Errorf("replicate decisions: %w", err)
	}
	return nil
}

func (s *Service) replicateChildren(ctx context.Context) error {
	rows, err := s.local.QueryContext(ctx, `SELECT id, name, os_user, timezone, strictness, age, created_at FROM child_profile`)
	if err != nil {
		return fmt.Errorf("read local children: %w", err)
	}
	defer rows.Close()

	type child struct {
		id, name, osUser, timezone, strictness string
		age                                    int
		createdAt                              sql.NullInt64
	}
	var children []child
	for rows.Next() {
		var c child
		if err := rows.Scan(&c.id, &c.name, &c.osUser, &c.timezone, &c.strictness, &c.age, &c.createdAt); err != nil {
			return fmt.Errorf("scan local child: %w", err)
		}
		children = append(children, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}

	tx, err := s.mirror.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO watchit_children(id, name, os_user, timezone, strictness, age, created_at)
VALUES($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
  name = excluded.name, os_user = excluded.os_user, timezone = excluded.timezone,
  strictness = excluded.strictness, age = excluded.age`)
	if err != nil {
		return fmt.Errorf("prepare child upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range children {
		if _, err := stmt.ExecContext(ctx, c.id, c.name, c.osUser, c.timezone, c.strictness, c.age, c.createdAt); err != nil {
			return fmt.Errorf("upsert child %s: %w", c.id, err)
		}
	}
	return tx.Commit()
}

func (s *Service) replicateEvents(ctx context.Context) error {
	cursor, err := s.cursor(ctx, models.SettingPGLastEventTS)
	if err != nil {
		return err
	}

	rows, err := s.local.QueryContext(ctx, `
SELECT id, child_id, ts, kind, url, title, tab_id, referrer, data_json
FROM event WHERE ts > ? ORDER BY ts ASC LIMIT ?`, cursor, s.batchSize)
	if err != nil {
		return fmt.Errorf("read local events: %w", err)
	}
	defer rows.Close()

	type eventRow struct {
		id, childID, kind, url, title, tabID, referrer, dataJSON string
		ts                                                       int64
	}
	var events []eventRow
	maxTS := cursor
	for rows.Next() {
		var e eventRow
		if err := rows.Scan(&e.id, &e.childID, &e.ts, &e.kind, &e.url, &e.title, &e.tabID, &e.referrer, &e.dataJSON); err != nil {
			return fmt.Errorf("scan local event: %w", err)
		}
		events = append(events, e)
		if e.ts > maxTS {
			maxTS = e.ts
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.mirror.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO watchit_events(id, child_id, ts, kind, url, title, tab_id, referrer, data_json)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		dataJSON := e.dataJSON
		if dataJSON == "" {
			dataJSON = "{}"
		}
		if _, err := stmt.ExecContext(ctx, e.id, e.childID, e.ts, e.kind, e.url, e.title, e.tabID, e.referrer, dataJSON); err != nil {
			return fmt.Errorf("insert event %s: %w", e.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	// The cursor lives in the local store's settings table, not the mirror,
	// so it's only advanced once the mirror insert has committed — a crash
	// between the two just re-sends an already-mirrored (and idempotent,
	// ON CONFLICT DO NOTHING) batch next cycle.
	return s.settings.Set(ctx, models.SettingPGLastEventTS, strconv.FormatInt(maxTS, 10))
}

func (s *Service) replicateDecisions(ctx context.Context) error {
	cursor, err := s.cursor(ctx, models.SettingPGLastDecisionTS)
	if err != nil {
		return err
	}

	rows, err := s.local.QueryContext(ctx, `
SELECT d.id, d.event_id, d.policy_version, d.action, d.reason, d.categories_json, d.original_action,
       d.manual_action, d.manual_flagged, d.manual_processed, d.manual_updated_at,
       MAX(e.ts, COALESCE(d.manual_updated_at, 0)) AS sort_ts
FROM decision d JOIN event e ON e.id = d.event_id
WHERE MAX(e.ts, COALESCE(d.manual_updated_at, 0)) > ?
ORDER BY sort_ts ASC LIMIT ?`, cursor, s.batchSize)
	if err != nil {
		return fmt.Errorf("read local decisions: %w", err)
	}
	defer rows.Close()

	type decisionRow struct {
		id, eventID, policyVersion, action, reason, categoriesJSON, originalAction string
		manualAction                                                              sql.NullString
		manualFlagged, manualProcessed                                            int
		manualUpdatedAt                                                           sql.NullInt64
		sortTS                                                                    int64
	}
	var decisions []decisionRow
	maxTS := cursor
	for rows.Next() {
		var d decisionRow
		if err := rows.Scan(&d.id, &d.eventID, &d.policyVersion, &d.action, &d.reason, &d.categoriesJSON, &d.originalAction,
			&d.manualAction, &d.manualFlagged, &d.manualProcessed, &d.manualUpdatedAt, &d.sortTS); err != nil {
			return fmt.Errorf("scan local decision: %w", err)
		}
		decisions = append(decisions, d)
		if d.sortTS > maxTS {
			maxTS = d.sortTS
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(decisions) == 0 {
		return nil
	}

	tx, err := s.mirror.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO watchit_decisions(id, event_id, policy_version, action, reason, categories_json, original_action,
  manual_action, manual_flagged, manual_processed, manual_updated_at)
VALUES($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
  action = excluded.action, reason = excluded.reason, categories_json = excluded.categories_json,
  manual_action = excluded.manual_action, manual_flagged = excluded.manual_flagged,
  manual_processed = excluded.manual_processed, manual_updated_at = excluded.manual_updated_at,
  original_action = COALESCE(watchit_decisions.original_action, excluded.original_action)`)
	if err != nil {
		return fmt.Errorf("prepare decision upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		categoriesJSON := d.categoriesJSON
		if categoriesJSON == "" {
			categoriesJSON = "[]"
		}
		if _, err := stmt.ExecContext(ctx, d.id, d.eventID, d.policyVersion, d.action, d.reason, categoriesJSON, d.originalAction,
			d.manualAction, d.manualFlagged != 0, d.manualProcessed != 0, d.manualUpdatedAt); err != nil {
			return fmt.Errorf("upsert decision %s: %w", d.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return s.settings.Set(ctx, models.SettingPGLastDecisionTS, strconv.FormatInt(maxTS, 10))
}

// cursor reads a replication watermark, defaulting to 0 when unset.
func (s *Service) cursor(ctx context.Context, key string) (int64, error) {
	value, ok, err := s.settings.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read cursor %s: %w", key, err)
	}
	if !ok || value == "" {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cursor %s: %w", key, err)
	}
	return cursor, nil
}

