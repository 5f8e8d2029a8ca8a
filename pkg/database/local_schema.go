package database

import (
	"context"
	"database/sql"
	"fmt"
)

// applyLocalSchema creates the local store's tables if missing and
// backfills columns added by later revisions — idempotent and additive
// only, so it is safe to run on every startup regardless of schema version.
func applyLocalSchema(ctx context.Context, db *sql.DB) error {
	const createTables = `
CREATE TABLE IF NOT EXISTS child_profile(
  id TEXT PRIMARY KEY,
  name TEXT,
  os_user TEXT,
  timezone TEXT,
  strictness TEXT DEFAULT 'standard',
  age INTEGER DEFAULT 12,
  created_at INTEGER
);
CREATE TABLE IF NOT EXISTS event(
  id TEXT PRIMARY KEY,
  child_id TEXT,
  ts INTEGER,
  kind TEXT,
  url TEXT,
  title TEXT,
  tab_id TEXT,
  referrer TEXT,
  data_json TEXT,
  FOREIGN KEY(child_id) REFERENCES child_profile(id)
);
CREATE TABLE IF NOT EXISTS analysis(
  id TEXT PRIMARY KEY,
  event_id TEXT,
  model TEXT,
  version TEXT,
  scores_json TEXT,
  label TEXT,
  latency_ms INTEGER,
  created_at INTEGER,
  FOREIGN KEY(event_id) REFERENCES event(id)
);
CREATE TABLE IF NOT EXISTS decision(
  id TEXT PRIMARY KEY,
  event_id TEXT,
  policy_version TEXT,
  action TEXT,
  reason TEXT,
  categories_json TEXT,
  original_action TEXT,
  manual_action TEXT,
  manual_flagged INTEGER DEFAULT 0,
  manual_processed INTEGER DEFAULT 0,
  manual_updated_at INTEGER,
  created_at INTEGER,
  FOREIGN KEY(event_id) REFERENCES event(id)
);
CREATE TABLE IF NOT EXISTS settings(
  key TEXT PRIMARY KEY,
  value TEXT
);
CREATE INDEX IF NOT EXISTS idx_event_child_ts ON event(child_id, ts DESC);
CREATE INDEX IF NOT EXISTS idx_decision_event ON decision(event_id);
CREATE INDEX IF NOT EXISTS idx_decision_unprocessed ON decision(manual_flagged, manual_processed, manual_updated_at DESC);
`
	if _, err := db.ExecContext(ctx, createTables); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	if err := addColumnIfMissing(ctx, db, "child_profile", "strictness", "TEXT DEFAULT 'standard'"); err != nil {
		return err
	}
	if err := addColumnIfMissing(ctx, db, "child_profile", "age", "INTEGER DEFAULT 12"); err != nil {
		return err
	}
	if err := addColumnIfMissing(ctx, db, "decision", "original_action", "TEXT"); err != nil {
		return err
	}
	if err := addColumnIfMissing(ctx, db, "decision", "manual_action", "TEXT"); err != nil {
		return err
	}
	if err := addColumnIfMissing(ctx, db, "decision", "manual_flagged", "INTEGER DEFAULT 0"); err != nil {
		return err
	}
	if err := addColumnIfMissing(ctx, db, "decision", "manual_processed", "INTEGER DEFAULT 0"); err != nil {
		return err
	}
	if err := addColumnIfMissing(ctx, db, "decision", "manual_updated_at", "INTEGER"); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `UPDATE decision SET original_action = action WHERE original_action IS NULL`); err != nil {
		return fmt.Errorf("backfill original_action: %w", err)
	}

	return nil
}

func addColumnIfMissing(ctx context.Context, db *sql.DB, table, column, ddl string) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notnull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("scan %s column info: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, ddl)); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}
