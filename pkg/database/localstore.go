// Package database opens the two stores the core depends on: the
// single-writer encrypted local event/decision store (§4.8) and, when
// configured, a connection pool to the secondary Postgres mirror (§4.9).
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/watchit/watchit/pkg/database/sqlitedriver"
)

// LocalConfig configures the local encrypted store.
type LocalConfig struct {
	Path string
	Key  string
}

// OpenLocal opens (creating if needed) the local SQLite/SQLCipher store,
// applies the encryption pragmas, and runs the idempotent schema.
//
// Connections are capped at one: the store is single-writer by design,
// and SQLite serializes writers regardless, so a pool beyond one open
// connection only adds lock-contention noise.
func OpenLocal(ctx context.Context, cfg LocalConfig) (*sql.DB, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db, cfg.Key); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure local store: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping local store: %w", err)
	}

	if err := applyLocalSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply local schema: %w", err)
	}

	if err := verifyOrSealKey(ctx, db, cfg.Key); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to verify local store key: %w", err)
	}

	return db, nil
}

// applyPragmas sets up the connection: an encryption key (when the
// active driver supports it), foreign keys, and SQLCipher hardening
// pragmas that are harmless no-ops under the unencrypted pure-Go
// fallback driver.
func applyPragmas(ctx context.Context, db *sql.DB, key string) error {
	pragmas := []string{"PRAGMA foreign_keys = ON;"}
	if key != "" {
		pragmas = append([]string{fmt.Sprintf("PRAGMA key = '%s';", key)}, pragmas...)
		pragmas = append(pragmas,
			"PRAGMA cipher_memory_security = ON;",
			"PRAGMA kdf_iter = 256000;",
		)
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
