package services_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/watchit/watchit/pkg/database"
)

// newTestDB opens an in-memory local store with the schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenLocal(context.Background(), database.LocalConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
