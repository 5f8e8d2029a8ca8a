// Package database provides a test helper for obtaining an isolated
// mirror database connection, backed by the shared testcontainer in
// test/util.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	watchitdb "github.com/watchit/watchit/pkg/database"
	"github.com/watchit/watchit/test/util"
)

// NewTestClient opens a connection to the shared Postgres mirror database,
// isolated in its own schema, with the mirror migrations applied. The
// schema is dropped and the connection closed when the test ends.
func NewTestClient(t *testing.T) *sql.DB {
	ctx := context.Background()

	baseConnStr := util.GetBaseConnectionString(t)
	schemaName := util.GenerateSchemaName(t)

	admin, err := sql.Open("pgx", baseConnStr)
	require.NoError(t, err)
	defer admin.Close()

	_, err = admin.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	require.NoError(t, err)

	t.Cleanup(func() {
		cleanupAdmin, err := sql.Open("pgx", baseConnStr)
		if err != nil {
			t.Logf("failed to open cleanup connection: %v", err)
			return
		}
		defer cleanupAdmin.Close()
		if _, err := cleanupAdmin.ExecContext(context.Background(),
			fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName)); err != nil {
			t.Logf("failed to drop test schema: %v", err)
		}
	})

	connStr := util.AddSearchPathToConnString(baseConnStr, schemaName)
	db, err := watchitdb.OpenMirror(ctx, watchitdb.MirrorConfig{DSN: connStr, MaxOpenConns: 10, MaxIdleConns: 5})
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}
