package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComponentLoggerCreatesFileUnderComponentDir(t *testing.T) {
	dataDir := t.TempDir()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	logger, closer, err := NewComponentLogger(dataDir, "replicator", now)
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer closer()

	entries, err := os.ReadDir(filepath.Join(dataDir, "logs", "replicator"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "replicator-20260801-120000.log", entries[0].Name())
}

func TestNewComponentLoggerWritesJSONLines(t *testing.T) {
	dataDir := t.TempDir()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	logger, closer, err := NewComponentLogger(dataDir, "guardian", now)
	require.NoError(t, err)

	logger.Info("cycle complete", "sample_count", 3)
	require.NoError(t, closer())

	path := filepath.Join(dataDir, "logs", "guardian", "guardian-20260801-120000.log")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	var record map[string]any
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, "cycle complete", record["msg"])
	assert.Equal(t, "guardian", record["component"])
	assert.Equal(t, float64(3), record["sample_count"])
}

func TestNewComponentLoggerAvoidsFilenameCollision(t *testing.T) {
	dataDir := t.TempDir()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, closer1, err := NewComponentLogger(dataDir, "replicator", now)
	require.NoError(t, err)
	defer closer1()

	_, closer2, err := NewComponentLogger(dataDir, "replicator", now)
	require.NoError(t, err)
	defer closer2()

	entries, err := os.ReadDir(filepath.Join(dataDir, "logs", "replicator"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
