package cleanup_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/watchit/watchit/pkg/cleanup"
	"github.com/watchit/watchit/pkg/config"
)

func TestService_RemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "old.png")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	old := time.Now().AddDate(0, 0, -40)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(dir, "new.png")
	require.NoError(t, os.WriteFile(fresh, []byte("y"), 0o644))

	svc := cleanup.NewService(config.RetentionConfig{ScreenshotTTLDays: 30, CleanupInterval: "@every 1h"}, dir)
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	time.Sleep(50 * time.Millisecond)

	_, err := os.Stat(stale)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	require.NoError(t, err)
}

func TestService_NoOpWithoutDirectory(t *testing.T) {
	svc := cleanup.NewService(config.RetentionConfig{}, "")
	require.NoError(t, svc.Start(context.Background()))
	svc.Stop()
}
