// Package cleanup enforces the on-disk screenshot retention policy: saved
// screenshot files past their TTL are removed on a cron schedule. Event
// and decision rows are never deleted by this service — only files
// written under the OCR capability's screenshots directory.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/watchit/watchit/pkg/config"
)

// Service periodically removes screenshot files older than the configured
// TTL from the OCR screenshots directory.
type Service struct {
	retention config.RetentionConfig
	dir       string
	cron      *cron.Cron
}

// NewService creates a cleanup Service. dir is the OCR capability's
// configured screenshots directory; cleanup is a no-op when dir is empty
// (screenshots aren't being saved to disk at all).
func NewService(retention config.RetentionConfig, dir string) *Service {
	return &Service{retention: retention, dir: dir}
}

// Start launches the cron-scheduled cleanup loop. It runs one pass
// immediately, then on the configured interval, until Stop is called.
func (s *Service) Start(ctx context.Context) error {
	if s.dir == "" {
		slog.Info("screenshot cleanup disabled: no screenshots directory configured")
		return nil
	}

	interval := s.retention.CleanupInterval
	if interval == "" {
		interval = "@every 12h"
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(interval, func() { s.runOnce(ctx) })
	if err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}

	go s.runOnce(ctx)
	s.cron.Start()
	slog.Info("screenshot cleanup started", "interval", interval, "ttl_days", s.retention.ScreenshotTTLDays, "dir", s.dir)
	return nil
}

// Stop halts the cron loop, waiting for any in-flight scheduled run to
// finish. The initial pass that Start launches in its own goroutine is not
// waited for.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *Service) runOnce(ctx context.Context) {
	ttlDays := s.retention.ScreenshotTTLDays
	if ttlDays <= 0 {
		ttlDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -ttlDays)

	removed, err := removeOlderThan(ctx, s.dir, cutoff)
	if err != nil {
		slog.Error("screenshot cleanup failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("screenshot cleanup removed stale files", "count", removed)
	}
}

func removeOlderThan(ctx context.Context, dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read screenshots dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return removed, ctx.Err()
		default:
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("failed to remove stale screenshot", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
