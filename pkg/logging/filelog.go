// Package logging builds the per-session rotating file loggers used by the
// replicator and guardian background loops, in addition to (not instead
// of) the process-wide slog logger every other component uses directly.
// Each run gets its own dated log file under a component-named directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// NewComponentLogger opens (creating parent directories as needed) a dated
// log file under <dataDir>/logs/<component>/ and returns a slog.Logger
// that writes JSON records to both that file and the process's standard
// error stream. The returned closer must be called on shutdown.
//
// now is the session start time; callers pass time.Now() in production and
// a fixed value in tests to make the file name deterministic.
func NewComponentLogger(dataDir, component string, now time.Time) (*slog.Logger, func() error, error) {
	dir := filepath.Join(dataDir, "logs", component)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.log", component, now.UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	for i := 1; fileExists(path); i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s-%s-%d.log", component, now.UTC().Format("20060102-150405"), i))
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	handler := slog.NewJSONHandler(io.MultiWriter(os.Stderr, file), nil)
	logger := slog.New(handler).With("component", component)
	return logger, file.Close, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
