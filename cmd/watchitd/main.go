// watchitd is the long-running daemon process: it loads configuration,
// opens the local store and optional Postgres mirror, wires the planner,
// policy engine, and pipeline, and runs the replicator and guardian
// background loops until signaled to stop. It exposes no HTTP surface;
// the submitting browser/agent and the transport it uses are external
// collaborators.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/watchit/watchit/pkg/agent/ocragent"
	"github.com/watchit/watchit/pkg/agent/urlagent"
	"github.com/watchit/watchit/pkg/asr"
	"github.com/watchit/watchit/pkg/bus"
	"github.com/watchit/watchit/pkg/cleanup"
	"github.com/watchit/watchit/pkg/config"
	"github.com/watchit/watchit/pkg/database"
	"github.com/watchit/watchit/pkg/guardian"
	"github.com/watchit/watchit/pkg/judge"
	"github.com/watchit/watchit/pkg/logging"
	"github.com/watchit/watchit/pkg/ocrcap"
	"github.com/watchit/watchit/pkg/ocrcap/heuristic"
	"github.com/watchit/watchit/pkg/pipeline"
	"github.com/watchit/watchit/pkg/planner"
	"github.com/watchit/watchit/pkg/policy"
	"github.com/watchit/watchit/pkg/replicator"
	"github.com/watchit/watchit/pkg/services"
	"github.com/watchit/watchit/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
		log.Printf("continuing with existing environment variables")
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	fmt.Printf("%s starting (config dir: %s)\n", version.Full(), *configDir)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configDir); err != nil {
		log.Fatalf("watchitd: %v", err)
	}
}

func run(ctx context.Context, configDir string) error {
	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		return fmt.Errorf("initialize configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel)

	dbPath := cfg.DBPath
	if !filepath.IsAbs(dbPath) && cfg.DataDir != "" {
		dbPath = filepath.Join(cfg.DataDir, dbPath)
	}
	local, err := database.OpenLocal(ctx, database.LocalConfig{Path: dbPath, Key: cfg.DBKey})
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer local.Close()

	mirror, err := openMirror(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open mirror: %w", err)
	}
	if mirror != nil {
		defer mirror.Close()
	}

	events := services.NewEventService(local)
	children := services.NewChildService(local)
	analyses := services.NewAnalysisService(local)
	decisions := services.NewDecisionService(local)
	settings := services.NewSettingsService(local)

	judgeCapability, judgeAdvisor, judgeSummarizer := buildJudge(cfg)
	guidanceCache := judge.NewGuidanceCache()

	urlAnalyzer := urlagent.New(judgeCapability, cfg.OCR.ConfidenceThreshold)
	urlAnalyzer.ASR = asr.NoopCapability{}
	urlAnalyzer.ASREnabled = cfg.ASR.Enabled
	ocrAnalyzer := ocragent.New(buildOCREngine(), urlAnalyzer)
	pl := planner.New(judgeAdvisor)

	policyCfg := policy.Config{
		Version:      cfg.Policy.Version,
		ScheduleName: cfg.Schedule.Name,
		ScheduleDays: cfg.Schedule.Days,
		Quiet:        cfg.Schedule.Quiet,
		AllowDomains: cfg.Policy.AllowDomains,
		BlockDomains: cfg.Policy.BlockDomains,
		Timezone:     time.Local,
	}

	decisionBus := bus.New()

	guardianSvc := guardian.New(decisions, events, settings, judgeSummarizer, guidanceCache, cfg.Guardian.Interval)
	if logger, closer, err := logging.NewComponentLogger(cfg.DataDir, "guardian", time.Now()); err != nil {
		slog.Warn("guardian file logging disabled", "error", err)
	} else {
		defer closer()
		guardianSvc.SetLogger(logger)
	}
	if err := guardianSvc.Start(ctx); err != nil {
		return fmt.Errorf("start guardian loop: %w", err)
	}
	defer guardianSvc.Stop()

	// pipe is the glue coordinator; it has no in-process caller here
	// because the submitting browser/agent's transport is out of scope —
	// an embedding application wires its own transport to
	// pipe.Ingest/IngestUpgrade and the control/read surface.
	pipe := pipeline.New(events, children, analyses, decisions, settings, pl, urlAnalyzer, ocrAnalyzer,
		policyCfg, decisionBus, guidanceCache, guardianSvc, cfg.ParentPIN)
	_ = pipe

	screenshotsDir := cfg.OCR.ScreenshotsDir
	if screenshotsDir != "" && !filepath.IsAbs(screenshotsDir) && cfg.DataDir != "" {
		screenshotsDir = filepath.Join(cfg.DataDir, screenshotsDir)
	}
	cleanupSvc := cleanup.NewService(cfg.Retention, screenshotsDir)
	if err := cleanupSvc.Start(ctx); err != nil {
		return fmt.Errorf("start screenshot cleanup: %w", err)
	}
	defer cleanupSvc.Stop()

	if mirror != nil {
		replicatorSvc := replicator.New(local, mirror, settings, cfg.Replicator.BatchSize, cfg.Replicator.Interval)
		if logger, closer, err := logging.NewComponentLogger(cfg.DataDir, "replicator", time.Now()); err != nil {
			slog.Warn("replicator file logging disabled", "error", err)
		} else {
			defer closer()
			replicatorSvc.SetLogger(logger)
		}
		if err := replicatorSvc.Start(ctx); err != nil {
			return fmt.Errorf("start replicator: %w", err)
		}
		defer replicatorSvc.Stop()
	}

	fmt.Printf("%s ready: db=%s mirror=%v judge=%s ocr=%v\n",
		version.AppName, dbPath, mirror != nil, cfg.Judge.Provider, cfg.OCR.Enabled)

	go logHealthPeriodically(ctx, local, mirror)

	<-ctx.Done()
	fmt.Println("shutting down")
	return nil
}

// logHealthPeriodically reports local/mirror connection health on a fixed
// interval. There is no HTTP router to expose database.Health on, so the
// daemon logs it instead.
func logHealthPeriodically(ctx context.Context, local, mirror *sql.DB) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if h, err := database.Health(ctx, local); err != nil {
				slog.Warn("local store health check failed", "error", err)
			} else {
				slog.Info("local store health", "status", h.Status, "open_conns", h.OpenConnections, "response_time", h.ResponseTime)
			}
			if mirror != nil {
				if h, err := database.Health(ctx, mirror); err != nil {
					slog.Warn("mirror health check failed", "error", err)
				} else {
					slog.Info("mirror health", "status", h.Status, "open_conns", h.OpenConnections, "response_time", h.ResponseTime)
				}
			}
		}
	}
}

func setLogLevel(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func buildJudge(cfg *config.Config) (judge.Capability, judge.Advisor, judge.Summarizer) {
	if cfg.Judge.Provider == "anthropic" {
		client := judge.NewAnthropicClient(judge.AnthropicConfig{
			APIKey: os.Getenv(cfg.Judge.AnthropicAPIKeyEnv),
			Model:  cfg.Judge.Model,
		})
		return client, client, client
	}
	client := judge.NewLocalClient(judge.LocalConfig{BaseURL: cfg.Judge.BaseURL, Model: cfg.Judge.Model})
	return client, client, client
}

func buildOCREngine() ocrcap.Engine {
	return heuristic.New(nil)
}

func openMirror(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.Replicator.PGDSN == "" {
		return nil, nil
	}
	return database.OpenMirror(ctx, database.MirrorConfig{DSN: cfg.Replicator.PGDSN})
}
