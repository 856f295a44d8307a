// Package main implements the vault agent: a single run-to-completion
// invocation of the processing loop over the task vault, followed by
// the weekly briefing when one is due.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/vault-agent/internal/agent"
	"github.com/phrazzld/vault-agent/internal/briefing"
	"github.com/phrazzld/vault-agent/internal/classify"
	"github.com/phrazzld/vault-agent/internal/config"
	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/platform/gemini"
	"github.com/phrazzld/vault-agent/internal/platform/logger"
	"github.com/phrazzld/vault-agent/internal/platform/postgres"
	"github.com/phrazzld/vault-agent/internal/platform/vault"
	"github.com/phrazzld/vault-agent/internal/store"
	"github.com/phrazzld/vault-agent/internal/summarize"
)

const migrationsDir = "migrations"

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("vault-agent: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logg := logger.Setup(cfg.Log)
	logg.Info("vault agent starting",
		"vault_dir", cfg.Vault.Dir,
		"max_retries", cfg.Loop.MaxRetries,
		"max_loops", cfg.Loop.MaxLoops,
		"database_configured", cfg.Database.URL != "")

	tasks, err := vault.NewTaskStore(cfg.Vault.Dir, logg)
	if err != nil {
		return fmt.Errorf("failed to open task store: %w", err)
	}
	fileTrail, err := vault.NewAuditTrail(filepath.Join(cfg.Vault.Dir, "Logs"), logg)
	if err != nil {
		return fmt.Errorf("failed to open audit trail: %w", err)
	}

	runID := uuid.New()

	// The database mirror is best-effort: the filesystem trail stays
	// authoritative and an unreachable database never blocks a run.
	var trail store.AuditRecorder = fileTrail
	var runStore *postgres.RunStore
	var mirror *postgres.EventMirror
	if cfg.Database.URL != "" {
		db, err := openDatabase(ctx, cfg.Database.URL)
		if err != nil {
			logg.Warn("database unavailable, continuing without mirror", "error", err)
		} else {
			defer db.Close()
			runStore = postgres.NewRunStore(db, logg)
			mirror = postgres.NewEventMirror(db, runID, logg)
			trail = store.NewMirroredTrail(fileTrail, mirror, logg)

			if err := runStore.StartRun(ctx, runID, cfg.Summarizer.ModelName); err != nil {
				logg.Warn("failed to insert run row", "error", err)
			}
		}
	}

	runner, err := agent.NewRunner(
		tasks,
		trail,
		classify.NewKeywordClassifier(),
		buildSummarizer(ctx, logg, cfg.Summarizer),
		agent.Config{
			MaxRetries: cfg.Loop.MaxRetries,
			MaxLoops:   cfg.Loop.MaxLoops,
			Model:      cfg.Summarizer.ModelName,
			RunID:      runID,
		},
		logg,
	)
	if err != nil {
		return fmt.Errorf("failed to build runner: %w", err)
	}

	summary, runErr := runner.Run(ctx)

	if runStore != nil {
		if err := runStore.FinishRun(ctx, summary); err != nil {
			logg.Warn("failed to finalize run row", "error", err)
		}
		if count, err := mirror.CountEvents(ctx, runID); err == nil {
			logg.Info("mirrored audit events", "count", count)
		}
	}

	if runErr != nil {
		return runErr
	}

	// A briefing failure never fails the run that produced the data.
	if err := writeBriefing(ctx, cfg.Vault.Dir, fileTrail, summary, logg); err != nil {
		logg.Warn("briefing generation failed", "error", err)
	}

	slog.Info("vault agent complete",
		"loops", summary.Loops,
		"processed", summary.Processed,
		"failed", summary.Failed,
		"outcome", summary.Outcome)
	return nil
}

// openDatabase connects, verifies the connection, and applies migrations.
func openDatabase(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := postgres.ApplyMigrations(db, migrationsDir); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// buildSummarizer wires the Gemini summarizer when configured, a
// permanently-unavailable one otherwise, and bounds either with the
// configured timeout.
func buildSummarizer(ctx context.Context, logg *slog.Logger, cfg config.SummarizerConfig) summarize.Summarizer {
	var s summarize.Summarizer
	if cfg.GeminiAPIKey == "" {
		logg.Warn("summarizer not configured, tasks will complete without AI summaries")
		s = &summarize.Unavailable{Reason: "gemini api key not configured"}
	} else if g, err := gemini.NewSummarizer(ctx, logg, cfg); err != nil {
		logg.Warn("summarizer initialization failed, degrading", "error", err)
		s = &summarize.Unavailable{Reason: err.Error()}
	} else {
		s = g
	}
	return summarize.WithTimeout(s, cfg.Timeout)
}

// writeBriefing renders this week's briefing into the vault's
// Briefings directory when one is due, at most once per seven days.
func writeBriefing(
	ctx context.Context,
	vaultDir string,
	trail store.AuditTrail,
	summary *domain.RunSummary,
	logg *slog.Logger,
) error {
	now := time.Now()
	dir := filepath.Join(vaultDir, "Briefings")

	if !briefing.IsBriefingDue(lastBriefingTime(dir), now) {
		logg.Debug("briefing not due yet", "dir", dir)
		return nil
	}

	week := briefing.CurrentWeek(now)
	report, err := briefing.NewGenerator(trail, logg).Generate(ctx, week, summary)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating briefings directory: %w", err)
	}

	name := fmt.Sprintf("briefing_%s.md", week.Start.Format("2006-01-02"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("writing briefing: %w", err)
	}

	logg.Info("briefing written", "path", path, "iso_week", week.ISOWeek)
	return nil
}

// lastBriefingTime returns the modification time of the newest briefing
// file, or the zero time when none exists yet.
func lastBriefingTime(dir string) time.Time {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}
	}

	var last time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "briefing_") {
			continue
		}
		if info, err := entry.Info(); err == nil && info.ModTime().After(last) {
			last = info.ModTime()
		}
	}
	return last
}
