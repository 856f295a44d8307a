package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/store"
)

// RunStore persists one agent_runs row per loop invocation: inserted at
// run start, finalized with the run's counts and outcome at the end.
type RunStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewRunStore creates a Postgres-backed run store. The connection or
// transaction is initialized and managed by the caller. If logger is
// nil, a default logger is used.
func NewRunStore(db store.DBTX, logger *slog.Logger) *RunStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RunStore{
		db:     db,
		logger: logger.With(slog.String("component", "run_store")),
	}
}

// StartRun inserts the row for a run that is about to begin.
func (s *RunStore) StartRun(ctx context.Context, runID uuid.UUID, model string) error {
	query := `
		INSERT INTO agent_runs (id, model)
		VALUES ($1, $2)
	`
	if _, err := s.db.ExecContext(ctx, query, runID, model); err != nil {
		return MapError(err)
	}

	s.logger.Debug("started run row", "run_id", runID)
	return nil
}

// FinishRun finalizes the run row with the loop's summary.
func (s *RunStore) FinishRun(ctx context.Context, summary *domain.RunSummary) error {
	query := `
		UPDATE agent_runs
		SET loops = $2,
		    processed = $3,
		    failed = $4,
		    outcome = $5,
		    finished_at = $6
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		summary.RunID,
		summary.Loops,
		summary.Processed,
		summary.Failed,
		string(summary.Outcome),
		summary.FinishedAt,
	)
	if err != nil {
		return MapError(err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	s.logger.Debug("finished run row",
		"run_id", summary.RunID,
		"processed", summary.Processed,
		"failed", summary.Failed)
	return nil
}
