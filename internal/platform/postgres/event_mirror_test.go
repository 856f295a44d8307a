package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/store"
)

// fakeDB captures ExecContext calls and returns canned results.
type fakeDB struct {
	query string
	args  []any
	err   error
	rows  int64
}

type fakeResult struct{ rows int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, nil }

func (db *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	db.query = query
	db.args = args
	if db.err != nil {
		return nil, db.err
	}
	return fakeResult{rows: db.rows}, nil
}

func (db *fakeDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (db *fakeDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventMirrorRecord(t *testing.T) {
	t.Parallel()

	t.Run("inserts one row per record", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: 1}
		runID := uuid.New()
		mirror := NewEventMirror(db, runID, discardLogger())

		rec, err := domain.NewAuditRecord("agent", "task-1", domain.ActionComplete,
			map[string]any{"domain": "business"}, domain.Succeeded())
		require.NoError(t, err)
		require.NoError(t, mirror.Record(context.Background(), rec))

		assert.Contains(t, db.query, "INSERT INTO audit_events")
		require.Len(t, db.args, 5)
		assert.Equal(t, rec.ID, db.args[0])
		assert.Equal(t, runID, db.args[1])
		assert.Equal(t, "agent.complete", db.args[3])

		var decoded domain.AuditRecord
		require.NoError(t, json.Unmarshal(db.args[4].([]byte), &decoded))
		assert.Equal(t, rec.ID, decoded.ID)
		assert.Equal(t, domain.ActionComplete, decoded.Action)
	})

	t.Run("maps database errors", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{err: errors.New("connection refused")}
		mirror := NewEventMirror(db, uuid.New(), discardLogger())

		rec, err := domain.NewAuditRecord("agent", "task-1", domain.ActionClassify, nil, domain.Succeeded())
		require.NoError(t, err)

		assert.ErrorIs(t, mirror.Record(context.Background(), rec), store.ErrIO)
	})
}

func TestRunStore(t *testing.T) {
	t.Parallel()

	t.Run("start run inserts the row", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: 1}
		runID := uuid.New()
		require.NoError(t, NewRunStore(db, discardLogger()).StartRun(context.Background(), runID, "gemini-2.0-flash"))

		assert.Contains(t, db.query, "INSERT INTO agent_runs")
		require.Len(t, db.args, 2)
		assert.Equal(t, runID, db.args[0])
		assert.Equal(t, "gemini-2.0-flash", db.args[1])
	})

	t.Run("finish run updates the row", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: 1}
		summary := &domain.RunSummary{
			RunID:     uuid.New(),
			Loops:     3,
			Processed: 5,
			Failed:    1,
			Outcome:   domain.RunCompleted,
		}
		require.NoError(t, NewRunStore(db, discardLogger()).FinishRun(context.Background(), summary))

		assert.Contains(t, db.query, "UPDATE agent_runs")
		assert.Equal(t, summary.RunID, db.args[0])
	})

	t.Run("finish of unknown run is not found", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{rows: 0}
		err := NewRunStore(db, discardLogger()).FinishRun(context.Background(), &domain.RunSummary{RunID: uuid.New()})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
