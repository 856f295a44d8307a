package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/store"
)

// EventMirror copies audit records into the audit_events table, keyed
// by the run that produced them. It is meant to sit on the mirror side
// of a store.MirroredTrail: its failures are logged there and never
// fail the action being audited.
type EventMirror struct {
	db     store.DBTX
	runID  uuid.UUID
	logger *slog.Logger
}

// NewEventMirror creates an audit event mirror for one run.
func NewEventMirror(db store.DBTX, runID uuid.UUID, logger *slog.Logger) *EventMirror {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &EventMirror{
		db:     db,
		runID:  runID,
		logger: logger.With(slog.String("component", "event_mirror")),
	}
}

// Ensure EventMirror implements store.AuditRecorder.
var _ store.AuditRecorder = (*EventMirror)(nil)

// Record implements store.AuditRecorder.Record.
func (m *EventMirror) Record(ctx context.Context, rec *domain.AuditRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encoding audit record: %v", store.ErrIO, err)
	}

	query := `
		INSERT INTO audit_events (id, run_id, ts, event_type, payload)
		VALUES ($1, $2, $3, $4, $5)
	`
	eventType := rec.Actor + "." + string(rec.Action)
	if _, err := m.db.ExecContext(ctx, query, rec.ID, m.runID, rec.Timestamp, eventType, payload); err != nil {
		return MapError(err)
	}
	return nil
}

// CountEvents returns how many events were mirrored for a run.
func (m *EventMirror) CountEvents(ctx context.Context, runID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM audit_events WHERE run_id = $1`
	if err := m.db.QueryRowContext(ctx, query, runID).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}
