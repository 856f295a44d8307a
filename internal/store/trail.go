package store

import (
	"context"
	"log/slog"

	"github.com/phrazzld/vault-agent/internal/domain"
)

// MirroredTrail fans each record out to a primary recorder and a
// best-effort mirror. The primary write is the durability contract:
// its failure fails the Record call. Mirror failures are logged and
// swallowed, so an unreachable mirror never stalls a run.
type MirroredTrail struct {
	primary AuditRecorder
	mirror  AuditRecorder
	logger  *slog.Logger
}

// NewMirroredTrail creates a MirroredTrail. mirror may be nil, in which
// case records go to the primary only.
func NewMirroredTrail(primary AuditRecorder, mirror AuditRecorder, logger *slog.Logger) *MirroredTrail {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirroredTrail{
		primary: primary,
		mirror:  mirror,
		logger:  logger.With(slog.String("component", "mirrored_trail")),
	}
}

var _ AuditRecorder = (*MirroredTrail)(nil)

// Record persists rec to the primary, then mirrors it best-effort.
func (t *MirroredTrail) Record(ctx context.Context, rec *domain.AuditRecord) error {
	if err := t.primary.Record(ctx, rec); err != nil {
		return err
	}

	if t.mirror != nil {
		if err := t.mirror.Record(ctx, rec); err != nil {
			t.logger.Warn("audit mirror write failed",
				"record_id", rec.ID,
				"action", rec.Action,
				"error", err)
		}
	}
	return nil
}
