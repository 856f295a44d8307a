package store

import (
	"context"
	"time"

	"github.com/phrazzld/vault-agent/internal/domain"
)

// AuditRecorder appends immutable records to an audit trail.
// Version: 1.0
type AuditRecorder interface {
	// Record durably persists one audit record before returning success.
	// The record's identity must be collision-proof even for multiple
	// actions within the same time resolution. A failed Record means the
	// action that triggered it is not considered successful.
	Record(ctx context.Context, rec *domain.AuditRecord) error
}

// AuditTrail is a readable audit trail: the append-only record of every
// state-changing action, consumed later by aggregation.
// Version: 1.0
type AuditTrail interface {
	AuditRecorder

	// List returns all records with timestamps at or after since, in
	// write order. Malformed records are skipped, never fatal.
	List(ctx context.Context, since time.Time) ([]*domain.AuditRecord, error)
}
