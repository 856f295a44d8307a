package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/store"
)

// recordTimeFormat sorts lexicographically in chronological order.
const recordTimeFormat = "20060102T150405.000000000"

// AuditTrail implements store.AuditTrail as one JSON document per
// record in a single directory. Record file names combine the
// timestamp, a process-wide monotonic sequence number, and a fragment
// of the record's UUID, so two actions within the same time resolution
// can never collide.
type AuditTrail struct {
	dir    string
	seq    atomic.Uint64
	logger *slog.Logger
}

// NewAuditTrail creates a file-backed audit trail in dir, creating the
// directory if needed.
func NewAuditTrail(dir string, logger *slog.Logger) (*AuditTrail, error) {
	if dir == "" {
		return nil, errors.New("audit trail directory cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", store.ErrIO, dir, err)
	}

	return &AuditTrail{
		dir:    dir,
		logger: logger.With(slog.String("component", "audit_trail")),
	}, nil
}

// Ensure AuditTrail implements store.AuditTrail.
var _ store.AuditTrail = (*AuditTrail)(nil)

// Record implements store.AuditRecorder.Record. The record is synced to
// stable storage before Record returns success; there is no buffering
// across the process boundary.
func (t *AuditTrail) Record(ctx context.Context, rec *domain.AuditRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	name := fmt.Sprintf("%s_%06d_%s.json",
		rec.Timestamp.UTC().Format(recordTimeFormat),
		t.seq.Add(1),
		rec.ID.String()[:8])
	path := filepath.Join(t.dir, name)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding audit record: %v", store.ErrIO, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", store.ErrIO, path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("%w: writing %s: %v", store.ErrIO, path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: syncing %s: %v", store.ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", store.ErrIO, path, err)
	}

	t.logger.Debug("recorded audit entry",
		"record_id", rec.ID,
		"actor", rec.Actor,
		"action", rec.Action,
		"outcome", rec.Outcome.Status)
	return nil
}

// List implements store.AuditTrail.List. Records come back in file-name
// order, which is write order. Files that fail to parse are skipped with
// a warning, matching the append-only trail's never-fatal read contract.
func (t *AuditTrail) List(ctx context.Context, since time.Time) ([]*domain.AuditRecord, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: listing %s: %v", store.ErrIO, t.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	records := make([]*domain.AuditRecord, 0, len(names))
	for _, name := range names {
		path := filepath.Join(t.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			t.logger.Warn("skipping unreadable audit record", "path", path, "error", err)
			continue
		}

		var rec domain.AuditRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			t.logger.Warn("skipping malformed audit record", "path", path, "error", err)
			continue
		}
		if rec.Timestamp.Before(since) {
			continue
		}
		records = append(records, &rec)
	}
	return records, nil
}
