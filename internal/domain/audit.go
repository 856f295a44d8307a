package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Action identifies what kind of step an audit record describes.
type Action string

// Task-level actions, one per processing step, plus run-level meta
// actions bracketing each loop invocation.
const (
	ActionClassify  Action = "classify"
	ActionSummarize Action = "summarize"
	ActionRoute     Action = "route"
	ActionRetry     Action = "retry"
	ActionFail      Action = "fail"
	ActionComplete  Action = "complete"

	ActionRunStart    Action = "run_start"
	ActionRunComplete Action = "run_complete"
)

// Meta reports whether the action describes the run itself rather
// than an individual task.
func (a Action) Meta() bool {
	return a == ActionRunStart || a == ActionRunComplete
}

// OutcomeStatus classifies how an audited action ended.
type OutcomeStatus string

// Possible outcome statuses. Degraded marks the graceful-degradation
// path: the action continued with reduced functionality and is not an
// error for retry purposes.
const (
	OutcomeSuccess  OutcomeStatus = "success"
	OutcomeError    OutcomeStatus = "error"
	OutcomeDegraded OutcomeStatus = "degraded"
)

// Outcome records how an audited action ended, with an optional message.
type Outcome struct {
	Status  OutcomeStatus `json:"status"`
	Message string        `json:"message,omitempty"`
}

// Succeeded returns a success outcome.
func Succeeded() Outcome { return Outcome{Status: OutcomeSuccess} }

// Failed returns an error outcome carrying the failure message.
func Failed(msg string) Outcome { return Outcome{Status: OutcomeError, Message: msg} }

// Degraded returns a degraded outcome carrying the degradation reason.
func Degraded(msg string) Outcome { return Outcome{Status: OutcomeDegraded, Message: msg} }

// Common validation errors for AuditRecord.
var (
	ErrEmptyActor       = errors.New("audit record actor cannot be empty")
	ErrEmptyAuditTaskID = errors.New("audit record task ID cannot be empty")
	ErrInvalidAction    = errors.New("invalid audit action")
	ErrInvalidOutcome   = errors.New("invalid audit outcome")
)

// AuditRecord is an immutable fact about one action. Records are
// append-only: they are never mutated or deleted by this system, and
// the trail they form is the sole source of truth for aggregation.
type AuditRecord struct {
	ID        uuid.UUID      `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Actor     string         `json:"actor"`
	TaskID    string         `json:"task_id,omitempty"`
	Action    Action         `json:"action"`
	Detail    map[string]any `json:"detail,omitempty"`
	Outcome   Outcome        `json:"outcome"`
}

// NewAuditRecord creates a validated audit record stamped with a fresh
// UUID and the current UTC time. taskID may be empty only for meta actions.
func NewAuditRecord(
	actor string,
	taskID string,
	action Action,
	detail map[string]any,
	outcome Outcome,
) (*AuditRecord, error) {
	rec := &AuditRecord{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Actor:     actor,
		TaskID:    taskID,
		Action:    action,
		Detail:    detail,
		Outcome:   outcome,
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate checks the record's structural invariants.
func (r *AuditRecord) Validate() error {
	if r.Actor == "" {
		return ErrEmptyActor
	}
	if !isValidAction(r.Action) {
		return ErrInvalidAction
	}
	if r.TaskID == "" && !r.Action.Meta() {
		return ErrEmptyAuditTaskID
	}
	switch r.Outcome.Status {
	case OutcomeSuccess, OutcomeError, OutcomeDegraded:
	default:
		return ErrInvalidOutcome
	}
	return nil
}

func isValidAction(a Action) bool {
	switch a {
	case ActionClassify, ActionSummarize, ActionRoute, ActionRetry,
		ActionFail, ActionComplete, ActionRunStart, ActionRunComplete:
		return true
	default:
		return false
	}
}
