package store

import (
	"context"

	"github.com/phrazzld/vault-agent/internal/domain"
)

// TaskRef names one task record inside the store: a state location
// plus the task's identifier within it.
type TaskRef struct {
	State domain.TaskState
	ID    string
}

// TaskStore defines the interface for task persistence as a
// directory-of-records state machine.
// Version: 1.0
type TaskStore interface {
	// List returns the tasks currently in the given state, ordered
	// lexicographically by ID. The ordering is stable across calls
	// absent mutation. A missing or empty location yields an empty slice.
	List(ctx context.Context, state domain.TaskState) ([]TaskRef, error)

	// Read loads the task at ref, parsing its header fields.
	// Returns ErrNotFound if the record vanished, ErrIO on storage errors.
	Read(ctx context.Context, ref TaskRef) (*domain.Task, error)

	// Write creates or replaces the record at ref with the given content.
	Write(ctx context.Context, ref TaskRef, content string) error

	// Move atomically relocates the record at ref to the given state:
	// the task disappears from the old location and appears whole in the
	// new one, or the operation fails leaving the old location unchanged.
	// Returns the ref of the new location.
	Move(ctx context.Context, ref TaskRef, to domain.TaskState) (TaskRef, error)

	// Delete removes the record at ref.
	// Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, ref TaskRef) error
}
