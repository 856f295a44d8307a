package domain

import (
	"errors"
	"strings"
)

// TaskState identifies the named location a task currently lives in.
// A task exists in exactly one state at any time; transitions between
// states are atomic moves performed by the store.
type TaskState string

// Possible task state values. Personal and Business are the routed
// locations holding the domain-specific copy of a completed task.
const (
	TaskStateIntake   TaskState = "Intake"
	TaskStatePending  TaskState = "Pending"
	TaskStatePersonal TaskState = "Personal"
	TaskStateBusiness TaskState = "Business"
	TaskStateDone     TaskState = "Done"
)

// TaskStates lists every valid state in pipeline order.
var TaskStates = []TaskState{
	TaskStateIntake,
	TaskStatePending,
	TaskStatePersonal,
	TaskStateBusiness,
	TaskStateDone,
}

// Domain is the classification label assigned to a task.
type Domain string

// Possible domain values.
const (
	DomainPersonal Domain = "personal"
	DomainBusiness Domain = "business"
)

// TaskStatus is the terminal disposition recorded on a finished task.
type TaskStatus string

// Possible terminal statuses. A task finalized after exhausting its
// retries still ends in the Done state, tagged TaskStatusFailed.
const (
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusFailed    TaskStatus = "Failed"
)

// Common validation errors for Task.
var (
	ErrEmptyTaskID      = errors.New("task ID cannot be empty")
	ErrInvalidTaskState = errors.New("invalid task state")
	ErrInvalidDomain    = errors.New("invalid domain")
	ErrDomainAlreadySet = errors.New("task domain is already set")
)

// Task represents one unit of work moving through the pipeline.
// Content holds the full text document, including any structured
// header lines; the named header fields below are parsed out of it
// as read-only inputs to classification.
type Task struct {
	ID      string    `json:"id"`
	State   TaskState `json:"state"`
	Content string    `json:"content"`

	// Optional header fields parsed from Content. Never required.
	Sender     string `json:"sender,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Deadline   string `json:"deadline,omitempty"`
	DomainHint string `json:"domain_hint,omitempty"`

	// Domain is write-once: set when classification first succeeds,
	// immutable thereafter. Use SetDomain.
	Domain Domain `json:"domain,omitempty"`

	// AttemptCount is incremented on each processing attempt and is
	// the sole authority for retry-ceiling decisions.
	AttemptCount int `json:"attempt_count"`

	// LastError describes the most recent failed attempt. Cleared on success.
	LastError string `json:"last_error,omitempty"`
}

// NewTask creates a Task from its storage identity and raw document
// content, parsing any recognized header fields out of the content.
// Returns an error if the ID is empty or the state is invalid.
func NewTask(id string, state TaskState, content string) (*Task, error) {
	task := &Task{
		ID:      id,
		State:   state,
		Content: content,
	}
	task.parseHeaders()

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the task's structural invariants.
func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrEmptyTaskID
	}
	if !isValidTaskState(t.State) {
		return ErrInvalidTaskState
	}
	if t.Domain != "" && !IsValidDomain(t.Domain) {
		return ErrInvalidDomain
	}
	return nil
}

// SetDomain assigns the task's domain label. The label is write-once:
// assigning the same value again is a no-op, assigning a different
// value returns ErrDomainAlreadySet.
func (t *Task) SetDomain(d Domain) error {
	if !IsValidDomain(d) {
		return ErrInvalidDomain
	}
	if t.Domain != "" {
		if t.Domain == d {
			return nil
		}
		return ErrDomainAlreadySet
	}
	t.Domain = d
	return nil
}

// Empty reports whether the task carries no meaningful content.
func (t *Task) Empty() bool {
	return strings.TrimSpace(t.Content) == ""
}

// RoutedState returns the routed location for a domain label.
func RoutedState(d Domain) TaskState {
	if d == DomainPersonal {
		return TaskStatePersonal
	}
	return TaskStateBusiness
}

// IsValidDomain reports whether d is a recognized domain label.
func IsValidDomain(d Domain) bool {
	return d == DomainPersonal || d == DomainBusiness
}

func isValidTaskState(s TaskState) bool {
	switch s {
	case TaskStateIntake, TaskStatePending, TaskStatePersonal, TaskStateBusiness, TaskStateDone:
		return true
	default:
		return false
	}
}

// parseHeaders scans the content for "Key: Value" header lines and
// records the first occurrence of each recognized field. Headers may
// appear anywhere before the body; unrecognized lines are ignored.
// Lines are split directly rather than scanned, so an arbitrarily long
// line cannot cut parsing short.
func (t *Task) parseHeaders() {
	for _, line := range strings.Split(t.Content, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "from":
			if t.Sender == "" {
				t.Sender = value
			}
		case "subject":
			if t.Subject == "" {
				t.Subject = value
			}
		case "deadline":
			if t.Deadline == "" {
				t.Deadline = value
			}
		case "domain":
			if t.DomainHint == "" {
				t.DomainHint = strings.ToLower(value)
			}
		}
	}
}
