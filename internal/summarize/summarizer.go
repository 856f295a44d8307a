// Package summarize defines the boundary to the external summarization
// capability. The interface makes graceful degradation a typed branch:
// an unavailable summarizer is signalled with ErrUnavailable, which the
// processing loop treats as degrade-and-continue, never as a failure.
package summarize

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/vault-agent/internal/domain"
)

// ErrUnavailable is returned when the summarization capability cannot
// produce a summary: the service is down, unconfigured, or timed out.
// Not an error for retry purposes; the task advances without a summary.
var ErrUnavailable = errors.New("summarizer unavailable")

// Summarizer produces a short summary of a task for its domain.
type Summarizer interface {
	// Summarize returns the summary text, or an error wrapping
	// ErrUnavailable when the capability cannot be reached.
	Summarize(ctx context.Context, task *domain.Task, d domain.Domain) (string, error)
}

// Unavailable is a Summarizer that is permanently unavailable, used
// when no summarization backend is configured.
type Unavailable struct {
	// Reason is reported in the wrapped error, e.g. "api key not configured".
	Reason string
}

// Ensure Unavailable implements Summarizer.
var _ Summarizer = (*Unavailable)(nil)

// Summarize always reports the capability as unavailable.
func (u *Unavailable) Summarize(ctx context.Context, task *domain.Task, d domain.Domain) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}
