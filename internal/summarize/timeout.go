package summarize

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/vault-agent/internal/domain"
)

// WithTimeout wraps a Summarizer so each call is bounded by d. A call
// that exceeds the bound is treated identically to the summarizer being
// unavailable: the wrapper returns ErrUnavailable and the task degrades
// instead of blocking indefinitely.
func WithTimeout(inner Summarizer, d time.Duration) Summarizer {
	return &timeoutSummarizer{inner: inner, timeout: d}
}

type timeoutSummarizer struct {
	inner   Summarizer
	timeout time.Duration
}

type summarizeResult struct {
	text string
	err  error
}

// Summarize implements Summarizer. The inner call runs in its own
// goroutine so the bound holds even against an implementation that
// ignores context cancellation; a late result is discarded.
func (t *timeoutSummarizer) Summarize(ctx context.Context, task *domain.Task, d domain.Domain) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ch := make(chan summarizeResult, 1)
	go func() {
		text, err := t.inner.Summarize(ctx, task, d)
		ch <- summarizeResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: no response within %s", ErrUnavailable, t.timeout)
	case res := <-ch:
		if res.err != nil && ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, res.err)
		}
		return res.text, res.err
	}
}
