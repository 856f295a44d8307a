package summarize_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/summarize"
)

// slowSummarizer blocks for delay before answering, ignoring its context.
type slowSummarizer struct {
	delay time.Duration
	text  string
}

func (s *slowSummarizer) Summarize(ctx context.Context, task *domain.Task, d domain.Domain) (string, error) {
	time.Sleep(s.delay)
	return s.text, nil
}

func testTask(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask("task-1", domain.TaskStatePending, "summarize me")
	require.NoError(t, err)
	return task
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	t.Run("passes through a fast result", func(t *testing.T) {
		t.Parallel()

		s := summarize.WithTimeout(&slowSummarizer{delay: 0, text: "- summary"}, time.Second)

		text, err := s.Summarize(context.Background(), testTask(t), domain.DomainBusiness)
		require.NoError(t, err)
		assert.Equal(t, "- summary", text)
	})

	t.Run("slow call degrades to unavailable", func(t *testing.T) {
		t.Parallel()

		s := summarize.WithTimeout(&slowSummarizer{delay: time.Second, text: "late"}, 10*time.Millisecond)

		start := time.Now()
		_, err := s.Summarize(context.Background(), testTask(t), domain.DomainBusiness)
		assert.ErrorIs(t, err, summarize.ErrUnavailable)
		assert.Less(t, time.Since(start), 500*time.Millisecond, "the bound holds even against a blocking implementation")
	})

	t.Run("cancelled context degrades to unavailable", func(t *testing.T) {
		t.Parallel()

		s := summarize.WithTimeout(&slowSummarizer{delay: time.Second}, time.Minute)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Summarize(ctx, testTask(t), domain.DomainPersonal)
		assert.ErrorIs(t, err, summarize.ErrUnavailable)
	})
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	s := &summarize.Unavailable{Reason: "api key not configured"}

	_, err := s.Summarize(context.Background(), testTask(t), domain.DomainPersonal)
	require.ErrorIs(t, err, summarize.ErrUnavailable)
	assert.Contains(t, err.Error(), "api key not configured")
}
