package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryTracker(t *testing.T) {
	t.Parallel()

	t.Run("counts attempts per task", func(t *testing.T) {
		t.Parallel()

		tracker := NewRetryTracker(3)

		assert.Equal(t, 1, tracker.RecordAttempt("a"))
		assert.Equal(t, 2, tracker.RecordAttempt("a"))
		assert.Equal(t, 1, tracker.RecordAttempt("b"), "tasks are tracked independently")
		assert.Equal(t, 2, tracker.Attempts("a"))
	})

	t.Run("should retry until the ceiling", func(t *testing.T) {
		t.Parallel()

		tracker := NewRetryTracker(2)

		assert.True(t, tracker.ShouldRetry("a"), "untouched task has attempts remaining")

		tracker.RecordAttempt("a")
		assert.True(t, tracker.ShouldRetry("a"))
		assert.False(t, tracker.Exhausted("a"))

		tracker.RecordAttempt("a")
		assert.False(t, tracker.ShouldRetry("a"))
		assert.True(t, tracker.Exhausted("a"))
	})

	t.Run("reset clears the count", func(t *testing.T) {
		t.Parallel()

		tracker := NewRetryTracker(1)
		tracker.RecordAttempt("a")
		assert.True(t, tracker.Exhausted("a"))

		tracker.Reset("a")
		assert.Zero(t, tracker.Attempts("a"))
		assert.False(t, tracker.Exhausted("a"))
	})
}
