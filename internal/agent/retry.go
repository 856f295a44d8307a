package agent

// RetryTracker counts processing attempts per task against a fixed
// ceiling. Exceeding the ceiling is not an error but a terminal policy
// decision: the task is finalized instead of retried forever.
//
// The tracker is owned by a single Runner and is not safe for
// concurrent use; the loop is single-threaded by design.
type RetryTracker struct {
	maxRetries int
	attempts   map[string]int
}

// NewRetryTracker creates a tracker with the given attempt ceiling.
func NewRetryTracker(maxRetries int) *RetryTracker {
	return &RetryTracker{
		maxRetries: maxRetries,
		attempts:   make(map[string]int),
	}
}

// RecordAttempt increments the attempt count for a task and returns
// the new count. Counts only ever increase until Reset.
func (t *RetryTracker) RecordAttempt(taskID string) int {
	t.attempts[taskID]++
	return t.attempts[taskID]
}

// Attempts returns the current attempt count for a task.
func (t *RetryTracker) Attempts(taskID string) int {
	return t.attempts[taskID]
}

// ShouldRetry reports whether the task has attempts remaining.
func (t *RetryTracker) ShouldRetry(taskID string) bool {
	return t.attempts[taskID] < t.maxRetries
}

// Exhausted reports whether the task has reached the ceiling.
func (t *RetryTracker) Exhausted(taskID string) bool {
	return t.attempts[taskID] >= t.maxRetries
}

// Reset clears the attempt count for a task after a success.
func (t *RetryTracker) Reset(taskID string) {
	delete(t.attempts, taskID)
}
