package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vault-agent/internal/domain"
)

func TestRenderCompleted(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask("task-1", domain.TaskStatePending, "Review the vendor contract.\n")
	require.NoError(t, err)
	ts := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	t.Run("with summary", func(t *testing.T) {
		t.Parallel()

		doc := renderCompleted(task, domain.DomainBusiness, "- reviewed", summaryStatusOK, "gemini-2.0-flash", ts)

		assert.Contains(t, doc, "# Processed Task")
		assert.Contains(t, doc, "**Domain:** Business")
		assert.Contains(t, doc, "**Processed:** 2025-06-02 09:30:00Z")
		assert.Contains(t, doc, "**Model:** gemini-2.0-flash")
		assert.Contains(t, doc, "**Summary:** ok")
		assert.Contains(t, doc, "Review the vendor contract.")
		assert.Contains(t, doc, "- reviewed")
		assert.Contains(t, doc, "Status: Completed")
	})

	t.Run("degraded summary keeps the task content", func(t *testing.T) {
		t.Parallel()

		doc := renderCompleted(task, domain.DomainPersonal, fallbackSummary, summaryStatusDegraded, "", ts)

		assert.Contains(t, doc, "**Domain:** Personal")
		assert.Contains(t, doc, "**Summary:** degraded")
		assert.Contains(t, doc, "summarizer unavailable")
		assert.Contains(t, doc, "Review the vendor contract.")
		assert.NotContains(t, doc, "**Model:**", "no model line when none was used")
	})
}

func TestRenderFailed(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	doc := renderFailed(2, "classify: boom", ts)

	assert.Contains(t, doc, "# Failed Task")
	assert.Contains(t, doc, "Max retries (2) exceeded")
	assert.Contains(t, doc, "**Last error:** classify: boom")
	assert.Contains(t, doc, "Status: Failed")
}
