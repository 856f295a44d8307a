package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/vault-agent/internal/domain"
)

// Summary status values recorded in completed documents.
const (
	summaryStatusOK       = "ok"
	summaryStatusDegraded = "degraded"
)

// fallbackSummary stands in for the AI summary when the summarizer is
// unavailable. The task still advances; this is the degraded path.
const fallbackSummary = "Processed without an AI summary (summarizer unavailable).\n" +
	"- Task has been classified and routed\n" +
	"- Content preserved in original section\n" +
	"- Ready for human review"

const docTimeFormat = "2006-01-02 15:04:05Z"

// renderCompleted produces the document written to the routed location
// and to Done when a task completes.
func renderCompleted(task *domain.Task, d domain.Domain, summary, status, model string, ts time.Time) string {
	var b strings.Builder
	b.WriteString("# Processed Task\n\n")
	fmt.Fprintf(&b, "**Domain:** %s\n", titleCase(string(d)))
	fmt.Fprintf(&b, "**Processed:** %s\n", ts.Format(docTimeFormat))
	if model != "" {
		fmt.Fprintf(&b, "**Model:** %s\n", model)
	}
	fmt.Fprintf(&b, "**Summary:** %s\n\n", status)
	b.WriteString("## Original Content\n")
	b.WriteString(strings.TrimRight(task.Content, "\n"))
	b.WriteString("\n\n## AI Summary\n")
	b.WriteString(strings.TrimRight(summary, "\n"))
	fmt.Fprintf(&b, "\n\nStatus: %s\n", domain.TaskStatusCompleted)
	return b.String()
}

// renderFailed produces the document written to Done when a task is
// finalized after exhausting its retries.
func renderFailed(maxRetries int, lastErr string, ts time.Time) string {
	var b strings.Builder
	b.WriteString("# Failed Task\n\n")
	fmt.Fprintf(&b, "**Error:** Max retries (%d) exceeded\n", maxRetries)
	if lastErr != "" {
		fmt.Fprintf(&b, "**Last error:** %s\n", lastErr)
	}
	fmt.Fprintf(&b, "**Time:** %s\n\n", ts.Format(docTimeFormat))
	fmt.Fprintf(&b, "Status: %s\n", domain.TaskStatusFailed)
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
