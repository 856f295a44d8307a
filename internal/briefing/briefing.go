// Package briefing aggregates the audit trail into the weekly
// human-readable status report. It only ever reads the trail; the
// trail's completeness and ordering are guaranteed by the loop.
package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/store"
)

// Stats summarizes a window of the audit trail.
type Stats struct {
	Total     int
	ByAction  map[domain.Action]int
	Completed int
	Failed    int
	Degraded  int
	ByDomain  map[domain.Domain]int
	Errors    []*domain.AuditRecord
}

// Aggregate folds a slice of audit records into Stats. Meta records
// count toward Total only.
func Aggregate(records []*domain.AuditRecord) *Stats {
	stats := &Stats{
		ByAction: make(map[domain.Action]int),
		ByDomain: make(map[domain.Domain]int),
	}

	for _, rec := range records {
		stats.Total++
		if rec.Action.Meta() {
			continue
		}
		stats.ByAction[rec.Action]++

		switch rec.Action {
		case domain.ActionComplete:
			stats.Completed++
			if d, ok := rec.Detail["domain"].(string); ok {
				stats.ByDomain[domain.Domain(d)]++
			}
		case domain.ActionFail:
			if terminal, ok := rec.Detail["terminal"].(bool); ok && terminal {
				stats.Failed++
			}
		}

		switch rec.Outcome.Status {
		case domain.OutcomeDegraded:
			stats.Degraded++
		case domain.OutcomeError:
			stats.Errors = append(stats.Errors, rec)
		}
	}
	return stats
}

// Generator renders briefings from an audit trail.
type Generator struct {
	trail  store.AuditTrail
	logger *slog.Logger
}

// NewGenerator creates a briefing generator over the given trail.
func NewGenerator(trail store.AuditTrail, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		trail:  trail,
		logger: logger.With(slog.String("component", "briefing")),
	}
}

// Generate reads the trail from the start of week and renders the
// briefing markdown. run, if non-nil, is the summary of the run that
// just finished and gets its own section.
func (g *Generator) Generate(ctx context.Context, week Week, run *domain.RunSummary) (string, error) {
	records, err := g.trail.List(ctx, week.Start)
	if err != nil {
		return "", fmt.Errorf("reading audit trail: %w", err)
	}

	stats := Aggregate(records)
	g.logger.Info("generated briefing",
		"week_start", week.Start.Format("2006-01-02"),
		"records", stats.Total)

	return Render(stats, week, run), nil
}

// Render produces the briefing markdown for one week of activity.
func Render(stats *Stats, week Week, run *domain.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Weekly Briefing - Week %d\n\n", week.ISOWeek)
	fmt.Fprintf(&b, "**Period:** %s to %s\n\n",
		week.Start.Format("2006-01-02"), week.End.Format("2006-01-02"))

	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- Tasks completed: %d\n", stats.Completed)
	fmt.Fprintf(&b, "- Tasks failed: %d\n", stats.Failed)
	fmt.Fprintf(&b, "- Degraded summaries: %d\n", stats.Degraded)
	fmt.Fprintf(&b, "- Audit records: %d\n\n", stats.Total)

	if len(stats.ByDomain) > 0 {
		b.WriteString("## By domain\n\n")
		domains := make([]string, 0, len(stats.ByDomain))
		for d := range stats.ByDomain {
			domains = append(domains, string(d))
		}
		sort.Strings(domains)
		for _, d := range domains {
			fmt.Fprintf(&b, "- %s: %d\n", d, stats.ByDomain[domain.Domain(d)])
		}
		b.WriteString("\n")
	}

	if len(stats.Errors) > 0 {
		b.WriteString("## Errors\n\n")
		for _, rec := range stats.Errors {
			fmt.Fprintf(&b, "- [%s] %s %s: %s\n",
				rec.Timestamp.Format(time.RFC3339), rec.TaskID, rec.Action, rec.Outcome.Message)
		}
		b.WriteString("\n")
	}

	if run != nil {
		b.WriteString("## Last run\n\n")
		fmt.Fprintf(&b, "- Run ID: %s\n", run.RunID)
		fmt.Fprintf(&b, "- Outcome: %s\n", run.Outcome)
		fmt.Fprintf(&b, "- Loops: %d, processed: %d, failed: %d\n",
			run.Loops, run.Processed, run.Failed)
	}

	return b.String()
}
