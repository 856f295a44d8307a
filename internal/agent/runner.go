package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vault-agent/internal/classify"
	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/store"
	"github.com/phrazzld/vault-agent/internal/summarize"
)

// Actors named in audit records.
const (
	actorAgent      = "agent"
	actorRouter     = "domain_router"
	actorSummarizer = "summarizer"
)

// Common construction errors.
var (
	ErrNilTaskStore  = errors.New("task store cannot be nil")
	ErrNilTrail      = errors.New("audit trail cannot be nil")
	ErrNilClassifier = errors.New("classifier cannot be nil")
	ErrNilSummarizer = errors.New("summarizer cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
	ErrInvalidConfig = errors.New("invalid runner configuration")
)

// Config bounds one loop run.
type Config struct {
	// MaxRetries is the per-task attempt ceiling.
	MaxRetries int

	// MaxLoops is the iteration ceiling, a liveness safety valve against
	// bugs that could otherwise keep regenerating pending work.
	MaxLoops int

	// Model is recorded in completed documents and meta records.
	Model string

	// RunID identifies this run in meta records. Zero generates one.
	RunID uuid.UUID
}

// Runner is the loop controller. It pulls tasks from the store, calls
// the classifier and summarizer, writes through the audit trail, and
// issues the store moves that advance each task's state.
//
// The caller must not run two Runners against the same store
// concurrently; single-writer access is a documented precondition.
type Runner struct {
	tasks      store.TaskStore
	trail      store.AuditRecorder
	classifier classify.Classifier
	summarizer summarize.Summarizer
	retries    *RetryTracker
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner creates a Runner, validating all dependencies.
func NewRunner(
	tasks store.TaskStore,
	trail store.AuditRecorder,
	classifier classify.Classifier,
	summarizer summarize.Summarizer,
	cfg Config,
	logger *slog.Logger,
) (*Runner, error) {
	if tasks == nil {
		return nil, ErrNilTaskStore
	}
	if trail == nil {
		return nil, ErrNilTrail
	}
	if classifier == nil {
		return nil, ErrNilClassifier
	}
	if summarizer == nil {
		return nil, ErrNilSummarizer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if cfg.MaxRetries <= 0 {
		return nil, fmt.Errorf("%w: max retries must be positive", ErrInvalidConfig)
	}
	if cfg.MaxLoops <= 0 {
		return nil, fmt.Errorf("%w: max loops must be positive", ErrInvalidConfig)
	}
	if cfg.RunID == uuid.Nil {
		cfg.RunID = uuid.New()
	}

	return &Runner{
		tasks:      tasks,
		trail:      trail,
		classifier: classifier,
		summarizer: summarizer,
		retries:    NewRetryTracker(cfg.MaxRetries),
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "agent"), slog.String("run_id", cfg.RunID.String())),
		now:        time.Now,
	}, nil
}

// Run executes one full loop invocation to completion: drain intake
// once, then iterate over the pending set until it is empty or the
// iteration ceiling fires. Per-task errors never abort the run; only a
// failed audit write does, since an unauditable run is unsafe to
// continue silently. The returned summary is valid even on error.
func (r *Runner) Run(ctx context.Context) (*domain.RunSummary, error) {
	summary := &domain.RunSummary{
		RunID:     r.cfg.RunID,
		StartedAt: r.now().UTC(),
	}

	err := r.recordMeta(ctx, domain.ActionRunStart, map[string]any{
		"max_loops":   r.cfg.MaxLoops,
		"max_retries": r.cfg.MaxRetries,
	})
	if err != nil {
		return summary, err
	}

	r.logger.Info("run starting", "max_loops", r.cfg.MaxLoops, "max_retries", r.cfg.MaxRetries)

	// Intake is drained exactly once per run. Work arriving mid-run is
	// picked up by the next invocation.
	if err := r.drainIntake(ctx); err != nil {
		return summary, err
	}

	for loop := 1; loop <= r.cfg.MaxLoops; loop++ {
		summary.Loops = loop

		pending, err := r.tasks.List(ctx, domain.TaskStatePending)
		if err != nil {
			return summary, fmt.Errorf("listing pending tasks: %w", err)
		}
		if len(pending) == 0 {
			summary.Outcome = domain.RunCompleted
			break
		}

		r.logger.Info("loop iteration", "loop", loop, "pending", len(pending))

		for _, ref := range pending {
			if err := r.processTask(ctx, ref, summary); err != nil {
				return summary, err
			}
		}

		remaining, err := r.tasks.List(ctx, domain.TaskStatePending)
		if err != nil {
			return summary, fmt.Errorf("listing pending tasks: %w", err)
		}
		if len(remaining) == 0 {
			summary.Outcome = domain.RunCompleted
			break
		}
		if loop == r.cfg.MaxLoops {
			summary.Outcome = domain.RunCeilingReached
			r.logger.Warn("iteration ceiling reached with tasks still pending",
				"pending", len(remaining))
		}
	}

	summary.FinishedAt = r.now().UTC()

	err = r.recordMeta(ctx, domain.ActionRunComplete, map[string]any{
		"loops":     summary.Loops,
		"processed": summary.Processed,
		"failed":    summary.Failed,
		"outcome":   string(summary.Outcome),
	})
	if err != nil {
		return summary, err
	}

	r.logger.Info("run finished",
		"loops", summary.Loops,
		"processed", summary.Processed,
		"failed", summary.Failed,
		"outcome", summary.Outcome)
	return summary, nil
}

// drainIntake moves every task from Intake to Pending, one audit
// record per move. A task that cannot be moved stays in Intake for the
// next run; only audit failures propagate.
func (r *Runner) drainIntake(ctx context.Context) error {
	refs, err := r.tasks.List(ctx, domain.TaskStateIntake)
	if err != nil {
		return fmt.Errorf("listing intake tasks: %w", err)
	}

	for _, ref := range refs {
		if _, err := r.tasks.Move(ctx, ref, domain.TaskStatePending); err != nil {
			if store.IsNotFound(err) {
				r.logger.Warn("intake task vanished, skipping", "task_id", ref.ID)
				continue
			}
			r.logger.Error("failed to drain intake task", "task_id", ref.ID, "error", err)
			continue
		}

		detail := map[string]any{
			"from": string(domain.TaskStateIntake),
			"to":   string(domain.TaskStatePending),
		}
		if err := r.record(ctx, actorAgent, ref.ID, domain.ActionRoute, detail, domain.Succeeded()); err != nil {
			return err
		}
	}

	if len(refs) > 0 {
		r.logger.Info("drained intake", "count", len(refs))
	}
	return nil
}

// processTask runs one attempt of the per-task pipeline. Its returned
// error is reserved for audit-trail failures; everything else is
// handled at task granularity via the retry policy.
func (r *Runner) processTask(ctx context.Context, ref store.TaskRef, summary *domain.RunSummary) error {
	logger := r.logger.With("task_id", ref.ID)

	// A task already past its ceiling got here because a previous
	// finalization failed; finish that rather than burn another attempt.
	if r.retries.Exhausted(ref.ID) {
		r.finalizeFailed(ctx, ref, summary, "retries exhausted")
		return nil
	}

	attempt := r.retries.RecordAttempt(ref.ID)

	task, err := r.tasks.Read(ctx, ref)
	if err != nil {
		if store.IsNotFound(err) {
			logger.Warn("task vanished, skipping", "error", err)
			return nil
		}
		return r.failAttempt(ctx, ref, summary, attempt, "read", err)
	}
	task.AttemptCount = attempt

	// Empty tasks carry nothing to classify or summarize; they complete
	// straight into Done.
	if task.Empty() {
		return r.completeEmpty(ctx, ref, summary, attempt)
	}

	dom, err := r.classifier.Classify(task)
	if err != nil {
		return r.failAttempt(ctx, ref, summary, attempt, "classify", err)
	}
	if err := task.SetDomain(dom); err != nil {
		return r.failAttempt(ctx, ref, summary, attempt, "classify", err)
	}
	classifyDetail := map[string]any{"domain": string(dom), "attempt": attempt}
	if err := r.record(ctx, actorRouter, ref.ID, domain.ActionClassify, classifyDetail, domain.Succeeded()); err != nil {
		return err
	}

	status := summaryStatusOK
	text, err := r.summarizer.Summarize(ctx, task, dom)
	if err != nil {
		// Every summarizer failure is the graceful-degradation path:
		// the task still advances, without a summary.
		status = summaryStatusDegraded
		text = fallbackSummary
		degradeDetail := map[string]any{"attempt": attempt}
		if err := r.record(ctx, actorSummarizer, ref.ID, domain.ActionSummarize, degradeDetail, domain.Degraded(err.Error())); err != nil {
			return err
		}
		logger.Warn("summarizer unavailable, continuing without summary", "error", err)
	} else {
		okDetail := map[string]any{"chars": len(text), "attempt": attempt}
		if err := r.record(ctx, actorSummarizer, ref.ID, domain.ActionSummarize, okDetail, domain.Succeeded()); err != nil {
			return err
		}
	}

	doc := renderCompleted(task, dom, text, status, r.cfg.Model, r.now().UTC())

	// The routed copy and the Done copy are two deliberate, independent
	// materializations of the completed task.
	routed := store.TaskRef{State: domain.RoutedState(dom), ID: ref.ID}
	if err := r.tasks.Write(ctx, routed, doc); err != nil {
		return r.failAttempt(ctx, ref, summary, attempt, "route", err)
	}
	routeDetail := map[string]any{"domain": string(dom), "to": string(routed.State)}
	if err := r.record(ctx, actorAgent, ref.ID, domain.ActionRoute, routeDetail, domain.Succeeded()); err != nil {
		return err
	}

	done := store.TaskRef{State: domain.TaskStateDone, ID: ref.ID}
	if err := r.tasks.Write(ctx, done, doc); err != nil {
		return r.failAttempt(ctx, ref, summary, attempt, "complete", err)
	}
	if err := r.tasks.Delete(ctx, ref); err != nil && !store.IsNotFound(err) {
		return r.failAttempt(ctx, ref, summary, attempt, "complete", err)
	}
	completeDetail := map[string]any{"domain": string(dom), "summary": status, "attempt": attempt}
	if err := r.record(ctx, actorAgent, ref.ID, domain.ActionComplete, completeDetail, domain.Succeeded()); err != nil {
		return err
	}

	r.retries.Reset(ref.ID)
	summary.Processed++
	logger.Info("task completed", "domain", dom, "summary", status, "attempt", attempt)
	return nil
}

// completeEmpty moves a contentless task straight to Done.
func (r *Runner) completeEmpty(ctx context.Context, ref store.TaskRef, summary *domain.RunSummary, attempt int) error {
	if _, err := r.tasks.Move(ctx, ref, domain.TaskStateDone); err != nil {
		if store.IsNotFound(err) {
			r.logger.Warn("empty task vanished, skipping", "task_id", ref.ID)
			return nil
		}
		return r.failAttempt(ctx, ref, summary, attempt, "complete", err)
	}

	detail := map[string]any{"skipped_empty": true, "attempt": attempt}
	if err := r.record(ctx, actorAgent, ref.ID, domain.ActionComplete, detail, domain.Succeeded()); err != nil {
		return err
	}

	r.retries.Reset(ref.ID)
	summary.Processed++
	r.logger.Info("empty task completed", "task_id", ref.ID)
	return nil
}

// failAttempt records one fail audit record for a failed attempt. The
// record of the exhausting attempt carries terminal=true and the task
// is finalized; otherwise a retry record is appended and the task stays
// in Pending for the next iteration.
func (r *Runner) failAttempt(
	ctx context.Context,
	ref store.TaskRef,
	summary *domain.RunSummary,
	attempt int,
	stage string,
	cause error,
) error {
	terminal := !r.retries.ShouldRetry(ref.ID)

	detail := map[string]any{"stage": stage, "attempt": attempt, "terminal": terminal}
	if err := r.record(ctx, actorAgent, ref.ID, domain.ActionFail, detail, domain.Failed(cause.Error())); err != nil {
		return err
	}
	r.logger.Error("task attempt failed",
		"task_id", ref.ID,
		"stage", stage,
		"attempt", attempt,
		"terminal", terminal,
		"error", cause)

	if terminal {
		r.finalizeFailed(ctx, ref, summary, cause.Error())
		return nil
	}

	retryDetail := map[string]any{"attempt": attempt, "max_retries": r.cfg.MaxRetries}
	return r.record(ctx, actorAgent, ref.ID, domain.ActionRetry, retryDetail, domain.Succeeded())
}

// finalizeFailed moves an exhausted task to Done tagged Failed. If the
// store refuses, the task stays in Pending and the next iteration
// retries the finalization without burning another attempt; the loop
// ceiling bounds how long that can go on.
func (r *Runner) finalizeFailed(ctx context.Context, ref store.TaskRef, summary *domain.RunSummary, lastErr string) {
	doc := renderFailed(r.cfg.MaxRetries, lastErr, r.now().UTC())

	done := store.TaskRef{State: domain.TaskStateDone, ID: ref.ID}
	if err := r.tasks.Write(ctx, done, doc); err != nil {
		r.logger.Error("failed to finalize task", "task_id", ref.ID, "error", err)
		return
	}
	if err := r.tasks.Delete(ctx, ref); err != nil && !store.IsNotFound(err) {
		r.logger.Error("failed to remove finalized task from pending", "task_id", ref.ID, "error", err)
		return
	}

	summary.Failed++
	r.logger.Info("task finalized as failed", "task_id", ref.ID, "max_retries", r.cfg.MaxRetries)
}

func (r *Runner) record(
	ctx context.Context,
	actor string,
	taskID string,
	action domain.Action,
	detail map[string]any,
	outcome domain.Outcome,
) error {
	rec, err := domain.NewAuditRecord(actor, taskID, action, detail, outcome)
	if err != nil {
		return err
	}
	if err := r.trail.Record(ctx, rec); err != nil {
		return fmt.Errorf("audit trail write failed, aborting run: %w", err)
	}
	return nil
}

func (r *Runner) recordMeta(ctx context.Context, action domain.Action, detail map[string]any) error {
	if detail == nil {
		detail = map[string]any{}
	}
	detail["run_id"] = r.cfg.RunID.String()
	return r.record(ctx, actorAgent, "", action, detail, domain.Succeeded())
}
