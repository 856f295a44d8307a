// Package agent implements the autonomous processing loop and its
// task-state machine: drain intake, then repeatedly select pending
// tasks and classify, summarize, route and complete each one, retrying
// failures up to a bounded ceiling and finalizing the rest as failed.
// The loop owns and injects the retry tracker and the audit trail; it
// is single-threaded and runs to completion.
package agent
