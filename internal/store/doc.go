// Package store defines interfaces for task and audit-trail persistence.
// These interfaces abstract the underlying storage mechanism from the
// processing loop, so the task-state machine can be exercised against
// any backend that honors the same list/read/write/move contract.
package store
