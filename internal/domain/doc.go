// Package domain defines the core business entities of the vault agent:
// tasks moving through the processing pipeline, the audit records written
// for every state-changing action, and the summary produced by a loop run.
package domain
