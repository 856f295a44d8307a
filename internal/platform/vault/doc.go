// Package vault implements the store interfaces on a plain directory
// tree: one subdirectory per task state holding one markdown record per
// task, plus a Logs directory holding one JSON document per audit record.
package vault
