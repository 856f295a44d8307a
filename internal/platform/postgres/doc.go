// Package postgres mirrors loop runs and audit events into Postgres.
// The filesystem trail remains authoritative; the tables here exist for
// querying and reporting, and every write is best-effort from the
// loop's point of view.
package postgres
