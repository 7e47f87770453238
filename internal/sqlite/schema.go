// Package sqlite implements the SQLite shadow-store backend and run archive.
// This file holds the schema DDL.
package sqlite

// The entries table is dropped and recreated on every Attach; runs
// accumulate across attaches. Run times are unix nanoseconds.
const (
	dropEntries = `DROP TABLE IF EXISTS entries;`

	createEntries = `CREATE TABLE entries (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

	createEntriesValueIndex = `CREATE INDEX entries_value ON entries(value);`

	createRuns = `CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    iterations INTEGER NOT NULL,
    profile TEXT NOT NULL,
    seed TEXT NOT NULL,
    adds INTEGER NOT NULL,
    gets INTEGER NOT NULL,
    removes INTEGER NOT NULL,
    reverses INTEGER NOT NULL,
    final_size INTEGER NOT NULL
);`
)

// schemaStatements runs in order inside one transaction on Attach.
var schemaStatements = []string{
	dropEntries,
	createEntries,
	createEntriesValueIndex,
	createRuns,
}
