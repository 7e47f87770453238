// Run archive: one row per completed generator run.
package sqlite

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// generateUUID generates a new UUID v7 for run IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// RecordRun stores run and returns its ID. A run without an ID gets a new
// UUID v7.
func (b *Backend) RecordRun(run types.RunSummary) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.conn()
	if err != nil {
		return "", err
	}
	if run.RunID == "" {
		run.RunID = generateUUID()
	}
	_, err = db.Exec(
		`INSERT INTO runs (run_id, started_at, finished_at, iterations, profile, seed,
            adds, gets, removes, reverses, final_size)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.StartedAt.UnixNano(),
		run.FinishedAt.UnixNano(),
		run.Iterations,
		run.Profile,
		strconv.FormatUint(run.Seed, 10),
		run.Counts.Add, run.Counts.Get, run.Counts.Remove, run.Counts.Reverse,
		run.FinalSize,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return run.RunID, nil
}

// Runs returns archived runs, oldest first.
func (b *Backend) Runs() ([]types.RunSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`SELECT run_id, started_at, finished_at, iterations, profile, seed,
            adds, gets, removes, reverses, final_size
         FROM runs ORDER BY started_at, run_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []types.RunSummary
	for rows.Next() {
		var (
			r                 types.RunSummary
			started, finished int64
			seed              string
		)
		if err := rows.Scan(&r.RunID, &started, &finished, &r.Iterations, &r.Profile, &seed,
			&r.Counts.Add, &r.Counts.Get, &r.Counts.Remove, &r.Counts.Reverse, &r.FinalSize); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, started).UTC()
		r.FinishedAt = time.Unix(0, finished).UTC()
		if r.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("parse seed: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
