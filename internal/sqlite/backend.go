// Package sqlite implements the SQLite shadow-store backend and run archive.
// The shadow map lives in the entries table; every Attach starts it empty.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// DBFileName is the database file created under the data directory.
const DBFileName = "tracegen.db"

// Backend implements types.ShadowStore and types.RunRecorder on SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

var (
	_ types.ShadowStore = (*Backend)(nil)
	_ types.RunRecorder = (*Backend)(nil)
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens the database and resets the entries table. An empty DataDir
// selects a private in-memory database. Returns ErrAlreadyAttached if
// already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dsn := ":memory:"
	if config.DataDir != "" {
		if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		dsn = filepath.Join(config.DataDir, DBFileName)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", dsn, err)
	}
	// One connection: the in-memory database is per connection, and the
	// generator is single-threaded anyway.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent. After Detach, all
// operations return ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

func applySchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return tx.Commit()
}

// conn returns the open database or ErrStoreDetached. Callers hold b.mu.
func (b *Backend) conn() (*sql.DB, error) {
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.db, nil
}

// Put inserts or overwrites the value for key.
func (b *Backend) Put(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.conn()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO entries (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Lookup returns the longest-prefix answer for query. Prefixes are
// queried longest first, at most maxQueryVars per statement.
func (b *Backend) Lookup(query string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return "", err
	}
	for _, prefixes := range prefixChunks(query, 1) {
		var key, value string
		row := db.QueryRow(
			`SELECT key, value FROM entries WHERE key IN (`+placeholders(len(prefixes))+`)
             ORDER BY length(key) DESC LIMIT 1`,
			prefixes...,
		)
		switch err := row.Scan(&key, &value); {
		case errors.Is(err, sql.ErrNoRows):
			continue
		case err != nil:
			return "", fmt.Errorf("lookup %s: %w", query, err)
		}
		return value + query[len(key):], nil
	}
	return query, nil
}

// RemovePrefix deletes every entry whose key starts with prefix. Keys are
// printable ASCII, so the range [prefix, prefix+"\x7f") holds exactly the
// keys with that prefix under SQLite's binary collation.
func (b *Backend) RemovePrefix(prefix string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.conn()
	if err != nil {
		return 0, err
	}
	res, err := db.Exec(`DELETE FROM entries WHERE key >= ? AND key < ?`, prefix, prefix+"\x7f")
	if err != nil {
		return 0, fmt.Errorf("remove prefix %s: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remove prefix %s: %w", prefix, err)
	}
	return int(n), nil
}

// Reverse returns the reconstructed candidate keys for query.
func (b *Backend) Reverse(query string) ([]string, error) {
	if query == "" {
		panic("sqlite: reverse of empty query")
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, prefixes := range prefixChunks(query, 2) {
		if out, err = reverseChunk(db, query, prefixes, seen, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Len returns the number of entries.
func (b *Backend) Len() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// KeyAt returns the i-th key in rowid order.
func (b *Backend) KeyAt(i int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return "", err
	}
	if i < 0 {
		panic(fmt.Sprintf("sqlite: negative key index %d", i))
	}
	var key string
	err = db.QueryRow(`SELECT key FROM entries ORDER BY rowid LIMIT 1 OFFSET ?`, i).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		panic(fmt.Sprintf("sqlite: key index %d outside store", i))
	}
	if err != nil {
		return "", fmt.Errorf("key at %d: %w", i, err)
	}
	return key, nil
}

// Entries returns every entry in rowid order.
func (b *Backend) Entries() ([]types.Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT key, value FROM entries ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []types.Entry
	for rows.Next() {
		var e types.Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// maxQueryVars bounds the parameters bound per statement, well under
// SQLite's variable limit.
const maxQueryVars = 256

// reverseChunk appends the candidates for entries whose value is one of
// prefixes, skipping those already in seen.
func reverseChunk(db *sql.DB, query string, prefixes []any, seen map[string]struct{}, out []string) ([]string, error) {
	rows, err := db.Query(
		`SELECT key, value FROM entries WHERE value IN (`+placeholders(len(prefixes))+`)`,
		prefixes...,
	)
	if err != nil {
		return nil, fmt.Errorf("reverse %s: %w", query, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan reverse row: %w", err)
		}
		cand := key + query[len(value):]
		if _, dup := seen[cand]; dup {
			continue
		}
		seen[cand] = struct{}{}
		out = append(out, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reverse %s: %w", query, err)
	}
	return out, nil
}

// prefixChunks returns query[:l] for l = len(query) down to from, as query
// arguments split into chunks of at most maxQueryVars.
func prefixChunks(query string, from int) [][]any {
	var chunks [][]any
	var chunk []any
	for l := len(query); l >= from; l-- {
		chunk = append(chunk, query[:l])
		if len(chunk) == maxQueryVars {
			chunks = append(chunks, chunk)
			chunk = nil
		}
	}
	if len(chunk) > 0 {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
