package types

import (
	"errors"
	"time"
)

// ShadowStore mirrors the expected state of the prefix-keyed store under
// test. Implementations hold a plain key to value mapping and answer prefix
// queries by scanning it.
type ShadowStore interface {
	// Put inserts or overwrites the value for key.
	Put(key, value string) error

	// Lookup returns the longest-prefix answer for query: the value of the
	// longest stored key that prefixes query, followed by the rest of
	// query. If no stored key prefixes query, Lookup returns query.
	Lookup(query string) (string, error)

	// RemovePrefix deletes every entry whose key has prefix as a literal
	// prefix and returns how many were deleted. An empty prefix deletes
	// everything.
	RemovePrefix(prefix string) (int, error)

	// Reverse returns the distinct candidate keys k+query[len(p):] for every
	// entry (k, p) whose value p is a prefix of query with len(p) >= 2.
	// The trivial candidate query is not included and order is
	// unspecified. Reverse panics if query is empty.
	Reverse(query string) ([]string, error)

	// Len returns the number of entries.
	Len() (int, error)

	// KeyAt returns the i-th key in the store's internal order, which is
	// stable between mutations. It panics unless 0 <= i < Len().
	KeyAt(i int) (string, error)

	// Entries returns every entry in unspecified order.
	Entries() ([]Entry, error)
}

// Entry is one key to value mapping.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OpCounts counts emitted commands per operation.
type OpCounts struct {
	Add     int `json:"add"`
	Get     int `json:"get"`
	Remove  int `json:"remove"`
	Reverse int `json:"reverse"`
}

// Inc increments the counter for op.
func (c *OpCounts) Inc(op Op) {
	switch op {
	case OpAdd:
		c.Add++
	case OpGet:
		c.Get++
	case OpRemove:
		c.Remove++
	case OpReverse:
		c.Reverse++
	}
}

// Total returns the sum of all counters.
func (c OpCounts) Total() int {
	return c.Add + c.Get + c.Remove + c.Reverse
}

// RunSummary describes one completed generator run.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Iterations int
	Profile    string
	Seed       uint64
	Counts     OpCounts
	FinalSize  int
}

// RunRecorder is implemented by backends that archive run summaries.
type RunRecorder interface {
	RecordRun(run RunSummary) (string, error)
	Runs() ([]RunSummary, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Startup errors.
var (
	ErrIterationsInvalid = errors.New("iteration count must be a non-negative integer")
)
