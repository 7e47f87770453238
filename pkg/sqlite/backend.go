// Package sqlite provides the public API for the SQLite shadow-store
// backend. This package exposes the factory function for creating SQLite
// backends while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/tracegen/internal/sqlite"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// Backend is a shadow store kept in a SQLite database that also archives
// run summaries.
type Backend interface {
	types.ShadowStore
	types.RunRecorder

	// Attach opens the database described by config and empties the
	// entries table.
	Attach(config types.Config) error
	// Detach closes the database. It is idempotent.
	Detach() error
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	cfg := types.DefaultConfig()
//	cfg.Backend = types.BackendSQLite
//	cfg.DataDir = ".tracegen"
//	err := backend.Attach(cfg)
//	defer backend.Detach()
func NewBackend() Backend {
	return sqlite.NewBackend()
}
