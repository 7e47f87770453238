package cli

import (
	"fmt"

	"github.com/mesh-intelligence/tracegen/internal/shadow"
	"github.com/mesh-intelligence/tracegen/pkg/sqlite"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// openStore creates the shadow store selected by cfg.Backend. The caller
// must call the returned close function.
func openStore(cfg types.Config) (types.ShadowStore, func() error, error) {
	switch cfg.Backend {
	case types.BackendMemory:
		return shadow.New(), func() error { return nil }, nil
	case types.BackendSQLite:
		backend := sqlite.NewBackend()
		if err := backend.Attach(cfg); err != nil {
			return nil, nil, fmt.Errorf("attach sqlite backend: %w", err)
		}
		return backend, backend.Detach, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
}
