package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracegen/internal/config"
	"github.com/mesh-intelligence/tracegen/internal/paths"
	"github.com/mesh-intelligence/tracegen/pkg/sqlite"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

func newRunsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List runs archived by the sqlite backend",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, flags)
		},
	}
}

func runRuns(cmd *cobra.Command, flags *rootFlags) (err error) {
	cfg, _, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	// The archive only exists in the sqlite data directory.
	if cfg.Backend != types.BackendSQLite {
		flagDir, _ := cmd.Flags().GetString(config.FlagDataDir)
		if cfg.DataDir, err = paths.ResolveDataDir(flagDir, cfg.DataDir); err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.Backend = types.BackendSQLite
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return fmt.Errorf("attach sqlite backend: %w", err)
	}
	defer func() {
		if derr := backend.Detach(); derr != nil && err == nil {
			err = derr
		}
	}()

	runs, err := backend.Runs()
	if err != nil {
		return err
	}
	return renderRuns(cmd.OutOrStdout(), runs)
}
