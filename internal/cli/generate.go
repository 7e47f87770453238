package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracegen/internal/random"
	"github.com/mesh-intelligence/tracegen/internal/snapshot"
	"github.com/mesh-intelligence/tracegen/internal/trace"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

type generateFlags struct {
	stats    bool
	snapshot string
}

func runGenerate(cmd *cobra.Command, flags *rootFlags, gen *generateFlags, args []string) (err error) {
	iterations, err := parseIterations(args[0])
	if err != nil {
		return err
	}
	cfg, logger, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()

	driver, err := trace.NewDriver(cfg, store, random.NewSource(cfg.Seed), cmd.OutOrStdout(), trace.WithLogger(logger))
	if err != nil {
		return err
	}
	summary, err := driver.Run(cmd.Context(), iterations)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if recorder, ok := store.(types.RunRecorder); ok {
		id, err := recorder.RecordRun(summary)
		if err != nil {
			return err
		}
		logger.Info("run archived", "run_id", id, "data_dir", cfg.DataDir)
	}

	if gen.snapshot != "" {
		entries, err := store.Entries()
		if err != nil {
			return err
		}
		alpha, err := types.NewAlphabet(cfg.Alphabet)
		if err != nil {
			return err
		}
		if err := snapshot.Write(gen.snapshot, entries, alpha); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		logger.Debug("snapshot written", "path", gen.snapshot, "entries", len(entries))
	}

	if gen.stats {
		return renderStats(cmd.ErrOrStderr(), summary)
	}
	return nil
}
