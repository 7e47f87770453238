package cli

import (
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracegen/internal/snapshot"
	"github.com/mesh-intelligence/tracegen/internal/trace"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

func newVerifyCmd(flags *rootFlags) *cobra.Command {
	var snapshotPath string
	cmd := &cobra.Command{
		Use:   "verify [trace-file]",
		Short: "Replay a trace and check every recorded result",
		Long: `Replay a trace (from the file, or stdin when omitted) against a fresh shadow
store and stop at the first GET answer or REVERSE block that disagrees.
Profile and policy flags must match the run that produced the trace.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, flags, snapshotPath, args)
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "also compare the final store against this JSONL snapshot")
	return cmd
}

func runVerify(cmd *cobra.Command, flags *rootFlags, snapshotPath string, args []string) (err error) {
	cfg, logger, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	alpha, err := types.NewAlphabet(cfg.Alphabet)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
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

	counts, err := trace.Verify(cmd.Context(), in, trace.NewModel(store, alpha, cfg.AllowSelfMapping))
	if err != nil {
		return err
	}
	logger.Debug("trace replayed", "commands", counts.Total())

	if snapshotPath != "" {
		if err := compareSnapshot(store, alpha, snapshotPath); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d commands (add=%d get=%d remove=%d reverse=%d)\n",
		counts.Total(), counts.Add, counts.Get, counts.Remove, counts.Reverse)
	return nil
}

// compareSnapshot checks that store holds exactly the entries in the
// snapshot file. Snapshot entries must be non-empty strings over alpha.
func compareSnapshot(store types.ShadowStore, alpha *types.Alphabet, path string) error {
	entries, err := snapshot.Read(path)
	if err != nil {
		return err
	}
	want := make(map[string]string, len(entries))
	for i, e := range entries {
		if e.Key == "" || e.Value == "" || !alpha.Contains(e.Key) || !alpha.Contains(e.Value) {
			return fmt.Errorf("%w: snapshot %s entry %d: %q -> %q outside alphabet %q",
				types.ErrTraceSyntax, path, i+1, e.Key, e.Value, alpha.Symbols())
		}
		if _, dup := want[e.Key]; dup {
			return fmt.Errorf("%w: snapshot %s entry %d: duplicate key %q",
				types.ErrTraceSyntax, path, i+1, e.Key)
		}
		want[e.Key] = e.Value
	}

	got, err := store.Entries()
	if err != nil {
		return err
	}
	have := make(map[string]string, len(got))
	for _, e := range got {
		have[e.Key] = e.Value
	}
	if !maps.Equal(want, have) {
		return fmt.Errorf("%w: final store has %d entries, snapshot %s has %d or differs in content",
			types.ErrTraceMismatch, len(have), path, len(want))
	}
	return nil
}
