// Package cli implements the tracegen command-line interface: the root
// command generates a trace, subcommands verify traces, list archived runs,
// and write the default configuration.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracegen/internal/config"
	"github.com/mesh-intelligence/tracegen/internal/paths"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
}

// NewRootCmd creates the top-level "tracegen" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	var gen generateFlags

	root := &cobra.Command{
		Use:   "tracegen <iterations>",
		Short: "Generate randomized command traces for a prefix-forwarding store",
		Long: `tracegen writes <iterations> random ADD, GET, REMOVE and REVERSE commands
to stdout, each with the result a correct prefix-forwarding store must
produce. Progress goes to stderr.`,
		Args: iterationsArg,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, &flags, &gen, args)
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	config.RegisterFlags(root.PersistentFlags())

	root.Flags().BoolVar(&gen.stats, "stats", false, "print per-operation counts to stderr after the run")
	root.Flags().StringVar(&gen.snapshot, "snapshot", "", "write the final shadow store as JSONL to this path")

	// Flag parse errors are user errors for every subcommand.
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(&flags))
	root.AddCommand(newVerifyCmd(&flags))
	root.AddCommand(newRunsCmd(&flags))

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		return exitCode(err)
	}
	return exitSuccess
}

// userErrors are caused by arguments, configuration or trace input rather
// than by the system.
var userErrors = []error{
	types.ErrIterationsInvalid,
	types.ErrProfileUnknown,
	types.ErrBackendUnknown,
	types.ErrBackendEmpty,
	types.ErrSizeRange,
	types.ErrProbability,
	types.ErrWeight,
	types.ErrSelectionUnknown,
	types.ErrProgressEvery,
	types.ErrAlphabetEmpty,
	types.ErrAlphabetSymbol,
	types.ErrAlphabetDuplicate,
	types.ErrTraceSyntax,
	types.ErrTraceMismatch,
	errLogLevel,
	errUsage,
	context.Canceled,
}

func exitCode(err error) int {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

// iterationsArg requires exactly one non-negative integer argument.
func iterationsArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected 1 argument, got %d", types.ErrIterationsInvalid, len(args))
	}
	_, err := parseIterations(args[0])
	return err
}

func parseIterations(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil || n > uint64(maxInt) {
		return 0, fmt.Errorf("%w: %q", types.ErrIterationsInvalid, s)
	}
	return int(n), nil
}

const maxInt = int(^uint(0) >> 1)

var (
	errLogLevel = errors.New("invalid log level")
	errUsage    = errors.New("usage")
)

// newLogger returns a text logger on w at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: %q", errLogLevel, level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// loadConfig resolves the config directory and loads the configuration
// with the command's flags layered on top.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (types.Config, *slog.Logger, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, nil, fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := config.Load(configDir, cmd.Flags())
	if err != nil {
		return types.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return types.Config{}, nil, err
	}
	logger.Debug("config loaded", "dir", configDir, "profile", cfg.Profile, "backend", cfg.Backend)
	return cfg, logger, nil
}
