package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracegen/internal/config"
	"github.com/mesh-intelligence/tracegen/internal/paths"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		Long: `Create the configuration directory and write config.yaml with the effective
profile, backend and selection policy. An existing config.yaml is left alone.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := config.Load(configDir, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path, created, err := config.WriteDefault(configDir, cfg)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if created {
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Config already exists:", path)
	}
	return nil
}
