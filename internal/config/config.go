// Package config loads the generator configuration from config.yaml,
// TRACEGEN_* environment variables and command-line flags using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tracegen/internal/paths"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "TRACEGEN"
)

// Config keys.
const (
	KeyProfile          = "profile"
	KeyAlphabet         = "alphabet"
	KeyMinSize          = "min_size"
	KeyMaxSize          = "max_size"
	KeyAllowSelfMapping = "allow_self_mapping"
	KeyRemoveExisting   = "remove_existing"
	KeySelectionPolicy  = "selection.policy"
	KeySelectionAdd     = "selection.add"
	KeySelectionGet     = "selection.get"
	KeySelectionRemove  = "selection.remove"
	KeySelectionReverse = "selection.reverse"
	KeyProgressEvery    = "progress_every"
	KeySeed             = "seed"
	KeyBackend          = "backend"
	KeyDataDir          = "data_dir"
	KeyLogLevel         = "log_level"
)

// Flag names bound to config keys. The data-dir flag is resolved through
// paths.ResolveDataDir rather than bound.
const (
	FlagProfile   = "profile"
	FlagSeed      = "seed"
	FlagBackend   = "backend"
	FlagSelection = "selection"
	FlagLogLevel  = "log-level"
	FlagProgress  = "progress-every"
	FlagDataDir   = "data-dir"
)

var flagKeys = map[string]string{
	FlagProfile:   KeyProfile,
	FlagSeed:      KeySeed,
	FlagBackend:   KeyBackend,
	FlagSelection: KeySelectionPolicy,
	FlagLogLevel:  KeyLogLevel,
	FlagProgress:  KeyProgressEvery,
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagProfile, types.ProfileFull, "generator profile: full or digits")
	fs.Uint64(FlagSeed, 0, "random seed (0 = unseeded, not reproducible)")
	fs.String(FlagBackend, types.BackendMemory, "shadow store backend: memory or sqlite")
	fs.String(FlagSelection, types.SelectionNested, "synthesizer selection: nested or categorical")
	fs.String(FlagLogLevel, "info", "log level: debug, info, warn, error")
	fs.Int(FlagProgress, types.DefaultProgressEvery, "iterations between progress reports (0 disables)")
	fs.String(FlagDataDir, "", "data directory for the sqlite backend (default: platform data dir)")
}

// Load reads config.yaml from configDir, layers environment variables and
// the flags in fs over it, and returns the validated Config. A missing
// config.yaml is not an error. fs may be nil.
func Load(configDir string, fs *pflag.FlagSet) (types.Config, error) {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return types.Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	// Profile defaults sit under everything else; the profile itself can
	// come from any layer.
	v.SetDefault(KeyProfile, types.ProfileFull)
	base, err := types.ProfileConfig(v.GetString(KeyProfile))
	if err != nil {
		return types.Config{}, err
	}
	setDefaults(v, base)

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Backend == types.BackendSQLite {
		var flagDir string
		if fs != nil {
			flagDir, _ = fs.GetString(FlagDataDir)
		}
		if cfg.DataDir, err = paths.ResolveDataDir(flagDir, cfg.DataDir); err != nil {
			return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, base types.Config) {
	v.SetDefault(KeyAlphabet, base.Alphabet)
	v.SetDefault(KeyMinSize, base.MinSize)
	v.SetDefault(KeyMaxSize, base.MaxSize)
	v.SetDefault(KeyAllowSelfMapping, base.AllowSelfMapping)
	v.SetDefault(KeyRemoveExisting, base.RemoveExisting)
	v.SetDefault(KeyProgressEvery, base.ProgressEvery)
	v.SetDefault(KeySeed, base.Seed)
	v.SetDefault(KeyBackend, base.Backend)
	v.SetDefault(KeyDataDir, base.DataDir)
	v.SetDefault(KeyLogLevel, base.LogLevel)

	v.SetDefault(KeySelectionPolicy, base.Selection.Policy)
	sel := base.Selection
	if v.GetString(KeySelectionPolicy) == types.SelectionCategorical {
		sel = sel.NestedToCategorical()
	}
	v.SetDefault(KeySelectionAdd, sel.Add)
	v.SetDefault(KeySelectionGet, sel.Get)
	v.SetDefault(KeySelectionRemove, sel.Remove)
	v.SetDefault(KeySelectionReverse, sel.Reverse)
}

// configFile holds the keys written by WriteDefault. Profile-derived keys
// (alphabet, sizes, probabilities) are left out so a later --profile still
// takes effect.
type configFile struct {
	Profile       string        `yaml:"profile"`
	Backend       string        `yaml:"backend"`
	Selection     selectionFile `yaml:"selection"`
	ProgressEvery int           `yaml:"progress_every"`
	LogLevel      string        `yaml:"log_level"`
}

type selectionFile struct {
	Policy string `yaml:"policy"`
}

// defaultHeader precedes the YAML written by WriteDefault.
const defaultHeader = `# tracegen configuration
# Flags and TRACEGEN_* environment variables override these values.
# profile: full (0-9*#, length 2..20) or digits (0-9, length 1)
# selection.policy: nested (successive trials) or categorical (one weighted draw)
# Optional: alphabet, min_size, max_size, allow_self_mapping, remove_existing,
# selection.add/get/remove/reverse, seed, data_dir

`

// WriteDefault writes config.yaml for cfg into configDir if the file does
// not exist yet. It reports the path and whether the file was created.
func WriteDefault(configDir string, cfg types.Config) (string, bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return path, false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return path, false, fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(&configFile{
		Profile:       cfg.Profile,
		Backend:       cfg.Backend,
		Selection:     selectionFile{Policy: cfg.Selection.Policy},
		ProgressEvery: cfg.ProgressEvery,
		LogLevel:      cfg.LogLevel,
	})
	if err != nil {
		return path, false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0o644); err != nil {
		return path, false, err
	}
	return path, true, nil
}
