package types

import (
	"errors"
	"fmt"
)

// Config holds the generator parameters: the symbol model, the synthesizer
// policies, synthesizer selection, and the shadow-store backend.
type Config struct {
	Profile          string          `mapstructure:"profile" yaml:"profile"`
	Alphabet         string          `mapstructure:"alphabet" yaml:"alphabet"`
	MinSize          int             `mapstructure:"min_size" yaml:"min_size"`
	MaxSize          int             `mapstructure:"max_size" yaml:"max_size"`
	AllowSelfMapping bool            `mapstructure:"allow_self_mapping" yaml:"allow_self_mapping"`
	RemoveExisting   float64         `mapstructure:"remove_existing" yaml:"remove_existing"`
	Selection        SelectionConfig `mapstructure:"selection" yaml:"selection"`
	ProgressEvery    int             `mapstructure:"progress_every" yaml:"progress_every"`
	Seed             uint64          `mapstructure:"seed" yaml:"seed"`
	Backend          string          `mapstructure:"backend" yaml:"backend"`
	DataDir          string          `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	LogLevel         string          `mapstructure:"log_level" yaml:"log_level"`
}

// SelectionConfig chooses how the driver picks a synthesizer each iteration.
// Under SelectionNested, Add, Get and Remove are the probabilities of the
// successive Bernoulli trials and Reverse is ignored. Under
// SelectionCategorical all four are relative weights of a single draw.
type SelectionConfig struct {
	Policy  string  `mapstructure:"policy" yaml:"policy"`
	Add     float64 `mapstructure:"add" yaml:"add"`
	Get     float64 `mapstructure:"get" yaml:"get"`
	Remove  float64 `mapstructure:"remove" yaml:"remove"`
	Reverse float64 `mapstructure:"reverse" yaml:"reverse"`
}

// Profile names.
const (
	ProfileFull   = "full"
	ProfileDigits = "digits"
)

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Selection policy names.
const (
	SelectionNested      = "nested"
	SelectionCategorical = "categorical"
)

// DefaultProgressEvery is the progress reporting interval in iterations.
const DefaultProgressEvery = 10000

// Config validation errors.
var (
	ErrProfileUnknown   = errors.New("unknown profile")
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrSizeRange        = errors.New("size range must satisfy 1 <= min_size <= max_size")
	ErrProbability      = errors.New("probability must be within [0, 1]")
	ErrWeight           = errors.New("selection weights must be non-negative with a positive sum")
	ErrSelectionUnknown = errors.New("unknown selection policy")
	ErrProgressEvery    = errors.New("progress_every must not be negative")
)

var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
}

// ProfileConfig returns the defaults for the named profile. The full profile
// draws 2..20 symbols from the 12-symbol alphabet and forbids self-mapped
// entries; the digits profile draws single digits and allows them.
func ProfileConfig(name string) (Config, error) {
	cfg := Config{
		Profile:        name,
		RemoveExisting: 0.7,
		Selection: SelectionConfig{
			Policy:  SelectionNested,
			Add:     0.6,
			Get:     0.15,
			Remove:  0.4,
			Reverse: 0,
		},
		ProgressEvery: DefaultProgressEvery,
		Backend:       BackendMemory,
		LogLevel:      "info",
	}
	switch name {
	case ProfileFull:
		cfg.Alphabet = FullSymbols
		cfg.MinSize = 2
		cfg.MaxSize = 20
	case ProfileDigits:
		cfg.Alphabet = DigitSymbols
		cfg.MinSize = 1
		cfg.MaxSize = 1
		cfg.AllowSelfMapping = true
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrProfileUnknown, name)
	}
	return cfg, nil
}

// DefaultConfig returns the full profile.
func DefaultConfig() Config {
	cfg, _ := ProfileConfig(ProfileFull)
	return cfg
}

// NestedToCategorical returns categorical weights with the same distribution
// as the nested trials in s.
func (s SelectionConfig) NestedToCategorical() SelectionConfig {
	restAdd := 1 - s.Add
	restGet := restAdd * (1 - s.Get)
	return SelectionConfig{
		Policy:  SelectionCategorical,
		Add:     s.Add,
		Get:     restAdd * s.Get,
		Remove:  restGet * s.Remove,
		Reverse: restGet * (1 - s.Remove),
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if _, err := NewAlphabet(c.Alphabet); err != nil {
		return err
	}
	if c.MinSize < 1 || c.MinSize > c.MaxSize {
		return fmt.Errorf("%w: got [%d, %d]", ErrSizeRange, c.MinSize, c.MaxSize)
	}
	if !validProbability(c.RemoveExisting) {
		return fmt.Errorf("%w: remove_existing=%v", ErrProbability, c.RemoveExisting)
	}
	if err := c.Selection.Validate(); err != nil {
		return err
	}
	if c.ProgressEvery < 0 {
		return ErrProgressEvery
	}
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	return nil
}

// Validate checks the selection policy and its parameters.
func (s SelectionConfig) Validate() error {
	switch s.Policy {
	case SelectionNested:
		for _, p := range []float64{s.Add, s.Get, s.Remove} {
			if !validProbability(p) {
				return fmt.Errorf("%w: selection %v", ErrProbability, p)
			}
		}
	case SelectionCategorical:
		weights := []float64{s.Add, s.Get, s.Remove, s.Reverse}
		var sum float64
		for _, w := range weights {
			if w < 0 {
				return ErrWeight
			}
			sum += w
		}
		if sum <= 0 {
			return ErrWeight
		}
	default:
		return fmt.Errorf("%w: %q", ErrSelectionUnknown, s.Policy)
	}
	return nil
}

func validProbability(p float64) bool {
	return p >= 0 && p <= 1
}
