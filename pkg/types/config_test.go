package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "default full profile is valid",
			mutate:  func(c *Config) {},
			wantErr: nil,
		},
		{
			name:    "empty backend returns ErrBackendEmpty",
			mutate:  func(c *Config) { c.Backend = "" },
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			mutate:  func(c *Config) { c.Backend = "postgres" },
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "sqlite backend with empty DataDir is valid",
			mutate:  func(c *Config) { c.Backend = BackendSQLite },
			wantErr: nil,
		},
		{
			name:    "zero min size returns ErrSizeRange",
			mutate:  func(c *Config) { c.MinSize = 0 },
			wantErr: ErrSizeRange,
		},
		{
			name:    "inverted size range returns ErrSizeRange",
			mutate:  func(c *Config) { c.MinSize, c.MaxSize = 5, 4 },
			wantErr: ErrSizeRange,
		},
		{
			name:    "bad alphabet returns alphabet error",
			mutate:  func(c *Config) { c.Alphabet = "00" },
			wantErr: ErrAlphabetDuplicate,
		},
		{
			name:    "remove_existing above one returns ErrProbability",
			mutate:  func(c *Config) { c.RemoveExisting = 1.5 },
			wantErr: ErrProbability,
		},
		{
			name:    "nested probability below zero returns ErrProbability",
			mutate:  func(c *Config) { c.Selection.Get = -0.1 },
			wantErr: ErrProbability,
		},
		{
			name:    "unknown selection policy",
			mutate:  func(c *Config) { c.Selection.Policy = "roulette" },
			wantErr: ErrSelectionUnknown,
		},
		{
			name: "categorical with zero weights returns ErrWeight",
			mutate: func(c *Config) {
				c.Selection = SelectionConfig{Policy: SelectionCategorical}
			},
			wantErr: ErrWeight,
		},
		{
			name: "categorical weights need not sum to one",
			mutate: func(c *Config) {
				c.Selection = SelectionConfig{Policy: SelectionCategorical, Add: 3, Get: 1, Remove: 1, Reverse: 1}
			},
			wantErr: nil,
		},
		{
			name:    "negative progress interval",
			mutate:  func(c *Config) { c.ProgressEvery = -1 },
			wantErr: ErrProgressEvery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProfileConfig(t *testing.T) {
	full, err := ProfileConfig(ProfileFull)
	if err != nil {
		t.Fatalf("full profile: %v", err)
	}
	if full.Alphabet != FullSymbols || full.MinSize != 2 || full.MaxSize != 20 || full.AllowSelfMapping {
		t.Errorf("unexpected full profile: %+v", full)
	}

	digits, err := ProfileConfig(ProfileDigits)
	if err != nil {
		t.Fatalf("digits profile: %v", err)
	}
	if digits.Alphabet != DigitSymbols || digits.MinSize != 1 || digits.MaxSize != 1 || !digits.AllowSelfMapping {
		t.Errorf("unexpected digits profile: %+v", digits)
	}

	if _, err := ProfileConfig("hex"); !errors.Is(err, ErrProfileUnknown) {
		t.Errorf("expected ErrProfileUnknown, got %v", err)
	}
}

func TestNestedToCategorical(t *testing.T) {
	got := DefaultConfig().Selection.NestedToCategorical()

	want := []float64{0.6, 0.06, 0.136, 0.204}
	for i, w := range []float64{got.Add, got.Get, got.Remove, got.Reverse} {
		if diff := w - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("weight %d: got %v, want %v", i, w, want[i])
		}
	}
	if got.Policy != SelectionCategorical {
		t.Errorf("policy: got %q", got.Policy)
	}
}
