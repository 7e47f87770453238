package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tracegen/internal/random/randomtest"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

func TestSequencer_NextScripted(t *testing.T) {
	alpha := types.MustAlphabet(types.FullSymbols)
	seq := NewSequencer(alpha, 2, 20)

	src := (&randomtest.Script{}).Sequence(alpha, 2, "1*#")
	assert.Equal(t, "1*#", seq.Next(src))
	assert.True(t, src.Exhausted())
}

func TestSequencer_NextBounds(t *testing.T) {
	tests := []struct {
		name     string
		symbols  string
		min, max int
	}{
		{name: "full variable length", symbols: types.FullSymbols, min: 2, max: 20},
		{name: "digits fixed length", symbols: types.DigitSymbols, min: 1, max: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alpha := types.MustAlphabet(tt.symbols)
			seq := NewSequencer(alpha, tt.min, tt.max)
			src := NewSource(42)

			seen := map[byte]bool{}
			for range 2000 {
				s := seq.Next(src)
				require.GreaterOrEqual(t, len(s), tt.min)
				require.LessOrEqual(t, len(s), tt.max)
				require.True(t, alpha.Contains(s), "sequence %q outside alphabet", s)
				for i := 0; i < len(s); i++ {
					seen[s[i]] = true
				}
			}
			assert.Len(t, seen, alpha.Size())
		})
	}
}

func TestNewSequencer_InvalidRange(t *testing.T) {
	alpha := types.MustAlphabet(types.DigitSymbols)
	assert.Panics(t, func() { NewSequencer(alpha, 3, 2) })
	assert.Panics(t, func() { NewSequencer(alpha, -1, 2) })
}

func TestNewSource_SeedIsReproducible(t *testing.T) {
	a, b := NewSource(7), NewSource(7)
	for range 100 {
		require.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestBool(t *testing.T) {
	src := &randomtest.Script{Floats: []float64{0.59, 0.6, 0.0, 0.99}}
	assert.True(t, Bool(src, 0.6))
	assert.False(t, Bool(src, 0.6))
	assert.False(t, Bool(src, 0))
	assert.True(t, Bool(src, 1))
}
