// Package random provides the randomness handle threaded through the
// generator and the random sequence generator built on it.
package random

import (
	"fmt"
	"math/rand/v2"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// Source is the randomness handle. *rand.Rand from math/rand/v2 satisfies
// it; tests substitute a scripted source.
type Source interface {
	// IntN returns a uniform int in [0, n). It panics if n <= 0.
	IntN(n int) int
	// Float64 returns a uniform float64 in [0, 1).
	Float64() float64
}

// NewSource returns a PCG-backed source. A zero seed draws the PCG state
// from the runtime's entropy, so the run is not reproducible.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Bool returns true with probability p. It always consumes one Float64.
func Bool(src Source, p float64) bool {
	return src.Float64() < p
}

// Sequencer generates random strings over an alphabet with a length drawn
// uniformly from [min, max].
type Sequencer struct {
	alphabet *types.Alphabet
	minSize  int
	maxSize  int
}

// NewSequencer returns a Sequencer. It panics if the range is empty or
// starts below zero.
func NewSequencer(alphabet *types.Alphabet, minSize, maxSize int) *Sequencer {
	if minSize < 0 || minSize > maxSize {
		panic(fmt.Sprintf("random: invalid size range [%d, %d]", minSize, maxSize))
	}
	return &Sequencer{alphabet: alphabet, minSize: minSize, maxSize: maxSize}
}

// Alphabet returns the sequencer's alphabet.
func (s *Sequencer) Alphabet() *types.Alphabet { return s.alphabet }

// Next draws the length, then each symbol in order.
func (s *Sequencer) Next(src Source) string {
	n := s.minSize + src.IntN(s.maxSize-s.minSize+1)
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = s.alphabet.Symbol(src.IntN(s.alphabet.Size()))
	}
	return string(buf)
}
