// Package randomtest provides a scripted random.Source for tests.
package randomtest

import (
	"fmt"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// Script replays fixed sequences of ints and floats. IntN and Float64 each
// consume from their own queue and panic when it runs dry, so a test
// notices any draw it did not plan for.
type Script struct {
	Ints   []int
	Floats []float64
}

// IntN returns the next scripted int. It panics if the value is outside
// [0, n).
func (s *Script) IntN(n int) int {
	if len(s.Ints) == 0 {
		panic(fmt.Sprintf("randomtest: unscripted IntN(%d)", n))
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("randomtest: scripted %d outside [0, %d)", v, n))
	}
	return v
}

// Float64 returns the next scripted float.
func (s *Script) Float64() float64 {
	if len(s.Floats) == 0 {
		panic("randomtest: unscripted Float64")
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

// Exhausted reports whether every scripted value was consumed.
func (s *Script) Exhausted() bool {
	return len(s.Ints) == 0 && len(s.Floats) == 0
}

// Sequence appends the draws that make a Sequencer over alphabet with the
// given minimum size produce str.
func (s *Script) Sequence(alphabet *types.Alphabet, minSize int, str string) *Script {
	s.Ints = append(s.Ints, len(str)-minSize)
	for i := 0; i < len(str); i++ {
		s.Ints = append(s.Ints, alphabet.Rank(str[i]))
	}
	return s
}

// String describes the remaining script.
func (s *Script) String() string {
	return fmt.Sprintf("ints=%v floats=%v", s.Ints, s.Floats)
}
