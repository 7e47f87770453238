package types

import (
	"errors"
	"fmt"
)

// Standard symbol sets. A symbol's numeral rank is its index in the set.
const (
	FullSymbols  = "0123456789*#"
	DigitSymbols = "0123456789"
)

// Alphabet validation errors.
var (
	ErrAlphabetEmpty     = errors.New("alphabet must not be empty")
	ErrAlphabetSymbol    = errors.New("alphabet symbols must be printable ASCII")
	ErrAlphabetDuplicate = errors.New("alphabet symbols must be unique")
)

// Alphabet is an ordered set of single-byte symbols. Keys, values and
// queries are strings over one Alphabet.
type Alphabet struct {
	symbols string
	ranks   [256]int16
}

// NewAlphabet builds an Alphabet from symbols, where symbols[i] has rank i.
// Symbols must be printable, non-space ASCII so trace lines stay
// whitespace-separated.
func NewAlphabet(symbols string) (*Alphabet, error) {
	if symbols == "" {
		return nil, ErrAlphabetEmpty
	}
	a := &Alphabet{symbols: symbols}
	for i := range a.ranks {
		a.ranks[i] = -1
	}
	for i := 0; i < len(symbols); i++ {
		c := symbols[i]
		if c <= ' ' || c >= 0x7f {
			return nil, fmt.Errorf("%w: %q", ErrAlphabetSymbol, c)
		}
		if a.ranks[c] >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrAlphabetDuplicate, c)
		}
		a.ranks[c] = int16(i)
	}
	return a, nil
}

// MustAlphabet is like NewAlphabet but panics on error.
func MustAlphabet(symbols string) *Alphabet {
	a, err := NewAlphabet(symbols)
	if err != nil {
		panic(err)
	}
	return a
}

// Size returns the number of symbols.
func (a *Alphabet) Size() int { return len(a.symbols) }

// Symbols returns the symbols in rank order.
func (a *Alphabet) Symbols() string { return a.symbols }

// Symbol returns the symbol with the given rank. It panics if rank is out
// of range.
func (a *Alphabet) Symbol(rank int) byte {
	if rank < 0 || rank >= len(a.symbols) {
		panic(fmt.Sprintf("types: rank %d outside alphabet of size %d", rank, len(a.symbols)))
	}
	return a.symbols[rank]
}

// Rank returns the numeral rank of c. It panics if c is not in the alphabet.
func (a *Alphabet) Rank(c byte) int {
	r := a.ranks[c]
	if r < 0 {
		panic(fmt.Sprintf("types: symbol %q not in alphabet %q", c, a.symbols))
	}
	return int(r)
}

// Contains reports whether every byte of s is a symbol of the alphabet.
func (a *Alphabet) Contains(s string) bool {
	for i := 0; i < len(s); i++ {
		if a.ranks[s[i]] < 0 {
			return false
		}
	}
	return true
}

// Compare orders strings by numeral rank. Ranks are compared position by
// position over the common length and the first difference decides; if
// there is none, the shorter string orders first. It returns -1, 0 or +1
// and can be passed to slices.SortFunc and friends.
//
// Compare panics if either string contains a symbol outside the alphabet.
func (a *Alphabet) Compare(x, y string) int {
	n := min(len(x), len(y))
	for i := 0; i < n; i++ {
		if x[i] == y[i] {
			continue
		}
		if a.Rank(x[i]) < a.Rank(y[i]) {
			return -1
		}
		return 1
	}
	switch {
	case len(x) < len(y):
		return -1
	case len(x) > len(y):
		return 1
	}
	return 0
}
