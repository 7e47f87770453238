package trace

import (
	"fmt"

	"github.com/mesh-intelligence/tracegen/internal/random"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// Selector picks the synthesizer for one iteration.
type Selector interface {
	Next(src random.Source) types.Op
}

// NestedSelector runs successive Bernoulli trials: Add with probability
// Add, else Get with probability Get, else Remove with probability Remove,
// else Reverse. It draws between one and three floats.
type NestedSelector struct {
	Add, Get, Remove float64
}

// Next implements Selector.
func (n NestedSelector) Next(src random.Source) types.Op {
	switch {
	case random.Bool(src, n.Add):
		return types.OpAdd
	case random.Bool(src, n.Get):
		return types.OpGet
	case random.Bool(src, n.Remove):
		return types.OpRemove
	}
	return types.OpReverse
}

// CategoricalSelector makes one cumulative-weight draw over the four
// operations. It always draws exactly one float.
type CategoricalSelector struct {
	cumulative [4]float64
}

// NewCategoricalSelector returns a selector for non-negative weights with a
// positive sum, in types.Ops order.
func NewCategoricalSelector(add, get, remove, reverse float64) *CategoricalSelector {
	var c CategoricalSelector
	var sum float64
	for i, w := range []float64{add, get, remove, reverse} {
		sum += w
		c.cumulative[i] = sum
	}
	for i := range c.cumulative {
		c.cumulative[i] /= sum
	}
	return &c
}

// Next implements Selector.
func (c *CategoricalSelector) Next(src random.Source) types.Op {
	u := src.Float64()
	for i, edge := range c.cumulative {
		if u < edge {
			return types.Ops[i]
		}
	}
	// Rounding can leave the last edge a hair below 1.
	for i := len(c.cumulative) - 1; i >= 0; i-- {
		if i == 0 || c.cumulative[i] > c.cumulative[i-1] {
			return types.Ops[i]
		}
	}
	return types.Ops[len(types.Ops)-1]
}

// NewSelector builds the selector for a validated selection config.
func NewSelector(cfg types.SelectionConfig) (Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Policy {
	case types.SelectionNested:
		return NestedSelector{Add: cfg.Add, Get: cfg.Get, Remove: cfg.Remove}, nil
	case types.SelectionCategorical:
		return NewCategoricalSelector(cfg.Add, cfg.Get, cfg.Remove, cfg.Reverse), nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrSelectionUnknown, cfg.Policy)
}
