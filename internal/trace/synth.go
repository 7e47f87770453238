package trace

import (
	"fmt"

	"github.com/mesh-intelligence/tracegen/internal/random"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// Synthesizer draws operands from a random source and runs them through a
// Model. Each method consumes randomness in a fixed order so a seeded run
// replays exactly.
type Synthesizer struct {
	model          *Model
	seq            *random.Sequencer
	removeExisting float64
}

// NewSynthesizer returns a Synthesizer for cfg over store. cfg must be
// valid.
func NewSynthesizer(cfg types.Config, store types.ShadowStore) (*Synthesizer, error) {
	alpha, err := types.NewAlphabet(cfg.Alphabet)
	if err != nil {
		return nil, err
	}
	return &Synthesizer{
		model:          NewModel(store, alpha, cfg.AllowSelfMapping),
		seq:            random.NewSequencer(alpha, cfg.MinSize, cfg.MaxSize),
		removeExisting: cfg.RemoveExisting,
	}, nil
}

// Model returns the synthesizer's model.
func (s *Synthesizer) Model() *Model { return s.model }

// Synthesize runs the synthesizer for op.
func (s *Synthesizer) Synthesize(src random.Source, op types.Op) (types.Command, error) {
	switch op {
	case types.OpAdd:
		return s.Add(src)
	case types.OpGet:
		return s.Get(src)
	case types.OpRemove:
		return s.Remove(src)
	case types.OpReverse:
		return s.Reverse(src)
	}
	panic(fmt.Sprintf("trace: unknown op %q", op))
}

// Add draws the key, then the value.
func (s *Synthesizer) Add(src random.Source) (types.Command, error) {
	key := s.seq.Next(src)
	value := s.seq.Next(src)
	return s.model.Add(key, value)
}

// Get draws a query.
func (s *Synthesizer) Get(src random.Source) (types.Command, error) {
	return s.model.Get(s.seq.Next(src))
}

// Remove draws the existing-key trial first. On success with a non-empty
// store it draws the index of the key to remove; otherwise it draws a
// fresh sequence.
func (s *Synthesizer) Remove(src random.Source) (types.Command, error) {
	target, err := s.removeTarget(src)
	if err != nil {
		return types.Command{}, err
	}
	return s.model.Remove(target)
}

func (s *Synthesizer) removeTarget(src random.Source) (string, error) {
	existing := random.Bool(src, s.removeExisting)
	if existing {
		n, err := s.model.store.Len()
		if err != nil {
			return "", fmt.Errorf("remove: %w", err)
		}
		if n > 0 {
			return s.model.store.KeyAt(src.IntN(n))
		}
	}
	return s.seq.Next(src), nil
}

// Reverse draws a query.
func (s *Synthesizer) Reverse(src random.Source) (types.Command, error) {
	return s.model.Reverse(s.seq.Next(src))
}
