// Package trace synthesizes ADD, GET, REMOVE and REVERSE commands with their
// expected results, drives a generation run, and replays traces against the
// same model to verify them.
package trace

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// Model applies operations to a ShadowStore and renders the commands the
// trie under test must agree with. It draws no randomness.
type Model struct {
	store            types.ShadowStore
	alphabet         *types.Alphabet
	allowSelfMapping bool
}

// NewModel returns a Model over store.
func NewModel(store types.ShadowStore, alphabet *types.Alphabet, allowSelfMapping bool) *Model {
	return &Model{store: store, alphabet: alphabet, allowSelfMapping: allowSelfMapping}
}

// Store returns the underlying store.
func (m *Model) Store() types.ShadowStore { return m.store }

// Alphabet returns the model's alphabet.
func (m *Model) Alphabet() *types.Alphabet { return m.alphabet }

// Add maps key to value unless self-mapping is forbidden and key == value.
// The command is emitted either way.
func (m *Model) Add(key, value string) (types.Command, error) {
	cmd := types.Command{Op: types.OpAdd, Args: []string{key, value}}
	if key == value && !m.allowSelfMapping {
		return cmd, nil
	}
	if err := m.store.Put(key, value); err != nil {
		return types.Command{}, fmt.Errorf("add: %w", err)
	}
	return cmd, nil
}

// Get computes the longest-prefix answer for query.
func (m *Model) Get(query string) (types.Command, error) {
	answer, err := m.store.Lookup(query)
	if err != nil {
		return types.Command{}, fmt.Errorf("get: %w", err)
	}
	return types.Command{Op: types.OpGet, Args: []string{query, answer}}, nil
}

// Remove deletes every key with target as a prefix.
func (m *Model) Remove(target string) (types.Command, error) {
	if _, err := m.store.RemovePrefix(target); err != nil {
		return types.Command{}, fmt.Errorf("remove: %w", err)
	}
	return types.Command{Op: types.OpRemove, Args: []string{target}}, nil
}

// Reverse collects the candidate keys for query, adds query itself, and
// orders them by numeral rank without duplicates.
func (m *Model) Reverse(query string) (types.Command, error) {
	cands, err := m.store.Reverse(query)
	if err != nil {
		return types.Command{}, fmt.Errorf("reverse: %w", err)
	}
	cands = append(cands, query)
	slices.SortFunc(cands, m.alphabet.Compare)
	cands = slices.Compact(cands)
	return types.Command{Op: types.OpReverse, Args: []string{query}, Candidates: cands}, nil
}
