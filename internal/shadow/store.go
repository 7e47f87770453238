// Package shadow implements the in-memory ShadowStore: a key to value map
// with a value index, answering longest-prefix, prefix-removal and reverse
// queries the way the trie under test is expected to.
package shadow

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// Store is the in-memory ShadowStore. It is not safe for concurrent use.
type Store struct {
	values  map[string]string
	keys    []string       // insertion order, survivors keep relative order
	index   map[string]int // key -> position in keys
	byValue map[string]map[string]struct{}
}

var _ types.ShadowStore = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		values:  make(map[string]string),
		index:   make(map[string]int),
		byValue: make(map[string]map[string]struct{}),
	}
}

// Put inserts or overwrites the value for key.
func (s *Store) Put(key, value string) error {
	if old, ok := s.values[key]; ok {
		s.unindexValue(old, key)
	} else {
		s.index[key] = len(s.keys)
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	set, ok := s.byValue[value]
	if !ok {
		set = make(map[string]struct{})
		s.byValue[value] = set
	}
	set[key] = struct{}{}
	return nil
}

// Lookup returns the longest-prefix answer for query.
func (s *Store) Lookup(query string) (string, error) {
	matched := 0
	var value string
	found := false
	for l := 1; l <= len(query); l++ {
		if v, ok := s.values[query[:l]]; ok {
			value, matched, found = v, l, true
		}
	}
	if !found {
		return query, nil
	}
	return value + query[matched:], nil
}

// RemovePrefix deletes every entry whose key starts with prefix.
func (s *Store) RemovePrefix(prefix string) (int, error) {
	removed := 0
	kept := s.keys[:0]
	for _, k := range s.keys {
		if strings.HasPrefix(k, prefix) {
			s.unindexValue(s.values[k], k)
			delete(s.values, k)
			delete(s.index, k)
			removed++
			continue
		}
		s.index[k] = len(kept)
		kept = append(kept, k)
	}
	clear(s.keys[len(kept):])
	s.keys = kept
	return removed, nil
}

// Reverse returns the reconstructed candidate keys for query.
func (s *Store) Reverse(query string) ([]string, error) {
	if query == "" {
		panic("shadow: reverse of empty query")
	}
	seen := make(map[string]struct{})
	var out []string
	for l := 2; l <= len(query); l++ {
		for k := range s.byValue[query[:l]] {
			cand := k + query[l:]
			if _, dup := seen[cand]; dup {
				continue
			}
			seen[cand] = struct{}{}
			out = append(out, cand)
		}
	}
	return out, nil
}

// Len returns the number of entries.
func (s *Store) Len() (int, error) {
	return len(s.keys), nil
}

// KeyAt returns the i-th key in insertion order.
func (s *Store) KeyAt(i int) (string, error) {
	if i < 0 || i >= len(s.keys) {
		panic(fmt.Sprintf("shadow: key index %d outside store of size %d", i, len(s.keys)))
	}
	return s.keys[i], nil
}

// Entries returns every entry in insertion order.
func (s *Store) Entries() ([]types.Entry, error) {
	out := make([]types.Entry, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, types.Entry{Key: k, Value: s.values[k]})
	}
	return out, nil
}

func (s *Store) unindexValue(value, key string) {
	set := s.byValue[value]
	delete(set, key)
	if len(set) == 0 {
		delete(s.byValue, value)
	}
}
