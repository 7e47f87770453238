// Package shadowtest holds the behavior every ShadowStore backend must share.
package shadowtest

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) types.ShadowStore

// Run exercises store semantics against newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("lookup falls back to identity", func(t *testing.T) {
		s := newStore(t)
		mustPut(t, s, "99", "11")

		got, err := s.Lookup("1234")
		require.NoError(t, err)
		assert.Equal(t, "1234", got)
	})

	t.Run("lookup inherits longest prefix", func(t *testing.T) {
		s := newStore(t)
		mustPut(t, s, "1", "7")
		mustPut(t, s, "12", "34")
		mustPut(t, s, "1259", "0")

		got, err := s.Lookup("125")
		require.NoError(t, err)
		assert.Equal(t, "345", got)

		got, err = s.Lookup("1*")
		require.NoError(t, err)
		assert.Equal(t, "7*", got)

		got, err = s.Lookup("12590")
		require.NoError(t, err)
		assert.Equal(t, "00", got)
	})

	t.Run("lookup answer may change length", func(t *testing.T) {
		s := newStore(t)
		mustPut(t, s, "12", "3456")

		got, err := s.Lookup("129")
		require.NoError(t, err)
		assert.Equal(t, "34569", got)
	})

	t.Run("put overwrites", func(t *testing.T) {
		s := newStore(t)
		mustPut(t, s, "12", "34")
		mustPut(t, s, "12", "56")

		n, err := s.Len()
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := s.Lookup("12")
		require.NoError(t, err)
		assert.Equal(t, "56", got)

		cands, err := s.Reverse("34")
		require.NoError(t, err)
		assert.Empty(t, cands, "overwritten value must not be reversible")
	})

	t.Run("remove prefix cascades", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []string{"12", "123", "1*", "2", "21"} {
			mustPut(t, s, k, "0"+k)
		}

		removed, err := s.RemovePrefix("12")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		assert.ElementsMatch(t, []string{"1*", "2", "21"}, keys(t, s))

		for _, k := range keys(t, s) {
			assert.False(t, strings.HasPrefix(k, "12"), "key %q survived removal", k)
		}
	})

	t.Run("remove of absent prefix is a no-op", func(t *testing.T) {
		s := newStore(t)
		mustPut(t, s, "12", "34")

		removed, err := s.RemovePrefix("3")
		require.NoError(t, err)
		assert.Zero(t, removed)
		assert.Equal(t, []string{"12"}, keys(t, s))
	})

	t.Run("remove of empty prefix clears store", func(t *testing.T) {
		s := newStore(t)
		mustPut(t, s, "12", "34")
		mustPut(t, s, "#", "*")

		removed, err := s.RemovePrefix("")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		assert.Empty(t, keys(t, s))
	})

	t.Run("reverse reconstructs keys", func(t *testing.T) {
		s := newStore(t)
		mustPut(t, s, "12", "34")
		mustPut(t, s, "7", "34")
		mustPut(t, s, "9", "345")
		mustPut(t, s, "5", "3")

		got, err := s.Reverse("3456")
		require.NoError(t, err)
		slices.Sort(got)
		// "5"->"3" is a single-symbol value and never compared.
		assert.Equal(t, []string{"1256", "756", "96"}, got)
	})

	t.Run("reverse collapses duplicates", func(t *testing.T) {
		s := newStore(t)
		mustPut(t, s, "1", "22")
		mustPut(t, s, "12", "222")

		got, err := s.Reverse("222")
		require.NoError(t, err)
		assert.Equal(t, []string{"12"}, got)
	})

	t.Run("key at walks every key", func(t *testing.T) {
		s := newStore(t)
		want := []string{"12", "34", "56"}
		for _, k := range want {
			mustPut(t, s, k, "0")
		}
		_, err := s.RemovePrefix("34")
		require.NoError(t, err)

		n, err := s.Len()
		require.NoError(t, err)
		require.Equal(t, 2, n)

		var got []string
		for i := range n {
			k, err := s.KeyAt(i)
			require.NoError(t, err)
			got = append(got, k)
		}
		assert.ElementsMatch(t, []string{"12", "56"}, got)
		assert.Panics(t, func() { _, _ = s.KeyAt(n) })
	})

	t.Run("scenario add get remove", func(t *testing.T) {
		s := newStore(t)
		mustPut(t, s, "12", "34")

		got, err := s.Lookup("125")
		require.NoError(t, err)
		assert.Equal(t, "345", got)

		removed, err := s.RemovePrefix("1")
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		n, err := s.Len()
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func mustPut(t *testing.T, s types.ShadowStore, key, value string) {
	t.Helper()
	require.NoError(t, s.Put(key, value))
}

func keys(t *testing.T, s types.ShadowStore) []string {
	t.Helper()
	entries, err := s.Entries()
	require.NoError(t, err)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}
