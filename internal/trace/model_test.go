package trace

import (
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tracegen/internal/random"
	"github.com/mesh-intelligence/tracegen/internal/shadow"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

var fullAlphabet = types.MustAlphabet(types.FullSymbols)

func TestModel_Scenario(t *testing.T) {
	store := shadow.New()
	m := NewModel(store, fullAlphabet, false)

	cmd, err := m.Add("12", "34")
	require.NoError(t, err)
	assert.Equal(t, "ADD 12 34", cmd.String())
	entries, err := store.Entries()
	require.NoError(t, err)
	assert.Equal(t, []types.Entry{{Key: "12", Value: "34"}}, entries)

	cmd, err = m.Get("125")
	require.NoError(t, err)
	assert.Equal(t, "GET 125 345", cmd.String())

	cmd, err = m.Remove("1")
	require.NoError(t, err)
	assert.Equal(t, "REMOVE 1", cmd.String())
	n, err := store.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestModel_AddSelfMappingPolicy(t *testing.T) {
	tests := []struct {
		name    string
		allow   bool
		wantLen int
	}{
		{name: "forbidden", allow: false, wantLen: 0},
		{name: "allowed", allow: true, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := shadow.New()
			m := NewModel(store, fullAlphabet, tt.allow)

			cmd, err := m.Add("7*", "7*")
			require.NoError(t, err)
			assert.Equal(t, "ADD 7* 7*", cmd.String())

			n, err := store.Len()
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, n)
		})
	}
}

func TestModel_SelfMappingLeavesExistingEntry(t *testing.T) {
	store := shadow.New()
	m := NewModel(store, fullAlphabet, false)

	_, err := m.Add("12", "34")
	require.NoError(t, err)
	_, err = m.Add("12", "12")
	require.NoError(t, err)

	cmd, err := m.Get("12")
	require.NoError(t, err)
	assert.Equal(t, "GET 12 34", cmd.String())
}

func TestModel_Reverse(t *testing.T) {
	store := shadow.New()
	m := NewModel(store, fullAlphabet, false)
	for _, e := range [][2]string{{"#", "34"}, {"12", "34"}, {"*", "345"}, {"5", "3"}} {
		_, err := m.Add(e[0], e[1])
		require.NoError(t, err)
	}

	cmd, err := m.Reverse("3456")
	require.NoError(t, err)

	want := types.Command{
		Op:         types.OpReverse,
		Args:       []string{"3456"},
		Candidates: []string{"1256", "3456", "*6", "#56"},
	}
	if diff := cmp.Diff(want, cmd); diff != "" {
		t.Errorf("Reverse mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_ReverseEmptyStore(t *testing.T) {
	m := NewModel(shadow.New(), fullAlphabet, false)

	cmd, err := m.Reverse("9")
	require.NoError(t, err)
	assert.Equal(t, []string{"REVERSE 9", "GETREVERSE 9", "REVERSE_END"}, cmd.Lines())
}

// randomModel fills a store through the model with n random adds.
func randomModel(t *testing.T, src random.Source, seq *random.Sequencer, n int) *Model {
	t.Helper()
	m := NewModel(shadow.New(), seq.Alphabet(), false)
	for range n {
		_, err := m.Add(seq.Next(src), seq.Next(src))
		require.NoError(t, err)
	}
	return m
}

func TestModel_Properties(t *testing.T) {
	src := random.NewSource(2026)
	// Short sequences over few symbols so prefixes collide often.
	seq := random.NewSequencer(types.MustAlphabet("01*"), 1, 4)

	for round := range 50 {
		m := randomModel(t, src, seq, 40)

		t.Run("reverse is complete, ordered and unique", func(t *testing.T) {
			query := seq.Next(src)
			cmd, err := m.Reverse(query)
			require.NoError(t, err)
			assert.Contains(t, cmd.Candidates, query)
			for i := 1; i < len(cmd.Candidates); i++ {
				require.Negative(t, m.Alphabet().Compare(cmd.Candidates[i-1], cmd.Candidates[i]),
					"round %d: %v not strictly ascending", round, cmd.Candidates)
			}
		})

		t.Run("reverse candidates map back through get", func(t *testing.T) {
			query := seq.Next(src)
			cmd, err := m.Reverse(query)
			require.NoError(t, err)
			entries, err := m.Store().Entries()
			require.NoError(t, err)
			for _, cand := range cmd.Candidates {
				if cand == query {
					continue
				}
				found := slices.ContainsFunc(entries, func(e types.Entry) bool {
					return strings.HasPrefix(cand, e.Key) && e.Value+cand[len(e.Key):] == query
				})
				assert.True(t, found, "round %d: candidate %q has no source entry", round, cand)
			}
		})

		t.Run("remove is sound", func(t *testing.T) {
			before, err := m.Store().Entries()
			require.NoError(t, err)
			target := seq.Next(src)

			_, err = m.Remove(target)
			require.NoError(t, err)

			after, err := m.Store().Entries()
			require.NoError(t, err)
			var want []types.Entry
			for _, e := range before {
				if !strings.HasPrefix(e.Key, target) {
					want = append(want, e)
				}
			}
			assert.ElementsMatch(t, want, after)
		})
	}
}

func TestModel_GetIdentityFallback(t *testing.T) {
	src := random.NewSource(11)
	seq := random.NewSequencer(fullAlphabet, 2, 20)
	m := randomModel(t, src, seq, 200)
	entries, err := m.Store().Entries()
	require.NoError(t, err)

	for range 500 {
		query := seq.Next(src)
		prefixed := slices.ContainsFunc(entries, func(e types.Entry) bool {
			return strings.HasPrefix(query, e.Key)
		})
		cmd, err := m.Get(query)
		require.NoError(t, err)
		if !prefixed {
			assert.Equal(t, query, cmd.Args[1])
		}
	}
}

func TestModel_GetPreservesLengthForFixedLengthProfile(t *testing.T) {
	cfg, err := types.ProfileConfig(types.ProfileDigits)
	require.NoError(t, err)
	alpha := types.MustAlphabet(cfg.Alphabet)
	src := random.NewSource(5)
	seq := random.NewSequencer(alpha, cfg.MinSize, cfg.MaxSize)
	m := randomModel(t, src, seq, 6)

	for range 200 {
		cmd, err := m.Get(seq.Next(src))
		require.NoError(t, err)
		assert.Len(t, cmd.Args[1], len(cmd.Args[0]))
	}
}
