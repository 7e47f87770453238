package trace

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tracegen/internal/random"
	"github.com/mesh-intelligence/tracegen/internal/random/randomtest"
	"github.com/mesh-intelligence/tracegen/internal/shadow"
	"github.com/mesh-intelligence/tracegen/internal/sqlite"
	"github.com/mesh-intelligence/tracegen/internal/testutil"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// opsSelector replays a fixed list of operations.
type opsSelector []types.Op

func (s *opsSelector) Next(random.Source) types.Op {
	op := (*s)[0]
	*s = (*s)[1:]
	return op
}

func TestDriver_ScriptedScenario(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.MinSize, cfg.MaxSize = 1, 3

	src := (&randomtest.Script{}).
		Sequence(fullAlphabet, 1, "12").
		Sequence(fullAlphabet, 1, "34").
		Sequence(fullAlphabet, 1, "125")
	src.Floats = append(src.Floats, 0.9)
	src.Sequence(fullAlphabet, 1, "1").Sequence(fullAlphabet, 1, "34")

	sel := opsSelector{types.OpAdd, types.OpGet, types.OpRemove, types.OpReverse}
	var out bytes.Buffer
	d, err := NewDriver(cfg, shadow.New(), src, &out, WithSelector(&sel), WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)

	summary, err := d.Run(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, src.Exhausted(), "unconsumed draws: %s", src)

	assert.Equal(t, strings.Join([]string{
		"ADD 12 34",
		"GET 125 345",
		"REMOVE 1",
		"REVERSE 34",
		"GETREVERSE 34",
		"REVERSE_END",
		"",
	}, "\n"), out.String())
	assert.Equal(t, types.OpCounts{Add: 1, Get: 1, Remove: 1, Reverse: 1}, summary.Counts)
	assert.Zero(t, summary.FinalSize)
	assert.Equal(t, 4, summary.Iterations)
}

func runSeeded(t *testing.T, cfg types.Config, store types.ShadowStore, iterations int) (string, types.RunSummary) {
	t.Helper()
	var out bytes.Buffer
	d, err := NewDriver(cfg, store, random.NewSource(cfg.Seed), &out)
	require.NoError(t, err)
	summary, err := d.Run(context.Background(), iterations)
	require.NoError(t, err)
	return out.String(), summary
}

func TestDriver_GeneratedTraceVerifies(t *testing.T) {
	categorical := types.DefaultConfig()
	categorical.Selection = categorical.Selection.NestedToCategorical()
	digits, err := types.ProfileConfig(types.ProfileDigits)
	require.NoError(t, err)

	tests := []struct {
		name string
		cfg  types.Config
	}{
		{name: "full nested", cfg: types.DefaultConfig()},
		{name: "full categorical", cfg: categorical},
		{name: "digits", cfg: digits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Seed = 99
			trace, summary := runSeeded(t, tt.cfg, shadow.New(), 3000)
			assert.Equal(t, 3000, summary.Counts.Total())

			replayed := NewModel(shadow.New(), types.MustAlphabet(tt.cfg.Alphabet), tt.cfg.AllowSelfMapping)
			counts, err := Verify(context.Background(), strings.NewReader(trace), replayed)
			require.NoError(t, err)
			assert.Equal(t, summary.Counts, counts)

			n, err := replayed.Store().Len()
			require.NoError(t, err)
			assert.Equal(t, summary.FinalSize, n)
		})
	}
}

func TestDriver_SeedIsReproducible(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Seed = 1234

	a, _ := runSeeded(t, cfg, shadow.New(), 500)
	b, _ := runSeeded(t, cfg, shadow.New(), 500)
	assert.Equal(t, a, b)
}

func TestDriver_SQLiteBackendVerifiesAgainstMemory(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Backend = types.BackendSQLite
	cfg.Seed = 7

	backend := sqlite.NewBackend()
	require.NoError(t, backend.Attach(cfg))
	defer backend.Detach()

	trace, _ := runSeeded(t, cfg, backend, 400)

	replayed := NewModel(shadow.New(), fullAlphabet, false)
	_, err := Verify(context.Background(), strings.NewReader(trace), replayed)
	require.NoError(t, err)
}

func TestDriver_ZeroIterations(t *testing.T) {
	out, summary := runSeeded(t, types.DefaultConfig(), shadow.New(), 0)
	assert.Empty(t, out)
	assert.Zero(t, summary.Counts.Total())
}

func TestDriver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	d, err := NewDriver(types.DefaultConfig(), shadow.New(), random.NewSource(1), &out)
	require.NoError(t, err)

	summary, err := d.Run(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Counts.Total())
	assert.Empty(t, out.String())
}

func TestDriver_Progress(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.ProgressEvery = 10

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	d, err := NewDriver(cfg, shadow.New(), random.NewSource(3), &bytes.Buffer{}, WithLogger(logger))
	require.NoError(t, err)

	_, err = d.Run(context.Background(), 25)
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(logs.String(), "msg=progress"))
	assert.Contains(t, logs.String(), "done=0.4")
	assert.Contains(t, logs.String(), "done=0.8")
}

func TestNewDriver_InvalidConfig(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.MaxSize = 1

	_, err := NewDriver(cfg, shadow.New(), random.NewSource(1), &bytes.Buffer{})
	assert.ErrorIs(t, err, types.ErrSizeRange)
}
