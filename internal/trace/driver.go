package trace

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/tracegen/internal/random"
	"github.com/mesh-intelligence/tracegen/pkg/types"
)

// Driver runs the generator loop: select, synthesize, emit.
type Driver struct {
	synth         *Synthesizer
	selector      Selector
	src           random.Source
	out           *bufio.Writer
	logger        *slog.Logger
	progressEvery int
	profile       string
	seed          uint64
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the progress logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithSelector overrides the selector built from the config.
func WithSelector(sel Selector) Option {
	return func(d *Driver) { d.selector = sel }
}

// NewDriver validates cfg and returns a Driver writing the trace to out.
// The driver owns store for the duration of Run.
func NewDriver(cfg types.Config, store types.ShadowStore, src random.Source, out io.Writer, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	synth, err := NewSynthesizer(cfg, store)
	if err != nil {
		return nil, err
	}
	sel, err := NewSelector(cfg.Selection)
	if err != nil {
		return nil, err
	}
	d := &Driver{
		synth:         synth,
		selector:      sel,
		src:           src,
		out:           bufio.NewWriter(out),
		logger:        slog.New(slog.DiscardHandler),
		progressEvery: cfg.ProgressEvery,
		profile:       cfg.Profile,
		seed:          cfg.Seed,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run executes exactly iterations steps unless ctx is cancelled first, and
// flushes the trace. The returned summary is valid even on error and
// counts the commands written so far.
func (d *Driver) Run(ctx context.Context, iterations int) (types.RunSummary, error) {
	summary := types.RunSummary{
		StartedAt:  time.Now(),
		Iterations: iterations,
		Profile:    d.profile,
		Seed:       d.seed,
	}
	d.logger.Debug("run started", "iterations", iterations, "profile", d.profile)

	err := d.loop(ctx, iterations, &summary.Counts)
	if ferr := d.out.Flush(); err == nil && ferr != nil {
		err = fmt.Errorf("flush trace: %w", ferr)
	}

	summary.FinishedAt = time.Now()
	if n, lerr := d.synth.model.store.Len(); lerr == nil {
		summary.FinalSize = n
	} else if err == nil {
		err = lerr
	}
	d.logger.Debug("run finished",
		"commands", summary.Counts.Total(),
		"store_size", summary.FinalSize,
		"elapsed", summary.FinishedAt.Sub(summary.StartedAt),
	)
	return summary, err
}

func (d *Driver) loop(ctx context.Context, iterations int, counts *types.OpCounts) error {
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.progressEvery > 0 && i%d.progressEvery == 0 {
			d.logger.Info("progress", "done", float64(i)/float64(iterations))
		}

		op := d.selector.Next(d.src)
		cmd, err := d.synth.Synthesize(d.src, op)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
		if _, err := cmd.WriteTo(d.out); err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
		counts.Inc(op)
	}
	return nil
}
