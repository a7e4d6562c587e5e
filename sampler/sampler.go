// Package sampler runs benchmarks in an interleaved, randomized order and
// streams one row per execution.
//
// A run has three phases. Warm-up executes every benchmark once in
// configuration order and collects the metric names they report; the
// union becomes the frozen column set. The ordered pass executes every
// benchmark once more in configuration order, emitting rows, so the first
// cycle of output has a known order. The random pass then repeatedly picks
// a benchmark uniformly at random and emits its row, until the output
// consumer disconnects, the context is cancelled or MaxSamples is reached.
//
// Only one benchmark process runs at a time. Timing with cumulative child
// counters depends on this.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/weiihann/cbdr/bench"
	"github.com/weiihann/cbdr/report"
)

// ErrNoBenchmarks is returned by Run when there is nothing to compare.
var ErrNoBenchmarks = errors.New("no benchmarks configured")

// Benchmark is one variant the Sampler can execute.
type Benchmark interface {
	Run() (bench.Sample, error)
	String() string
}

// Options tune a Sampler. The zero value samples forever with a
// clock-seeded schedule and no logging.
type Options struct {
	// Seed seeds the random pass; zero seeds from the clock.
	Seed uint64
	// MaxSamples stops the random pass after this many rows; zero means
	// no limit.
	MaxSamples int
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
	// OnWarmUp is called before each warm-up execution.
	OnWarmUp func(b Benchmark)
	// OnFrozen is called once with the final columns, before the header
	// is written.
	OnFrozen func(columns []string)
}

// Sampler drives the warm-up, ordered and random passes.
type Sampler struct {
	benches []Benchmark
	out     io.Writer
	opts    Options
	logger  *slog.Logger

	stats   *StatSet
	dropped map[string]struct{}
}

// New creates a Sampler that writes its table to out.
func New(benches []Benchmark, out io.Writer, opts Options) *Sampler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Sampler{
		benches: benches,
		out:     out,
		opts:    opts,
		logger:  logger,
		stats:   NewStatSet(),
		dropped: make(map[string]struct{}),
	}
}

// Run executes the whole sampling state machine. It returns nil only when
// MaxSamples rows were written by the random pass. Benchmark failures and
// output errors are returned unchanged; after ctx is cancelled, or when a
// benchmark is killed by an interrupt, Run returns context.Canceled at the
// next opportunity without interrupting a running benchmark.
func (s *Sampler) Run(ctx context.Context) error {
	if len(s.benches) == 0 {
		return ErrNoBenchmarks
	}

	columns, err := s.warmUp(ctx)
	if err != nil {
		return err
	}

	if s.opts.OnFrozen != nil {
		s.opts.OnFrozen(columns)
	}

	w, err := report.NewWriter(s.out, columns)
	if err != nil {
		return err
	}

	for _, b := range s.benches {
		if err := s.sample(ctx, w, b); err != nil {
			return err
		}
	}

	schedule := NewSchedule(len(s.benches), s.opts.Seed)

	for n := 0; s.opts.MaxSamples == 0 || n < s.opts.MaxSamples; n++ {
		if err := s.sample(ctx, w, s.benches[schedule.Next()]); err != nil {
			return err
		}
	}

	return nil
}

func (s *Sampler) warmUp(ctx context.Context) ([]string, error) {
	for _, b := range s.benches {
		if s.opts.OnWarmUp != nil {
			s.opts.OnWarmUp(b)
		}

		values, err := s.execute(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("warm up: %w", err)
		}

		s.stats.Add(values.Keys()...)
	}

	columns := s.stats.Freeze()

	s.logger.DebugContext(ctx, "columns frozen", slog.Any("columns", columns))

	return columns, nil
}

func (s *Sampler) sample(ctx context.Context, w *report.Writer, b Benchmark) error {
	values, err := s.execute(ctx, b)
	if err != nil {
		return err
	}

	for name := range values {
		if s.stats.Contains(name) {
			continue
		}

		if _, seen := s.dropped[name]; !seen {
			s.dropped[name] = struct{}{}
			s.logger.DebugContext(ctx, "dropping metric not seen during warm-up",
				slog.String("benchmark", b.String()),
				slog.String("metric", name),
			)
		}
	}

	return w.WriteRow(b.String(), values)
}

// execute runs b once, checking ctx beforehand. A failure observed after
// cancellation, or a child killed by SIGINT or SIGTERM, is reported as
// context.Canceled: the interrupt that stops a run reaches the child too.
func (s *Sampler) execute(ctx context.Context, b Benchmark) (bench.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values, err := b.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		// The child can die from the interrupt before the signal is
		// delivered to this process, so decide from its exit status.
		var interrupted interface{ Interrupted() bool }
		if errors.As(err, &interrupted) && interrupted.Interrupted() {
			s.logger.DebugContext(ctx, "benchmark interrupted",
				slog.String("benchmark", b.String()),
				slog.String("error", err.Error()),
			)

			return nil, context.Canceled
		}

		return nil, err
	}

	s.logger.DebugContext(ctx, "benchmark finished",
		slog.String("benchmark", b.String()),
		slog.Int("metrics", len(values)),
	)

	return values, nil
}
