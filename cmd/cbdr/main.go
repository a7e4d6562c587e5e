// Package main provides the CLI entry point for cbdr, which samples
// competing benchmarks in random interleaved order and streams the
// measurements as CSV.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weiihann/cbdr/bench"
	"github.com/weiihann/cbdr/config"
	"github.com/weiihann/cbdr/label"
	"github.com/weiihann/cbdr/report"
	"github.com/weiihann/cbdr/sampler"
	"github.com/weiihann/cbdr/timecmd"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	ignoreBrokenPipe()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &app{stdout: stdout, stderr: stderr}

	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetOut(stderr)
	root.SetErr(stderr)

	return exitCode(root.ExecuteContext(ctx), stderr)
}

// exitCode maps the outcome of a run to a process exit status. A reader
// hanging up on the result stream and an interrupt both end a run that
// has no natural end, so they count as success.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case report.IsDisconnect(err):
		return 0
	case errors.Is(err, context.Canceled):
		return 0
	default:
		fmt.Fprintf(stderr, "cbdr: %v\n", err)

		return 1
	}
}

// app carries the state shared by all subcommands.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	seed     uint64
	samples  int
	timer    string
	logLevel string
	envFile  string
	noColor  bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cbdr",
		Short: "Compare benchmarks by sampling them in random order",
		Long: `cbdr runs a set of competing benchmarks over and over, interleaving
them in random order so that time-correlated noise (thermal throttling,
cache state, background load) is spread evenly across all of them.

Results are streamed to stdout as CSV, one row per execution, for
analysis by a separate statistics tool.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.Uint64Var(&a.seed, "seed", 0,
		"Random seed for the sampling order (0 = use current time, env "+config.EnvSeed+")")
	flags.IntVar(&a.samples, "samples", 0,
		"Stop after this many randomly ordered samples (0 = run until killed)")
	flags.StringVar(&a.timer, "timer", "per-child",
		"CPU time accounting for shell benchmarks: per-child, cumulative")
	flags.StringVar(&a.logLevel, "log-level", "info",
		"Diagnostic log level: debug, info, warn, error")
	flags.StringVar(&a.envFile, "env-file", ".env",
		"Environment file to load before reading defaults")
	flags.BoolVar(&a.noColor, "no-color", false,
		"Disable coloured labels in diagnostics")

	root.AddCommand(newSampleCmd(a))
	root.AddCommand(newRandomlyCmd(a))

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}

	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if err := config.LoadEnv(a.envFile); err != nil {
		return err
	}

	if !cmd.Flags().Changed("seed") {
		seed, err := config.SeedFromEnv()
		if err != nil {
			return err
		}

		a.seed = seed
	}

	if a.samples < 0 {
		return fmt.Errorf("--samples must not be negative, got %d", a.samples)
	}

	return nil
}

func newSampleCmd(a *app) *cobra.Command {
	var (
		benchProg  string
		scripts    []string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "sample [flags] [targets...]",
		Short: "Sample shell commands and JSON-reporting benchmarks",
		Long: `Run every benchmark once to discover its metrics, once more in the
given order, and then forever in uniformly random order.

Shell commands (--script, or targets when --bench is not set) are timed by
cbdr and report "wall time", "user time" and "sys time" in seconds. With
--bench, each target is passed to the bench program as its only argument
and the program must print a JSON object of metric names to numbers.`,
		RunE: func(cmd *cobra.Command, targets []string) error {
			if !cmd.Flags().Changed("bench") {
				benchProg = os.Getenv(config.EnvBench)
			}

			accounting, err := timecmd.ParseAccounting(a.timer)
			if err != nil {
				return fmt.Errorf("invalid --timer: %w", err)
			}

			benches, err := config.Benchmarks(config.Options{
				Bench:      benchProg,
				Scripts:    scripts,
				Targets:    targets,
				ConfigPath: configPath,
				Timer:      timecmd.Timer{Accounting: accounting},
			})
			if err != nil {
				return err
			}

			return a.sample(cmd.Context(), benches)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&benchProg, "bench", "b", "",
		"Benchmark program run as 'bench <target>' (env "+config.EnvBench+")")
	flags.StringArrayVarP(&scripts, "script", "s", nil,
		"Shell command to time (repeatable)")
	flags.StringVarP(&configPath, "config", "c", "",
		"YAML file listing named benchmarks")

	return cmd
}

func newRandomlyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "randomly <driver> <label>...",
		Short: "Sample a JSON-reporting driver program over a list of labels",
		Long: `Run "driver <label>" for every label. The driver must print a JSON
object of metric names to numbers and exit zero. Rows are labelled with
the label itself.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			benches, err := config.Driver(args[0], args[1:])
			if err != nil {
				return err
			}

			return a.sample(cmd.Context(), benches)
		},
	}
}

func (a *app) sample(ctx context.Context, benches []*bench.Benchmark) error {
	labels := label.ForWriter(a.stderr, a.noColor)

	list := make([]sampler.Benchmark, 0, len(benches))
	for _, b := range benches {
		labels.Index(b.String())
		list = append(list, b)
	}

	a.logger.DebugContext(ctx, "sampling",
		slog.Int("benchmarks", len(list)),
		slog.Uint64("seed", a.seed),
		slog.Int("samples", a.samples),
		slog.String("timer", a.timer),
	)

	s := sampler.New(list, a.stdout, sampler.Options{
		Seed:       a.seed,
		MaxSamples: a.samples,
		Logger:     a.logger,
		OnWarmUp: func(b sampler.Benchmark) {
			fmt.Fprintf(a.stderr, "Warming up %s...\n", labels.Format(b.String()))
		},
		OnFrozen: func(columns []string) {
			fmt.Fprintln(a.stderr)
			a.logger.InfoContext(ctx, "warm-up complete",
				slog.String("columns", strings.Join(columns, ",")),
			)
		},
	})

	return s.Run(ctx)
}
