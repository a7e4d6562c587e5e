// Package config assembles the list of benchmarks to compare from command
// line arguments, YAML benchmark files and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/weiihann/cbdr/bench"
	"github.com/weiihann/cbdr/timecmd"
)

// Environment variables consulted for flag defaults.
const (
	EnvBench = "CBDR_BENCH"
	EnvSeed  = "CBDR_SEED"
)

// File is the on-disk benchmark list.
type File struct {
	Benchmarks []Entry `yaml:"benchmarks"`
}

// Entry describes one benchmark. Exactly one of Command and Script is set.
type Entry struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Script  string   `yaml:"script"`
	Args    []string `yaml:"args"`
}

// Options is the benchmark selection given on the command line.
type Options struct {
	// Bench, when set, is run once per target with the target as its only
	// argument and must print JSON metrics.
	Bench string
	// Scripts are shell commands measured by the process timer.
	Scripts []string
	// Targets are arguments to Bench, or shell commands when Bench is empty.
	Targets []string
	// ConfigPath names an optional YAML benchmark file.
	ConfigPath string
	// Timer measures every shell command benchmark.
	Timer timecmd.Timer
}

// LoadEnv loads variables from path into the process environment without
// overriding ones already set. A missing file is not an error; an empty
// path means ".env".
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}

// SeedFromEnv returns the value of CBDR_SEED, or zero when unset.
func SeedFromEnv() (uint64, error) {
	v := os.Getenv(EnvSeed)
	if v == "" {
		return 0, nil
	}

	seed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", EnvSeed, err)
	}

	return seed, nil
}

// LoadFile reads a YAML benchmark file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return f, nil
}

// Parse decodes and validates a YAML benchmark file. Unknown fields are
// rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode YAML: %w", err)
	}

	for i, e := range f.Benchmarks {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("benchmark %d: %w", i, err)
		}
	}

	return &f, nil
}

func (e Entry) validate() error {
	switch {
	case e.Command != "" && e.Script != "":
		return errors.New("command and script are mutually exclusive")
	case e.Command == "" && e.Script == "":
		return errors.New("one of command or script is required")
	case e.Command != "" && len(e.Args) > 0:
		return errors.New("args are only valid with script")
	}

	return nil
}

// Benchmark converts the entry into a benchmark, timing shell commands
// with timer.
func (e Entry) Benchmark(timer timecmd.Timer) *bench.Benchmark {
	if e.Command != "" {
		return bench.New(e.Name, bench.ShellCommand{Command: e.Command, Timer: timer})
	}

	return bench.New(e.Name, bench.JSONScript{Path: e.Script, Args: e.Args})
}

// Benchmarks builds the benchmark list in a fixed order: entries from the
// config file, then Scripts, then Targets.
func Benchmarks(opts Options) ([]*bench.Benchmark, error) {
	var benches []*bench.Benchmark

	if opts.ConfigPath != "" {
		f, err := LoadFile(opts.ConfigPath)
		if err != nil {
			return nil, err
		}

		for _, e := range f.Benchmarks {
			benches = append(benches, e.Benchmark(opts.Timer))
		}
	}

	for _, s := range opts.Scripts {
		benches = append(benches, bench.New("", bench.ShellCommand{Command: s, Timer: opts.Timer}))
	}

	for _, target := range opts.Targets {
		if opts.Bench != "" {
			benches = append(benches, bench.New("", bench.JSONScript{
				Path: opts.Bench,
				Args: []string{target},
			}))
		} else {
			benches = append(benches, bench.New("", bench.ShellCommand{Command: target, Timer: opts.Timer}))
		}
	}

	if len(benches) == 0 {
		return nil, errors.New("no benchmarks given: pass targets, --script or --config")
	}

	return benches, nil
}

// Driver builds one benchmark per label, each running driver with the
// label as its only argument and named after the label.
func Driver(driver string, labels []string) ([]*bench.Benchmark, error) {
	if driver == "" {
		return nil, errors.New("a driver program is required")
	}

	if len(labels) == 0 {
		return nil, errors.New("at least one label is required")
	}

	benches := make([]*bench.Benchmark, 0, len(labels))
	for _, l := range labels {
		benches = append(benches, bench.New(l, bench.JSONScript{Path: driver, Args: []string{l}}))
	}

	return benches, nil
}
