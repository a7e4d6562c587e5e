// Package bench describes the benchmarks under comparison and knows how to
// execute each of them once.
package bench

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/weiihann/cbdr/timecmd"
)

// Shell is the interpreter used for ShellCommand benchmarks.
const Shell = "/bin/sh"

// Metric names reported by every ShellCommand benchmark.
const (
	MetricWallTime = "wall time"
	MetricUserTime = "user time"
	MetricSysTime  = "sys time"
)

// Runner executes one kind of benchmark invocation. The implementations
// are ShellCommand and JSONScript.
type Runner interface {
	// Run executes the invocation once on behalf of the named benchmark.
	Run(name string) (Sample, error)
	// Describe returns a label derived from the invocation itself.
	Describe() string
}

// Benchmark is one variant under comparison. It is built once from
// configuration and not modified afterwards.
type Benchmark struct {
	Name   string
	Runner Runner
}

// New returns a Benchmark labelled name; an empty name falls back to the
// runner's description.
func New(name string, runner Runner) *Benchmark {
	return &Benchmark{Name: name, Runner: runner}
}

// String returns the display label.
func (b *Benchmark) String() string {
	if b.Name != "" {
		return b.Name
	}

	return b.Runner.Describe()
}

// Run executes the benchmark once and returns the metrics it produced.
func (b *Benchmark) Run() (Sample, error) {
	return b.Runner.Run(b.String())
}

// ShellCommand runs Command through Shell with all output discarded and
// reports the wall, user and sys time the Timer measured.
type ShellCommand struct {
	Command string
	Timer   timecmd.Timer
}

// Describe implements Runner.
func (s ShellCommand) Describe() string {
	return s.Command
}

// JSONScript runs Path with Args and reads the metrics the program prints
// on stdout as a single JSON object of numbers.
type JSONScript struct {
	Path string
	Args []string
}

// Describe implements Runner.
func (j JSONScript) Describe() string {
	quoted := make([]string, len(j.Args))
	for i, a := range j.Args {
		quoted[i] = strconv.Quote(a)
	}

	return fmt.Sprintf("<%s [%s]>", j.Path, strings.Join(quoted, " "))
}

func (j JSONScript) commandLine() string {
	if len(j.Args) == 0 {
		return j.Path
	}

	return j.Path + " " + strings.Join(j.Args, " ")
}
