// Package timecmd measures the wall-clock and CPU time consumed by a single
// child process.
package timecmd

import (
	"fmt"
	"math"
	"os/exec"
	"time"
)

// Timings holds the resources consumed by one child process. User and Sys
// are in seconds and are NaN when the platform cannot account CPU time.
type Timings struct {
	Wall time.Duration
	User float64
	Sys  float64
}

// Accounting selects how CPU time is attributed to the measured child.
type Accounting int

const (
	// PerChild reads the resource usage of the reaped child itself.
	PerChild Accounting = iota
	// Cumulative diffs the process-wide counters of all reaped children.
	// The caller must ensure that no other child process of this process
	// runs while a measurement is in progress.
	Cumulative
)

func (a Accounting) String() string {
	switch a {
	case PerChild:
		return "per-child"
	case Cumulative:
		return "cumulative"
	default:
		return fmt.Sprintf("accounting(%d)", int(a))
	}
}

// ParseAccounting parses the textual form produced by Accounting.String.
func ParseAccounting(s string) (Accounting, error) {
	switch s {
	case "per-child", "":
		return PerChild, nil
	case "cumulative":
		return Cumulative, nil
	default:
		return 0, fmt.Errorf("unknown accounting %q (want per-child or cumulative)", s)
	}
}

// Timer measures child processes. The zero value uses PerChild accounting.
type Timer struct {
	Accounting Accounting
}

// Measure starts cmd, waits for it to exit and returns what it consumed.
//
// A start failure is returned as is with zero Timings. When the child exits
// unsuccessfully the Timings are still valid and the error is the one
// returned by cmd.Wait, typically an *exec.ExitError.
func (t Timer) Measure(cmd *exec.Cmd) (Timings, error) {
	if t.Accounting == Cumulative {
		return measureCumulative(cmd)
	}

	return measurePerChild(cmd)
}

func measurePerChild(cmd *exec.Cmd) (Timings, error) {
	start := time.Now()

	if err := cmd.Start(); err != nil {
		return Timings{}, err
	}

	waitErr := cmd.Wait()
	wall := time.Since(start)

	timings := Timings{Wall: wall, User: math.NaN(), Sys: math.NaN()}

	if cmd.ProcessState != nil && perChildSupported {
		timings.User = cmd.ProcessState.UserTime().Seconds()
		timings.Sys = cmd.ProcessState.SystemTime().Seconds()
	}

	return timings, waitErr
}

func measureCumulative(cmd *exec.Cmd) (Timings, error) {
	before, ok := childTimes()

	start := time.Now()

	if err := cmd.Start(); err != nil {
		return Timings{}, err
	}

	waitErr := cmd.Wait()
	wall := time.Since(start)

	after, okAfter := childTimes()

	timings := Timings{Wall: wall, User: math.NaN(), Sys: math.NaN()}

	if ok && okAfter {
		timings.User = after.user - before.user
		timings.Sys = after.sys - before.sys
	}

	return timings, waitErr
}

// cpuTimes is a snapshot of the cumulative CPU time, in seconds, of every
// child this process has reaped.
type cpuTimes struct {
	user float64
	sys  float64
}
