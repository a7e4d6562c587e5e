package bench

import (
	"fmt"
	"strings"
)

// SpawnError reports that the operating system could not start a
// benchmark process.
type SpawnError struct {
	Benchmark string
	Program   string
	Err       error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s: failed to start %s: %v", e.Benchmark, e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// FailedError reports a benchmark process that exited unsuccessfully.
// ExitCode is -1 when the process was terminated by a signal.
type FailedError struct {
	Benchmark  string
	Invocation string
	ExitCode   int
	Stderr     string
	Err        error
}

func (e *FailedError) Error() string {
	msg := fmt.Sprintf("%s: benchmark exited non-zero (%s): %v",
		e.Benchmark, e.Invocation, e.Err)

	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\nstderr: " + stderr
	}

	return msg
}

func (e *FailedError) Unwrap() error { return e.Err }

// Interrupted reports whether the process was killed by SIGINT or SIGTERM.
// A terminal interrupt reaches the whole foreground process group, so the
// benchmark usually dies from it before this process reacts.
func (e *FailedError) Interrupted() bool {
	return killedByInterrupt(e.Err)
}

// DecodeError reports benchmark output that is not a JSON object mapping
// metric names to numbers. The raw output is kept for debugging.
type DecodeError struct {
	Benchmark string
	Stdout    string
	Stderr    string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode metrics: %v\nstdout: %s\nstderr: %s",
		e.Benchmark, e.Err, e.Stdout, e.Stderr)
}

func (e *DecodeError) Unwrap() error { return e.Err }
