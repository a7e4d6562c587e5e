package bench

import (
	"bytes"
	"errors"
	"os/exec"
)

// Run implements Runner. The child inherits no output streams so that the
// measurement covers only the command itself.
func (s ShellCommand) Run(name string) (Sample, error) {
	cmd := exec.Command(Shell, "-c", s.Command)

	timings, err := s.Timer.Measure(cmd)
	if err != nil {
		return nil, classifyExit(err, name, Shell, s.Command, nil)
	}

	return Sample{
		MetricWallTime: timings.Wall.Seconds(),
		MetricUserTime: timings.User,
		MetricSysTime:  timings.Sys,
	}, nil
}

// Run implements Runner.
func (j JSONScript) Run(name string) (Sample, error) {
	cmd := exec.Command(j.Path, j.Args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, classifyExit(err, name, j.Path, j.commandLine(), &stderr)
	}

	sample, err := parseSampleBytes(stdout.Bytes())
	if err != nil {
		return nil, &DecodeError{
			Benchmark: name,
			Stdout:    stdout.String(),
			Stderr:    stderr.String(),
			Err:       err,
		}
	}

	return sample, nil
}

// classifyExit turns an error from starting or waiting on a child into a
// SpawnError or FailedError.
func classifyExit(
	err error,
	name, program, invocation string,
	stderr *bytes.Buffer,
) error {
	var captured string
	if stderr != nil {
		captured = stderr.String()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &FailedError{
			Benchmark:  name,
			Invocation: invocation,
			ExitCode:   exitErr.ExitCode(),
			Stderr:     captured,
			Err:        err,
		}
	}

	// Anything else comes from Start: the process never ran.
	return &SpawnError{Benchmark: name, Program: program, Err: err}
}
