package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const driverScript = `#!/bin/sh
case "$1" in
  A) echo '{"time": 1.0}' ;;
  B) echo '{"time": 2.0, "mem": 5}' ;;
  bad) echo "exploded" >&2; exit 4 ;;
  garbage) echo "not json" ;;
esac
`

func writeDriver(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	path := filepath.Join(t.TempDir(), "driver.sh")
	require.NoError(t, os.WriteFile(path, []byte(driverScript), 0o755))

	return path
}

func outputLines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestRandomlyExample(t *testing.T) {
	driver := writeDriver(t)

	var stdout, stderr bytes.Buffer

	code := run([]string{"randomly", "--samples", "6", "--seed", "1", driver, "A", "B"}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	lines := outputLines(&stdout)
	require.Len(t, lines, 1+2+6)

	assert.Equal(t, "benchmark,mem,time", lines[0])
	assert.Equal(t, "A,NaN,1", lines[1])
	assert.Equal(t, "B,5,2", lines[2])

	for _, l := range lines[3:] {
		assert.Contains(t, []string{"A,NaN,1", "B,5,2"}, l)
	}

	assert.Contains(t, stderr.String(), "Warming up A...")
	assert.Contains(t, stderr.String(), "Warming up B...")
}

func TestRandomlyFailureExitsOne(t *testing.T) {
	driver := writeDriver(t)

	var stdout, stderr bytes.Buffer

	code := run([]string{"randomly", "--samples", "1", driver, "A", "bad"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "bad: benchmark exited non-zero")
	assert.Contains(t, stderr.String(), "exploded")
	assert.Empty(t, stdout.String())
}

func TestRandomlyDecodeFailureExitsOne(t *testing.T) {
	driver := writeDriver(t)

	var stdout, stderr bytes.Buffer

	code := run([]string{"randomly", driver, "garbage"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "not json")
}

func TestSampleShellCommands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	var stdout, stderr bytes.Buffer

	code := run([]string{"sample", "--samples", "2", "--no-color", "-s", "true", "sleep 0.01"}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	lines := outputLines(&stdout)
	require.Len(t, lines, 1+2+2)

	assert.Equal(t, "benchmark,sys time,user time,wall time", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "true,"))
	assert.True(t, strings.HasPrefix(lines[2], "sleep 0.01,"))

	for _, l := range lines {
		assert.Len(t, strings.Split(l, ","), 4)
	}
}

func TestSampleCumulativeTimer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	var stdout, stderr bytes.Buffer

	code := run([]string{"sample", "--samples", "1", "--timer", "cumulative", "true"}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	assert.Len(t, outputLines(&stdout), 1+1+1)
}

// hangUp fails every write as if the reader of a pipe had exited.
type hangUp struct{}

func (hangUp) Write([]byte) (int, error) { return 0, syscall.EPIPE }

func TestDisconnectExitsCleanly(t *testing.T) {
	driver := writeDriver(t)

	var stderr bytes.Buffer

	code := run([]string{"randomly", driver, "A", "B"}, hangUp{}, &stderr)
	assert.Equal(t, 0, code)
	assert.NotContains(t, stderr.String(), "cbdr:")
}

func TestInterruptedBenchmarkExitsCleanly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	var stdout, stderr bytes.Buffer

	code := run([]string{"sample", "--samples", "1", "-s", "kill -INT $$"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.NotContains(t, stderr.String(), "cbdr:")
	assert.Empty(t, stdout.String())
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"timer", []string{"sample", "--timer", "bogus", "true"}, "invalid --timer"},
		{"log level", []string{"sample", "--log-level", "loud", "true"}, "invalid --log-level"},
		{"negative samples", []string{"sample", "--samples", "-1", "true"}, "must not be negative"},
		{"no benchmarks", []string{"sample"}, "no benchmarks given"},
		{"randomly args", []string{"randomly", "driver-only"}, "requires at least 2 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), tt.want)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"broken pipe", fmt.Errorf("write row: %w", syscall.EPIPE), 0},
		{"closed", fmt.Errorf("write header: %w", os.ErrClosed), 0},
		{"interrupted", fmt.Errorf("warm up: %w", context.Canceled), 0},
		{"failure", errors.New("A: benchmark exited non-zero"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer

			assert.Equal(t, tt.want, exitCode(tt.err, &stderr))

			if tt.want == 0 {
				assert.Empty(t, stderr.String())
			} else {
				assert.Contains(t, stderr.String(), tt.err.Error())
			}
		})
	}
}
