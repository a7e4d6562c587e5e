//go:build unix

package bench

import (
	"errors"
	"os/exec"
	"syscall"
)

// killedByInterrupt reports whether err is the exit of a child that died
// from SIGINT or SIGTERM.
func killedByInterrupt(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}

	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return false
	}

	return ws.Signal() == syscall.SIGINT || ws.Signal() == syscall.SIGTERM
}
