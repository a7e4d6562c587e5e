//go:build unix && !linux

package timecmd

import (
	"time"

	"golang.org/x/sys/unix"
)

// childTimes reads getrusage(RUSAGE_CHILDREN), which accumulates the same
// counters times(2) reports on Linux.
func childTimes() (cpuTimes, bool) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_CHILDREN, &ru); err != nil {
		return cpuTimes{}, false
	}

	return cpuTimes{
		user: time.Duration(ru.Utime.Nano()).Seconds(),
		sys:  time.Duration(ru.Stime.Nano()).Seconds(),
	}, true
}
