//go:build linux

package timecmd

import (
	"github.com/tklauser/go-sysconf"
	"golang.org/x/sys/unix"
)

// childTimes reads the cutime/cstime counters of times(2) and converts them
// from clock ticks to seconds.
func childTimes() (cpuTimes, bool) {
	ticks, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || ticks <= 0 {
		return cpuTimes{}, false
	}

	var tms unix.Tms
	if _, err := unix.Times(&tms); err != nil {
		return cpuTimes{}, false
	}

	return cpuTimes{
		user: float64(tms.Cutime) / float64(ticks),
		sys:  float64(tms.Cstime) / float64(ticks),
	}, true
}
