//go:build !unix

package timecmd

func childTimes() (cpuTimes, bool) {
	return cpuTimes{}, false
}
