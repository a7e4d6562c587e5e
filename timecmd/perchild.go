//go:build unix || windows

package timecmd

// ProcessState carries rusage (unix) or process times (windows) here.
const perChildSupported = true
