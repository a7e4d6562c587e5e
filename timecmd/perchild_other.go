//go:build !unix && !windows

package timecmd

const perChildSupported = false
