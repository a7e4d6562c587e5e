//go:build !unix

package bench

func killedByInterrupt(error) bool {
	return false
}
