//go:build unix

package alloc

import "golang.org/x/sys/unix"

// platformPageSize returns the OS page size on unix-family targets.
func platformPageSize() int {
	return unix.Getpagesize()
}
