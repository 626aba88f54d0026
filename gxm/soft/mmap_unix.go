//go:build linux || darwin || freebsd

package soft

import (
	"golang.org/x/sys/unix"
)

// mapRegion reserves size bytes of anonymous memory outside the Go heap, the way the
// hardware's domains are carved out of dedicated mappings
func mapRegion(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func unmapRegion(data []byte) error {
	return unix.Munmap(data)
}
