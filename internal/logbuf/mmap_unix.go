//go:build linux || darwin

package logbuf

import "golang.org/x/sys/unix"

// mmapAlloc maps an anonymous private region of the given size.
func mmapAlloc(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

// mmapFree unmaps a region obtained from mmapAlloc.
func mmapFree(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	return unix.Munmap(data)
}
