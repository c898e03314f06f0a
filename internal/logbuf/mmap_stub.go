//go:build !linux && !darwin

package logbuf

import "errors"

var errMmapNotSupported = errors.New("anonymous mapping not supported on this platform")

// mmapAlloc always fails on platforms without anonymous mapping support,
// causing New to fall back to a heap allocation.
func mmapAlloc(size int) ([]byte, error) {
	return nil, errMmapNotSupported
}

func mmapFree(data []byte) error {
	return nil
}
