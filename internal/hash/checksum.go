// Package hash provides the xxHash64 checksum used for snapshot integrity.
package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 digest of data. It is used as the snapshot
// envelope trailer.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
