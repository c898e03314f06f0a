package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		data := []byte("leaf snapshot payload")
		require.Equal(t, Checksum(data), Checksum(data))
	})

	t.Run("known empty input digest", func(t *testing.T) {
		// xxHash64 seed-0 digest of the empty input.
		require.Equal(t, uint64(0xef46db3751d8e999), Checksum(nil))
		require.Equal(t, uint64(0xef46db3751d8e999), Checksum([]byte{}))
	})

	t.Run("sensitive to single-bit changes", func(t *testing.T) {
		a := []byte("snapshot body")
		b := append([]byte(nil), a...)
		b[0] ^= 0x01

		require.NotEqual(t, Checksum(a), Checksum(b))
	})
}
