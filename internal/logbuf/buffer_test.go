package logbuf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	b := New(64, false)

	require.Equal(t, 64, b.Capacity())
	require.Equal(t, 0, b.Limit())
	require.Empty(t, b.Window())
	require.Len(t, b.Bytes(), 64)
	require.False(t, b.Direct())
}

func TestBuffer_Extend(t *testing.T) {
	t.Run("Claims sequential slots", func(t *testing.T) {
		b := New(16, false)

		first, ok := b.Extend(8)
		require.True(t, ok)
		require.Len(t, first, 8)
		copy(first, "abcdefgh")

		second, ok := b.Extend(8)
		require.True(t, ok)
		copy(second, "ijklmnop")

		require.Equal(t, 16, b.Limit())
		require.Equal(t, []byte("abcdefghijklmnop"), b.Window())
	})

	t.Run("Reports full without moving the limit", func(t *testing.T) {
		b := New(10, false)

		_, ok := b.Extend(8)
		require.True(t, ok)

		_, ok = b.Extend(8)
		require.False(t, ok)
		require.Equal(t, 8, b.Limit())
	})

	t.Run("Exact fit", func(t *testing.T) {
		b := New(8, false)

		_, ok := b.Extend(8)
		require.True(t, ok)
		require.Equal(t, 8, b.Limit())

		_, ok = b.Extend(1)
		require.False(t, ok)
	})
}

func TestBuffer_Reset(t *testing.T) {
	b := New(16, false)
	slot, ok := b.Extend(8)
	require.True(t, ok)
	copy(slot, "abcdefgh")

	b.Reset()

	require.Equal(t, 0, b.Limit())
	require.Equal(t, 16, b.Capacity())
	// Stale bytes stay in place past the limit.
	require.Equal(t, byte('a'), b.Bytes()[0])
}

func TestBuffer_Direct(t *testing.T) {
	b := New(4096, true)

	// Direct allocation may fall back to the heap on unsupported platforms;
	// either way the byte-layout contract holds.
	slot, ok := b.Extend(4)
	require.True(t, ok)
	copy(slot, "data")
	require.Equal(t, []byte("data"), b.Window())

	require.NoError(t, b.Free())
}

func TestBuffer_Free(t *testing.T) {
	heap := New(16, false)
	_, ok := heap.Extend(8)
	require.True(t, ok)

	require.NoError(t, heap.Free())
	require.Equal(t, 0, heap.Capacity())
	require.Equal(t, 0, heap.Limit())
	require.False(t, heap.Direct())
}
