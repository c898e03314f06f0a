// Package logbuf implements the append-only byte region backing a store.
//
// A Buffer has a fixed capacity and a limit marking the extent of valid data;
// the region between limit and capacity is unwritten headroom and whatever
// lies beyond the limit is stale garbage to readers. Buffers are replaced
// wholesale on growth and reset in place on clear or compaction rewrite.
//
// Allocation is from the heap by default. Direct mode allocates the region
// outside the Go heap through an anonymous memory mapping on platforms that
// support it, and silently falls back to the heap elsewhere; Direct reports
// the mode actually in effect. Both modes expose the identical byte layout.
//
// A Buffer is not internally synchronized; the owning store's lock serializes
// access.
package logbuf

// Buffer is a fixed-capacity byte region with a valid-data limit.
type Buffer struct {
	data   []byte
	limit  int
	direct bool
}

// New allocates a buffer of the given capacity. When direct is true it
// attempts an anonymous memory mapping first; the caller can observe a
// fallback through Direct.
func New(capacity int, direct bool) *Buffer {
	if direct {
		if data, err := mmapAlloc(capacity); err == nil {
			return &Buffer{data: data, direct: true}
		}
	}

	return &Buffer{data: make([]byte, capacity)}
}

// Capacity returns the total allocated size in bytes.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Limit returns the extent of valid data in bytes.
func (b *Buffer) Limit() int {
	return b.limit
}

// Window returns the valid region, data[:limit]. The slice aliases the
// buffer; callers must copy it before releasing the store lock.
func (b *Buffer) Window() []byte {
	return b.data[:b.limit]
}

// Bytes returns the entire allocated region including the stale tail beyond
// the limit. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Extend claims the next n bytes past the limit and returns them as a
// writable slot. It reports false without moving the limit when the headroom
// is insufficient.
func (b *Buffer) Extend(n int) ([]byte, bool) {
	if b.limit+n > len(b.data) {
		return nil, false
	}

	slot := b.data[b.limit : b.limit+n]
	b.limit += n

	return slot, true
}

// Reset sets the limit to zero, keeping the allocated capacity. Previously
// written bytes become stale but are not zeroed.
func (b *Buffer) Reset() {
	b.limit = 0
}

// Direct reports whether the region lives in an anonymous memory mapping
// rather than on the Go heap.
func (b *Buffer) Direct() bool {
	return b.direct
}

// Free releases a direct buffer's mapping and detaches the region. Heap
// buffers are left to the garbage collector. The buffer must not be used
// afterwards.
func (b *Buffer) Free() error {
	var err error
	if b.direct {
		err = mmapFree(b.data)
	}

	b.data = nil
	b.limit = 0
	b.direct = false

	return err
}
