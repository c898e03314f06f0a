package store

import (
	"github.com/arloliu/dimlog/internal/logbuf"
	"github.com/arloliu/dimlog/rollup"
)

// ensureRoom guarantees headroom for one entry, allocating the buffer lazily
// on first touch and otherwise applying the compact-then-maybe-grow policy.
// Must be called with the store lock held.
func (s *Store) ensureRoom() error {
	width := s.codec.Width()

	if s.buf == nil {
		s.buf = logbuf.New(s.bufferSize, s.directBuffer)
		if s.directBuffer && !s.buf.Direct() {
			s.logger.Debug("direct buffer unavailable, falling back to heap",
				"node_id", s.nodeID, "capacity", s.buf.Capacity())
		}

		return nil
	}

	if s.buf.Limit()+width <= s.buf.Capacity() {
		return nil
	}

	oldLimit := s.buf.Limit()
	if err := s.compact(); err != nil {
		return err
	}
	newLimit := s.buf.Limit()

	loadFactor := 0.0
	if oldLimit > 0 {
		loadFactor = float64(newLimit) / float64(oldLimit)
	}

	if loadFactor > s.targetLoadFactor {
		s.grow()

		return nil
	}

	s.logger.Debug("compacted buffer in place",
		"node_id", s.nodeID, "load_factor", loadFactor,
		"record_count", s.recordCount.Load(), "capacity", s.buf.Capacity())

	// At a load factor of exactly 1.0 an all-distinct buffer compacts to its
	// old size and the threshold never trips; grow anyway rather than fail
	// the append.
	if s.buf.Limit()+width > s.buf.Capacity() {
		s.grow()
	}

	return nil
}

// compact rewrites the buffer so each distinct dimension/time key holds
// exactly one entry with the group's metric sums. Capacity is unchanged and
// the operation is idempotent; groups are rewritten in first-seen order,
// though callers may not rely on any order. Must be called with the store
// lock held.
func (s *Store) compact() error {
	window := s.buf.Window()
	width := s.codec.Width()

	groups := make(map[string][]rollup.Record)
	order := make([]string, 0, len(window)/width)
	for off := 0; off+width <= len(window); off += width {
		rec, err := s.codec.Decode(window[off : off+width])
		if err != nil {
			return err
		}

		key := rec.Key(true)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	s.buf.Reset()
	for _, key := range order {
		merged, err := rollup.Merge(groups[key]...)
		if err != nil {
			return err
		}

		// The group count never exceeds the pre-compaction entry count, so
		// the slot claim cannot fail.
		slot, _ := s.buf.Extend(width)
		if err := s.codec.EncodeTo(slot, merged); err != nil {
			return err
		}
	}

	s.recordCount.Store(int32(len(order)))

	return nil
}

// grow replaces the buffer with one enlarged by the growth increment,
// carrying the valid window over and releasing the old buffer's mapping when
// direct. Must be called with the store lock held.
func (s *Store) grow() {
	oldCapacity := s.buf.Capacity()

	next := logbuf.New(oldCapacity+s.growthIncrement, s.directBuffer)
	slot, _ := next.Extend(s.buf.Limit())
	copy(slot, s.buf.Window())

	if err := s.buf.Free(); err != nil {
		s.logger.Debug("releasing old buffer failed",
			"node_id", s.nodeID, "error", err)
	}
	s.buf = next

	s.logger.Debug("expanded buffer",
		"node_id", s.nodeID, "old_capacity", oldCapacity,
		"new_capacity", next.Capacity(), "record_count", s.recordCount.Load())
}
