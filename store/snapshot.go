package store

import (
	"slices"

	"github.com/arloliu/dimlog/dict"
	"github.com/arloliu/dimlog/entry"
	"github.com/arloliu/dimlog/errs"
	"github.com/arloliu/dimlog/internal/logbuf"
	"github.com/arloliu/dimlog/internal/options"
	"github.com/arloliu/dimlog/snapshot"
)

// Snapshot serializes the store's complete restorable state, dictionary
// included, into a self-describing envelope. The envelope's byte order is the
// store's entry byte order. Pass snapshot.WithCompression to compress the
// buffer payload.
func (s *Store) Snapshot(opts ...snapshot.Option) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := snapshot.State{
		NodeID:      s.nodeID,
		Dimensions:  slices.Clone(s.dimensions),
		Metrics:     slices.Clone(s.metrics),
		Dictionary:  s.index.Export(),
		NextValueID: s.index.NextID(),
		RecordCount: int(s.recordCount.Load()),
		MinTime:     s.minTime.Load(),
		MaxTime:     s.maxTime.Load(),
		Engine:      s.engine,
	}
	if s.buf != nil {
		st.Capacity = s.buf.Capacity()
		st.Buffer = slices.Clone(s.buf.Window())
	}

	return snapshot.Marshal(st, opts...)
}

// FromSnapshot restores a store from an envelope produced by Snapshot.
//
// Options tune the restored store's runtime settings the same way they do for
// New. The entry byte order always follows the envelope, since the restored
// buffer bytes are already encoded in it; WithLittleEndian and WithBigEndian
// are ignored here.
func FromSnapshot(data []byte, opts ...Option) (*Store, error) {
	st, err := snapshot.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	cfg.engine = st.Engine

	if len(st.Dimensions) == 0 {
		return nil, errs.ErrNoDimensions
	}
	if len(st.Metrics) == 0 {
		return nil, errs.ErrNoMetrics
	}

	index, err := dict.Restore(st.Dimensions, st.Dictionary, st.NextValueID)
	if err != nil {
		return nil, err
	}

	s := &Store{
		nodeID:     st.NodeID,
		dimensions: st.Dimensions,
		metrics:    st.Metrics,
		index:      index,
	}
	s.codec = entry.New(s.dimensions, s.metrics, s.index, cfg.engine)

	if err := s.applyConfig(cfg); err != nil {
		return nil, err
	}

	if st.Capacity > 0 {
		s.buf = logbuf.New(st.Capacity, cfg.directBuffer)
		if s.directBuffer && !s.buf.Direct() {
			s.logger.Debug("direct buffer unavailable, falling back to heap",
				"node_id", s.nodeID, "capacity", st.Capacity)
		}

		if len(st.Buffer) > 0 {
			slot, _ := s.buf.Extend(len(st.Buffer))
			copy(slot, st.Buffer)
		}
	}

	s.recordCount.Store(int32(st.RecordCount))
	s.minTime.Store(st.MinTime)
	s.maxTime.Store(st.MaxTime)

	return s, nil
}
