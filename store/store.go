package store

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/arloliu/dimlog/dict"
	"github.com/arloliu/dimlog/endian"
	"github.com/arloliu/dimlog/entry"
	"github.com/arloliu/dimlog/errs"
	"github.com/arloliu/dimlog/internal/logbuf"
	"github.com/arloliu/dimlog/internal/options"
	"github.com/arloliu/dimlog/rollup"
)

// Store is the record store of one rollup tree leaf.
//
// Records are appended as fixed-width entries to an in-memory log buffer.
// When the buffer fills, it is compacted in place by merging entries that
// share a dimension/time key; when compaction alone does not reclaim enough
// space, a larger buffer replaces it. Queries aggregate by scanning the
// buffer's valid window.
//
// A single mutex serializes every operation; RecordCount, MinTime and
// MaxTime additionally maintain atomics so they can be read without taking
// the lock.
type Store struct {
	mu sync.Mutex

	nodeID     string
	dimensions []string
	metrics    []string

	index *dict.Index
	codec *entry.Codec
	buf   *logbuf.Buffer // nil until the first update

	bufferSize       int
	growthIncrement  int
	targetLoadFactor float64
	directBuffer     bool
	engine           endian.EndianEngine
	logger           *slog.Logger

	recordCount atomic.Int32
	minTime     atomic.Int64
	maxTime     atomic.Int64
}

// New creates a store for the given leaf node and schema. The dimension
// order defines the entry's id column order and the metric order its value
// column order; both are fixed for the store's lifetime.
func New(nodeID string, dimensions, metrics []string, opts ...Option) (*Store, error) {
	cfg := newConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if len(dimensions) == 0 {
		return nil, errs.ErrNoDimensions
	}
	if len(metrics) == 0 {
		return nil, errs.ErrNoMetrics
	}

	s := &Store{
		nodeID:     nodeID,
		dimensions: slices.Clone(dimensions),
		metrics:    slices.Clone(metrics),
	}
	s.index = dict.New(s.dimensions)
	s.codec = entry.New(s.dimensions, s.metrics, s.index, cfg.engine)

	if err := s.applyConfig(cfg); err != nil {
		return nil, err
	}

	s.minTime.Store(math.MaxInt64)
	s.maxTime.Store(0)

	return s, nil
}

// applyConfig validates cfg against the store's entry width and copies it
// into the store's immutable settings.
func (s *Store) applyConfig(cfg *config) error {
	width := s.codec.Width()

	if cfg.expectedRecords > 0 {
		cfg.bufferSize = cfg.expectedRecords * width
	}

	if cfg.bufferSize < width {
		return fmt.Errorf("%w: %d bytes cannot hold one %d-byte entry",
			errs.ErrInvalidBufferSize, cfg.bufferSize, width)
	}

	if cfg.growthIncrement == 0 {
		cfg.growthIncrement = cfg.bufferSize
	}
	if cfg.growthIncrement < width {
		return fmt.Errorf("%w: growth increment %d below entry width %d",
			errs.ErrInvalidBufferSize, cfg.growthIncrement, width)
	}

	s.bufferSize = cfg.bufferSize
	s.growthIncrement = cfg.growthIncrement
	s.targetLoadFactor = cfg.targetLoadFactor
	s.directBuffer = cfg.directBuffer
	s.engine = cfg.engine
	s.logger = cfg.logger

	return nil
}

// Update appends one record. Capacity exhaustion is absorbed by the
// compact/grow policy and is never an error; a non-nil error only surfaces
// buffer or dictionary corruption detected during an in-line compaction.
func (s *Store) Update(rec rollup.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureRoom(); err != nil {
		return err
	}

	slot, _ := s.buf.Extend(s.codec.Width())
	if err := s.codec.EncodeTo(slot, rec); err != nil {
		return err
	}

	s.recordCount.Add(1)

	if rec.Time != nil {
		t := *rec.Time
		if t < s.minTime.Load() {
			s.minTime.Store(t)
		}
		if t > s.maxTime.Load() {
			s.maxTime.Store(t)
		}
	}

	return nil
}

// Records returns a materialized copy of every stored logical record, in
// buffer order and before any aggregation a query would apply. The result is
// independent of later store mutations; call again for a fresh view.
func (s *Store) Records() ([]rollup.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return nil, nil
	}

	window := s.buf.Window()
	width := s.codec.Width()

	records := make([]rollup.Record, 0, len(window)/width)
	for off := 0; off+width <= len(window); off += width {
		rec, err := s.codec.Decode(window[off : off+width])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// Clear discards all stored records, keeping the allocated capacity and the
// dictionary. MinTime and MaxTime keep their last values; a store that is
// cleared and reused reports times spanning all records ever stored.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf != nil {
		s.buf.Reset()
	}
	s.recordCount.Store(0)
}

// Open prepares the store for use. The in-memory store needs no preparation;
// the hook exists for lifecycle symmetry with Close.
func (s *Store) Open() error {
	return nil
}

// Close releases the buffer, unmapping a direct region. The store remains
// usable; the next update allocates a fresh buffer at the initial size.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return nil
	}

	err := s.buf.Free()
	s.buf = nil
	s.recordCount.Store(0)

	return err
}

// Encode returns a copy of the entire allocated buffer, including stale
// bytes beyond the valid window; consumers are expected to know the entry
// width and record count out of band. It returns nil before the first
// update. For a self-describing format use Snapshot.
func (s *Store) Encode() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return nil
	}

	return slices.Clone(s.buf.Bytes())
}

// NodeID returns the leaf node id this store belongs to.
func (s *Store) NodeID() string {
	return s.nodeID
}

// Dimensions returns the dimension names in declared order.
func (s *Store) Dimensions() []string {
	return slices.Clone(s.dimensions)
}

// Metrics returns the metric names in declared order.
func (s *Store) Metrics() []string {
	return slices.Clone(s.metrics)
}

// EntryWidth returns the fixed byte width of one stored entry.
func (s *Store) EntryWidth() int {
	return s.codec.Width()
}

// RecordCount returns the number of stored entries. It does not take the
// store lock.
func (s *Store) RecordCount() int {
	return int(s.recordCount.Load())
}

// MinTime returns the smallest time observed across all updates, including
// records dropped by Clear. Before any timed update it is math.MaxInt64. It
// does not take the store lock.
func (s *Store) MinTime() int64 {
	return s.minTime.Load()
}

// MaxTime returns the largest time observed across all updates, including
// records dropped by Clear. Before any timed update it is 0. It does not
// take the store lock.
func (s *Store) MaxTime() int64 {
	return s.maxTime.Load()
}

// ByteCount returns the allocated buffer capacity in bytes, 0 before the
// first update.
func (s *Store) ByteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return 0
	}

	return s.buf.Capacity()
}

// Cardinality returns the number of distinct values recorded for dimension,
// excluding the reserved wildcard and overflow values.
func (s *Store) Cardinality(dimension string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index.Cardinality(dimension)
}

// DimensionValues returns the distinct values recorded for dimension in
// sorted order, excluding the reserved wildcard and overflow values.
func (s *Store) DimensionValues(dimension string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index.Values(dimension)
}

// MaxCardinalityDimension returns the dimension with the most distinct
// values that is not in exclude, preferring the earlier declared dimension
// on ties. It reports false when no candidate has any values.
func (s *Store) MaxCardinalityDimension(exclude ...string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index.MaxCardinalityDimension(exclude...)
}
