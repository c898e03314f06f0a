package store

import (
	"cmp"
	"maps"
	"slices"

	"github.com/arloliu/dimlog/rollup"
)

// MetricSums returns the per-metric sums over all records matching the
// query, in declared metric order. A query matching nothing yields zeros.
// The query must carry exactly one time filter form.
func (s *Store) MetricSums(q rollup.Query) ([]int32, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sums := make([]int32, len(s.metrics))
	if s.buf == nil {
		return sums, nil
	}

	window := s.buf.Window()
	width := s.codec.Width()

	for off := 0; off+width <= len(window); off += width {
		src := window[off : off+width]

		matches, err := s.entryMatches(src, q)
		if err != nil {
			return nil, err
		}

		// Metric columns are read as the scan advances regardless of the
		// match; only matching values reach the accumulator.
		for i := range s.metrics {
			value := s.codec.Metric(src, i)
			if matches {
				sums[i] += value
			}
		}
	}

	return sums, nil
}

// TimeSeries returns one record per time bucket containing matching records,
// sorted ascending by time. Each result carries the query's dimension values
// verbatim and the bucket's per-metric sums; buckets without matches are
// absent rather than zero-filled. The query must carry exactly one time
// filter form.
func (s *Store) TimeSeries(q rollup.Query) ([]rollup.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	series := make(map[int64][]int32)

	if s.buf != nil {
		window := s.buf.Window()
		width := s.codec.Width()

		for off := 0; off+width <= len(window); off += width {
			src := window[off : off+width]

			matches, err := s.entryMatches(src, q)
			if err != nil {
				return nil, err
			}

			var sums []int32
			if matches {
				t := s.codec.Time(src)
				sums = series[t]
				if sums == nil {
					sums = make([]int32, len(s.metrics))
					series[t] = sums
				}
			}

			for i := range s.metrics {
				value := s.codec.Metric(src, i)
				if matches {
					sums[i] += value
				}
			}
		}
	}

	records := make([]rollup.Record, 0, len(series))
	for t, sums := range series {
		metrics := make(map[string]int32, len(s.metrics))
		for i, name := range s.metrics {
			metrics[name] = sums[i]
		}
		records = append(records, rollup.NewTimedRecord(maps.Clone(q.DimensionValues), t, metrics))
	}

	slices.SortFunc(records, func(a, b rollup.Record) int {
		return cmp.Compare(*a.Time, *b.Time)
	})

	return records, nil
}

// entryMatches decodes the entry's dimension ids and applies the query's
// dimension and time filters. Every id is resolved even after a mismatch so
// corrupted ids never go unnoticed. Must be called with the store lock held.
func (s *Store) entryMatches(src []byte, q rollup.Query) (bool, error) {
	matches := true

	for i, dimension := range s.dimensions {
		value, err := s.index.ValueOf(dimension, s.codec.ValueID(src, i))
		if err != nil {
			return false, err
		}

		if !q.DimensionMatches(dimension, value) {
			matches = false
		}
	}

	if !q.TimeMatches(s.codec.Time(src)) {
		matches = false
	}

	return matches, nil
}
