// Package store implements the per-leaf record store of a rollup tree.
//
// A Store holds one leaf's records in a fixed-width, append-only log buffer:
// dimension values are dictionary-encoded to int32 ids, the optional time
// bucket is a raw int64, and metric values are raw int32 columns. Updates
// append; queries aggregate by scanning; a full buffer is compacted in place
// by merging entries that share a dimension/time key and grows only when
// compaction stops reclaiming enough space.
//
// # Core Types
//
//   - Store: the record store; create with New or restore with FromSnapshot
//   - Option: functional construction options (buffer sizing, growth policy,
//     byte order, direct buffers, logging)
//
// # Update Workflow
//
//	s, err := store.New("leaf-42",
//	    []string{"country", "browser"},
//	    []string{"clicks"},
//	    store.WithExpectedRecords(10_000),
//	)
//
//	err = s.Update(rollup.NewTimedRecord(
//	    map[string]string{"country": "US", "browser": "firefox"},
//	    bucket,
//	    map[string]int32{"clicks": 1},
//	))
//
// # Query Workflow
//
// Queries filter by dimension values and a mandatory time filter, then sum
// metric columns across matching entries:
//
//	sums, err := s.MetricSums(rollup.Query{
//	    DimensionValues: map[string]string{"country": "US"},
//	    TimeRange:       &rollup.TimeRange{Min: from, Max: to},
//	})
//
//	series, err := s.TimeSeries(rollup.Query{
//	    DimensionValues: map[string]string{"browser": rollup.Star},
//	    TimeBuckets:     buckets,
//	})
//
// # Concurrency
//
// A single mutex serializes all operations. RecordCount, MinTime and MaxTime
// are additionally maintained as atomics, so monitoring code can sample them
// without contending with updates.
//
// # Persistence
//
// The store itself is memory-only. Snapshot serializes the complete state,
// dictionary included, into a self-describing envelope (see the snapshot
// package), and FromSnapshot restores it.
package store
