// Package dimlog provides a compact in-memory record store for the leaves of
// a multi-dimensional rollup tree.
//
// Each leaf holds records of the same shape: a string value per dimension, an
// optional time bucket, and an int32 value per metric. Dimlog
// dictionary-encodes dimension values to dense int32 ids and appends records
// as fixed-width binary entries to a log buffer, so a leaf with thousands of
// records stays cache-friendly and costs no per-record allocations. When the
// buffer fills, entries sharing a dimension/time key are merged in place;
// the buffer grows only when merging stops reclaiming space.
//
// # Core Features
//
//   - Dictionary encoding with reserved ids for the "*" wildcard and "other"
//     overflow values, identical across every store
//   - Fixed-width entries: ids, time and metrics at known offsets, scanned
//     without parsing
//   - Compact-then-grow buffer policy driven by a target load factor
//   - Scan-time aggregation: metric sums and per-bucket time series
//   - Lock-free record count and time bound stats for monitoring
//   - Self-describing snapshots with optional compression (Zstd, S2, LZ4,
//     Snappy) and xxHash64 integrity checking
//
// # Basic Usage
//
// Creating a store and feeding it records:
//
//	import "github.com/arloliu/dimlog"
//	import "github.com/arloliu/dimlog/rollup"
//
//	s, _ := dimlog.NewStore("leaf-42",
//	    []string{"country", "browser"},
//	    []string{"clicks"},
//	)
//
//	s.Update(rollup.NewTimedRecord(
//	    map[string]string{"country": "US", "browser": "firefox"},
//	    bucket,
//	    map[string]int32{"clicks": 1},
//	))
//
// Querying:
//
//	sums, _ := s.MetricSums(rollup.Query{
//	    DimensionValues: map[string]string{"country": "US"},
//	    TimeRange:       &rollup.TimeRange{Min: from, Max: to},
//	})
//
// Checkpointing and restoring:
//
//	data, _ := s.Snapshot(snapshot.WithCompression(format.CompressionZstd))
//	restored, _ := dimlog.RestoreStore(data)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the store
// package, simplifying the most common use cases. For advanced usage use the
// store, rollup and snapshot packages directly.
package dimlog

import (
	"github.com/arloliu/dimlog/store"
)

// NewStore creates a record store for one rollup tree leaf.
//
// The dimension order defines the entry's id column order and the metric
// order its value column order; both are fixed for the store's lifetime.
//
// Parameters:
//   - nodeID: Identifier of the leaf node the store belongs to
//   - dimensions: Dimension names in declared order (at least one)
//   - metrics: Metric names in declared order (at least one)
//   - opts: Optional configuration functions (see store.Option)
//
// Returns:
//   - *store.Store: The created store.
//   - error: An error if the schema or configuration is invalid.
//
// Available options:
//   - store.WithBufferSize(bytes) / store.WithExpectedRecords(count)
//   - store.WithGrowthIncrement(bytes)
//   - store.WithTargetLoadFactor(factor)
//   - store.WithDirectBuffer(true|false)
//   - store.WithLittleEndian() / store.WithBigEndian()
//   - store.WithLogger(logger)
//
// Example:
//
//	s, err := dimlog.NewStore("leaf-42",
//	    []string{"country", "browser"},
//	    []string{"clicks", "errors"},
//	    store.WithExpectedRecords(10_000),
//	)
func NewStore(nodeID string, dimensions, metrics []string, opts ...store.Option) (*store.Store, error) {
	return store.New(nodeID, dimensions, metrics, opts...)
}

// RestoreStore rebuilds a store from a snapshot envelope produced by
// (*store.Store).Snapshot.
//
// The envelope is self-describing: schema, dictionary, buffer contents, byte
// order and compression all come from the data. Options tune the restored
// store's runtime settings the same way they do for NewStore; the entry byte
// order always follows the envelope.
//
// Parameters:
//   - data: The snapshot envelope bytes
//   - opts: Optional configuration functions (see store.Option)
//
// Returns:
//   - *store.Store: The restored store.
//   - error: An error if the envelope is corrupt or inconsistent.
//
// Example:
//
//	restored, err := dimlog.RestoreStore(data,
//	    store.WithTargetLoadFactor(0.9),
//	)
func RestoreStore(data []byte, opts ...store.Option) (*store.Store, error) {
	return store.FromSnapshot(data, opts...)
}
