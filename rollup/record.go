// Package rollup defines the record and query model shared by the dimlog
// storage and codec packages.
//
// A record is one logical observation in a rollup leaf: a string value per
// dimension, an optional time bucket, and an integer value per metric. Records
// with identical dimension values and time are mergeable; merging sums their
// metrics. The reserved dimension values Star ("*", the aggregate wildcard)
// and Other ("other", the overflow bucket produced by upstream rollup) carry
// fixed dictionary ids so every store encodes them identically.
package rollup

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/arloliu/dimlog/errs"
)

// Reserved dimension values and their fixed dictionary ids.
const (
	// Star is the wildcard dimension value: it aggregates across all values of
	// a dimension, and as a query filter it matches every value.
	Star = "*"

	// Other is the overflow dimension value assigned by upstream rollup to
	// values beyond a node's split threshold.
	Other = "other"

	// StarValueID is the dictionary id reserved for Star in every dimension.
	StarValueID int32 = 0

	// OtherValueID is the dictionary id reserved for Other in every dimension.
	OtherValueID int32 = 1

	// FirstValueID is the first dynamically assigned dictionary id.
	FirstValueID int32 = 2
)

// NoTime is the encoded time for records without time information.
const NoTime int64 = -1

// Record is one logical observation: a value per dimension, an optional time
// bucket, and a value per metric.
//
// Constructors store the given maps without copying; the store never retains
// a record past the call that received it.
type Record struct {
	// Dimensions maps dimension name to value. Star is a valid value.
	Dimensions map[string]string

	// Time is the record's time bucket, or nil when the record carries no
	// time information.
	Time *int64

	// Metrics maps metric name to value.
	Metrics map[string]int32
}

// NewRecord creates a record without time information.
func NewRecord(dimensions map[string]string, metrics map[string]int32) Record {
	return Record{Dimensions: dimensions, Metrics: metrics}
}

// NewTimedRecord creates a record in the given time bucket.
func NewTimedRecord(dimensions map[string]string, time int64, metrics map[string]int32) Record {
	return Record{Dimensions: dimensions, Time: &time, Metrics: metrics}
}

// HasTime reports whether the record carries time information.
func (r Record) HasTime() bool {
	return r.Time != nil
}

// TimeOrNone returns the record's time bucket, or NoTime when absent.
func (r Record) TimeOrNone() int64 {
	if r.Time == nil {
		return NoTime
	}

	return *r.Time
}

// Key returns a stable grouping key derived from the record's dimension values
// in sorted name order, and, when includeTime is true, its time bucket. Two
// records are mergeable iff their Key(true) values are equal. The key content
// is otherwise opaque.
func (r Record) Key(includeTime bool) string {
	names := make([]string, 0, len(r.Dimensions))
	for name := range r.Dimensions {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(r.Dimensions[name])
	}

	if includeTime && r.Time != nil {
		sb.WriteString("|@")
		sb.WriteString(strconv.FormatInt(*r.Time, 10))
	}

	return sb.String()
}

// Merge combines records sharing a grouping key into one record whose metric
// values are the per-metric sums. Dimension values and time are taken from the
// first record. It returns errs.ErrNothingToMerge for an empty group and
// errs.ErrMergeKeyMismatch when any record disagrees on Key(true).
func Merge(records ...Record) (Record, error) {
	if len(records) == 0 {
		return Record{}, errs.ErrNothingToMerge
	}

	first := records[0]
	key := first.Key(true)

	merged := Record{
		Dimensions: maps.Clone(first.Dimensions),
		Metrics:    make(map[string]int32, len(first.Metrics)),
	}
	if first.Time != nil {
		t := *first.Time
		merged.Time = &t
	}

	for _, rec := range records {
		if recKey := rec.Key(true); recKey != key {
			return Record{}, fmt.Errorf("%w: %q vs %q", errs.ErrMergeKeyMismatch, recKey, key)
		}

		for name, value := range rec.Metrics {
			merged.Metrics[name] += value
		}
	}

	return merged, nil
}
