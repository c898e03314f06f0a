package rollup

import "github.com/arloliu/dimlog/errs"

// TimeRange is an inclusive [Min, Max] time bucket interval.
type TimeRange struct {
	Min int64
	Max int64
}

// Contains reports whether t lies within the range, bounds included.
func (tr TimeRange) Contains(t int64) bool {
	return t >= tr.Min && t <= tr.Max
}

// Query selects records by dimension values and time.
//
// DimensionValues filters per dimension: a record matches when every filtered
// dimension either carries the Star wildcard or equals the record's value
// exactly. Dimensions absent from the map are unconstrained, equivalent to
// Star.
//
// Exactly one time filter form must be set: TimeBuckets (an explicit set of
// allowed time buckets; a non-nil empty set is a valid filter matching
// nothing) or TimeRange (inclusive bounds). Records without time information
// encode their time as NoTime, which participates in the comparison like any
// other value, so such records only match filters that cover NoTime itself.
type Query struct {
	DimensionValues map[string]string
	TimeBuckets     map[int64]struct{}
	TimeRange       *TimeRange
}

// Validate checks that exactly one time filter form is set. It returns
// errs.ErrNoTimeFilter when neither is, and errs.ErrAmbiguousTimeFilter when
// both are.
func (q Query) Validate() error {
	hasBuckets := q.TimeBuckets != nil
	hasRange := q.TimeRange != nil

	switch {
	case !hasBuckets && !hasRange:
		return errs.ErrNoTimeFilter
	case hasBuckets && hasRange:
		return errs.ErrAmbiguousTimeFilter
	default:
		return nil
	}
}

// DimensionMatches reports whether value satisfies the query's filter for the
// given dimension.
func (q Query) DimensionMatches(dimension, value string) bool {
	want, ok := q.DimensionValues[dimension]
	if !ok || want == Star {
		return true
	}

	return want == value
}

// TimeMatches reports whether t satisfies the query's time filter. It returns
// false when no time filter is set; Validate rejects such queries up front.
func (q Query) TimeMatches(t int64) bool {
	if q.TimeBuckets != nil {
		_, ok := q.TimeBuckets[t]
		return ok
	}

	if q.TimeRange != nil {
		return q.TimeRange.Contains(t)
	}

	return false
}
