// Package errs defines the sentinel errors shared across dimlog packages.
//
// Call sites wrap these with fmt.Errorf("%w: ...", err) to attach context while
// keeping errors.Is matching intact.
package errs

import "errors"

// Store construction errors.
var (
	// ErrNoDimensions indicates a store was created without any dimension names.
	ErrNoDimensions = errors.New("store requires at least one dimension")

	// ErrNoMetrics indicates a store was created without any metric names.
	ErrNoMetrics = errors.New("store requires at least one metric")

	// ErrInvalidBufferSize indicates the configured buffer size or growth
	// increment cannot hold a single entry.
	ErrInvalidBufferSize = errors.New("invalid buffer size")

	// ErrInvalidLoadFactor indicates the target load factor is outside (0, 1].
	ErrInvalidLoadFactor = errors.New("invalid target load factor")
)

// Query errors.
var (
	// ErrNoTimeFilter indicates a query with neither time buckets nor a time range.
	ErrNoTimeFilter = errors.New("query requires a time filter")

	// ErrAmbiguousTimeFilter indicates a query with both time buckets and a time
	// range; exactly one form must be set.
	ErrAmbiguousTimeFilter = errors.New("query has both time buckets and a time range")
)

// Dictionary errors.
var (
	// ErrUnknownDimension indicates a dimension name the store was not created with.
	ErrUnknownDimension = errors.New("unknown dimension")

	// ErrUnknownValueID indicates a stored value id with no dictionary entry.
	// Ids are only produced by the store itself, so this signals buffer or
	// dictionary corruption rather than a caller mistake.
	ErrUnknownValueID = errors.New("unknown dictionary value id")

	// ErrInvalidDictionary indicates a dictionary dump that cannot be restored:
	// an id below the first dynamic id, at or above the next-id watermark, or a
	// duplicate value or id within one dimension.
	ErrInvalidDictionary = errors.New("invalid dictionary dump")
)

// Record merge errors.
var (
	// ErrNothingToMerge indicates a merge over an empty record group.
	ErrNothingToMerge = errors.New("no records to merge")

	// ErrMergeKeyMismatch indicates records with different grouping keys were
	// passed to a single merge.
	ErrMergeKeyMismatch = errors.New("records do not share a grouping key")
)

// Snapshot envelope errors.
var (
	// ErrInvalidHeaderSize indicates the envelope is shorter than its fixed header.
	ErrInvalidHeaderSize = errors.New("invalid snapshot header size")

	// ErrInvalidMagicNumber indicates the envelope does not start with the
	// dimlog snapshot magic number.
	ErrInvalidMagicNumber = errors.New("invalid snapshot magic number")

	// ErrChecksumMismatch indicates the envelope trailer checksum does not match
	// its content.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrInvalidSnapshot indicates a structurally malformed envelope: truncated
	// sections, section lengths disagreeing with the header, or a buffer whose
	// length is not a whole number of entries.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
