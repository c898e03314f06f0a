// Package snapshot implements the self-describing checkpoint envelope for a
// store.
//
// The envelope is consumed by the external checkpointer and by store
// restoration; the store itself never touches files. Layout:
//
//	header (56B)  fixed fields, magic number and flags (see Header)
//	node id       u16 length + UTF-8
//	dimensions    DimensionCount x (u16 length + UTF-8), declared order
//	metrics       MetricCount x (u16 length + UTF-8), declared order
//	dictionary    per dimension: u32 entry count, then entries of
//	              u16 value length + UTF-8 + u32 id (reserved ids omitted)
//	buffer        BufferLength bytes, the valid window compressed per header
//	trailer       u64 xxHash64 of everything before it
//
// The envelope records the store's entry byte order; all numeric fields
// after the Options flags use that engine, so a big-endian store produces a
// big-endian envelope. Unmarshal is self-describing and accepts either.
package snapshot

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/dimlog/compress"
	"github.com/arloliu/dimlog/dict"
	"github.com/arloliu/dimlog/endian"
	"github.com/arloliu/dimlog/entry"
	"github.com/arloliu/dimlog/errs"
	"github.com/arloliu/dimlog/format"
	"github.com/arloliu/dimlog/internal/hash"
	"github.com/arloliu/dimlog/internal/options"
	"github.com/arloliu/dimlog/internal/pool"
)

// maxNameLen bounds every length-prefixed string in the envelope.
const maxNameLen = math.MaxUint16

// State is the complete restorable state of a store.
type State struct {
	// NodeID is the leaf node id the store belongs to.
	NodeID string

	// Dimensions and Metrics are the schema in declared order.
	Dimensions []string
	Metrics    []string

	// Dictionary holds the dynamic dictionary entries per dimension, as
	// produced by dict.Index.Export.
	Dictionary map[string][]dict.Entry

	// NextValueID is the dictionary's shared id counter watermark.
	NextValueID int32

	// RecordCount is the number of entries in Buffer.
	RecordCount int

	// MinTime and MaxTime are the store's observed time bounds.
	MinTime int64
	MaxTime int64

	// Capacity is the allocated buffer size to restore; 0 for a store that
	// never allocated.
	Capacity int

	// Buffer is the valid window, RecordCount entries long.
	Buffer []byte

	// Engine is the byte order of Buffer's entries and of the envelope.
	// A nil Engine marshals little-endian.
	Engine endian.EndianEngine
}

// config carries Marshal settings.
type config struct {
	compression format.CompressionType
}

// Option represents a functional option for Marshal.
type Option = options.Option[*config]

// WithCompression sets the codec for the buffer payload. The default is
// format.CompressionNone.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(c *config) error {
		if !compression.IsValid() {
			return fmt.Errorf("invalid snapshot compression: %s", compression)
		}
		c.compression = compression

		return nil
	})
}

// Marshal serializes st into a snapshot envelope.
func Marshal(st State, opts ...Option) ([]byte, error) {
	cfg := &config{compression: format.CompressionNone}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	engine := st.Engine
	if engine == nil {
		engine = endian.GetLittleEndianEngine()
	}

	if err := validateState(st); err != nil {
		return nil, err
	}

	codec, err := compress.CreateCodec(cfg.compression, "snapshot buffer")
	if err != nil {
		return nil, err
	}
	payload, err := codec.Compress(st.Buffer)
	if err != nil {
		return nil, err
	}

	dictSection, err := encodeDictionary(st, engine)
	if err != nil {
		return nil, err
	}

	header := NewHeader()
	header.Compression = cfg.compression
	header.RecordCount = uint32(st.RecordCount)
	header.Limit = uint32(len(st.Buffer))
	header.Capacity = uint32(st.Capacity)
	header.MinTime = st.MinTime
	header.MaxTime = st.MaxTime
	header.NextValueID = uint32(st.NextValueID)
	header.DimensionCount = uint32(len(st.Dimensions))
	header.MetricCount = uint32(len(st.Metrics))
	header.DictLength = uint32(len(dictSection))
	header.BufferLength = uint32(len(payload))
	if !endian.IsLittleEndian(engine) {
		header.SetBigEndian()
	}

	bb := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(bb)
	bb.Grow(HeaderSize + len(dictSection) + len(payload) + TrailerSize)

	bb.MustWrite(header.Bytes())
	appendString(bb, engine, st.NodeID)
	for _, name := range st.Dimensions {
		appendString(bb, engine, name)
	}
	for _, name := range st.Metrics {
		appendString(bb, engine, name)
	}
	bb.MustWrite(dictSection)
	bb.MustWrite(payload)

	bb.B = engine.AppendUint64(bb.B, hash.Checksum(bb.B))

	return slices.Clone(bb.Bytes()), nil
}

// Unmarshal parses a snapshot envelope back into a State. It validates the
// magic number, checksum, section lengths and the record-count/limit/width
// relation before returning.
//
// With CompressionNone the returned State.Buffer aliases data; callers that
// mutate the buffer or outlive data should copy it first.
func Unmarshal(data []byte) (State, error) {
	var header Header
	if err := header.Parse(data); err != nil {
		return State{}, err
	}
	engine := header.EndianEngine()

	if len(data) < HeaderSize+TrailerSize {
		return State{}, fmt.Errorf("%w: missing trailer", errs.ErrInvalidSnapshot)
	}

	body := data[:len(data)-TrailerSize]
	want := engine.Uint64(data[len(data)-TrailerSize:])
	if hash.Checksum(body) != want {
		return State{}, errs.ErrChecksumMismatch
	}

	if err := validateHeaderGeometry(header); err != nil {
		return State{}, err
	}

	offset := HeaderSize
	nodeID, offset, err := readString(body, offset, engine)
	if err != nil {
		return State{}, err
	}

	dimensions := make([]string, header.DimensionCount)
	for i := range dimensions {
		dimensions[i], offset, err = readString(body, offset, engine)
		if err != nil {
			return State{}, err
		}
	}

	metrics := make([]string, header.MetricCount)
	for i := range metrics {
		metrics[i], offset, err = readString(body, offset, engine)
		if err != nil {
			return State{}, err
		}
	}

	dictStart := offset
	dictionary, offset, err := decodeDictionary(body, offset, engine, dimensions)
	if err != nil {
		return State{}, err
	}
	if offset-dictStart != int(header.DictLength) {
		return State{}, fmt.Errorf("%w: dictionary section is %d bytes, header says %d",
			errs.ErrInvalidSnapshot, offset-dictStart, header.DictLength)
	}

	if offset+int(header.BufferLength) != len(body) {
		return State{}, fmt.Errorf("%w: buffer payload is %d bytes, header says %d",
			errs.ErrInvalidSnapshot, len(body)-offset, header.BufferLength)
	}

	codec, err := compress.CreateCodec(header.Compression, "snapshot buffer")
	if err != nil {
		return State{}, err
	}
	buffer, err := codec.Decompress(body[offset:])
	if err != nil {
		return State{}, err
	}
	if len(buffer) != int(header.Limit) {
		return State{}, fmt.Errorf("%w: decompressed buffer is %d bytes, header says %d",
			errs.ErrInvalidSnapshot, len(buffer), header.Limit)
	}

	return State{
		NodeID:      nodeID,
		Dimensions:  dimensions,
		Metrics:     metrics,
		Dictionary:  dictionary,
		NextValueID: int32(header.NextValueID),
		RecordCount: int(header.RecordCount),
		MinTime:     header.MinTime,
		MaxTime:     header.MaxTime,
		Capacity:    int(header.Capacity),
		Buffer:      buffer,
		Engine:      engine,
	}, nil
}

// validateState checks st's internal consistency before serializing.
func validateState(st State) error {
	if len(st.NodeID) > maxNameLen {
		return fmt.Errorf("%w: node id exceeds %d bytes", errs.ErrInvalidSnapshot, maxNameLen)
	}
	for _, name := range st.Dimensions {
		if len(name) > maxNameLen {
			return fmt.Errorf("%w: dimension name %q exceeds %d bytes", errs.ErrInvalidSnapshot, name, maxNameLen)
		}
	}
	for _, name := range st.Metrics {
		if len(name) > maxNameLen {
			return fmt.Errorf("%w: metric name %q exceeds %d bytes", errs.ErrInvalidSnapshot, name, maxNameLen)
		}
	}

	width := entry.WidthFor(len(st.Dimensions), len(st.Metrics))
	if len(st.Buffer) != st.RecordCount*width {
		return fmt.Errorf("%w: %d records of width %d disagree with %d buffer bytes",
			errs.ErrInvalidSnapshot, st.RecordCount, width, len(st.Buffer))
	}
	if len(st.Buffer) > st.Capacity {
		return fmt.Errorf("%w: buffer length %d exceeds capacity %d",
			errs.ErrInvalidSnapshot, len(st.Buffer), st.Capacity)
	}

	return nil
}

// validateHeaderGeometry checks the relations between header counts that do
// not depend on section contents.
func validateHeaderGeometry(h Header) error {
	width := entry.WidthFor(int(h.DimensionCount), int(h.MetricCount))
	if int(h.Limit) != int(h.RecordCount)*width {
		return fmt.Errorf("%w: limit %d disagrees with %d records of width %d",
			errs.ErrInvalidSnapshot, h.Limit, h.RecordCount, width)
	}
	if h.Limit > h.Capacity {
		return fmt.Errorf("%w: limit %d exceeds capacity %d",
			errs.ErrInvalidSnapshot, h.Limit, h.Capacity)
	}
	if h.NextValueID > math.MaxInt32 {
		return fmt.Errorf("%w: next value id %d overflows", errs.ErrInvalidSnapshot, h.NextValueID)
	}

	return nil
}

// encodeDictionary serializes the dynamic dictionary entries of every
// dimension in declared order.
func encodeDictionary(st State, engine endian.EndianEngine) ([]byte, error) {
	var out []byte
	for _, dimension := range st.Dimensions {
		entries := st.Dictionary[dimension]
		out = engine.AppendUint32(out, uint32(len(entries)))

		for _, e := range entries {
			if len(e.Value) > maxNameLen {
				return nil, fmt.Errorf("%w: dictionary value %q exceeds %d bytes",
					errs.ErrInvalidSnapshot, e.Value, maxNameLen)
			}
			out = engine.AppendUint16(out, uint16(len(e.Value)))
			out = append(out, e.Value...)
			out = engine.AppendUint32(out, uint32(e.ID))
		}
	}

	return out, nil
}

// decodeDictionary parses the dictionary section written by encodeDictionary.
func decodeDictionary(data []byte, offset int, engine endian.EndianEngine, dimensions []string) (map[string][]dict.Entry, int, error) {
	dictionary := make(map[string][]dict.Entry, len(dimensions))

	for _, dimension := range dimensions {
		if len(data) < offset+4 {
			return nil, 0, fmt.Errorf("%w: cannot read dictionary entry count for %q",
				errs.ErrInvalidSnapshot, dimension)
		}
		count := engine.Uint32(data[offset:])
		offset += 4

		entries := make([]dict.Entry, 0, count)
		for i := uint32(0); i < count; i++ {
			value, next, err := readString(data, offset, engine)
			if err != nil {
				return nil, 0, err
			}
			offset = next

			if len(data) < offset+4 {
				return nil, 0, fmt.Errorf("%w: cannot read dictionary id for %q",
					errs.ErrInvalidSnapshot, value)
			}
			id := int32(engine.Uint32(data[offset:]))
			offset += 4

			entries = append(entries, dict.Entry{Value: value, ID: id})
		}
		dictionary[dimension] = entries
	}

	return dictionary, offset, nil
}

// appendString writes a u16 length-prefixed string.
func appendString(bb *pool.ByteBuffer, engine endian.EndianEngine, s string) {
	bb.B = engine.AppendUint16(bb.B, uint16(len(s)))
	bb.MustWrite([]byte(s))
}

// readString reads a u16 length-prefixed string and returns the new offset.
func readString(data []byte, offset int, engine endian.EndianEngine) (string, int, error) {
	if len(data) < offset+2 {
		return "", 0, fmt.Errorf("%w: cannot read string length at offset %d",
			errs.ErrInvalidSnapshot, offset)
	}
	n := int(engine.Uint16(data[offset:]))
	offset += 2

	if len(data) < offset+n {
		return "", 0, fmt.Errorf("%w: cannot read %d string bytes at offset %d",
			errs.ErrInvalidSnapshot, n, offset)
	}

	return string(data[offset : offset+n]), offset + n, nil
}
