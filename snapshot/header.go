package snapshot

import (
	"github.com/arloliu/dimlog/endian"
	"github.com/arloliu/dimlog/errs"
	"github.com/arloliu/dimlog/format"
)

const (
	// HeaderSize is the fixed envelope header size in bytes.
	HeaderSize = 56

	// TrailerSize is the size of the xxHash64 checksum trailer in bytes.
	TrailerSize = 8

	// EndiannessMask selects the endianness bit of the Options field:
	// 0 means little-endian, 1 means big-endian.
	EndiannessMask = 0x0001

	// MagicNumberMask selects the magic number bits (4-15) of the Options field.
	MagicNumberMask = 0xFFF0

	// MagicSnapshotV1Opt is the version 1 magic number for the snapshot format.
	MagicSnapshotV1Opt = 0xDA10
)

// Header is the fixed-size section at the start of a snapshot envelope.
//
// The Options field is always encoded little-endian; its endianness bit
// selects the engine for every other numeric field of the envelope, which is
// also the byte order of the entries inside the buffer payload.
type Header struct {
	// Options packs the magic number (bits 4-15), reserved bits (1-3, zero)
	// and the endianness bit (bit 0).
	Options uint16

	// Compression identifies the codec applied to the buffer payload.
	Compression format.CompressionType

	// RecordCount is the number of entries in the buffer payload.
	RecordCount uint32
	// Limit is the decompressed payload length in bytes, always
	// RecordCount times the schema's entry width.
	Limit uint32
	// Capacity is the store's allocated buffer size to restore.
	Capacity uint32

	// MinTime and MaxTime carry the store's observed time bounds.
	MinTime int64
	MaxTime int64

	// NextValueID is the dictionary's shared id counter watermark.
	NextValueID uint32

	// DimensionCount and MetricCount size the name tables that follow the
	// header.
	DimensionCount uint32
	MetricCount    uint32

	// DictLength is the byte length of the dictionary section.
	DictLength uint32
	// BufferLength is the byte length of the (possibly compressed) buffer
	// payload.
	BufferLength uint32
}

// NewHeader creates a header with the v1 magic number, little-endian byte
// order and no compression.
func NewHeader() Header {
	return Header{
		Options:     MagicSnapshotV1Opt,
		Compression: format.CompressionNone,
	}
}

// IsLittleEndian reports whether the envelope's numeric fields and buffer
// entries are little-endian.
func (h Header) IsLittleEndian() bool {
	return (h.Options & EndiannessMask) == 0
}

// SetLittleEndian marks the envelope little-endian.
func (h *Header) SetLittleEndian() {
	h.Options &^= uint16(EndiannessMask)
}

// SetBigEndian marks the envelope big-endian.
func (h *Header) SetBigEndian() {
	h.Options |= EndiannessMask
}

// MagicNumber returns the magic number bits of the Options field.
func (h Header) MagicNumber() uint16 {
	return h.Options & MagicNumberMask
}

// EndianEngine returns the engine selected by the endianness bit.
func (h Header) EndianEngine() endian.EndianEngine {
	if h.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

// Validate checks the magic number and compression type.
func (h Header) Validate() error {
	if h.MagicNumber() != MagicSnapshotV1Opt {
		return errs.ErrInvalidMagicNumber
	}

	if !h.Compression.IsValid() {
		return errs.ErrInvalidSnapshot
	}

	return nil
}

// Bytes serializes the header into a new HeaderSize byte slice.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := h.EndianEngine()

	// The Options field is little-endian regardless of the envelope order so
	// parsers can bootstrap the engine from it.
	b[0] = byte(h.Options)
	b[1] = byte(h.Options >> 8)
	b[2] = byte(h.Compression)
	b[3] = 0 // reserved

	engine.PutUint32(b[4:8], h.RecordCount)
	engine.PutUint32(b[8:12], h.Limit)
	engine.PutUint32(b[12:16], h.Capacity)
	engine.PutUint64(b[16:24], uint64(h.MinTime))
	engine.PutUint64(b[24:32], uint64(h.MaxTime))
	engine.PutUint32(b[32:36], h.NextValueID)
	engine.PutUint32(b[36:40], h.DimensionCount)
	engine.PutUint32(b[40:44], h.MetricCount)
	engine.PutUint32(b[44:48], h.DictLength)
	engine.PutUint32(b[48:52], h.BufferLength)
	// b[52:56] reserved

	return b
}

// Parse deserializes the header from data, which must hold at least
// HeaderSize bytes, and validates it.
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Compression = format.CompressionType(data[2])

	engine := h.EndianEngine()

	h.RecordCount = engine.Uint32(data[4:8])
	h.Limit = engine.Uint32(data[8:12])
	h.Capacity = engine.Uint32(data[12:16])
	h.MinTime = int64(engine.Uint64(data[16:24]))
	h.MaxTime = int64(engine.Uint64(data[24:32]))
	h.NextValueID = engine.Uint32(data[32:36])
	h.DimensionCount = engine.Uint32(data[36:40])
	h.MetricCount = engine.Uint32(data[40:44])
	h.DictLength = engine.Uint32(data[44:48])
	h.BufferLength = engine.Uint32(data[48:52])

	return h.Validate()
}
