// Package endian provides byte order utilities for binary encoding and decoding.
//
// It combines the standard library's binary.ByteOrder and binary.AppendByteOrder
// into a single EndianEngine interface so codecs can both write into fixed slots
// and append to growing buffers through one value.
//
// # Basic Usage
//
// Most users should use GetLittleEndianEngine() as it's the default for dimlog:
//
//	engine := endian.GetLittleEndianEngine()
//	engine.PutUint32(slot[0:4], id)
//	buf = engine.AppendUint64(buf, word)
//
// For interoperability with big-endian consumers:
//
//	engine := endian.GetBigEndianEngine()
//
// # Thread Safety
//
// The returned EndianEngine instances are immutable and stateless, and safe for
// concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library, making it fully compatible with existing Go code while
// providing access to both read/write and append operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// IsLittleEndian reports whether engine is the little-endian engine.
func IsLittleEndian(engine EndianEngine) bool {
	return engine == EndianEngine(binary.LittleEndian)
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
