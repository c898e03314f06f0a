// Package compress provides compression and decompression codecs for dimlog
// snapshot buffer payloads.
//
// A snapshot envelope stores a store's valid buffer window verbatim or
// compressed with one of the supported algorithms. Fixed-width entries with
// repeated dictionary ids compress well with every algorithm here; the choice
// trades CPU for checkpoint size.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): bypass, for hot checkpoint paths
//   - Zstd (format.CompressionZstd): best ratio; cgo builds use gozstd and
//     pure-Go builds use klauspost/compress/zstd
//   - S2 (format.CompressionS2): balanced ratio and speed
//   - LZ4 (format.CompressionLZ4): fastest decompression
//   - Snappy (format.CompressionSnappy): fast block compression with modest ratio
//
// # Usage
//
//	codec, err := compress.CreateCodec(format.CompressionZstd, "snapshot buffer")
//	if err != nil {
//	    return err
//	}
//	payload, err := codec.Compress(window)
//
// All codecs are stateless values safe for concurrent use; implementations
// that benefit from reusable state (zstd, LZ4) pool it internally.
package compress
