package compress

// ZstdCompressor provides Zstandard compression for snapshot payloads.
//
// Zstd offers the best compression ratio of the supported algorithms, making
// it the default choice for checkpoints that travel over the network or sit
// in cold storage. Builds with cgo use the libzstd binding; pure-Go builds
// use the klauspost implementation with pooled encoder/decoder state.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
