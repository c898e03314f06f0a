package store

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/dimlog/endian"
	"github.com/arloliu/dimlog/errs"
	"github.com/arloliu/dimlog/internal/options"
)

const (
	// DefaultBufferSize is the initial buffer capacity when WithBufferSize is
	// not given.
	DefaultBufferSize = 16 * 1024 // 16KiB

	// DefaultTargetLoadFactor is the post-compaction load factor above which
	// the buffer grows.
	DefaultTargetLoadFactor = 0.8
)

// config carries the construction-time settings of a store. Settings are
// fixed for the store's lifetime.
type config struct {
	bufferSize       int
	expectedRecords  int // 0 means "size by bufferSize"
	growthIncrement  int // 0 means "same as bufferSize"
	targetLoadFactor float64
	directBuffer     bool
	engine           endian.EndianEngine
	logger           *slog.Logger
}

func newConfig() *config {
	return &config{
		bufferSize:       DefaultBufferSize,
		targetLoadFactor: DefaultTargetLoadFactor,
		engine:           endian.GetLittleEndianEngine(),
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option represents a functional option for configuring a Store.
type Option = options.Option[*config]

// WithBufferSize sets the initial buffer capacity in bytes. The size must
// hold at least one entry; the exact lower bound depends on the schema and is
// checked at construction.
func WithBufferSize(size int) Option {
	return options.New(func(c *config) error {
		if size <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidBufferSize, size)
		}
		c.bufferSize = size

		return nil
	})
}

// WithExpectedRecords sizes the initial buffer to hold exactly count entries,
// as an alternative to WithBufferSize. Entries are fixed-width, so the byte
// size follows exactly from the schema; when both options are given the
// record count wins.
func WithExpectedRecords(count int) Option {
	return options.New(func(c *config) error {
		if count <= 0 {
			return fmt.Errorf("%w: expected record count %d", errs.ErrInvalidBufferSize, count)
		}
		c.expectedRecords = count

		return nil
	})
}

// WithGrowthIncrement sets the number of bytes added to the capacity on each
// buffer expansion. It defaults to the initial buffer size.
func WithGrowthIncrement(size int) Option {
	return options.New(func(c *config) error {
		if size <= 0 {
			return fmt.Errorf("%w: growth increment %d", errs.ErrInvalidBufferSize, size)
		}
		c.growthIncrement = size

		return nil
	})
}

// WithTargetLoadFactor sets the compaction effectiveness threshold in (0, 1].
// After an in-place compaction, the buffer grows only when newLimit/oldLimit
// exceeds this factor.
func WithTargetLoadFactor(factor float64) Option {
	return options.New(func(c *config) error {
		if factor <= 0 || factor > 1 {
			return fmt.Errorf("%w: %v not in (0, 1]", errs.ErrInvalidLoadFactor, factor)
		}
		c.targetLoadFactor = factor

		return nil
	})
}

// WithDirectBuffer allocates the buffer outside the Go heap through an
// anonymous memory mapping where the platform supports it, falling back to
// the heap elsewhere. Useful for very large leaves that would otherwise
// lengthen garbage collection cycles.
func WithDirectBuffer(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.directBuffer = enabled
	})
}

// WithLittleEndian sets little-endian entry byte order. It is the default.
func WithLittleEndian() Option {
	return options.NoError(func(c *config) {
		c.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian sets big-endian entry byte order, for interoperability with
// consumers that expect network order in Encode output.
func WithBigEndian() Option {
	return options.NoError(func(c *config) {
		c.engine = endian.GetBigEndianEngine()
	})
}

// WithLogger sets the structured logger for buffer management debug events.
// The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}
