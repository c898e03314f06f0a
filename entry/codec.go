// Package entry implements the fixed-width binary codec for rollup records.
//
// Every entry occupies the same number of bytes for a given schema:
//
//	[4B value id × dimensions][8B time][4B metric value × metrics]
//
// Dimension ids come from the store's dictionary, times are two's-complement
// int64 with rollup.NoTime marking absence, and metric values are int32, all
// in the codec's configured byte order. The constant width is what lets the
// scanner walk a buffer without any framing.
package entry

import (
	"slices"

	"github.com/arloliu/dimlog/dict"
	"github.com/arloliu/dimlog/endian"
	"github.com/arloliu/dimlog/rollup"
)

const (
	valueIDSize = 4
	timeSize    = 8
	metricSize  = 4
)

// Codec encodes and decodes entries for one schema. It is not internally
// synchronized; the owning store's lock serializes access.
type Codec struct {
	dimensions   []string
	metrics      []string
	index        *dict.Index
	engine       endian.EndianEngine
	timeOffset   int
	metricOffset int
	width        int
}

// New creates a codec for the given schema. Dimension order defines the id
// column order and metric order the value column order.
func New(dimensions, metrics []string, index *dict.Index, engine endian.EndianEngine) *Codec {
	c := &Codec{
		dimensions: slices.Clone(dimensions),
		metrics:    slices.Clone(metrics),
		index:      index,
		engine:     engine,
	}
	c.timeOffset = len(c.dimensions) * valueIDSize
	c.metricOffset = c.timeOffset + timeSize
	c.width = WidthFor(len(c.dimensions), len(c.metrics))

	return c
}

// WidthFor returns the entry width in bytes for a schema with the given
// dimension and metric counts.
func WidthFor(dimensions, metrics int) int {
	return dimensions*valueIDSize + timeSize + metrics*metricSize
}

// Width returns the fixed entry width in bytes.
func (c *Codec) Width() int {
	return c.width
}

// EncodeTo writes one entry into dst, which must hold at least Width bytes.
// The wildcard value maps to rollup.StarValueID without touching the
// dictionary; any other value is interned, assigning a new id on first sight.
// A dimension or metric absent from the record's maps encodes as the
// empty-string value or a zero metric.
func (c *Codec) EncodeTo(dst []byte, rec rollup.Record) error {
	for i, dimension := range c.dimensions {
		value := rec.Dimensions[dimension]

		id := rollup.StarValueID
		if value != rollup.Star {
			var err error
			id, err = c.index.GetOrCreateID(dimension, value)
			if err != nil {
				return err
			}
		}

		c.engine.PutUint32(dst[i*valueIDSize:], uint32(id))
	}

	c.engine.PutUint64(dst[c.timeOffset:], uint64(rec.TimeOrNone()))

	for i, metric := range c.metrics {
		c.engine.PutUint32(dst[c.metricOffset+i*metricSize:], uint32(rec.Metrics[metric]))
	}

	return nil
}

// Decode reads one entry from src, which must hold at least Width bytes. A
// stored time equal to rollup.NoTime decodes to an absent time. Ids without a
// dictionary entry fail with errs.ErrUnknownValueID.
func (c *Codec) Decode(src []byte) (rollup.Record, error) {
	dimensions := make(map[string]string, len(c.dimensions))
	for i, dimension := range c.dimensions {
		value, err := c.index.ValueOf(dimension, c.ValueID(src, i))
		if err != nil {
			return rollup.Record{}, err
		}
		dimensions[dimension] = value
	}

	metrics := make(map[string]int32, len(c.metrics))
	for i, metric := range c.metrics {
		metrics[metric] = c.Metric(src, i)
	}

	rec := rollup.Record{Dimensions: dimensions, Metrics: metrics}
	if t := c.Time(src); t != rollup.NoTime {
		rec.Time = &t
	}

	return rec, nil
}

// ValueID reads the dimension id at column dimIdx without consulting the
// dictionary.
func (c *Codec) ValueID(src []byte, dimIdx int) int32 {
	return int32(c.engine.Uint32(src[dimIdx*valueIDSize:]))
}

// Time reads the entry's time field; rollup.NoTime marks an absent time.
func (c *Codec) Time(src []byte) int64 {
	return int64(c.engine.Uint64(src[c.timeOffset:]))
}

// Metric reads the metric value at column metricIdx.
func (c *Codec) Metric(src []byte, metricIdx int) int32 {
	return int32(c.engine.Uint32(src[c.metricOffset+metricIdx*metricSize:]))
}

// Dimensions returns the codec's dimension names in column order.
func (c *Codec) Dimensions() []string {
	return c.dimensions
}

// Metrics returns the codec's metric names in column order.
func (c *Codec) Metrics() []string {
	return c.metrics
}
