package entry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dimlog/dict"
	"github.com/arloliu/dimlog/endian"
	"github.com/arloliu/dimlog/errs"
	"github.com/arloliu/dimlog/rollup"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()

	dimensions := []string{"country", "browser"}
	metrics := []string{"clicks", "views"}

	return New(dimensions, metrics, dict.New(dimensions), endian.GetLittleEndianEngine())
}

func TestCodec_Width(t *testing.T) {
	c := newTestCodec(t)

	// 2 dimensions * 4 + 8 time + 2 metrics * 4
	require.Equal(t, 24, c.Width())
}

func TestCodec_EncodeDecode(t *testing.T) {
	t.Run("Timed record round trip", func(t *testing.T) {
		c := newTestCodec(t)
		rec := rollup.NewTimedRecord(
			map[string]string{"country": "US", "browser": "firefox"},
			1000,
			map[string]int32{"clicks": 10, "views": -3},
		)

		buf := make([]byte, c.Width())
		require.NoError(t, c.EncodeTo(buf, rec))

		decoded, err := c.Decode(buf)
		require.NoError(t, err)
		require.Equal(t, rec.Dimensions, decoded.Dimensions)
		require.Equal(t, rec.Metrics, decoded.Metrics)
		require.True(t, decoded.HasTime())
		require.Equal(t, int64(1000), *decoded.Time)
	})

	t.Run("Absent time round trip", func(t *testing.T) {
		c := newTestCodec(t)
		rec := rollup.NewRecord(
			map[string]string{"country": "US", "browser": "safari"},
			map[string]int32{"clicks": 1, "views": 2},
		)

		buf := make([]byte, c.Width())
		require.NoError(t, c.EncodeTo(buf, rec))
		require.Equal(t, rollup.NoTime, c.Time(buf))

		decoded, err := c.Decode(buf)
		require.NoError(t, err)
		require.False(t, decoded.HasTime())
	})

	t.Run("Negative time round trip", func(t *testing.T) {
		c := newTestCodec(t)
		rec := rollup.NewTimedRecord(
			map[string]string{"country": "US", "browser": "safari"},
			-42,
			map[string]int32{"clicks": 1},
		)

		buf := make([]byte, c.Width())
		require.NoError(t, c.EncodeTo(buf, rec))
		require.Equal(t, int64(-42), c.Time(buf))
	})
}

func TestCodec_EncodeTo_Wildcard(t *testing.T) {
	dimensions := []string{"country", "browser"}
	ix := dict.New(dimensions)
	c := New(dimensions, []string{"clicks"}, ix, endian.GetLittleEndianEngine())

	rec := rollup.NewRecord(
		map[string]string{"country": rollup.Star, "browser": rollup.Star},
		map[string]int32{"clicks": 1},
	)

	buf := make([]byte, c.Width())
	require.NoError(t, c.EncodeTo(buf, rec))

	require.Equal(t, rollup.StarValueID, c.ValueID(buf, 0))
	require.Equal(t, rollup.StarValueID, c.ValueID(buf, 1))
	// The wildcard bypasses the dictionary and consumes no ids.
	require.Equal(t, rollup.FirstValueID, ix.NextID())
}

func TestCodec_FieldReaders(t *testing.T) {
	dimensions := []string{"country", "browser"}
	ix := dict.New(dimensions)
	c := New(dimensions, []string{"clicks", "views"}, ix, endian.GetLittleEndianEngine())

	rec := rollup.NewTimedRecord(
		map[string]string{"country": "US", "browser": rollup.Other},
		7,
		map[string]int32{"clicks": 5, "views": 9},
	)

	buf := make([]byte, c.Width())
	require.NoError(t, c.EncodeTo(buf, rec))

	us, err := ix.GetOrCreateID("country", "US")
	require.NoError(t, err)
	require.Equal(t, us, c.ValueID(buf, 0))
	require.Equal(t, rollup.OtherValueID, c.ValueID(buf, 1))
	require.Equal(t, int64(7), c.Time(buf))
	require.Equal(t, int32(5), c.Metric(buf, 0))
	require.Equal(t, int32(9), c.Metric(buf, 1))
}

func TestCodec_Decode_UnknownID(t *testing.T) {
	c := newTestCodec(t)

	buf := make([]byte, c.Width())
	// An id the dictionary never assigned.
	endian.GetLittleEndianEngine().PutUint32(buf[0:4], 42)

	_, err := c.Decode(buf)
	require.ErrorIs(t, err, errs.ErrUnknownValueID)
}

func TestCodec_BigEndian(t *testing.T) {
	dimensions := []string{"country"}
	ix := dict.New(dimensions)
	c := New(dimensions, []string{"clicks"}, ix, endian.GetBigEndianEngine())

	rec := rollup.NewTimedRecord(map[string]string{"country": "US"}, 258, map[string]int32{"clicks": 1})
	buf := make([]byte, c.Width())
	require.NoError(t, c.EncodeTo(buf, rec))

	// Big-endian: 258 = 0x0102 lands in the low-order tail of the time field.
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, buf[4:12])

	decoded, err := c.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, int64(258), *decoded.Time)
}
