package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()

	require.Equal(t, EndianEngine(binary.LittleEndian), engine)
	require.True(t, IsLittleEndian(engine))
}

func TestGetBigEndianEngine(t *testing.T) {
	engine := GetBigEndianEngine()

	require.Equal(t, EndianEngine(binary.BigEndian), engine)
	require.False(t, IsLittleEndian(engine))
}

func TestEngineByteOrder(t *testing.T) {
	buf := make([]byte, 4)

	GetLittleEndianEngine().PutUint32(buf, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)

	GetBigEndianEngine().PutUint32(buf, 0x01020304)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf)
}

func TestEngineAppend(t *testing.T) {
	t.Run("little endian", func(t *testing.T) {
		engine := GetLittleEndianEngine()

		out := engine.AppendUint16(nil, 0x0102)
		out = engine.AppendUint64(out, 1)

		require.Equal(t, []byte{0x02, 0x01, 1, 0, 0, 0, 0, 0, 0, 0}, out)
	})

	t.Run("big endian", func(t *testing.T) {
		engine := GetBigEndianEngine()

		out := engine.AppendUint16(nil, 0x0102)
		out = engine.AppendUint64(out, 1)

		require.Equal(t, []byte{0x01, 0x02, 0, 0, 0, 0, 0, 0, 0, 1}, out)
	})
}

func TestEngineRoundTrip(t *testing.T) {
	for _, engine := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		buf := make([]byte, 8)

		engine.PutUint64(buf, 0xdeadbeefcafef00d)
		require.Equal(t, uint64(0xdeadbeefcafef00d), engine.Uint64(buf))

		engine.PutUint32(buf[:4], 42)
		require.Equal(t, uint32(42), engine.Uint32(buf[:4]))
	}
}
