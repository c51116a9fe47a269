package reader

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mabhi256/nettrace/internal/nettrace/model"
)

func TestBitStreamReader_FixedWidthLittleEndian(t *testing.T) {
	r := New(bytes.NewReader([]byte{
		0x2a,                   // u8
		0x34, 0x12,             // u16
		0x78, 0x56, 0x34, 0x12, // u32
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // u64
	}))

	u8, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(0x2a), u8)

	u16, err := r.ReadU16LE()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), u16)

	u32, err := r.ReadU32LE()
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), u32)

	u64, err := r.ReadU64LE()
	require.NoError(t, err)
	require.Equal(t, uint64(1), u64)

	require.Equal(t, int64(15), r.Position())
}

func TestBitStreamReader_VarUInt(t *testing.T) {
	// 300 as ULEB128: 0xAC 0x02
	r := New(bytes.NewReader([]byte{0xac, 0x02}))
	v, err := r.ReadVarUInt()
	require.NoError(t, err)
	require.Equal(t, uint64(300), v)
}

func TestBitStreamReader_VarIntZigZagRoundTrip(t *testing.T) {
	cases := []struct {
		encoded []byte
		want    int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, -1},
		{[]byte{0x02}, 1},
		{[]byte{0x03}, -2},
	}
	for _, tc := range cases {
		r := New(bytes.NewReader(tc.encoded))
		v, err := r.ReadVarInt()
		require.NoError(t, err)
		require.Equal(t, tc.want, v)
	}
}

func TestBitStreamReader_Utf16NullTerminated(t *testing.T) {
	// "Hi" + terminator, little-endian UTF-16.
	r := New(bytes.NewReader([]byte{'H', 0, 'i', 0, 0, 0}))
	s, err := r.ReadUtf16NullTerminated()
	require.NoError(t, err)
	require.Equal(t, "Hi", s)
}

func TestBitStreamReader_LenPrefixedUtf8(t *testing.T) {
	r := New(bytes.NewReader([]byte{5, 0, 0, 0, 'T', 'r', 'a', 'c', 'e'}))
	s, err := r.ReadLenPrefixedUtf8()
	require.NoError(t, err)
	require.Equal(t, "Trace", s)
}

func TestBitStreamReader_AlignTo(t *testing.T) {
	r := New(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	_, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, int64(1), r.Position())

	require.NoError(t, r.AlignTo(4))
	require.Equal(t, int64(4), r.Position())

	// Already aligned: no-op.
	require.NoError(t, r.AlignTo(4))
	require.Equal(t, int64(4), r.Position())
}

func TestBitStreamReader_Guid(t *testing.T) {
	raw := []byte{
		0x78, 0x56, 0x34, 0x12, // Data1
		0x34, 0x12, // Data2
		0x78, 0x56, // Data3
		0, 1, 2, 3, 4, 5, 6, 7, // Data4
	}
	r := New(bytes.NewReader(raw))
	g, err := r.ReadGuid()
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), g.Data1)
	require.Equal(t, uint16(0x1234), g.Data2)
	require.Equal(t, uint16(0x5678), g.Data3)
	require.Equal(t, [8]byte{0, 1, 2, 3, 4, 5, 6, 7}, g.Data4)
}

func TestBitStreamReader_UnexpectedEndWrapsEOF(t *testing.T) {
	r := New(bytes.NewReader([]byte{1, 2}))
	_, err := r.ReadU32LE()
	require.Error(t, err)

	var kindErr *model.Error
	require.ErrorAs(t, err, &kindErr)
	require.Equal(t, model.UnexpectedEnd, kindErr.Kind)
}

func TestBitStreamReader_Skip(t *testing.T) {
	r := New(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	require.NoError(t, r.Skip(3))
	require.Equal(t, int64(3), r.Position())

	v, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(4), v)
}
