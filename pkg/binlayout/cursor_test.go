package binlayout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU32(0xdeadbeef)
	w.WriteU64(0x0102030405060708)
	w.WriteF32(1.5)
	require.NoError(t, WriteLengthPrefixedString(w, "hello", UTF8))

	c := NewCursor(w.Bytes())
	u32, err := c.U32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), u32)

	u64, err := c.U64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), u64)

	f32, err := c.F32()
	require.NoError(t, err)
	require.Equal(t, float32(1.5), f32)

	s, err := ReadLengthPrefixedString(c, UTF8)
	require.NoError(t, err)
	require.Equal(t, "hello", s)
	require.Equal(t, 0, c.Remaining())
}

func TestCursorOverreadIsTruncated(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})
	_, err := c.Bytes(10)
	require.Error(t, err)
}

func TestStringEncodings(t *testing.T) {
	for _, enc := range []StringEncoding{UTF8, UTF16LE, UTF32LE} {
		raw, err := EncodeString("hi é", enc)
		require.NoError(t, err)
		got, err := DecodeString(raw, enc)
		require.NoError(t, err)
		require.Equal(t, "hi é", got)
	}
}

func TestIsZeroMD5(t *testing.T) {
	var z [16]byte
	require.True(t, IsZeroMD5(z))
	z[5] = 1
	require.False(t, IsZeroMD5(z))
}
