package cipher

import (
	"bytes"
	"testing"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	key := testKey()
	iv := make([]byte, IVSize)
	for i := range iv {
		iv[i] = byte(0xA0 + i)
	}
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	wrapped, err := Wrap(key, iv, ModeAES256CFB, plaintext)
	require.NoError(t, err)

	got, err := Unwrap(key, wrapped)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestUnwrapWrongKeyIsUnauthorized(t *testing.T) {
	key := testKey()
	iv := make([]byte, IVSize)
	wrapped, err := Wrap(key, iv, ModeAES256CFB, []byte("secret"))
	require.NoError(t, err)

	wrongKey := testKey()
	wrongKey[0] ^= 0xFF
	_, err = Unwrap(wrongKey, wrapped)
	require.ErrorIs(t, err, gdreerrors.ErrUnauthorized)
}

func TestUnwrapMissingKey(t *testing.T) {
	_, err := Unwrap(nil, []byte("anything"))
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestStreamReader(t *testing.T) {
	key := testKey()
	iv := make([]byte, IVSize)
	plaintext := bytes.Repeat([]byte("x"), 1024)
	wrapped, err := Wrap(key, iv, ModeAES256CFB, plaintext)
	require.NoError(t, err)

	sr, err := NewStreamReader(key, bytes.NewReader(wrapped))
	require.NoError(t, err)
	out := make([]byte, len(plaintext))
	_, err = sr.Read(out)
	require.NoError(t, err)
	require.Equal(t, plaintext, out)
}
