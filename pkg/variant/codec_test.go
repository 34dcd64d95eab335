package variant

import (
	"testing"

	"github.com/gdretool/gdre-go/pkg/binlayout"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, v *Value) *Value {
	t.Helper()
	w := binlayout.NewWriter()
	require.NoError(t, Encode(w, v, Engine4))
	c := binlayout.NewCursor(w.Bytes())
	got, err := Decode(c, Engine4, NullDependencies)
	require.NoError(t, err)
	require.Equal(t, 0, c.Remaining())
	return got
}

func TestScalarRoundTrip(t *testing.T) {
	require.Equal(t, Bool(true), roundTrip(t, Bool(true)))
	require.Equal(t, Int(-42), roundTrip(t, Int(-42)))
	require.Equal(t, Float(3.5), roundTrip(t, Float(3.5)))
	require.Equal(t, String("hello"), roundTrip(t, String("hello")))
	require.Equal(t, Vector3(1, 2, 3), roundTrip(t, Vector3(1, 2, 3)))
}

func TestArrayAndDictionaryRoundTrip(t *testing.T) {
	dict := NewDictionary()
	dict.Dict.Set(String("k"), Array(Int(1), Float(2.5), String("s")))
	dict.Dict.Set(String("v"), Vector3(1, 2, 3))

	got := roundTrip(t, dict)
	require.Equal(t, KindDictionary, got.Kind)
	require.Len(t, got.Dict.Entries, 2)
}

// TestVariantTextRoundTrip matches spec.md Testable Properties, scenario 4.
func TestVariantTextRoundTrip(t *testing.T) {
	dict := NewDictionary()
	dict.Dict.Set(String("k"), Array(Int(1), Float(2.5), String("s")))
	dict.Dict.Set(String("v"), Vector3(1, 2, 3))

	text := ToText(dict)
	require.Equal(t, `{"k": [1, 2.5, "s"], "v": Vector3(1, 2, 3)}`, text)

	parsed, err := Parse(text)
	require.NoError(t, err)
	require.Equal(t, KindDictionary, parsed.Kind)

	reprinted := ToText(parsed)
	require.Equal(t, text, reprinted)
}

func TestObjectReferenceText(t *testing.T) {
	require.Equal(t, "SubResource(1)", ToText(InternalRef("1")))
	require.Equal(t, `ExtResource(res://a.tres)`, ToText(ExternalRef("res://a.tres", "Texture2D")))
}

func TestPackedArraysRoundTrip(t *testing.T) {
	v := &Value{Kind: KindPackedInt32Array, PackedInts: []int32{1, 2, 3}}
	got := roundTrip(t, v)
	require.Equal(t, []int32{1, 2, 3}, got.PackedInts)

	bytesVal := &Value{Kind: KindPackedByteArray, PackedBytes: []byte{0, 1, 2, 255}}
	gotBytes := roundTrip(t, bytesVal)
	require.Equal(t, []byte{0, 1, 2, 255}, gotBytes.PackedBytes)
}
