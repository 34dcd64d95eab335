package translation

import (
	"testing"

	"github.com/gdretool/gdre-go/pkg/resource"
	"github.com/gdretool/gdre-go/pkg/variant"
	"github.com/stretchr/testify/require"
)

func TestGodotHashStable(t *testing.T) {
	require.Equal(t, GodotHash("hello"), GodotHash("hello"))
	require.NotEqual(t, GodotHash("hello"), GodotHash("world"))
}

func TestParsePlainTranslation(t *testing.T) {
	r := &resource.Resource{Type: "Translation"}
	r.Set("locale", variant.String("en"))
	msgs := variant.NewDictionary()
	msgs.Dict.Set(variant.String("HELLO"), variant.String("Hello"))
	r.Set("messages", msgs)

	table, err := ParsePlain(r)
	require.NoError(t, err)
	require.Equal(t, "en", table.Locale)
	require.Equal(t, 0, table.MissingKeys)
	require.Equal(t, []Entry{{Key: "HELLO", Value: "Hello", Recovered: true}}, table.Entries)
}

// TestParseOptimizedRecoversHintedKeys matches spec.md §4.F's partial
// recovery behavior: a hinted key resolves, an unhinted hash does not.
func TestParseOptimizedRecoversHintedKeys(t *testing.T) {
	hints := NewKeyHintCollector()
	hints.Add("HELLO")

	r := &resource.Resource{Type: "OptimizedTranslation"}
	r.Set("locale", variant.String("en"))
	r.Set("hash_table", &variant.Value{Kind: variant.KindPackedInt32Array, PackedInts: []int32{
		int32(GodotHash("HELLO")), 0, int32(GodotHash("UNSEEN")),
	}})
	r.Set("bucket_table", &variant.Value{Kind: variant.KindPackedStringArray, PackedStrings: []string{
		"Hello", "", "???",
	}})

	table, err := ParseOptimized(r, hints)
	require.NoError(t, err)
	require.Len(t, table.Entries, 2)
	require.Equal(t, 1, table.MissingKeys)
	require.Equal(t, "HELLO", table.Entries[0].Key)
	require.True(t, table.Entries[0].Recovered)
	require.False(t, table.Entries[1].Recovered)
}

func TestToCSVQuotesSpecialChars(t *testing.T) {
	table := &Table{Locale: "en", Entries: []Entry{{Key: "A,B", Value: "x\"y", Recovered: true}}}
	csv := ToCSV(table)
	require.Contains(t, csv, `"A,B"`)
	require.Contains(t, csv, `"x""y"`)
}
