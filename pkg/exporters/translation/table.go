package translation

import (
	"fmt"
	"strings"

	"github.com/gdretool/gdre-go/pkg/resource"
	"github.com/gdretool/gdre-go/pkg/variant"
)

// Entry is one recovered message: the original key (or a placeholder if it
// could not be recovered) and its translated value.
type Entry struct {
	Key       string
	Value     string
	Recovered bool
}

// Table is a translation resource's recovered content for one locale.
type Table struct {
	Locale      string
	Entries     []Entry
	MissingKeys int
}

// ParsePlain reads an uncompiled `Translation` resource, whose "messages"
// property is a plain key->value Dictionary (spec.md §4.F, plain path:
// no key recovery needed).
func ParsePlain(r *resource.Resource) (*Table, error) {
	t := &Table{}
	if v, ok := r.Get("locale"); ok {
		t.Locale = v.Str
	}
	msgs, ok := r.Get("messages")
	if !ok || msgs.Kind != variant.KindDictionary {
		return t, nil
	}
	for _, e := range msgs.Dict.Entries {
		if e.Key.Kind != variant.KindString {
			continue
		}
		val := ""
		if e.Value.Kind == variant.KindString {
			val = e.Value.Str
		}
		t.Entries = append(t.Entries, Entry{Key: e.Key.Str, Value: val, Recovered: true})
	}
	return t, nil
}

// ParseOptimized reads a compiled `OptimizedTranslation` resource, whose
// "hash_table" (PackedInt32Array of per-message GodotHash values, 0 for
// empty buckets) and "bucket_table" (PackedStringArray of translated
// values in the same order) carry no original key text at all (spec.md
// §4.F, "uses collected translation key hints when keys were
// hashed-away"). hints resolves as many hashes back to source keys as the
// script exporter has observed; everything else is reported as missing.
func ParseOptimized(r *resource.Resource, hints *KeyHintCollector) (*Table, error) {
	t := &Table{}
	if v, ok := r.Get("locale"); ok {
		t.Locale = v.Str
	}
	hashTable, ok := r.Get("hash_table")
	if !ok || hashTable.Kind != variant.KindPackedInt32Array {
		return t, nil
	}
	values, _ := r.Get("bucket_table")

	for i, h := range hashTable.PackedInts {
		if h == 0 {
			continue // empty bucket
		}
		hash := uint32(h)
		val := ""
		if values != nil && values.Kind == variant.KindPackedStringArray && i < len(values.PackedStrings) {
			val = values.PackedStrings[i]
		}
		if key, found := hints.Lookup(hash); found {
			t.Entries = append(t.Entries, Entry{Key: key, Value: val, Recovered: true})
			continue
		}
		t.Entries = append(t.Entries, Entry{Key: fmt.Sprintf("UNKNOWN_%08x", hash), Value: val, Recovered: false})
		t.MissingKeys++
	}
	return t, nil
}

// ToCSV renders t in the engine's CSV translation-table input format: a
// header row of "keys" then one locale column, one row per entry (spec.md
// §4.F: "Converts compiled string tables back to CSV").
func ToCSV(t *Table) string {
	var b strings.Builder
	b.WriteString("keys")
	if t.Locale != "" {
		b.WriteString(",")
		b.WriteString(t.Locale)
	}
	b.WriteString("\n")
	for _, e := range t.Entries {
		b.WriteString(csvField(e.Key))
		b.WriteString(",")
		b.WriteString(csvField(e.Value))
		b.WriteString("\n")
	}
	return b.String()
}

func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
