// Package translation implements the translation-table exporter: compiled
// string tables back to CSV, using collected key hints when the original
// keys were hashed away (spec.md §4.F, "Translation table").
package translation

import "sync"

// GodotHash reproduces the engine's String::hash() (a djb2 variant),
// the function OptimizedTranslation uses to bucket message keys. It is
// the only way to match a candidate recovered key against a compiled
// table's stored hash.
func GodotHash(s string) uint32 {
	var hash uint32 = 5381
	for i := 0; i < len(s); i++ {
		hash = ((hash << 5) + hash) + uint32(s[i])
	}
	return hash
}

// KeyHintCollector accumulates candidate translation keys recovered from
// decompiled script source (calls like `tr("some.key")`), indexed by their
// GodotHash so the translation exporter can match them against a compiled
// table's hash buckets (spec.md §4.F: "uses collected translation key
// hints when keys were hashed-away"). internal/exportregistry.New shares
// one collector between the script and translation exporters, hence the
// lock: script exports run concurrently and all feed the same collector.
type KeyHintCollector struct {
	mu    sync.Mutex
	byHash map[uint32]string
}

// NewKeyHintCollector returns an empty collector.
func NewKeyHintCollector() *KeyHintCollector {
	return &KeyHintCollector{byHash: map[uint32]string{}}
}

// Add records candidate as a possible original key, keyed by its hash.
func (c *KeyHintCollector) Add(candidate string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byHash[GodotHash(candidate)] = candidate
}

// Lookup resolves hash to a previously hinted key, if any.
func (c *KeyHintCollector) Lookup(hash uint32) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k, ok := c.byHash[hash]
	return k, ok
}
