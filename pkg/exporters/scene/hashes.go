// Package scene implements the scene exporter: it delegates the heavy
// lifting to the binary<->text resource exporter and additionally records
// a content hash for every embedded image it sees, so the project
// reconstructor can tell an unchanged embedded image apart from one that
// needs a fresh import (spec.md §4.F, "Scene").
package scene

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
)

// ImageHashRegistry records the content hash of every embedded image a
// scene export has already emitted. The reconstructor consults it to skip
// re-importing an image whose bytes it has seen before under a different
// scene, the same way KeyHintCollector lets the script exporter hand the
// translation exporter recovered keys (pkg/exporters/translation).
type ImageHashRegistry struct {
	mu     sync.Mutex
	byHash map[string]string // content hash -> first resource path that produced it
}

// NewImageHashRegistry returns an empty registry.
func NewImageHashRegistry() *ImageHashRegistry {
	return &ImageHashRegistry{byHash: map[string]string{}}
}

// Record hashes data and associates it with sourcePath if this is the
// first time that hash has been seen. It returns the hash and whether an
// image with identical content has already been recorded under a
// different path.
func (r *ImageHashRegistry) Record(sourcePath string, data []byte) (hash string, duplicate bool) {
	sum := md5.Sum(data)
	hash = hex.EncodeToString(sum[:])

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byHash[hash]; ok {
		return hash, existing != sourcePath
	}
	r.byHash[hash] = sourcePath
	return hash, false
}

// Lookup returns the first path recorded under hash, if any.
func (r *ImageHashRegistry) Lookup(hash string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path, ok := r.byHash[hash]
	return path, ok
}
