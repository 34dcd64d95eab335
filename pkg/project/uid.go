package project

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// uidNamespace is a fixed v5 UUID namespace used to synthesize stable,
// engine-plausible 64-bit UIDs for recovered resources that never carried
// one (SPEC_FULL.md §2 domain-stack wiring: deterministic v5 UUID hashed
// down to the engine's UID space).
var uidNamespace = uuid.MustParse("a9f35e3e-2f66-4f6b-9f1f-8e6b9f6e8f4e")

// Cache maps resource paths to UIDs and back, the engine's UID-indexed
// lookup table (spec.md §4.G "Remap and UID maintenance"). Writers take a
// single mutex; readers also take it, matching the teacher's conservative
// fine-grained-lock style for small maps that are not a throughput
// bottleneck (package-open-time population, not a hot per-entry path).
type Cache struct {
	mu        sync.Mutex
	pathToUID map[string]uint64
	uidToPath map[uint64]string
}

// NewCache returns an empty UID cache.
func NewCache() *Cache {
	return &Cache{pathToUID: map[string]uint64{}, uidToPath: map[uint64]string{}}
}

// UIDFor returns path's UID, synthesizing and recording a deterministic one
// via a v5 UUID over the path if none is already assigned (spec.md P8:
// "uid_for(path) is a function").
func (c *Cache) UIDFor(path string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if uid, ok := c.pathToUID[path]; ok {
		return uid
	}
	uid := synthesizeUID(path)
	c.pathToUID[path] = uid
	c.uidToPath[uid] = path
	return uid
}

// Assign records an explicit UID recovered from a package's import
// descriptor (not synthesized), overwriting any prior mapping for path.
func (c *Cache) Assign(path string, uid uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pathToUID[path] = uid
	c.uidToPath[uid] = path
}

// PathFor resolves a UID back to its recorded path.
func (c *Cache) PathFor(uid uint64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.uidToPath[uid]
	return p, ok
}

// synthesizeUID folds a v5 namespace UUID's first 8 bytes into a uint64,
// giving a value stable across runs for the same path (the one property
// spec.md P8 requires; it does not have to match the real engine's hash).
func synthesizeUID(path string) uint64 {
	id := uuid.NewSHA1(uidNamespace, []byte(path))
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(id[i])
	}
	return v
}

// WriteSidecar writes the `<path>.uid` sidecar file engine builds >= 4.3
// maintain alongside every UID-indexed script (SPEC_FULL.md §3
// "supplemented feature": per-file UID sidecars, not only the cache table).
func WriteSidecar(scriptPath string, uid uint64) error {
	return os.WriteFile(scriptPath+".uid", []byte(formatUID(uid)), 0o644)
}

func formatUID(uid uint64) string {
	return fmt.Sprintf("uid://%s", base32Encode(uid))
}

// FormatUID renders uid the same way a `.uid` sidecar does, for callers
// that need the literal without writing a file (e.g. the orchestrator's
// filesystem-cache synthesis).
func FormatUID(uid uint64) string {
	return formatUID(uid)
}

// base32Encode renders uid in base 32, most significant digit first, using
// the digits 0-9 followed by the lowercase letters a-v.
const uidAlphabet = "0123456789abcdefghijklmnopqrstuv"

func base32Encode(uid uint64) string {
	if uid == 0 {
		return "0"
	}
	var buf [13]byte
	i := len(buf)
	for uid > 0 {
		i--
		buf[i] = uidAlphabet[uid&0x1f]
		uid >>= 5
	}
	return string(buf[i:])
}
