package pck

import (
	"crypto/rand"
	"fmt"
	"sort"

	"github.com/gdretool/gdre-go/pkg/binlayout"
	"github.com/gdretool/gdre-go/pkg/cipher"
)

// BuildEntry is one input to Build: a logical path plus the plaintext bytes
// to store, and optional per-entry encryption.
type BuildEntry struct {
	Path    string
	Data    []byte
	Encrypt bool
}

// BuildOptions configures Build.
type BuildOptions struct {
	FormatVersion uint32
	EngineMajor   uint32
	EngineMinor   uint32
	EnginePatch   uint32
	Key           []byte // required if any entry sets Encrypt
	// EmbedExecutable, if non-nil, is written before the container so the
	// result is a self-contained executable with a trailing embedded
	// package, detected via the tail sentinel (spec.md §3).
	EmbedExecutable []byte
}

type preparedEntry struct {
	path    string
	payload []byte
	flags   uint32
	md5     [16]byte
	offset  uint64
}

// Build serializes entries into container bytes, sorted by path for a
// deterministic, order-independent directory (spec.md §4.C "sort-append
// entries"). It is the packager half of the P2 round trip: Open(Build(xs))
// yields back xs's paths and plaintext payloads.
func Build(entries []BuildEntry, opts BuildOptions) ([]byte, error) {
	sorted := append([]BuildEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	prep := make([]preparedEntry, 0, len(sorted))
	var cursor uint64
	for _, be := range sorted {
		plainMD5 := binlayout.MD5Sum(be.Data)
		payload := be.Data
		var flags uint32

		if be.Encrypt {
			if len(opts.Key) != cipher.KeySize {
				return nil, fmt.Errorf("encrypted entry %q requested but no %d-byte key configured", be.Path, cipher.KeySize)
			}
			iv := make([]byte, cipher.IVSize)
			if _, err := rand.Read(iv); err != nil {
				return nil, err
			}
			wrapped, err := cipher.Wrap(opts.Key, iv, cipher.ModeAES256CFB, payload)
			if err != nil {
				return nil, err
			}
			payload = wrapped
			flags |= EntryEncrypted
		}

		prep = append(prep, preparedEntry{
			path:    be.Path,
			payload: payload,
			flags:   flags,
			md5:     plainMD5,
			offset:  cursor,
		})
		cursor += uint64(len(payload))
	}

	w := binlayout.NewWriter()
	var headerStart int
	if len(opts.EmbedExecutable) > 0 {
		w.WriteBytes(opts.EmbedExecutable)
		headerStart = w.Len()
	}

	w.WriteBytes(Magic)
	w.WriteU32(opts.FormatVersion)
	w.WriteU32(opts.EngineMajor)
	w.WriteU32(opts.EngineMinor)
	if opts.FormatVersion >= 1 {
		w.WriteU32(opts.EnginePatch)
	}
	w.WriteU32(FlagRelativeOffsets)
	w.WriteU32(uint32(len(prep)))

	for _, e := range prep {
		if err := binlayout.WriteLengthPrefixedString(w, e.path, binlayout.UTF8); err != nil {
			return nil, err
		}
		w.WriteU64(e.offset)
		w.WriteU64(uint64(len(e.payload)))
		w.WriteBytes(e.md5[:])
		w.WriteU32(e.flags)
	}

	for _, e := range prep {
		w.WriteBytes(e.payload)
	}

	out := w.Bytes()
	if len(opts.EmbedExecutable) > 0 {
		out = appendEmbedTail(out, headerStart)
	}

	return out, nil
}

// appendEmbedTail appends the trailing sentinel + back-offset word that lets
// Open locate a container embedded inside an executable (spec.md §3).
func appendEmbedTail(data []byte, headerStart int) []byte {
	backOffset := uint64(len(data)) - uint64(headerStart)
	tail := binlayout.NewWriter()
	tail.WriteBytes(embedSentinel)
	tail.WriteU64(backOffset)
	return append(data, tail.Bytes()...)
}
