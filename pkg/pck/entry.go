package pck

// Entry flag bits, packed into an entry header's per-entry flags word.
const (
	// EntryEncrypted marks a payload as wrapped by the cipher layer
	// (spec.md §4.B framing); I3: payload length then includes cipher framing.
	EntryEncrypted uint32 = 1 << 0
	// EntryCompressed marks a payload as zstd-compressed; I4: decompressed
	// length must equal DecompressedSize.
	EntryCompressed uint32 = 1 << 1
)

// Entry is one directory-index record (spec.md §3): path, offset, size,
// integrity digest, and per-entry flags.
type Entry struct {
	Path  string
	Offset uint64
	Size   uint64
	MD5    [16]byte
	Flags  uint32

	// DecompressedSize is only meaningful when EntryCompressed is set; it is
	// the uncompressed byte length the I4 invariant checks against.
	DecompressedSize uint64
}

// Encrypted reports whether the entry's payload is cipher-wrapped.
func (e Entry) Encrypted() bool { return e.Flags&EntryEncrypted != 0 }

// Compressed reports whether the entry's payload is zstd-compressed.
func (e Entry) Compressed() bool { return e.Flags&EntryCompressed != 0 }
