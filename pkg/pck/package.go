// Package pck implements the versioned, optionally encrypted, optionally
// compressed package container codec (spec Component C): open/verify/
// enumerate/extract of container entries, and the inverse packager in
// builder.go.
package pck

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/gdretool/gdre-go/pkg/binlayout"
	"github.com/gdretool/gdre-go/pkg/cipher"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zstd"
)

// Magic is the container's 4-byte identification string (spec.md §6).
var Magic = []byte("GDPC")

// embedSentinel is the 4-byte marker preceding the back-offset word when a
// container is embedded at a trailing position inside an executable.
var embedSentinel = []byte("GDPE")

// embedTailSize is the size of the trailing probe: sentinel(4) + back-offset(8).
const embedTailSize = 12

// MaxSupportedVersion is the highest container format_version this
// implementation will parse (spec.md §1 non-goal d).
const MaxSupportedVersion uint32 = 2

// SchemePrefix is the fixed scheme prefix every entry path carries.
const SchemePrefix = "res://"

// Header-level flag bits.
const (
	// FlagRelativeOffsets means entry offsets are relative to the byte
	// immediately following the directory index, not absolute within the file.
	FlagRelativeOffsets uint32 = 1 << 0
)

// Header is the fixed-format package preamble (spec.md §3).
type Header struct {
	FormatVersion uint32
	EngineMajor   uint32
	EngineMinor   uint32
	EnginePatch   uint32
	Flags         uint32
	EntryCount    uint32
}

func (h Header) relative() bool { return h.Flags&FlagRelativeOffsets != 0 }

// Package is an opened container: its header, directory, and the raw bytes
// backing it (containers are small enough in practice to buffer wholesale,
// matching the teacher's whole-slot-at-a-time reads).
type Package struct {
	data       []byte
	headerBase int64 // offset of the "GDPC" magic within data
	payloadBase int64 // offset entries' relative offsets are measured from

	Header  Header
	Entries []Entry

	key []byte

	logger hclog.Logger

	mu              sync.Mutex
	encryptionError bool // sticky flag: any entry hit UNAUTHORIZED
}

// Open reads path, locates the container (embedded or standalone), and
// parses its header and directory index. key may be nil if no entry is
// encrypted.
func Open(filePath string, key []byte) (*Package, error) {
	return OpenWithLogger(filePath, key, hclog.NewNullLogger())
}

// OpenWithLogger is Open with an injected logger, per the ambient-stack
// convention of threading hclog.Logger explicitly rather than through a
// package-global.
func OpenWithLogger(filePath string, key []byte, logger hclog.Logger) (*Package, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return parsePackage(raw, key, logger)
}

func parsePackage(raw []byte, key []byte, logger hclog.Logger) (*Package, error) {
	headerBase := int64(0)
	if len(raw) >= embedTailSize {
		tail := raw[len(raw)-embedTailSize:]
		if bytes.Equal(tail[:4], embedSentinel) {
			c := binlayout.NewCursor(tail[4:])
			backOffset, err := c.U64()
			if err != nil {
				return nil, err
			}
			headerBase = int64(len(raw)) - embedTailSize - int64(backOffset)
			if headerBase < 0 || headerBase > int64(len(raw)) {
				return nil, fmt.Errorf("%w: embedded back-offset out of range", gdreerrors.ErrCorruptHeader)
			}
			logger.Debug("found embedded container", "header_offset", headerBase)
		}
	}

	if int64(len(raw))-headerBase < 4 {
		return nil, fmt.Errorf("%w: file too small for container header", gdreerrors.ErrTruncated)
	}
	c := binlayout.NewCursor(raw[headerBase:])
	magic, err := c.Bytes(4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, Magic) {
		return nil, fmt.Errorf("%w: bad container magic", gdreerrors.ErrCorruptHeader)
	}

	var h Header
	if h.FormatVersion, err = c.U32(); err != nil {
		return nil, err
	}
	if h.FormatVersion > MaxSupportedVersion {
		return nil, fmt.Errorf("%w: format version %d exceeds maximum %d", gdreerrors.ErrUnsupportedVersion, h.FormatVersion, MaxSupportedVersion)
	}
	if h.EngineMajor, err = c.U32(); err != nil {
		return nil, err
	}
	if h.EngineMinor, err = c.U32(); err != nil {
		return nil, err
	}
	// format_version 0 predates the patch field; default it to 0 (spec.md
	// §4.C: "If an older format version lacks some fields, supply
	// documented defaults").
	if h.FormatVersion >= 1 {
		if h.EnginePatch, err = c.U32(); err != nil {
			return nil, err
		}
	}
	if h.Flags, err = c.U32(); err != nil {
		return nil, err
	}
	if h.EntryCount, err = c.U32(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, h.EntryCount)
	seenPaths := make(map[string]bool, h.EntryCount)
	for i := uint32(0); i < h.EntryCount; i++ {
		var e Entry
		e.Path, err = binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if e.Offset, err = c.U64(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if e.Size, err = c.U64(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		md5b, err := c.Bytes(16)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		copy(e.MD5[:], md5b)
		if e.Flags, err = c.U32(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if e.Compressed() {
			if e.DecompressedSize, err = c.U64(); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
		}

		normalized := strings.ToLower(e.Path)
		if seenPaths[normalized] {
			return nil, fmt.Errorf("%w: duplicate path after case normalization: %s", gdreerrors.ErrCorruptHeader, e.Path)
		}
		seenPaths[normalized] = true

		entries = append(entries, e)
	}

	payloadBase := headerBase
	if h.relative() {
		payloadBase = headerBase + int64(c.Pos())
	}

	for i, e := range entries {
		start := payloadBase + int64(e.Offset)
		end := start + int64(e.Size)
		if start < 0 || end > int64(len(raw)) || end < start {
			return nil, fmt.Errorf("%w: entry %q [%d,%d) outside file bounds", gdreerrors.ErrTruncated, e.Path, start, end)
		}
		_ = i
	}

	return &Package{
		data:        raw,
		headerBase:  headerBase,
		payloadBase: payloadBase,
		Header:      h,
		Entries:     entries,
		key:         key,
		logger:      logger,
	}, nil
}

// StickyEncryptionError reports whether any prior read/verify hit an
// UNAUTHORIZED decryption failure, letting the orchestrator avoid spamming
// a report line per downstream file once the key is known bad.
func (p *Package) StickyEncryptionError() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encryptionError
}

func (p *Package) markEncryptionError() {
	p.mu.Lock()
	p.encryptionError = true
	p.mu.Unlock()
}

func (p *Package) entryBytes(e Entry) []byte {
	start := p.payloadBase + int64(e.Offset)
	end := start + int64(e.Size)
	return p.data[start:end]
}

// RawPayload returns the entry's bytes exactly as stored (encrypted/
// compressed framing intact), used by verify_entry.
func (p *Package) RawPayload(e Entry) []byte { return p.entryBytes(e) }

// DecodedPayload returns decrypt ∘ optional-decompress of the entry, per
// spec.md §4.C "Extract".
func (p *Package) DecodedPayload(e Entry) ([]byte, error) {
	raw := p.entryBytes(e)

	plain := raw
	if e.Encrypted() {
		decrypted, err := cipher.Unwrap(p.key, raw)
		if err != nil {
			p.markEncryptionError()
			return nil, err
		}
		plain = decrypted
	}

	if e.Compressed() {
		dec, err := zstd.NewReader(bytes.NewReader(plain))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", gdreerrors.ErrCorruptHeader, err)
		}
		defer dec.Close()
		out := make([]byte, 0, e.DecompressedSize)
		buf := make([]byte, 64*1024)
		for {
			n, rerr := dec.Read(buf)
			out = append(out, buf[:n]...)
			if rerr != nil {
				break
			}
		}
		if uint64(len(out)) != e.DecompressedSize {
			return nil, fmt.Errorf("%w: decompressed size %d != declared %d", gdreerrors.ErrHashMismatch, len(out), e.DecompressedSize)
		}
		plain = out
	}

	return plain, nil
}

// VerifyResult aggregates verify_entry outcomes, order-independent per
// spec.md §4.C.
type VerifyResult struct {
	OK      int
	Broken  int
	Skipped int
}

// VerifyEntry rereads and decrypts e's payload and compares its MD5 against
// the stored digest. An all-zero stored digest is a valid "skip" sentinel
// (spec.md §4.C).
func (p *Package) VerifyEntry(e Entry) (ok bool, skipped bool, err error) {
	if binlayout.IsZeroMD5(e.MD5) {
		return true, true, nil
	}
	plain, derr := p.decryptedOnly(e)
	if derr != nil {
		return false, false, derr
	}
	actual := binlayout.MD5Sum(plain)
	if actual != e.MD5 {
		return false, false, fmt.Errorf("%w: entry %s", gdreerrors.ErrHashMismatch, e.Path)
	}
	return true, false, nil
}

// decryptedOnly applies decryption (for MD5 verification, which per spec.md
// §4.B is computed over the plaintext, before any decompression) without
// decompressing.
func (p *Package) decryptedOnly(e Entry) ([]byte, error) {
	raw := p.entryBytes(e)
	if !e.Encrypted() {
		return raw, nil
	}
	plain, err := cipher.Unwrap(p.key, raw)
	if err != nil {
		p.markEncryptionError()
		return nil, err
	}
	return plain, nil
}

// VerifyAll verifies every entry and returns the deterministic aggregate
// counts (spec.md testable property P1 and scenario 1/2).
func (p *Package) VerifyAll() VerifyResult {
	var res VerifyResult
	for _, e := range p.Entries {
		ok, skipped, err := p.VerifyEntry(e)
		switch {
		case skipped:
			res.Skipped++
		case err != nil || !ok:
			res.Broken++
		default:
			res.OK++
		}
	}
	return res
}

// SanitizePath normalizes an entry path for filesystem extraction: strips
// the scheme prefix, converts backslashes to forward slashes, and rejects
// (ok=false) a path with any ".." segment (spec.md §4.C).
func SanitizePath(entryPath string) (string, bool) {
	p := strings.TrimPrefix(entryPath, SchemePrefix)
	p = strings.ReplaceAll(p, "\\", "/")
	clean := path.Clean("/" + p)
	clean = strings.TrimPrefix(clean, "/")
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return clean, false
		}
	}
	return clean, true
}
