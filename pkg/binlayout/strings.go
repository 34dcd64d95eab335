package binlayout

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
)

// StringEncoding selects the character codec used for a length-prefixed string.
type StringEncoding int

const (
	// UTF8 is the container's and resource file's default string encoding.
	UTF8 StringEncoding = iota
	// UTF16LE is used by a handful of legacy resource fields.
	UTF16LE
	// UTF32LE is used by the identifier table's decoded form in some
	// bytecode revisions that predate the XOR-obfuscated UTF-8 table.
	UTF32LE
)

// ReadLengthPrefixedString reads a u32 byte-length prefix followed by that
// many bytes decoded per enc, then pads to the next 4-byte boundary (the
// container's "optionally padded to 4 bytes" string rule, §6).
func ReadLengthPrefixedString(c *Cursor, enc StringEncoding) (string, error) {
	n, err := c.U32()
	if err != nil {
		return "", err
	}
	raw, err := c.Bytes(int(n))
	if err != nil {
		return "", err
	}
	if err := c.AlignTo4(); err != nil {
		return "", err
	}
	return DecodeString(raw, enc)
}

// WriteLengthPrefixedString appends a u32 length prefix, the encoded bytes,
// and 4-byte padding.
func WriteLengthPrefixedString(w *Writer, s string, enc StringEncoding) error {
	raw, err := EncodeString(s, enc)
	if err != nil {
		return err
	}
	w.WriteU32(uint32(len(raw)))
	w.WriteBytes(raw)
	w.PadTo4()
	return nil
}

// DecodeString decodes raw bytes per the requested encoding.
func DecodeString(raw []byte, enc StringEncoding) (string, error) {
	switch enc {
	case UTF8:
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("%w: invalid UTF-8 string data", gdreerrors.ErrCorruptHeader)
		}
		return string(raw), nil
	case UTF16LE:
		if len(raw)%2 != 0 {
			return "", fmt.Errorf("%w: odd-length UTF-16 string data", gdreerrors.ErrCorruptHeader)
		}
		units := make([]uint16, len(raw)/2)
		for i := range units {
			units[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
		}
		return string(utf16.Decode(units)), nil
	case UTF32LE:
		if len(raw)%4 != 0 {
			return "", fmt.Errorf("%w: non-multiple-of-4 UTF-32 string data", gdreerrors.ErrCorruptHeader)
		}
		runes := make([]rune, len(raw)/4)
		for i := range runes {
			v := uint32(raw[4*i]) | uint32(raw[4*i+1])<<8 | uint32(raw[4*i+2])<<16 | uint32(raw[4*i+3])<<24
			runes[i] = rune(v)
		}
		return string(runes), nil
	default:
		return "", fmt.Errorf("%w: unknown string encoding %d", gdreerrors.ErrUnavailable, enc)
	}
}

// EncodeString encodes a string per the requested encoding.
func EncodeString(s string, enc StringEncoding) ([]byte, error) {
	switch enc {
	case UTF8:
		return []byte(s), nil
	case UTF16LE:
		units := utf16.Encode([]rune(s))
		out := make([]byte, len(units)*2)
		for i, u := range units {
			out[2*i] = byte(u)
			out[2*i+1] = byte(u >> 8)
		}
		return out, nil
	case UTF32LE:
		runes := []rune(s)
		out := make([]byte, len(runes)*4)
		for i, r := range runes {
			v := uint32(r)
			out[4*i] = byte(v)
			out[4*i+1] = byte(v >> 8)
			out[4*i+2] = byte(v >> 16)
			out[4*i+3] = byte(v >> 24)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown string encoding %d", gdreerrors.ErrUnavailable, enc)
	}
}
