package bytecode

import (
	"bytes"
	"fmt"

	"github.com/gdretool/gdre-go/pkg/binlayout"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/utils"
	"github.com/gdretool/gdre-go/pkg/variant"
	"github.com/klauspost/compress/zstd"
)

// Magic is the compiled-script container's 4-byte identifier (spec.md §6).
var Magic = []byte("GDSC")

// identifierXORKey obfuscates identifier-table bytes (spec.md §6: "Identifier
// characters XOR-masked with byte 0xB6").
const identifierXORKey byte = 0xB6

// TokenStream is a fully decoded script body: the revision it was read
// under, its identifier/constant tables, the sparse line/column maps, and
// the canonical-opcode token list.
type TokenStream struct {
	Revision    *Revision
	Identifiers []string
	Constants   []*variant.Value
	// LineTable/ColumnTable are sparse token_index -> value maps, populated
	// only where a token starts a new source line (spec.md §3).
	LineTable   map[uint32]uint32
	ColumnTable map[uint32]uint32
	Tokens      []RawToken
}

func xorBytes(raw []byte) []byte {
	return utils.XORByte(raw, identifierXORKey)
}

// readObfuscatedString reads a u32-length-prefixed, XOR-obfuscated,
// 4-byte-padded identifier string (the identifier table cannot use
// binlayout.ReadLengthPrefixedString because its bytes are not valid UTF-8
// until deobfuscated).
func readObfuscatedString(c *binlayout.Cursor) (string, error) {
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
	return string(xorBytes(raw)), nil
}

func writeObfuscatedString(w *binlayout.Writer, s string) {
	raw := xorBytes([]byte(s))
	w.WriteU32(uint32(len(raw)))
	w.WriteBytes(raw)
	w.PadTo4()
}

// Decode parses a full `GDSC`-framed compiled script body. If the stream was
// encrypted, the caller unwraps it with the cipher package first (spec.md
// §4.E: "Encrypted script files are unwrapped by B before decoding") — this
// function only ever sees plaintext framing.
func Decode(data []byte) (*TokenStream, error) {
	c := binlayout.NewCursor(data)
	magic, err := c.Bytes(4)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(magic, Magic) {
		return nil, fmt.Errorf("%w: bad compiled-script magic", gdreerrors.ErrCorruptHeader)
	}
	version, err := c.U32()
	if err != nil {
		return nil, err
	}
	decompressedSize, err := c.U32()
	if err != nil {
		return nil, err
	}

	rest, err := c.Bytes(c.Remaining())
	if err != nil {
		return nil, err
	}
	body := rest
	if decompressedSize != 0 {
		dec, err := zstd.NewReader(bytes.NewReader(rest))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", gdreerrors.ErrCorruptHeader, err)
		}
		defer dec.Close()
		out := make([]byte, 0, decompressedSize)
		buf := make([]byte, 64*1024)
		for {
			n, rerr := dec.Read(buf)
			out = append(out, buf[:n]...)
			if rerr != nil {
				break
			}
		}
		if uint32(len(out)) != decompressedSize {
			return nil, fmt.Errorf("%w: decompressed body size %d != declared %d", gdreerrors.ErrHashMismatch, len(out), decompressedSize)
		}
		body = out
	}

	bc := binlayout.NewCursor(body)
	identifierCount, err := bc.U32()
	if err != nil {
		return nil, err
	}
	constantCount, err := bc.U32()
	if err != nil {
		return nil, err
	}
	lineCount, err := bc.U32()
	if err != nil {
		return nil, err
	}
	tokenCount, err := bc.U32()
	if err != nil {
		return nil, err
	}

	identifiers := make([]string, identifierCount)
	for i := range identifiers {
		s, err := readObfuscatedString(bc)
		if err != nil {
			return nil, fmt.Errorf("identifier %d: %w", i, err)
		}
		identifiers[i] = s
	}

	constants := make([]*variant.Value, constantCount)
	for i := range constants {
		v, err := variant.Decode(bc, variant.Engine4, variant.NullDependencies)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		constants[i] = v
	}

	lineTable := make(map[uint32]uint32, lineCount)
	for i := uint32(0); i < lineCount; i++ {
		tokIdx, err := bc.U32()
		if err != nil {
			return nil, err
		}
		line, err := bc.U32()
		if err != nil {
			return nil, err
		}
		lineTable[tokIdx] = line
	}

	columnCount, err := bc.U32()
	if err != nil {
		return nil, err
	}
	columnTable := make(map[uint32]uint32, columnCount)
	for i := uint32(0); i < columnCount; i++ {
		tokIdx, err := bc.U32()
		if err != nil {
			return nil, err
		}
		col, err := bc.U32()
		if err != nil {
			return nil, err
		}
		columnTable[tokIdx] = col
	}

	sample, rawTokens, err := decodeTokens(bc, tokenCount, nil)
	if err != nil {
		return nil, err
	}
	revision, err := Detect(version, sample)
	if err != nil {
		return nil, err
	}
	tokens := make([]RawToken, len(rawTokens))
	for i, rt := range rawTokens {
		canon, ok := revision.ToCanonical(rt.localOp)
		if !ok {
			return nil, fmt.Errorf("%w: local opcode %d unknown to revision %s", gdreerrors.ErrUnimplementedRevision, rt.localOp, revision.Name)
		}
		tokens[i] = RawToken{Op: canon, OperandIndex: rt.operandIndex, StartLine: rt.startLine}
	}

	return &TokenStream{
		Revision:    revision,
		Identifiers: identifiers,
		Constants:   constants,
		LineTable:   lineTable,
		ColumnTable: columnTable,
		Tokens:      tokens,
	}, nil
}

// localRawToken is a token still in its on-disk, revision-specific opcode
// form, before remapping to the canonical Opcode space.
type localRawToken struct {
	localOp      uint8
	operandIndex uint32
	startLine    uint32
}

// decodeTokens reads n tokens in the 5-byte/8-byte layout selected by each
// token's high opcode bit (spec.md §4.E: "extract opcode bits and, if the
// high bit is set, the operand index"). The local-opcode form is always
// returned as the second result. If revision is non-nil, the tokens are also
// remapped to canonical form and returned as the first result; otherwise the
// first result is nil.
func decodeTokens(c *binlayout.Cursor, n uint32, revision *Revision) ([]RawToken, []localRawToken, error) {
	raw := make([]localRawToken, n)
	for i := uint32(0); i < n; i++ {
		b0, err := c.U8()
		if err != nil {
			return nil, nil, fmt.Errorf("token %d: %w", i, err)
		}
		hasOperand := b0&0x80 != 0
		localOp := b0 & 0x7F
		var operandIndex uint32
		if hasOperand {
			rest, err := c.Bytes(3)
			if err != nil {
				return nil, nil, fmt.Errorf("token %d: %w", i, err)
			}
			operandIndex = uint32(rest[0]) | uint32(rest[1])<<8 | uint32(rest[2])<<16
		}
		startLine, err := c.U32()
		if err != nil {
			return nil, nil, fmt.Errorf("token %d: %w", i, err)
		}
		raw[i] = localRawToken{localOp: localOp, operandIndex: operandIndex, startLine: startLine}
	}

	var canon []RawToken
	if revision != nil {
		canon = make([]RawToken, n)
		for i, rt := range raw {
			op, ok := revision.ToCanonical(rt.localOp)
			if !ok {
				return nil, nil, fmt.Errorf("%w: local opcode %d unknown to revision %s", gdreerrors.ErrUnimplementedRevision, rt.localOp, revision.Name)
			}
			canon[i] = RawToken{Op: op, OperandIndex: rt.operandIndex, StartLine: rt.startLine}
		}
	}
	return canon, raw, nil
}

// Encode serializes a TokenStream back into `GDSC`-framed bytes using its
// Revision's local opcode table. compress, when true, zstd-compresses the
// body the way the engine does for shipped scripts.
func Encode(ts *TokenStream, compress bool) ([]byte, error) {
	bw := binlayout.NewWriter()
	bw.WriteU32(uint32(len(ts.Identifiers)))
	bw.WriteU32(uint32(len(ts.Constants)))
	bw.WriteU32(uint32(len(ts.LineTable)))
	bw.WriteU32(uint32(len(ts.Tokens)))

	for _, id := range ts.Identifiers {
		writeObfuscatedString(bw, id)
	}
	for _, v := range ts.Constants {
		if err := variant.Encode(bw, v, variant.Engine4); err != nil {
			return nil, err
		}
	}
	for tokIdx, line := range ts.LineTable {
		bw.WriteU32(tokIdx)
		bw.WriteU32(line)
	}
	bw.WriteU32(uint32(len(ts.ColumnTable)))
	for tokIdx, col := range ts.ColumnTable {
		bw.WriteU32(tokIdx)
		bw.WriteU32(col)
	}

	for _, t := range ts.Tokens {
		local, ok := ts.Revision.ToLocal(t.Op)
		if !ok {
			return nil, fmt.Errorf("%w: canonical opcode %d has no local mapping in revision %s", gdreerrors.ErrUnimplementedRevision, t.Op, ts.Revision.Name)
		}
		if t.Op.HasOperand() {
			bw.WriteU8(local | 0x80)
			bw.WriteU8(byte(t.OperandIndex))
			bw.WriteU8(byte(t.OperandIndex >> 8))
			bw.WriteU8(byte(t.OperandIndex >> 16))
		} else {
			bw.WriteU8(local)
		}
		bw.WriteU32(t.StartLine)
	}

	body := bw.Bytes()
	var framedBody []byte
	var decompressedSize uint32
	if compress {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := enc.Write(body); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		framedBody = buf.Bytes()
		decompressedSize = uint32(len(body))
	} else {
		framedBody = body
		decompressedSize = 0
	}

	out := binlayout.NewWriter()
	out.WriteBytes(Magic)
	out.WriteU32(ts.Revision.BytecodeVersion)
	out.WriteU32(decompressedSize)
	out.WriteBytes(framedBody)
	return out.Bytes(), nil
}
