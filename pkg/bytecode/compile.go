package bytecode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/variant"
)

var keywordOps = map[string]Opcode{
	"func": OpKwFunc, "return": OpKwReturn, "if": OpKwIf, "elif": OpKwElif,
	"else": OpKwElse, "for": OpKwFor, "while": OpKwWhile, "var": OpKwVar,
	"const": OpKwConst, "pass": OpKwPass, "in": OpKwIn, "and": OpKwAnd,
	"or": OpKwOr, "not": OpKwNot, "true": OpKwTrue, "false": OpKwFalse,
	"null": OpKwNull,
}

var multiCharOps = []struct {
	text string
	op   Opcode
}{
	{"==", OpOpEq}, {"!=", OpOpNeq}, {"<=", OpOpLte}, {">=", OpOpGte}, {"->", OpArrow},
}

var singleCharOps = map[byte]Opcode{
	'(': OpParenOpen, ')': OpParenClose, '[': OpBracketOpen, ']': OpBracketClose,
	'{': OpBraceOpen, '}': OpBraceClose, ':': OpColon, ',': OpComma, '.': OpPeriod,
	'=': OpOpAssign, '+': OpOpAdd, '-': OpOpSub, '*': OpOpMul, '/': OpOpDiv,
	'%': OpOpMod, '<': OpOpLt, '>': OpOpGt,
}

// compileBuilder accumulates a TokenStream while the lexer walks source
// text, deduplicating identifiers and constants by their rendered text.
type compileBuilder struct {
	revision   *Revision
	ts         *TokenStream
	identIndex map[string]uint32
	constIndex map[string]uint32
}

func newCompileBuilder(revision *Revision) *compileBuilder {
	return &compileBuilder{
		revision: revision,
		ts: &TokenStream{
			Revision:    revision,
			LineTable:   map[uint32]uint32{},
			ColumnTable: map[uint32]uint32{},
		},
		identIndex: map[string]uint32{},
		constIndex: map[string]uint32{},
	}
}

func (b *compileBuilder) identifier(name string) uint32 {
	if idx, ok := b.identIndex[name]; ok {
		return idx
	}
	idx := uint32(len(b.ts.Identifiers))
	b.ts.Identifiers = append(b.ts.Identifiers, name)
	b.identIndex[name] = idx
	return idx
}

func (b *compileBuilder) constant(v *variant.Value) uint32 {
	key := variant.ToText(v)
	if idx, ok := b.constIndex[key]; ok {
		return idx
	}
	idx := uint32(len(b.ts.Constants))
	b.ts.Constants = append(b.ts.Constants, v)
	b.constIndex[key] = idx
	return idx
}

func (b *compileBuilder) emit(op Opcode, operand uint32, line, column int, lineStart bool) {
	idx := uint32(len(b.ts.Tokens))
	b.ts.Tokens = append(b.ts.Tokens, RawToken{Op: op, OperandIndex: operand, StartLine: uint32(line)})
	if lineStart {
		b.ts.LineTable[idx] = uint32(line)
		b.ts.ColumnTable[idx] = uint32(column)
	}
}

// Compile lexes source into a TokenStream targeting revision, mirroring the
// grammar Print emits (keywords, identifiers, numeric/string literals,
// operators, and explicit NEWLINE per logical line). It is the inverse of
// Decompile used to check spec.md testable property P4: recompiling a
// decompiled script yields an equivalent token stream. It supports the
// subset of the language exercised by that property — statement bodies,
// arithmetic, function headers — not the full grammar.
func Compile(source string, revision *Revision) (*TokenStream, error) {
	b := newCompileBuilder(revision)
	lines := strings.Split(source, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for lineNo, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		column := len(line) - len(trimmed)
		if trimmed == "" {
			continue
		}
		lineStart := true
		i := 0
		for i < len(trimmed) {
			c := trimmed[i]
			switch {
			case c == ' ' || c == '\t':
				i++
			case c == '"':
				j := i + 1
				var sb strings.Builder
				for j < len(trimmed) && trimmed[j] != '"' {
					sb.WriteByte(trimmed[j])
					j++
				}
				idx := b.constant(variant.String(sb.String()))
				b.emit(OpLiteral, idx, lineNo+1, column, lineStart)
				lineStart = false
				i = j + 1
			case isDigitByte(c):
				j := i
				isFloat := false
				for j < len(trimmed) && (isDigitByte(trimmed[j]) || trimmed[j] == '.') {
					if trimmed[j] == '.' {
						isFloat = true
					}
					j++
				}
				text := trimmed[i:j]
				var v *variant.Value
				if isFloat {
					f, err := strconv.ParseFloat(text, 64)
					if err != nil {
						return nil, fmt.Errorf("%w: bad float literal %q", gdreerrors.ErrCorruptHeader, text)
					}
					v = variant.Float(f)
				} else {
					n, err := strconv.ParseInt(text, 10, 64)
					if err != nil {
						return nil, fmt.Errorf("%w: bad int literal %q", gdreerrors.ErrCorruptHeader, text)
					}
					v = variant.Int(n)
				}
				idx := b.constant(v)
				b.emit(OpLiteral, idx, lineNo+1, column, lineStart)
				lineStart = false
				i = j
			case isIdentStartByte(c):
				j := i
				for j < len(trimmed) && isIdentByte(trimmed[j]) {
					j++
				}
				word := trimmed[i:j]
				if op, ok := keywordOps[word]; ok {
					b.emit(op, 0, lineNo+1, column, lineStart)
				} else {
					idx := b.identifier(word)
					b.emit(OpIdentifier, idx, lineNo+1, column, lineStart)
				}
				lineStart = false
				i = j
			default:
				matched := false
				for _, m := range multiCharOps {
					if strings.HasPrefix(trimmed[i:], m.text) {
						b.emit(m.op, 0, lineNo+1, column, lineStart)
						lineStart = false
						i += len(m.text)
						matched = true
						break
					}
				}
				if matched {
					continue
				}
				op, ok := singleCharOps[c]
				if !ok {
					return nil, fmt.Errorf("%w: unrecognized character %q", gdreerrors.ErrCorruptHeader, string(c))
				}
				b.emit(op, 0, lineNo+1, column, lineStart)
				lineStart = false
				i++
			}
		}
		b.emit(OpNewline, 0, lineNo+1, column, false)
	}

	return b.ts, nil
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStartByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
func isIdentByte(c byte) bool { return isIdentStartByte(c) || isDigitByte(c) }
