package bytecode

import (
	"fmt"
	"strings"

	"github.com/gdretool/gdre-go/pkg/variant"
)

const indentUnit = "    "

// keywordText and punctText map fixed-text canonical opcodes to their
// source spelling; identifier and literal tokens render from the token
// stream's tables instead.
var keywordText = map[Opcode]string{
	OpKwFunc: "func", OpKwReturn: "return", OpKwIf: "if", OpKwElif: "elif",
	OpKwElse: "else", OpKwFor: "for", OpKwWhile: "while", OpKwVar: "var",
	OpKwConst: "const", OpKwPass: "pass", OpKwIn: "in", OpKwAnd: "and",
	OpKwOr: "or", OpKwNot: "not", OpKwTrue: "true", OpKwFalse: "false",
	OpKwNull: "null",
}

var punctText = map[Opcode]string{
	OpParenOpen: "(", OpParenClose: ")", OpBracketOpen: "[", OpBracketClose: "]",
	OpBraceOpen: "{", OpBraceClose: "}", OpColon: ":", OpComma: ",", OpPeriod: ".",
	OpOpAssign: "=", OpOpAdd: "+", OpOpSub: "-", OpOpMul: "*", OpOpDiv: "/",
	OpOpMod: "%", OpOpEq: "==", OpOpNeq: "!=", OpOpLt: "<", OpOpLte: "<=",
	OpOpGt: ">", OpOpGte: ">=", OpArrow: "->",
}

// noSpaceBefore lists opcodes that never take a preceding space regardless
// of what came before them.
var noSpaceBefore = map[Opcode]bool{
	OpParenClose: true, OpBracketClose: true, OpBraceClose: true,
	OpComma: true, OpColon: true, OpPeriod: true,
}

// noSpaceAfter lists opcodes after which the following token never takes a
// leading space.
var noSpaceAfter = map[Opcode]bool{
	OpParenOpen: true, OpBracketOpen: true, OpBraceOpen: true, OpPeriod: true,
}

// needsSpace decides whether a space belongs between two adjacent tokens on
// the same source line. Call/subscript parens hug the preceding identifier;
// closing punctuation and separators never take a leading space; everything
// else does.
func needsSpace(prevOp, nextOp Opcode) bool {
	if noSpaceBefore[nextOp] {
		return false
	}
	if noSpaceAfter[prevOp] {
		return false
	}
	if (nextOp == OpParenOpen || nextOp == OpBracketOpen) && prevOp == OpIdentifier {
		return false
	}
	return true
}

func tokenText(ts *TokenStream, t RawToken) (string, error) {
	if s, ok := keywordText[t.Op]; ok {
		return s, nil
	}
	if s, ok := punctText[t.Op]; ok {
		return s, nil
	}
	switch t.Op {
	case OpIdentifier:
		if int(t.OperandIndex) >= len(ts.Identifiers) {
			return "", fmt.Errorf("identifier operand %d out of range", t.OperandIndex)
		}
		return ts.Identifiers[t.OperandIndex], nil
	case OpLiteral:
		if int(t.OperandIndex) >= len(ts.Constants) {
			return "", fmt.Errorf("literal operand %d out of range", t.OperandIndex)
		}
		return variant.ToText(ts.Constants[t.OperandIndex]), nil
	case OpNewline:
		return "\n", nil
	case OpEOF:
		return "", nil
	default:
		return "", fmt.Errorf("printer: unhandled opcode %d", t.Op)
	}
}

// Print walks a reindented token list and emits canonical source text
// (spec.md §4.E: "A structured printer walks tokens and emits canonical
// source").
func Print(ts *TokenStream, tokens []PrintToken) (string, error) {
	var b strings.Builder
	depth := 0
	atLineStart := true
	var prevOp Opcode
	havePrev := false

	for _, pt := range tokens {
		switch pt.Kind {
		case pkIndent:
			depth++
			continue
		case pkDedent:
			depth--
			continue
		}

		t := pt.Raw
		if t.Op == OpEOF {
			continue
		}
		text, err := tokenText(ts, t)
		if err != nil {
			return "", err
		}
		if t.Op == OpNewline {
			b.WriteString("\n")
			atLineStart = true
			havePrev = false
			continue
		}

		if atLineStart {
			b.WriteString(strings.Repeat(indentUnit, depth))
			atLineStart = false
		} else if havePrev && needsSpace(prevOp, t.Op) {
			b.WriteString(" ")
		}
		b.WriteString(text)
		prevOp = t.Op
		havePrev = true
	}
	return b.String(), nil
}

// Decompile decodes a compiled script and renders its canonical source text
// in one call.
func Decompile(data []byte) (string, *TokenStream, error) {
	ts, err := Decode(data)
	if err != nil {
		return "", nil, err
	}
	pretty := Reindent(ts)
	src, err := Print(ts, pretty)
	if err != nil {
		return "", nil, err
	}
	return src, ts, nil
}
