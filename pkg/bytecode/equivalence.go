package bytecode

import "github.com/gdretool/gdre-go/pkg/variant"

// Equivalent reports whether a and b carry the same token sequence up to
// table-index renumbering — spec.md P4: "yields a token stream equivalent
// to s modulo whitespace/comments". Two streams are equivalent when they
// have the same opcode sequence and, for operand-bearing tokens, the same
// resolved identifier name or the same rendered constant text.
func Equivalent(a, b *TokenStream) bool {
	if len(a.Tokens) != len(b.Tokens) {
		return false
	}
	for i := range a.Tokens {
		ta, tb := a.Tokens[i], b.Tokens[i]
		if ta.Op != tb.Op {
			return false
		}
		switch ta.Op {
		case OpIdentifier:
			if a.Identifiers[ta.OperandIndex] != b.Identifiers[tb.OperandIndex] {
				return false
			}
		case OpLiteral:
			if variant.ToText(a.Constants[ta.OperandIndex]) != variant.ToText(b.Constants[tb.OperandIndex]) {
				return false
			}
		}
	}
	return true
}
