package variant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
)

// ToText renders v using the deterministic text grammar of spec.md §4.D:
// containers in insertion order, floats formatted losslessly, object
// references as SubResource(id)/ExtResource(id).
func ToText(v *Value) string {
	var b strings.Builder
	writeText(&b, v)
	return b.String()
}

func writeText(b *strings.Builder, v *Value) {
	switch v.Kind {
	case KindNil:
		b.WriteString("null")
	case KindBool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInt:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		b.WriteString(formatFloat(v.Float))
	case KindString:
		b.WriteString(quoteString(v.Str))
	case KindVector2:
		writeCall(b, "Vector2", v.Nums)
	case KindVector3:
		writeCall(b, "Vector3", v.Nums)
	case KindVector4:
		writeCall(b, "Vector4", v.Nums)
	case KindRect2:
		writeCall(b, "Rect2", v.Nums)
	case KindPlane:
		writeCall(b, "Plane", v.Nums)
	case KindQuaternion:
		writeCall(b, "Quaternion", v.Nums)
	case KindAABB:
		writeCall(b, "AABB", v.Nums)
	case KindColor:
		writeCall(b, "Color", v.Nums)
	case KindTransform2D:
		writeCall(b, "Transform2D", v.Nums)
	case KindBasis:
		writeCall(b, "Basis", v.Nums)
	case KindTransform3D:
		writeCall(b, "Transform3D", v.Nums)
	case KindNodePath:
		b.WriteString("NodePath(")
		b.WriteString(quoteString(v.NodePath))
		b.WriteString(")")
	case KindObjectID:
		fmt.Fprintf(b, "ObjectID(%d)", v.ObjectID)
	case KindRID:
		fmt.Fprintf(b, "RID(%d)", v.RID)
	case KindDictionary:
		b.WriteString("{")
		for i, e := range v.Dict.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			writeText(b, e.Key)
			b.WriteString(": ")
			writeText(b, e.Value)
		}
		b.WriteString("}")
	case KindArray:
		b.WriteString("[")
		for i, item := range v.Arr {
			if i > 0 {
				b.WriteString(", ")
			}
			writeText(b, item)
		}
		b.WriteString("]")
	case KindPackedByteArray:
		writeIntArray(b, "PackedByteArray", len(v.PackedBytes), func(i int) int64 { return int64(v.PackedBytes[i]) })
	case KindPackedInt32Array:
		writeIntArray(b, "PackedInt32Array", len(v.PackedInts), func(i int) int64 { return int64(v.PackedInts[i]) })
	case KindPackedFloat32Array:
		b.WriteString("PackedFloat32Array(")
		for i, f := range v.PackedFloats {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatFloat(float64(f)))
		}
		b.WriteString(")")
	case KindPackedStringArray:
		b.WriteString("PackedStringArray(")
		for i, s := range v.PackedStrings {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quoteString(s))
		}
		b.WriteString(")")
	case KindPackedVector2Array:
		b.WriteString("PackedVector2Array(")
		for i, p := range v.PackedVec2 {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatFloat(float64(p[0])))
			b.WriteString(", ")
			b.WriteString(formatFloat(float64(p[1])))
		}
		b.WriteString(")")
	case KindPackedVector3Array:
		b.WriteString("PackedVector3Array(")
		for i, p := range v.PackedVec3 {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatFloat(float64(p[0])))
			b.WriteString(", ")
			b.WriteString(formatFloat(float64(p[1])))
			b.WriteString(", ")
			b.WriteString(formatFloat(float64(p[2])))
		}
		b.WriteString(")")
	case KindObjectRef:
		switch v.Ref.Kind {
		case RefInternal:
			fmt.Fprintf(b, "SubResource(%s)", v.Ref.SubResourceID)
		case RefExternal:
			fmt.Fprintf(b, "ExtResource(%s)", v.Ref.ExternalPath)
		default:
			b.WriteString("null")
		}
	default:
		b.WriteString("null")
	}
}

// writeCall renders a math-type constructor. Its components use the
// shortest round-trip form without formatFloat's forced ".0", so
// Vector3(1, 2, 3) prints as written.
func writeCall(b *strings.Builder, name string, nums []float64) {
	b.WriteString(name)
	b.WriteString("(")
	for i, n := range nums {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
	}
	b.WriteString(")")
}

func writeIntArray(b *strings.Builder, name string, n int, at func(int) int64) {
	b.WriteString(name)
	b.WriteString("(")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(at(i), 10))
	}
	b.WriteString(")")
}

// formatFloat renders a float with the shortest representation that still
// round-trips exactly (Go's 'g'/-1 precision), always including a decimal
// point so `1` prints as `1.0` — spec.md scenario 4 requires `1.0, 2.5`.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Parse parses a single text-grammar value from s using a tolerant
// tokenizer, per spec.md §4.D. Leading/trailing whitespace is ignored;
// trailing input after the value is an error.
func Parse(s string) (*Value, error) {
	p := &textParser{toks: tokenize(s)}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("%w: trailing tokens after value", gdreerrors.ErrCorruptHeader)
	}
	return v, nil
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokNumber
	tokString
	tokPunct
	tokEOF
)

type token struct {
	kind tokKind
	text string
}

func tokenize(s string) []token {
	var toks []token
	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ',':
			i++
		case c == '(' || c == ')' || c == '[' || c == ']' || c == '{' || c == '}' || c == ':' || c == '=':
			toks = append(toks, token{tokPunct, string(c)})
			i++
		case c == '"':
			j := i + 1
			var b strings.Builder
			for j < n && s[j] != '"' {
				if s[j] == '\\' && j+1 < n {
					switch s[j+1] {
					case 'n':
						b.WriteByte('\n')
					case 't':
						b.WriteByte('\t')
					default:
						b.WriteByte(s[j+1])
					}
					j += 2
					continue
				}
				b.WriteByte(s[j])
				j++
			}
			toks = append(toks, token{tokString, b.String()})
			i = j + 1
		case c == '-' || c == '+' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < n && (isDigit(s[j]) || s[j] == '.' || s[j] == 'e' || s[j] == 'E' || s[j] == '-' || s[j] == '+') {
				j++
			}
			toks = append(toks, token{tokNumber, s[i:j]})
			i = j
		default:
			j := i
			for j < n && (isAlnum(s[j]) || s[j] == '_') {
				j++
			}
			if j == i {
				i++
				continue
			}
			toks = append(toks, token{tokIdent, s[i:j]})
			i = j
		}
	}
	return toks
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

type textParser struct {
	toks []token
	pos  int
}

func (p *textParser) peek() token {
	if p.pos >= len(p.toks) {
		return token{tokEOF, ""}
	}
	return p.toks[p.pos]
}

func (p *textParser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *textParser) expectPunct(s string) error {
	t := p.next()
	if t.kind != tokPunct || t.text != s {
		return fmt.Errorf("%w: expected %q, got %q", gdreerrors.ErrCorruptHeader, s, t.text)
	}
	return nil
}

func (p *textParser) parseValue() (*Value, error) {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.next()
		return String(t.text), nil
	case tokNumber:
		p.next()
		if strings.ContainsAny(t.text, ".eE") {
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad float literal %q", gdreerrors.ErrCorruptHeader, t.text)
			}
			return Float(f), nil
		}
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad int literal %q", gdreerrors.ErrCorruptHeader, t.text)
		}
		return Int(n), nil
	case tokPunct:
		switch t.text {
		case "[":
			return p.parseArray()
		case "{":
			return p.parseDict()
		}
		return nil, fmt.Errorf("%w: unexpected punctuation %q", gdreerrors.ErrCorruptHeader, t.text)
	case tokIdent:
		p.next()
		switch t.text {
		case "null":
			return Nil(), nil
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "SubResource":
			return p.parseRefCall(RefInternal)
		case "ExtResource":
			return p.parseRefCall(RefExternal)
		default:
			return p.parseNamedCall(t.text)
		}
	default:
		return nil, fmt.Errorf("%w: unexpected end of input", gdreerrors.ErrTruncated)
	}
}

func (p *textParser) parseArray() (*Value, error) {
	if err := p.expectPunct("["); err != nil {
		return nil, err
	}
	var items []*Value
	for p.peek().kind != tokPunct || p.peek().text != "]" {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	p.next() // consume "]"
	return &Value{Kind: KindArray, Arr: items}, nil
}

func (p *textParser) parseDict() (*Value, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	dict := &Dictionary{}
	for p.peek().kind != tokPunct || p.peek().text != "}" {
		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		dict.Entries = append(dict.Entries, DictEntry{Key: key, Value: val})
	}
	p.next() // consume "}"
	return &Value{Kind: KindDictionary, Dict: dict}, nil
}

func (p *textParser) parseRefCall(kind RefKind) (*Value, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	t := p.next()
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if kind == RefInternal {
		return InternalRef(t.text), nil
	}
	return ExternalRef(t.text, ""), nil
}

var callArity = map[string]Kind{
	"Vector2": KindVector2, "Vector3": KindVector3, "Vector4": KindVector4,
	"Rect2": KindRect2, "Plane": KindPlane, "Quaternion": KindQuaternion,
	"AABB": KindAABB, "Color": KindColor, "Transform2D": KindTransform2D,
	"Basis": KindBasis, "Transform3D": KindTransform3D,
}

func (p *textParser) parseNamedCall(name string) (*Value, error) {
	kind, ok := callArity[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown type constructor %q", gdreerrors.ErrCorruptHeader, name)
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var nums []float64
	for p.peek().kind != tokPunct || p.peek().text != ")" {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		switch v.Kind {
		case KindInt:
			nums = append(nums, float64(v.Int))
		case KindFloat:
			nums = append(nums, v.Float)
		default:
			return nil, fmt.Errorf("%w: non-numeric argument to %s()", gdreerrors.ErrCorruptHeader, name)
		}
	}
	p.next() // consume ")"
	return &Value{Kind: kind, Nums: nums}, nil
}
