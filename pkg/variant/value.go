// Package variant implements the engine's self-describing value graph
// (spec Component D): a tagged sum over scalars, math types, containers,
// and object references, shared by every resource file. encode/decode are a
// single recursive function pair dispatched on an engine-major version
// (spec.md §4.A); to_text/parse implement the deterministic text grammar
// (spec.md §4.D).
package variant

import "fmt"

// Kind identifies a Value's payload shape. The numeric order loosely tracks
// the engine's own Variant::Type enumeration so that the type id Encode
// writes reads naturally, but this package owns the numbering — it is not required
// to match any particular engine build's table, only to be internally
// consistent and stable across encode/decode.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindVector2
	KindVector3
	KindVector4
	KindRect2
	KindTransform2D
	KindTransform3D
	KindPlane
	KindQuaternion
	KindAABB
	KindBasis
	KindColor
	KindNodePath
	KindObjectID
	KindRID
	KindDictionary
	KindArray
	KindPackedByteArray
	KindPackedInt32Array
	KindPackedFloat32Array
	KindPackedStringArray
	KindPackedVector2Array
	KindPackedVector3Array
	KindObjectRef
)

func (k Kind) String() string {
	names := [...]string{
		"Nil", "Bool", "Int", "Float", "String", "Vector2", "Vector3", "Vector4",
		"Rect2", "Transform2D", "Transform3D", "Plane", "Quaternion", "AABB",
		"Basis", "Color", "NodePath", "ObjectID", "RID", "Dictionary", "Array",
		"PackedByteArray", "PackedInt32Array", "PackedFloat32Array",
		"PackedStringArray", "PackedVector2Array", "PackedVector3Array", "Object",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return names[k]
}

// RefKind distinguishes the two ways an object reference can resolve, plus
// an explicit "could not classify" state for malformed input (spec.md §4.A:
// "Object references are encoded by kind (INTERNAL | EXTERNAL | UNKNOWN)").
type RefKind int

const (
	RefInternal RefKind = iota
	RefExternal
	RefUnknown
)

// ObjectReference is either an inline sub-resource id (Internal) or an
// external dependency path (External), resolved lazily against the
// resource file's dependency tables (spec.md §9: "arena-plus-index").
type ObjectReference struct {
	Kind RefKind
	// SubResourceID indexes into the owning resource file's internal
	// sub-resource table when Kind == RefInternal.
	SubResourceID string
	// ExternalPath/ExternalType are populated when Kind == RefExternal,
	// resolved from the dependency table the resource codec supplies.
	ExternalPath string
	ExternalType string
}

// DictEntry is one ordered key/value pair of a Dictionary.
type DictEntry struct {
	Key   *Value
	Value *Value
}

// Dictionary preserves insertion order, per spec.md §4.D's text-emission
// determinism requirement ("containers in insertion order").
type Dictionary struct {
	Entries []DictEntry
}

// Set appends or replaces (by key identity comparison via Go equality of the
// rendered key, the simplest faithful notion for string/int/float keys the
// format actually uses) a key/value pair.
func (d *Dictionary) Set(key, value *Value) {
	k := ToText(key)
	for i := range d.Entries {
		if ToText(d.Entries[i].Key) == k {
			d.Entries[i].Value = value
			return
		}
	}
	d.Entries = append(d.Entries, DictEntry{Key: key, Value: value})
}

// Value is the tagged-union variant payload. Only the fields relevant to
// Kind are populated; callers switch on Kind the way the codec's exhaustive
// match does (spec.md §9: "Variant decoding is a tagged-union switch; emit
// an exhaustive match on the type-id enum").
type Value struct {
	Kind Kind

	Bool  bool
	Int   int64
	Float float64
	Str   string

	// Nums holds the flat float components for every fixed-size math type:
	// Vector2(2), Vector3(3), Vector4(4), Rect2(4: pos+size),
	// Plane(4: normal+d), Quaternion(4), AABB(6: pos+size),
	// Transform2D(6), Basis(9), Transform3D(12: basis+origin), Color(4 RGBA).
	Nums []float64

	NodePath string
	ObjectID uint64
	RID      uint64

	Dict *Dictionary
	Arr  []*Value

	PackedBytes   []byte
	PackedInts    []int32
	PackedFloats  []float32
	PackedStrings []string
	PackedVec2    [][2]float32
	PackedVec3    [][3]float32

	Ref *ObjectReference
}

// Nil returns the null variant.
func Nil() *Value { return &Value{Kind: KindNil} }

// Bool wraps a boolean scalar.
func Bool(v bool) *Value { return &Value{Kind: KindBool, Bool: v} }

// Int wraps an integer scalar.
func Int(v int64) *Value { return &Value{Kind: KindInt, Int: v} }

// Float wraps a floating-point scalar.
func Float(v float64) *Value { return &Value{Kind: KindFloat, Float: v} }

// String wraps a string scalar.
func String(v string) *Value { return &Value{Kind: KindString, Str: v} }

// Vector2 constructs a 2-component vector.
func Vector2(x, y float64) *Value { return &Value{Kind: KindVector2, Nums: []float64{x, y}} }

// Vector3 constructs a 3-component vector.
func Vector3(x, y, z float64) *Value {
	return &Value{Kind: KindVector3, Nums: []float64{x, y, z}}
}

// Vector4 constructs a 4-component vector.
func Vector4(x, y, z, w float64) *Value {
	return &Value{Kind: KindVector4, Nums: []float64{x, y, z, w}}
}

// Color constructs an RGBA color.
func Color(r, g, b, a float64) *Value {
	return &Value{Kind: KindColor, Nums: []float64{r, g, b, a}}
}

// Array constructs an ordered, heterogeneous array.
func Array(items ...*Value) *Value { return &Value{Kind: KindArray, Arr: items} }

// NewDictionary constructs an empty ordered dictionary value.
func NewDictionary() *Value { return &Value{Kind: KindDictionary, Dict: &Dictionary{}} }

// ExternalRef constructs an external object reference.
func ExternalRef(path, typ string) *Value {
	return &Value{Kind: KindObjectRef, Ref: &ObjectReference{Kind: RefExternal, ExternalPath: path, ExternalType: typ}}
}

// InternalRef constructs an internal sub-resource reference.
func InternalRef(id string) *Value {
	return &Value{Kind: KindObjectRef, Ref: &ObjectReference{Kind: RefInternal, SubResourceID: id}}
}
