package variant

import (
	"fmt"

	"github.com/gdretool/gdre-go/pkg/binlayout"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
)

// DependencyTable resolves an external-reference index (as encountered
// inside a resource body) to a (path, type) pair. The resource codec (D)
// passes one in while decoding a body; outside that context callers pass
// NullDependencies, and a legacy index-only external reference then fails
// to decode with ErrDependencyMissing.
type DependencyTable interface {
	Resolve(index int) (path string, typ string, ok bool)
}

// nullDeps is used when the caller has no dependency table (e.g. decoding a
// standalone variant blob outside of a resource file).
type nullDeps struct{}

func (nullDeps) Resolve(int) (string, string, bool) { return "", "", false }

// NullDependencies is the zero-value DependencyTable.
var NullDependencies DependencyTable = nullDeps{}

// EngineMajor selects which variant wire encoding to use. v2 and v3/v4 differ
// for several types, notably images and input events (spec.md §3); this
// codec does not implement the deprecated v2 InputEvent type (one-way,
// flagged unsupported). v2's indexed-palette image path is decoded by the
// texture exporter's own pixel decoder (pkg/exporters/texture), not by this
// generic dispatcher.
type EngineMajor int

const (
	Engine2 EngineMajor = 2
	Engine3 EngineMajor = 3
	Engine4 EngineMajor = 4
)

// Encode serializes v as `type_id:u32 | payload` into w, recursing into
// containers and sub-resources. engineMajor selects version-specific
// payload shapes.
func Encode(w *binlayout.Writer, v *Value, engineMajor EngineMajor) error {
	w.WriteU32(uint32(v.Kind))
	switch v.Kind {
	case KindNil:
		return nil
	case KindBool:
		if v.Bool {
			w.WriteU32(1)
		} else {
			w.WriteU32(0)
		}
		return nil
	case KindInt:
		w.WriteI64(v.Int)
		return nil
	case KindFloat:
		w.WriteF64(v.Float)
		return nil
	case KindString:
		return binlayout.WriteLengthPrefixedString(w, v.Str, binlayout.UTF8)
	case KindVector2, KindVector3, KindVector4, KindRect2, KindPlane, KindQuaternion,
		KindAABB, KindColor, KindTransform2D, KindBasis, KindTransform3D:
		for _, n := range v.Nums {
			w.WriteF32(float32(n))
		}
		return nil
	case KindNodePath:
		return binlayout.WriteLengthPrefixedString(w, v.NodePath, binlayout.UTF8)
	case KindObjectID:
		w.WriteU64(v.ObjectID)
		return nil
	case KindRID:
		w.WriteU64(v.RID)
		return nil
	case KindDictionary:
		w.WriteU32(uint32(len(v.Dict.Entries)))
		for _, e := range v.Dict.Entries {
			if err := Encode(w, e.Key, engineMajor); err != nil {
				return err
			}
			if err := Encode(w, e.Value, engineMajor); err != nil {
				return err
			}
		}
		return nil
	case KindArray:
		w.WriteU32(uint32(len(v.Arr)))
		for _, item := range v.Arr {
			if err := Encode(w, item, engineMajor); err != nil {
				return err
			}
		}
		return nil
	case KindPackedByteArray:
		w.WriteU32(uint32(len(v.PackedBytes)))
		w.WriteBytes(v.PackedBytes)
		w.PadTo4()
		return nil
	case KindPackedInt32Array:
		w.WriteU32(uint32(len(v.PackedInts)))
		for _, n := range v.PackedInts {
			w.WriteI32(n)
		}
		return nil
	case KindPackedFloat32Array:
		w.WriteU32(uint32(len(v.PackedFloats)))
		for _, n := range v.PackedFloats {
			w.WriteF32(n)
		}
		return nil
	case KindPackedStringArray:
		w.WriteU32(uint32(len(v.PackedStrings)))
		for _, s := range v.PackedStrings {
			if err := binlayout.WriteLengthPrefixedString(w, s, binlayout.UTF8); err != nil {
				return err
			}
		}
		return nil
	case KindPackedVector2Array:
		w.WriteU32(uint32(len(v.PackedVec2)))
		for _, p := range v.PackedVec2 {
			w.WriteF32(p[0])
			w.WriteF32(p[1])
		}
		return nil
	case KindPackedVector3Array:
		w.WriteU32(uint32(len(v.PackedVec3)))
		for _, p := range v.PackedVec3 {
			w.WriteF32(p[0])
			w.WriteF32(p[1])
			w.WriteF32(p[2])
		}
		return nil
	case KindObjectRef:
		return encodeRef(w, v.Ref)
	default:
		return fmt.Errorf("%w: cannot encode variant kind %s", gdreerrors.ErrUnavailable, v.Kind)
	}
}

func encodeRef(w *binlayout.Writer, ref *ObjectReference) error {
	w.WriteU32(uint32(ref.Kind))
	switch ref.Kind {
	case RefInternal:
		return binlayout.WriteLengthPrefixedString(w, ref.SubResourceID, binlayout.UTF8)
	case RefExternal:
		if err := binlayout.WriteLengthPrefixedString(w, ref.ExternalPath, binlayout.UTF8); err != nil {
			return err
		}
		return binlayout.WriteLengthPrefixedString(w, ref.ExternalType, binlayout.UTF8)
	default:
		return nil
	}
}

var fixedNumCounts = map[Kind]int{
	KindVector2:     2,
	KindVector3:     3,
	KindVector4:     4,
	KindRect2:       4,
	KindPlane:       4,
	KindQuaternion:  4,
	KindAABB:        6,
	KindColor:       4,
	KindTransform2D: 6,
	KindBasis:       9,
	KindTransform3D: 12,
}

// Decode parses a `type_id:u32 | payload` value from c, resolving external
// object references against deps. engineMajor selects version-specific
// payload shapes for the (currently none still-diverging beyond images,
// handled separately) fixed-size math types.
func Decode(c *binlayout.Cursor, engineMajor EngineMajor, deps DependencyTable) (*Value, error) {
	rawKind, err := c.U32()
	if err != nil {
		return nil, err
	}
	kind := Kind(rawKind)

	switch kind {
	case KindNil:
		return Nil(), nil
	case KindBool:
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		return Bool(n != 0), nil
	case KindInt:
		n, err := c.I64()
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case KindFloat:
		f, err := c.F64()
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case KindString:
		s, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case KindVector2, KindVector3, KindVector4, KindRect2, KindPlane, KindQuaternion,
		KindAABB, KindColor, KindTransform2D, KindBasis, KindTransform3D:
		count := fixedNumCounts[kind]
		nums := make([]float64, count)
		for i := 0; i < count; i++ {
			f, err := c.F32()
			if err != nil {
				return nil, err
			}
			nums[i] = float64(f)
		}
		return &Value{Kind: kind, Nums: nums}, nil
	case KindNodePath:
		s, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindNodePath, NodePath: s}, nil
	case KindObjectID:
		n, err := c.U64()
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindObjectID, ObjectID: n}, nil
	case KindRID:
		n, err := c.U64()
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindRID, RID: n}, nil
	case KindDictionary:
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		dict := &Dictionary{Entries: make([]DictEntry, 0, n)}
		for i := uint32(0); i < n; i++ {
			key, err := Decode(c, engineMajor, deps)
			if err != nil {
				return nil, err
			}
			val, err := Decode(c, engineMajor, deps)
			if err != nil {
				return nil, err
			}
			dict.Entries = append(dict.Entries, DictEntry{Key: key, Value: val})
		}
		return &Value{Kind: KindDictionary, Dict: dict}, nil
	case KindArray:
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		arr := make([]*Value, 0, n)
		for i := uint32(0); i < n; i++ {
			item, err := Decode(c, engineMajor, deps)
			if err != nil {
				return nil, err
			}
			arr = append(arr, item)
		}
		return &Value{Kind: KindArray, Arr: arr}, nil
	case KindPackedByteArray:
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		b, err := c.Bytes(int(n))
		if err != nil {
			return nil, err
		}
		cp := append([]byte(nil), b...)
		if err := c.AlignTo4(); err != nil {
			return nil, err
		}
		return &Value{Kind: KindPackedByteArray, PackedBytes: cp}, nil
	case KindPackedInt32Array:
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		ints := make([]int32, n)
		for i := range ints {
			v, err := c.I32()
			if err != nil {
				return nil, err
			}
			ints[i] = v
		}
		return &Value{Kind: KindPackedInt32Array, PackedInts: ints}, nil
	case KindPackedFloat32Array:
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		floats := make([]float32, n)
		for i := range floats {
			v, err := c.F32()
			if err != nil {
				return nil, err
			}
			floats[i] = v
		}
		return &Value{Kind: KindPackedFloat32Array, PackedFloats: floats}, nil
	case KindPackedStringArray:
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		strs := make([]string, n)
		for i := range strs {
			s, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
			if err != nil {
				return nil, err
			}
			strs[i] = s
		}
		return &Value{Kind: KindPackedStringArray, PackedStrings: strs}, nil
	case KindPackedVector2Array:
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		pts := make([][2]float32, n)
		for i := range pts {
			x, err := c.F32()
			if err != nil {
				return nil, err
			}
			y, err := c.F32()
			if err != nil {
				return nil, err
			}
			pts[i] = [2]float32{x, y}
		}
		return &Value{Kind: KindPackedVector2Array, PackedVec2: pts}, nil
	case KindPackedVector3Array:
		n, err := c.U32()
		if err != nil {
			return nil, err
		}
		pts := make([][3]float32, n)
		for i := range pts {
			x, err := c.F32()
			if err != nil {
				return nil, err
			}
			y, err := c.F32()
			if err != nil {
				return nil, err
			}
			z, err := c.F32()
			if err != nil {
				return nil, err
			}
			pts[i] = [3]float32{x, y, z}
		}
		return &Value{Kind: KindPackedVector3Array, PackedVec3: pts}, nil
	case KindObjectRef:
		ref, err := decodeRef(c)
		if err != nil {
			return nil, err
		}
		if ref.Kind == RefExternal && ref.ExternalPath == "" {
			// legacy encoding stores only a dependency-table index; resolve it.
			idx, err := c.U32()
			if err != nil {
				return nil, err
			}
			path, typ, ok := deps.Resolve(int(idx))
			if !ok {
				return nil, fmt.Errorf("%w: external reference index %d not in dependency table", gdreerrors.ErrDependencyMissing, idx)
			}
			ref.ExternalPath = path
			ref.ExternalType = typ
		}
		return &Value{Kind: KindObjectRef, Ref: ref}, nil
	default:
		return nil, fmt.Errorf("%w: unknown variant type id %d", gdreerrors.ErrUnavailable, rawKind)
	}
}

func decodeRef(c *binlayout.Cursor) (*ObjectReference, error) {
	rawKind, err := c.U32()
	if err != nil {
		return nil, err
	}
	ref := &ObjectReference{Kind: RefKind(rawKind)}
	switch ref.Kind {
	case RefInternal:
		id, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		ref.SubResourceID = id
		return ref, nil
	case RefExternal:
		path, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		typ, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		ref.ExternalPath = path
		ref.ExternalType = typ
		return ref, nil
	case RefUnknown:
		return ref, nil
	default:
		return nil, fmt.Errorf("%w: unknown object reference kind %d", gdreerrors.ErrCorruptHeader, rawKind)
	}
}
