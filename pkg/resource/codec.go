package resource

import (
	"fmt"

	"github.com/gdretool/gdre-go/pkg/binlayout"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/variant"
)

// Magic tags the binary resource container (spec.md §3, "binary-form RSRC
// magic"): header, string table, external-dependency table, internal
// sub-resource table, main-resource body.
var Magic = []byte("RSRC")

// Decode parses a binary-form resource file per spec.md §3/§4.D: header,
// string table, ext-resource table, sub-resource table, then the main
// body, each body a `(property_name_index, variant)` list.
func Decode(data []byte) (*Resource, error) {
	c := binlayout.NewCursor(data)
	magic, err := c.Bytes(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != string(Magic) {
		return nil, fmt.Errorf("%w: not a binary resource file", gdreerrors.ErrCorruptHeader)
	}
	rawEngineMajor, err := c.U32()
	if err != nil {
		return nil, err
	}
	engineMajor := variant.EngineMajor(rawEngineMajor)

	mainType, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
	if err != nil {
		return nil, err
	}
	scriptClass, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
	if err != nil {
		return nil, err
	}

	names, err := readStringTable(c)
	if err != nil {
		return nil, err
	}

	extCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	ext := make([]ExtResource, extCount)
	for i := range ext {
		id, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		typ, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		path, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		ext[i] = ExtResource{ID: id, Type: typ, Path: path}
	}
	deps := dependencyTable{ext: ext}

	subCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	sub := make([]SubResource, subCount)
	for i := range sub {
		id, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		typ, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		props, err := decodeProperties(c, names, engineMajor, deps)
		if err != nil {
			return nil, err
		}
		sub[i] = SubResource{ID: id, Type: typ, Properties: props}
	}

	mainProps, err := decodeProperties(c, names, engineMajor, deps)
	if err != nil {
		return nil, err
	}

	return &Resource{
		Type:         mainType,
		ScriptClass:  scriptClass,
		Properties:   mainProps,
		SubResources: sub,
		ExtResources: ext,
	}, nil
}

func readStringTable(c *binlayout.Cursor) ([]string, error) {
	n, err := c.U32()
	if err != nil {
		return nil, err
	}
	names := make([]string, n)
	for i := range names {
		s, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		names[i] = s
	}
	return names, nil
}

func decodeProperties(c *binlayout.Cursor, names []string, engineMajor variant.EngineMajor, deps variant.DependencyTable) ([]Property, error) {
	n, err := c.U32()
	if err != nil {
		return nil, err
	}
	props := make([]Property, n)
	for i := range props {
		nameIdx, err := c.U32()
		if err != nil {
			return nil, err
		}
		if int(nameIdx) >= len(names) {
			return nil, fmt.Errorf("%w: property name index %d out of range", gdreerrors.ErrCorruptHeader, nameIdx)
		}
		val, err := variant.Decode(c, engineMajor, deps)
		if err != nil {
			return nil, err
		}
		props[i] = Property{Name: names[nameIdx], Value: val}
	}
	return props, nil
}

// Encode serializes r to the binary resource container, building a shared
// property-name string table across the main body and every sub-resource so
// repeated names (e.g. "resource_local_to_scene") cost one table entry.
func Encode(r *Resource, engineMajor variant.EngineMajor) []byte {
	w := binlayout.NewWriter()
	w.WriteBytes(Magic)
	w.WriteU32(uint32(engineMajor))
	binlayout.WriteLengthPrefixedString(w, r.Type, binlayout.UTF8)        //nolint:errcheck
	binlayout.WriteLengthPrefixedString(w, r.ScriptClass, binlayout.UTF8) //nolint:errcheck

	nameIndex := map[string]uint32{}
	var names []string
	indexOf := func(name string) uint32 {
		if idx, ok := nameIndex[name]; ok {
			return idx
		}
		idx := uint32(len(names))
		names = append(names, name)
		nameIndex[name] = idx
		return idx
	}
	for _, p := range r.Properties {
		indexOf(p.Name)
	}
	for _, s := range r.SubResources {
		for _, p := range s.Properties {
			indexOf(p.Name)
		}
	}

	w.WriteU32(uint32(len(names)))
	for _, n := range names {
		binlayout.WriteLengthPrefixedString(w, n, binlayout.UTF8) //nolint:errcheck
	}

	w.WriteU32(uint32(len(r.ExtResources)))
	for _, e := range r.ExtResources {
		binlayout.WriteLengthPrefixedString(w, e.ID, binlayout.UTF8)   //nolint:errcheck
		binlayout.WriteLengthPrefixedString(w, e.Type, binlayout.UTF8) //nolint:errcheck
		binlayout.WriteLengthPrefixedString(w, e.Path, binlayout.UTF8) //nolint:errcheck
	}

	w.WriteU32(uint32(len(r.SubResources)))
	for _, s := range r.SubResources {
		binlayout.WriteLengthPrefixedString(w, s.ID, binlayout.UTF8)   //nolint:errcheck
		binlayout.WriteLengthPrefixedString(w, s.Type, binlayout.UTF8) //nolint:errcheck
		encodeProperties(w, s.Properties, nameIndex, engineMajor)
	}

	encodeProperties(w, r.Properties, nameIndex, engineMajor)
	return w.Bytes()
}

func encodeProperties(w *binlayout.Writer, props []Property, nameIndex map[string]uint32, engineMajor variant.EngineMajor) {
	w.WriteU32(uint32(len(props)))
	for _, p := range props {
		w.WriteU32(nameIndex[p.Name])
		variant.Encode(w, p.Value, engineMajor) //nolint:errcheck
	}
}
