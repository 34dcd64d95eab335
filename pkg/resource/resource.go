// Package resource models a single resource file's logical content: the
// main object's class and properties plus the sub-resource and external
// dependency tables it references (spec.md §4.F "binary<->text resource").
// It is the shared structure the binary and text codecs both walk, and the
// input the scene and texture exporters delegate to.
package resource

import "github.com/gdretool/gdre-go/pkg/variant"

// Property is one `(name, value)` pair of a resource's (or sub-resource's)
// property list, ordered the way the source file declared it.
type Property struct {
	Name  string
	Value *variant.Value
}

// SubResource is one `[sub_resource]` block: an internally-addressed object
// with its own type and property list, referenced from elsewhere in the
// file (or from another sub-resource) via variant.InternalRef.
type SubResource struct {
	ID         string
	Type       string
	Properties []Property
}

// ExtResource is one `[ext_resource]` table entry: a dependency on another
// resource file, referenced via variant.ExternalRef.
type ExtResource struct {
	ID   string
	Path string
	Type string
}

// Resource is the full parsed content of one `.tres`/`.res`/`.tscn`/`.scn`
// file: its main object plus the sub-resource and external-dependency
// tables the main object's properties (and each other) reference.
type Resource struct {
	Type         string
	ScriptClass  string
	Properties   []Property
	SubResources []SubResource
	ExtResources []ExtResource
}

// Set appends or replaces a top-level property.
func (r *Resource) Set(name string, v *variant.Value) {
	for i := range r.Properties {
		if r.Properties[i].Name == name {
			r.Properties[i].Value = v
			return
		}
	}
	r.Properties = append(r.Properties, Property{Name: name, Value: v})
}

// Get looks up a top-level property.
func (r *Resource) Get(name string) (*variant.Value, bool) {
	for _, p := range r.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// SubResourceByID finds a sub-resource by its internal id.
func (r *Resource) SubResourceByID(id string) (*SubResource, bool) {
	for i := range r.SubResources {
		if r.SubResources[i].ID == id {
			return &r.SubResources[i], true
		}
	}
	return nil, false
}

// dependencyTable adapts a Resource's ExtResources list to
// variant.DependencyTable for decoding legacy index-based external
// references (spec.md §4.D, "external references resolved against the
// resource file's dependency tables").
type dependencyTable struct {
	ext []ExtResource
}

func (d dependencyTable) Resolve(index int) (string, string, bool) {
	if index < 0 || index >= len(d.ext) {
		return "", "", false
	}
	return d.ext[index].Path, d.ext[index].Type, true
}

// DependencyTable returns a variant.DependencyTable view over r's external
// resources, for passing to variant.Decode.
func (r *Resource) DependencyTable() variant.DependencyTable {
	return dependencyTable{ext: r.ExtResources}
}
