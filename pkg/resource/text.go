package resource

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/variant"
)

// ResolveExternal finds the ext-resource table entry referenced by ref (an
// object reference of Kind RefExternal whose ExternalPath carries the
// ext-resource id, the convention this package's text/binary codecs share
// so that a path containing "://" never has to round-trip through the
// value-text grammar's bare-token ExtResource(...) call).
func (r *Resource) ResolveExternal(ref *variant.ObjectReference) (ExtResource, bool) {
	if ref == nil || ref.Kind != variant.RefExternal {
		return ExtResource{}, false
	}
	for _, e := range r.ExtResources {
		if e.ID == ref.ExternalPath {
			return e, true
		}
	}
	return ExtResource{}, false
}

// headerPattern matches a `[section_name key="value" key=123 ...]` line.
var headerPattern = regexp.MustCompile(`^\[([a-z_]+)(.*)\]$`)
var attrPattern = regexp.MustCompile(`(\w+)=("(?:[^"\\]|\\.)*"|[^\s]+)`)

func parseAttrs(rest string) map[string]string {
	attrs := map[string]string{}
	for _, m := range attrPattern.FindAllStringSubmatch(rest, -1) {
		val := m[2]
		if strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`) && len(val) >= 2 {
			val = strings.ReplaceAll(val[1:len(val)-1], `\"`, `"`)
		}
		attrs[m[1]] = val
	}
	return attrs
}

// ToText renders r in the canonical `.tres`/`.tscn` text grammar (spec.md
// §4.D/§9): a `[gd_resource]` header, the ext/sub-resource tables, then the
// main `[resource]` body, each property a `key = value` line using
// variant.ToText for the value grammar.
func ToText(r *Resource, engineMajor variant.EngineMajor, formatVersion int) string {
	var b strings.Builder
	loadSteps := len(r.SubResources) + 1
	fmt.Fprintf(&b, "[gd_resource type=%q load_steps=%d format=%d", r.Type, loadSteps, formatVersion)
	if r.ScriptClass != "" {
		fmt.Fprintf(&b, " script_class=%q", r.ScriptClass)
	}
	b.WriteString("]\n\n")

	for _, e := range r.ExtResources {
		fmt.Fprintf(&b, "[ext_resource type=%q path=%q id=%q]\n", e.Type, e.Path, e.ID)
	}
	if len(r.ExtResources) > 0 {
		b.WriteString("\n")
	}

	for _, s := range r.SubResources {
		fmt.Fprintf(&b, "[sub_resource type=%q id=%q]\n", s.Type, s.ID)
		writeProperties(&b, s.Properties)
		b.WriteString("\n")
	}

	b.WriteString("[resource]\n")
	writeProperties(&b, r.Properties)
	return b.String()
}

func writeProperties(b *strings.Builder, props []Property) {
	for _, p := range props {
		fmt.Fprintf(b, "%s = %s\n", p.Name, variant.ToText(p.Value))
	}
}

// ParseText parses the `.tres`/`.tscn` text grammar back into a Resource.
func ParseText(text string) (*Resource, error) {
	r := &Resource{}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var currentSub *SubResource
	inMain := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			m := headerPattern.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("%w: malformed section header %q", gdreerrors.ErrCorruptHeader, line)
			}
			attrs := parseAttrs(m[2])
			switch m[1] {
			case "gd_resource":
				r.Type = attrs["type"]
				r.ScriptClass = attrs["script_class"]
				inMain = false
				currentSub = nil
			case "ext_resource":
				r.ExtResources = append(r.ExtResources, ExtResource{
					ID:   attrs["id"],
					Type: attrs["type"],
					Path: attrs["path"],
				})
				inMain = false
				currentSub = nil
			case "sub_resource":
				r.SubResources = append(r.SubResources, SubResource{ID: attrs["id"], Type: attrs["type"]})
				currentSub = &r.SubResources[len(r.SubResources)-1]
				inMain = false
			case "resource":
				inMain = true
				currentSub = nil
			default:
				inMain = false
				currentSub = nil
			}
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, fmt.Errorf("%w: malformed property line %q", gdreerrors.ErrCorruptHeader, line)
		}
		name := strings.TrimSpace(line[:eq])
		val, err := variant.Parse(strings.TrimSpace(line[eq+1:]))
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		switch {
		case currentSub != nil:
			currentSub.Properties = append(currentSub.Properties, Property{Name: name, Value: val})
		case inMain:
			r.Properties = append(r.Properties, Property{Name: name, Value: val})
		default:
			return nil, fmt.Errorf("%w: property %q outside any section", gdreerrors.ErrCorruptHeader, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// FormatVersionFor mirrors project.ConfigVersionFor's engine table for the
// per-resource `format=` attribute (spec.md §9: the scene/resource format
// number tracks engine_major/minor the same way project.godot's
// config_version does).
func FormatVersionFor(engineMajor, engineMinor uint32) int {
	switch {
	case engineMajor == 2:
		return 1
	case engineMajor == 3 && engineMinor == 0:
		return 2
	case engineMajor == 3:
		return 2
	case engineMajor >= 4:
		return 3
	default:
		return 3
	}
}
