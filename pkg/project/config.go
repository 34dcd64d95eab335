package project

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/gdretool/gdre-go/pkg/binlayout"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/variant"
)

// Entry is one `(section, key, value)` triple of the project configuration
// tree (spec.md §3 "Project configuration").
type Entry struct {
	Section string
	Key     string
	Value   *variant.Value
}

// Config is the parsed key/value tree with `[section]` grouping. Entries
// preserve insertion/section order so re-emission is deterministic.
type Config struct {
	Entries []Entry
}

// Set appends or replaces an entry for (section, key).
func (c *Config) Set(section, key string, v *variant.Value) {
	for i := range c.Entries {
		if c.Entries[i].Section == section && c.Entries[i].Key == key {
			c.Entries[i].Value = v
			return
		}
	}
	c.Entries = append(c.Entries, Entry{Section: section, Key: key, Value: v})
}

// Get looks up (section, key).
func (c *Config) Get(section, key string) (*variant.Value, bool) {
	for _, e := range c.Entries {
		if e.Section == section && e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// ConfigVersionFor chooses the `config_version` a reconstructed
// project.godot should declare, from the explicit engine-major/minor table
// in spec.md §4.G: v2->2, v3.0->3, v3.x->4, v4.x->5.
func ConfigVersionFor(engineMajor, engineMinor uint32) int {
	switch {
	case engineMajor == 2:
		return 2
	case engineMajor == 3 && engineMinor == 0:
		return 3
	case engineMajor == 3:
		return 4
	case engineMajor >= 4:
		return 5
	default:
		return 5
	}
}

// ToText renders c in the canonical `[section]` / `key=value` text form,
// sections and keys in the order they were first set (spec.md §4.G: "the
// text form is the canonical output").
func ToText(c *Config) string {
	var b strings.Builder
	order := sectionOrder(c)
	for si, section := range order {
		if si > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s]\n\n", section)
		for _, e := range c.Entries {
			if e.Section != section {
				continue
			}
			fmt.Fprintf(&b, "%s=%s\n", e.Key, variant.ToText(e.Value))
		}
	}
	return b.String()
}

func sectionOrder(c *Config) []string {
	seen := map[string]bool{}
	var order []string
	for _, e := range c.Entries {
		if !seen[e.Section] {
			seen[e.Section] = true
			order = append(order, e.Section)
		}
	}
	return order
}

// ParseText parses the text form of a project.godot file.
func ParseText(text string) (*Config, error) {
	c := &Config{}
	section := ""
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, fmt.Errorf("%w: malformed config line %q", gdreerrors.ErrCorruptHeader, line)
		}
		key := strings.TrimSpace(line[:eq])
		val, err := variant.Parse(strings.TrimSpace(line[eq+1:]))
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", section, key, err)
		}
		c.Set(section, key, val)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// magicConfigBinary tags the binary-tagged-variant project config encoding.
var magicConfigBinary = []byte("ECFG")

// EncodeBinary serializes c to the binary-tagged-variant encoding sharing
// the same (section, key, variant) walk as ToText (spec.md §4.G: "Binary
// and text encoders share the same walk").
func EncodeBinary(c *Config) []byte {
	w := binlayout.NewWriter()
	w.WriteBytes(magicConfigBinary)
	w.WriteU32(uint32(len(c.Entries)))
	for _, e := range c.Entries {
		binlayout.WriteLengthPrefixedString(w, e.Section, binlayout.UTF8) //nolint:errcheck
		binlayout.WriteLengthPrefixedString(w, e.Key, binlayout.UTF8)     //nolint:errcheck
		variant.Encode(w, e.Value, variant.Engine4)                      //nolint:errcheck
	}
	return w.Bytes()
}

// DecodeBinary parses the binary-tagged-variant project config encoding.
func DecodeBinary(data []byte) (*Config, error) {
	c := binlayout.NewCursor(data)
	magic, err := c.Bytes(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != string(magicConfigBinary) {
		return nil, fmt.Errorf("%w: bad project-config magic", gdreerrors.ErrCorruptHeader)
	}
	count, err := c.U32()
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	for i := uint32(0); i < count; i++ {
		section, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		key, err := binlayout.ReadLengthPrefixedString(c, binlayout.UTF8)
		if err != nil {
			return nil, err
		}
		val, err := variant.Decode(c, variant.Engine4, variant.NullDependencies)
		if err != nil {
			return nil, err
		}
		cfg.Set(section, key, val)
	}
	return cfg, nil
}
