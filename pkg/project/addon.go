package project

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// pluginBaseClass is the engine's editor-plugin base class name; a script
// extending it is eligible to be an addon's main script (spec.md §4.G
// "Addon repair").
const pluginBaseClass = "EditorPlugin"

var extendsPattern = regexp.MustCompile(`(?m)^\s*extends\s+([A-Za-z_][A-Za-z0-9_]*)`)

// ScriptSource pairs a decompiled script's addon-relative path with its
// source text, the input SynthesizePluginConfig scans.
type ScriptSource struct {
	Path   string
	Source string
}

// SynthesizePluginConfig scans scripts (already filtered to one
// `addons/<name>/` directory) for the first script, by lexicographic path
// order, whose `extends` clause names pluginBaseClass, and renders a
// minimal plugin.cfg pointing at it. It reports ok=false if no orphan tool
// script qualifies, per spec.md §4.G: "emit a warning otherwise".
func SynthesizePluginConfig(addonName string, scripts []ScriptSource) (content string, mainScript string, ok bool) {
	sorted := append([]ScriptSource(nil), scripts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, s := range sorted {
		m := extendsPattern.FindStringSubmatch(s.Source)
		if len(m) == 2 && m[1] == pluginBaseClass {
			mainScript = s.Path
			break
		}
	}
	if mainScript == "" {
		return "", "", false
	}

	var b strings.Builder
	b.WriteString("[plugin]\n\n")
	fmt.Fprintf(&b, "name=\"%s\"\n", addonName)
	b.WriteString("description=\"\"\n")
	b.WriteString("author=\"\"\n")
	b.WriteString("version=\"1.0\"\n")
	fmt.Fprintf(&b, "script=\"%s\"\n", mainScript)
	return b.String(), mainScript, true
}
