package project

import (
	"testing"

	"github.com/gdretool/gdre-go/pkg/variant"
	"github.com/stretchr/testify/require"
)

func TestConfigTextBinaryRoundTrip(t *testing.T) {
	cfg := &Config{}
	cfg.Set("application", "config/name", variant.String("demo"))
	cfg.Set("application", "config/version", variant.Int(2))
	cfg.Set("rendering", "renderer/rendering_method", variant.String("forward_plus"))

	text := ToText(cfg)
	reparsed, err := ParseText(text)
	require.NoError(t, err)
	require.Equal(t, text, ToText(reparsed))

	binary := EncodeBinary(cfg)
	decoded, err := DecodeBinary(binary)
	require.NoError(t, err)
	require.Equal(t, text, ToText(decoded))
}

func TestConfigVersionTable(t *testing.T) {
	require.Equal(t, 2, ConfigVersionFor(2, 0))
	require.Equal(t, 3, ConfigVersionFor(3, 0))
	require.Equal(t, 4, ConfigVersionFor(3, 5))
	require.Equal(t, 5, ConfigVersionFor(4, 0))
}

// TestDescriptorRewriteStates matches spec.md scenario 5.
func TestDescriptorRewriteStates(t *testing.T) {
	notDirty := &Descriptor{SourcePath: "res://img.png"}
	notDirty.Rewrite("res://img.png", nil)
	require.Equal(t, NotDirty, notDirty.State)

	rewritten := &Descriptor{SourcePath: "res://img.png"}
	rewritten.Rewrite("res://.assets/img.png", nil)
	require.Equal(t, Rewritten, rewritten.State)

	failed := &Descriptor{SourcePath: "res://bad.wav"}
	failed.Rewrite("", require.AnError)
	require.Equal(t, Failed, failed.State)
}

// TestDisambiguateDuplicateDestinations matches spec.md scenario 6.
func TestDisambiguateDuplicateDestinations(t *testing.T) {
	seen := map[string]string{}
	first := Disambiguate(seen, "res://.assets/x.wav", "res://a/x.wav")
	second := Disambiguate(seen, "res://.assets/x.wav", "res://b/x.wav")

	require.Equal(t, "res://.assets/x.wav", first)
	require.Equal(t, "res://.assets/x.1.wav", second)
	require.Equal(t, "res://a/x.wav", seen["res://.assets/x.wav"])
	require.Equal(t, "res://b/x.wav", seen["res://.assets/x.1.wav"])
}

// TestUIDIsFunction matches spec.md P8.
func TestUIDIsFunction(t *testing.T) {
	c := NewCache()
	u1 := c.UIDFor("res://scripts/a.gd")
	u2 := c.UIDFor("res://scripts/a.gd")
	require.Equal(t, u1, u2)

	path, ok := c.PathFor(u1)
	require.True(t, ok)
	require.Equal(t, "res://scripts/a.gd", path)
}

func TestSynthesizePluginConfig(t *testing.T) {
	scripts := []ScriptSource{
		{Path: "addons/demo/helper.gd", Source: "extends Node\n"},
		{Path: "addons/demo/plugin.gd", Source: "extends EditorPlugin\n\nfunc _enter_tree():\n    pass\n"},
	}
	content, main, ok := SynthesizePluginConfig("demo", scripts)
	require.True(t, ok)
	require.Equal(t, "addons/demo/plugin.gd", main)
	require.Contains(t, content, `script="addons/demo/plugin.gd"`)
}

func TestSynthesizePluginConfigNoMatch(t *testing.T) {
	scripts := []ScriptSource{{Path: "addons/demo/helper.gd", Source: "extends Node\n"}}
	_, _, ok := SynthesizePluginConfig("demo", scripts)
	require.False(t, ok)
}
