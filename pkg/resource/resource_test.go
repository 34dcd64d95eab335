package resource

import (
	"testing"

	"github.com/gdretool/gdre-go/pkg/variant"
	"github.com/stretchr/testify/require"
)

func sampleResource() *Resource {
	r := &Resource{
		Type: "SpriteFrames",
		ExtResources: []ExtResource{
			{ID: "1", Type: "Texture2D", Path: "res://icon.png"},
		},
		SubResources: []SubResource{
			{ID: "1", Type: "Resource", Properties: []Property{
				{Name: "frame", Value: variant.ExternalRef("1", "Texture2D")},
			}},
		},
	}
	r.Set("resource_name", variant.String("default"))
	r.Set("animations", variant.Array(variant.Int(0), variant.Int(1)))
	return r
}

func TestResourceBinaryRoundTrip(t *testing.T) {
	r := sampleResource()
	data := Encode(r, variant.Engine4)
	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, r.Type, decoded.Type)
	require.Equal(t, r.ExtResources, decoded.ExtResources)
	require.Len(t, decoded.SubResources, 1)
	name, ok := decoded.Get("resource_name")
	require.True(t, ok)
	require.Equal(t, "default", name.Str)
}

func TestResourceTextRoundTrip(t *testing.T) {
	r := sampleResource()
	text := ToText(r, variant.Engine4, 3)
	reparsed, err := ParseText(text)
	require.NoError(t, err)
	require.Equal(t, r.Type, reparsed.Type)
	require.Equal(t, r.ExtResources, reparsed.ExtResources)
	require.Equal(t, text, ToText(reparsed, variant.Engine4, 3))
}

func TestResolveExternal(t *testing.T) {
	r := sampleResource()
	sub, ok := r.SubResourceByID("1")
	require.True(t, ok)
	ref, ok := sub.Properties[0].Value, true
	require.True(t, ok)
	ext, ok := r.ResolveExternal(ref.Ref)
	require.True(t, ok)
	require.Equal(t, "res://icon.png", ext.Path)
}
