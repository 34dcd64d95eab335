package resource

import (
	"testing"

	"github.com/gdretool/gdre-go/pkg/resource"
	"github.com/gdretool/gdre-go/pkg/variant"
	"github.com/stretchr/testify/require"
)

func TestRewriteDeprecatedImages(t *testing.T) {
	legacy := variant.NewDictionary()
	legacy.Dict.Set(variant.String("format"), variant.String("RGBA8"))
	legacy.Dict.Set(variant.String("width"), variant.Int(4))
	legacy.Dict.Set(variant.String("height"), variant.Int(4))
	legacy.Dict.Set(variant.String("data"), &variant.Value{Kind: variant.KindPackedByteArray, PackedBytes: []byte{1, 2, 3, 4}})

	r := &resource.Resource{Type: "Image"}
	r.Set("data", legacy)

	count := RewriteDeprecatedImages(r)
	require.Equal(t, 1, count)

	rewritten, ok := r.Get("data")
	require.True(t, ok)
	require.Equal(t, variant.KindDictionary, rewritten.Kind)
	require.Len(t, rewritten.Dict.Entries, 4)
}

func TestRewriteDeprecatedImagesSkipsNonLegacy(t *testing.T) {
	r := &resource.Resource{Type: "Image"}
	r.Set("data", &variant.Value{Kind: variant.KindPackedByteArray, PackedBytes: []byte{1}})
	require.Equal(t, 0, RewriteDeprecatedImages(r))
}
