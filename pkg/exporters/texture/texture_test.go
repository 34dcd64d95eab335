package texture

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/resource"
	"github.com/gdretool/gdre-go/pkg/variant"
	"github.com/stretchr/testify/require"
)

func rgbaProps(w, h int, pixels []byte) []resource.Property {
	return []resource.Property{
		{Name: "format", Value: variant.String("RGBA8")},
		{Name: "width", Value: variant.Int(int64(w))},
		{Name: "height", Value: variant.Int(int64(h))},
		{Name: "data", Value: &variant.Value{Kind: variant.KindPackedByteArray, PackedBytes: pixels}},
	}
}

func TestConvertToPNGRaw(t *testing.T) {
	pixels := make([]byte, 2*2*4)
	for i := range pixels {
		pixels[i] = 0xFF
	}
	out, loss, err := convertToPNG(rgbaProps(2, 2, pixels))
	require.NoError(t, err)
	require.Equal(t, gdreerrors.LossNone, loss)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 2, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())
}

func TestConvertToPNGPassthroughAlreadyPNG(t *testing.T) {
	pixels := make([]byte, 1*1*4)
	rawPNG, loss, err := convertToPNG(rgbaProps(1, 1, pixels))
	require.NoError(t, err)
	require.Equal(t, gdreerrors.LossNone, loss)

	props := []resource.Property{
		{Name: "data", Value: &variant.Value{Kind: variant.KindPackedByteArray, PackedBytes: rawPNG}},
	}
	out, loss2, err := convertToPNG(props)
	require.NoError(t, err)
	require.Equal(t, gdreerrors.LossNone, loss2)
	require.Equal(t, rawPNG, out)
}

func TestDecodeIndexedExpandsPalette(t *testing.T) {
	// 2x1 image, palette entries 0=red, 1=green.
	data := []byte{0, 1, 255, 0, 0, 0, 255, 0}
	img, err := decodeIndexed("INDEXED", 2, 1, data)
	require.NoError(t, err)
	require.Equal(t, 2, img.Bounds().Dx())
}

func TestClassifyKnownContainers(t *testing.T) {
	require.Equal(t, ContainerSingle, classify("CompressedTexture2D"))
	require.Equal(t, ContainerAtlas, classify("AtlasTexture"))
	require.Equal(t, Container3D, classify("Texture3D"))
	require.Equal(t, ContainerLayered, classify("Cubemap"))
	require.Equal(t, ContainerBitmap, classify("BitMap"))
	require.Equal(t, ContainerUnknown, classify("Nonsense"))
}

func TestIsWebPDetectsHeader(t *testing.T) {
	header := append([]byte("RIFF"), append([]byte{0, 0, 0, 0}, []byte("WEBP")...)...)
	require.True(t, isWebP(header))
	require.False(t, isWebP([]byte("not webp")))
}
