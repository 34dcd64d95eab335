// Package texture implements the texture exporter: container detection
// across single, atlas, 3D, layered, bitmap, and SVG textures, with a
// best-effort back-conversion of raw pixel data to PNG (spec.md §4.F,
// "Texture").
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
)

// legacyPaletteWidth maps a v2 indexed format name to its palette entry
// width in bytes, ported from ImageParserV2::convert_indexed_image.
var legacyPaletteWidth = map[string]int{
	"INDEXED":       3,
	"INDEXED_ALPHA": 4,
}

// decodeRaw turns a raw uncompressed pixel buffer into an image.Image.
// format is the engine's format identifier, as stored either in a modern
// Image resource's "format" property (e.g. "RGBA8") or a v2 legacy
// "data" dictionary's "format" key (e.g. "RGBA", "INDEXED"). Compressed
// GPU block formats (DXT/BC/ETC/PVRTC) are not handled here: the engine
// ships no software decompressor for them either, so pixels can only be
// recovered by a GPU round-trip this toolchain does not perform.
func decodeRaw(format string, width, height int, data []byte) (image.Image, error) {
	switch format {
	case "L8", "GRAYSCALE":
		return decodeGray(width, height, data)
	case "LA8", "GRAYSCALE_ALPHA":
		return decodeGrayAlpha(width, height, data)
	case "RGB8", "RGB":
		return decodeRGB(width, height, data)
	case "RGBA8", "RGBA":
		return decodeRGBA(width, height, data)
	case "INTENSITY":
		return decodeIntensity(width, height, data)
	case "INDEXED", "INDEXED_ALPHA":
		return decodeIndexed(format, width, height, data)
	default:
		return nil, fmt.Errorf("%w: unsupported pixel format %q", gdreerrors.ErrUnavailable, format)
	}
}

func decodeGray(width, height int, data []byte) (image.Image, error) {
	img := image.NewGray(image.Rect(0, 0, width, height))
	n := width * height
	if len(data) < n {
		return nil, gdreerrors.ErrTruncated
	}
	copy(img.Pix, data[:n])
	return img, nil
}

func decodeGrayAlpha(width, height int, data []byte) (image.Image, error) {
	n := width * height
	if len(data) < n*2 {
		return nil, gdreerrors.ErrTruncated
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < n; i++ {
		l, a := data[i*2], data[i*2+1]
		img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2], img.Pix[i*4+3] = l, l, l, a
	}
	return img, nil
}

func decodeRGB(width, height int, data []byte) (image.Image, error) {
	n := width * height
	if len(data) < n*3 {
		return nil, gdreerrors.ErrTruncated
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < n; i++ {
		img.Pix[i*4] = data[i*3]
		img.Pix[i*4+1] = data[i*3+1]
		img.Pix[i*4+2] = data[i*3+2]
		img.Pix[i*4+3] = 255
	}
	return img, nil
}

func decodeRGBA(width, height int, data []byte) (image.Image, error) {
	n := width * height
	if len(data) < n*4 {
		return nil, gdreerrors.ErrTruncated
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, data[:n*4])
	return img, nil
}

func decodeIntensity(width, height int, data []byte) (image.Image, error) {
	n := width * height
	if len(data) < n {
		return nil, gdreerrors.ErrTruncated
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < n; i++ {
		img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2], img.Pix[i*4+3] = 255, 255, 255, data[i]
	}
	return img, nil
}

// decodeIndexed expands a v2 indexed/indexed-alpha image: pixel data is
// one palette index per texel, followed by a 256-entry palette of
// palWidth bytes each (ported from ImageParserV2::convert_indexed_image).
func decodeIndexed(format string, width, height int, data []byte) (image.Image, error) {
	palWidth := legacyPaletteWidth[format]
	n := width * height
	if len(data) < n+palWidth {
		return nil, gdreerrors.ErrTruncated
	}
	pal := make(color.Palette, 0, 256)
	for off := n; off+palWidth <= len(data); off += palWidth {
		if palWidth == 3 {
			pal = append(pal, color.NRGBA{R: data[off], G: data[off+1], B: data[off+2], A: 255})
		} else {
			pal = append(pal, color.NRGBA{R: data[off], G: data[off+1], B: data[off+2], A: data[off+3]})
		}
	}
	img := image.NewPaletted(image.Rect(0, 0, width, height), pal)
	for i := 0; i < n; i++ {
		idx := int(data[i])
		if idx >= len(pal) {
			idx = 0
		}
		img.Pix[i] = uint8(idx)
	}
	return img, nil
}

// isWebP reports whether data begins with a RIFF/WEBP container header,
// the embedded-lossy storage path image_parser_v2.cpp calls
// IMAGE_ENCODING_LOSSY.
func isWebP(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
}

// isPNG reports whether data is already a PNG stream.
func isPNG(data []byte) bool {
	return len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
}
