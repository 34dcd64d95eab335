package texture

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/resource"
	"github.com/gdretool/gdre-go/pkg/variant"
	"golang.org/x/image/webp"
)

// imageProperties is the decoded shape of an Image resource, read from its
// flat property list or from the dictionary held in its "data" property
// (the layout the resource exporter's RewriteDeprecatedImages leaves).
type imageProperties struct {
	format string
	width  int
	height int
	data   []byte
}

func readImageProperties(props []resource.Property) (imageProperties, bool) {
	var p imageProperties
	found := false
	for _, prop := range props {
		switch prop.Name {
		case "format":
			if prop.Value.Kind == variant.KindString {
				p.format = prop.Value.Str
				found = true
			}
		case "width":
			p.width = int(prop.Value.Int)
		case "height":
			p.height = int(prop.Value.Int)
		case "data":
			switch prop.Value.Kind {
			case variant.KindPackedByteArray:
				p.data = prop.Value.PackedBytes
				found = true
			case variant.KindDictionary:
				var inner []resource.Property
				for _, e := range prop.Value.Dict.Entries {
					if e.Key.Kind == variant.KindString {
						inner = append(inner, resource.Property{Name: e.Key.Str, Value: e.Value})
					}
				}
				if sub, ok := readImageProperties(inner); ok {
					p, found = sub, true
				}
			}
		}
	}
	return p, found
}

// convertToPNG converts an Image resource's properties to a PNG byte
// stream, reporting the fidelity of the conversion. Embedded WebP/PNG
// payloads (image_parser_v2.cpp's IMAGE_ENCODING_LOSSY path, and its
// modern CompressedTexture2D equivalent) are decoded/passed through
// directly; everything else goes through decodeRaw.
func convertToPNG(props []resource.Property) ([]byte, gdreerrors.LossType, error) {
	p, ok := readImageProperties(props)
	if !ok {
		return nil, gdreerrors.LossNone, fmt.Errorf("%w: no image data property found", gdreerrors.ErrUnavailable)
	}

	if isPNG(p.data) {
		return p.data, gdreerrors.LossNone, nil
	}
	if isWebP(p.data) || p.format == "WEBP" {
		img, err := webp.Decode(bytes.NewReader(p.data))
		if err != nil {
			return nil, gdreerrors.LossStored, fmt.Errorf("decoding embedded webp: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, gdreerrors.LossStored, err
		}
		return buf.Bytes(), gdreerrors.LossStored, nil
	}

	img, err := decodeRaw(p.format, p.width, p.height, p.data)
	if err != nil {
		return nil, gdreerrors.LossStored, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, gdreerrors.LossNone, err
	}
	return buf.Bytes(), gdreerrors.LossNone, nil
}
