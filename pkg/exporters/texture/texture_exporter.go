package texture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdretool/gdre-go/pkg/exporters"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/resource"
	"github.com/gdretool/gdre-go/pkg/variant"
	"github.com/hashicorp/go-hclog"
)

// Container classifies how a texture resource wraps its image data
// (texture_exporter.h's _convert_tex/_convert_atex/_convert_3d/
// _convert_layered_2d/_convert_bitmap/_convert_svg family).
type Container int

const (
	ContainerUnknown Container = iota
	ContainerSingle
	ContainerAtlas
	Container3D
	ContainerLayered
	ContainerBitmap
	ContainerSVG
)

var containerByType = map[string]Container{
	"ImageTexture":             ContainerSingle,
	"Texture2D":                ContainerSingle,
	"CompressedTexture2D":      ContainerSingle,
	"StreamTexture2D":          ContainerSingle,
	"StreamTexture":            ContainerSingle,
	"AtlasTexture":             ContainerAtlas,
	"Texture3D":                Container3D,
	"CompressedTexture3D":      Container3D,
	"TextureLayered":           ContainerLayered,
	"TextureArray":             ContainerLayered,
	"Texture2DArray":           ContainerLayered,
	"Cubemap":                  ContainerLayered,
	"CubemapArray":             ContainerLayered,
	"CompressedTextureLayered": ContainerLayered,
	"BitMap":                   ContainerBitmap,
}

func classify(resourceType string) Container {
	if c, ok := containerByType[resourceType]; ok {
		return c
	}
	return ContainerUnknown
}

// Exporter converts texture resources of any container shape back to
// PNG, or leaves SVG source text untouched (spec.md §4.F: "Detects
// container ... and back-converts to PNG, or the original if already
// lossless. Lossy input paths are flagged.").
type Exporter struct {
	Logger hclog.Logger
}

func New(logger hclog.Logger) *Exporter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Exporter{Logger: logger}
}

func (e *Exporter) HandledTypes() []string {
	return []string{
		"ImageTexture", "Texture2D", "CompressedTexture2D", "StreamTexture2D", "StreamTexture",
		"AtlasTexture", "Texture3D", "CompressedTexture3D",
		"TextureLayered", "TextureArray", "Texture2DArray", "Cubemap", "CubemapArray", "CompressedTextureLayered",
		"BitMap", "Image",
	}
}

func (e *Exporter) HandledImporters() []string {
	return []string{"texture", "texture_3d", "texture_array", "texture_atlas", "bitmap", "svg"}
}

func (e *Exporter) SupportsMultithread() bool { return true }

func (e *Exporter) DefaultOutputExtension(resPath string) string {
	if strings.EqualFold(filepath.Ext(resPath), ".svg") {
		return "svg"
	}
	return "png"
}

// resolveImageProps finds the property list that carries pixel data for
// r, following a single level of sub-resource indirection if the main
// resource's "image" property references one (the common case for
// ImageTexture/CompressedTexture2D wrapping an inline Image).
func resolveImageProps(r *resource.Resource) ([]resource.Property, bool) {
	if r.Type == "Image" {
		return r.Properties, true
	}
	imgProp, ok := r.Get("image")
	if !ok {
		// AtlasTexture wraps its pixels in "atlas" rather than "image";
		// the exported PNG is the whole sheet, uncropped by region/margin.
		imgProp, ok = r.Get("atlas")
	}
	if !ok {
		if len(r.SubResources) > 0 {
			return r.SubResources[0].Properties, true
		}
		return nil, false
	}
	if imgProp.Kind != variant.KindObjectRef || imgProp.Ref == nil || imgProp.Ref.Kind != variant.RefInternal {
		return nil, false
	}
	sub, ok := r.SubResourceByID(imgProp.Ref.SubResourceID)
	if !ok {
		return nil, false
	}
	return sub.Properties, true
}

// ExportFile decodes resPath and writes outPath. SVG textures are copied
// as raw source text (_convert_svg keeps the vector source verbatim);
// everything else goes through convertToPNG.
func (e *Exporter) ExportFile(outPath, resPath string) error {
	_, err := e.exportFile(outPath, resPath)
	return err
}

// exportFile is ExportFile plus the fidelity classification ExportResource
// needs for its report.
func (e *Exporter) exportFile(outPath, resPath string) (gdreerrors.LossType, error) {
	data, err := os.ReadFile(resPath)
	if err != nil {
		return gdreerrors.LossNone, err
	}

	if strings.EqualFold(filepath.Ext(resPath), ".svg") {
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return gdreerrors.LossNone, err
		}
		return gdreerrors.LossNone, os.WriteFile(outPath, data, 0o644)
	}

	r, err := resource.Decode(data)
	if err != nil {
		return gdreerrors.LossNone, fmt.Errorf("decoding %s: %w", resPath, err)
	}

	container := classify(r.Type)
	var props []resource.Property
	if container == ContainerBitmap {
		props = r.Properties
	} else {
		var ok bool
		props, ok = resolveImageProps(r)
		if !ok {
			return gdreerrors.LossNone, fmt.Errorf("%w: no image payload found in %s container", gdreerrors.ErrUnavailable, r.Type)
		}
	}

	png, loss, err := convertToPNG(props)
	if err != nil {
		return loss, err
	}
	if loss != gdreerrors.LossNone {
		e.Logger.Debug("texture source was already lossy", "path", resPath, "loss", loss.String())
	}
	if container == ContainerLayered || container == Container3D {
		e.Logger.Debug("exporting only the first layer of a multi-layer texture", "path", resPath, "container", container)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return loss, err
	}
	return loss, os.WriteFile(outPath, png, 0o644)
}

func (e *Exporter) ExportResource(outDir string, desc exporters.ImportDescriptor) exporters.Report {
	report := exporters.Report{Source: desc.SourcePath}
	destRel := strings.TrimPrefix(desc.Destination, "res://")
	destRel = strings.TrimSuffix(destRel, filepath.Ext(destRel)) + "." + e.DefaultOutputExtension(desc.SourcePath)
	outPath := filepath.Join(outDir, destRel)

	loss, err := e.exportFile(outPath, desc.SourcePath)
	if err != nil {
		report.Err = err
		report.Messages = append(report.Messages, "failed to export texture: "+desc.SourcePath)
		return report
	}
	report.Destination = "res://" + destRel
	report.Loss = loss
	return report
}
