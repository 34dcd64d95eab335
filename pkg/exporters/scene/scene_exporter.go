package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdretool/gdre-go/pkg/exporters"
	resexporter "github.com/gdretool/gdre-go/pkg/exporters/resource"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/resource"
	"github.com/gdretool/gdre-go/pkg/variant"
	"github.com/hashicorp/go-hclog"
)

// Exporter converts a PackedScene to its text .tscn form. It reuses the
// resource exporter's binary<->text codec and deprecated-image rewrite
// wholesale (spec.md §4.F: "Delegates to the binary<->text exporter"),
// layering on embedded-image hash tracking.
type Exporter struct {
	Logger hclog.Logger
	Images *ImageHashRegistry

	inner *resexporter.Exporter
}

// New returns a scene exporter sharing images with any other scene
// exports running concurrently under the orchestrator.
func New(logger hclog.Logger, images *ImageHashRegistry) *Exporter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if images == nil {
		images = NewImageHashRegistry()
	}
	return &Exporter{Logger: logger, Images: images, inner: resexporter.New(logger)}
}

func (e *Exporter) HandledTypes() []string { return []string{"PackedScene"} }

func (e *Exporter) HandledImporters() []string { return []string{"scene"} }

func (e *Exporter) SupportsMultithread() bool { return true }

func (e *Exporter) DefaultOutputExtension(resPath string) string { return "tscn" }

// ExportFile decodes the scene, records a hash for every embedded image
// sub-resource, rewrites deprecated v2 image storage, and writes the text
// form to outPath.
func (e *Exporter) ExportFile(outPath, resPath string) error {
	data, err := os.ReadFile(resPath)
	if err != nil {
		return err
	}
	r, err := resource.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", resPath, err)
	}

	e.recordImageHashes(resPath, r)

	if n := resexporter.RewriteDeprecatedImages(r); n > 0 {
		e.Logger.Debug("rewrote deprecated v2 image storage", "path", resPath, "count", n)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	text := resource.ToText(r, variant.Engine4, resource.FormatVersionFor(4, 0))
	return os.WriteFile(outPath, []byte(text), 0o644)
}

func (e *Exporter) recordImageHashes(scenePath string, r *resource.Resource) {
	for i := range r.SubResources {
		sub := &r.SubResources[i]
		if sub.Type != "Image" {
			continue
		}
		for _, p := range sub.Properties {
			if p.Name != "data" || p.Value.Kind != variant.KindPackedByteArray {
				continue
			}
			hash, duplicate := e.Images.Record(scenePath, p.Value.PackedBytes)
			if duplicate {
				e.Logger.Debug("embedded image content already seen", "scene", scenePath, "hash", hash)
			}
		}
	}
}

func (e *Exporter) ExportResource(outDir string, desc exporters.ImportDescriptor) exporters.Report {
	report := exporters.Report{Source: desc.SourcePath}
	destRel := strings.TrimPrefix(desc.Destination, "res://")
	destRel = strings.TrimSuffix(destRel, filepath.Ext(destRel)) + "." + e.DefaultOutputExtension(desc.SourcePath)
	outPath := filepath.Join(outDir, destRel)

	if err := e.ExportFile(outPath, desc.SourcePath); err != nil {
		report.Err = err
		report.Messages = append(report.Messages, "failed to export scene: "+desc.SourcePath)
		return report
	}
	report.Destination = "res://" + destRel
	report.Loss = gdreerrors.LossNone
	return report
}
