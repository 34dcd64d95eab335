// Package resource implements the binary<->text resource exporter and the
// scene exporter that delegates to it (spec.md §4.F).
package resource

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

// Exporter performs a pure variant round-trip from a binary resource file
// to its text equivalent, rewriting the deprecated v2 image storage layout
// along the way (spec.md §4.F, "Binary↔text resource").
type Exporter struct {
	Logger hclog.Logger
}

// New returns a resource exporter using logger, or a null logger if nil.
func New(logger hclog.Logger) *Exporter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Exporter{Logger: logger}
}

func (e *Exporter) HandledTypes() []string {
	return []string{"Resource", "Environment", "Animation", "Theme", "AudioStream"}
}

func (e *Exporter) HandledImporters() []string {
	return []string{"resource", "animation"}
}

func (e *Exporter) SupportsMultithread() bool { return true }

func (e *Exporter) DefaultOutputExtension(resPath string) string { return "tres" }

// ExportFile loads the binary resource at resPath and writes its text
// equivalent to outPath, first passing it through RewriteDeprecatedImages
// (which applies to any Image whose "data" dictionary carries a "data" key,
// regardless of engine version).
func (e *Exporter) ExportFile(outPath, resPath string) error {
	data, err := os.ReadFile(resPath)
	if err != nil {
		return err
	}
	r, err := resource.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", resPath, err)
	}
	rewritten := RewriteDeprecatedImages(r)
	if rewritten > 0 {
		e.Logger.Debug("rewrote deprecated v2 image storage", "path", resPath, "count", rewritten)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	text := resource.ToText(r, variant.Engine4, resource.FormatVersionFor(4, 0))
	return os.WriteFile(outPath, []byte(text), 0o644)
}

func (e *Exporter) ExportResource(outDir string, desc exporters.ImportDescriptor) exporters.Report {
	report := exporters.Report{Source: desc.SourcePath}
	destRel := strings.TrimPrefix(desc.Destination, "res://")
	destRel = strings.TrimSuffix(destRel, filepath.Ext(destRel)) + "." + e.DefaultOutputExtension(desc.SourcePath)
	outPath := filepath.Join(outDir, destRel)

	if err := e.ExportFile(outPath, desc.SourcePath); err != nil {
		report.Err = err
		report.Messages = append(report.Messages, "failed to export resource: "+desc.SourcePath)
		return report
	}
	report.Destination = "res://" + destRel
	report.Loss = gdreerrors.LossNone
	return report
}

// legacyImageKeys are the `Image` "data" dictionary keys kept by the
// rewrite, in the order they are emitted.
var legacyImageKeys = []string{"format", "width", "height", "mipmaps", "data"}

// RewriteDeprecatedImages walks r's main properties and every sub-resource
// looking for an `Image` with a dictionary-valued "data" property that
// carries a "data" key, and replaces that dictionary with one holding only
// the legacyImageKeys entries it has, in legacyImageKeys order (spec.md
// §4.F: "for v2, rewrites deprecated image storage to the v3/v4 format").
// Returns the number of images rewritten. Pixel reformatting
// (indexed-palette expansion) is the texture exporter's job; this only
// restructures the container the pixels live in.
func RewriteDeprecatedImages(r *resource.Resource) int {
	count := 0
	if r.Type == "Image" && rewriteImageProperties(r.Properties) {
		count++
	}
	for i := range r.SubResources {
		sub := &r.SubResources[i]
		if sub.Type != "Image" {
			continue
		}
		if rewriteImageProperties(sub.Properties) {
			count++
		}
	}
	return count
}

func rewriteImageProperties(props []resource.Property) bool {
	for i, p := range props {
		if p.Name != "data" || p.Value.Kind != variant.KindDictionary {
			continue
		}
		dict := p.Value.Dict
		legacy := map[string]*variant.Value{}
		for _, entry := range dict.Entries {
			if entry.Key.Kind == variant.KindString {
				legacy[entry.Key.Str] = entry.Value
			}
		}
		if _, ok := legacy["data"]; !ok {
			continue
		}
		flat := &variant.Value{Kind: variant.KindDictionary, Dict: &variant.Dictionary{}}
		for _, key := range legacyImageKeys {
			if v, ok := legacy[key]; ok {
				flat.Dict.Set(variant.String(key), v)
			}
		}
		props[i].Value = flat
		return true
	}
	return false
}
