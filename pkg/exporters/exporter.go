// Package exporters implements Component F: a registry of per-type
// back-conversion exporters and the report shape they produce. Each
// concrete exporter lives in its own subpackage (texture, audio, resource,
// translation, scene, script, nativeext) and is registered into a shared
// Registry at startup (internal/exportregistry), mirroring the teacher's pattern
// of a small interface implemented by independent, swappable strategies
// (format_2025's builder/reader split) rather than a single god-object.
package exporters

import (
	"fmt"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
)

// ImportDescriptor is the subset of a project.Descriptor an exporter needs
// to do its work: where the resource lives inside the package, where it
// should land in the reconstructed project, and the importer that produced
// it (spec.md §4.F: `export_resource(out_dir, import_descriptor) → report`).
type ImportDescriptor struct {
	SourcePath string
	Destination string
	Importer   string
	Params     map[string]string
	EngineMajor uint32
	EngineMinor uint32
}

// Report is one exporter invocation's outcome (spec.md §4.H
// `ExportReport { source, destination, error?, loss_type, messages,
// dependencies }`).
type Report struct {
	Source       string
	Destination  string
	Err          error
	Loss         gdreerrors.LossType
	Messages     []string
	Dependencies []string
}

// Exporter converts one engine-imported resource type back to a
// conventional source asset (spec.md §4.F).
type Exporter interface {
	// HandledTypes lists the engine resource class names this exporter
	// accepts (e.g. "AudioStreamWAV").
	HandledTypes() []string
	// HandledImporters lists the importer names this exporter accepts
	// (e.g. "wav", "ogg_vorbis").
	HandledImporters() []string
	// SupportsMultithread reports whether concurrent invocations of
	// ExportResource are safe; exporters that touch shared mutable state
	// (e.g. a translation key-hint collector) return false and the
	// orchestrator batches them onto a single worker.
	SupportsMultithread() bool
	// DefaultOutputExtension returns the file extension (without a dot)
	// this exporter writes for resPath, absent an explicit override.
	DefaultOutputExtension(resPath string) string
	// ExportFile converts the resource at resPath (package-relative,
	// already extracted to a readable location by the caller) and writes
	// the result to outPath.
	ExportFile(outPath, resPath string) error
	// ExportResource is the descriptor-driven entry point the
	// orchestrator calls: it resolves source/destination itself and
	// returns a full Report rather than a bare error.
	ExportResource(outDir string, desc ImportDescriptor) Report
}

// key identifies a registry slot by the two independent axes the engine
// exposes: resource type and importer name. Registry keeps one map per axis
// instead; Resolve below checks the importer name first, then the type.
type key struct {
	resourceType string
	importer     string
}

// Registry dispatches (importer_name, resource_type) to the Exporter that
// declared it handles them (spec.md §4.F: "A registry maps (importer_name,
// resource_type) → exporter").
type Registry struct {
	byType     map[string]Exporter
	byImporter map[string]Exporter
	all        []Exporter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: map[string]Exporter{}, byImporter: map[string]Exporter{}}
}

// Register adds e under every type and importer name it declares handling.
// A later registration for the same key silently overrides an earlier one,
// so callers can register a more specific exporter after a catch-all.
func (r *Registry) Register(e Exporter) {
	r.all = append(r.all, e)
	for _, t := range e.HandledTypes() {
		r.byType[t] = e
	}
	for _, imp := range e.HandledImporters() {
		r.byImporter[imp] = e
	}
}

// Resolve finds the exporter for (importerName, resourceType), preferring
// an importer-name match (the more specific axis in practice: one resource
// type like "Resource" spans many importers) and falling back to a
// resource-type match.
func (r *Registry) Resolve(importerName, resourceType string) (Exporter, error) {
	if e, ok := r.byImporter[importerName]; ok {
		return e, nil
	}
	if e, ok := r.byType[resourceType]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: no exporter for importer=%q type=%q", gdreerrors.ErrUnavailable, importerName, resourceType)
}

// All returns every registered exporter, in registration order.
func (r *Registry) All() []Exporter {
	return append([]Exporter(nil), r.all...)
}
