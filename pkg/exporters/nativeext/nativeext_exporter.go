// Package nativeext implements the native-extension manifest exporter: it
// reads a `.gdextension` manifest (ConfigFile-format, parsed the same way
// as project.godot) and materializes every platform/architecture entry's
// shared library, either copying it from the package or fetching it
// through an injected collaborator (spec.md §4.F, "Native-extension
// manifest... via an injected plugin source (external collaborator)").
package nativeext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdretool/gdre-go/pkg/exporters"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/project"
	"github.com/hashicorp/go-hclog"
)

// LibrarySource is the external collaborator that resolves a native
// library entry to bytes when the package did not embed it directly
// (ported from PluginSource's get_plugin_download_url/get_plugin_version
// shape, utility/plugin_source.h). Implementations may hit a plugin
// registry, a local mirror, or simply refuse with ErrUnavailable.
type LibrarySource interface {
	// Fetch returns the bytes of the native library the manifest names at
	// libraryPath (a res://-relative path from the [libraries] section).
	Fetch(ctx context.Context, libraryPath string) ([]byte, error)
}

// NoopSource always refuses, for callers that only want local copies and
// never want the exporter reaching out to anything.
type NoopSource struct{}

func (NoopSource) Fetch(ctx context.Context, libraryPath string) ([]byte, error) {
	return nil, fmt.Errorf("%w: no library source configured for %s", gdreerrors.ErrUnavailable, libraryPath)
}

// Exporter materializes the shared libraries a .gdextension manifest
// declares.
type Exporter struct {
	Logger hclog.Logger
	Source LibrarySource
	// PackageRoot is the extracted package tree that may already carry
	// the library bytes as an ordinary file.
	PackageRoot string
}

// New returns a native-extension exporter. source defaults to NoopSource.
func New(logger hclog.Logger, packageRoot string, source LibrarySource) *Exporter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if source == nil {
		source = NoopSource{}
	}
	return &Exporter{Logger: logger, Source: source, PackageRoot: packageRoot}
}

func (e *Exporter) HandledTypes() []string { return []string{"GDExtension", "NativeExtension"} }

func (e *Exporter) HandledImporters() []string { return []string{"gdextension"} }

func (e *Exporter) SupportsMultithread() bool { return true }

func (e *Exporter) DefaultOutputExtension(resPath string) string { return "gdextension" }

// ExportFile copies the manifest text verbatim to outPath and resolves
// every [libraries] entry alongside it.
func (e *Exporter) ExportFile(outPath, resPath string) error {
	raw, err := os.ReadFile(resPath)
	if err != nil {
		return err
	}
	cfg, err := project.ParseText(string(raw))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", resPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, raw, 0o644); err != nil {
		return err
	}
	return e.materializeLibraries(filepath.Dir(outPath), cfg)
}

// materializeLibraries walks the manifest's [libraries] section, whose
// keys are platform.arch tags ("windows.x86_64", "linux.arm64", ...) and
// values are res://-relative library paths, and ensures each one exists
// next to the manifest.
func (e *Exporter) materializeLibraries(outDir string, cfg *project.Config) error {
	ctx := context.Background()
	for _, entry := range cfg.Entries {
		if entry.Section != "libraries" {
			continue
		}
		libPath := entry.Value.Str
		if libPath == "" {
			continue
		}
		rel := strings.TrimPrefix(libPath, "res://")
		dest := filepath.Join(outDir, rel)
		if err := e.materializeOne(ctx, libPath, dest); err != nil {
			e.Logger.Warn("failed to materialize native library", "tag", entry.Key, "path", libPath, "error", err)
		}
	}
	return nil
}

func (e *Exporter) materializeOne(ctx context.Context, libPath, dest string) error {
	if e.PackageRoot != "" {
		src := filepath.Join(e.PackageRoot, strings.TrimPrefix(libPath, "res://"))
		if data, err := os.ReadFile(src); err == nil {
			return writeLibrary(dest, data)
		}
	}
	data, err := e.Source.Fetch(ctx, libPath)
	if err != nil {
		return err
	}
	return writeLibrary(dest, data)
}

func writeLibrary(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o755)
}

func (e *Exporter) ExportResource(outDir string, desc exporters.ImportDescriptor) exporters.Report {
	report := exporters.Report{Source: desc.SourcePath}
	destRel := strings.TrimPrefix(desc.Destination, "res://")
	outPath := filepath.Join(outDir, destRel)

	if err := e.ExportFile(outPath, desc.SourcePath); err != nil {
		report.Err = err
		report.Messages = append(report.Messages, "failed to export native extension manifest: "+desc.SourcePath)
		return report
	}
	report.Destination = "res://" + destRel
	report.Loss = gdreerrors.LossNone
	return report
}
