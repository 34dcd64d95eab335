// Package audio implements the streamed (Ogg Vorbis passthrough) and
// sampled (WAV family) audio exporters (spec.md §4.F).
package audio

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

// StreamExporter strips the engine's AudioStreamOggVorbis wrapper and
// writes the embedded Ogg bitstream byte-for-byte (spec.md §4.F, "Streamed
// audio (Ogg Vorbis)... lossless").
type StreamExporter struct {
	Logger hclog.Logger
}

// NewStream returns an Ogg-stream exporter using logger, or a null logger.
func NewStream(logger hclog.Logger) *StreamExporter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &StreamExporter{Logger: logger}
}

func (e *StreamExporter) HandledTypes() []string {
	return []string{"AudioStreamOggVorbis", "AudioStreamOGGVorbis"}
}

func (e *StreamExporter) HandledImporters() []string { return []string{"oggvorbisstr"} }

func (e *StreamExporter) SupportsMultithread() bool { return true }

func (e *StreamExporter) DefaultOutputExtension(resPath string) string { return "ogg" }

// ExportFile loads the binary resource at resPath and writes its embedded
// "data" PackedByteArray to outPath unmodified.
func (e *StreamExporter) ExportFile(outPath, resPath string) error {
	raw, err := os.ReadFile(resPath)
	if err != nil {
		return err
	}
	r, err := resource.Decode(raw)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", resPath, err)
	}
	data, ok := r.Get("data")
	if !ok || data.Kind != variant.KindPackedByteArray {
		return fmt.Errorf("%w: %s has no Ogg byte stream", gdreerrors.ErrCorruptHeader, resPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, data.PackedBytes, 0o644)
}

func (e *StreamExporter) ExportResource(outDir string, desc exporters.ImportDescriptor) exporters.Report {
	report := exporters.Report{Source: desc.SourcePath}
	destRel := strings.TrimPrefix(desc.Destination, "res://")
	destRel = strings.TrimSuffix(destRel, filepath.Ext(destRel)) + "." + e.DefaultOutputExtension(desc.SourcePath)
	outPath := filepath.Join(outDir, destRel)

	if err := e.ExportFile(outPath, desc.SourcePath); err != nil {
		report.Err = err
		report.Messages = append(report.Messages, "failed to export ogg stream: "+desc.SourcePath)
		return report
	}
	report.Destination = "res://" + destRel
	report.Loss = gdreerrors.LossNone
	return report
}
