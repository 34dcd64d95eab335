package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdretool/gdre-go/pkg/exporters"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/resource"
	"github.com/hashicorp/go-hclog"
)

// SampleExporter decodes AudioStreamWAV/AudioStreamSample resources to a
// RIFF/WAVE file (spec.md §4.F, "Sampled audio (WAV family)").
type SampleExporter struct {
	Logger hclog.Logger
}

// NewSample returns a sample-audio exporter using logger, or a null logger.
func NewSample(logger hclog.Logger) *SampleExporter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SampleExporter{Logger: logger}
}

func (e *SampleExporter) HandledTypes() []string {
	return []string{"AudioStreamWAV", "AudioStreamSample"}
}

func (e *SampleExporter) HandledImporters() []string { return []string{"sample", "wav"} }

func (e *SampleExporter) SupportsMultithread() bool { return true }

func (e *SampleExporter) DefaultOutputExtension(resPath string) string { return "wav" }

// ExportFile loads the sample resource at resPath, decodes it to 16-bit
// PCM, and writes outPath as a RIFF/WAVE file.
func (e *SampleExporter) ExportFile(outPath, resPath string) error {
	_, loss, err := e.exportFile(outPath, resPath)
	if err != nil {
		return err
	}
	if loss != gdreerrors.LossNone {
		e.Logger.Debug("sample re-export is lossy", "path", resPath, "loss", loss.String())
	}
	return nil
}

func (e *SampleExporter) exportFile(outPath, resPath string) (*Sample, gdreerrors.LossType, error) {
	raw, err := os.ReadFile(resPath)
	if err != nil {
		return nil, gdreerrors.LossNone, err
	}
	r, err := resource.Decode(raw)
	if err != nil {
		return nil, gdreerrors.LossNone, fmt.Errorf("decoding %s: %w", resPath, err)
	}
	sample, err := ParseSample(r)
	if err != nil {
		return nil, gdreerrors.LossNone, err
	}
	decoded, err := Decode16Bit(sample)
	if err != nil {
		return nil, gdreerrors.LossNone, fmt.Errorf("decoding sample %s: %w", resPath, err)
	}
	channels := 1
	if sample.Stereo {
		channels = 2
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, gdreerrors.LossNone, err
	}
	wav := EncodeWAV(decoded.pcm, sample.MixRate, channels)
	if err := os.WriteFile(outPath, wav, 0o644); err != nil {
		return nil, gdreerrors.LossNone, err
	}
	return sample, decoded.loss, nil
}

func (e *SampleExporter) ExportResource(outDir string, desc exporters.ImportDescriptor) exporters.Report {
	report := exporters.Report{Source: desc.SourcePath}
	destRel := strings.TrimPrefix(desc.Destination, "res://")
	destRel = strings.TrimSuffix(destRel, filepath.Ext(destRel)) + "." + e.DefaultOutputExtension(desc.SourcePath)
	outPath := filepath.Join(outDir, destRel)

	_, loss, err := e.exportFile(outPath, desc.SourcePath)
	if err != nil {
		report.Err = err
		report.Messages = append(report.Messages, "failed to export sample: "+desc.SourcePath)
		return report
	}
	report.Destination = "res://" + destRel
	report.Loss = loss
	return report
}
