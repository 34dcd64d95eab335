package translation

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

// Exporter converts Translation/OptimizedTranslation resources to CSV. It
// touches the shared Hints collector, so the orchestrator must not run it
// concurrently with itself (spec.md §4.F: "Scheduling hint: exporters flag
// multithread safety; the orchestrator batches unsafe exporters onto a
// single worker").
type Exporter struct {
	Logger hclog.Logger
	Hints  *KeyHintCollector
}

// New returns a translation exporter sharing hints with the script
// exporter that feeds it candidate keys.
func New(logger hclog.Logger, hints *KeyHintCollector) *Exporter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if hints == nil {
		hints = NewKeyHintCollector()
	}
	return &Exporter{Logger: logger, Hints: hints}
}

func (e *Exporter) HandledTypes() []string {
	return []string{"Translation", "OptimizedTranslation"}
}

func (e *Exporter) HandledImporters() []string { return []string{"csv_translation"} }

func (e *Exporter) SupportsMultithread() bool { return false }

func (e *Exporter) DefaultOutputExtension(resPath string) string { return "csv" }

func (e *Exporter) loadTable(resPath string) (*Table, error) {
	raw, err := os.ReadFile(resPath)
	if err != nil {
		return nil, err
	}
	r, err := resource.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", resPath, err)
	}
	switch r.Type {
	case "OptimizedTranslation":
		return ParseOptimized(r, e.Hints)
	case "Translation":
		return ParsePlain(r)
	default:
		return nil, fmt.Errorf("%w: unrecognized translation resource type %q", gdreerrors.ErrUnavailable, r.Type)
	}
}

func (e *Exporter) ExportFile(outPath, resPath string) error {
	t, err := e.loadTable(resPath)
	if err != nil {
		return err
	}
	if t.MissingKeys > 0 {
		e.Logger.Warn("translation table has unrecovered keys", "path", resPath, "missing_keys", t.MissingKeys)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(ToCSV(t)), 0o644)
}

func (e *Exporter) ExportResource(outDir string, desc exporters.ImportDescriptor) exporters.Report {
	report := exporters.Report{Source: desc.SourcePath}
	destRel := strings.TrimPrefix(desc.Destination, "res://")
	destRel = strings.TrimSuffix(destRel, filepath.Ext(destRel)) + "." + e.DefaultOutputExtension(desc.SourcePath)
	outPath := filepath.Join(outDir, destRel)

	t, err := e.loadTable(desc.SourcePath)
	if err != nil {
		report.Err = err
		report.Messages = append(report.Messages, "failed to export translation table: "+desc.SourcePath)
		return report
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		report.Err = err
		return report
	}
	if err := os.WriteFile(outPath, []byte(ToCSV(t)), 0o644); err != nil {
		report.Err = err
		return report
	}
	report.Destination = "res://" + destRel
	if t.MissingKeys > 0 {
		report.Loss = gdreerrors.LossImported
		report.Messages = append(report.Messages, fmt.Sprintf("%d keys could not be recovered", t.MissingKeys))
	} else {
		report.Loss = gdreerrors.LossNone
	}
	return report
}
