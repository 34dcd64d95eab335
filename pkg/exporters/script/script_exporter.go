// Package script implements the script exporter: it invokes the bytecode
// decompiler, writes recovered source text, recreates sibling UID
// sidecar files for engines that use them, and feeds candidate
// translation keys to the shared key-hint collector (spec.md §4.F,
// "Script").
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gdretool/gdre-go/pkg/bytecode"
	"github.com/gdretool/gdre-go/pkg/exporters"
	"github.com/gdretool/gdre-go/pkg/exporters/translation"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/project"
	"github.com/hashicorp/go-hclog"
)

// trCallPattern matches `tr("key")` / `tr('key')` calls, the source-level
// shape a translation key takes before OptimizedTranslation hashes it
// away (spec.md §4.F: the script exporter "feeds candidate keys" to the
// translation exporter).
var trCallPattern = regexp.MustCompile(`\btr\(\s*["']([^"']+)["']`)

// Exporter decompiles GDScript bytecode back to source.
type Exporter struct {
	Logger hclog.Logger
	UIDs   *project.Cache
	Hints  *translation.KeyHintCollector
}

// New returns a script exporter. uids and hints may be shared across
// every script export the orchestrator runs concurrently.
func New(logger hclog.Logger, uids *project.Cache, hints *translation.KeyHintCollector) *Exporter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if uids == nil {
		uids = project.NewCache()
	}
	if hints == nil {
		hints = translation.NewKeyHintCollector()
	}
	return &Exporter{Logger: logger, UIDs: uids, Hints: hints}
}

func (e *Exporter) HandledTypes() []string { return []string{"GDScript", "Script"} }

func (e *Exporter) HandledImporters() []string { return []string{"script_bytecode"} }

func (e *Exporter) SupportsMultithread() bool { return true }

func (e *Exporter) DefaultOutputExtension(resPath string) string { return "gd" }

// decompile runs the bytecode decompiler and returns both the source text
// and whether the detected revision is a 4.x one. The registry does not
// distinguish 4.0 from 4.3+ (a single "4.x-default" revision covers the
// whole line, pkg/bytecode/revision.go), and UID sidecars only started in
// 4.3; lacking a finer signal, every 4.x script gets one.
func (e *Exporter) decompile(resPath string) (string, bool, error) {
	data, err := os.ReadFile(resPath)
	if err != nil {
		return "", false, err
	}
	source, ts, err := bytecode.Decompile(data)
	if err != nil {
		return "", false, fmt.Errorf("decompiling %s: %w", resPath, err)
	}
	isV4 := ts != nil && ts.Revision != nil && ts.Revision.HasTypeHints

	for _, m := range trCallPattern.FindAllStringSubmatch(source, -1) {
		e.Hints.Add(m[1])
	}

	return source, isV4, nil
}

// ExportFile writes the decompiled source to outPath and, for engines new
// enough to use them, a sibling `.uid` sidecar.
func (e *Exporter) ExportFile(outPath, resPath string) error {
	source, isV4, err := e.decompile(resPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(source), 0o644); err != nil {
		return err
	}
	if isV4 {
		uid := e.UIDs.UIDFor(resPath)
		if err := project.WriteSidecar(outPath, uid); err != nil {
			e.Logger.Warn("failed to write uid sidecar", "path", outPath, "error", err)
		}
	}
	return nil
}

func (e *Exporter) ExportResource(outDir string, desc exporters.ImportDescriptor) exporters.Report {
	report := exporters.Report{Source: desc.SourcePath}
	destRel := strings.TrimPrefix(desc.Destination, "res://")
	destRel = strings.TrimSuffix(destRel, filepath.Ext(destRel)) + "." + e.DefaultOutputExtension(desc.SourcePath)
	outPath := filepath.Join(outDir, destRel)

	source, isV4, err := e.decompile(desc.SourcePath)
	if err != nil {
		report.Err = err
		report.Messages = append(report.Messages, "failed to decompile script: "+desc.SourcePath)
		return report
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		report.Err = err
		return report
	}
	if err := os.WriteFile(outPath, []byte(source), 0o644); err != nil {
		report.Err = err
		return report
	}
	if isV4 {
		uid := e.UIDs.UIDFor(desc.SourcePath)
		if err := project.WriteSidecar(outPath, uid); err != nil {
			report.Messages = append(report.Messages, "failed to write uid sidecar: "+err.Error())
		}
	}

	// Reconstructed source is semantically equivalent but not guaranteed
	// byte-identical to whatever text the engine originally compiled
	// (pkg/bytecode's reference-compiler equivalence check is best-effort,
	// not a proof).
	report.Destination = "res://" + destRel
	report.Loss = gdreerrors.LossImported
	return report
}
