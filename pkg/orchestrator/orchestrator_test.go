package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gdretool/gdre-go/pkg/exporters"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/project"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	types       []string
	importers   []string
	multithread bool
	mu          *sync.Mutex // non-nil simulates shared mutable state
	calls       *[]string
}

func (f fakeExporter) HandledTypes() []string      { return f.types }
func (f fakeExporter) HandledImporters() []string  { return f.importers }
func (f fakeExporter) SupportsMultithread() bool    { return f.multithread }
func (f fakeExporter) DefaultOutputExtension(string) string { return "out" }
func (f fakeExporter) ExportFile(outPath, resPath string) error { return nil }

func (f fakeExporter) ExportResource(outDir string, desc exporters.ImportDescriptor) exporters.Report {
	if f.mu != nil {
		f.mu.Lock()
		defer f.mu.Unlock()
	}
	*f.calls = append(*f.calls, desc.SourcePath)
	return exporters.Report{Source: desc.SourcePath, Destination: desc.Destination, Loss: gdreerrors.LossNone}
}

func descriptor(src, dst, importer string) *project.Descriptor {
	return &project.Descriptor{SourcePath: src, Destination: dst, Importer: importer}
}

func TestExportRunsSceneLast(t *testing.T) {
	var order []string
	var mu sync.Mutex
	recordingExporter := func(name string, types []string, safe bool) fakeExporter {
		return fakeExporter{types: types, importers: []string{name}, multithread: safe, mu: &mu, calls: &order}
	}

	reg := exporters.NewRegistry()
	reg.Register(recordingExporter("tex", []string{"Texture2D"}, true))
	reg.Register(recordingExporter("scene", []string{"PackedScene"}, true))

	o := New(nil, reg, nil, nil)
	tokens := []Token{
		{Descriptor: descriptor("res://a.scn", "res://a.tscn", "scene"), ResourceType: "PackedScene"},
		{Descriptor: descriptor("res://a.png", "res://a.png", "tex"), ResourceType: "Texture2D"},
	}

	dir := t.TempDir()
	report, err := o.Export(context.Background(), dir, tokens)
	require.NoError(t, err)
	require.Len(t, report.Reports, 2)
	require.Equal(t, []string{"res://a.png", "res://a.scn"}, order)
}

func TestExportUnsupportedTypeTallied(t *testing.T) {
	reg := exporters.NewRegistry()
	o := New(nil, reg, nil, nil)
	tokens := []Token{
		{Descriptor: descriptor("res://a.bin", "res://a.bin", "unknown"), ResourceType: "Nonsense"},
	}
	dir := t.TempDir()
	report, err := o.Export(context.Background(), dir, tokens)
	require.NoError(t, err)
	require.Equal(t, 1, report.UnsupportedType["Nonsense"])
	require.Equal(t, project.NotImportable, tokens[0].Descriptor.State)
}

func TestExportDisambiguatesDuplicateDestinations(t *testing.T) {
	var order []string
	var mu sync.Mutex
	e := fakeExporter{types: []string{"AudioStreamWAV"}, importers: []string{"wav"}, multithread: true, mu: &mu, calls: &order}
	reg := exporters.NewRegistry()
	reg.Register(e)

	o := New(nil, reg, nil, nil)
	tokens := []Token{
		{Descriptor: descriptor("res://a.wav", "res://x.wav", "wav"), ResourceType: "AudioStreamWAV"},
		{Descriptor: descriptor("res://b.wav", "res://x.wav", "wav"), ResourceType: "AudioStreamWAV"},
	}
	dir := t.TempDir()
	_, err := o.Export(context.Background(), dir, tokens)
	require.NoError(t, err)
	require.Equal(t, "res://.assets/x.wav", tokens[0].Descriptor.Destination)
	require.Equal(t, "res://.assets/x.1.wav", tokens[1].Descriptor.Destination)

	remapped, ok := o.Remap.Resolve("res://.assets/x.1.wav")
	require.True(t, ok)
	require.Equal(t, "res://b.wav", remapped)
}

func TestExportWritesFilesystemCache(t *testing.T) {
	var order []string
	var mu sync.Mutex
	e := fakeExporter{types: []string{"Texture2D"}, importers: []string{"tex"}, multithread: true, mu: &mu, calls: &order}
	reg := exporters.NewRegistry()
	reg.Register(e)

	o := New(nil, reg, nil, nil)
	tokens := []Token{
		{Descriptor: descriptor("res://a.png", "res://a.png", "tex"), ResourceType: "Texture2D"},
	}
	dir := t.TempDir()
	_, err := o.Export(context.Background(), dir, tokens)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".godot", "editor", "filesystem_cache10"))
	require.NoError(t, err)
	require.Contains(t, string(data), "::res://::")
}

func TestCancelLatchStopsPendingTasks(t *testing.T) {
	var order []string
	var mu sync.Mutex
	e := fakeExporter{types: []string{"Texture2D"}, importers: []string{"tex"}, multithread: true, mu: &mu, calls: &order}
	reg := exporters.NewRegistry()
	reg.Register(e)

	o := New(nil, reg, nil, nil)
	o.Cancel.Cancel()
	tokens := []Token{
		{Descriptor: descriptor("res://a.png", "res://a.png", "tex"), ResourceType: "Texture2D"},
	}
	dir := t.TempDir()
	report, err := o.Export(context.Background(), dir, tokens)
	require.NoError(t, err)
	require.Len(t, report.Reports, 1)
	require.ErrorIs(t, report.Reports[0].Err, gdreerrors.ErrCancelled)
	require.Empty(t, order)
}
