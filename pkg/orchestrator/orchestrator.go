package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gdretool/gdre-go/pkg/exporters"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/project"
	"github.com/hashicorp/go-hclog"
)

// sceneResourceType is the resource class sorted to run last, because it
// references images/audio/scripts that should already be on disk by the
// time it is rewritten (spec.md §4.H: "Sort scene-like outputs to be
// processed last").
const sceneResourceType = "PackedScene"

// Token is one resource queued for export: its project descriptor (source,
// destination, importer, UID, state) plus the engine resource type that
// the descriptor alone doesn't carry but the registry needs to resolve an
// exporter.
type Token struct {
	Descriptor   *project.Descriptor
	ResourceType string
}

// Orchestrator is the single export(out_dir, filter?) entry point
// (spec.md §4.H).
type Orchestrator struct {
	Logger      hclog.Logger
	Registry    *exporters.Registry
	UIDs        *project.Cache
	Remap       *project.RemapTable
	Cancel      *CancelLatch
	Concurrency int
	Progress    ProgressFunc
}

// New returns an orchestrator. A nil Cancel is allocated for the caller;
// Concurrency <= 0 defaults to GOMAXPROCS.
func New(logger hclog.Logger, registry *exporters.Registry, uids *project.Cache, remap *project.RemapTable) *Orchestrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if uids == nil {
		uids = project.NewCache()
	}
	if remap == nil {
		remap = project.NewRemapTable()
	}
	return &Orchestrator{
		Logger:   logger,
		Registry: registry,
		UIDs:     uids,
		Remap:    remap,
		Cancel:   &CancelLatch{},
	}
}

// resolvedTask pairs a token with the exporter chosen for it.
type resolvedTask struct {
	token    Token
	exporter exporters.Exporter
}

// Export runs every token in tokens (already filtered by the caller) and
// writes results under outDir, returning the aggregated report.
func (o *Orchestrator) Export(ctx context.Context, outDir string, tokens []Token) (*ImportExporterReport, error) {
	report := newImportExporterReport()

	o.disambiguateDestinations(tokens)

	var resolved []resolvedTask
	for _, tok := range tokens {
		report.BySection[tok.ResourceType]++
		exp, err := o.Registry.Resolve(tok.Descriptor.Importer, tok.ResourceType)
		if err != nil {
			report.UnsupportedType[tok.ResourceType]++
			tok.Descriptor.State = project.NotImportable
			continue
		}
		resolved = append(resolved, resolvedTask{token: tok, exporter: exp})
	}

	safeEarly, unsafeEarly, safeLate, unsafeLate := partition(resolved)

	limit := o.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	sink := newReportSink(len(resolved))

	groups := []struct {
		tasks []resolvedTask
		limit int
	}{
		{safeEarly, limit},
		{unsafeEarly, 1},
		{safeLate, limit},
		{unsafeLate, 1},
	}

	for _, group := range groups {
		if len(group.tasks) == 0 {
			continue
		}
		funcs := make([]func(context.Context) error, len(group.tasks))
		for i, rt := range group.tasks {
			funcs[i] = o.taskFunc(outDir, rt, sink)
		}
		if err := runGroup(ctx, group.limit, funcs, o.Progress); err != nil {
			o.Logger.Error("export group failed", "error", err)
		}
	}

	reports, errMsgs, overflow := sink.drain()
	report.Reports = reports
	report.ErrorOverflow = overflow
	report.Cancelled = o.Cancel.Cancelled()
	for _, msg := range errMsgs {
		o.Logger.Debug("export error", "message", msg)
	}

	descriptors := make([]*project.Descriptor, len(tokens))
	for i, tok := range tokens {
		descriptors[i] = tok.Descriptor
	}
	if err := o.postprocess(outDir, descriptors); err != nil {
		return report, err
	}

	return report, nil
}

// taskFunc builds the closure runGroup executes for one resolved task: it
// consults the cancel latch at its single suspension point, exports, and
// feeds the result into sink and the descriptor's state machine.
func (o *Orchestrator) taskFunc(outDir string, rt resolvedTask, sink *reportSink) func(context.Context) error {
	return func(ctx context.Context) error {
		if o.Cancel.Cancelled() {
			sink.addReport(exporters.Report{
				Source: rt.token.Descriptor.SourcePath,
				Err:    gdreerrors.ErrCancelled,
			})
			return nil
		}

		desc := exporters.ImportDescriptor{
			SourcePath:  rt.token.Descriptor.SourcePath,
			Destination: rt.token.Descriptor.Destination,
			Importer:    rt.token.Descriptor.Importer,
			Params:      rt.token.Descriptor.Params,
		}
		result := rt.exporter.ExportResource(outDir, desc)
		rt.token.Descriptor.Rewrite(result.Destination, result.Err)
		sink.addReport(result)
		return nil
	}
}

// partition splits resolved into (multithread-safe, unsafe) x (non-scene,
// scene) groups, preserving relative order within each group.
func partition(resolved []resolvedTask) (safeEarly, unsafeEarly, safeLate, unsafeLate []resolvedTask) {
	for _, rt := range resolved {
		isScene := rt.token.ResourceType == sceneResourceType
		safe := rt.exporter.SupportsMultithread()
		switch {
		case safe && !isScene:
			safeEarly = append(safeEarly, rt)
		case !safe && !isScene:
			unsafeEarly = append(unsafeEarly, rt)
		case safe && isScene:
			safeLate = append(safeLate, rt)
		default:
			unsafeLate = append(unsafeLate, rt)
		}
	}
	return
}

// disambiguateDestinations resolves destination-path collisions across
// every token up front: every token whose destination is shared with
// another is moved under `res://.assets/` and suffixed by
// project.Disambiguate, and each rename is recorded in the remap table
// (spec.md §4.H: "Deduplicate destination paths... record a mapping
// new_dest -> original_source"; scenario 6).
func (o *Orchestrator) disambiguateDestinations(tokens []Token) {
	counts := map[string]int{}
	for _, tok := range tokens {
		counts[tok.Descriptor.Destination]++
	}
	seen := map[string]string{}
	for _, tok := range tokens {
		original := tok.Descriptor.Destination
		candidate := original
		if counts[original] > 1 {
			candidate = "res://.assets/" + original[strings.LastIndex(original, "/")+1:]
		}
		resolved := project.Disambiguate(seen, candidate, tok.Descriptor.SourcePath)
		if resolved != original {
			o.Remap.Set(resolved, tok.Descriptor.SourcePath)
			tok.Descriptor.Destination = resolved
		}
	}
}

// postprocess runs Component G's final pass: prune resolved remaps,
// regenerate UID sidecars for every script-like output, and synthesize
// the editor's filesystem cache (spec.md §4.H).
func (o *Orchestrator) postprocess(outDir string, descriptors []*project.Descriptor) error {
	o.Remap.Reconcile(descriptors)

	for _, d := range descriptors {
		if d.State != project.Rewritten || !strings.HasSuffix(d.Destination, ".gd") {
			continue
		}
		outPath := filepath.Join(outDir, strings.TrimPrefix(d.Destination, "res://"))
		uid := o.UIDs.UIDFor(d.SourcePath)
		if err := project.WriteSidecar(outPath, uid); err != nil {
			o.Logger.Warn("failed to regenerate uid sidecar", "path", outPath, "error", err)
		}
	}

	entries := entriesFromDescriptors(descriptors, o.UIDs)
	cache := SynthesizeFilesystemCache(entries, 0)
	cacheDir := filepath.Join(outDir, ".godot", "editor")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cacheDir, "filesystem_cache10"), []byte(cache), 0o644)
}
