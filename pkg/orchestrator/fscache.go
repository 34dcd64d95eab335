package orchestrator

import (
	"fmt"
	"strings"

	"github.com/gdretool/gdre-go/pkg/project"
)

// FilesystemCacheEntry is one record of the editor's on-disk filesystem
// cache (spec.md §6: "one record per file with `::section::mtime` section
// headers and `field<>field<>…` per-file entries").
//
// The real cache carries more fields after ModifiedTime for v4.4 (a
// `<*>`-joined destination-file list, per spec.md's own Open Question:
// "verify against a live editor before committing to a schema"). This
// synthesizer stops at the fields the reconstructor can populate with
// confidence and does not guess the rest.
type FilesystemCacheEntry struct {
	Path         string
	ModifiedTime int64
	Importer     string
	UID          uint64
}

// SynthesizeFilesystemCache renders entries grouped under a single
// "res://" section, the shape the editor reads on first load of a
// reconstructed project (spec.md §4.H: "synthesize filesystem cache
// consumed by the editor on first load").
func SynthesizeFilesystemCache(entries []FilesystemCacheEntry, sectionMTime int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "::res://::%d\n", sectionMTime)
	for _, e := range entries {
		fmt.Fprintf(&b, "%s<>%s<>%d<>%s\n", e.Path, e.Importer, e.ModifiedTime, formatUIDEntry(e.UID))
	}
	return b.String()
}

func formatUIDEntry(uid uint64) string {
	if uid == 0 {
		return "<invalid>"
	}
	return project.FormatUID(uid)
}

// entriesFromDescriptors builds cache entries from the reconstructed
// project's descriptors and the UID cache assigned during export.
func entriesFromDescriptors(descriptors []*project.Descriptor, uids *project.Cache) []FilesystemCacheEntry {
	out := make([]FilesystemCacheEntry, 0, len(descriptors))
	for _, d := range descriptors {
		if d.State == project.Failed || d.State == project.NotImportable {
			continue
		}
		out = append(out, FilesystemCacheEntry{
			Path:     d.Destination,
			Importer: d.Importer,
			UID:      uids.UIDFor(d.Destination),
		})
	}
	return out
}
