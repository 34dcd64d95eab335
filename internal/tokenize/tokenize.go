// Package tokenize builds the orchestrator's export token list from a set
// of files already extracted to disk. Real packages carry no importer
// metadata alongside each entry (that lives in the project's own
// `.import`/uid cache, not inside the container), so classification here
// is content-sniffing best-effort: binary resource files (RSRC magic) are
// classified by their declared Type, compiled script bytecode (GDSC magic)
// is classified as GDScript, a ConfigFile-format text file with a
// [configuration] entry_symbol key is classified as GDExtension, and
// anything else is left as the raw bytes
// already sitting on disk from extraction — the registry resolves the
// exporter by resource type alone (empty importer falls through to the
// type-keyed half of exporters.Registry.Resolve).
package tokenize

import (
	"os"

	"github.com/gdretool/gdre-go/pkg/bytecode"
	"github.com/gdretool/gdre-go/pkg/orchestrator"
	"github.com/gdretool/gdre-go/pkg/project"
	"github.com/gdretool/gdre-go/pkg/resource"
)

// ClassifyFile sniffs path's content and returns the engine resource type
// an exporter would be resolved against, or ok=false if path is not a
// format this toolchain converts (it was still extracted verbatim).
func ClassifyFile(path string) (resourceType string, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	if r, err := resource.Decode(data); err == nil {
		return r.Type, true
	}
	if _, _, err := bytecode.Decompile(data); err == nil {
		return "GDScript", true
	}
	if cfg, err := project.ParseText(string(data)); err == nil {
		if _, hasEntry := cfg.Get("configuration", "entry_symbol"); hasEntry {
			return "GDExtension", true
		}
	}
	return "", false
}

// BuildTokens classifies every (virtualPath, stagedPath) pair and returns
// one orchestrator.Token per recognized file, paired with its own
// project.Descriptor.
func BuildTokens(pairs map[string]string) []orchestrator.Token {
	tokens := make([]orchestrator.Token, 0, len(pairs))
	for virtualPath, stagedPath := range pairs {
		resourceType, ok := ClassifyFile(stagedPath)
		if !ok {
			continue
		}
		tokens = append(tokens, orchestrator.Token{
			Descriptor: &project.Descriptor{
				SourcePath:  stagedPath,
				Destination: virtualPath,
			},
			ResourceType: resourceType,
		})
	}
	return tokens
}
