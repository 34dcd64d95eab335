package pck

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExtractResult records one entry's outcome during a bulk extract.
type ExtractResult struct {
	Entry       Entry
	Destination string
	Err         error
}

// ExtractAll writes every entry's decoded payload under outRoot, creating
// parent directories as needed. Malformed paths are sanitized; entries that
// sanitize to an empty or escaping path are reported, not written
// (spec.md §4.C: "Malformed paths...are sanitized and reported").
func (p *Package) ExtractAll(outRoot string) []ExtractResult {
	results := make([]ExtractResult, 0, len(p.Entries))
	for _, e := range p.Entries {
		results = append(results, p.extractOne(outRoot, e))
	}
	return results
}

func (p *Package) extractOne(outRoot string, e Entry) ExtractResult {
	rel, ok := SanitizePath(e.Path)
	if !ok || rel == "" {
		return ExtractResult{Entry: e, Err: fmt.Errorf("malformed entry path: %s", e.Path)}
	}
	dest := filepath.Join(outRoot, filepath.FromSlash(rel))

	data, err := p.DecodedPayload(e)
	if err != nil {
		return ExtractResult{Entry: e, Destination: dest, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return ExtractResult{Entry: e, Destination: dest, Err: err}
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return ExtractResult{Entry: e, Destination: dest, Err: err}
	}
	return ExtractResult{Entry: e, Destination: dest}
}

// ExtractEntry extracts a single named entry, returning its decoded bytes
// without writing to disk (used by exporters that operate in-memory).
func (p *Package) ExtractEntry(entryPath string) ([]byte, error) {
	for _, e := range p.Entries {
		if e.Path == entryPath {
			return p.DecodedPayload(e)
		}
	}
	return nil, fmt.Errorf("no such entry: %s", entryPath)
}
