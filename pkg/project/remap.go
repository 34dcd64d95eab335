package project

import "strconv"

// RemapTable tracks `.remap` sidecar entries: a runtime substitution from
// one path to another (spec GLOSSARY). After rewriting, entries whose
// target descriptor resolved to NOT_DIRTY are obsolete and removed
// (spec.md §4.G "Remap and UID maintenance").
type RemapTable struct {
	entries map[string]string
}

// NewRemapTable returns an empty remap table.
func NewRemapTable() *RemapTable {
	return &RemapTable{entries: map[string]string{}}
}

// Set records path -> target.
func (r *RemapTable) Set(path, target string) { r.entries[path] = target }

// Resolve reports the remapped target for path, if any.
func (r *RemapTable) Resolve(path string) (string, bool) {
	t, ok := r.entries[path]
	return t, ok
}

// Reconcile removes remap entries whose descriptor is NOT_DIRTY (the
// source and destination paths already agree, so no runtime substitution
// is needed) and returns the pruned set of removed paths.
func (r *RemapTable) Reconcile(descriptors []*Descriptor) []string {
	byPath := make(map[string]*Descriptor, len(descriptors))
	for _, d := range descriptors {
		byPath[d.SourcePath] = d
	}

	var removed []string
	for path := range r.entries {
		if d, ok := byPath[path]; ok && d.State == NotDirty {
			removed = append(removed, path)
			delete(r.entries, path)
		}
	}
	return removed
}

// Entries returns a snapshot of the remaining remap pairs.
func (r *RemapTable) Entries() map[string]string {
	out := make(map[string]string, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

// Disambiguate resolves a destination-path collision by inserting a `.N`
// suffix before the extension, recording the mapping from the new
// destination back to the original source. The candidate's directory is
// kept as given: the orchestrator passes colliding `res://x.wav`
// destinations in as `res://.assets/x.wav`, so they become
// `res://.assets/x.wav` and `res://.assets/x.1.wav` (spec.md §4.H,
// scenario 6).
func Disambiguate(seen map[string]string, candidate, source string) string {
	if _, taken := seen[candidate]; !taken {
		seen[candidate] = source
		return candidate
	}
	base, ext := splitExt(candidate)
	for n := 1; ; n++ {
		next := fmtSuffixed(base, n, ext)
		if _, taken := seen[next]; !taken {
			seen[next] = source
			return next
		}
	}
}

func splitExt(path string) (base, ext string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i], path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return path, ""
}

func fmtSuffixed(base string, n int, ext string) string {
	return base + "." + strconv.Itoa(n) + ext
}
