// Package project implements the project reconstructor (spec Component G):
// import-descriptor rewriting, UID/remap maintenance, addon repair, and the
// project.godot text/binary config codec.
package project

// State is an import descriptor's rewrite outcome, per spec.md §4.G's small
// state machine.
type State int

const (
	NotDirty State = iota
	Rewritten
	Failed
	NotImportable
	MD5Failed
)

func (s State) String() string {
	switch s {
	case NotDirty:
		return "NOT_DIRTY"
	case Rewritten:
		return "REWRITTEN"
	case Failed:
		return "FAILED"
	case NotImportable:
		return "NOT_IMPORTABLE"
	case MD5Failed:
		return "MD5_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Descriptor is one `.import`/`.remap` sidecar record (spec.md §3): the
// logical source path, its recovered destination(s), the importer that
// produced it, import-time parameters, the source MD5, its UID, and flags.
type Descriptor struct {
	SourcePath  string
	Destination string
	Importer    string
	Params      map[string]string
	SourceMD5   [16]byte
	UID         uint64
	HasEditorVariant bool

	State State
}

// Rewrite transitions d after an exporter has produced newDestination for
// it: unchanged destinations are NOT_DIRTY, any other destination is
// REWRITTEN (spec.md §4.G, scenario 5). exportErr, if non-nil, instead
// drives the descriptor to FAILED.
func (d *Descriptor) Rewrite(newDestination string, exportErr error) {
	if exportErr != nil {
		d.State = Failed
		return
	}
	if newDestination == d.SourcePath {
		d.State = NotDirty
		d.Destination = newDestination
		return
	}
	d.State = Rewritten
	d.Destination = newDestination
}
