package workenv

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// CompletionMarker records that an export run finished writing to its
// output root, so a rerun against the same root and source package can
// detect a prior run without re-deriving it from the filesystem.
type CompletionMarker struct {
	Timestamp   time.Time `json:"timestamp"`
	SourcePCK   string    `json:"source_pck"`
	SourceMD5   string    `json:"source_md5"`
	EntryCount  int       `json:"entry_count"`
}

const completionMarkerName = ".gdre-export.complete"

// IsComplete reports whether root carries a completion marker matching
// sourcePCK and sourceMD5.
func IsComplete(root, sourcePCK, sourceMD5 string) bool {
	data, err := os.ReadFile(filepath.Join(root, completionMarkerName))
	if err != nil {
		return false
	}
	var marker CompletionMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return false
	}
	return marker.SourcePCK == sourcePCK && marker.SourceMD5 == sourceMD5
}

// MarkComplete writes a completion marker recording the run's source
// identity and entry count.
func MarkComplete(root, sourcePCK, sourceMD5 string, entryCount int) error {
	marker := CompletionMarker{
		Timestamp:  time.Now(),
		SourcePCK:  sourcePCK,
		SourceMD5:  sourceMD5,
		EntryCount: entryCount,
	}
	data, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, completionMarkerName), data, 0o644)
}

// Clean removes a stale completion marker, forcing the next run to redo
// the full export.
func Clean(root string) error {
	err := os.Remove(filepath.Join(root, completionMarkerName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
