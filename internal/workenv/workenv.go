// Package workenv manages the scoped output directory an export run writes
// into: resolving the plugin-cache root, creating the fixed subdirectory
// layout a reconstructed project needs (.assets for dedup-suffixed exports,
// addons for repaired plugins), and writing and checking completion markers
// (validation.go) that let a rerun detect a prior run.
package workenv

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// GetPluginCacheDir returns the root directory for cached plugin-version
// JSON documents, honoring GDRE_PLUGIN_CACHE_DIR (spec.md §6) before
// falling back to a platform-specific user-cache location.
func GetPluginCacheDir() string {
	if dir := os.Getenv("GDRE_PLUGIN_CACHE_DIR"); dir != "" {
		return dir
	}

	switch runtime.GOOS {
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Caches", "gdre-go")
		}
	case "linux":
		if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
			return filepath.Join(xdgCache, "gdre-go")
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".cache", "gdre-go")
		}
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "gdre-go", "cache")
		}
	}

	return filepath.Join(os.TempDir(), "gdre-go", "cache")
}

// DirectorySpec specifies one scoped subdirectory to create under an output
// root.
type DirectorySpec struct {
	Path string
	Mode os.FileMode
}

// DefaultLayout is the fixed subdirectory set every reconstructed project
// output root receives: `.assets` for duplicate-destination disambiguation
// (spec.md §4.H scenario 6), `addons` for plugin repair targets (§4.G).
var DefaultLayout = []DirectorySpec{
	{Path: ".assets", Mode: 0o755},
	{Path: "addons", Mode: 0o755},
}

// Prepare creates root and every directory in layout beneath it.
func Prepare(root string, layout []DirectorySpec) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create output root: %w", err)
	}
	for _, dir := range layout {
		mode := dir.Mode
		if mode == 0 {
			mode = 0o755
		}
		dirPath := filepath.Join(root, dir.Path)
		if err := os.MkdirAll(dirPath, mode); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir.Path, err)
		}
	}
	return nil
}
