package nativeext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSource struct{ data []byte }

func (f fakeSource) Fetch(ctx context.Context, libraryPath string) ([]byte, error) {
	return f.data, nil
}

func TestExportFileCopiesManifestAndResolvesLibrary(t *testing.T) {
	dir := t.TempDir()
	manifest := "[configuration]\n\nentry_symbol = \"example_init\"\n\n[libraries]\n\nlinux.x86_64 = \"res://bin/example.so\"\n"
	resPath := filepath.Join(dir, "example.gdextension")
	require.NoError(t, os.WriteFile(resPath, []byte(manifest), 0o644))

	outDir := filepath.Join(dir, "out")
	outPath := filepath.Join(outDir, "example.gdextension")

	e := New(nil, "", fakeSource{data: []byte("ELFBYTES")})
	require.NoError(t, e.ExportFile(outPath, resPath))

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, manifest, string(got))

	lib, err := os.ReadFile(filepath.Join(outDir, "bin", "example.so"))
	require.NoError(t, err)
	require.Equal(t, "ELFBYTES", string(lib))
}

func TestExportFilePrefersPackageRootOverSource(t *testing.T) {
	dir := t.TempDir()
	pkgRoot := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(filepath.Join(pkgRoot, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgRoot, "bin", "example.so"), []byte("LOCALBYTES"), 0o644))

	manifest := "[libraries]\n\nlinux.x86_64 = \"res://bin/example.so\"\n"
	resPath := filepath.Join(dir, "example.gdextension")
	require.NoError(t, os.WriteFile(resPath, []byte(manifest), 0o644))

	outDir := filepath.Join(dir, "out")
	outPath := filepath.Join(outDir, "example.gdextension")

	e := New(nil, pkgRoot, fakeSource{data: []byte("SHOULD_NOT_BE_USED")})
	require.NoError(t, e.ExportFile(outPath, resPath))

	lib, err := os.ReadFile(filepath.Join(outDir, "bin", "example.so"))
	require.NoError(t, err)
	require.Equal(t, "LOCALBYTES", string(lib))
}

func TestNoopSourceRefuses(t *testing.T) {
	_, err := NoopSource{}.Fetch(context.Background(), "res://x.so")
	require.Error(t, err)
}
