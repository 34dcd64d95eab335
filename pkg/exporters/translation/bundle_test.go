package translation

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/stretchr/testify/require"
)

func TestBundleCSVArchivesEveryTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.csv"), []byte("key,en\nHELLO,Hello\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "locale"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "locale", "fr.csv"), []byte("key,fr\nHELLO,Bonjour\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	archivePath, err := BundleCSV(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "translations.tar.bz2"), archivePath)

	f, err := os.Open(archivePath)
	require.NoError(t, err)
	defer f.Close()

	br, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
	require.NoError(t, err)
	defer br.Close()

	tr := tar.NewReader(br)
	names := map[string]bool{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names[hdr.Name] = true
	}
	require.True(t, names["en.csv"])
	require.True(t, names[filepath.Join("locale", "fr.csv")])
	require.Len(t, names, 2)
}

func TestBundleCSVNoTablesReturnsEmptyPath(t *testing.T) {
	dir := t.TempDir()
	archivePath, err := BundleCSV(dir)
	require.NoError(t, err)
	require.Empty(t, archivePath)
}
