package translation

import (
	"archive/tar"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dsnet/compress/bzip2"
)

// BundleCSV tars and bzip2-compresses every CSV file under outDir into a
// single translations.tar.bz2 archive, one entry per recovered table. A
// project can ship dozens of locale CSVs; a single archive is easier to
// hand off than the loose file tree. Returns the archive path, or "" if no
// CSV files were found.
func BundleCSV(outDir string) (string, error) {
	var csvPaths []string
	err := filepath.WalkDir(outDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".csv" {
			csvPaths = append(csvPaths, path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if len(csvPaths) == 0 {
		return "", nil
	}

	archivePath := filepath.Join(outDir, "translations.tar.bz2")
	f, err := os.Create(archivePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{Level: 9})
	if err != nil {
		return "", err
	}
	tw := tar.NewWriter(bz)

	for _, p := range csvPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		rel, err := filepath.Rel(outDir, p)
		if err != nil {
			return "", err
		}
		hdr := &tar.Header{Name: rel, Size: int64(len(data)), Mode: 0o644}
		if err := tw.WriteHeader(hdr); err != nil {
			return "", fmt.Errorf("writing archive header for %s: %w", rel, err)
		}
		if _, err := tw.Write(data); err != nil {
			return "", err
		}
	}
	if err := tw.Close(); err != nil {
		return "", err
	}
	if err := bz.Close(); err != nil {
		return "", err
	}
	return archivePath, nil
}
