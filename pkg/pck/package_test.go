package pck

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.pck")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// TestBuildOpenRoundTrip matches spec.md Testable Properties P2:
// parse(build(xs)) == xs for paths and plaintext payloads.
func TestBuildOpenRoundTrip(t *testing.T) {
	entries := []BuildEntry{
		{Path: "res://b.tres", Data: []byte("second")},
		{Path: "res://a.tres", Data: []byte("first")},
	}
	out, err := Build(entries, BuildOptions{FormatVersion: 2, EngineMajor: 4, EngineMinor: 2, EnginePatch: 0})
	require.NoError(t, err)

	path := writeTemp(t, out)
	pkg, err := Open(path, nil)
	require.NoError(t, err)
	require.Len(t, pkg.Entries, 2)

	require.Equal(t, "res://a.tres", pkg.Entries[0].Path)
	require.Equal(t, "res://b.tres", pkg.Entries[1].Path)

	got, err := pkg.ExtractEntry("res://a.tres")
	require.NoError(t, err)
	require.Equal(t, []byte("first"), got)

	got, err = pkg.ExtractEntry("res://b.tres")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), got)

	res := pkg.VerifyAll()
	require.Equal(t, VerifyResult{OK: 2}, res)
}

// TestBuildOpenEncryptedRoundTrip covers scenario 2: a correctly-keyed
// encrypted entry decodes; the wrong key surfaces as an UNAUTHORIZED error.
func TestBuildOpenEncryptedRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	wrongKey := bytes.Repeat([]byte{0x22}, 32)

	entries := []BuildEntry{
		{Path: "res://secret.tres", Data: []byte("classified"), Encrypt: true},
	}
	out, err := Build(entries, BuildOptions{FormatVersion: 2, EngineMajor: 4, EngineMinor: 2, Key: key})
	require.NoError(t, err)

	path := writeTemp(t, out)

	pkg, err := Open(path, key)
	require.NoError(t, err)
	got, err := pkg.ExtractEntry("res://secret.tres")
	require.NoError(t, err)
	require.Equal(t, []byte("classified"), got)

	badPkg, err := Open(path, wrongKey)
	require.NoError(t, err)
	_, err = badPkg.ExtractEntry("res://secret.tres")
	require.Error(t, err)
	require.True(t, badPkg.StickyEncryptionError())
}

// TestBuildEncryptedWithoutKeyErrors ensures Build refuses to silently skip
// encryption when no key is configured.
func TestBuildEncryptedWithoutKeyErrors(t *testing.T) {
	entries := []BuildEntry{{Path: "res://x.tres", Data: []byte("x"), Encrypt: true}}
	_, err := Build(entries, BuildOptions{FormatVersion: 2})
	require.Error(t, err)
}

// TestEmbeddedContainerDetection covers the executable-tail detection path.
func TestEmbeddedContainerDetection(t *testing.T) {
	entries := []BuildEntry{{Path: "res://a.tres", Data: []byte("payload")}}
	fakeExe := bytes.Repeat([]byte{0xCC}, 128)
	out, err := Build(entries, BuildOptions{FormatVersion: 2, EmbedExecutable: fakeExe})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, fakeExe))

	path := writeTemp(t, out)
	pkg, err := Open(path, nil)
	require.NoError(t, err)
	require.Len(t, pkg.Entries, 1)
	got, err := pkg.ExtractEntry("res://a.tres")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}
