package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDecompileRoundTrip matches spec.md Testable Properties, scenario 3:
// compiling, decompiling, and recompiling a simple function body yields
// back the original source and an equivalent token stream.
func TestDecompileRoundTrip(t *testing.T) {
	const source = "func f(x):\n    return x + 1\n"

	revision, err := ByName("4.x-default")
	require.NoError(t, err)

	original, err := Compile(source, revision)
	require.NoError(t, err)

	encoded, err := Encode(original, false)
	require.NoError(t, err)

	decompiled, decoded, err := Decompile(encoded)
	require.NoError(t, err)
	require.Equal(t, source, decompiled)
	require.Equal(t, revision.Name, decoded.Revision.Name)

	recompiled, err := Compile(decompiled, revision)
	require.NoError(t, err)
	require.True(t, Equivalent(original, recompiled))
}

// TestEncodeDecodeCompressed exercises the zstd-compressed body path.
func TestEncodeDecodeCompressed(t *testing.T) {
	revision, err := ByName("4.x-default")
	require.NoError(t, err)

	ts, err := Compile("func f(x):\n    return x + 1\n", revision)
	require.NoError(t, err)

	encoded, err := Encode(ts, true)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.True(t, Equivalent(ts, decoded))
}

// TestUnknownRevisionVersion surfaces UNIMPLEMENTED_REVISION for a version
// byte the registry never saw.
func TestUnknownRevisionVersion(t *testing.T) {
	revision, err := ByName("4.x-default")
	require.NoError(t, err)
	ts, err := Compile("pass\n", revision)
	require.NoError(t, err)
	ts.Revision = &Revision{Name: "bogus", BytecodeVersion: 99}

	_, err = Encode(ts, false)
	require.Error(t, err)
}
