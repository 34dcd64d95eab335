package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinePrefixWriterTagsCompleteLines(t *testing.T) {
	var out bytes.Buffer
	w := newLinePrefixWriter("gdre-export: ", &out)

	n, err := w.Write([]byte("first line\nsecond"))
	require.NoError(t, err)
	require.Equal(t, len("first line\nsecond"), n)
	require.Equal(t, "gdre-export: first line\n", out.String())

	_, err = w.Write([]byte(" line\n"))
	require.NoError(t, err)
	require.Equal(t, "gdre-export: first line\ngdre-export: second line\n", out.String())
}

func TestLinePrefixWriterHoldsBackPartialLine(t *testing.T) {
	var out bytes.Buffer
	w := newLinePrefixWriter("x: ", &out)

	_, err := w.Write([]byte("no newline yet"))
	require.NoError(t, err)
	require.Empty(t, out.String())
}
