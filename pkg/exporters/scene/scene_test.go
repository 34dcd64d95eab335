package scene

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImageHashRegistryDetectsDuplicate(t *testing.T) {
	reg := NewImageHashRegistry()

	hash1, dup1 := reg.Record("res://a.tscn", []byte{1, 2, 3})
	require.False(t, dup1)

	hash2, dup2 := reg.Record("res://b.tscn", []byte{1, 2, 3})
	require.True(t, dup2)
	require.Equal(t, hash1, hash2)

	path, ok := reg.Lookup(hash1)
	require.True(t, ok)
	require.Equal(t, "res://a.tscn", path)
}

func TestImageHashRegistrySamePathNotDuplicate(t *testing.T) {
	reg := NewImageHashRegistry()
	_, dup1 := reg.Record("res://a.tscn", []byte{9})
	_, dup2 := reg.Record("res://a.tscn", []byte{9})
	require.False(t, dup1)
	require.False(t, dup2)
}

func TestImageHashRegistryDistinctContent(t *testing.T) {
	reg := NewImageHashRegistry()
	h1, _ := reg.Record("res://a.tscn", []byte{1})
	h2, _ := reg.Record("res://a.tscn", []byte{2})
	require.NotEqual(t, h1, h2)
}
