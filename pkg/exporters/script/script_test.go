package script

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrCallPatternExtractsKeys(t *testing.T) {
	src := `
func _ready():
	label.text = tr("GREETING")
	other.text = tr('FAREWELL')
	skip.text = notr("IGNORED")
`
	matches := trCallPattern.FindAllStringSubmatch(src, -1)
	require.Len(t, matches, 2)
	require.Equal(t, "GREETING", matches[0][1])
	require.Equal(t, "FAREWELL", matches[1][1])
}

func TestHandledTypesAndImporters(t *testing.T) {
	e := New(nil, nil, nil)
	require.Contains(t, e.HandledTypes(), "GDScript")
	require.Contains(t, e.HandledImporters(), "script_bytecode")
	require.True(t, e.SupportsMultithread())
	require.Equal(t, "gd", e.DefaultOutputExtension("res://foo.gdc"))
}
