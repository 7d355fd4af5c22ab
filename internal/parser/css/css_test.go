package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRulesAndDeclarations(t *testing.T) {
	sheet, err := NewParser().ParseString(`
		/* columns */
		td.left, td.right { width: 50%; PADDING: 0 12px }
		li[data-kind="subheader"] { font-weight: bold !important; }
	`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 2)

	first := sheet.Rules[0]
	assert.Equal(t, []string{"td.left", "td.right"}, first.Selectors)
	require.Len(t, first.Declarations, 2)
	assert.Equal(t, "padding", first.Declarations[1].Property)
	assert.Equal(t, "0 12px", first.Declarations[1].Value)

	second := sheet.Rules[1]
	assert.Equal(t, `li[data-kind="subheader"]`, second.Selectors[0])
	assert.True(t, second.Declarations[0].Important)
	assert.Equal(t, "bold", second.Declarations[0].Value)
}

func TestParseSkipsAtRules(t *testing.T) {
	sheet, err := NewParser().ParseString(`
		@charset "utf-8";
		@media print { h1 { color: red } }
		@page { size: A4 }
		h1 { color: #333 }
	`)
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 1)
	assert.Equal(t, []string{"h1"}, sheet.Rules[0].Selectors)
}

func TestParseDeclarations(t *testing.T) {
	decls := ParseDeclarations("width: 120px; ; height:80px; bogus")
	require.Len(t, decls, 2)
	assert.Equal(t, "width", decls[0].Property)
	assert.Equal(t, "80px", decls[1].Value)
}
