package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCoreFonts(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)

	f := reg.Resolve(`"Playfair Display", Georgia, serif`, "700", "italic", 14)
	assert.Equal(t, Font{Family: "Times", Style: "BI", Size: 14, Core: true}, f)

	f = reg.Resolve("", "normal", "", 10)
	assert.Equal(t, "Helvetica", f.Family)
	assert.Equal(t, "", f.Style)
}

func TestParseFontFileName(t *testing.T) {
	cases := map[string][2]string{
		"Lora-Regular.ttf":    {"lora", ""},
		"Lora-BoldItalic.ttf": {"lora", "BI"},
		"Inter_Bold.ttf":      {"inter", "B"},
		"Caveat.ttf":          {"caveat", ""},
		"Open-Sans.ttf":       {"open-sans", ""},
	}
	for file, want := range cases {
		family, style := parseFontFileName(file)
		assert.Equal(t, want[0], family, file)
		assert.Equal(t, want[1], style, file)
	}
}

func TestEncodeCoreFont(t *testing.T) {
	core := Font{Family: "Helvetica", Core: true}
	assert.Equal(t, "caf\xe9 1/3 cup \x96 ?", Encode(core, "café ⅓ cup – ✓"))
	assert.Equal(t, "café ✓", Encode(Font{Family: "lora"}, "café ✓"))
}

func TestTransform(t *testing.T) {
	assert.Equal(t, "INGREDIENTS", Transform("Ingredients", "uppercase"))
	assert.Equal(t, "Lemon Garlic Chicken", Transform("lemon garlic chicken", "capitalize"))
	assert.Equal(t, "as is", Transform("as is", "none"))
}

func TestMetricsWidthScalesWithSize(t *testing.T) {
	reg, err := NewRegistry(nil)
	require.NoError(t, err)
	m := NewMetrics(reg)

	small := m.Width("Whisk the eggs", Font{Family: "Helvetica", Size: 10, Core: true})
	large := m.Width("Whisk the eggs", Font{Family: "Helvetica", Size: 20, Core: true})
	bold := m.Width("Whisk the eggs", Font{Family: "Helvetica", Style: "B", Size: 10, Core: true})

	assert.Greater(t, small, 0.0)
	assert.InDelta(t, small*2, large, 1e-6)
	assert.Greater(t, bold, small)
	assert.Zero(t, m.Width("", Font{Family: "Helvetica", Size: 10, Core: true}))
	assert.NoError(t, m.Err())
}
