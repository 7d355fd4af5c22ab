package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eladw917/cookbook-creator/internal/parser/html"
	"github.com/eladw917/cookbook-creator/internal/text"
)

type fixedSizer map[string][2]float64

func (f fixedSizer) ImageSize(src string) (float64, float64, bool) {
	s, ok := f[src]
	return s[0], s[1], ok
}

func layoutMarkup(t *testing.T, opts Options, sizer ImageSizer, markup string) (*Document, map[string]Box) {
	t.Helper()
	reg, err := text.NewRegistry(nil)
	require.NoError(t, err)
	e := NewEngine(text.NewMetrics(reg))
	e.SetOptions(opts)
	if sizer != nil {
		e.SetImageSizer(sizer)
	}
	doc, err := e.LayoutMarkup(markup, nil)
	require.NoError(t, err)

	byID := make(map[string]Box)
	boxes := Index(doc.Root)
	for _, n := range doc.HTML.Select("[id]") {
		id, _ := html.Attr(n, "id")
		if b, ok := boxes[n]; ok {
			byID[id] = b
		}
	}
	return doc, byID
}

func TestBlocksStackVertically(t *testing.T) {
	_, boxes := layoutMarkup(t, Options{Width: 300}, nil, `<html><body>
<p id="a" style="margin: 0 0 10px">First</p>
<p id="b" style="margin: 0">Second</p>
</body></html>`)
	a, b := boxes["a"], boxes["b"]
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Greater(t, a.GetHeight(), 0.0)
	assert.GreaterOrEqual(t, b.GetY(), a.GetY()+a.GetHeight()+10-0.01)
}

func TestLongTextWraps(t *testing.T) {
	long := strings.Repeat("knead the dough ", 30)
	_, boxes := layoutMarkup(t, Options{Width: 200}, nil, `<html><body>
<div id="short" style="width: 150px">knead</div>
<div id="long" style="width: 150px">`+long+`</div>
</body></html>`)
	assert.Greater(t, boxes["long"].GetHeight(), 3*boxes["short"].GetHeight())
}

func TestMeasureIgnoresHeightCaps(t *testing.T) {
	markup := `<html><body><div id="capped" style="height: 20px; max-height: 20px">` +
		strings.Repeat("simmer and stir ", 40) + `</div></body></html>`

	_, capped := layoutMarkup(t, Options{Width: 200}, nil, markup)
	_, measured := layoutMarkup(t, Options{Width: 200, Measure: true}, nil, markup)

	assert.InDelta(t, 20, capped["capped"].GetHeight(), 0.01)
	assert.Greater(t, measured["capped"].GetHeight(), 20.0)
}

func TestImageSizing(t *testing.T) {
	sizer := fixedSizer{"hero.jpg": {400, 200}, "tall.png": {100, 300}}
	_, boxes := layoutMarkup(t, Options{Width: 300}, sizer, `<html><body>
<img id="w" src="hero.jpg" style="width: 100px">
<img id="wide" src="hero.jpg">
<img id="h" src="tall.png" style="height: 60px">
<img id="unknown" src="missing.png">
</body></html>`)

	assert.InDelta(t, 50, boxes["w"].GetHeight(), 0.01)
	assert.InDelta(t, 300, boxes["wide"].GetWidth(), 0.01)
	assert.InDelta(t, 150, boxes["wide"].GetHeight(), 0.01)
	assert.InDelta(t, 20, boxes["h"].GetWidth(), 0.01)
	assert.Greater(t, boxes["unknown"].GetWidth(), 0.0)
}

func TestTableCellsSideBySide(t *testing.T) {
	_, boxes := layoutMarkup(t, Options{Width: 400}, nil, `<html><body>
<table style="width: 400px; border-spacing: 20px"><tr>
<td id="left" style="width: 150px">Ingredients</td>
<td id="right" style="width: 230px">Instructions</td>
</tr></table>
</body></html>`)

	left, right := boxes["left"], boxes["right"]
	require.NotNil(t, left)
	require.NotNil(t, right)
	assert.Greater(t, right.GetX(), left.GetX()+left.GetWidth()-0.01)
	assert.InDelta(t, left.GetY(), right.GetY(), 0.01)
	assert.LessOrEqual(t, right.GetX()+right.GetWidth(), 400.01)
}
