package style

import (
	"testing"

	"github.com/eladw917/cookbook-creator/internal/parser/css"
	"github.com/eladw917/cookbook-creator/internal/parser/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computeFor(t *testing.T, markup, sheet string) (*html.Document, map[*html.Node]ComputedStyle) {
	t.Helper()
	doc, err := html.NewParser().ParseString(markup)
	require.NoError(t, err)
	engine := NewStyleEngine()
	if sheet != "" {
		parsed, err := css.NewParser().ParseString(sheet)
		require.NoError(t, err)
		engine.AddStylesheet(parsed)
	}
	return doc, engine.ComputeStyles(doc)
}

func only(t *testing.T, doc *html.Document, selector string) *html.Node {
	t.Helper()
	nodes := doc.Select(selector)
	require.Len(t, nodes, 1, selector)
	return nodes[0]
}

func TestSpecificityBeatsSourceOrder(t *testing.T) {
	doc, styles := computeFor(t,
		`<ul class="ingredients"><li class="item" data-block="ing-0">flour</li></ul>`,
		`ul.ingredients li { color: #111 } li { color: #222 }`)

	li := only(t, doc, "li")
	assert.Equal(t, "#111", styles[li].Get("color"))
}

func TestLaterRuleWinsOnEqualSpecificity(t *testing.T) {
	doc, styles := computeFor(t, `<p class="a b">x</p>`, `.a { color: red } .b { color: blue }`)
	assert.Equal(t, "blue", styles[only(t, doc, "p")].Get("color"))
}

func TestInlineAndImportant(t *testing.T) {
	doc, styles := computeFor(t,
		`<p id="x" style="color: green; margin-top: 4px">x</p>`,
		`#x { color: red; margin-top: 9px !important }`)

	st := styles[only(t, doc, "p")]
	assert.Equal(t, "green", st.Get("color"))
	assert.Equal(t, "9px", st.Get("margin-top"))
}

func TestAttributeAndChildSelectors(t *testing.T) {
	doc, styles := computeFor(t,
		`<ol><li data-kind="item">a</li><li data-kind="subheader">b</li></ol><div><p><span>c</span></p></div>`,
		`li[data-kind="subheader"] { font-weight: bold } li[data-kind] { color: #333 } div > span { color: red } div span { font-style: italic }`)

	items := doc.Select("li")
	require.Len(t, items, 2)
	assert.Empty(t, styles[items[0]].Get("font-weight"))
	assert.Equal(t, "bold", styles[items[1]].Get("font-weight"))
	assert.Equal(t, "#333", styles[items[0]].Get("color"))

	span := only(t, doc, "span")
	assert.Empty(t, styles[span].Get("color"))
	assert.Equal(t, "italic", styles[span].Get("font-style"))
}

func TestInheritanceAndRelativeFontSize(t *testing.T) {
	doc, styles := computeFor(t,
		`<div class="page"><h2>Ingredients</h2><p>text <em>here</em></p></div>`,
		`.page { font-size: 10px; color: #444; font-family: Georgia, serif } h2 { font-size: 1.5em } p { margin: 0 0 4px }`)

	h2 := styles[only(t, doc, "h2")]
	assert.Equal(t, "15px", h2.Get("font-size"))
	assert.Equal(t, "#444", h2.Get("color"))
	assert.Equal(t, "Georgia, serif", h2.Get("font-family"))

	p := styles[only(t, doc, "p")]
	assert.Equal(t, "10px", p.Get("font-size"))
	assert.Equal(t, "0", p.Get("margin-top"))
	assert.Equal(t, "4px", p.Get("margin-bottom"))
	assert.Empty(t, p.Get("margin"))

	em := styles[only(t, doc, "em")]
	assert.Equal(t, "italic", em.Get("font-style"))
	assert.Equal(t, "#444", em.Get("color"))
}

func TestBorderShorthand(t *testing.T) {
	doc, styles := computeFor(t, `<div class="box">x</div>`,
		`.box { border: 1px solid #ccc; border-left-width: 4px; background: #f5f0e8 }`)

	st := styles[only(t, doc, "div")]
	assert.Equal(t, "1px", st.Get("border-top-width"))
	assert.Equal(t, "4px", st.Get("border-left-width"))
	assert.Equal(t, "#ccc", st.Get("border-bottom-color"))
	assert.Equal(t, "#f5f0e8", st.Get("background-color"))
}

func TestCalculateSpecificity(t *testing.T) {
	assert.Equal(t, Specificity{ID: 1, Class: 2, Element: 1}, calculateSpecificity(`#a li.x[data-block]`))
	assert.Equal(t, Specificity{Element: 2}, calculateSpecificity(`div > p`))
}
