package layout

import (
	"strconv"
	"strings"

	"github.com/eladw917/cookbook-creator/internal/parser/html"
	"github.com/eladw917/cookbook-creator/internal/style"
	"github.com/eladw917/cookbook-creator/internal/text"
)

// InlineBox represents an inline-level box in the layout. Text boxes are one
// styled run of a single line: X/Y/Height describe the line box slice it
// occupies and Baseline the y coordinate the text is set on.
type InlineBox struct {
	Node          *html.Node
	Style         style.ComputedStyle
	X             float64
	Y             float64
	Width         float64
	Height        float64
	MarginTop     float64
	MarginRight   float64
	MarginBottom  float64
	MarginLeft    float64
	PaddingTop    float64
	PaddingRight  float64
	PaddingBottom float64
	PaddingLeft   float64
	BorderTop     float64
	BorderRight   float64
	BorderBottom  float64
	BorderLeft    float64
	Children      []Box
	Text          string
	Font          text.Font
	Baseline      float64
}

// NewTextBox creates a new inline box for text content
func NewTextBox(node *html.Node, computedStyle style.ComputedStyle, text string) *InlineBox {
	return &InlineBox{
		Node:  node,
		Style: computedStyle,
		Text:  text,
	}
}

// GetX returns the x position of the box
func (b *InlineBox) GetX() float64 {
	return b.X
}

// GetY returns the y position of the box
func (b *InlineBox) GetY() float64 {
	return b.Y
}

// GetWidth returns the width of the box
func (b *InlineBox) GetWidth() float64 {
	return b.Width
}

// GetHeight returns the height of the box
func (b *InlineBox) GetHeight() float64 {
	return b.Height
}

// GetMarginTop returns the top margin of the box
func (b *InlineBox) GetMarginTop() float64 {
	return b.MarginTop
}

// GetMarginBottom returns the bottom margin of the box
func (b *InlineBox) GetMarginBottom() float64 {
	return b.MarginBottom
}

// GetMarginLeft returns the left margin of the box
func (b *InlineBox) GetMarginLeft() float64 {
	return b.MarginLeft
}

// GetMarginRight returns the right margin of the box
func (b *InlineBox) GetMarginRight() float64 {
	return b.MarginRight
}

// SetPosition moves the box, its baseline and its children.
func (b *InlineBox) SetPosition(x, y float64) {
	dx, dy := x-b.X, y-b.Y
	b.X = x
	b.Y = y
	b.Baseline += dy
	for _, ch := range b.Children {
		ch.SetPosition(ch.GetX()+dx, ch.GetY()+dy)
	}
}

// AddChild adds a child box
func (b *InlineBox) AddChild(child Box) {
	b.Children = append(b.Children, child)
}

// GetNode returns the HTML node associated with this box
func (b *InlineBox) GetNode() *html.Node {
	return b.Node
}

// parseLength parses a CSS length value. Points and px are the same unit.
// Percentages resolve against containerSize and em against fontSize.
func parseLength(value string, containerSize, fontSize, defaultValue float64) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "auto" || value == "none" || value == "normal" {
		return defaultValue
	}

	units := []struct {
		suffix string
		scale  float64
	}{
		{"%", containerSize / 100},
		{"rem", style.DefaultFontSize},
		{"em", fontSize},
		{"px", 1},
		{"pt", 1},
		{"in", 72},
		{"cm", 72 / 2.54},
		{"mm", 72 / 25.4},
	}
	for _, u := range units {
		if strings.HasSuffix(value, u.suffix) {
			n, err := strconv.ParseFloat(strings.TrimSuffix(value, u.suffix), 64)
			if err != nil {
				return defaultValue
			}
			return n * u.scale
		}
	}

	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

// fontSizeOf returns the resolved font size of a style in px.
func fontSizeOf(st style.ComputedStyle) float64 {
	return parseLength(st.Get("font-size"), 0, style.DefaultFontSize, style.DefaultFontSize)
}

// lineHeightOf resolves line-height for a font size. Unitless values and
// em are multiples of the font size.
func lineHeightOf(st style.ComputedStyle, fontSize float64) float64 {
	v := st.Get("line-height")
	if v == "" || v == "normal" {
		return 1.2 * fontSize
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n * fontSize
	}
	return parseLength(v, fontSize, fontSize, 1.2*fontSize)
}
