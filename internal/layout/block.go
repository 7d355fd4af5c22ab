package layout

import (
	"strings"

	"github.com/eladw917/cookbook-creator/internal/parser/html"
	"github.com/eladw917/cookbook-creator/internal/style"
)

// BlockBox represents a block-level box in the layout
type BlockBox struct {
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
}

// NewBlockBox creates a new block box for an element
func NewBlockBox(node *html.Node, computedStyle style.ComputedStyle) *BlockBox {
	return &BlockBox{
		Node:     node,
		Style:    computedStyle,
		Children: []Box{},
	}
}

// parseBoxModel parses margin, padding, and border properties. Percentages
// resolve against the containing block width, em against the font size.
func (b *BlockBox) parseBoxModel(containerWidth, fontSize float64) {
	l := func(name string) float64 {
		return parseLength(b.Style.Get(name), containerWidth, fontSize, 0)
	}
	b.MarginTop = l("margin-top")
	b.MarginRight = l("margin-right")
	b.MarginBottom = l("margin-bottom")
	b.MarginLeft = l("margin-left")

	b.PaddingTop = l("padding-top")
	b.PaddingRight = l("padding-right")
	b.PaddingBottom = l("padding-bottom")
	b.PaddingLeft = l("padding-left")

	b.BorderTop = borderWidth(b.Style, "top", fontSize)
	b.BorderRight = borderWidth(b.Style, "right", fontSize)
	b.BorderBottom = borderWidth(b.Style, "bottom", fontSize)
	b.BorderLeft = borderWidth(b.Style, "left", fontSize)
}

func borderWidth(st style.ComputedStyle, side string, fontSize float64) float64 {
	switch strings.ToLower(st.Get("border-" + side + "-style")) {
	case "none", "hidden":
		return 0
	}
	switch w := strings.ToLower(st.Get("border-" + side + "-width")); w {
	case "thin":
		return 1
	case "medium":
		return 3
	case "thick":
		return 5
	default:
		return parseLength(w, 0, fontSize, 0)
	}
}

// ContentX is the left edge of the content box.
func (b *BlockBox) ContentX() float64 {
	return b.X + b.BorderLeft + b.PaddingLeft
}

// ContentY is the top edge of the content box.
func (b *BlockBox) ContentY() float64 {
	return b.Y + b.BorderTop + b.PaddingTop
}

// ContentWidth is the width of the content box.
func (b *BlockBox) ContentWidth() float64 {
	w := b.Width - b.BorderLeft - b.PaddingLeft - b.PaddingRight - b.BorderRight
	if w < 0 {
		return 0
	}
	return w
}

// frame is the horizontal plus vertical padding and border.
func (b *BlockBox) frame() (horizontal, vertical float64) {
	return b.BorderLeft + b.PaddingLeft + b.PaddingRight + b.BorderRight,
		b.BorderTop + b.PaddingTop + b.PaddingBottom + b.BorderBottom
}

// GetX returns the x position of the box
func (b *BlockBox) GetX() float64 {
	return b.X
}

// GetY returns the y position of the box
func (b *BlockBox) GetY() float64 {
	return b.Y
}

// GetWidth returns the width of the box
func (b *BlockBox) GetWidth() float64 {
	return b.Width
}

// GetHeight returns the height of the box
func (b *BlockBox) GetHeight() float64 {
	return b.Height
}

// GetMarginTop returns the top margin of the box
func (b *BlockBox) GetMarginTop() float64 {
	return b.MarginTop
}

// GetMarginBottom returns the bottom margin of the box
func (b *BlockBox) GetMarginBottom() float64 {
	return b.MarginBottom
}

// GetMarginLeft returns the left margin of the box
func (b *BlockBox) GetMarginLeft() float64 {
	return b.MarginLeft
}

// GetMarginRight returns the right margin of the box
func (b *BlockBox) GetMarginRight() float64 {
	return b.MarginRight
}

// SetPosition moves the box and everything inside it.
func (b *BlockBox) SetPosition(x, y float64) {
	dx, dy := x-b.X, y-b.Y
	b.X = x
	b.Y = y
	for _, ch := range b.Children {
		ch.SetPosition(ch.GetX()+dx, ch.GetY()+dy)
	}
}

// AddChild adds a child box
func (b *BlockBox) AddChild(child Box) {
	b.Children = append(b.Children, child)
}

// GetNode returns the HTML node associated with this box
func (b *BlockBox) GetNode() *html.Node {
	return b.Node
}
