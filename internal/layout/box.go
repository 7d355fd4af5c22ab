package layout

import (
	"github.com/eladw917/cookbook-creator/internal/parser/html"
)

// Box is a laid-out box. X and Y are the top-left corner of the border box
// in document coordinates; width and height are border-box dimensions.
type Box interface {
	GetX() float64
	GetY() float64
	GetWidth() float64
	GetHeight() float64
	GetMarginTop() float64
	GetMarginBottom() float64
	GetMarginLeft() float64
	GetMarginRight() float64
	SetPosition(x, y float64)
	GetNode() *html.Node
}

// OuterHeight returns the margin-box height of a box: the vertical space it
// takes in its parent's block flow.
func OuterHeight(b Box) float64 {
	return b.GetMarginTop() + b.GetHeight() + b.GetMarginBottom()
}

// Index maps every element node in the tree below root to the box that was
// generated for it. Anonymous text boxes are not indexed.
func Index(root Box) map[*html.Node]Box {
	out := make(map[*html.Node]Box)
	var walk func(Box)
	walk = func(b Box) {
		if n := b.GetNode(); n != nil {
			if _, seen := out[n]; !seen {
				out[n] = b
			}
		}
		for _, child := range children(b) {
			walk(child)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

func children(b Box) []Box {
	switch v := b.(type) {
	case *BlockBox:
		return v.Children
	case *InlineBox:
		return v.Children
	}
	return nil
}
