package pagination

import (
	"math"
	"strings"

	"github.com/eladw917/cookbook-creator/internal/layout"
	"github.com/eladw917/cookbook-creator/internal/parser/html"
)

// PageClass marks the elements that each become exactly one PDF page.
const PageClass = "page"

// Page represents a single page in the document
type Page struct {
	Number int
	Width  float64
	Height float64
	Boxes  []layout.Box
}

// PageSize represents standard page sizes
type PageSize struct {
	Width  float64
	Height float64
	Name   string
}

// Standard page sizes in points (1/72 inch)
var (
	PageSizeA4     = PageSize{Width: 595.28, Height: 841.89, Name: "A4"}
	PageSizeLetter = PageSize{Width: 612.00, Height: 792.00, Name: "Letter"}
	PageSizeLegal  = PageSize{Width: 612.00, Height: 1008.00, Name: "Legal"}
	PageSizeA5     = PageSize{Width: 419.53, Height: 595.28, Name: "A5"}
)

// LookupPageSize resolves a case-insensitive page size name.
func LookupPageSize(name string) (PageSize, bool) {
	for _, s := range []PageSize{PageSizeA4, PageSizeLetter, PageSizeLegal, PageSizeA5} {
		if strings.EqualFold(strings.TrimSpace(name), s.Name) {
			return s, true
		}
	}
	return PageSize{}, false
}

// Margins represents page margins
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Paginator handles breaking content into pages
type Paginator struct {
	PageSize PageSize
	Margins  Margins
}

// NewPaginator creates a new paginator
func NewPaginator(pageSize PageSize, margins Margins) *Paginator {
	return &Paginator{
		PageSize: pageSize,
		Margins:  margins,
	}
}

// Paginate creates one page per page container, in document order, with the
// container moved to the top of its page. Content without page containers
// is cut into page-height slices instead.
func (p *Paginator) Paginate(rootBox layout.Box) []*Page {
	var containers []*layout.BlockBox
	collectPageContainers(rootBox, &containers)
	if len(containers) == 0 {
		return p.slice(rootBox)
	}

	pages := make([]*Page, 0, len(containers))
	for i, c := range containers {
		pages = append(pages, &Page{
			Number: i + 1,
			Width:  p.PageSize.Width,
			Height: p.PageSize.Height,
			Boxes:  []layout.Box{cloneBox(c, -c.X, -c.Y)},
		})
	}
	return pages
}

func collectPageContainers(box layout.Box, out *[]*layout.BlockBox) {
	b, ok := box.(*layout.BlockBox)
	if !ok {
		return
	}
	if b.Node != nil && html.HasClass(b.Node, PageClass) {
		*out = append(*out, b)
		return
	}
	for _, child := range b.Children {
		collectPageContainers(child, out)
	}
}

// slice distributes the leaf-most block children of the body onto pages by
// their vertical position.
func (p *Paginator) slice(rootBox layout.Box) []*Page {
	content := p.PageSize.Height - p.Margins.Top - p.Margins.Bottom
	var blocks []layout.Box
	collectFlowBoxes(rootBox, &blocks)

	pages := []*Page{}
	newPage := func() *Page {
		page := &Page{Number: len(pages) + 1, Width: p.PageSize.Width, Height: p.PageSize.Height}
		pages = append(pages, page)
		return page
	}
	newPage()
	if len(blocks) == 0 || content <= 0 {
		return pages
	}

	top := blocks[0].GetY()
	for _, box := range blocks {
		index := int(math.Floor((box.GetY() - top) / content))
		if index < 0 {
			index = 0
		}
		for index >= len(pages) {
			newPage()
		}
		dy := p.Margins.Top - top - float64(index)*content
		pages[index].Boxes = append(pages[index].Boxes, cloneBox(box, 0, dy))
	}
	return pages
}

// collectFlowBoxes descends through wrapper blocks (html, body, single-child
// containers) and collects the boxes that carry content.
func collectFlowBoxes(box layout.Box, out *[]layout.Box) {
	b, ok := box.(*layout.BlockBox)
	if !ok {
		*out = append(*out, box)
		return
	}
	wrapper := b.Node == nil || b.Node.Data == "html" || b.Node.Data == "body"
	if !wrapper || len(b.Children) == 0 {
		*out = append(*out, b)
		return
	}
	for _, child := range b.Children {
		collectFlowBoxes(child, out)
	}
}

// cloneBox creates a deep copy of a box moved by (dx, dy).
func cloneBox(box layout.Box, dx, dy float64) layout.Box {
	switch b := box.(type) {
	case *layout.BlockBox:
		clone := *b
		clone.X += dx
		clone.Y += dy
		clone.Children = make([]layout.Box, len(b.Children))
		for i, child := range b.Children {
			clone.Children[i] = cloneBox(child, dx, dy)
		}
		return &clone

	case *layout.InlineBox:
		clone := *b
		clone.X += dx
		clone.Y += dy
		clone.Baseline += dy
		clone.Children = make([]layout.Box, len(b.Children))
		for i, child := range b.Children {
			clone.Children[i] = cloneBox(child, dx, dy)
		}
		return &clone

	case *layout.ImageBox:
		clone := *b
		clone.X += dx
		clone.Y += dy
		return &clone
	}

	return box
}
