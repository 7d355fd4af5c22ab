package layout

import (
	"github.com/eladw917/cookbook-creator/internal/parser/html"
	"github.com/eladw917/cookbook-creator/internal/style"
)

// defaultImageSize is used when neither the style nor the source gives a size.
const defaultImageSize = 40.0

// ImageBox represents an <img> element. Images are laid out as blocks.
type ImageBox struct {
	Node  *html.Node
	Style style.ComputedStyle

	X      float64
	Y      float64
	Width  float64
	Height float64

	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// Src is the src attribute; the renderer resolves it through its loader.
	Src string
}

// layoutImage sizes an image from CSS width/height, then the width and
// height attributes, keeping the intrinsic aspect ratio when only one
// dimension is given.
func (e *Engine) layoutImage(node *html.Node, st style.ComputedStyle, x, y, available float64) *ImageBox {
	fs := fontSizeOf(st)
	src, _ := html.Attr(node, "src")
	b := &ImageBox{Node: node, Style: st, Src: src}
	b.MarginTop = parseLength(st.Get("margin-top"), available, fs, 0)
	b.MarginRight = parseLength(st.Get("margin-right"), available, fs, 0)
	b.MarginBottom = parseLength(st.Get("margin-bottom"), available, fs, 0)
	b.MarginLeft = parseLength(st.Get("margin-left"), available, fs, 0)

	dimension := func(prop string, container float64) float64 {
		if v := st.Get(prop); v != "" && v != "auto" {
			if n := parseLength(v, container, fs, 0); n > 0 {
				return n
			}
		}
		if v, ok := html.Attr(node, prop); ok {
			return parseLength(v, container, fs, 0)
		}
		return 0
	}
	w := dimension("width", available)
	h := dimension("height", 0)

	var iw, ih float64
	var intrinsic bool
	if e.images != nil && src != "" {
		iw, ih, intrinsic = e.images.ImageSize(src)
		intrinsic = intrinsic && iw > 0 && ih > 0
	}

	switch {
	case w > 0 && h > 0:
	case w > 0 && intrinsic:
		h = w * ih / iw
	case h > 0 && intrinsic:
		w = h * iw / ih
	case intrinsic:
		w, h = iw, ih
	default:
		if w <= 0 {
			w = defaultImageSize
		}
		if h <= 0 {
			h = defaultImageSize
		}
	}

	limit := available - b.MarginLeft - b.MarginRight
	if mw := st.Get("max-width"); mw != "" && mw != "none" {
		if v := parseLength(mw, available, fs, 0); v > 0 && v < limit {
			limit = v
		}
	}
	if w > limit && limit > 0 {
		h *= limit / w
		w = limit
	}

	b.X = x + b.MarginLeft
	b.Y = y + b.MarginTop
	b.Width = w
	b.Height = h
	return b
}

// GetX returns the x position of the box
func (b *ImageBox) GetX() float64 { return b.X }

// GetY returns the y position of the box
func (b *ImageBox) GetY() float64 { return b.Y }

// GetWidth returns the width of the box
func (b *ImageBox) GetWidth() float64 { return b.Width }

// GetHeight returns the height of the box
func (b *ImageBox) GetHeight() float64 { return b.Height }

func (b *ImageBox) GetMarginTop() float64    { return b.MarginTop }
func (b *ImageBox) GetMarginBottom() float64 { return b.MarginBottom }
func (b *ImageBox) GetMarginLeft() float64   { return b.MarginLeft }
func (b *ImageBox) GetMarginRight() float64  { return b.MarginRight }

func (b *ImageBox) SetPosition(x, y float64) { b.X, b.Y = x, y }

func (b *ImageBox) GetNode() *html.Node { return b.Node }
