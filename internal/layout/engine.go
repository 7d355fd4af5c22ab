// Package layout turns styled markup into positioned boxes: block flow,
// wrapped inline text measured with real font metrics, fixed-layout tables
// and images.
package layout

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/eladw917/cookbook-creator/internal/logging"
	"github.com/eladw917/cookbook-creator/internal/parser/html"
	"github.com/eladw917/cookbook-creator/internal/style"
	"github.com/eladw917/cookbook-creator/internal/text"
	xhtml "golang.org/x/net/html"
)

// Options represents options for the layout engine
type Options struct {
	// Width and Height of the viewport in points.
	Width  float64
	Height float64
	// Margin around the root box.
	Margin float64
	// Measure lays out without height caps: height and max-height are
	// ignored so every block reports its natural height.
	Measure bool
}

// ImageSizer reports the intrinsic size of an image source.
type ImageSizer interface {
	ImageSize(src string) (width, height float64, ok bool)
}

// Engine handles the layout process. An Engine is not safe for concurrent
// use; give each render its own.
type Engine struct {
	options Options
	styles  map[*html.Node]style.ComputedStyle
	metrics *text.Metrics
	images  ImageSizer
	logger  *slog.Logger
}

// NewEngine creates a new layout engine measuring text with metrics.
func NewEngine(metrics *text.Metrics) *Engine {
	if metrics == nil {
		metrics = text.NewMetrics(nil)
	}
	return &Engine{
		options: Options{
			Width:  595.28, // Default A4 width in points
			Height: 841.89, // Default A4 height in points
		},
		styles:  make(map[*html.Node]style.ComputedStyle),
		metrics: metrics,
		logger:  logging.NewNop(),
	}
}

// SetOptions sets the options for the layout engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// SetStyles sets the computed styles for the layout engine
func (e *Engine) SetStyles(styles map[*html.Node]style.ComputedStyle) {
	e.styles = styles
}

// SetImageSizer sets the source of intrinsic image sizes.
func (e *Engine) SetImageSizer(images ImageSizer) {
	e.images = images
}

// SetLogger sets the logger used for debug output.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Metrics returns the text metrics the engine measures with.
func (e *Engine) Metrics() *text.Metrics {
	return e.metrics
}

// Layout creates a layout tree from a document or a single node.
func (e *Engine) Layout(doc interface{}) *BlockBox {
	rootBox := &BlockBox{
		X:        e.options.Margin,
		Y:        e.options.Margin,
		Width:    e.options.Width - 2*e.options.Margin,
		Children: []Box{},
	}

	var htmlNode *html.Node
	switch d := doc.(type) {
	case *html.Document:
		htmlNode = d.Root
	case *html.Node:
		htmlNode = d
	default:
		e.logger.Warn("unknown document type", logging.String("type", fmt.Sprintf("%T", doc)))
		return rootBox
	}
	if htmlNode == nil {
		return rootBox
	}

	var nodes []*html.Node
	if htmlNode.Type == xhtml.DocumentNode {
		for child := htmlNode.FirstChild; child != nil; child = child.NextSibling {
			nodes = append(nodes, child)
		}
	} else {
		nodes = []*html.Node{htmlNode}
	}

	cursor := e.layoutFlow(rootBox, nodes, rootBox.X, rootBox.Y, rootBox.Width)
	rootBox.Height = cursor - rootBox.Y

	e.logger.Debug("layout complete",
		logging.Int("boxes", countBoxes(rootBox)),
		logging.Float64("height", rootBox.Height),
		logging.Bool("measure", e.options.Measure),
	)
	return rootBox
}

func countBoxes(b Box) int {
	n := 1
	for _, ch := range children(b) {
		n += countBoxes(ch)
	}
	return n
}

func (e *Engine) styleOf(n *html.Node) style.ComputedStyle {
	if n == nil {
		return style.ComputedStyle{}
	}
	if st, ok := e.styles[n]; ok {
		return st
	}
	return style.ComputedStyle{}
}

// layoutFlow lays out nodes in normal flow inside parent starting at y and
// returns the y below the last child's bottom margin. Runs of inline
// content become wrapped lines; block-level children become block boxes.
func (e *Engine) layoutFlow(parent *BlockBox, nodes []*html.Node, x, y, width float64) float64 {
	cursor := y
	var pending []*html.Node
	flush := func() {
		if len(pending) > 0 && e.hasInlineContent(pending) {
			cursor += e.layoutInline(parent, pending, x, cursor, width)
		}
		pending = nil
	}

	for _, n := range nodes {
		switch n.Type {
		case xhtml.CommentNode, xhtml.DoctypeNode:
			continue
		case xhtml.DocumentNode:
			flush()
			var inner []*html.Node
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				inner = append(inner, c)
			}
			cursor = e.layoutFlow(parent, inner, x, cursor, width)
			continue
		case xhtml.TextNode:
			pending = append(pending, n)
			continue
		}

		st := e.styleOf(n)
		if st.Get("display") == "none" {
			continue
		}
		if !e.isBlockLevel(n, st) {
			pending = append(pending, n)
			continue
		}

		flush()
		var child Box
		if n.Data == "img" {
			child = e.layoutImage(n, st, x, cursor, width)
		} else {
			child = e.layoutBlock(n, st, x, cursor, width, false)
		}
		parent.Children = append(parent.Children, child)
		cursor = child.GetY() + child.GetHeight() + child.GetMarginBottom()
	}
	flush()
	return cursor
}

// layoutBlock lays out a block-level element whose margin box starts at
// (x, y) inside a containing block of the given width. With fixed set the
// element takes exactly that width and its margins are ignored (table
// cells).
func (e *Engine) layoutBlock(node *html.Node, st style.ComputedStyle, x, y, available float64, fixed bool) *BlockBox {
	fs := fontSizeOf(st)
	b := NewBlockBox(node, st)
	b.parseBoxModel(available, fs)
	if fixed {
		b.MarginTop, b.MarginRight, b.MarginBottom, b.MarginLeft = 0, 0, 0, 0
	}
	hFrame, vFrame := b.frame()

	width := available - b.MarginLeft - b.MarginRight
	if !fixed {
		if w := st.Get("width"); w != "" && w != "auto" {
			width = parseLength(w, available, fs, width)
			if st.Get("box-sizing") != "border-box" {
				width += hFrame
			}
		}
		if mw := st.Get("max-width"); mw != "" && mw != "none" {
			limit := parseLength(mw, available, fs, math.Inf(1))
			if st.Get("box-sizing") != "border-box" {
				limit += hFrame
			}
			width = math.Min(width, limit)
		}
		if st.Get("margin-left") == "auto" && st.Get("margin-right") == "auto" {
			free := available - width
			if free > 0 {
				b.MarginLeft, b.MarginRight = free/2, free/2
			}
		}
	}
	if width < hFrame {
		width = hFrame
	}

	b.X = x + b.MarginLeft
	b.Y = y + b.MarginTop
	b.Width = width

	var cursor float64
	if node.Data == "table" || st.Get("display") == "table" {
		cursor = b.ContentY() + e.layoutTable(b, b.ContentX(), b.ContentY(), b.ContentWidth())
	} else {
		var kids []*html.Node
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			kids = append(kids, c)
		}
		cursor = e.layoutFlow(b, kids, b.ContentX(), b.ContentY(), b.ContentWidth())
	}
	contentHeight := cursor - b.ContentY()

	if h := st.Get("height"); h != "" && h != "auto" && !e.options.Measure {
		contentHeight = parseLength(h, 0, fs, contentHeight)
		if st.Get("box-sizing") == "border-box" {
			contentHeight -= vFrame
		}
	}
	if mh := st.Get("max-height"); mh != "" && mh != "none" && !e.options.Measure {
		limit := parseLength(mh, 0, fs, math.Inf(1))
		if st.Get("box-sizing") == "border-box" {
			limit -= vFrame
		}
		contentHeight = math.Min(contentHeight, limit)
	}
	if mh := st.Get("min-height"); mh != "" {
		floor := parseLength(mh, 0, fs, 0)
		if st.Get("box-sizing") == "border-box" {
			floor -= vFrame
		}
		contentHeight = math.Max(contentHeight, floor)
	}
	if contentHeight < 0 {
		contentHeight = 0
	}

	b.Height = vFrame + contentHeight
	return b
}

// isBlockLevel reports whether an element takes part in block flow. Images
// are laid out as blocks.
func (e *Engine) isBlockLevel(n *html.Node, st style.ComputedStyle) bool {
	if n.Type != xhtml.ElementNode {
		return false
	}
	switch st.Get("display") {
	case "block", "list-item", "table", "flex", "grid", "flow-root":
		return true
	case "inline", "inline-block":
		return n.Data == "img"
	}
	return n.Data == "img" || isBlockTag(n.Data)
}

// isBlockTag reports whether a tag name is treated as block-level
func isBlockTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "html", "body", "div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "table", "thead", "tbody", "tfoot",
		"tr", "td", "th", "header", "footer", "section", "article",
		"form", "fieldset", "hr", "blockquote", "address", "main",
		"nav", "aside", "figure", "figcaption", "dl", "dt", "dd", "pre":
		return true
	default:
		return false
	}
}
