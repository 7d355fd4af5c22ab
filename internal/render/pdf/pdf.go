// Package pdf rasterizes paginated layout boxes into a PDF document with fpdf.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/eladw917/cookbook-creator/internal/layout"
	"github.com/eladw917/cookbook-creator/internal/logging"
	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/render"
	"github.com/eladw917/cookbook-creator/internal/res"
	"github.com/eladw917/cookbook-creator/internal/text"
)

// ImageSource supplies embeddable image data for an image src.
type ImageSource interface {
	LoadEmbeddable(src string, width, height int) (*res.Image, error)
}

// Renderer handles rendering to PDF. A Renderer keeps per-document state
// while rendering and must not be shared between goroutines.
type Renderer struct {
	Fonts  *text.Registry
	Images ImageSource
	Logger *slog.Logger

	// RenderBackgrounds controls whether box backgrounds are painted
	RenderBackgrounds bool
	// RenderBorders controls whether box borders are painted
	RenderBorders bool
	// DebugDrawBoxes outlines every box
	DebugDrawBoxes bool

	listStack []listContext
	images    map[string]string
}

// listContext represents an active list (ul/ol) while rendering
type listContext struct {
	kind    string // "ul" or "ol"
	counter int
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	// CreationDate is stamped into the document; the zero value leaves
	// fpdf's current time.
	CreationDate time.Time
}

// NewRenderer creates a new PDF renderer
func NewRenderer(fonts *text.Registry, images ImageSource) *Renderer {
	return &Renderer{
		Fonts:             fonts,
		Images:            images,
		Logger:            logging.NewNop(),
		RenderBackgrounds: true,
		RenderBorders:     true,
	}
}

// Render writes pages as one PDF document to w. Every page is emitted, each
// at its own size.
func (r *Renderer) Render(pages []*pagination.Page, w io.Writer, options RenderOptions) error {
	if len(pages) == 0 {
		return fmt.Errorf("render pdf: no pages")
	}
	r.listStack = nil
	r.images = make(map[string]string)

	first := pages[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)
	if !options.CreationDate.IsZero() {
		pdf.SetCreationDate(options.CreationDate)
		pdf.SetModificationDate(options.CreationDate)
	}
	r.Fonts.Register(pdf)
	pdf.SetFont("Helvetica", "", 12)

	for _, page := range pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, box := range page.Boxes {
			r.renderBox(pdf, box)
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("render page %d: %w", page.Number, err)
		}
	}

	r.Logger.Debug("pdf rendered", logging.Int("pages", len(pages)), logging.Int("images", len(r.images)))
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// renderBox renders a box to the PDF
func (r *Renderer) renderBox(pdf *fpdf.Fpdf, box layout.Box) {
	switch b := box.(type) {
	case *layout.BlockBox:
		r.renderBlockBox(pdf, b)
	case *layout.InlineBox:
		r.renderInlineBox(pdf, b)
	case *layout.ImageBox:
		r.renderImage(pdf, b)
	default:
		r.Logger.Debug("unknown box type", logging.String("type", fmt.Sprintf("%T", box)))
	}
}

// renderBlockBox renders a block box to the PDF
func (r *Renderer) renderBlockBox(pdf *fpdf.Fpdf, box *layout.BlockBox) {
	if box.Style.Get("visibility") != "hidden" {
		r.renderBackground(pdf, box)
		r.renderBorders(pdf, box)
	}

	tag := ""
	if box.Node != nil {
		tag = strings.ToLower(box.Node.Data)
	}
	enteringList := tag == "ul" || tag == "ol"
	if enteringList {
		r.listStack = append(r.listStack, listContext{kind: tag})
	}

	for _, child := range box.Children {
		if cb, ok := child.(*layout.BlockBox); ok && len(r.listStack) > 0 && cb.Node != nil && strings.EqualFold(cb.Node.Data, "li") {
			top := &r.listStack[len(r.listStack)-1]
			top.counter++
			r.renderListMarker(pdf, cb, *top)
		}
		r.renderBox(pdf, child)
	}

	if enteringList {
		r.listStack = r.listStack[:len(r.listStack)-1]
	}

	if r.DebugDrawBoxes {
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Rect(box.X, box.Y, box.Width, box.Height, "D")
	}
}

// renderInlineBox renders an inline box to the PDF
func (r *Renderer) renderInlineBox(pdf *fpdf.Fpdf, box *layout.InlineBox) {
	if box.Text != "" && box.Style.Get("visibility") != "hidden" {
		r.renderText(pdf, box)
	}
	for _, child := range box.Children {
		r.renderBox(pdf, child)
	}
	if r.DebugDrawBoxes {
		pdf.SetDrawColor(0, 0, 200)
		pdf.SetLineWidth(0.5)
		pdf.Rect(box.X, box.Y, box.Width, box.Height, "D")
	}
}

// renderBackground renders the background of a block box
func (r *Renderer) renderBackground(pdf *fpdf.Fpdf, box *layout.BlockBox) {
	if !r.RenderBackgrounds {
		return
	}
	c, ok := render.ParseColor(box.Style.Get("background-color"))
	if !ok {
		return
	}
	withAlpha(pdf, c.A, func() {
		pdf.SetFillColor(c.R, c.G, c.B)
		pdf.Rect(box.X, box.Y, box.Width, box.Height, "F")
	})
}

// renderBorders draws each side of a block box's border with its own width,
// style and color.
func (r *Renderer) renderBorders(pdf *fpdf.Fpdf, box *layout.BlockBox) {
	if !r.RenderBorders {
		return
	}
	fallback := render.ColorOr(box.Style.Get("color"), render.Black)
	sides := []struct {
		name       string
		width      float64
		x, y, w, h float64
	}{
		{"top", box.BorderTop, box.X, box.Y, box.Width, box.BorderTop},
		{"right", box.BorderRight, box.X + box.Width - box.BorderRight, box.Y, box.BorderRight, box.Height},
		{"bottom", box.BorderBottom, box.X, box.Y + box.Height - box.BorderBottom, box.Width, box.BorderBottom},
		{"left", box.BorderLeft, box.X, box.Y, box.BorderLeft, box.Height},
	}
	for _, s := range sides {
		if s.width <= 0 {
			continue
		}
		c, ok := render.ParseColor(box.Style.Get("border-" + s.name + "-color"))
		if !ok {
			if box.Style.Get("border-"+s.name+"-color") != "" {
				continue
			}
			c = fallback
		}
		bstyle := strings.ToLower(box.Style.Get("border-" + s.name + "-style"))
		withAlpha(pdf, c.A, func() {
			switch bstyle {
			case "dashed", "dotted":
				dash := []float64{3 * s.width, 2 * s.width}
				if bstyle == "dotted" {
					dash = []float64{s.width, s.width}
				}
				pdf.SetDrawColor(c.R, c.G, c.B)
				pdf.SetLineWidth(s.width)
				pdf.SetDashPattern(dash, 0)
				if s.name == "top" || s.name == "bottom" {
					pdf.Line(s.x, s.y+s.h/2, s.x+s.w, s.y+s.h/2)
				} else {
					pdf.Line(s.x+s.w/2, s.y, s.x+s.w/2, s.y+s.h)
				}
				pdf.SetDashPattern([]float64{}, 0)
			default:
				pdf.SetFillColor(c.R, c.G, c.B)
				pdf.Rect(s.x, s.y, s.w, s.h, "F")
			}
		})
	}
}

// renderText sets an inline box's text on its baseline.
func (r *Renderer) renderText(pdf *fpdf.Fpdf, box *layout.InlineBox) {
	f := box.Font
	if f.Family == "" {
		f = text.Font{Family: "Helvetica", Size: 12, Core: true}
	}
	c := render.ColorOr(box.Style.Get("color"), render.Black)

	pdf.SetFont(f.Family, f.Style, f.Size)
	pdf.SetTextColor(c.R, c.G, c.B)
	withAlpha(pdf, c.A, func() {
		pdf.Text(box.X, box.Baseline, text.Encode(f, box.Text))
	})

	switch deco := box.Style.Get("text-decoration"); {
	case strings.Contains(deco, "underline"):
		r.decorate(pdf, c, box, box.Baseline+f.Size*0.12, f.Size)
	case strings.Contains(deco, "line-through"):
		r.decorate(pdf, c, box, box.Baseline-f.Size*0.28, f.Size)
	}
}

func (r *Renderer) decorate(pdf *fpdf.Fpdf, c render.Color, box *layout.InlineBox, y, size float64) {
	pdf.SetDrawColor(c.R, c.G, c.B)
	pdf.SetLineWidth(max(0.5, size/18))
	pdf.Line(box.X, y, box.X+box.Width, y)
}

// renderListMarker draws the bullet or number of a list item on the baseline
// of its first line.
func (r *Renderer) renderListMarker(pdf *fpdf.Fpdf, li *layout.BlockBox, ctx listContext) {
	listStyle := strings.ToLower(li.Style.Get("list-style-type"))
	if listStyle == "" {
		listStyle = "disc"
		if ctx.kind == "ol" {
			listStyle = "decimal"
		}
	}
	if listStyle == "none" {
		return
	}

	ib := firstInlineChild(li)
	font := text.Font{Family: "Helvetica", Size: 12, Core: true}
	baseline := li.Y + li.BorderTop + li.PaddingTop + 12*text.AscentRatio
	if ib != nil {
		font = ib.Font
		baseline = ib.Baseline
	}
	c := render.ColorOr(li.Style.Get("color"), render.Black)
	left := li.ContentX()

	if marker := render.ListMarker(listStyle, ctx.counter); marker != "" {
		pdf.SetFont(font.Family, font.Style, font.Size)
		pdf.SetTextColor(c.R, c.G, c.B)
		width := pdf.GetStringWidth(marker)
		pdf.Text(left-width-font.Size*0.4, baseline, text.Encode(font, marker))
		return
	}

	radius := max(1.2, font.Size*0.18)
	cx := left - font.Size*0.6
	cy := baseline - font.Size*0.3
	pdf.SetDrawColor(c.R, c.G, c.B)
	pdf.SetFillColor(c.R, c.G, c.B)
	switch listStyle {
	case "circle":
		pdf.SetLineWidth(0.8)
		pdf.Circle(cx, cy, radius, "D")
	case "square":
		pdf.Rect(cx-radius, cy-radius, 2*radius, 2*radius, "F")
	default:
		pdf.Circle(cx, cy, radius, "F")
	}
}

// firstInlineChild returns the first InlineBox found within b, depth first.
func firstInlineChild(b *layout.BlockBox) *layout.InlineBox {
	for _, ch := range b.Children {
		switch v := ch.(type) {
		case *layout.InlineBox:
			return v
		case *layout.BlockBox:
			if ib := firstInlineChild(v); ib != nil {
				return ib
			}
		}
	}
	return nil
}

// renderImage draws an image box. object-fit: cover crops the image to the
// box; other values stretch it.
func (r *Renderer) renderImage(pdf *fpdf.Fpdf, box *layout.ImageBox) {
	if r.Images == nil || box.Src == "" || box.Width <= 0 || box.Height <= 0 {
		return
	}
	// Rasterize vector sources at twice the box size.
	img, err := r.Images.LoadEmbeddable(box.Src, int(box.Width*2), int(box.Height*2))
	if err != nil {
		r.Logger.Warn("image skipped", logging.String("src", shortSrc(box.Src)), logging.Error(err))
		pdf.SetFillColor(235, 235, 235)
		pdf.Rect(box.X, box.Y, box.Width, box.Height, "F")
		return
	}

	key := fmt.Sprintf("%s@%dx%d", box.Src, img.Width, img.Height)
	name, ok := r.images[key]
	if !ok {
		name = fmt.Sprintf("img%d", len(r.images)+1)
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: img.Format}, bytes.NewReader(img.Data))
		if err := pdf.Error(); err != nil {
			r.Logger.Warn("image skipped", logging.String("src", shortSrc(box.Src)), logging.Error(err))
			pdf.ClearError()
			return
		}
		r.images[key] = name
	}

	opts := fpdf.ImageOptions{ImageType: img.Format}
	if box.Style.Get("object-fit") != "cover" || img.Width <= 0 || img.Height <= 0 {
		pdf.ImageOptions(name, box.X, box.Y, box.Width, box.Height, false, opts, 0, "")
		return
	}

	scale := max(box.Width/float64(img.Width), box.Height/float64(img.Height))
	w, h := float64(img.Width)*scale, float64(img.Height)*scale
	pdf.ClipRect(box.X, box.Y, box.Width, box.Height, false)
	pdf.ImageOptions(name, box.X-(w-box.Width)/2, box.Y-(h-box.Height)/2, w, h, false, opts, 0, "")
	pdf.ClipEnd()
}

func shortSrc(src string) string {
	if len(src) > 64 {
		return src[:64] + "..."
	}
	return src
}

func withAlpha(pdf *fpdf.Fpdf, alpha float64, draw func()) {
	if alpha >= 1 {
		draw()
		return
	}
	pdf.SetAlpha(alpha, "Normal")
	draw()
	pdf.SetAlpha(1, "Normal")
}
