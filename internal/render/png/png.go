// Package png draws a paginated page into a PNG preview with gg.
package png

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/eladw917/cookbook-creator/internal/layout"
	"github.com/eladw917/cookbook-creator/internal/logging"
	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/render"
	"github.com/eladw917/cookbook-creator/internal/res"
	"github.com/eladw917/cookbook-creator/internal/text"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultScale renders one point as two pixels.
const DefaultScale = 2.0

// ImageSource supplies decoded-ready image data for an image src.
type ImageSource interface {
	LoadEmbeddable(src string, width, height int) (*res.Image, error)
}

// Renderer draws pages. Core PDF fonts are approximated with the Go fonts.
// A Renderer caches faces and must not be shared between goroutines.
type Renderer struct {
	Fonts  *text.Registry
	Images ImageSource
	Logger *slog.Logger
	Scale  float64
	// DebugDrawBoxes outlines every block and image box.
	DebugDrawBoxes bool

	faces map[string]font.Face
	dc    *gg.Context
	lists []listContext
}

type listContext struct {
	kind    string
	counter int
}

// NewRenderer creates a preview renderer at DefaultScale.
func NewRenderer(fonts *text.Registry, images ImageSource) *Renderer {
	return &Renderer{
		Fonts:  fonts,
		Images: images,
		Logger: logging.NewNop(),
		Scale:  DefaultScale,
	}
}

// Render draws page onto a white canvas and writes it to w as PNG.
func (r *Renderer) Render(page *pagination.Page, w io.Writer) error {
	if page == nil {
		return fmt.Errorf("render png: no page")
	}
	if r.Scale <= 0 {
		r.Scale = DefaultScale
	}
	if r.faces == nil {
		r.faces = make(map[string]font.Face)
	}
	width := int(math.Ceil(page.Width * r.Scale))
	height := int(math.Ceil(page.Height * r.Scale))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render png: empty page %dx%d", width, height)
	}

	r.dc = gg.NewContext(width, height)
	r.dc.SetRGB(1, 1, 1)
	r.dc.Clear()
	r.lists = nil
	for _, box := range page.Boxes {
		r.drawBox(box)
	}

	if err := r.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	r.Logger.Debug("png rendered", logging.Int("page", page.Number), logging.Int("width", width), logging.Int("height", height))
	return nil
}

func (r *Renderer) s(v float64) float64 { return v * r.Scale }

func (r *Renderer) outline(x, y, w, h float64) {
	r.dc.SetRGB(1, 0, 0)
	r.dc.SetLineWidth(1)
	r.dc.SetDash()
	r.dc.DrawRectangle(r.s(x), r.s(y), r.s(w), r.s(h))
	r.dc.Stroke()
}

func (r *Renderer) drawBox(box layout.Box) {
	switch b := box.(type) {
	case *layout.BlockBox:
		r.drawBlock(b)
	case *layout.InlineBox:
		if b.Text != "" && b.Style.Get("visibility") != "hidden" {
			r.drawText(b)
		}
		for _, child := range b.Children {
			r.drawBox(child)
		}
	case *layout.ImageBox:
		r.drawImage(b)
		if r.DebugDrawBoxes {
			r.outline(b.X, b.Y, b.Width, b.Height)
		}
	}
}

func (r *Renderer) drawBlock(b *layout.BlockBox) {
	if b.Style.Get("visibility") != "hidden" {
		if c, ok := render.ParseColor(b.Style.Get("background-color")); ok {
			r.setColor(c)
			r.dc.DrawRectangle(r.s(b.X), r.s(b.Y), r.s(b.Width), r.s(b.Height))
			r.dc.Fill()
		}
		r.drawBorders(b)
	}
	if r.DebugDrawBoxes {
		r.outline(b.X, b.Y, b.Width, b.Height)
	}

	tag := ""
	if b.Node != nil {
		tag = strings.ToLower(b.Node.Data)
	}
	list := tag == "ul" || tag == "ol"
	if list {
		r.lists = append(r.lists, listContext{kind: tag})
	}
	for _, child := range b.Children {
		if li, ok := child.(*layout.BlockBox); ok && len(r.lists) > 0 && li.Node != nil && strings.EqualFold(li.Node.Data, "li") {
			top := &r.lists[len(r.lists)-1]
			top.counter++
			r.drawListMarker(li, *top)
		}
		r.drawBox(child)
	}
	if list {
		r.lists = r.lists[:len(r.lists)-1]
	}
}

func (r *Renderer) drawBorders(b *layout.BlockBox) {
	fallback := render.ColorOr(b.Style.Get("color"), render.Black)
	sides := []struct {
		name       string
		width      float64
		x, y, w, h float64
	}{
		{"top", b.BorderTop, b.X, b.Y, b.Width, b.BorderTop},
		{"right", b.BorderRight, b.X + b.Width - b.BorderRight, b.Y, b.BorderRight, b.Height},
		{"bottom", b.BorderBottom, b.X, b.Y + b.Height - b.BorderBottom, b.Width, b.BorderBottom},
		{"left", b.BorderLeft, b.X, b.Y, b.BorderLeft, b.Height},
	}
	for _, side := range sides {
		if side.width <= 0 {
			continue
		}
		raw := b.Style.Get("border-" + side.name + "-color")
		c, ok := render.ParseColor(raw)
		if !ok {
			if raw != "" {
				continue
			}
			c = fallback
		}
		r.setColor(c)
		switch strings.ToLower(b.Style.Get("border-" + side.name + "-style")) {
		case "dashed":
			r.strokeSide(side.name, side.x, side.y, side.w, side.h, side.width, 3*side.width, 2*side.width)
		case "dotted":
			r.strokeSide(side.name, side.x, side.y, side.w, side.h, side.width, side.width, side.width)
		default:
			r.dc.DrawRectangle(r.s(side.x), r.s(side.y), r.s(side.w), r.s(side.h))
			r.dc.Fill()
		}
	}
}

func (r *Renderer) strokeSide(name string, x, y, w, h, width, on, off float64) {
	r.dc.SetLineWidth(r.s(width))
	r.dc.SetDash(r.s(on), r.s(off))
	if name == "top" || name == "bottom" {
		r.dc.DrawLine(r.s(x), r.s(y+h/2), r.s(x+w), r.s(y+h/2))
	} else {
		r.dc.DrawLine(r.s(x+w/2), r.s(y), r.s(x+w/2), r.s(y+h))
	}
	r.dc.Stroke()
	r.dc.SetDash()
}

func (r *Renderer) drawText(b *layout.InlineBox) {
	f := b.Font
	if f.Family == "" {
		f = text.Font{Family: "Helvetica", Size: 12, Core: true}
	}
	c := render.ColorOr(b.Style.Get("color"), render.Black)
	r.dc.SetFontFace(r.face(f))
	r.setColor(c)
	r.dc.DrawString(b.Text, r.s(b.X), r.s(b.Baseline))

	var y float64
	switch deco := b.Style.Get("text-decoration"); {
	case strings.Contains(deco, "underline"):
		y = b.Baseline + f.Size*0.12
	case strings.Contains(deco, "line-through"):
		y = b.Baseline - f.Size*0.28
	default:
		return
	}
	r.dc.SetLineWidth(r.s(max(0.5, f.Size/18)))
	r.dc.DrawLine(r.s(b.X), r.s(y), r.s(b.X+b.Width), r.s(y))
	r.dc.Stroke()
}

func (r *Renderer) drawListMarker(li *layout.BlockBox, ctx listContext) {
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

	f := text.Font{Family: "Helvetica", Size: 12, Core: true}
	baseline := li.Y + li.BorderTop + li.PaddingTop + 12*text.AscentRatio
	if ib := firstInline(li); ib != nil {
		f, baseline = ib.Font, ib.Baseline
	}
	r.setColor(render.ColorOr(li.Style.Get("color"), render.Black))
	left := li.ContentX()

	if marker := render.ListMarker(listStyle, ctx.counter); marker != "" {
		r.dc.SetFontFace(r.face(f))
		w, _ := r.dc.MeasureString(marker)
		r.dc.DrawString(marker, r.s(left-f.Size*0.4)-w, r.s(baseline))
		return
	}

	radius := max(1.2, f.Size*0.18)
	cx, cy := left-f.Size*0.6, baseline-f.Size*0.3
	switch listStyle {
	case "circle":
		r.dc.SetLineWidth(r.s(0.8))
		r.dc.DrawCircle(r.s(cx), r.s(cy), r.s(radius))
		r.dc.Stroke()
	case "square":
		r.dc.DrawRectangle(r.s(cx-radius), r.s(cy-radius), r.s(2*radius), r.s(2*radius))
		r.dc.Fill()
	default:
		r.dc.DrawCircle(r.s(cx), r.s(cy), r.s(radius))
		r.dc.Fill()
	}
}

func firstInline(b *layout.BlockBox) *layout.InlineBox {
	for _, ch := range b.Children {
		switch v := ch.(type) {
		case *layout.InlineBox:
			return v
		case *layout.BlockBox:
			if ib := firstInline(v); ib != nil {
				return ib
			}
		}
	}
	return nil
}

func (r *Renderer) drawImage(b *layout.ImageBox) {
	if b.Src == "" || b.Width <= 0 || b.Height <= 0 {
		return
	}
	img, err := r.decode(b)
	if err != nil {
		r.Logger.Warn("preview image skipped", logging.String("src", b.Src), logging.Error(err))
		r.dc.SetRGB255(235, 235, 235)
		r.dc.DrawRectangle(r.s(b.X), r.s(b.Y), r.s(b.Width), r.s(b.Height))
		r.dc.Fill()
		return
	}

	bounds := img.Bounds()
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	sx, sy := r.s(b.Width)/iw, r.s(b.Height)/ih
	x, y := r.s(b.X), r.s(b.Y)
	cover := b.Style.Get("object-fit") == "cover"
	if cover {
		scale := max(sx, sy)
		x -= (iw*scale - r.s(b.Width)) / 2
		y -= (ih*scale - r.s(b.Height)) / 2
		sx, sy = scale, scale
		r.dc.DrawRectangle(r.s(b.X), r.s(b.Y), r.s(b.Width), r.s(b.Height))
		r.dc.Clip()
	}

	r.dc.Push()
	r.dc.Translate(x, y)
	r.dc.Scale(sx, sy)
	r.dc.DrawImage(img, 0, 0)
	r.dc.Pop()
	if cover {
		r.dc.ResetClip()
	}
}

func (r *Renderer) decode(b *layout.ImageBox) (image.Image, error) {
	if r.Images == nil {
		return nil, fmt.Errorf("no image source")
	}
	data, err := r.Images.LoadEmbeddable(b.Src, int(r.s(b.Width)), int(r.s(b.Height)))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", data.Format, err)
	}
	return img, nil
}

func (r *Renderer) setColor(c render.Color) {
	r.dc.SetRGBA255(c.R, c.G, c.B, int(math.Round(c.A*255)))
}

// face returns the scaled face for a resolved font, parsing registered
// TrueType data or one of the Go fonts for core fonts.
func (r *Renderer) face(f text.Font) font.Face {
	size := r.s(f.Size)
	key := fmt.Sprintf("%s|%s|%.2f", f.Family, f.Style, size)
	if face, ok := r.faces[key]; ok {
		return face
	}

	data, ok := r.Fonts.Bytes(f.Family, f.Style)
	if f.Core || !ok {
		data = goFont(f.Style)
	}
	var face font.Face = basicfont.Face7x13
	if parsed, err := truetype.Parse(data); err == nil {
		face = truetype.NewFace(parsed, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	} else {
		r.Logger.Warn("font parse failed", logging.String("family", f.Family), logging.Error(err))
	}
	r.faces[key] = face
	return face
}

func goFont(style string) []byte {
	switch style {
	case "B":
		return gobold.TTF
	case "I":
		return goitalic.TTF
	case "BI":
		return gobolditalic.TTF
	}
	return goregular.TTF
}
