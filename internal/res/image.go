package res

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	// Register a broad set of image decoders so image.Decode can handle
	// many formats.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxImageEdge bounds the longest edge, in pixels, of raster images handed
// to renderers. Larger images are downscaled.
const MaxImageEdge = 1600

// Image is an image ready for embedding: PNG, JPEG or GIF bytes.
type Image struct {
	Data   []byte
	Format string // "PNG", "JPG" or "GIF"
	Width  int
	Height int
}

// IsSVG reports whether a resource is an SVG document.
func (r *Resource) IsSVG() bool {
	return r.MimeType == "image/svg+xml" || strings.HasSuffix(strings.ToLower(r.URL), ".svg")
}

// ImageSize reports the intrinsic size of an image in pixels. It satisfies
// the layout engine's ImageSizer.
func (l *Loader) ImageSize(src string) (float64, float64, bool) {
	r, err := l.LoadImage(src)
	if err != nil {
		return 0, 0, false
	}
	if r.IsSVG() {
		icon, err := oksvg.ReadIconStream(r.GetReader(), oksvg.IgnoreErrorMode)
		if err != nil || icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
			return 0, 0, false
		}
		return icon.ViewBox.W, icon.ViewBox.H, true
	}
	cfg, _, err := image.DecodeConfig(r.GetReader())
	if err != nil {
		return 0, 0, false
	}
	return float64(cfg.Width), float64(cfg.Height), true
}

// LoadEmbeddable loads an image and converts it to a format PDF and PNG
// writers accept. SVG is rasterized at the given size (pixels); BMP, TIFF
// and WebP are re-encoded as PNG; oversized rasters are downscaled.
func (l *Loader) LoadEmbeddable(src string, width, height int) (*Image, error) {
	r, err := l.LoadImage(src)
	if err != nil {
		return nil, err
	}
	if r.IsSVG() {
		return rasterizeSVG(r.Data, width, height)
	}

	cfg, format, err := image.DecodeConfig(r.GetReader())
	if err != nil {
		return nil, fmt.Errorf("decode image config %s: %w", displayURL(src), err)
	}
	oversized := cfg.Width > MaxImageEdge || cfg.Height > MaxImageEdge
	switch format {
	case "png", "jpeg", "gif":
		if !oversized {
			return &Image{Data: r.Data, Format: pdfFormat(format), Width: cfg.Width, Height: cfg.Height}, nil
		}
	}

	img, _, err := image.Decode(r.GetReader())
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", displayURL(src), err)
	}
	if oversized {
		img = downscale(img, MaxImageEdge)
	}
	return encodePNG(img)
}

func pdfFormat(format string) string {
	switch format {
	case "jpeg":
		return "JPG"
	case "gif":
		return "GIF"
	default:
		return "PNG"
	}
}

// downscale shrinks img so its longest edge is maxEdge, keeping the aspect
// ratio.
func downscale(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	scale := float64(maxEdge) / math.Max(float64(b.Dx()), float64(b.Dy()))
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func rasterizeSVG(data []byte, width, height int) (*Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	if width <= 0 || height <= 0 {
		width, height = int(icon.ViewBox.W), int(icon.ViewBox.H)
	}
	if width <= 0 || height <= 0 {
		width, height = 64, 64
	}

	icon.SetTarget(0, 0, float64(width), float64(height))
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1)
	return encodePNG(rgba)
}

func encodePNG(img image.Image) (*Image, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	b := img.Bounds()
	return &Image{Data: buf.Bytes(), Format: "PNG", Width: b.Dx(), Height: b.Dy()}, nil
}
