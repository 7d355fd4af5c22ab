// Package rasterize turns composed page markup into document bytes.
package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/eladw917/cookbook-creator/internal/layout"
	"github.com/eladw917/cookbook-creator/internal/logging"
	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/render/pdf"
	"github.com/eladw917/cookbook-creator/internal/res"
	"github.com/eladw917/cookbook-creator/internal/text"
)

// Rasterizer produces final document bytes from page markup.
type Rasterizer interface {
	Rasterize(ctx context.Context, markup string) ([]byte, error)
}

// PDF lays out markup and renders every page section as a PDF page. It
// holds no per-render state and may be used from several goroutines.
type PDF struct {
	Fonts    *text.Registry
	Loader   *res.Loader
	PageSize pagination.PageSize
	Margins  pagination.Margins
	Metadata pdf.RenderOptions
	Logger   *slog.Logger
	// DebugDrawBoxes outlines every box in the output.
	DebugDrawBoxes bool
}

// Pages lays out markup and distributes it onto pages.
func (p *PDF) Pages(ctx context.Context, markup string) ([]*pagination.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	engine := layout.NewEngine(text.NewMetrics(p.Fonts))
	engine.SetOptions(layout.Options{Width: p.PageSize.Width, Height: p.PageSize.Height})
	engine.SetLogger(p.logger())
	if p.Loader != nil {
		engine.SetImageSizer(p.Loader)
	}

	var loader layout.StylesheetLoader
	if p.Loader != nil {
		loader = p.Loader
	}
	doc, err := engine.LayoutMarkup(markup, loader)
	if err != nil {
		return nil, fmt.Errorf("layout markup: %w", err)
	}
	if err := engine.Metrics().Err(); err != nil {
		return nil, fmt.Errorf("measure text: %w", err)
	}

	pages := pagination.NewPaginator(p.PageSize, p.Margins).Paginate(doc.Root)
	if len(pages) == 0 {
		return nil, fmt.Errorf("layout markup: no pages")
	}
	return pages, nil
}

// Rasterize renders markup to PDF bytes.
func (p *PDF) Rasterize(ctx context.Context, markup string) ([]byte, error) {
	pages, err := p.Pages(ctx, markup)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	renderer := pdf.NewRenderer(p.Fonts, nil)
	if p.Loader != nil {
		renderer.Images = p.Loader
	}
	renderer.Logger = p.logger()
	renderer.DebugDrawBoxes = p.DebugDrawBoxes

	var buf bytes.Buffer
	if err := renderer.Render(pages, &buf, p.Metadata); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *PDF) logger() *slog.Logger {
	if p.Logger == nil {
		return logging.NewNop()
	}
	return p.Logger
}
