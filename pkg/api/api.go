package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/eladw917/cookbook-creator/internal/artifacts"
	"github.com/eladw917/cookbook-creator/internal/book"
	"github.com/eladw917/cookbook-creator/internal/compose"
	"github.com/eladw917/cookbook-creator/internal/export"
	"github.com/eladw917/cookbook-creator/internal/logging"
	"github.com/eladw917/cookbook-creator/internal/measure"
	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/rasterize"
	"github.com/eladw917/cookbook-creator/internal/recipe"
	"github.com/eladw917/cookbook-creator/internal/render/pdf"
	"github.com/eladw917/cookbook-creator/internal/render/png"
	"github.com/eladw917/cookbook-creator/internal/res"
	"github.com/eladw917/cookbook-creator/internal/sequence"
	"github.com/eladw917/cookbook-creator/internal/store"
	"github.com/eladw917/cookbook-creator/internal/text"
)

const (
	producer     = "cookbook-creator"
	contentPDF   = "application/pdf"
	recipePrefix = "recipe/"
	bookPrefix   = "book/"
)

// ErrNoCache is returned by video operations when no cache directory is set.
var ErrNoCache = errors.New("no artifact cache configured")

// Converter is the main API for rendering recipes and cookbooks to PDF. It
// is safe for concurrent use.
type Converter struct {
	options    Options
	logger     *slog.Logger
	fonts      *text.Registry
	loader     *res.Loader
	composer   *compose.Composer
	sequencer  *sequence.Sequencer
	rasterizer *rasterize.PDF
	assembler  *book.Assembler
	markdown   *export.Markdown
	cache      *artifacts.Cache
	store      *store.Store
}

// New creates a converter from the default options and opts.
func New(opts ...Option) (*Converter, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates a converter with the specified options. It loads
// the font directories and opens the store when one is configured.
func NewWithOptions(options Options) (*Converter, error) {
	if options.PageWidth <= 0 || options.PageHeight <= 0 {
		return nil, fmt.Errorf("%w: page size %.2fx%.2f", pagination.ErrLayoutConfiguration, options.PageWidth, options.PageHeight)
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	fonts, err := text.NewRegistry(options.FontDirectories)
	if err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}
	loader := res.NewLoader("")
	for _, path := range options.ResourcePaths {
		loader.AddSearchPath(path)
	}

	pageSize := pagination.PageSize{Width: options.PageWidth, Height: options.PageHeight, Name: "Custom"}
	margins := pagination.Margins{
		Top:    options.MarginTop,
		Right:  options.MarginRight,
		Bottom: options.MarginBottom,
		Left:   options.MarginLeft,
	}
	composer, err := compose.New(compose.Geometry{
		Page:            pageSize,
		Margins:         margins,
		ColumnGap:       options.ColumnGap,
		LeftColumnRatio: options.LeftColumnRatio,
	}, compose.WithHeroPage(options.HeroPage))
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	engine := pagination.NewEngine()
	engine.SetOptions(pagination.Options{
		PageWidth:                 options.PageWidth,
		PageHeight:                options.PageHeight,
		MarginTop:                 options.MarginTop,
		MarginRight:               options.MarginRight,
		MarginBottom:              options.MarginBottom,
		MarginLeft:                options.MarginLeft,
		ContinuedHeaderAllowance:  options.ContinuedHeaderAllowance,
		ContainerPaddingAllowance: options.ContainerPaddingAllowance,
	})

	rasterizer := &rasterize.PDF{
		Fonts:    fonts,
		Loader:   loader,
		PageSize: pageSize,
		Margins:  margins,
		Metadata: pdf.RenderOptions{
			Title:    options.Title,
			Author:   options.Author,
			Subject:  options.Subject,
			Keywords: options.Keywords,
			Creator:  producer,
			Producer: producer,
		},
		Logger:         logging.NewComponentLogger(logger, "rasterize"),
		DebugDrawBoxes: options.DebugDrawBoxes,
	}

	sequencer := &sequence.Sequencer{
		Surface: &measure.LayoutSurface{
			Fonts:  fonts,
			Loader: loader,
			Width:  options.PageWidth,
			Logger: logging.NewComponentLogger(logger, "measure"),
		},
		Rasterizer: rasterizer,
		Ready:      sequence.ResourcesReady(loader),
		Engine:     engine,
		Composer:   composer,
		Logger:     logging.NewComponentLogger(logger, "sequence"),
		Timeout:    options.Timeout,
	}

	c := &Converter{
		options:    options,
		logger:     logger,
		fonts:      fonts,
		loader:     loader,
		composer:   composer,
		sequencer:  sequencer,
		rasterizer: rasterizer,
		assembler: &book.Assembler{
			Recipes:     sequencer,
			Composer:    composer,
			Rasterizer:  rasterizer,
			Concurrency: options.Concurrency,
			Logger:      logging.NewComponentLogger(logger, "book"),
		},
		markdown: &export.Markdown{Composer: composer},
	}
	if options.CacheDir != "" {
		c.cache = artifacts.New(options.CacheDir)
	}
	if options.StorePath != "" {
		if c.store, err = store.Open(options.StorePath); err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
	}
	return c, nil
}

// Close releases the store.
func (c *Converter) Close() error {
	return c.store.Close()
}

// Options returns the converter's options.
func (c *Converter) Options() Options {
	return c.options
}

// Cache returns the per-video artifact cache, or nil.
func (c *Converter) Cache() *artifacts.Cache {
	return c.cache
}

// Store returns the rendered-document store, or nil.
func (c *Converter) Store() *store.Store {
	return c.store
}

// RenderRecipe renders one recipe to PDF.
func (c *Converter) RenderRecipe(ctx context.Context, r *recipe.Recipe) (*sequence.Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out, err := c.sequencer.Render(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to render recipe %q: %w", r.Title, err)
	}
	return out, nil
}

// RenderRecipeTo renders one recipe and writes the PDF to w.
func (c *Converter) RenderRecipeTo(ctx context.Context, r *recipe.Recipe, w io.Writer) error {
	out, err := c.RenderRecipe(ctx, r)
	if err != nil {
		return err
	}
	if _, err := w.Write(out.PDF); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// PlanRecipe measures and splits a recipe without rasterizing it.
func (c *Converter) PlanRecipe(ctx context.Context, r *recipe.Recipe) (*sequence.Plan, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	plan, err := c.sequencer.Plan(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to plan recipe %q: %w", r.Title, err)
	}
	return plan, nil
}

// RenderBook assembles a cookbook volume.
func (c *Converter) RenderBook(ctx context.Context, b book.Book) (*book.Result, error) {
	out, err := c.assembler.Assemble(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to render book %q: %w", b.Name, err)
	}
	return out, nil
}

// ExportMarkdown renders a recipe as Markdown.
func (c *Converter) ExportMarkdown(r *recipe.Recipe) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	return c.markdown.Recipe(r)
}

// PreviewPNG renders one page of a recipe's final layout as PNG. Page is
// 1-based and counts the hero page when there is one.
func (c *Converter) PreviewPNG(ctx context.Context, r *recipe.Recipe, page int, w io.Writer) error {
	plan, err := c.PlanRecipe(ctx, r)
	if err != nil {
		return err
	}
	markup, err := c.composer.Final(r, plan.Split, plan.Continuation)
	if err != nil {
		return fmt.Errorf("failed to compose recipe: %w", err)
	}
	pages, err := c.rasterizer.Pages(ctx, markup)
	if err != nil {
		return fmt.Errorf("failed to lay out recipe: %w", err)
	}
	if page < 1 || page > len(pages) {
		return fmt.Errorf("page %d out of range 1..%d", page, len(pages))
	}

	renderer := png.NewRenderer(c.fonts, c.loader)
	renderer.Logger = logging.NewComponentLogger(c.logger, "preview")
	renderer.DebugDrawBoxes = c.options.DebugDrawBoxes
	if c.options.DPI > 0 {
		renderer.Scale = c.options.DPI / 72
	}
	return renderer.Render(pages[page-1], w)
}

// RenderOrLoad returns the stored PDF for key, rendering and storing it when
// missing, expired or force is set. The boolean reports a store hit. Without
// a store every call renders.
func (c *Converter) RenderOrLoad(ctx context.Context, key string, r *recipe.Recipe, force bool) ([]byte, bool, error) {
	return c.renderOrLoad(ctx, recipePrefix+key, force, func() ([]byte, error) {
		out, err := c.RenderRecipe(ctx, r)
		if err != nil {
			return nil, err
		}
		return out.PDF, nil
	})
}

// RenderBookOrLoad is RenderOrLoad for a whole volume.
func (c *Converter) RenderBookOrLoad(ctx context.Context, key string, b book.Book, force bool) ([]byte, bool, error) {
	return c.renderOrLoad(ctx, bookPrefix+key, force, func() ([]byte, error) {
		out, err := c.RenderBook(ctx, b)
		if err != nil {
			return nil, err
		}
		return out.PDF, nil
	})
}

func (c *Converter) renderOrLoad(ctx context.Context, key string, force bool, render func() ([]byte, error)) ([]byte, bool, error) {
	logger := c.logger.With(logging.String("key", key))
	if c.store != nil && !force {
		a, err := c.store.Get(ctx, key)
		switch {
		case err == nil:
			logger.Debug("store hit", logging.String(logging.FieldEventType, "cache_hit"))
			return a.Data, true, nil
		case !errors.Is(err, store.ErrNotFound):
			logger.Warn("store read failed", logging.Error(err))
		}
	}

	data, err := render()
	if err != nil {
		return nil, false, err
	}
	if c.store != nil {
		if err := c.store.Put(ctx, key, data, contentPDF, c.options.CacheTTL); err != nil {
			logger.Warn("store write failed", logging.Error(err))
		}
	}
	return data, false, nil
}

// LoadVideoRecipe assembles a recipe from the artifact cache.
func (c *Converter) LoadVideoRecipe(ctx context.Context, videoID string) (*recipe.Recipe, error) {
	if c.cache == nil {
		return nil, ErrNoCache
	}
	return c.cache.LoadRecipe(ctx, videoID)
}

// RenderVideo renders the cached recipe of a video through the store.
func (c *Converter) RenderVideo(ctx context.Context, videoID string, force bool) ([]byte, bool, error) {
	r, err := c.LoadVideoRecipe(ctx, videoID)
	if err != nil {
		return nil, false, err
	}
	return c.RenderOrLoad(ctx, videoID, r, force)
}

// ClearVideo removes one step of a video's artifacts, or all of them when
// step is empty, and drops the stored PDF rendered from them.
func (c *Converter) ClearVideo(ctx context.Context, videoID, step string) error {
	if c.cache == nil {
		return ErrNoCache
	}
	var err error
	if step == "" {
		err = c.cache.Clear(ctx, videoID)
	} else {
		err = c.cache.ClearStep(ctx, videoID, step)
	}
	if err != nil {
		return err
	}
	if c.store != nil {
		return c.store.Delete(ctx, recipePrefix+videoID)
	}
	return nil
}

// ConvertBytes renders a recipe file's contents to PDF bytes.
func (c *Converter) ConvertBytes(ctx context.Context, data []byte, format recipe.Format) ([]byte, error) {
	r, err := recipe.Parse(data, format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.RenderRecipeTo(ctx, r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertFile renders a recipe file to a PDF file.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) error {
	r, err := recipe.Load(inputPath)
	if err != nil {
		return err
	}
	out, err := c.RenderRecipe(ctx, r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, out.PDF, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// PurgeStore removes expired documents from the store.
func (c *Converter) PurgeStore(ctx context.Context) (int64, error) {
	if c.store == nil {
		return 0, nil
	}
	start := time.Now()
	n, err := c.store.Purge(ctx)
	if err == nil {
		c.logger.Debug("store purged", logging.Int("removed", int(n)), logging.Duration("elapsed", time.Since(start)))
	}
	return n, err
}
