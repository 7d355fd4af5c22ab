// Package book assembles rendered recipes into one cookbook volume: front
// cover, table of contents, the recipes in the order given and a back
// cover.
package book

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/eladw917/cookbook-creator/internal/compose"
	"github.com/eladw917/cookbook-creator/internal/logging"
	"github.com/eladw917/cookbook-creator/internal/rasterize"
	"github.com/eladw917/cookbook-creator/internal/recipe"
	"github.com/eladw917/cookbook-creator/internal/sequence"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"
)

// Recipe count bounds of a volume.
const (
	MinRecipes = 5
	MaxRecipes = 20
)

// ErrRecipeCount is returned for books outside MinRecipes..MaxRecipes.
var ErrRecipeCount = errors.New("book must contain between 5 and 20 recipes")

// Book is a named, ordered selection of recipes.
type Book struct {
	Name    string
	Author  string
	Recipes []*recipe.Recipe
}

// Validate checks the recipe count and that the book has a name.
func (b *Book) Validate() error {
	if n := len(b.Recipes); n < MinRecipes || n > MaxRecipes {
		return fmt.Errorf("%w: got %d", ErrRecipeCount, n)
	}
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("book has no name")
	}
	for i, r := range b.Recipes {
		if r == nil {
			return fmt.Errorf("recipe %d is nil", i+1)
		}
	}
	return nil
}

// RecipeRenderer renders a single recipe. *sequence.Sequencer implements it.
type RecipeRenderer interface {
	Render(ctx context.Context, r *recipe.Recipe) (*sequence.Result, error)
}

// Assembler builds volumes. It holds no per-book state.
type Assembler struct {
	Recipes    RecipeRenderer
	Composer   *compose.Composer
	Rasterizer rasterize.Rasterizer
	// Concurrency bounds parallel recipe renders; values below 1 mean 1.
	Concurrency int
	Logger      *slog.Logger
}

// Section is one part of the assembled volume.
type Section struct {
	Title string `json:"title"`
	// Start is the 1-based page the section starts on.
	Start int `json:"start_page"`
	Pages int `json:"pages"`
}

// Result is an assembled volume.
type Result struct {
	PDF      []byte
	Pages    int
	Sections []Section
}

// Assemble renders every recipe and merges the volume. Any recipe failure
// fails the whole book.
func (a *Assembler) Assemble(ctx context.Context, b Book) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	logger := a.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String("book", b.Name))
	start := time.Now()

	recipes, err := a.renderRecipes(ctx, b.Recipes)
	if err != nil {
		return nil, err
	}
	counts := make([]int, len(recipes))
	for i, pdf := range recipes {
		if counts[i], err = PageCount(pdf); err != nil {
			return nil, fmt.Errorf("count pages of %q: %w", b.Recipes[i].Title, err)
		}
	}

	info := compose.BookInfo{Name: b.Name, Author: b.Author, RecipeCount: len(b.Recipes)}
	cover, coverPages, err := a.page(ctx, func() (string, error) { return a.Composer.Cover(info) })
	if err != nil {
		return nil, fmt.Errorf("render cover: %w", err)
	}

	// The contents page count feeds back into the start pages it lists.
	tocPages := 1
	var toc []byte
	for attempt := 0; attempt < 3; attempt++ {
		entries := tocEntries(b.Recipes, counts, coverPages+tocPages+1)
		var n int
		toc, n, err = a.page(ctx, func() (string, error) { return a.Composer.TableOfContents(info, entries) })
		if err != nil {
			return nil, fmt.Errorf("render table of contents: %w", err)
		}
		if n == tocPages {
			break
		}
		tocPages = n
	}

	back, backPages, err := a.page(ctx, func() (string, error) { return a.Composer.BackCover(info) })
	if err != nil {
		return nil, fmt.Errorf("render back cover: %w", err)
	}

	parts := make([][]byte, 0, len(recipes)+3)
	parts = append(parts, cover, toc)
	parts = append(parts, recipes...)
	parts = append(parts, back)
	merged, err := Merge(parts)
	if err != nil {
		return nil, err
	}

	sections := []Section{{Title: "Cover", Start: 1, Pages: coverPages}, {Title: "Contents", Start: coverPages + 1, Pages: tocPages}}
	page := coverPages + tocPages + 1
	for i, r := range b.Recipes {
		sections = append(sections, Section{Title: r.Title, Start: page, Pages: counts[i]})
		page += counts[i]
	}
	sections = append(sections, Section{Title: "Back cover", Start: page, Pages: backPages})

	res := &Result{PDF: merged, Pages: page + backPages - 1, Sections: sections}
	logger.Info("book assembled",
		logging.Int("recipes", len(b.Recipes)),
		logging.Int("pages", res.Pages),
		logging.Int("bytes", len(merged)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (a *Assembler) renderRecipes(ctx context.Context, recipes []*recipe.Recipe) ([][]byte, error) {
	out := make([][]byte, len(recipes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.Concurrency))
	for i, r := range recipes {
		g.Go(func() error {
			res, err := a.Recipes.Render(gctx, r)
			if err != nil {
				return fmt.Errorf("render recipe %d %q: %w", i+1, r.Title, err)
			}
			out[i] = res.PDF
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Assembler) page(ctx context.Context, markup func() (string, error)) ([]byte, int, error) {
	m, err := markup()
	if err != nil {
		return nil, 0, err
	}
	pdf, err := a.Rasterizer.Rasterize(ctx, m)
	if err != nil {
		return nil, 0, err
	}
	n, err := PageCount(pdf)
	if err != nil {
		return nil, 0, err
	}
	return pdf, n, nil
}

func tocEntries(recipes []*recipe.Recipe, counts []int, first int) []compose.TOCEntry {
	entries := make([]compose.TOCEntry, len(recipes))
	page := first
	for i, r := range recipes {
		entries[i] = compose.TOCEntry{Title: r.Title, Page: page}
		page += counts[i]
	}
	return entries
}

// PageCount returns the number of pages of a PDF document.
func PageCount(pdf []byte) (int, error) {
	ctx, err := pdfapi.ReadValidateAndOptimize(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	if ctx.PageCount == 0 {
		return 0, errors.New("pdf has no pages")
	}
	return ctx.PageCount, nil
}

// Merge concatenates PDF documents in order.
func Merge(parts [][]byte) ([]byte, error) {
	if len(parts) == 0 {
		return nil, errors.New("merge: no documents")
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	readers := make([]io.ReadSeeker, len(parts))
	for i, data := range parts {
		readers[i] = bytes.NewReader(data)
	}
	var out bytes.Buffer
	if err := pdfapi.MergeRaw(readers, &out, false, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("merge pdfs: %w", err)
	}
	return out.Bytes(), nil
}
