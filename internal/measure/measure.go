// Package measure reports the rendered heights of the content blocks in page
// markup.
package measure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/eladw917/cookbook-creator/internal/compose"
	"github.com/eladw917/cookbook-creator/internal/layout"
	"github.com/eladw917/cookbook-creator/internal/logging"
	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/parser/html"
	"github.com/eladw917/cookbook-creator/internal/res"
	"github.com/eladw917/cookbook-creator/internal/text"
)

// ErrMissingBlock is returned when a marked block produced no box.
var ErrMissingBlock = errors.New("block not laid out")

// Surface lays out markup and reports block heights.
type Surface interface {
	Measure(ctx context.Context, markup string) (*Result, error)
}

// BlockHeight is the measured margin-box height of one marked block.
type BlockHeight struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Column string  `json:"column,omitempty"`
	Index  int     `json:"index"`
	Height float64 `json:"height_px"`
}

// Result holds every marked block in document order.
type Result struct {
	Blocks []BlockHeight `json:"blocks"`
}

// Ingredients returns the ingredient column blocks in index order.
func (r *Result) Ingredients() []pagination.IngredientBlock {
	var out []pagination.IngredientBlock
	for _, b := range r.column(compose.ColumnIngredients) {
		out = append(out, pagination.IngredientBlock{Height: b.Height, IsSubheader: b.Kind == compose.KindSubheader})
	}
	return out
}

// Instructions returns the instruction heights in index order.
func (r *Result) Instructions() []float64 {
	var out []float64
	for _, b := range r.column(compose.ColumnInstructions) {
		out = append(out, b.Height)
	}
	return out
}

func (r *Result) column(name string) []BlockHeight {
	var out []BlockHeight
	for _, b := range r.Blocks {
		if b.Column != name || b.Kind == compose.KindHeader {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Header returns the height of the block with the given id, or 0.
func (r *Result) Header(id string) float64 {
	for _, b := range r.Blocks {
		if b.ID == id {
			return b.Height
		}
	}
	return 0
}

// Sum adds the heights of every block of a kind.
func (r *Result) Sum(kind string) float64 {
	total := 0.0
	for _, b := range r.Blocks {
		if b.Kind == kind {
			total += b.Height
		}
	}
	return total
}

// Measurements converts the result into pagination input heights. Title
// and meta blocks stacked above the columns become the reserved height.
func (r *Result) Measurements() pagination.Measurements {
	return pagination.Measurements{
		Reserved:          r.Sum(compose.KindTitle) + r.Sum(compose.KindMeta),
		IngredientHeader:  r.Header(compose.BlockIngredientsHeader),
		Ingredients:       r.Ingredients(),
		InstructionHeader: r.Header(compose.BlockInstructionsHeader),
		Instructions:      r.Instructions(),
	}
}

// LayoutSurface measures markup with the native layout engine. Each call
// uses its own engine and metrics, so a LayoutSurface may be shared.
type LayoutSurface struct {
	Fonts  *text.Registry
	Loader *res.Loader
	// Width is the viewport width; page sections set their own width.
	Width  float64
	Logger *slog.Logger
}

// Measure lays out markup with heights uncapped and returns the height of
// every element carrying a data-block attribute, in document order.
func (s *LayoutSurface) Measure(ctx context.Context, markup string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	engine := layout.NewEngine(text.NewMetrics(s.Fonts))
	engine.SetOptions(layout.Options{Width: s.Width, Measure: true})
	engine.SetLogger(logger)
	var sheets layout.StylesheetLoader
	if s.Loader != nil {
		engine.SetImageSizer(s.Loader)
		sheets = s.Loader
	}

	doc, err := engine.LayoutMarkup(markup, sheets)
	if err != nil {
		return nil, fmt.Errorf("layout markup: %w", err)
	}
	if err := engine.Metrics().Err(); err != nil {
		return nil, fmt.Errorf("measure text: %w", err)
	}

	boxes := layout.Index(doc.Root)
	nodes := doc.HTML.Select("[" + compose.AttrBlock + "]")
	result := &Result{Blocks: make([]BlockHeight, 0, len(nodes))}
	for _, n := range nodes {
		id, _ := html.Attr(n, compose.AttrBlock)
		box, ok := boxes[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingBlock, id)
		}
		b := BlockHeight{ID: id, Height: layout.OuterHeight(box)}
		b.Kind, _ = html.Attr(n, compose.AttrKind)
		b.Column, _ = html.Attr(n, compose.AttrColumn)
		if v, ok := html.Attr(n, compose.AttrIndex); ok {
			if b.Index, err = strconv.Atoi(v); err != nil {
				return nil, fmt.Errorf("block %s: bad %s %q", id, compose.AttrIndex, v)
			}
		}
		if math.IsNaN(b.Height) || b.Height < 0 {
			return nil, fmt.Errorf("block %s: invalid height %v", id, b.Height)
		}
		result.Blocks = append(result.Blocks, b)
	}

	logger.Debug("markup measured", logging.Int("blocks", len(result.Blocks)))
	return result, nil
}
