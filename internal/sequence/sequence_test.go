package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eladw917/cookbook-creator/internal/compose"
	"github.com/eladw917/cookbook-creator/internal/measure"
	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/recipe"
)

// fakeSurface reports fixed heights for every marked block in the markup.
type fakeSurface struct {
	ingredient  float64
	instruction float64
	dropLast    bool
	block       bool
	err         error
}

func (f *fakeSurface) Measure(ctx context.Context, markup string) (*measure.Result, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	res := &measure.Result{}
	doc.Find("[" + compose.AttrBlock + "]").Each(func(_ int, s *goquery.Selection) {
		b := measure.BlockHeight{
			ID:     s.AttrOr(compose.AttrBlock, ""),
			Kind:   s.AttrOr(compose.AttrKind, ""),
			Column: s.AttrOr(compose.AttrColumn, ""),
			Height: 20,
		}
		fmt.Sscan(s.AttrOr(compose.AttrIndex, "0"), &b.Index)
		if b.Kind == compose.KindItem {
			b.Height = f.ingredient
			if b.Column == compose.ColumnInstructions {
				b.Height = f.instruction
			}
		}
		res.Blocks = append(res.Blocks, b)
	})
	if f.dropLast {
		res.Blocks = res.Blocks[:len(res.Blocks)-1]
	}
	return res, nil
}

type fakeRasterizer struct {
	mu     sync.Mutex
	markup []string
	err    error
}

func (f *fakeRasterizer) Rasterize(_ context.Context, markup string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markup = append(f.markup, markup)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

func newSequencer(t *testing.T, surface measure.Surface, rast *fakeRasterizer) *Sequencer {
	t.Helper()
	c, err := compose.New(compose.DefaultGeometry())
	require.NoError(t, err)
	return &Sequencer{
		Surface:    surface,
		Rasterizer: rast,
		Engine:     pagination.NewEngine(),
		Composer:   c,
	}
}

func sampleRecipe(ingredients, steps int) *recipe.Recipe {
	r := &recipe.Recipe{Title: "Stew"}
	for i := 0; i < ingredients; i++ {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{Quantity: "1", Name: fmt.Sprintf("item %d", i)})
	}
	for i := 0; i < steps; i++ {
		r.Instructions = append(r.Instructions, recipe.Instruction{Step: i + 1, Text: fmt.Sprintf("step %d", i+1)})
	}
	return r
}

func TestRenderSinglePage(t *testing.T) {
	rast := &fakeRasterizer{}
	s := newSequencer(t, &fakeSurface{ingredient: 14, instruction: 30}, rast)

	var readied []string
	s.Ready = func(_ context.Context, markup string) error {
		readied = append(readied, markup)
		return nil
	}

	res, err := s.Render(context.Background(), sampleRecipe(6, 5))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 fake"), res.PDF)
	assert.Equal(t, 1, res.Plan.Pages())
	assert.False(t, res.Plan.Split.IngredientsOverflow)
	assert.Len(t, res.Plan.Split.FirstPageInstructions, 5)

	require.Len(t, readied, 2)
	assert.Contains(t, readied[0], "recipe measure")
	require.Len(t, rast.markup, 1)
	assert.Equal(t, readied[1], rast.markup[0])
}

func TestRenderAddsContinuationPages(t *testing.T) {
	rast := &fakeRasterizer{}
	s := newSequencer(t, &fakeSurface{ingredient: 14, instruction: 100}, rast)

	res, err := s.Render(context.Background(), sampleRecipe(4, 20))
	require.NoError(t, err)

	overflow := res.Plan.Split.OverflowInstructions
	require.NotEmpty(t, overflow)
	var continued []int
	for _, page := range res.Plan.Continuation {
		require.NotEmpty(t, page)
		continued = append(continued, page...)
	}
	assert.Equal(t, overflow, continued)
	assert.Equal(t, 1+len(res.Plan.Continuation), res.Plan.Pages())
	assert.Equal(t, len(res.Plan.Continuation), strings.Count(rast.markup[0], "recipe continuation"))
}

func TestPlanDoesNotRasterize(t *testing.T) {
	rast := &fakeRasterizer{}
	s := newSequencer(t, &fakeSurface{ingredient: 14, instruction: 30}, rast)

	plan, err := s.Plan(context.Background(), sampleRecipe(3, 3))
	require.NoError(t, err)
	assert.Equal(t, 841.89, plan.Input.PageHeight)
	assert.Len(t, plan.Input.IngredientBlocks, 3)
	assert.Empty(t, rast.markup)
}

func TestRenderFailures(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name    string
		surface *fakeSurface
		rast    *fakeRasterizer
		ready   ReadyFunc
		want    error
	}{
		{"measure", &fakeSurface{err: boom}, &fakeRasterizer{}, nil, ErrMeasurement},
		{"ready", &fakeSurface{ingredient: 10, instruction: 10}, &fakeRasterizer{}, func(context.Context, string) error { return boom }, ErrNotReady},
		{"rasterize", &fakeSurface{ingredient: 10, instruction: 10}, &fakeRasterizer{err: boom}, nil, ErrRasterize},
		{"mismatch", &fakeSurface{ingredient: 10, instruction: 10, dropLast: true}, &fakeRasterizer{}, nil, pagination.ErrMismatchedInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSequencer(t, tc.surface, tc.rast)
			s.Ready = tc.ready
			res, err := s.Render(context.Background(), sampleRecipe(3, 3))
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, res)
		})
	}
}

func TestRenderTimeout(t *testing.T) {
	rast := &fakeRasterizer{}
	s := newSequencer(t, &fakeSurface{block: true}, rast)
	s.Timeout = 20 * time.Millisecond

	_, err := s.Render(context.Background(), sampleRecipe(1, 1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, rast.markup)
}

func TestReferences(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head>
<link rel="stylesheet" href="extra.css"><link rel="icon" href="fav.ico">
</head><body><img src="a.png"><img src=" a.png "><img src="b.jpg"><img></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, []string{"extra.css", "a.png", "b.jpg"}, References(doc))
}
