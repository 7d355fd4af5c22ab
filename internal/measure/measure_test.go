package measure

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eladw917/cookbook-creator/internal/compose"
	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/recipe"
	"github.com/eladw917/cookbook-creator/internal/text"
)

func TestResultMeasurements(t *testing.T) {
	res := &Result{Blocks: []BlockHeight{
		{ID: "title", Kind: compose.KindTitle, Height: 40},
		{ID: "meta", Kind: compose.KindMeta, Height: 12},
		{ID: compose.BlockIngredientsHeader, Kind: compose.KindHeader, Column: compose.ColumnIngredients, Height: 20},
		{ID: "ingredient-0", Kind: compose.KindSubheader, Column: compose.ColumnIngredients, Index: 0, Height: 16},
		{ID: "ingredient-1", Kind: compose.KindItem, Column: compose.ColumnIngredients, Index: 1, Height: 14},
		{ID: compose.BlockInstructionsHeader, Kind: compose.KindHeader, Column: compose.ColumnInstructions, Height: 22},
		{ID: "instruction-0", Kind: compose.KindItem, Column: compose.ColumnInstructions, Height: 30},
	}}

	m := res.Measurements()
	assert.Equal(t, 52.0, m.Reserved)
	assert.Equal(t, 20.0, m.IngredientHeader)
	assert.Equal(t, 22.0, m.InstructionHeader)
	assert.Equal(t, []pagination.IngredientBlock{{Height: 16, IsSubheader: true}, {Height: 14}}, m.Ingredients)
	assert.Equal(t, []float64{30}, m.Instructions)
	assert.Zero(t, res.Header("missing"))
}

func newSurface(t *testing.T) (*LayoutSurface, *compose.Composer) {
	t.Helper()
	fonts, err := text.NewRegistry(nil)
	require.NoError(t, err)
	geometry := compose.DefaultGeometry()
	c, err := compose.New(geometry)
	require.NoError(t, err)
	return &LayoutSurface{Fonts: fonts, Width: geometry.Page.Width}, c
}

func TestLayoutSurfaceMeasuresEveryBlock(t *testing.T) {
	s, c := newSurface(t)
	r := &recipe.Recipe{
		Title: "Lentil Soup",
		Ingredients: []recipe.Ingredient{
			{Quantity: "1", Unit: "cup", Name: "lentils", Purpose: "soup"},
			{Quantity: "1", Name: "carrot", Purpose: "soup"},
			{Name: "yogurt", Purpose: "to serve"},
		},
		Instructions: []recipe.Instruction{
			{Step: 1, Text: "Rinse."},
			{Step: 2, Text: strings.Repeat("Simmer gently and stir from time to time. ", 12)},
		},
	}
	markup, err := c.Measure(r)
	require.NoError(t, err)

	res, err := s.Measure(context.Background(), markup)
	require.NoError(t, err)

	m := res.Measurements()
	require.Len(t, m.Ingredients, 5)
	assert.True(t, m.Ingredients[0].IsSubheader)
	assert.True(t, m.Ingredients[3].IsSubheader)
	require.Len(t, m.Instructions, 2)
	for _, b := range res.Blocks {
		if b.Column != "" {
			assert.Greater(t, b.Height, 0.0, b.ID)
		}
	}
	assert.Greater(t, m.Instructions[1], m.Instructions[0])
	assert.Greater(t, m.Reserved, 0.0)
	assert.Greater(t, m.IngredientHeader, 0.0)
}

func TestLayoutSurfaceHonorsCancellation(t *testing.T) {
	s, _ := newSurface(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Measure(ctx, "<p>x</p>")
	assert.ErrorIs(t, err, context.Canceled)
}
