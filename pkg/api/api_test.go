package api

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/eladw917/cookbook-creator/internal/artifacts"
	"github.com/eladw917/cookbook-creator/internal/book"
	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecipe(ingredients, steps int) *recipe.Recipe {
	r := &recipe.Recipe{
		Title:       "Weeknight Dal",
		Channel:     "Test Kitchen",
		Description: "Red lentils simmered with spices.",
		Servings:    "Serves: 4",
		PrepTime:    "10 minutes",
		CookTime:    "25 minutes",
	}
	for i := 0; i < ingredients; i++ {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{Quantity: "1", Unit: "cup", Name: fmt.Sprintf("ingredient %d", i+1)})
	}
	for i := 0; i < steps; i++ {
		r.Instructions = append(r.Instructions, recipe.Instruction{Step: i + 1, Text: fmt.Sprintf("Do step %d and stir well.", i+1)})
	}
	return r
}

func newConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	c, err := New(append([]Option{WithTimeout(30 * time.Second)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewRejectsEmptyPage(t *testing.T) {
	_, err := New(WithPageSize(0, 100))
	assert.ErrorIs(t, err, pagination.ErrLayoutConfiguration)
}

func TestRenderRecipeProducesPDF(t *testing.T) {
	c := newConverter(t)
	out, err := c.RenderRecipe(context.Background(), sampleRecipe(6, 4))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out.PDF, []byte("%PDF")))
	assert.False(t, out.Plan.Split.IngredientsOverflow)
	assert.Len(t, out.Plan.Split.FirstPageInstructions, 4)
	assert.Equal(t, 1, out.Plan.Pages())
}

func TestRenderRecipeRejectsInvalid(t *testing.T) {
	c := newConverter(t)
	_, err := c.RenderRecipe(context.Background(), &recipe.Recipe{})
	assert.ErrorIs(t, err, recipe.ErrInvalid)
}

func TestPlanRecipeLongInstructionsContinue(t *testing.T) {
	c := newConverter(t)
	plan, err := c.PlanRecipe(context.Background(), sampleRecipe(3, 120))
	require.NoError(t, err)

	assert.NotEmpty(t, plan.Split.OverflowInstructions)
	assert.Greater(t, plan.Pages(), 1)
	total := len(plan.Split.FirstPageInstructions)
	for _, page := range plan.Continuation {
		total += len(page)
	}
	assert.Equal(t, 120, total)
}

func TestRenderOrLoadUsesStore(t *testing.T) {
	c := newConverter(t, WithStore(filepath.Join(t.TempDir(), "store.db"), time.Hour))
	ctx := context.Background()
	r := sampleRecipe(2, 2)

	first, cached, err := c.RenderOrLoad(ctx, "dal", r, false)
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := c.RenderOrLoad(ctx, "dal", r, false)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first, second)

	_, cached, err = c.RenderOrLoad(ctx, "dal", r, true)
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestExportMarkdown(t *testing.T) {
	c := newConverter(t)
	md, err := c.ExportMarkdown(sampleRecipe(1, 1))
	require.NoError(t, err)
	assert.Contains(t, md, "# Weeknight Dal")
	assert.Contains(t, md, "Do step 1 and stir well.")
}

func TestPreviewPNG(t *testing.T) {
	c := newConverter(t, WithDPI(72))
	var buf bytes.Buffer
	require.NoError(t, c.PreviewPNG(context.Background(), sampleRecipe(2, 2), 1, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))

	err := c.PreviewPNG(context.Background(), sampleRecipe(2, 2), 5, &buf)
	assert.Error(t, err)
}

func TestLoadVideoRecipeWithoutCache(t *testing.T) {
	c := newConverter(t)
	_, err := c.LoadVideoRecipe(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNoCache)
}

func TestRenderVideoAndClear(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	cache := artifacts.New(filepath.Join(dir, "videos"))
	require.NoError(t, cache.SaveStep(ctx, "vid1", artifacts.StepRecipe, map[string]any{
		"title":        "Flatbread",
		"ingredients":  []map[string]string{{"quantity": "2", "unit": "cups", "ingredient": "flour"}},
		"instructions": []map[string]any{{"step_number": 1, "instruction": "Knead."}},
	}))

	c := newConverter(t,
		WithCacheDir(cache.Root()),
		WithStore(filepath.Join(dir, "store.db"), time.Hour),
	)

	pdf, cached, err := c.RenderVideo(ctx, "vid1", false)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	_, cached, err = c.RenderVideo(ctx, "vid1", false)
	require.NoError(t, err)
	assert.True(t, cached)

	require.NoError(t, c.ClearVideo(ctx, "vid1", ""))
	_, err = c.Store().Get(ctx, recipePrefix+"vid1")
	assert.Error(t, err)
	_, _, err = c.RenderVideo(ctx, "vid1", false)
	assert.ErrorIs(t, err, artifacts.ErrNotFound)
}

func TestClearVideoWithoutCache(t *testing.T) {
	c := newConverter(t)
	assert.ErrorIs(t, c.ClearVideo(context.Background(), "vid", ""), ErrNoCache)
}

func TestRenderBook(t *testing.T) {
	c := newConverter(t, WithConcurrency(2))
	b := book.Book{Name: "Weeknights", Author: "Test Kitchen"}
	for i := 0; i < 5; i++ {
		r := sampleRecipe(3, 3)
		r.Title = fmt.Sprintf("Dish %d", i+1)
		b.Recipes = append(b.Recipes, r)
	}

	out, err := c.RenderBook(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.PDF, []byte("%PDF")))
	assert.GreaterOrEqual(t, out.Pages, 8)
	require.Len(t, out.Sections, 8)
	assert.Equal(t, "Dish 1", out.Sections[2].Title)

	_, err = c.RenderBook(context.Background(), book.Book{Name: "Short", Recipes: b.Recipes[:2]})
	assert.ErrorIs(t, err, book.ErrRecipeCount)
}

func TestConvertBytes(t *testing.T) {
	c := newConverter(t)
	data := []byte(`{"title": "Toast", "ingredients": [{"quantity": "1", "ingredient": "bread"}], "instructions": [{"step_number": 1, "instruction": "Toast it."}]}`)
	pdf, err := c.ConvertBytes(context.Background(), data, recipe.FormatJSON)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestPurgeStoreWithoutStore(t *testing.T) {
	c := newConverter(t)
	n, err := c.PurgeStore(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
