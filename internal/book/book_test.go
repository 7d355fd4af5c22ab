package book

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/eladw917/cookbook-creator/internal/compose"
	"github.com/eladw917/cookbook-creator/internal/recipe"
	"github.com/eladw917/cookbook-creator/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankPDF(t testing.TB, pages int) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.Text(40, 40, fmt.Sprintf("page %d", i+1))
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

type fakeRecipes struct {
	t       testing.TB
	pages   map[string]int
	fail    string
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (f *fakeRecipes) Render(_ context.Context, r *recipe.Recipe) (*sequence.Result, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if r.Title == f.fail {
		return nil, errors.New("boom")
	}
	pages := f.pages[r.Title]
	if pages == 0 {
		pages = 1
	}
	return &sequence.Result{PDF: blankPDF(f.t, pages)}, nil
}

type fakeRasterizer struct {
	t      testing.TB
	mu     sync.Mutex
	markup []string
}

func (f *fakeRasterizer) Rasterize(_ context.Context, markup string) ([]byte, error) {
	f.mu.Lock()
	f.markup = append(f.markup, markup)
	f.mu.Unlock()
	return blankPDF(f.t, 1), nil
}

func recipes(n int) []*recipe.Recipe {
	out := make([]*recipe.Recipe, n)
	for i := range out {
		out[i] = &recipe.Recipe{Title: fmt.Sprintf("Recipe %d", i+1)}
	}
	return out
}

func newAssembler(t *testing.T, rr RecipeRenderer, rast *fakeRasterizer) *Assembler {
	c, err := compose.New(compose.DefaultGeometry())
	require.NoError(t, err)
	return &Assembler{Recipes: rr, Composer: c, Rasterizer: rast, Concurrency: 2}
}

func TestValidateRecipeCount(t *testing.T) {
	for _, n := range []int{0, 4, 21} {
		b := Book{Name: "Vol", Recipes: recipes(n)}
		assert.ErrorIs(t, b.Validate(), ErrRecipeCount, "n=%d", n)
	}
	for _, n := range []int{5, 20} {
		b := Book{Name: "Vol", Recipes: recipes(n)}
		assert.NoError(t, b.Validate(), "n=%d", n)
	}
}

func TestAssembleOrdersSectionsAndNumbersPages(t *testing.T) {
	rr := &fakeRecipes{t: t, pages: map[string]int{"Recipe 2": 3, "Recipe 4": 2}}
	rast := &fakeRasterizer{t: t}
	a := newAssembler(t, rr, rast)

	res, err := a.Assemble(context.Background(), Book{Name: "Weeknights", Author: "Dana", Recipes: recipes(5)})
	require.NoError(t, err)

	// cover + contents + 1+3+1+2+1 + back cover
	assert.Equal(t, 11, res.Pages)
	n, err := PageCount(res.PDF)
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	require.Len(t, res.Sections, 8)
	assert.Equal(t, Section{Title: "Recipe 1", Start: 3, Pages: 1}, res.Sections[2])
	assert.Equal(t, Section{Title: "Recipe 2", Start: 4, Pages: 3}, res.Sections[3])
	assert.Equal(t, Section{Title: "Recipe 5", Start: 10, Pages: 1}, res.Sections[6])
	assert.Equal(t, Section{Title: "Back cover", Start: 11, Pages: 1}, res.Sections[7])

	var toc string
	for _, m := range rast.markup {
		if strings.Contains(m, "Recipe 5") {
			toc = m
		}
	}
	require.NotEmpty(t, toc)
	assert.Less(t, strings.Index(toc, "Recipe 1"), strings.Index(toc, "Recipe 2"))
	assert.LessOrEqual(t, int(rr.maxSeen.Load()), 2)
}

func TestAssembleFailsOnRecipeFailure(t *testing.T) {
	rr := &fakeRecipes{t: t, fail: "Recipe 3"}
	a := newAssembler(t, rr, &fakeRasterizer{t: t})

	_, err := a.Assemble(context.Background(), Book{Name: "Vol", Recipes: recipes(6)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Recipe 3")
}

func TestMergeSingleDocumentIsUnchanged(t *testing.T) {
	pdf := blankPDF(t, 2)
	out, err := Merge([][]byte{pdf})
	require.NoError(t, err)
	assert.Equal(t, pdf, out)

	_, err = Merge(nil)
	assert.Error(t, err)
}
