package png_test

import (
	"bytes"
	"context"
	"image"
	stdpng "image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/rasterize"
	"github.com/eladw917/cookbook-creator/internal/render/png"
	"github.com/eladw917/cookbook-creator/internal/res"
	"github.com/eladw917/cookbook-creator/internal/text"
)

const page = `<!DOCTYPE html><html><head><style>
section.page { width: 200px; height: 100px; background-color: #cc0000; }
p { color: #ffffff; text-decoration: underline; }
li { list-style-type: decimal; }
</style></head><body>
<section class="page"><p>Shakshuka</p><ol><li>Simmer</li></ol>
<img src="data:image/svg+xml,&lt;svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 4 4'&gt;&lt;rect width='4' height='4' fill='blue'/&gt;&lt;/svg&gt;" style="width: 20px; height: 20px; object-fit: cover;">
</section>
</body></html>`

func layoutPage(t *testing.T) (*text.Registry, *res.Loader, *pagination.Page) {
	t.Helper()
	fonts, err := text.NewRegistry(nil)
	require.NoError(t, err)
	loader := res.NewLoader(t.TempDir())
	r := &rasterize.PDF{Fonts: fonts, Loader: loader, PageSize: pagination.PageSize{Width: 200, Height: 100}}
	pages, err := r.Pages(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	return fonts, loader, pages[0]
}

func TestRenderScalesPage(t *testing.T) {
	fonts, loader, p := layoutPage(t)
	renderer := png.NewRenderer(fonts, loader)
	renderer.DebugDrawBoxes = true

	var buf bytes.Buffer
	require.NoError(t, renderer.Render(p, &buf))

	img, err := stdpng.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 200), img.Bounds())

	red := 0
	for y := 0; y < 200; y += 4 {
		for x := 0; x < 400; x += 4 {
			r, g, b, _ := img.At(x, y).RGBA()
			if r>>8 > 180 && g>>8 < 40 && b>>8 < 40 {
				red++
			}
		}
	}
	assert.Greater(t, red, 100)
}

func TestRenderCustomScale(t *testing.T) {
	fonts, loader, p := layoutPage(t)
	renderer := png.NewRenderer(fonts, loader)
	renderer.Scale = 1

	var buf bytes.Buffer
	require.NoError(t, renderer.Render(p, &buf))
	cfg, err := stdpng.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestRenderRejectsEmptyPage(t *testing.T) {
	renderer := png.NewRenderer(nil, nil)
	assert.Error(t, renderer.Render(nil, &bytes.Buffer{}))
	assert.Error(t, renderer.Render(&pagination.Page{}, &bytes.Buffer{}))
}
