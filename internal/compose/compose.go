// Package compose renders recipes and book pages into page markup. Every
// PDF page is one <section class="page">; measurable blocks carry
// data-block, data-kind, data-column and data-index attributes.
package compose

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/recipe"
)

// Markup attributes and values shared with the measurement surface.
const (
	AttrBlock  = "data-block"
	AttrKind   = "data-kind"
	AttrColumn = "data-column"
	AttrIndex  = "data-index"

	KindItem      = "item"
	KindSubheader = "subheader"
	KindTitle     = "title"
	KindMeta      = "meta"
	KindHeader    = "header"

	ColumnIngredients  = "ingredients"
	ColumnInstructions = "instructions"

	BlockIngredientsHeader  = "ingredients-header"
	BlockInstructionsHeader = "instructions-header"
)

//go:embed templates/cookbook.tmpl templates/cookbook.css
var templateFS embed.FS

// Geometry is the page geometry the markup is composed for. Page sections
// are sized to the page and padded by the margins.
type Geometry struct {
	Page      pagination.PageSize
	Margins   pagination.Margins
	ColumnGap float64
	// LeftColumnRatio is the share of the content width given to the
	// ingredient column.
	LeftColumnRatio float64
}

// DefaultGeometry is A4 with half-inch margins and a 42/58 column split.
func DefaultGeometry() Geometry {
	return Geometry{
		Page:            pagination.PageSizeA4,
		Margins:         pagination.Margins{Top: 36, Right: 36, Bottom: 36, Left: 36},
		ColumnGap:       22,
		LeftColumnRatio: 0.42,
	}
}

// ContentWidth is the page width inside the side margins.
func (g Geometry) ContentWidth() float64 {
	return g.Page.Width - g.Margins.Left - g.Margins.Right
}

// ColumnWidths returns the ingredient and instruction column widths.
func (g Geometry) ColumnWidths() (left, right float64) {
	ratio := g.LeftColumnRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	usable := g.ContentWidth() - g.ColumnGap
	left = usable * ratio
	return left, usable - left
}

// Composer renders page markup. It is immutable after New and safe for
// concurrent use.
type Composer struct {
	geometry Geometry
	heroPage bool
	tmpl     *template.Template
	css      template.CSS
}

// Option configures a Composer.
type Option func(*Composer)

// WithHeroPage adds a full-page hero image page before each recipe page.
func WithHeroPage(enabled bool) Option {
	return func(c *Composer) { c.heroPage = enabled }
}

// New parses the embedded templates for a page geometry.
func New(geometry Geometry, opts ...Option) (*Composer, error) {
	tmpl, err := template.New("cookbook").ParseFS(templateFS, "templates/cookbook.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	base, err := templateFS.ReadFile("templates/cookbook.css")
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}
	m := geometry.Margins
	pageCSS := fmt.Sprintf("section.page { width: %s; height: %s; padding: %s %s %s %s; }\n",
		px(geometry.Page.Width), px(geometry.Page.Height), px(m.Top), px(m.Right), px(m.Bottom), px(m.Left))
	pageCSS += "section.hero { padding: 0; }\n"

	c := &Composer{
		geometry: geometry,
		tmpl:     tmpl,
		css:      template.CSS(string(base) + pageCSS),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Geometry returns the geometry the composer lays pages out for.
func (c *Composer) Geometry() Geometry {
	return c.geometry
}

func px(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".") + "px"
}

type ingredientView struct {
	Index     int
	Subheader bool
	Text      string
	Amount    string
	Name      string
}

type stepView struct {
	Index    int
	Number   int
	Text     string
	Category string
	Key      bool
}

type recipeData struct {
	Recipe        *recipe.Recipe
	Meta          []recipe.MetaEntry
	Hero          bool
	HeroImage     template.URL
	HeroStyle     template.CSS
	TableStyle    template.CSS
	LeftStyle     template.CSS
	RightStyle    template.CSS
	Left          []ingredientView
	Right         []ingredientView
	Steps         []stepView
	Continuations [][]stepView
}

func (c *Composer) recipeData(r *recipe.Recipe, hero bool) recipeData {
	left, right := c.geometry.ColumnWidths()
	d := recipeData{
		Recipe:     r,
		Meta:       r.Meta(),
		Hero:       hero && r.HeroImage != "",
		TableStyle: template.CSS(fmt.Sprintf("border-spacing: %s;", px(c.geometry.ColumnGap))),
		LeftStyle:  template.CSS(fmt.Sprintf("width: %s;", px(left))),
		RightStyle: template.CSS(fmt.Sprintf("width: %s;", px(right))),
	}
	if d.Hero {
		d.HeroImage = template.URL(r.HeroImage)
		d.HeroStyle = template.CSS(fmt.Sprintf("width: %s; height: %s; object-fit: cover;",
			px(c.geometry.Page.Width), px(c.geometry.Page.Height*0.62)))
	}
	return d
}

func ingredientViews(r *recipe.Recipe, blocks []recipe.Block, indices []int) []ingredientView {
	out := make([]ingredientView, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(blocks) {
			continue
		}
		b := blocks[i]
		if b.Subheader {
			out = append(out, ingredientView{Index: i, Subheader: true, Text: b.Text})
			continue
		}
		in := r.Ingredients[b.Ingredient]
		out = append(out, ingredientView{Index: i, Amount: in.Amount(), Name: in.Name})
	}
	return out
}

func stepViews(r *recipe.Recipe, indices []int) []stepView {
	out := make([]stepView, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(r.Instructions) {
			continue
		}
		st := r.Instructions[i]
		out = append(out, stepView{Index: i, Number: st.Step, Text: st.Text, Category: st.Category, Key: st.KeyStep})
	}
	return out
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Measure renders the unsplit recipe page: every ingredient block in the
// left column and every instruction in the right, with no height cap.
func (c *Composer) Measure(r *recipe.Recipe) (string, error) {
	blocks := r.IngredientBlocks()
	d := c.recipeData(r, c.heroPage)
	d.Left = ingredientViews(r, blocks, seq(len(blocks)))
	d.Steps = stepViews(r, seq(len(r.Instructions)))
	return c.document(r.Title, "measure-pages", d)
}

// Final renders the split recipe: a hero page when enabled and the recipe
// has a hero image, the two-column recipe page laid out by plan, and one
// continuation page per entry of continuation.
func (c *Composer) Final(r *recipe.Recipe, plan pagination.SplitPlan, continuation [][]int) (string, error) {
	blocks := r.IngredientBlocks()
	d := c.recipeData(r, c.heroPage)
	d.Left = ingredientViews(r, blocks, plan.LeftColumnIngredients)
	d.Right = ingredientViews(r, blocks, plan.RightColumnIngredients)
	d.Steps = stepViews(r, plan.FirstPageInstructions)
	for _, page := range continuation {
		d.Continuations = append(d.Continuations, stepViews(r, page))
	}
	return c.document(r.Title, "final-pages", d)
}

// Export renders the whole recipe as plain semantic markup (headings and
// lists) with no page structure, for conversion to other formats.
func (c *Composer) Export(r *recipe.Recipe) (string, error) {
	blocks := r.IngredientBlocks()
	d := c.recipeData(r, false)
	d.Left = ingredientViews(r, blocks, seq(len(blocks)))
	d.Steps = stepViews(r, seq(len(r.Instructions)))
	return c.document(r.Title, "export-pages", d)
}

// BookInfo describes a cookbook volume.
type BookInfo struct {
	Name        string
	Author      string
	RecipeCount int
}

// TOCEntry is one table of contents line.
type TOCEntry struct {
	Title string
	Page  int
}

type bookData struct {
	Book       BookInfo
	Entries    []TOCEntry
	TitleStyle template.CSS
	PageStyle  template.CSS
}

// Cover renders the front cover page.
func (c *Composer) Cover(b BookInfo) (string, error) {
	return c.document(b.Name, "cover-pages", bookData{Book: b})
}

// TableOfContents renders the contents page listing each recipe's first
// page.
func (c *Composer) TableOfContents(b BookInfo, entries []TOCEntry) (string, error) {
	w := c.geometry.ContentWidth()
	return c.document(b.Name+" contents", "toc-pages", bookData{
		Book:       b,
		Entries:    entries,
		TitleStyle: template.CSS("width: " + px(w-60) + ";"),
		PageStyle:  template.CSS("width: 60px;"),
	})
}

// BackCover renders the back cover page.
func (c *Composer) BackCover(b BookInfo) (string, error) {
	return c.document(b.Name, "back-pages", bookData{Book: b})
}

func (c *Composer) document(title, pages string, data any) (string, error) {
	var body bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&body, pages, data); err != nil {
		return "", fmt.Errorf("compose %s: %w", pages, err)
	}
	var out bytes.Buffer
	err := c.tmpl.ExecuteTemplate(&out, "document", struct {
		Title string
		CSS   template.CSS
		Body  template.HTML
	}{title, c.css, template.HTML(body.String())})
	if err != nil {
		return "", fmt.Errorf("compose document: %w", err)
	}
	return out.String(), nil
}
