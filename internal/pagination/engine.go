package pagination

import (
	"github.com/eladw917/cookbook-creator/internal/layout"
)

// Options represents options for the pagination engine
type Options struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	ContinuedHeaderAllowance  float64
	ContainerPaddingAllowance float64
}

// DefaultOptions returns A4 geometry with half-inch margins.
func DefaultOptions() Options {
	return Options{
		PageWidth:                 PageSizeA4.Width,
		PageHeight:                PageSizeA4.Height,
		MarginTop:                 36,
		MarginRight:               36,
		MarginBottom:              36,
		MarginLeft:                36,
		ContinuedHeaderAllowance:  DefaultContinuedHeaderAllowance,
		ContainerPaddingAllowance: DefaultContainerPaddingAllowance,
	}
}

// Measurements are the heights measured from a recipe's unsplit page.
type Measurements struct {
	// Reserved is the height of everything stacked above the two columns
	// on the recipe page (title, meta line).
	Reserved          float64
	IngredientHeader  float64
	Ingredients       []IngredientBlock
	InstructionHeader float64
	Instructions      []float64
}

// Engine turns measurements into split plans for a fixed page geometry and
// maps laid-out page containers onto PDF pages.
type Engine struct {
	options Options
}

// NewEngine creates a new pagination engine
func NewEngine() *Engine {
	return &Engine{options: DefaultOptions()}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Options returns the engine's page geometry.
func (e *Engine) Options() Options {
	return e.options
}

// ContentHeight is the page height inside the vertical margins.
func (e *Engine) ContentHeight() float64 {
	return e.options.PageHeight - e.options.MarginTop - e.options.MarginBottom
}

// Input assembles the split input for one recipe page.
func (e *Engine) Input(m Measurements) Input {
	return Input{
		PageHeight:                e.options.PageHeight,
		VerticalPadding:           e.options.MarginTop + e.options.MarginBottom + m.Reserved,
		IngredientHeaderHeight:    m.IngredientHeader,
		IngredientBlocks:          m.Ingredients,
		InstructionHeaderHeight:   m.InstructionHeader,
		InstructionBlocks:         m.Instructions,
		ContinuedHeaderAllowance:  e.options.ContinuedHeaderAllowance,
		ContainerPaddingAllowance: e.options.ContainerPaddingAllowance,
	}
}

// Split computes the plan for measured heights, checking them against the
// recipe's block counts.
func (e *Engine) Split(m Measurements, ingredientBlocks, instructions int) (SplitPlan, error) {
	return SplitRecipe(e.Input(m), ingredientBlocks, instructions)
}

// Continuation splits overflow instructions over full continuation pages.
func (e *Engine) Continuation(plan SplitPlan, m Measurements) [][]int {
	return Continuation(plan.OverflowInstructions, m.Instructions, m.InstructionHeader, e.ContentHeight())
}

// Paginate breaks laid-out content into pages
func (e *Engine) Paginate(rootBox *layout.BlockBox) []*Page {
	paginator := NewPaginator(
		PageSize{
			Width:  e.options.PageWidth,
			Height: e.options.PageHeight,
			Name:   "Custom",
		},
		Margins{
			Top:    e.options.MarginTop,
			Right:  e.options.MarginRight,
			Bottom: e.options.MarginBottom,
			Left:   e.options.MarginLeft,
		},
	)

	return paginator.Paginate(rootBox)
}
