// Package pagination decides where recipe content breaks across columns and
// pages, and distributes laid-out page containers onto PDF pages.
//
// Split is the two-column fit: ingredients fill the left column first-fit,
// any remainder moves to the right column above the instructions, and the
// instructions take whatever right-column height is left. It only sees block
// heights, so it is deterministic and safe to call from any goroutine.
package pagination

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrLayoutConfiguration reports page geometry or heights that cannot be laid out.
	ErrLayoutConfiguration = errors.New("layout configuration error")
	// ErrMismatchedInput reports height lists that do not line up with the recipe.
	ErrMismatchedInput = errors.New("mismatched input")
)

// Default presentation allowances reserved when ingredients overflow into
// the right column.
const (
	DefaultContinuedHeaderAllowance  = 80
	DefaultContainerPaddingAllowance = 40
)

// IngredientBlock is one measured entry of the ingredient column: either an
// ingredient line or a purpose subheader.
type IngredientBlock struct {
	Height      float64 `json:"height_px"`
	IsSubheader bool    `json:"is_subheader"`
}

// Input carries measured heights and page geometry for one recipe.
type Input struct {
	PageHeight                float64           `json:"page_height_px"`
	VerticalPadding           float64           `json:"vertical_padding_px"`
	IngredientHeaderHeight    float64           `json:"ingredient_header_height_px"`
	IngredientBlocks          []IngredientBlock `json:"ingredient_block_heights"`
	InstructionHeaderHeight   float64           `json:"instruction_header_height_px"`
	InstructionBlocks         []float64         `json:"instruction_block_heights"`
	ContinuedHeaderAllowance  float64           `json:"continued_header_allowance_px"`
	ContainerPaddingAllowance float64           `json:"container_padding_allowance_px"`
}

// AvailableHeight is the vertical space a single column may use.
func (in Input) AvailableHeight() float64 {
	return in.PageHeight - in.VerticalPadding
}

// SplitPlan assigns ingredient block and instruction indices to the left
// column, the right column, and the overflow pages. Index lists are ascending
// and together cover every input index exactly once.
type SplitPlan struct {
	IngredientsOverflow    bool  `json:"ingredients_overflow"`
	LeftColumnIngredients  []int `json:"left_column_ingredient_indices"`
	RightColumnIngredients []int `json:"right_column_ingredient_indices"`
	FirstPageInstructions  []int `json:"first_page_instruction_indices"`
	OverflowInstructions   []int `json:"overflow_instruction_indices"`

	// ForcedIngredients is set when the first ingredient block did not fit
	// and was placed in the left column anyway.
	ForcedIngredients bool `json:"forced_ingredients"`
	// ForcedInstructions is set when no instruction fit the remaining
	// right-column height and all of them were kept on the first page.
	ForcedInstructions bool `json:"forced_instructions"`
	// RemainingHeight is the right-column height left for instructions.
	RemainingHeight float64 `json:"remaining_right_column_height_px"`
}

// Degraded reports whether the plan knowingly overflows its page.
func (p SplitPlan) Degraded() bool {
	return p.ForcedIngredients || p.ForcedInstructions
}

// Split computes the column and page assignment for one recipe.
func Split(in Input) (SplitPlan, error) {
	if err := in.validate(); err != nil {
		return SplitPlan{}, err
	}
	available := in.AvailableHeight()

	plan := SplitPlan{
		LeftColumnIngredients:  []int{},
		RightColumnIngredients: []int{},
		FirstPageInstructions:  []int{},
		OverflowInstructions:   []int{},
	}

	ingredientHeights := make([]float64, len(in.IngredientBlocks))
	for i, b := range in.IngredientBlocks {
		ingredientHeights[i] = b.Height
	}

	fitted := firstFit(in.IngredientHeaderHeight, ingredientHeights, available)
	if fitted == 0 && len(ingredientHeights) > 0 {
		fitted = 1
		plan.ForcedIngredients = true
	}
	plan.LeftColumnIngredients = indexRange(0, fitted)
	plan.RightColumnIngredients = indexRange(fitted, len(ingredientHeights))
	plan.IngredientsOverflow = len(plan.RightColumnIngredients) > 0

	remaining := available
	if plan.IngredientsOverflow {
		overflow := sum(ingredientHeights[fitted:]) + in.ContinuedHeaderAllowance + in.ContainerPaddingAllowance
		remaining = available - overflow
	}
	plan.RemainingHeight = remaining

	fitted = firstFit(in.InstructionHeaderHeight, in.InstructionBlocks, remaining)
	if fitted == 0 && len(in.InstructionBlocks) > 0 {
		fitted = len(in.InstructionBlocks)
		plan.ForcedInstructions = true
	}
	plan.FirstPageInstructions = indexRange(0, fitted)
	plan.OverflowInstructions = indexRange(fitted, len(in.InstructionBlocks))

	return plan, nil
}

// SplitRecipe is Split with a check that the height lists match the recipe
// the heights were measured from.
func SplitRecipe(in Input, ingredientBlocks, instructions int) (SplitPlan, error) {
	if len(in.IngredientBlocks) != ingredientBlocks {
		return SplitPlan{}, fmt.Errorf("%w: %d ingredient heights for %d ingredient blocks",
			ErrMismatchedInput, len(in.IngredientBlocks), ingredientBlocks)
	}
	if len(in.InstructionBlocks) != instructions {
		return SplitPlan{}, fmt.Errorf("%w: %d instruction heights for %d instructions",
			ErrMismatchedInput, len(in.InstructionBlocks), instructions)
	}
	return Split(in)
}

func (in Input) validate() error {
	if !finite(in.PageHeight) || in.PageHeight <= 0 {
		return fmt.Errorf("%w: page height %v must be positive", ErrLayoutConfiguration, in.PageHeight)
	}
	if !finite(in.VerticalPadding) || in.VerticalPadding < 0 {
		return fmt.Errorf("%w: vertical padding %v must not be negative", ErrLayoutConfiguration, in.VerticalPadding)
	}
	if available := in.AvailableHeight(); available <= 0 {
		return fmt.Errorf("%w: available height %.2f must be positive", ErrLayoutConfiguration, available)
	}
	scalars := []struct {
		name  string
		value float64
	}{
		{"ingredient header height", in.IngredientHeaderHeight},
		{"instruction header height", in.InstructionHeaderHeight},
		{"continued header allowance", in.ContinuedHeaderAllowance},
		{"container padding allowance", in.ContainerPaddingAllowance},
	}
	for _, s := range scalars {
		if !finite(s.value) || s.value < 0 {
			return fmt.Errorf("%w: %s %v must not be negative", ErrLayoutConfiguration, s.name, s.value)
		}
	}
	for i, b := range in.IngredientBlocks {
		if !finite(b.Height) || b.Height < 0 {
			return fmt.Errorf("%w: ingredient block %d height %v", ErrLayoutConfiguration, i, b.Height)
		}
	}
	for i, h := range in.InstructionBlocks {
		if !finite(h) || h < 0 {
			return fmt.Errorf("%w: instruction block %d height %v", ErrLayoutConfiguration, i, h)
		}
	}
	return nil
}

// firstFit returns how many leading heights fit under budget when stacked
// on top of start.
func firstFit(start float64, heights []float64, budget float64) int {
	running := start
	for i, h := range heights {
		if running+h > budget {
			return i
		}
		running += h
	}
	return len(heights)
}

func indexRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
