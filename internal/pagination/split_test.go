package pagination

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformIngredients(n int, h float64) []IngredientBlock {
	out := make([]IngredientBlock, n)
	for i := range out {
		out[i] = IngredientBlock{Height: h}
	}
	return out
}

func TestSplitIngredientOverflowExample(t *testing.T) {
	in := Input{
		PageHeight:             400,
		IngredientHeaderHeight: 60,
		IngredientBlocks:       uniformIngredients(10, 40),
	}

	plan, err := Split(in)
	require.NoError(t, err)
	assert.True(t, plan.IngredientsOverflow)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, plan.LeftColumnIngredients)
	assert.Equal(t, []int{8, 9}, plan.RightColumnIngredients)
	assert.False(t, plan.ForcedIngredients)
}

func TestSplitIngredientsFitExample(t *testing.T) {
	in := Input{
		PageHeight:             1000,
		IngredientHeaderHeight: 60,
		IngredientBlocks:       uniformIngredients(10, 40),
	}

	plan, err := Split(in)
	require.NoError(t, err)
	assert.False(t, plan.IngredientsOverflow)
	assert.Len(t, plan.LeftColumnIngredients, 10)
	assert.Empty(t, plan.RightColumnIngredients)
	assert.Equal(t, 1000.0, plan.RemainingHeight)
}

func TestSplitInstructionBudgetExample(t *testing.T) {
	// One 10px ingredient overflows with no allowances, leaving 350.
	in := Input{
		PageHeight:              360,
		IngredientHeaderHeight:  350,
		IngredientBlocks:        uniformIngredients(2, 10),
		InstructionHeaderHeight: 80,
		InstructionBlocks:       []float64{100, 100, 100, 100, 100},
	}

	plan, err := Split(in)
	require.NoError(t, err)
	require.True(t, plan.IngredientsOverflow)
	assert.Equal(t, []int{0}, plan.LeftColumnIngredients)
	assert.Equal(t, []int{1}, plan.RightColumnIngredients)
	assert.Equal(t, 350.0, plan.RemainingHeight)
	assert.Equal(t, []int{0, 1}, plan.FirstPageInstructions)
	assert.Equal(t, []int{2, 3, 4}, plan.OverflowInstructions)
}

func TestSplitInstructionsWithoutOverflowUseFullHeight(t *testing.T) {
	in := Input{
		PageHeight:              350,
		InstructionHeaderHeight: 80,
		InstructionBlocks:       []float64{100, 100, 100, 100, 100},
	}

	plan, err := Split(in)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, plan.FirstPageInstructions)
	assert.Equal(t, []int{2, 3, 4}, plan.OverflowInstructions)
}

func TestSplitOversizedInstructionIsForced(t *testing.T) {
	in := Input{
		PageHeight:        100,
		InstructionBlocks: []float64{9999},
	}

	plan, err := Split(in)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, plan.FirstPageInstructions)
	assert.Empty(t, plan.OverflowInstructions)
	assert.True(t, plan.ForcedInstructions)
	assert.True(t, plan.Degraded())
}

func TestSplitOversizedSingleIngredientIsForced(t *testing.T) {
	in := Input{
		PageHeight:             300,
		IngredientHeaderHeight: 20,
		IngredientBlocks:       []IngredientBlock{{Height: 500}},
	}

	plan, err := Split(in)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, plan.LeftColumnIngredients)
	assert.Empty(t, plan.RightColumnIngredients)
	assert.False(t, plan.IngredientsOverflow)
	assert.True(t, plan.ForcedIngredients)
}

func TestSplitNegativeRemainingHeightForcesAllInstructions(t *testing.T) {
	in := Input{
		PageHeight:                400,
		IngredientHeaderHeight:    60,
		IngredientBlocks:          uniformIngredients(30, 40),
		InstructionHeaderHeight:   40,
		InstructionBlocks:         []float64{50, 50, 50},
		ContinuedHeaderAllowance:  80,
		ContainerPaddingAllowance: 40,
	}

	plan, err := Split(in)
	require.NoError(t, err)
	assert.Less(t, plan.RemainingHeight, 0.0)
	assert.Equal(t, []int{0, 1, 2}, plan.FirstPageInstructions)
	assert.Empty(t, plan.OverflowInstructions)
	assert.True(t, plan.ForcedInstructions)
}

func TestSplitOverflowSubtractsAllowances(t *testing.T) {
	in := Input{
		PageHeight:                500,
		VerticalPadding:           100,
		IngredientHeaderHeight:    0,
		IngredientBlocks:          []IngredientBlock{{Height: 300}, {Height: 30, IsSubheader: true}, {Height: 100}},
		ContinuedHeaderAllowance:  80,
		ContainerPaddingAllowance: 40,
	}

	plan, err := Split(in)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, plan.LeftColumnIngredients)
	assert.Equal(t, []int{2}, plan.RightColumnIngredients)
	assert.InDelta(t, 400-(100+80+40), plan.RemainingHeight, 1e-9)
}

func TestSplitEmptyLists(t *testing.T) {
	plan, err := Split(Input{PageHeight: 800, VerticalPadding: 100})
	require.NoError(t, err)
	assert.Empty(t, plan.LeftColumnIngredients)
	assert.Empty(t, plan.RightColumnIngredients)
	assert.Empty(t, plan.FirstPageInstructions)
	assert.Empty(t, plan.OverflowInstructions)
	assert.False(t, plan.Degraded())

	data, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"left_column_ingredient_indices":[]`)
}

func TestSplitConfigurationErrors(t *testing.T) {
	cases := map[string]Input{
		"zero page height":       {PageHeight: 0},
		"padding eats page":      {PageHeight: 300, VerticalPadding: 300},
		"negative padding":       {PageHeight: 300, VerticalPadding: -1},
		"negative ingredient":    {PageHeight: 300, IngredientBlocks: []IngredientBlock{{Height: -2}}},
		"nan instruction":        {PageHeight: 300, InstructionBlocks: []float64{math.NaN()}},
		"infinite header":        {PageHeight: 300, IngredientHeaderHeight: math.Inf(1)},
		"negative allowance":     {PageHeight: 300, ContinuedHeaderAllowance: -80},
		"negative padding allow": {PageHeight: 300, ContainerPaddingAllowance: -40},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Split(in)
			require.ErrorIs(t, err, ErrLayoutConfiguration)
		})
	}
}

func TestSplitRecipeRejectsMismatchedCounts(t *testing.T) {
	in := Input{PageHeight: 500, IngredientBlocks: uniformIngredients(3, 10), InstructionBlocks: []float64{10}}

	_, err := SplitRecipe(in, 4, 1)
	require.ErrorIs(t, err, ErrMismatchedInput)

	_, err = SplitRecipe(in, 3, 2)
	require.ErrorIs(t, err, ErrMismatchedInput)

	_, err = SplitRecipe(in, 3, 1)
	require.NoError(t, err)
}

func TestSplitProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		in := randomInput(rng)

		plan, err := Split(in)
		require.NoError(t, err)

		assertPartition(t, len(in.IngredientBlocks), plan.LeftColumnIngredients, plan.RightColumnIngredients)
		assertPartition(t, len(in.InstructionBlocks), plan.FirstPageInstructions, plan.OverflowInstructions)
		assert.Equal(t, len(plan.RightColumnIngredients) > 0, plan.IngredientsOverflow)

		total := in.IngredientHeaderHeight
		for _, b := range in.IngredientBlocks {
			total += b.Height
		}
		if total <= in.AvailableHeight() {
			assert.False(t, plan.IngredientsOverflow)
			assert.Empty(t, plan.RightColumnIngredients)
		}

		if len(in.InstructionBlocks) > 0 {
			assert.NotEmpty(t, plan.FirstPageInstructions)
		}

		if !plan.ForcedIngredients && len(in.IngredientBlocks) > 0 {
			left := in.IngredientHeaderHeight
			for _, i := range plan.LeftColumnIngredients {
				left += in.IngredientBlocks[i].Height
			}
			assert.LessOrEqual(t, left, in.AvailableHeight()+1e-9)
		}
		if !plan.ForcedInstructions && len(in.InstructionBlocks) > 0 {
			used := in.InstructionHeaderHeight
			for _, i := range plan.FirstPageInstructions {
				used += in.InstructionBlocks[i]
			}
			assert.LessOrEqual(t, used, plan.RemainingHeight+1e-9)
		}

		again, err := Split(in)
		require.NoError(t, err)
		assert.Equal(t, plan, again)
	}
}

func randomInput(rng *rand.Rand) Input {
	in := Input{
		PageHeight:                200 + rng.Float64()*800,
		IngredientHeaderHeight:    rng.Float64() * 80,
		InstructionHeaderHeight:   rng.Float64() * 80,
		ContinuedHeaderAllowance:  80,
		ContainerPaddingAllowance: 40,
	}
	in.VerticalPadding = rng.Float64() * (in.PageHeight - 50)
	for i := rng.Intn(25); i > 0; i-- {
		in.IngredientBlocks = append(in.IngredientBlocks, IngredientBlock{
			Height:      rng.Float64() * 60,
			IsSubheader: rng.Intn(5) == 0,
		})
	}
	for i := rng.Intn(15); i > 0; i-- {
		in.InstructionBlocks = append(in.InstructionBlocks, rng.Float64()*200)
	}
	return in
}

func assertPartition(t *testing.T, n int, first, second []int) {
	t.Helper()
	all := append(append([]int{}, first...), second...)
	require.Len(t, all, n)
	for i, idx := range all {
		assert.Equal(t, i, idx, "indices must be ascending, contiguous and complete")
	}
}

func TestContinuationChunksOverflow(t *testing.T) {
	heights := []float64{100, 100, 300, 250, 250, 900, 50}
	pages := Continuation([]int{2, 3, 4, 5, 6}, heights, 40, 600)

	assert.Equal(t, [][]int{{2, 3}, {4}, {5}, {6}}, pages)
	assert.Nil(t, Continuation(nil, heights, 40, 600))
}

func TestEngineInputAddsMarginsToPadding(t *testing.T) {
	e := NewEngine()
	e.SetOptions(Options{
		PageWidth: 600, PageHeight: 800,
		MarginTop: 30, MarginBottom: 50,
		ContinuedHeaderAllowance: 80, ContainerPaddingAllowance: 40,
	})

	in := e.Input(Measurements{Reserved: 120, IngredientHeader: 30, Instructions: []float64{10}})
	assert.Equal(t, 800.0, in.PageHeight)
	assert.Equal(t, 200.0, in.VerticalPadding)
	assert.Equal(t, 80.0, in.ContinuedHeaderAllowance)
	assert.Equal(t, 720.0, e.ContentHeight())

	_, err := e.Split(Measurements{Instructions: []float64{10}}, 0, 2)
	require.ErrorIs(t, err, ErrMismatchedInput)
}
