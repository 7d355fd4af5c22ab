package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/recipe"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var recipePath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan [input.json]",
		Short: "Compute the column and page split",
		Long: "Reads a measured-heights record (or - for stdin) and prints the split plan.\n" +
			"With --recipe the recipe is measured first.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (recipePath == "") {
				return fmt.Errorf("pass either an input record or --recipe")
			}

			var plan pagination.SplitPlan
			var continuation [][]int
			if recipePath != "" {
				r, err := recipe.Load(recipePath)
				if err != nil {
					return err
				}
				conv, err := ctx.newConverter()
				if err != nil {
					return err
				}
				p, err := conv.PlanRecipe(cmd.Context(), r)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, p)
				}
				plan, continuation = p.Split, p.Continuation
			} else {
				in, err := readPlanInput(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				plan, err = pagination.Split(in)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, plan)
				}
			}

			printPlan(cmd.OutOrStdout(), plan, continuation)
			return nil
		},
	}

	cmd.Flags().StringVar(&recipePath, "recipe", "", "Measure and split this recipe file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	return cmd
}

// readPlanInput decodes a measured-heights record. Omitted allowances take
// their defaults.
func readPlanInput(stdin io.Reader, path string) (pagination.Input, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return pagination.Input{}, fmt.Errorf("read input: %w", err)
	}
	in := pagination.Input{
		ContinuedHeaderAllowance:  pagination.DefaultContinuedHeaderAllowance,
		ContainerPaddingAllowance: pagination.DefaultContainerPaddingAllowance,
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return pagination.Input{}, fmt.Errorf("decode input: %w", err)
	}
	return in, nil
}

func printPlan(out io.Writer, plan pagination.SplitPlan, continuation [][]int) {
	rows := [][]string{
		{"Ingredients overflow", yesNo(plan.IngredientsOverflow)},
		{"Left column ingredients", formatIndices(plan.LeftColumnIngredients)},
		{"Right column ingredients", formatIndices(plan.RightColumnIngredients)},
		{"First page instructions", formatIndices(plan.FirstPageInstructions)},
		{"Overflow instructions", formatIndices(plan.OverflowInstructions)},
		{"Remaining height", strconv.FormatFloat(plan.RemainingHeight, 'f', 1, 64)},
	}
	for i, page := range continuation {
		rows = append(rows, []string{fmt.Sprintf("Continuation page %d", i+1), formatIndices(page)})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
	if plan.Degraded() {
		fmt.Fprintln(out, "Warning: content was forced onto the first page and may overflow it")
	}
}

func formatIndices(indices []int) string {
	if len(indices) == 0 {
		return "-"
	}
	parts := make([]string, len(indices))
	for i, v := range indices {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
