package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eladw917/cookbook-creator/internal/recipe"
	"github.com/eladw917/cookbook-creator/pkg/api"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var output string
	var page int
	var dpi float64
	var debugBoxes bool

	cmd := &cobra.Command{
		Use:   "preview <recipe-file>",
		Short: "Render one page of a recipe as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := recipe.Load(args[0])
			if err != nil {
				return err
			}
			var extra []api.Option
			if dpi > 0 {
				extra = append(extra, api.WithDPI(dpi))
			}
			if debugBoxes {
				extra = append(extra, api.WithDebugDrawBoxes(true))
			}
			conv, err := ctx.newConverter(extra...)
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("%s-%d.png", replaceExt(args[0], ""), page)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := conv.PreviewPNG(cmd.Context(), r, page, f); err != nil {
				f.Close()
				os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PNG path")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number, counting the hero page")
	cmd.Flags().Float64Var(&dpi, "dpi", 0, "Preview resolution (config default when zero)")
	cmd.Flags().BoolVar(&debugBoxes, "debug-boxes", false, "Outline every laid-out box")
	return cmd
}
