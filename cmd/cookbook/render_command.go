package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eladw917/cookbook-creator/internal/recipe"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var video string
	var output string
	var force bool

	cmd := &cobra.Command{
		Use:   "render [recipe-file]",
		Short: "Render one recipe to PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video = strings.TrimSpace(video)
			if (len(args) == 0) == (video == "") {
				return errNoInput
			}
			conv, err := ctx.newConverter()
			if err != nil {
				return err
			}

			var pdf []byte
			var hit bool
			if video != "" {
				pdf, hit, err = conv.RenderVideo(cmd.Context(), video, force)
				if err != nil {
					return err
				}
				if output == "" {
					output = video + ".pdf"
				}
			} else {
				r, err := recipe.Load(args[0])
				if err != nil {
					return err
				}
				out, err := conv.RenderRecipe(cmd.Context(), r)
				if err != nil {
					return err
				}
				pdf = out.PDF
				if output == "" {
					output = replaceExt(args[0], ".pdf")
				}
			}

			if err := os.WriteFile(output, pdf, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			source := "rendered"
			if hit {
				source = "from store"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d bytes)\n", output, source, len(pdf))
			return nil
		},
	}

	cmd.Flags().StringVar(&video, "video", "", "Render the cached recipe of this video id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PDF path")
	cmd.Flags().BoolVar(&force, "force", false, "Re-render even when a stored PDF exists")
	return cmd
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
