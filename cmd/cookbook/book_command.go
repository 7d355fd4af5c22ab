package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eladw917/cookbook-creator/internal/book"
	"github.com/eladw917/cookbook-creator/internal/recipe"
)

func newBookCommand(ctx *commandContext) *cobra.Command {
	var name string
	var author string
	var output string
	var videos []string

	cmd := &cobra.Command{
		Use:   "book [recipe-file...]",
		Short: "Assemble a cookbook volume from 5 to 20 recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("--name is required")
			}
			conv, err := ctx.newConverter()
			if err != nil {
				return err
			}

			b := book.Book{Name: name, Author: author}
			for _, path := range args {
				r, err := recipe.Load(path)
				if err != nil {
					return err
				}
				b.Recipes = append(b.Recipes, r)
			}
			for _, id := range videos {
				r, err := conv.LoadVideoRecipe(cmd.Context(), strings.TrimSpace(id))
				if err != nil {
					return fmt.Errorf("load video %s: %w", id, err)
				}
				b.Recipes = append(b.Recipes, r)
			}

			res, err := conv.RenderBook(cmd.Context(), b)
			if err != nil {
				return err
			}
			if output == "" {
				output = slug(name) + ".pdf"
			}
			if err := os.WriteFile(output, res.PDF, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			rows := make([][]string, 0, len(res.Sections))
			for _, s := range res.Sections {
				rows = append(rows, []string{s.Title, strconv.Itoa(s.Start), strconv.Itoa(s.Pages)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Section", "Page", "Pages"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
			fmt.Fprintf(out, "Wrote %s (%d pages)\n", output, res.Pages)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Book title")
	cmd.Flags().StringVar(&author, "author", "", "Book author")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output PDF path")
	cmd.Flags().StringSliceVar(&videos, "video", nil, "Cached video ids to append after the recipe files")
	return cmd
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "cookbook"
	}
	return out
}
