package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eladw917/cookbook-creator/internal/artifacts"
	"github.com/eladw917/cookbook-creator/pkg/api"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage cached video artifacts and rendered PDFs",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheStatusCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePurgeCommand(ctx))
	return cacheCmd
}

func cacheConverter(ctx *commandContext) (*api.Converter, *artifacts.Cache, error) {
	conv, err := ctx.newConverter()
	if err != nil {
		return nil, nil, err
	}
	cache := conv.Cache()
	if cache == nil {
		return nil, nil, api.ErrNoCache
	}
	return conv, cache, nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached videos and stored PDFs",
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, cache, err := cacheConverter(ctx)
			if err != nil {
				return err
			}
			videos, err := cache.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, videos)
			}

			out := cmd.OutOrStdout()
			if len(videos) == 0 {
				fmt.Fprintf(out, "No cached videos in %s\n", cache.Root())
			} else {
				rows := make([][]string, 0, len(videos))
				for _, v := range videos {
					rows = append(rows, []string{v.ID, v.Title, completedSteps(v.Status)})
				}
				fmt.Fprintln(out, renderTable([]string{"Video", "Title", "Steps"}, rows, nil))
			}

			if st := conv.Store(); st != nil {
				entries, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					expires := "never"
					if !e.ExpiresAt.IsZero() {
						expires = e.ExpiresAt.Local().Format(time.DateTime)
					}
					rows = append(rows, []string{e.Key, strconv.Itoa(e.Size), e.CreatedAt.Local().Format(time.DateTime), expires})
				}
				fmt.Fprintln(out, renderTable([]string{"Stored", "Bytes", "Created", "Expires"}, rows, []columnAlignment{alignLeft, alignRight}))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print cached videos as JSON")
	return cmd
}

func newCacheStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <video-id>",
		Short: "Show which pipeline steps are cached for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cache, err := cacheConverter(ctx)
			if err != nil {
				return err
			}
			status, err := cache.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			steps := append(append([]string{}, artifacts.Steps...), artifacts.StepFrames)
			rows := make([][]string, 0, len(steps))
			for _, step := range steps {
				rows = append(rows, []string{step, yesNo(status[step])})
			}
			if _, ok := cache.HeroImage(args[0]); ok {
				rows = append(rows, []string{"hero image", "yes"})
			} else {
				rows = append(rows, []string{"hero image", "no"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Step", "Cached"}, rows, nil))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var step string

	cmd := &cobra.Command{
		Use:   "clear <video-id>",
		Short: "Remove a video's cached artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := ctx.newConverter()
			if err != nil {
				return err
			}
			step = strings.TrimSpace(step)
			if err := conv.ClearVideo(cmd.Context(), args[0], step); err != nil {
				return err
			}
			label := "all steps"
			if step != "" {
				label = step
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s of %s\n", label, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&step, "step", "", "Clear only this step (metadata, transcript, recipe, timestamps, frames)")
	return cmd
}

func newCachePurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove expired PDFs from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := ctx.newConverter()
			if err != nil {
				return err
			}
			n, err := conv.PurgeStore(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired documents\n", n)
			return nil
		},
	}
}

func completedSteps(status artifacts.Status) string {
	var done []string
	for _, step := range append(append([]string{}, artifacts.Steps...), artifacts.StepFrames) {
		if status[step] {
			done = append(done, step)
		}
	}
	if len(done) == 0 {
		return "-"
	}
	return strings.Join(done, ", ")
}
