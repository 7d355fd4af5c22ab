// Package sequence drives the two-pass render of one recipe: compose the
// unsplit page, measure it, split it, compose the final pages and rasterize
// them. Each step waits for fonts and images to be ready first.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eladw917/cookbook-creator/internal/compose"
	"github.com/eladw917/cookbook-creator/internal/logging"
	"github.com/eladw917/cookbook-creator/internal/measure"
	"github.com/eladw917/cookbook-creator/internal/pagination"
	"github.com/eladw917/cookbook-creator/internal/rasterize"
	"github.com/eladw917/cookbook-creator/internal/recipe"
	"github.com/google/uuid"
)

var (
	// ErrMeasurement wraps failures of the measurement pass.
	ErrMeasurement = errors.New("measurement failed")
	// ErrRasterize wraps failures of the final rasterization pass.
	ErrRasterize = errors.New("rasterization failed")
	// ErrNotReady wraps failures of the ready precondition.
	ErrNotReady = errors.New("resources not ready")
)

// ReadyFunc blocks until everything markup depends on (fonts, images) is
// loaded, or fails.
type ReadyFunc func(ctx context.Context, markup string) error

// NoopReady is a ReadyFunc that is always ready.
func NoopReady(context.Context, string) error { return nil }

// Sequencer renders recipes. Its fields are read-only during Render, so one
// Sequencer may render several recipes concurrently.
type Sequencer struct {
	Surface    measure.Surface
	Rasterizer rasterize.Rasterizer
	Ready      ReadyFunc
	Engine     *pagination.Engine
	Composer   *compose.Composer
	Logger     *slog.Logger
	// Timeout bounds each Render when positive.
	Timeout time.Duration
}

// Plan is the outcome of the measurement half of a render.
type Plan struct {
	Input        pagination.Input     `json:"input"`
	Split        pagination.SplitPlan `json:"plan"`
	Continuation [][]int              `json:"continuation_pages"`
	Measurements *measure.Result      `json:"measurements"`
}

// Pages is the number of recipe pages the plan produces, hero page excluded.
func (p *Plan) Pages() int {
	return 1 + len(p.Continuation)
}

// Result is a rendered recipe.
type Result struct {
	PDF  []byte
	Plan *Plan
}

// Render produces the final document for a recipe. Any failure aborts the
// render; no partial document is returned.
func (s *Sequencer) Render(ctx context.Context, r *recipe.Recipe) (*Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	logger := s.requestLogger(r)
	start := time.Now()

	plan, err := s.plan(ctx, r, logger)
	if err != nil {
		return nil, err
	}

	markup, err := s.Composer.Final(r, plan.Split, plan.Continuation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	if err := s.ready(ctx, markup); err != nil {
		return nil, err
	}
	pdf, err := s.Rasterizer.Rasterize(ctx, markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterize, err)
	}

	logger.Info("recipe rendered",
		logging.Int("recipe_pages", plan.Pages()),
		logging.Int("bytes", len(pdf)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return &Result{PDF: pdf, Plan: plan}, nil
}

// Plan runs only the measurement half: compose, measure and split.
func (s *Sequencer) Plan(ctx context.Context, r *recipe.Recipe) (*Plan, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.plan(ctx, r, s.requestLogger(r))
}

func (s *Sequencer) plan(ctx context.Context, r *recipe.Recipe, logger *slog.Logger) (*Plan, error) {
	blocks := r.IngredientBlocks()
	markup, err := s.Composer.Measure(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMeasurement, err)
	}
	if err := s.ready(ctx, markup); err != nil {
		return nil, err
	}
	result, err := s.Surface.Measure(ctx, markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMeasurement, err)
	}

	m := result.Measurements()
	split, err := s.Engine.Split(m, len(blocks), len(r.Instructions))
	if err != nil {
		return nil, err
	}
	plan := &Plan{
		Input:        s.Engine.Input(m),
		Split:        split,
		Continuation: s.Engine.Continuation(split, m),
		Measurements: result,
	}

	attrs := []any{
		logging.Bool("ingredients_overflow", split.IngredientsOverflow),
		logging.Int("left", len(split.LeftColumnIngredients)),
		logging.Int("right", len(split.RightColumnIngredients)),
		logging.Int("first_page_steps", len(split.FirstPageInstructions)),
		logging.Int("overflow_steps", len(split.OverflowInstructions)),
	}
	if split.Degraded() {
		logger.Warn("recipe page overflows its column",
			append(attrs,
				logging.Bool("forced_ingredients", split.ForcedIngredients),
				logging.Bool("forced_instructions", split.ForcedInstructions),
			)...)
	} else {
		logger.Debug("recipe split", attrs...)
	}
	return plan, nil
}

func (s *Sequencer) ready(ctx context.Context, markup string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Ready == nil {
		return nil
	}
	if err := s.Ready(ctx, markup); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

func (s *Sequencer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout > 0 {
		return context.WithTimeout(ctx, s.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Sequencer) requestLogger(r *recipe.Recipe) *slog.Logger {
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return logger.With(
		logging.String(logging.FieldRequestID, uuid.NewString()),
		logging.String(logging.FieldRecipe, r.Title),
	)
}
