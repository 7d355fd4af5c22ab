package artifacts_test

import (
	"context"
	"os"
	"testing"

	"github.com/eladw917/cookbook-creator/internal/artifacts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadStep(t *testing.T) {
	c := artifacts.New(t.TempDir())
	ctx := context.Background()

	in := map[string]string{"title": "Shakshuka"}
	require.NoError(t, c.SaveStep(ctx, "abc123", artifacts.StepMetadata, in))

	var out map[string]string
	require.NoError(t, c.LoadStep(ctx, "abc123", artifacts.StepMetadata, &out))
	assert.Equal(t, in, out)

	err := c.LoadStep(ctx, "abc123", artifacts.StepTranscript, &out)
	assert.ErrorIs(t, err, artifacts.ErrNotFound)
}

func TestRejectsPathNames(t *testing.T) {
	c := artifacts.New(t.TempDir())
	ctx := context.Background()

	assert.ErrorIs(t, c.SaveStep(ctx, "../escape", artifacts.StepRecipe, 1), artifacts.ErrInvalidName)
	assert.ErrorIs(t, c.SaveStep(ctx, "abc", "a/b", 1), artifacts.ErrInvalidName)
	_, err := c.SaveFrame(ctx, "abc", "..", nil)
	assert.ErrorIs(t, err, artifacts.ErrInvalidName)
}

func TestFramesAndStatus(t *testing.T) {
	c := artifacts.New(t.TempDir())
	ctx := context.Background()

	status, err := c.Status(ctx, "vid")
	require.NoError(t, err)
	assert.False(t, status[artifacts.StepFrames])
	_, ok := c.HeroImage("vid")
	assert.False(t, ok)

	path, err := c.SaveFrame(ctx, "vid", artifacts.HeroFrame, []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	assert.FileExists(t, path)

	data, err := c.LoadFrame(ctx, "vid", artifacts.HeroFrame)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)

	hero, ok := c.HeroImage("vid")
	assert.True(t, ok)
	assert.Equal(t, path, hero)

	require.NoError(t, c.SaveStep(ctx, "vid", artifacts.StepRecipe, map[string]any{"title": "x"}))
	status, err = c.Status(ctx, "vid")
	require.NoError(t, err)
	assert.True(t, status[artifacts.StepFrames])
	assert.True(t, status[artifacts.StepRecipe])
	assert.False(t, status[artifacts.StepMetadata])
}

func TestClearStepAndClear(t *testing.T) {
	c := artifacts.New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, c.SaveStep(ctx, "vid", artifacts.StepRecipe, map[string]any{"title": "x"}))
	_, err := c.SaveFrame(ctx, "vid", "1", []byte("jpg"))
	require.NoError(t, err)

	require.NoError(t, c.ClearStep(ctx, "vid", artifacts.StepFrames))
	require.NoError(t, c.ClearStep(ctx, "vid", artifacts.StepTimestamps))
	status, err := c.Status(ctx, "vid")
	require.NoError(t, err)
	assert.False(t, status[artifacts.StepFrames])
	assert.True(t, status[artifacts.StepRecipe])

	require.NoError(t, c.Clear(ctx, "vid"))
	_, err = os.Stat(c.Dir("vid"))
	assert.True(t, os.IsNotExist(err))
}

func TestListUsesMetadataTitle(t *testing.T) {
	c := artifacts.New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, c.SaveStep(ctx, "b", artifacts.StepRecipe, map[string]any{"title": "From Recipe"}))
	require.NoError(t, c.SaveStep(ctx, "a", artifacts.StepMetadata, artifacts.Metadata{Title: "From Metadata"}))

	videos, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "a", videos[0].ID)
	assert.Equal(t, "From Metadata", videos[0].Title)
	assert.Equal(t, "From Recipe", videos[1].Title)
}

func TestListMissingRoot(t *testing.T) {
	c := artifacts.New(t.TempDir() + "/missing")
	videos, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestLoadRecipeMergesMetadataAndHero(t *testing.T) {
	c := artifacts.New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, c.SaveStep(ctx, "vid", artifacts.StepRecipe, map[string]any{
		"ingredients":  []map[string]string{{"quantity": "2", "unit": "cups", "ingredient": "flour"}},
		"instructions": []map[string]any{{"step_number": 1, "instruction": "Mix."}},
	}))
	require.NoError(t, c.SaveStep(ctx, "vid", artifacts.StepMetadata, artifacts.Metadata{
		Title: "Bread", Channel: "Baker", URL: "https://youtu.be/vid",
	}))
	hero, err := c.SaveFrame(ctx, "vid", artifacts.HeroFrame, []byte("jpg"))
	require.NoError(t, err)

	r, err := c.LoadRecipe(ctx, "vid")
	require.NoError(t, err)
	assert.Equal(t, "vid", r.VideoID)
	assert.Equal(t, "Bread", r.Title)
	assert.Equal(t, "Baker", r.Channel)
	assert.Equal(t, hero, r.HeroImage)
	require.Len(t, r.Ingredients, 1)
	assert.Equal(t, "flour", r.Ingredients[0].Name)
}

func TestLoadRecipeMissing(t *testing.T) {
	c := artifacts.New(t.TempDir())
	_, err := c.LoadRecipe(context.Background(), "vid")
	assert.ErrorIs(t, err, artifacts.ErrNotFound)
}
