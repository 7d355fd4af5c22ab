package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eladw917/cookbook-creator/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, resolved, exists, err := config.Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(home, ".config", "cookbook", "config.toml"), resolved)

	assert.Equal(t, "A4", cfg.Page.Size)
	assert.Equal(t, 80.0, cfg.Layout.ContinuedHeaderAllowance)
	assert.Equal(t, 40.0, cfg.Layout.ContainerPaddingAllowance)
	assert.Equal(t, filepath.Join(home, ".cache", "cookbook", "videos"), cfg.Cache.Dir)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
	assert.Equal(t, 168*time.Hour, cfg.PDFTTL())

	size, err := cfg.PageSize()
	require.NoError(t, err)
	assert.InDelta(t, 841.89, size.Height, 0.001)
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cookbook.toml")
	body := `
[page]
size = "Letter"
margin_top = 20

[layout]
continued_header_allowance = 60

[render]
concurrency = 2
font_dirs = ["fonts"]

[logging]
level = "DEBUG"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, resolved, exists, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)
	assert.Equal(t, 20.0, cfg.Page.MarginTop)
	assert.Equal(t, 36.0, cfg.Page.MarginBottom)
	assert.Equal(t, 60.0, cfg.Layout.ContinuedHeaderAllowance)
	assert.Equal(t, 2, cfg.Render.Concurrency)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.Len(t, cfg.Render.FontDirs, 1)
	assert.True(t, filepath.IsAbs(cfg.Render.FontDirs[0]))

	size, err := cfg.PageSize()
	require.NoError(t, err)
	assert.Equal(t, 792.0, size.Height)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"unknown size":      func(c *config.Config) { c.Page.Size = "B7" },
		"half custom size":  func(c *config.Config) { c.Page.Width = 300 },
		"margins too large": func(c *config.Config) { c.Page.MarginTop, c.Page.MarginBottom = 500, 500 },
		"negative margin":   func(c *config.Config) { c.Page.MarginLeft = -1 },
		"negative padding":  func(c *config.Config) { c.Layout.ContainerPaddingAllowance = -5 },
		"zero concurrency":  func(c *config.Config) { c.Render.Concurrency = 0 },
		"bad format":        func(c *config.Config) { c.Logging.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestSampleConfigDecodesToDefaults(t *testing.T) {
	var cfg config.Config
	require.NoError(t, toml.Unmarshal([]byte(config.SampleConfig()), &cfg))
	def := config.Default()
	assert.Equal(t, def.Page, cfg.Page)
	assert.Equal(t, def.Layout, cfg.Layout)
	assert.Equal(t, def.Render.Concurrency, cfg.Render.Concurrency)
	assert.Equal(t, def.Cache, cfg.Cache)
}
