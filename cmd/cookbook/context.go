package main

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/eladw917/cookbook-creator/internal/config"
	"github.com/eladw917/cookbook-creator/internal/logging"
	"github.com/eladw917/cookbook-creator/pkg/api"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	logger    *slog.Logger
	converter *api.Converter
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = level
		}
		if format := strings.TrimSpace(c.flags.logFormat); format != "" {
			cfg.Logging.Format = format
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.logger = logger
	})
	return c.config, c.configErr
}

// newConverter builds a converter from the loaded configuration. The store
// is opened once per process and closed after the command runs.
func (c *commandContext) newConverter(extra ...api.Option) (*api.Converter, error) {
	if c.converter != nil && len(extra) == 0 {
		return c.converter, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	size, err := cfg.PageSize()
	if err != nil {
		return nil, err
	}
	m := cfg.Margins()
	defaults := api.DefaultOptions()

	opts := []api.Option{
		api.WithPageSize(size.Width, size.Height),
		api.WithMargins(m.Top, m.Right, m.Bottom, m.Left),
		api.WithColumns(cfg.Layout.ColumnGap, defaults.LeftColumnRatio),
		api.WithAllowances(cfg.Layout.ContinuedHeaderAllowance, cfg.Layout.ContainerPaddingAllowance),
		api.WithHeroPage(cfg.Render.HeroPage),
		api.WithTimeout(cfg.Timeout()),
		api.WithConcurrency(cfg.Render.Concurrency),
		api.WithCacheDir(cfg.Cache.Dir),
		api.WithStore(cfg.Cache.StorePath, cfg.PDFTTL()),
		api.WithLogger(c.logger),
	}
	for _, dir := range cfg.Render.FontDirs {
		opts = append(opts, api.WithFontDirectory(dir))
	}
	for _, path := range cfg.Render.ResourcePaths {
		opts = append(opts, api.WithResourcePath(path))
	}
	opts = append(opts, extra...)

	conv, err := api.New(opts...)
	if err != nil {
		return nil, err
	}
	if c.converter != nil {
		_ = c.converter.Close()
	}
	c.converter = conv
	return conv, nil
}

func (c *commandContext) close() error {
	if c.converter == nil {
		return nil
	}
	err := c.converter.Close()
	c.converter = nil
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

var errNoInput = errors.New("a recipe file or --video is required")

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
