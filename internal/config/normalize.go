package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Page.Size = strings.TrimSpace(c.Page.Size)
	if c.Page.Size == "" && c.Page.Width == 0 && c.Page.Height == 0 {
		c.Page.Size = defaultPageSize
	}

	var err error
	if c.Cache.Dir, err = expandPath(strings.TrimSpace(c.Cache.Dir)); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	if c.Cache.StorePath, err = expandPath(strings.TrimSpace(c.Cache.StorePath)); err != nil {
		return fmt.Errorf("cache.store_path: %w", err)
	}
	if c.Render.FontDirs, err = expandAll(c.Render.FontDirs); err != nil {
		return fmt.Errorf("render.font_dirs: %w", err)
	}
	if c.Render.ResourcePaths, err = expandAll(c.Render.ResourcePaths); err != nil {
		return fmt.Errorf("render.resource_paths: %w", err)
	}
	if c.Render.Concurrency == 0 {
		c.Render.Concurrency = defaultConcurrency
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}

func expandAll(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		expanded, err := expandPath(p)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}
