package config

import (
	"errors"
	"fmt"

	"github.com/eladw917/cookbook-creator/internal/pagination"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePage(); err != nil {
		return err
	}
	if err := c.validateLayout(); err != nil {
		return err
	}
	if c.Render.Concurrency < 1 {
		return errors.New("render.concurrency must be at least 1")
	}
	if c.Render.TimeoutSeconds < 0 {
		return errors.New("render.timeout_seconds must not be negative")
	}
	if c.Cache.PDFTTLHours < 0 {
		return errors.New("cache.pdf_ttl_hours must not be negative")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// PageSize resolves the configured size name or explicit dimensions.
func (c *Config) PageSize() (pagination.PageSize, error) {
	if c.Page.Width > 0 || c.Page.Height > 0 {
		if c.Page.Width <= 0 || c.Page.Height <= 0 {
			return pagination.PageSize{}, errors.New("page.width and page.height must both be positive")
		}
		return pagination.PageSize{Width: c.Page.Width, Height: c.Page.Height, Name: "Custom"}, nil
	}
	size, ok := pagination.LookupPageSize(c.Page.Size)
	if !ok {
		return pagination.PageSize{}, fmt.Errorf("page.size: unknown size %q", c.Page.Size)
	}
	return size, nil
}

// Margins returns the configured page margins.
func (c *Config) Margins() pagination.Margins {
	return pagination.Margins{
		Top:    c.Page.MarginTop,
		Right:  c.Page.MarginRight,
		Bottom: c.Page.MarginBottom,
		Left:   c.Page.MarginLeft,
	}
}

func (c *Config) validatePage() error {
	size, err := c.PageSize()
	if err != nil {
		return err
	}
	m := c.Margins()
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return errors.New("page margins must not be negative")
	}
	if m.Top+m.Bottom >= size.Height || m.Left+m.Right >= size.Width {
		return errors.New("page margins leave no content area")
	}
	return nil
}

func (c *Config) validateLayout() error {
	if c.Layout.ContinuedHeaderAllowance < 0 {
		return errors.New("layout.continued_header_allowance must not be negative")
	}
	if c.Layout.ContainerPaddingAllowance < 0 {
		return errors.New("layout.container_padding_allowance must not be negative")
	}
	if c.Layout.ColumnGap < 0 {
		return errors.New("layout.column_gap must not be negative")
	}
	return nil
}
