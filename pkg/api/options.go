package api

import (
	"log/slog"
	"time"
)

// Options represents configuration options for the cookbook renderer
type Options struct {
	// Page dimensions in points
	PageWidth  float64
	PageHeight float64

	// Page margins
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// Recipe page columns
	ColumnGap       float64
	LeftColumnRatio float64

	// Fixed heights reserved when ingredients overflow into the right
	// column: the "continued" subheading and the container's padding.
	ContinuedHeaderAllowance  float64
	ContainerPaddingAllowance float64

	// HeroPage adds a full-page hero image before recipes that have one
	HeroPage bool

	// DPI of PNG previews
	DPI float64

	// Visual rendering toggles
	// When false, backgrounds will not be painted
	RenderBackgrounds bool
	// When false, borders will not be painted
	RenderBorders bool
	// When true, outline every laid-out box
	DebugDrawBoxes bool

	// Resource paths
	ResourcePaths   []string
	FontDirectories []string

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string

	// Timeout bounds each recipe render; zero disables it
	Timeout time.Duration
	// Concurrency bounds parallel recipe renders while assembling a book
	Concurrency int

	// CacheDir is the per-video artifact directory; empty disables
	// video lookups
	CacheDir string
	// StorePath is the rendered-document store; empty disables caching
	StorePath string
	// CacheTTL is how long rendered documents stay in the store
	CacheTTL time.Duration

	Logger *slog.Logger
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		// Default to A4 paper size (595.28 x 841.89 points)
		PageWidth:  PageSizeA4Width,
		PageHeight: PageSizeA4Height,

		// Half-inch margins
		MarginTop:    36,
		MarginRight:  36,
		MarginBottom: 36,
		MarginLeft:   36,

		ColumnGap:       22,
		LeftColumnRatio: 0.42,

		ContinuedHeaderAllowance:  80,
		ContainerPaddingAllowance: 40,

		HeroPage: true,
		DPI:      144,

		RenderBackgrounds: true,
		RenderBorders:     true,

		ResourcePaths:   []string{},
		FontDirectories: []string{},

		Timeout:     60 * time.Second,
		Concurrency: 4,
		CacheTTL:    7 * 24 * time.Hour,
	}
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithMargins sets the page margins
func WithMargins(top, right, bottom, left float64) Option {
	return func(o *Options) {
		o.MarginTop = top
		o.MarginRight = right
		o.MarginBottom = bottom
		o.MarginLeft = left
	}
}

// WithColumns sets the gap between the recipe columns and the ingredient
// column's share of the usable width.
func WithColumns(gap, leftRatio float64) Option {
	return func(o *Options) {
		o.ColumnGap = gap
		o.LeftColumnRatio = leftRatio
	}
}

// WithAllowances sets the continued-header and container-padding heights
// reserved when ingredients overflow.
func WithAllowances(continuedHeader, containerPadding float64) Option {
	return func(o *Options) {
		o.ContinuedHeaderAllowance = continuedHeader
		o.ContainerPaddingAllowance = containerPadding
	}
}

// WithHeroPage toggles the hero image page
func WithHeroPage(enabled bool) Option {
	return func(o *Options) {
		o.HeroPage = enabled
	}
}

// WithDPI sets the preview resolution
func WithDPI(dpi float64) Option {
	return func(o *Options) {
		o.DPI = dpi
	}
}

// WithDebugDrawBoxes outlines every box in rendered output
func WithDebugDrawBoxes(enabled bool) Option {
	return func(o *Options) {
		o.DebugDrawBoxes = enabled
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithFontDirectory adds a directory to search for fonts
func WithFontDirectory(dir string) Option {
	return func(o *Options) {
		o.FontDirectories = append(o.FontDirectories, dir)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithTimeout bounds each recipe render
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithConcurrency bounds parallel recipe renders
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithCacheDir sets the per-video artifact directory
func WithCacheDir(dir string) Option {
	return func(o *Options) {
		o.CacheDir = dir
	}
}

// WithStore enables the rendered-document store
func WithStore(path string, ttl time.Duration) Option {
	return func(o *Options) {
		o.StorePath = path
		o.CacheTTL = ttl
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Standard page sizes in points (1/72 inch)
const (
	PageSizeA4Width  = 595.28
	PageSizeA4Height = 841.89
	PageSizeA5Width  = 419.53
	PageSizeA5Height = 595.28

	// US Letter and Legal
	PageSizeLetterWidth  = 612
	PageSizeLetterHeight = 792
	PageSizeLegalWidth   = 612
	PageSizeLegalHeight  = 1008
)

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeA5 sets the page size to A5
func WithPageSizeA5() Option {
	return WithPageSize(PageSizeA5Width, PageSizeA5Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}
