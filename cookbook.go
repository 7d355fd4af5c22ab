package cookbook

import (
	"github.com/eladw917/cookbook-creator/internal/book"
	"github.com/eladw917/cookbook-creator/internal/recipe"
	"github.com/eladw917/cookbook-creator/pkg/api"
)

type Converter = api.Converter
type Options = api.Options
type Option = api.Option

type Recipe = recipe.Recipe
type Ingredient = recipe.Ingredient
type Instruction = recipe.Instruction
type Book = book.Book

func New(opts ...Option) (*Converter, error)             { return api.New(opts...) }
func NewWithOptions(options Options) (*Converter, error) { return api.NewWithOptions(options) }
func DefaultOptions() Options                            { return api.DefaultOptions() }
func LoadRecipe(path string) (*Recipe, error)            { return recipe.Load(path) }

var (
	WithPageSize       = api.WithPageSize
	WithMargins        = api.WithMargins
	WithColumns        = api.WithColumns
	WithAllowances     = api.WithAllowances
	WithHeroPage       = api.WithHeroPage
	WithDPI            = api.WithDPI
	WithDebugDrawBoxes = api.WithDebugDrawBoxes
	WithResourcePath   = api.WithResourcePath
	WithFontDirectory  = api.WithFontDirectory
	WithTitle          = api.WithTitle
	WithAuthor         = api.WithAuthor
	WithSubject        = api.WithSubject
	WithKeywords       = api.WithKeywords
	WithTimeout        = api.WithTimeout
	WithConcurrency    = api.WithConcurrency
	WithCacheDir       = api.WithCacheDir
	WithStore          = api.WithStore
	WithLogger         = api.WithLogger
	WithPageSizeA4     = api.WithPageSizeA4
	WithPageSizeA5     = api.WithPageSizeA5
	WithPageSizeLetter = api.WithPageSizeLetter
	WithPageSizeLegal  = api.WithPageSizeLegal
)

var (
	ErrInvalidRecipe = recipe.ErrInvalid
	ErrRecipeCount   = book.ErrRecipeCount
	ErrNoCache       = api.ErrNoCache
)

const (
	PageSizeA4Width  = api.PageSizeA4Width
	PageSizeA4Height = api.PageSizeA4Height
	PageSizeA5Width  = api.PageSizeA5Width
	PageSizeA5Height = api.PageSizeA5Height

	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight
)
