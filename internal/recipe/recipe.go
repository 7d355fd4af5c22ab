// Package recipe holds the structured recipe model the cookbook is built
// from, and loads it from JSON or YAML files.
package recipe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid reports a recipe that cannot be rendered.
var ErrInvalid = errors.New("invalid recipe")

// Ingredient is one line of the ingredient list.
type Ingredient struct {
	Quantity string `json:"quantity" yaml:"quantity"`
	Unit     string `json:"unit" yaml:"unit"`
	Name     string `json:"ingredient" yaml:"ingredient"`
	// Purpose groups ingredients by phase ("dough", "sauce"); a change of
	// purpose starts a new subheader.
	Purpose string `json:"purpose,omitempty" yaml:"purpose,omitempty"`
}

// Instruction is one numbered step.
type Instruction struct {
	Step     int    `json:"step_number" yaml:"step_number"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Text     string `json:"instruction" yaml:"instruction"`
	KeyStep  bool   `json:"is_key_step,omitempty" yaml:"is_key_step,omitempty"`
}

// Recipe is a structured recipe as extracted from a cooking video.
type Recipe struct {
	VideoID      string        `json:"video_id,omitempty" yaml:"video_id,omitempty"`
	VideoURL     string        `json:"video_url,omitempty" yaml:"video_url,omitempty"`
	Title        string        `json:"title" yaml:"title"`
	Channel      string        `json:"channel,omitempty" yaml:"channel,omitempty"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	Servings     string        `json:"servings,omitempty" yaml:"servings,omitempty"`
	PrepTime     string        `json:"prep_time,omitempty" yaml:"prep_time,omitempty"`
	CookTime     string        `json:"cook_time,omitempty" yaml:"cook_time,omitempty"`
	TotalTime    string        `json:"total_time,omitempty" yaml:"total_time,omitempty"`
	Difficulty   string        `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Ingredients  []Ingredient  `json:"ingredients" yaml:"ingredients"`
	Instructions []Instruction `json:"instructions" yaml:"instructions"`
	// HeroImage is an image URL, path or data URL shown on the hero page.
	HeroImage string `json:"hero_image,omitempty" yaml:"hero_image,omitempty"`
}

// Format names a recipe file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension; anything that is
// not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Load reads and validates a recipe file.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe %s: %w", path, err)
	}
	r, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("load recipe %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a recipe.
func Parse(data []byte, format Format) (*Recipe, error) {
	var r Recipe
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	if err := r.Prepare(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Prepare normalizes a recipe assembled in code and validates it.
func (r *Recipe) Prepare() error {
	r.normalize()
	return r.Validate()
}

func (r *Recipe) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	for i := range r.Ingredients {
		in := &r.Ingredients[i]
		in.Quantity = strings.TrimSpace(in.Quantity)
		in.Unit = strings.TrimSpace(in.Unit)
		in.Name = strings.TrimSpace(in.Name)
		in.Purpose = strings.TrimSpace(in.Purpose)
	}
	for i := range r.Instructions {
		st := &r.Instructions[i]
		st.Text = strings.TrimSpace(st.Text)
		if st.Step <= 0 {
			st.Step = i + 1
		}
	}
}

// Validate checks that the recipe can be rendered. Empty ingredient and
// instruction lists are allowed.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalid)
	}
	for i, in := range r.Ingredients {
		if in.Name == "" {
			return fmt.Errorf("%w: ingredient %d has no name", ErrInvalid, i+1)
		}
	}
	for i, st := range r.Instructions {
		if st.Text == "" {
			return fmt.Errorf("%w: instruction %d has no text", ErrInvalid, i+1)
		}
	}
	return nil
}

// Block is one entry of the ingredient column: an ingredient line or a
// purpose subheader.
type Block struct {
	Subheader bool
	// Text is the subheader text; empty for ingredient lines.
	Text string
	// Ingredient indexes Recipe.Ingredients for ingredient lines.
	Ingredient int
}

// IngredientBlocks expands the ingredient list into column blocks. A
// subheader is emitted whenever the purpose changes to a new non-empty
// value, but only when the recipe uses more than one purpose.
func (r *Recipe) IngredientBlocks() []Block {
	grouped := len(r.purposes()) > 1
	blocks := make([]Block, 0, len(r.Ingredients))
	last := ""
	for i, in := range r.Ingredients {
		if grouped && in.Purpose != "" && !strings.EqualFold(in.Purpose, last) {
			blocks = append(blocks, Block{Subheader: true, Text: in.Purpose, Ingredient: -1})
			last = in.Purpose
		}
		blocks = append(blocks, Block{Ingredient: i})
	}
	return blocks
}

func (r *Recipe) purposes() map[string]struct{} {
	out := make(map[string]struct{})
	for _, in := range r.Ingredients {
		if in.Purpose != "" {
			out[strings.ToLower(in.Purpose)] = struct{}{}
		}
	}
	return out
}

// Amount formats the quantity and unit of an ingredient, dropping the
// placeholder "-" quantity and the generic "unit"/"units".
func (in Ingredient) Amount() string {
	q := in.Quantity
	if q == "-" {
		q = ""
	}
	u := in.Unit
	switch strings.ToLower(u) {
	case "unit", "units", "-":
		u = ""
	}
	return strings.TrimSpace(q + " " + u)
}

// Meta returns the non-empty metadata entries in display order.
func (r *Recipe) Meta() []MetaEntry {
	var out []MetaEntry
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			out = append(out, MetaEntry{Label: label, Value: v})
		}
	}
	add("Servings", strings.TrimPrefix(strings.TrimPrefix(r.Servings, "Serves: "), "Yields: "))
	add("Prep", r.PrepTime)
	add("Cook", r.CookTime)
	add("Total", r.TotalTime)
	add("Difficulty", r.Difficulty)
	return out
}

// MetaEntry is one label/value pair of the metadata line.
type MetaEntry struct {
	Label string
	Value string
}
