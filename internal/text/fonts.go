// Package text resolves CSS font descriptions to PDF fonts and measures
// strings with the same metrics the PDF writer uses.
package text

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
)

// Font represents a resolved font
type Font struct {
	Family string
	// Style is the fpdf style string: "", "B", "I" or "BI".
	Style string
	Size  float64
	// Core is set for the built-in PDF fonts, which only cover cp1252.
	Core bool
}

// Registry holds the TrueType fonts found in the configured font
// directories. A Registry is read-only after construction and may be shared.
type Registry struct {
	families map[string]map[string][]byte
}

// NewRegistry scans dirs for *.ttf files. File names follow the
// Family-Style.ttf convention (Lora-Bold.ttf, Lora-BoldItalic.ttf,
// Lora-Regular.ttf); the family key is the lower-cased family name.
func NewRegistry(dirs []string) (*Registry, error) {
	r := &Registry{families: make(map[string]map[string][]byte)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(dir, "*.ttf"))
		if err != nil {
			return nil, fmt.Errorf("scan font directory %s: %w", dir, err)
		}
		sort.Strings(matches)
		for _, path := range matches {
			family, style := parseFontFileName(filepath.Base(path))
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read font %s: %w", path, err)
			}
			if r.families[family] == nil {
				r.families[family] = make(map[string][]byte)
			}
			if _, exists := r.families[family][style]; !exists {
				r.families[family][style] = data
			}
		}
	}
	return r, nil
}

// Families lists the registered family keys in sorted order.
func (r *Registry) Families() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.families))
	for f := range r.families {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Bytes returns the TrueType data of a registered family and style.
func (r *Registry) Bytes(family, style string) ([]byte, bool) {
	if r == nil {
		return nil, false
	}
	data, ok := r.families[strings.ToLower(family)][style]
	return data, ok
}

// Register adds every registered font to a PDF document.
func (r *Registry) Register(pdf *fpdf.Fpdf) {
	if r == nil {
		return
	}
	for _, family := range r.Families() {
		styles := r.families[family]
		keys := make([]string, 0, len(styles))
		for s := range styles {
			keys = append(keys, s)
		}
		sort.Strings(keys)
		for _, s := range keys {
			pdf.AddUTF8FontFromBytes(family, s, styles[s])
		}
	}
}

// Resolve maps a CSS font-family list, weight and style onto a font. The
// first registered family in the list wins; otherwise generic names map to
// the core Helvetica, Times and Courier fonts.
func (r *Registry) Resolve(familyList, weight, fontStyle string, size float64) Font {
	style := ""
	switch strings.ToLower(strings.TrimSpace(weight)) {
	case "bold", "bolder", "600", "700", "800", "900":
		style += "B"
	}
	switch strings.ToLower(strings.TrimSpace(fontStyle)) {
	case "italic", "oblique":
		style += "I"
	}

	for _, name := range strings.Split(familyList, ",") {
		key := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(name), `'"`)))
		if key == "" {
			continue
		}
		if r != nil {
			if styles, ok := r.families[key]; ok {
				if _, ok := styles[style]; ok {
					return Font{Family: key, Style: style, Size: size}
				}
				if _, ok := styles[""]; ok {
					return Font{Family: key, Style: "", Size: size}
				}
			}
		}
		switch key {
		case "arial", "helvetica", "sans-serif", "system-ui":
			return Font{Family: "Helvetica", Style: style, Size: size, Core: true}
		case "times", "times new roman", "serif", "georgia":
			return Font{Family: "Times", Style: style, Size: size, Core: true}
		case "courier", "courier new", "monospace":
			return Font{Family: "Courier", Style: style, Size: size, Core: true}
		}
	}
	return Font{Family: "Helvetica", Style: style, Size: size, Core: true}
}

func parseFontFileName(base string) (family, style string) {
	name := strings.TrimSuffix(base, filepath.Ext(base))
	family = name
	suffix := ""
	if i := strings.LastIndexAny(name, "-_"); i > 0 {
		family, suffix = name[:i], strings.ToLower(name[i+1:])
	}
	switch suffix {
	case "bold":
		style = "B"
	case "italic", "oblique":
		style = "I"
	case "bolditalic", "boldoblique":
		style = "BI"
	case "regular", "":
	default:
		family = name
	}
	return strings.ToLower(family), style
}

// vulgarFractions spells out the fractions cp1252 lacks.
var vulgarFractions = strings.NewReplacer(
	"⅓", "1/3", "⅔", "2/3", "⅕", "1/5", "⅖", "2/5", "⅗", "3/5", "⅘", "4/5",
	"⅙", "1/6", "⅚", "5/6", "⅛", "1/8", "⅜", "3/8", "⅝", "5/8", "⅞", "7/8",
	"⁄", "/",
)

// Encode converts s into the byte encoding the PDF writer expects for the
// font: cp1252 for core fonts (unsupported runes become '?'), UTF-8 otherwise.
func Encode(f Font, s string) string {
	if !f.Core {
		return s
	}
	out, err := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()).String(vulgarFractions.Replace(s))
	if err != nil {
		return s
	}
	return strings.ReplaceAll(out, "\x1a", "?")
}

// Transform applies a CSS text-transform value.
func Transform(s, transform string) string {
	switch strings.ToLower(strings.TrimSpace(transform)) {
	case "uppercase":
		return strings.ToUpper(s)
	case "lowercase":
		return strings.ToLower(s)
	case "capitalize":
		return Title(s)
	}
	return s
}

// Title title-cases s for English text.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}
