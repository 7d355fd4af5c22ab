// Package render holds what the PDF and PNG renderers share: CSS color
// parsing and list marker text.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eladw917/cookbook-creator/internal/style"
)

// Color is an RGB color with 0-255 channels and an opacity in [0,1].
type Color struct {
	R, G, B int
	A       float64
}

// Black is the default text color.
var Black = Color{A: 1}

// ParseColor parses a CSS color value: #rgb, #rrggbb, rgb(), rgba() and
// named colors. ok is false for empty, unknown and fully transparent values,
// which callers skip painting.
func ParseColor(value string) (Color, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "" || v == "transparent" || v == "none":
		return Color{}, false
	case strings.HasPrefix(v, "#"):
		if r, g, b, ok := parseHexColor(v); ok {
			return Color{R: r, G: g, B: b, A: 1}, true
		}
		return Color{}, false
	case strings.HasPrefix(v, "rgb"):
		return parseRGBFunc(v)
	}
	if c, ok := style.NamedColors[v]; ok {
		return Color{R: c[0], G: c[1], B: c[2], A: 1}, true
	}
	return Color{}, false
}

// ColorOr parses value, falling back to def.
func ColorOr(value string, def Color) Color {
	if c, ok := ParseColor(value); ok {
		return c
	}
	return def
}

func parseRGBFunc(v string) (Color, bool) {
	open, end := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if open < 0 || end < open {
		return Color{}, false
	}
	parts := strings.FieldsFunc(v[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) < 3 {
		return Color{}, false
	}
	var ch [3]int
	for i := 0; i < 3; i++ {
		p := parts[i]
		if strings.HasSuffix(p, "%") {
			f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			if err != nil {
				return Color{}, false
			}
			ch[i] = clamp(int(f * 255 / 100))
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Color{}, false
		}
		ch[i] = clamp(int(f))
	}
	a := 1.0
	if len(parts) > 3 {
		p := parts[3]
		if strings.HasSuffix(p, "%") {
			f, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			if err == nil {
				a = f / 100
			}
		} else if f, err := strconv.ParseFloat(p, 64); err == nil {
			a = f
		}
	}
	if a <= 0 {
		return Color{}, false
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: min(a, 1)}, true
}

func clamp(n int) int {
	return max(0, min(255, n))
}

// parseHexColor parses #RRGGBB or #RGB into r,g,b
func parseHexColor(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff), true
}

// ListMarker returns the marker text for an ordered list counter, or "" for
// the bullet styles, which are drawn as shapes.
func ListMarker(listStyle string, counter int) string {
	switch listStyle {
	case "lower-alpha", "lower-latin":
		return toAlpha(counter, false) + "."
	case "upper-alpha", "upper-latin":
		return toAlpha(counter, true) + "."
	case "decimal":
		return fmt.Sprintf("%d.", counter)
	case "decimal-leading-zero":
		return fmt.Sprintf("%02d.", counter)
	}
	return ""
}

// toAlpha converts 1-based index to alphabetic sequence (a..z, aa..zz, ...)
func toAlpha(n int, upper bool) string {
	if n <= 0 {
		return ""
	}
	base := 'a'
	if upper {
		base = 'A'
	}
	var letters []rune
	for n > 0 {
		n--
		letters = append([]rune{base + rune(n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}
