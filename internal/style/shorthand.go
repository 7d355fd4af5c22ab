package style

import (
	"strings"
)

var sides = [4]string{"top", "right", "bottom", "left"}

// expandShorthands rewrites margin, padding, border and background
// shorthands into the longhand properties layout and rendering read. A
// longhand set with a higher rank than the shorthand is kept.
func expandShorthands(style ComputedStyle) {
	for _, box := range []string{"margin", "padding"} {
		if p, ok := style[box]; ok {
			vals := fourSides(strings.Fields(p.Value))
			for i, side := range sides {
				setLonghand(style, p, box+"-"+side, vals[i])
			}
			delete(style, box)
		}
	}

	if p, ok := style["border"]; ok {
		width, bstyle, color := splitBorder(p.Value)
		for _, side := range sides {
			setLonghand(style, p, "border-"+side+"-width", width)
			setLonghand(style, p, "border-"+side+"-style", bstyle)
			setLonghand(style, p, "border-"+side+"-color", color)
		}
		delete(style, "border")
	}
	for _, side := range sides {
		name := "border-" + side
		if p, ok := style[name]; ok {
			width, bstyle, color := splitBorder(p.Value)
			setLonghand(style, p, name+"-width", width)
			setLonghand(style, p, name+"-style", bstyle)
			setLonghand(style, p, name+"-color", color)
			delete(style, name)
		}
	}
	for _, suffix := range []string{"width", "style", "color"} {
		name := "border-" + suffix
		if p, ok := style[name]; ok {
			vals := fourSides(strings.Fields(p.Value))
			for i, side := range sides {
				setLonghand(style, p, "border-"+side+"-"+suffix, vals[i])
			}
			delete(style, name)
		}
	}

	if p, ok := style["background"]; ok {
		for _, f := range strings.Fields(p.Value) {
			if looksLikeColor(f) {
				setLonghand(style, p, "background-color", f)
			}
		}
		delete(style, "background")
	}
}

func setLonghand(style ComputedStyle, shorthand StyleProperty, name, value string) {
	if value == "" {
		return
	}
	if existing, ok := style[name]; ok && outranks(existing, shorthand) {
		// equal rank keeps the longhand
		return
	}
	shorthand.Name = name
	shorthand.Value = value
	style[name] = shorthand
}

// fourSides expands 1-4 box values into top, right, bottom, left.
func fourSides(parts []string) [4]string {
	switch len(parts) {
	case 0:
		return [4]string{}
	case 1:
		return [4]string{parts[0], parts[0], parts[0], parts[0]}
	case 2:
		return [4]string{parts[0], parts[1], parts[0], parts[1]}
	case 3:
		return [4]string{parts[0], parts[1], parts[2], parts[1]}
	default:
		return [4]string{parts[0], parts[1], parts[2], parts[3]}
	}
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dashed": true, "dotted": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// splitBorder splits "1px solid #ccc" into its width, style and color.
func splitBorder(v string) (width, bstyle, color string) {
	for _, f := range strings.Fields(v) {
		switch {
		case borderStyles[strings.ToLower(f)]:
			bstyle = strings.ToLower(f)
		case looksLikeColor(f):
			color = f
		default:
			width = f
		}
	}
	if bstyle == "none" || bstyle == "hidden" {
		width = "0"
	}
	if bstyle != "" && width == "" {
		width = "3px"
	}
	return width, bstyle, color
}

func looksLikeColor(v string) bool {
	v = strings.ToLower(v)
	if strings.HasPrefix(v, "#") || strings.HasPrefix(v, "rgb") {
		return true
	}
	_, ok := NamedColors[v]
	return ok
}

// NamedColors maps the CSS color keywords the recipe stylesheets use.
var NamedColors = map[string][3]int{
	"black":       {0, 0, 0},
	"white":       {255, 255, 255},
	"gray":        {128, 128, 128},
	"grey":        {128, 128, 128},
	"silver":      {192, 192, 192},
	"red":         {255, 0, 0},
	"maroon":      {128, 0, 0},
	"green":       {0, 128, 0},
	"olive":       {128, 128, 0},
	"navy":        {0, 0, 128},
	"blue":        {0, 0, 255},
	"teal":        {0, 128, 128},
	"orange":      {255, 165, 0},
	"brown":       {165, 42, 42},
	"beige":       {245, 245, 220},
	"ivory":       {255, 255, 240},
	"transparent": {255, 255, 255},
}
