package style

import (
	"strconv"
	"strings"

	"github.com/eladw917/cookbook-creator/internal/parser/css"
	"github.com/eladw917/cookbook-creator/internal/parser/html"
	xhtml "golang.org/x/net/html"
)

// DefaultFontSize is the root font size in px.
const DefaultFontSize = 16.0

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
}

// Source represents the source of a style property
type Source int

const (
	SourceUserAgent Source = iota
	SourceAuthor
	SourceInline
	// SourceInherited marks values copied from the parent element.
	SourceInherited Source = -1
)

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// Get returns the value of a property, or "" when unset.
func (s ComputedStyle) Get(name string) string {
	return strings.TrimSpace(s[name].Value)
}

// inherited lists the properties an element takes from its parent when it
// does not set them itself.
var inherited = []string{
	"color", "font-family", "font-size", "font-style", "font-weight",
	"line-height", "text-align", "text-transform", "list-style-type",
	"white-space", "direction", "visibility",
}

// StyleEngine handles the CSS cascade and style computation
type StyleEngine struct {
	userAgentStyles *css.Stylesheet
	authorStyles    []*css.Stylesheet
}

// NewStyleEngine creates a new style engine
func NewStyleEngine() *StyleEngine {
	return &StyleEngine{
		userAgentStyles: defaultUserAgentStyles(),
		authorStyles:    []*css.Stylesheet{},
	}
}

// AddStylesheet adds an author stylesheet to the style engine
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	e.authorStyles = append(e.authorStyles, stylesheet)
}

// ComputeStyles computes styles for all elements in the document
func (e *StyleEngine) ComputeStyles(doc *html.Document) map[*html.Node]ComputedStyle {
	result := make(map[*html.Node]ComputedStyle)
	e.computeStylesRecursive(doc.Root, nil, result)
	return result
}

// computeStylesRecursive computes styles for an element and its children
func (e *StyleEngine) computeStylesRecursive(node *html.Node, parent ComputedStyle, result map[*html.Node]ComputedStyle) {
	if node == nil {
		return
	}

	current := parent
	if node.Type == xhtml.ElementNode {
		current = e.computeStyleForElement(node, parent)
		result[node] = current
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		e.computeStylesRecursive(child, current, result)
	}
}

// computeStyleForElement computes the style for a single element
func (e *StyleEngine) computeStyleForElement(node *html.Node, parent ComputedStyle) ComputedStyle {
	style := make(ComputedStyle)

	e.applyStylesheet(style, node, e.userAgentStyles, SourceUserAgent)
	for _, stylesheet := range e.authorStyles {
		e.applyStylesheet(style, node, stylesheet, SourceAuthor)
	}
	e.applyInlineStyles(style, node)

	expandShorthands(style)

	for _, name := range inherited {
		if v, ok := style[name]; ok && v.Value != "inherit" {
			continue
		}
		if pv, ok := parent[name]; ok {
			pv.Source = SourceInherited
			style[name] = pv
		} else {
			delete(style, name)
		}
	}

	resolveFontSize(style, parent)
	return style
}

// applyStylesheet applies styles from a stylesheet to an element
func (e *StyleEngine) applyStylesheet(style ComputedStyle, node *html.Node, stylesheet *css.Stylesheet, source Source) {
	if stylesheet == nil {
		return
	}
	for _, rule := range stylesheet.Rules {
		for _, selector := range rule.Selectors {
			if e.selectorMatches(node, selector) {
				applyDeclarations(style, rule.Declarations, calculateSpecificity(selector), source)
			}
		}
	}
}

// applyInlineStyles applies inline styles to an element
func (e *StyleEngine) applyInlineStyles(style ComputedStyle, node *html.Node) {
	if v, ok := html.Attr(node, "style"); ok {
		applyDeclarations(style, css.ParseDeclarations(v), Specificity{ID: 1}, SourceInline)
	}
}

// applyDeclarations applies CSS declarations to a style. A declaration
// replaces an existing value when it ranks at least as high by importance,
// then origin, then specificity; ties go to the later declaration.
func applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source) {
	for _, decl := range declarations {
		candidate := StyleProperty{
			Name:        decl.Property,
			Value:       decl.Value,
			Important:   decl.Important,
			Source:      source,
			Specificity: specificity,
		}
		existing, exists := style[decl.Property]
		if !exists || outranks(candidate, existing) {
			style[decl.Property] = candidate
		}
	}
}

func outranks(a, b StyleProperty) bool {
	if a.Important != b.Important {
		return a.Important
	}
	if a.Source != b.Source {
		return a.Source > b.Source
	}
	return compareSpecificity(a.Specificity, b.Specificity) >= 0
}

// selectorMatches checks if an element matches a CSS selector. Descendant
// and child (">") combinators are supported.
func (e *StyleEngine) selectorMatches(node *html.Node, selector string) bool {
	parts := tokenizeSelector(selector)
	if len(parts) == 0 || node == nil {
		return false
	}
	return matchFrom(node, parts, len(parts)-1)
}

func matchFrom(node *html.Node, parts []string, i int) bool {
	if !matchCompoundSelector(node, parts[i]) {
		return false
	}
	if i == 0 {
		return true
	}
	if parts[i-1] == ">" {
		if i-2 < 0 {
			return false
		}
		return node.Parent != nil && matchFrom(node.Parent, parts, i-2)
	}
	for anc := node.Parent; anc != nil; anc = anc.Parent {
		if anc.Type == xhtml.ElementNode && matchFrom(anc, parts, i-1) {
			return true
		}
	}
	return false
}

// tokenizeSelector splits a selector into compound selectors and ">"
// combinators, keeping attribute brackets intact.
func tokenizeSelector(selector string) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for _, r := range selector {
		switch {
		case r == '[':
			depth++
			cur.WriteRune(r)
		case r == ']':
			depth--
			cur.WriteRune(r)
		case depth == 0 && r == '>':
			flush()
			parts = append(parts, ">")
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return parts
}

// compound is a parsed compound selector such as li.item[data-kind="x"].
type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrSelector
}

type attrSelector struct {
	key   string
	value string
	exact bool
}

func parseCompound(sel string) (compound, bool) {
	var c compound
	i := 0
	if i < len(sel) && sel[i] != '.' && sel[i] != '#' && sel[i] != '[' {
		j := i
		for j < len(sel) && sel[j] != '#' && sel[j] != '.' && sel[j] != '[' {
			j++
		}
		c.tag = strings.ToLower(sel[i:j])
		i = j
	}
	for i < len(sel) {
		switch sel[i] {
		case '#', '.':
			j := i + 1
			for j < len(sel) && sel[j] != '.' && sel[j] != '#' && sel[j] != '[' {
				j++
			}
			if sel[i] == '#' {
				c.id = sel[i+1 : j]
			} else {
				c.classes = append(c.classes, sel[i+1:j])
			}
			i = j
		case '[':
			end := strings.IndexByte(sel[i:], ']')
			if end < 0 {
				return c, false
			}
			body := sel[i+1 : i+end]
			a := attrSelector{key: strings.TrimSpace(body)}
			if k, v, ok := strings.Cut(body, "="); ok {
				a.key = strings.TrimSpace(k)
				a.value = strings.Trim(strings.TrimSpace(v), `"'`)
				a.exact = true
			}
			c.attrs = append(c.attrs, a)
			i += end + 1
		default:
			// pseudo-classes and anything else are unsupported
			return c, false
		}
	}
	return c, true
}

// matchCompoundSelector matches a single compound selector against a node.
// Compound selectors can be forms like:
//   - tag
//   - .class
//   - #id
//   - tag#id.class1.class2
//   - [attr] and [attr=value]
func matchCompoundSelector(node *html.Node, sel string) bool {
	if node == nil || node.Type != xhtml.ElementNode || sel == "" {
		return false
	}
	c, ok := parseCompound(sel)
	if !ok {
		return false
	}

	if c.tag != "" && c.tag != "*" && c.tag != node.Data {
		return false
	}
	if c.id != "" {
		if v, ok := html.Attr(node, "id"); !ok || v != c.id {
			return false
		}
	}
	for _, class := range c.classes {
		if !html.HasClass(node, class) {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := html.Attr(node, a.key)
		if !ok || (a.exact && v != a.value) {
			return false
		}
	}
	return true
}

// calculateSpecificity calculates the specificity of a CSS selector
func calculateSpecificity(selector string) Specificity {
	var s Specificity
	for _, part := range tokenizeSelector(selector) {
		if part == ">" {
			continue
		}
		c, _ := parseCompound(part)
		if c.id != "" {
			s.ID++
		}
		s.Class += len(c.classes) + len(c.attrs)
		if c.tag != "" && c.tag != "*" {
			s.Element++
		}
	}
	return s
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

// resolveFontSize rewrites font-size as absolute px, resolving em, rem,
// percentages and keywords against the parent size.
func resolveFontSize(style ComputedStyle, parent ComputedStyle) {
	parentSize := DefaultFontSize
	if ps, ok := parent["font-size"]; ok {
		parentSize = parsePx(ps.Value, DefaultFontSize)
	}
	prop, ok := style["font-size"]
	if !ok {
		style["font-size"] = StyleProperty{Name: "font-size", Value: formatPx(parentSize), Source: SourceInherited}
		return
	}
	v := strings.ToLower(strings.TrimSpace(prop.Value))
	size := parentSize
	switch {
	case strings.HasSuffix(v, "rem"):
		size = parseNumber(strings.TrimSuffix(v, "rem"), 1) * DefaultFontSize
	case strings.HasSuffix(v, "em"):
		size = parseNumber(strings.TrimSuffix(v, "em"), 1) * parentSize
	case strings.HasSuffix(v, "%"):
		size = parseNumber(strings.TrimSuffix(v, "%"), 100) / 100 * parentSize
	case strings.HasSuffix(v, "pt"):
		size = parseNumber(strings.TrimSuffix(v, "pt"), parentSize)
	case v == "smaller":
		size = parentSize / 1.2
	case v == "larger":
		size = parentSize * 1.2
	case v == "small":
		size = 13
	case v == "medium":
		size = DefaultFontSize
	case v == "large":
		size = 18
	default:
		size = parsePx(v, parentSize)
	}
	prop.Value = formatPx(size)
	style["font-size"] = prop
}

func parsePx(v string, def float64) float64 {
	return parseNumber(strings.TrimSuffix(strings.TrimSpace(v), "px"), def)
}

func parseNumber(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// defaultUserAgentStyles returns the default user agent stylesheet
func defaultUserAgentStyles() *css.Stylesheet {
	parser := css.NewParser()
	stylesheet, _ := parser.ParseString(`
		head, script, style, title, meta, link { display: none; }
		body { margin: 8px; }
		h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
		h2 { font-size: 1.5em; margin: 0.75em 0; font-weight: bold; }
		h3 { font-size: 1.17em; margin: 0.83em 0; font-weight: bold; }
		h4 { margin: 1.12em 0; font-weight: bold; }
		h5 { font-size: 0.83em; margin: 1.5em 0; font-weight: bold; }
		h6 { font-size: 0.75em; margin: 1.67em 0; font-weight: bold; }
		p { margin: 1em 0; }
		ul, ol { margin: 1em 0; padding-left: 40px; }
		ul { list-style-type: disc; }
		ol { list-style-type: decimal; }
		a { color: #0000EE; text-decoration: underline; }
		b, strong, th { font-weight: bold; }
		i, em { font-style: italic; }
		pre { white-space: pre; }
		table { border-collapse: separate; border-spacing: 2px; }
	`)
	return stylesheet
}
