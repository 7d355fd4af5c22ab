package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/eladw917/cookbook-creator/internal/parser/html"
	"github.com/eladw917/cookbook-creator/internal/style"
	"github.com/eladw917/cookbook-creator/internal/text"
	xhtml "golang.org/x/net/html"
)

// inlineRun represents a contiguous text run with a specific style
type inlineRun struct {
	text      string
	style     style.ComputedStyle
	lineBreak bool
}

// token is a word, a collapsed space or a forced break of an inline run.
type token struct {
	text      string
	style     style.ComputedStyle
	font      text.Font
	width     float64
	isSpace   bool
	lineBreak bool
	fs        float64
	lh        float64
}

// layoutInline lays out the inline content of nodes as wrapped lines inside
// container, starting at (x, y) with the given line width. The text boxes are
// appended to container; the height of the lines is returned.
func (e *Engine) layoutInline(container *BlockBox, nodes []*html.Node, x, y, maxWidth float64) float64 {
	var runs []inlineRun
	for _, n := range nodes {
		e.collectInlineRuns(n, &runs)
	}
	tokens := e.tokenize(runs)
	if len(tokens) == 0 {
		return 0
	}

	align := strings.ToLower(container.Style.Get("text-align"))
	curY := y
	var line []token
	lineWidth := 0.0

	emitLine := func(forced bool) {
		for len(line) > 0 && line[len(line)-1].isSpace {
			lineWidth -= line[len(line)-1].width
			line = line[:len(line)-1]
		}
		if len(line) == 0 {
			if forced {
				fs := fontSizeOf(container.Style)
				curY += lineHeightOf(container.Style, fs)
			}
			return
		}

		ascent, descent := 0.0, 0.0
		for _, tk := range line {
			half := (tk.lh - tk.fs) / 2
			if a := half + text.AscentRatio*tk.fs; a > ascent {
				ascent = a
			}
			if d := half + text.DescentRatio*tk.fs; d > descent {
				descent = d
			}
		}
		lineHeight := ascent + descent
		baseline := curY + ascent

		offsetX := 0.0
		switch align {
		case "right", "end":
			offsetX = maxWidth - lineWidth
		case "center":
			offsetX = (maxWidth - lineWidth) / 2
		}
		if offsetX < 0 {
			offsetX = 0
		}

		cx := x + offsetX
		var current *InlineBox
		for _, tk := range line {
			if current != nil && current.Font == tk.font && sameColor(current.Style, tk.style) {
				current.Text += tk.text
				current.Width += tk.width
				cx += tk.width
				continue
			}
			current = &InlineBox{
				Style:    tk.style,
				X:        cx,
				Y:        curY,
				Width:    tk.width,
				Height:   lineHeight,
				Text:     tk.text,
				Font:     tk.font,
				Baseline: baseline,
			}
			container.Children = append(container.Children, current)
			cx += tk.width
		}

		curY += lineHeight
		line = line[:0]
		lineWidth = 0
	}

	// Lines only break at spaces, so a word split across styled runs
	// (<b>2</b>cups) stays on one line.
	pendingSpace := false
	for _, tk := range tokens {
		if tk.lineBreak {
			emitLine(true)
			pendingSpace = false
			continue
		}
		if tk.isSpace {
			pendingSpace = len(line) > 0
			continue
		}

		if pendingSpace {
			pendingSpace = false
			space := e.spaceToken(tk)
			if lineWidth+space.width+tk.width > maxWidth && len(line) > 0 {
				emitLine(false)
			} else if !isClosingPunct(tk.text) {
				line = append(line, space)
				lineWidth += space.width
			}
		}

		line = append(line, tk)
		lineWidth += tk.width
	}
	emitLine(false)

	return curY - y
}

func (e *Engine) spaceToken(next token) token {
	return token{
		text:    " ",
		style:   next.style,
		font:    next.font,
		fs:      next.fs,
		lh:      next.lh,
		width:   e.metrics.Width(" ", next.font),
		isSpace: true,
	}
}

func isClosingPunct(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && strings.ContainsRune(",.;:!?)]}»", r)
}

func sameColor(a, b style.ComputedStyle) bool {
	return a.Get("color") == b.Get("color") &&
		a.Get("background-color") == b.Get("background-color") &&
		a.Get("text-decoration") == b.Get("text-decoration")
}

// tokenize splits runs into words and collapsed spaces measured with the
// engine's metrics.
func (e *Engine) tokenize(runs []inlineRun) []token {
	var out []token
	for _, run := range runs {
		fs := fontSizeOf(run.style)
		lh := lineHeightOf(run.style, fs)
		if run.lineBreak {
			out = append(out, token{lineBreak: true, style: run.style, fs: fs, lh: lh})
			continue
		}
		font := e.resolveFont(run.style, fs)
		for _, t := range splitTokens(text.Transform(run.text, run.style.Get("text-transform"))) {
			tk := token{text: t, style: run.style, font: font, fs: fs, lh: lh}
			if isAllSpace(t) {
				tk.text = " "
				tk.isSpace = true
			}
			tk.width = e.metrics.Width(tk.text, font)
			out = append(out, tk)
		}
	}
	return out
}

func (e *Engine) resolveFont(st style.ComputedStyle, fs float64) text.Font {
	return e.metrics.Registry().Resolve(st.Get("font-family"), st.Get("font-weight"), st.Get("font-style"), fs)
}

// collectInlineRuns traverses n, collecting text runs with the style of
// their parent element.
func (e *Engine) collectInlineRuns(n *html.Node, out *[]inlineRun) {
	if n == nil {
		return
	}
	switch n.Type {
	case xhtml.TextNode:
		txt := normalizeWhitespace(n.Data)
		if txt == "" {
			return
		}
		*out = append(*out, inlineRun{text: txt, style: e.styleOf(n.Parent)})
	case xhtml.ElementNode:
		st := e.styleOf(n)
		if st.Get("display") == "none" {
			return
		}
		if n.Data == "br" {
			*out = append(*out, inlineRun{lineBreak: true, style: st})
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			e.collectInlineRuns(ch, out)
		}
	}
}

// splitTokens splits text into tokens of words and spaces
func splitTokens(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string
	var cur []rune
	curIsSpace := false

	for i, r := range []rune(s) {
		isSp := unicode.IsSpace(r)
		if i > 0 && isSp != curIsSpace {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
		}
		curIsSpace = isSp
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		tokens = append(tokens, string(cur))
	}
	return tokens
}

func isAllSpace(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// normalizeWhitespace collapses runs of whitespace into a single space.
// Unlike strings.TrimSpace, it doesn't remove leading/trailing spaces.
func normalizeWhitespace(s string) string {
	var result []rune
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result = append(result, ' ')
			}
			lastWasSpace = true
		} else {
			result = append(result, r)
			lastWasSpace = false
		}
	}

	return string(result)
}

// hasInlineContent reports whether nodes produce any text or line break.
func (e *Engine) hasInlineContent(nodes []*html.Node) bool {
	var runs []inlineRun
	for _, n := range nodes {
		e.collectInlineRuns(n, &runs)
	}
	for _, r := range runs {
		if r.lineBreak || strings.TrimSpace(r.text) != "" {
			return true
		}
	}
	return false
}
