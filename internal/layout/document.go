package layout

import (
	"fmt"
	"strings"

	"github.com/eladw917/cookbook-creator/internal/logging"
	"github.com/eladw917/cookbook-creator/internal/parser/css"
	"github.com/eladw917/cookbook-creator/internal/parser/html"
	"github.com/eladw917/cookbook-creator/internal/style"
	xhtml "golang.org/x/net/html"
)

// StylesheetLoader resolves an external stylesheet href to its text.
type StylesheetLoader interface {
	LoadStylesheet(href string) (string, error)
}

// Document is a parsed, styled and laid-out page markup.
type Document struct {
	HTML   *html.Document
	Styles map[*html.Node]style.ComputedStyle
	Root   *BlockBox
}

// LayoutMarkup parses markup, cascades its stylesheets and lays it out with
// the engine's options. External stylesheets are fetched through loader when
// it is not nil.
func (e *Engine) LayoutMarkup(markup string, loader StylesheetLoader) (*Document, error) {
	doc, err := html.NewParser().ParseString(markup)
	if err != nil {
		return nil, err
	}

	styleEngine := style.NewStyleEngine()
	for i, cssText := range e.collectDocumentStylesheets(doc.Root, loader) {
		sheet, err := css.NewParser().ParseString(cssText)
		if err != nil {
			return nil, fmt.Errorf("parse stylesheet %d: %w", i, err)
		}
		styleEngine.AddStylesheet(sheet)
	}
	styles := styleEngine.ComputeStyles(doc)
	e.SetStyles(styles)

	return &Document{HTML: doc, Styles: styles, Root: e.Layout(doc)}, nil
}

// collectDocumentStylesheets walks the node tree in document order and
// returns the author stylesheets (external <link rel="stylesheet"> and
// inline <style> blocks) in source order.
func (e *Engine) collectDocumentStylesheets(n *html.Node, loader StylesheetLoader) []string {
	var styles []string

	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == xhtml.ElementNode {
			switch strings.ToLower(cur.Data) {
			case "link":
				rel, _ := html.Attr(cur, "rel")
				href, _ := html.Attr(cur, "href")
				if href == "" || !strings.Contains(strings.ToLower(rel), "stylesheet") || loader == nil {
					break
				}
				cssText, err := loader.LoadStylesheet(href)
				if err != nil {
					e.logger.Warn("failed to load external stylesheet",
						logging.String("href", href), logging.Error(err))
					break
				}
				styles = append(styles, cssText)
			case "style":
				if cssText := strings.TrimSpace(html.Text(cur)); cssText != "" {
					styles = append(styles, cssText)
				}
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return styles
}
