package sequence

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/eladw917/cookbook-creator/internal/res"
)

// ResourcesReady returns a ReadyFunc that loads every image and stylesheet
// the markup references into loader's cache, so layout and rendering never
// fetch mid-pass. Fonts are read when their registry is built.
func ResourcesReady(loader *res.Loader) ReadyFunc {
	return func(ctx context.Context, markup string) error {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
		if err != nil {
			return fmt.Errorf("scan markup: %w", err)
		}
		return loader.Preload(ctx, References(doc))
	}
}

// References lists the image and stylesheet URLs of a document in document
// order, without duplicates.
func References(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}
	doc.Find(`img[src], link[rel~="stylesheet"][href]`).Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "img" {
			add(s.AttrOr("src", ""))
			return
		}
		add(s.AttrOr("href", ""))
	})
	return urls
}
