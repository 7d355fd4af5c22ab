// Package export converts recipes into formats other than PDF.
package export

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/eladw917/cookbook-creator/internal/compose"
	"github.com/eladw917/cookbook-creator/internal/recipe"
)

// Markdown renders a recipe as Markdown.
type Markdown struct {
	Composer *compose.Composer
}

// Recipe converts the recipe's export markup into Markdown.
func (m *Markdown) Recipe(r *recipe.Recipe) (string, error) {
	markup, err := m.Composer.Export(r)
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}
