package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/eladw917/cookbook-creator/internal/parser/html"
	"github.com/eladw917/cookbook-creator/internal/style"
	xhtml "golang.org/x/net/html"
)

// colSpec is one cell's contribution to the column grid.
type colSpec struct {
	width    float64
	span     int
	hasWidth bool
}

// layoutTable lays out the rows of table inside its content box and returns
// the content height. Column widths are fixed before any cell is laid out;
// each cell is then laid out at its column width and stretched to the
// tallest cell of its row.
func (e *Engine) layoutTable(table *BlockBox, x, y, width float64) float64 {
	rows := tableRows(table.Node)
	if len(rows) == 0 {
		return 0
	}

	gap := 0.0
	if v, ok := extractGap(table.Style, width); ok {
		gap = math.Max(0, v)
	}

	colWidths := e.computeTableColumnWidths(table.Node, rows, width, gap)
	cursor := y
	for i, tr := range rows {
		if i > 0 {
			cursor += gap
		}
		row := e.layoutTableRow(tr, x, cursor, width, gap, colWidths)
		table.Children = append(table.Children, row)
		cursor += row.Height
	}
	return cursor - y
}

// tableRows returns the tr elements of a table, looking through thead,
// tbody and tfoot.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for n := table.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xhtml.ElementNode {
			continue
		}
		switch strings.ToLower(n.Data) {
		case "tr":
			rows = append(rows, n)
		case "thead", "tbody", "tfoot":
			for tr := n.FirstChild; tr != nil; tr = tr.NextSibling {
				if html.IsElement(tr, "tr") {
					rows = append(rows, tr)
				}
			}
		}
	}
	return rows
}

func (e *Engine) layoutTableRow(tr *html.Node, x, y, width, gap float64, colWidths []float64) *BlockBox {
	row := NewBlockBox(tr, e.styleOf(tr))
	row.X, row.Y, row.Width = x, y, width

	colX := make([]float64, len(colWidths))
	cx := x
	for i, w := range colWidths {
		colX[i] = cx
		cx += w + gap
	}

	var cells []*BlockBox
	colIdx := 0
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if !isCell(c) {
			continue
		}
		st := e.styleOf(c)
		if st.Get("display") == "none" {
			continue
		}
		if colIdx >= len(colWidths) {
			e.logger.Debug("table row has more cells than columns", "columns", len(colWidths))
			break
		}
		span := colspan(c)
		w := 0.0
		for j := 0; j < span && colIdx+j < len(colWidths); j++ {
			w += colWidths[colIdx+j]
		}
		if span > 1 {
			w += gap * float64(span-1)
		}

		cell := e.layoutBlock(c, st, colX[colIdx], y, w, true)
		cells = append(cells, cell)
		row.Children = append(row.Children, cell)
		colIdx += span
	}

	maxH := 0.0
	for _, cell := range cells {
		maxH = math.Max(maxH, cell.Height)
	}
	for _, cell := range cells {
		cell.Height = maxH
	}
	row.Height = maxH
	return row
}

// computeTableColumnWidths determines consistent column widths for a table.
// It prefers widths declared on the first header row (<thead> > <tr>) if
// present, otherwise the first row. It honors percentage and px widths and
// supports colspan by dividing the declared width evenly across spanned
// columns. Columns without a declared width share what is left.
func (e *Engine) computeTableColumnWidths(table *html.Node, rows []*html.Node, totalWidth, gap float64) []float64 {
	scanTR := func(tr *html.Node) ([]colSpec, int) {
		var specs []colSpec
		cols := 0
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if !isCell(c) {
				continue
			}
			span := colspan(c)
			spec := colSpec{span: span}
			if w := e.styleOf(c).Get("width"); w != "" && w != "auto" {
				spec.width = parseLength(w, totalWidth, fontSizeOf(e.styleOf(c)), 0)
			}
			if spec.width <= 0 {
				if v, ok := html.Attr(c, "width"); ok {
					spec.width = parseLength(v, totalWidth, style.DefaultFontSize, 0)
				}
			}
			spec.hasWidth = spec.width > 0
			specs = append(specs, spec)
			cols += span
		}
		return specs, cols
	}

	var specs []colSpec
	cols := 0
	for n := table.FirstChild; n != nil && cols == 0; n = n.NextSibling {
		if html.IsElement(n, "thead") {
			for tr := n.FirstChild; tr != nil && cols == 0; tr = tr.NextSibling {
				if html.IsElement(tr, "tr") {
					specs, cols = scanTR(tr)
				}
			}
		}
	}
	if cols == 0 {
		for _, tr := range rows {
			if specs, cols = scanTR(tr); cols > 0 {
				break
			}
		}
	}
	if cols == 0 {
		return nil
	}

	effective := totalWidth - gap*float64(cols-1)
	colWidths := make([]float64, cols)
	idx := 0
	declared := 0.0
	for _, s := range specs {
		for j := 0; j < s.span && idx < cols; j++ {
			if s.hasWidth {
				colWidths[idx] = s.width / float64(s.span)
				declared += colWidths[idx]
			}
			idx++
		}
	}

	remaining := math.Max(0, effective-declared)
	zero := 0
	for _, w := range colWidths {
		if w == 0 {
			zero++
		}
	}
	if zero > 0 {
		each := remaining / float64(zero)
		for i := range colWidths {
			if colWidths[i] == 0 {
				colWidths[i] = each
			}
		}
	}
	return colWidths
}

// extractGap reads the horizontal cell spacing of a table style:
// border-spacing, then gap, then column-gap.
func extractGap(st style.ComputedStyle, width float64) (float64, bool) {
	fs := fontSizeOf(st)
	if bs := strings.Fields(st.Get("border-spacing")); len(bs) > 0 {
		return parseLength(bs[0], width, fs, 0), true
	}
	if g := strings.Fields(st.Get("gap")); len(g) > 0 {
		return parseLength(g[len(g)-1], width, fs, 0), true
	}
	if cg := st.Get("column-gap"); cg != "" {
		return parseLength(cg, width, fs, 0), true
	}
	return 0, false
}

func isCell(n *html.Node) bool {
	return html.IsElement(n, "td") || html.IsElement(n, "th")
}

func colspan(n *html.Node) int {
	if v, ok := html.Attr(n, "colspan"); ok {
		if s, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && s > 1 {
			return s
		}
	}
	return 1
}
