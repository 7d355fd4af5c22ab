package text

import (
	"codeberg.org/go-pdf/fpdf"
)

// Approximate vertical font metrics as a fraction of the font size.
const (
	AscentRatio  = 0.8
	DescentRatio = 0.2
)

// Metrics measures strings with fpdf's font metrics. Each Metrics owns its
// own fpdf document, so concurrent renders never share measurement state; a
// single Metrics is not safe for concurrent use.
type Metrics struct {
	pdf      *fpdf.Fpdf
	registry *Registry
	widths   map[widthKey]float64
}

type widthKey struct {
	family, style string
	size          float64
	text          string
}

// NewMetrics creates a measurement context with every font of registry
// registered.
func NewMetrics(registry *Registry) *Metrics {
	pdf := fpdf.New("P", "pt", "A4", "")
	registry.Register(pdf)
	pdf.SetFont("Helvetica", "", 12)
	return &Metrics{pdf: pdf, registry: registry, widths: make(map[widthKey]float64)}
}

// Registry returns the font registry the metrics were built from.
func (m *Metrics) Registry() *Registry {
	return m.registry
}

// Width returns the advance width of s set in f, in points.
func (m *Metrics) Width(s string, f Font) float64 {
	if s == "" || f.Size <= 0 {
		return 0
	}
	key := widthKey{f.Family, f.Style, f.Size, s}
	if w, ok := m.widths[key]; ok {
		return w
	}
	m.pdf.SetFont(f.Family, f.Style, f.Size)
	w := m.pdf.GetStringWidth(Encode(f, s))
	m.widths[key] = w
	return w
}

// Err reports a font error recorded by the underlying document, such as an
// unreadable TrueType file.
func (m *Metrics) Err() error {
	return m.pdf.Error()
}
