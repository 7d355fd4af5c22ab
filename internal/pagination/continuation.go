package pagination

// Continuation breaks overflow instructions into follow-on pages. indices
// are instruction indices in ascending order, heights holds the measured
// height of every instruction, header is the continued-instructions heading
// height and available the content height of a continuation page. Every
// page receives at least one instruction, so an oversized instruction gets a
// page of its own rather than being dropped.
func Continuation(indices []int, heights []float64, header, available float64) [][]int {
	var pages [][]int
	var current []int
	running := header
	for _, idx := range indices {
		h := 0.0
		if idx >= 0 && idx < len(heights) {
			h = heights[idx]
		}
		if len(current) > 0 && running+h > available {
			pages = append(pages, current)
			current = nil
			running = header
		}
		current = append(current, idx)
		running += h
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return pages
}
