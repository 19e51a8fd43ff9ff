package detect

import (
	"math"

	"github.com/reoring/tabskema"
)

// HeaderRow returns the 1-based ordinal, among rows accepted by keep, of the
// first row whose width is within 10% (at least one cell) of the mean width
// of the accepted rows. ok is false when no row qualifies.
func HeaderRow(sample [][]any, keep func(rowNumber int, cells []any) bool) (ordinal int, ok bool) {
	var kept [][]any
	for i, cells := range sample {
		if keep == nil || keep(i+1, cells) {
			kept = append(kept, cells)
		}
	}
	if len(kept) == 0 {
		return 0, false
	}
	total := 0
	for _, cells := range kept {
		total += len(cells)
	}
	width := int(math.RoundToEven(float64(total) / float64(len(kept))))
	drift := max(int(math.RoundToEven(float64(width)*0.1)), 1)
	for i, cells := range kept {
		if n := len(cells); n >= width-drift && n <= width+drift {
			return i + 1, true
		}
	}
	return 0, false
}

// DetectLayout returns a copy of base (nil means the default layout) with
// the header position inferred from sample. Rows base filters out (comments,
// blank rows) are not counted. A layout whose header rows were set
// explicitly is returned unchanged.
func (d *Detector) DetectLayout(sample [][]any, base *tabskema.Layout) *tabskema.Layout {
	out := base.Clone()
	if out == nil {
		out = &tabskema.Layout{}
	}
	if len(sample) == 0 || out.NoHeader || out.HeaderRows != nil {
		return out
	}
	n, ok := HeaderRow(sample, out.Keeps)
	switch {
	case !ok:
		out.NoHeader = true
	case n != 1:
		out.HeaderRows = []int{n}
	}
	return out
}
