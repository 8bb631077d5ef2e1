package render

import (
	"math"

	"github.com/AYColumbia/gridgrab/classify"
	"github.com/AYColumbia/gridgrab/selection"
)

// Stats summarizes the current selection. Cardinalities are always exact;
// the numeric aggregate is computed over at most StatsCellCap cells and
// Partial reports when the cap truncated it.
type Stats struct {
	Cells int
	Rows  int
	Cols  int

	NumericCells int
	Sum          float64
	Avg          float64
	Min          float64
	Max          float64

	// HasNumeric is true when at least one visited cell classified as
	// number, currency or percentage.
	HasNumeric bool
	// HasSpread is true when more than one numeric cell was aggregated, so
	// Avg/Min/Max are meaningful.
	HasSpread bool
	// Partial is true when the numeric aggregate was truncated by the cap.
	Partial bool
}

// Summarize computes stats over the engine's current selection.
func (p *Pipeline) Summarize() Stats {
	var st Stats
	sel := p.engine.Selection()
	st.Cells = sel.Len()

	rows := make(map[int]struct{})
	cols := make(map[int]struct{})
	visited := 0
	st.Min = math.Inf(1)
	st.Max = math.Inf(-1)

	sel.Each(func(c selection.Coord) bool {
		rows[c.Row] = struct{}{}
		cols[c.Col] = struct{}{}
		if visited >= p.cfg.StatsCellCap {
			st.Partial = true
			return true
		}
		visited++
		cell := p.engine.CellAt(c)
		if cell == nil {
			return true
		}
		text := p.engine.Resolver().TextOf(cell)
		if !classify.Classify(text).Numeric() {
			return true
		}
		v := classify.ParseNumeric(text)
		if math.IsNaN(v) {
			return true
		}
		st.NumericCells++
		st.Sum += v
		if v < st.Min {
			st.Min = v
		}
		if v > st.Max {
			st.Max = v
		}
		return true
	})

	st.Rows = len(rows)
	st.Cols = len(cols)
	st.HasNumeric = st.NumericCells > 0
	if st.HasNumeric {
		st.Avg = st.Sum / float64(st.NumericCells)
	}
	st.HasSpread = st.NumericCells > 1
	if !st.HasNumeric {
		st.Min = 0
		st.Max = 0
	}
	return st
}
