package render

import (
	"testing"
	"time"

	"github.com/AYColumbia/gridgrab/dom"
	"github.com/AYColumbia/gridgrab/grid"
	"github.com/AYColumbia/gridgrab/selection"
)

const fixtureTable = `
<table>
	<thead><tr><th>A</th><th>B</th><th>C</th><th>D</th></tr></thead>
	<tbody>
		<tr><td>10</td><td>$1,234.50</td><td>x1</td><td>d1</td></tr>
		<tr><td>20</td><td>42%</td><td>x2</td><td>d2</td></tr>
		<tr><td>30</td><td>text</td><td>x3</td><td>d3</td></tr>
		<tr><td>40</td><td>2024-01-15</td><td>x4</td><td>d4</td></tr>
	</tbody>
</table>`

func newTestPipeline(t *testing.T, cfg Config) (*Pipeline, *selection.Engine, *dom.Node, *fakeClock, *manualScheduler) {
	t.Helper()
	doc, err := dom.Parse(fixtureTable)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	engine := selection.NewEngine(selection.Config{}, grid.NewResolver())
	engine.SetScope(doc.QuerySelector("td"))
	clock := newFakeClock()
	sched := &manualScheduler{}
	p := NewPipeline(cfg, engine, clock.Now, sched)
	return p, engine, doc, clock, sched
}

func countHighlighted(doc *dom.Node, class string) int {
	return len(doc.QuerySelectorAll("." + class))
}

func TestPipeline_PaintAppliesHighlightClass(t *testing.T) {
	p, engine, doc, _, _ := newTestPipeline(t, Config{})

	if _, err := engine.AddRectangle(selection.Coord{Row: 0, Col: 0}, selection.Coord{Row: 2, Col: 1}); err != nil {
		t.Fatal(err)
	}
	touched := p.PaintNow()
	if touched != 6 {
		t.Errorf("expected 6 cells touched, got %d", touched)
	}
	if got := countHighlighted(doc, DefaultHighlightClass); got != 6 {
		t.Errorf("expected 6 highlighted cells, got %d", got)
	}
}

func TestPipeline_PaintIsIdempotent(t *testing.T) {
	p, engine, doc, _, _ := newTestPipeline(t, Config{})

	engine.AddRectangle(selection.Coord{Row: 0, Col: 0}, selection.Coord{Row: 1, Col: 1})
	p.PaintNow()
	before := countHighlighted(doc, DefaultHighlightClass)

	// A second paint with an unchanged selection touches nothing.
	if touched := p.PaintNow(); touched != 0 {
		t.Errorf("expected empty diff on second paint, got %d touched cells", touched)
	}
	if got := countHighlighted(doc, DefaultHighlightClass); got != before {
		t.Errorf("expected highlight count unchanged at %d, got %d", before, got)
	}
}

func TestPipeline_UnpaintsClearedCells(t *testing.T) {
	p, engine, doc, _, _ := newTestPipeline(t, Config{})

	engine.AddRectangle(selection.Coord{Row: 0, Col: 0}, selection.Coord{Row: 1, Col: 1})
	p.PaintNow()

	engine.ReplaceWithRectangle(selection.Coord{Row: 3, Col: 3}, selection.Coord{Row: 3, Col: 3})
	p.PaintNow()

	if got := countHighlighted(doc, DefaultHighlightClass); got != 1 {
		t.Errorf("expected 1 highlighted cell after replacement, got %d", got)
	}
}

func TestPipeline_PerFlushCapDefersRemainder(t *testing.T) {
	p, engine, _, _, sched := newTestPipeline(t, Config{MaxCellsPerFlush: 4})

	engine.AddRectangle(selection.Coord{Row: 0, Col: 0}, selection.Coord{Row: 2, Col: 2}) // 9 cells
	if touched := p.PaintNow(); touched != 4 {
		t.Errorf("expected first flush capped at 4, got %d", touched)
	}
	if p.PendingCells() != 5 {
		t.Errorf("expected 5 deferred cells, got %d", p.PendingCells())
	}
	if len(sched.queue) != 1 {
		t.Fatalf("expected a deferred tick to be scheduled, got %d", len(sched.queue))
	}

	sched.Fire()
	sched.Fire()
	if p.PendingCells() != 0 {
		t.Errorf("expected all deferred cells painted, got %d pending", p.PendingCells())
	}
}

func TestPipeline_SkipsUnresolvableCoordinates(t *testing.T) {
	p, engine, doc, _, _ := newTestPipeline(t, Config{})

	engine.AddRectangle(selection.Coord{Row: 0, Col: 0}, selection.Coord{Row: 4, Col: 0})
	// The host page removes the last row before the paint lands.
	rows := grid.Generic{}.Rows(doc.QuerySelector("table"))
	rows[4].Parent.RemoveChild(rows[4])
	engine.Resolver().Refresh()

	touched := p.PaintNow()
	if touched != 4 {
		t.Errorf("expected 4 resolvable cells painted, got %d", touched)
	}
	// The stale coordinate stays in the selection.
	if engine.Selection().Len() != 5 {
		t.Errorf("expected stale coordinate to remain selected, got %d", engine.Selection().Len())
	}
}

func TestPipeline_ThrottledPaintCoalesces(t *testing.T) {
	p, engine, doc, clock, sched := newTestPipeline(t, Config{})

	engine.AddRectangle(selection.Coord{Row: 0, Col: 0}, selection.Coord{Row: 0, Col: 1})
	p.Paint() // leading, paints immediately
	if got := countHighlighted(doc, DefaultHighlightClass); got != 2 {
		t.Fatalf("expected leading paint to land, got %d highlighted", got)
	}

	engine.AddRectangle(selection.Coord{Row: 1, Col: 0}, selection.Coord{Row: 1, Col: 1})
	clock.Advance(10 * time.Millisecond)
	p.Paint() // within the window: trailing
	p.Paint()
	if got := countHighlighted(doc, DefaultHighlightClass); got != 2 {
		t.Fatalf("expected burst paints deferred, got %d highlighted", got)
	}
	sched.Fire()
	if got := countHighlighted(doc, DefaultHighlightClass); got != 4 {
		t.Errorf("expected trailing paint to land, got %d highlighted", got)
	}
}

func TestPipeline_BoundingBox(t *testing.T) {
	p, engine, doc, _, _ := newTestPipeline(t, Config{})
	g := grid.Generic{}
	table := doc.QuerySelector("table")

	if _, ok := p.BoundingBox(); ok {
		t.Error("expected no bounding box without an active drag")
	}

	start := g.Cell(table, 1, 0)
	current := g.Cell(table, 2, 1)
	start.SetRect(dom.Rect{X: 0, Y: 20, Width: 40, Height: 20})
	current.SetRect(dom.Rect{X: 40, Y: 40, Width: 40, Height: 20})

	if err := engine.BeginDrag(start); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.UpdateDrag(current, false); err != nil {
		t.Fatal(err)
	}

	box, ok := p.BoundingBox()
	if !ok {
		t.Fatal("expected a bounding box during drag")
	}
	want := dom.Rect{X: 0, Y: 20, Width: 80, Height: 40}
	if box != want {
		t.Errorf("expected box %+v, got %+v", want, box)
	}
}

func TestPipeline_Reset(t *testing.T) {
	p, engine, _, _, _ := newTestPipeline(t, Config{MaxCellsPerFlush: 2})

	engine.AddRectangle(selection.Coord{Row: 0, Col: 0}, selection.Coord{Row: 2, Col: 2})
	p.PaintNow()
	if p.PendingCells() == 0 {
		t.Fatal("expected deferred cells")
	}
	p.Reset()
	if p.PendingCells() != 0 {
		t.Error("expected deferred work discarded")
	}
}

func TestPipeline_DefaultSchedulerDefersToHostTick(t *testing.T) {
	doc, err := dom.Parse(fixtureTable)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	engine := selection.NewEngine(selection.Config{}, grid.NewResolver())
	engine.SetScope(doc.QuerySelector("td"))
	clock := newFakeClock()
	// nil scheduler: trailing flushes run only on Tick, on this goroutine.
	p := NewPipeline(Config{}, engine, clock.Now, nil)

	engine.AddRectangle(selection.Coord{Row: 0, Col: 0}, selection.Coord{Row: 0, Col: 1})
	p.Paint() // leading
	if got := countHighlighted(doc, DefaultHighlightClass); got != 2 {
		t.Fatalf("expected leading paint to land, got %d highlighted", got)
	}

	engine.AddRectangle(selection.Coord{Row: 1, Col: 0}, selection.Coord{Row: 1, Col: 1})
	clock.Advance(10 * time.Millisecond)
	p.Paint() // within the window: deferred
	if p.Tick() != 0 {
		t.Error("expected no flush before the trailing delay elapses")
	}
	if got := countHighlighted(doc, DefaultHighlightClass); got != 2 {
		t.Fatalf("expected deferred paint unapplied, got %d highlighted", got)
	}

	clock.Advance(60 * time.Millisecond)
	if p.Tick() != 1 {
		t.Error("expected one deferred flush to run on tick")
	}
	if got := countHighlighted(doc, DefaultHighlightClass); got != 4 {
		t.Errorf("expected trailing paint to land on tick, got %d highlighted", got)
	}
}

func TestPipeline_ResetStripsStaleHighlights(t *testing.T) {
	p, engine, doc, _, _ := newTestPipeline(t, Config{})

	engine.AddRectangle(selection.Coord{Row: 0, Col: 0}, selection.Coord{Row: 1, Col: 1})
	p.PaintNow()
	if got := countHighlighted(doc, DefaultHighlightClass); got != 4 {
		t.Fatalf("expected 4 highlighted cells, got %d", got)
	}

	// The failure path must not leave painted cells behind.
	engine.EmergencyReset()
	p.Reset()
	if got := countHighlighted(doc, DefaultHighlightClass); got != 0 {
		t.Errorf("expected highlights stripped after reset, got %d", got)
	}
	if p.PendingCells() != 0 {
		t.Errorf("expected no deferred work after reset, got %d", p.PendingCells())
	}
}
