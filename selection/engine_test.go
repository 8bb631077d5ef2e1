package selection

import (
	"testing"

	"github.com/AYColumbia/gridgrab/dom"
	"github.com/AYColumbia/gridgrab/grid"
)

const fixtureTable = `
<table>
	<thead><tr><th>A</th><th>B</th><th>C</th><th>D</th></tr></thead>
	<tbody>
		<tr><td>a1</td><td>b1</td><td>c1</td><td>d1</td></tr>
		<tr><td>a2</td><td>b2</td><td>c2</td><td>d2</td></tr>
		<tr><td>a3</td><td>b3</td><td>c3</td><td>d3</td></tr>
		<tr><td>a4</td><td>b4</td><td>c4</td><td>d4</td></tr>
	</tbody>
</table>`

// newTestEngine builds an engine scoped to a 5-row (1 header + 4 body),
// 4-column table.
func newTestEngine(t *testing.T, cfg Config) (*Engine, *dom.Node) {
	t.Helper()
	doc, err := dom.Parse(fixtureTable)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	e := NewEngine(cfg, grid.NewResolver())
	e.SetScope(doc.QuerySelector("td"))
	if e.Scope() == nil || e.Scope().Tag() != "table" {
		t.Fatal("expected table scope")
	}
	return e, doc
}

func TestAddRectangle_Area(t *testing.T) {
	corners := []struct {
		a, b Coord
		want int
	}{
		{Coord{0, 0}, Coord{2, 1}, 6},
		{Coord{2, 1}, Coord{0, 0}, 6}, // reversed corners
		{Coord{0, 1}, Coord{2, 0}, 6}, // mixed corners
		{Coord{3, 3}, Coord{3, 3}, 1},
	}
	for _, tt := range corners {
		e, _ := newTestEngine(t, Config{})
		n, err := e.AddRectangle(tt.a, tt.b)
		if err != nil {
			t.Fatalf("AddRectangle(%v,%v) failed: %v", tt.a, tt.b, err)
		}
		if n != tt.want || e.Selection().Len() != tt.want {
			t.Errorf("AddRectangle(%v,%v): added %d (len %d), want %d", tt.a, tt.b, n, e.Selection().Len(), tt.want)
		}
		// Every added coordinate lies within the normalized bounds.
		tl, br := normalizeRect(tt.a, tt.b)
		e.Selection().Each(func(c Coord) bool {
			if c.Row < tl.Row || c.Row > br.Row || c.Col < tl.Col || c.Col > br.Col {
				t.Errorf("coordinate %v outside bounds %v-%v", c, tl, br)
			}
			return true
		})
	}
}

func TestAddRectangle_CountsOnlyMissing(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	if _, err := e.AddRectangle(Coord{0, 0}, Coord{1, 1}); err != nil {
		t.Fatal(err)
	}
	n, err := e.AddRectangle(Coord{1, 1}, Coord{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 newly added cells, got %d", n)
	}
	if e.Selection().Len() != 7 {
		t.Errorf("expected selection of 7, got %d", e.Selection().Len())
	}
}

func TestCapacity_AtomicRejection(t *testing.T) {
	e, _ := newTestEngine(t, Config{MaxSelectionSize: 100})

	// 101 additive single-cell operations against a ceiling of 100.
	var lastErr error
	for i := 0; i < 101; i++ {
		_, err := e.AddRectangle(Coord{i, 0}, Coord{i, 0})
		if err != nil {
			lastErr = err
		}
	}
	if e.Selection().Len() != 100 {
		t.Errorf("expected selection of exactly 100, got %d", e.Selection().Len())
	}
	if !IsError(lastErr, CapacityExceeded) {
		t.Errorf("expected CapacityExceeded from the 101st operation, got %v", lastErr)
	}
}

func TestCapacity_SelectionUnchangedOnFailure(t *testing.T) {
	e, _ := newTestEngine(t, Config{MaxSelectionSize: 4})
	if _, err := e.AddRectangle(Coord{0, 0}, Coord{0, 2}); err != nil {
		t.Fatal(err)
	}
	before := e.Selection().Len()

	if _, err := e.AddRectangle(Coord{1, 0}, Coord{1, 3}); !IsError(err, CapacityExceeded) {
		t.Fatalf("expected CapacityExceeded, got %v", err)
	}
	if e.Selection().Len() != before {
		t.Errorf("expected selection unchanged at %d, got %d", before, e.Selection().Len())
	}
	if _, err := e.ReplaceWithRectangle(Coord{0, 0}, Coord{4, 3}); !IsError(err, CapacityExceeded) {
		t.Fatalf("expected CapacityExceeded from oversized replace, got %v", err)
	}
	if e.Selection().Len() != before {
		t.Errorf("expected replace rejection to leave selection at %d, got %d", before, e.Selection().Len())
	}
}

func TestReplaceWithRectangle(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	if _, err := e.AddRectangle(Coord{0, 0}, Coord{1, 1}); err != nil {
		t.Fatal(err)
	}
	n, err := e.ReplaceWithRectangle(Coord{3, 2}, Coord{4, 3})
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || e.Selection().Len() != 4 {
		t.Errorf("expected replacement selection of 4, got %d", e.Selection().Len())
	}
	if e.Selection().Has(Coord{0, 0}) {
		t.Error("expected prior selection to be cleared")
	}
}

func TestSelectColumn_ExcludesHeaderRows(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	n, err := e.SelectColumn(2, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || e.Selection().Len() != 4 {
		t.Fatalf("expected 4 body cells, got %d", n)
	}
	// Row 0 is the header row; it must not appear in the selection.
	if e.Selection().Has(Coord{0, 2}) {
		t.Error("expected header row to be excluded")
	}
	for _, c := range e.Selection().Coords() {
		if c.Col != 2 {
			t.Errorf("expected column 2 only, got %v", c)
		}
	}
}

func TestSelectColumn_IncludesHeaderRows(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	n, err := e.SelectColumn(2, true)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("expected 5 cells including the header, got %d", n)
	}
	if !e.Selection().Has(Coord{0, 2}) {
		t.Error("expected header cell in selection")
	}
}

func TestSelectRow(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	n, err := e.SelectRow(2)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || e.Selection().Len() != 4 {
		t.Fatalf("expected 4 cells, got %d", n)
	}
	if _, err := e.SelectRow(99); !IsError(err, ResolutionMiss) {
		t.Errorf("expected ResolutionMiss for out-of-range row, got %v", err)
	}
}

func TestSelectColumn_NoScope(t *testing.T) {
	e := NewEngine(Config{}, grid.NewResolver())
	if _, err := e.SelectColumn(0, false); !IsError(err, NoScope) {
		t.Errorf("expected NoScope, got %v", err)
	}
}

func TestDrag_Lifecycle(t *testing.T) {
	e, doc := newTestEngine(t, Config{})
	g := grid.Generic{}
	table := doc.QuerySelector("table")

	start := g.Cell(table, 1, 0)
	if err := e.BeginDrag(start); err != nil {
		t.Fatalf("BeginDrag failed: %v", err)
	}
	if !e.Drag().Active {
		t.Fatal("expected drag to be active")
	}
	if e.Drag().Start != (Coord{1, 0}) {
		t.Errorf("expected start (1,0), got %v", e.Drag().Start)
	}

	changed, err := e.UpdateDrag(g.Cell(table, 3, 1), false)
	if err != nil || !changed {
		t.Fatalf("expected UpdateDrag to change selection, got changed=%v err=%v", changed, err)
	}
	if e.Selection().Len() != 6 {
		t.Errorf("expected 3x2 rectangle of 6 cells, got %d", e.Selection().Len())
	}

	e.EndDrag()
	if e.Drag().Active {
		t.Error("expected drag to be inactive after EndDrag")
	}
	if e.Selection().Len() != 6 {
		t.Error("expected selection to survive EndDrag")
	}
}

func TestUpdateDrag_NoOpOnSameCoordinate(t *testing.T) {
	e, doc := newTestEngine(t, Config{})
	g := grid.Generic{}
	table := doc.QuerySelector("table")

	if err := e.BeginDrag(g.Cell(table, 1, 0)); err != nil {
		t.Fatal(err)
	}
	cell := g.Cell(table, 2, 1)
	if changed, _ := e.UpdateDrag(cell, false); !changed {
		t.Fatal("expected first update to change selection")
	}

	notified := false
	e.OnChange(func(*Set, *dom.Node) { notified = true })
	changed, err := e.UpdateDrag(cell, false)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("expected no-op for unchanged coordinate")
	}
	if notified {
		t.Error("expected no notification for unchanged coordinate")
	}
	add, remove := e.DrainPaint()
	e.UpdateDrag(cell, false)
	if a2, r2 := e.DrainPaint(); len(a2) != 0 || len(r2) != 0 {
		t.Error("expected no repaint scheduling for unchanged coordinate")
	}
	_ = add
	_ = remove
}

func TestUpdateDrag_ExtendKeepsPriorSelection(t *testing.T) {
	e, doc := newTestEngine(t, Config{})
	g := grid.Generic{}
	table := doc.QuerySelector("table")

	if _, err := e.AddRectangle(Coord{4, 3}, Coord{4, 3}); err != nil {
		t.Fatal(err)
	}
	if err := e.BeginDrag(g.Cell(table, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.UpdateDrag(g.Cell(table, 1, 1), true); err != nil {
		t.Fatal(err)
	}
	if !e.Selection().Has(Coord{4, 3}) {
		t.Error("expected extending drag to keep prior selection")
	}
	if e.Selection().Len() != 5 {
		t.Errorf("expected 5 cells, got %d", e.Selection().Len())
	}
}

func TestBeginDrag_UnresolvableCell(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	loose, _ := dom.Parse(`<p>x</p>`)
	err := e.BeginDrag(loose.QuerySelector("p"))
	if !IsError(err, ResolutionMiss) {
		t.Errorf("expected ResolutionMiss, got %v", err)
	}
	if e.Drag().Active {
		t.Error("expected drag to stay inactive")
	}
}

func TestKeyboardMode_Lifecycle(t *testing.T) {
	e, doc := newTestEngine(t, Config{})
	g := grid.Generic{}
	table := doc.QuerySelector("table")

	if err := e.EnterKeyboardMode(g.Cell(table, 2, 2)); err != nil {
		t.Fatal(err)
	}
	if !e.Keyboard().Active {
		t.Fatal("expected keyboard mode active")
	}
	if e.Selection().Len() != 1 || !e.Selection().Has(Coord{2, 2}) {
		t.Error("expected anchor cell selected on entry")
	}

	// Extend down and right: rectangle anchor..cursor.
	if err := e.MoveCursor(1, 0, true); err != nil {
		t.Fatal(err)
	}
	if err := e.MoveCursor(0, 1, true); err != nil {
		t.Fatal(err)
	}
	if e.Selection().Len() != 4 {
		t.Errorf("expected 2x2 rectangle, got %d cells", e.Selection().Len())
	}

	// Without extending, the anchor follows the cursor.
	if err := e.MoveCursor(1, 0, false); err != nil {
		t.Fatal(err)
	}
	if e.Selection().Len() != 1 {
		t.Errorf("expected single cell after collapse, got %d", e.Selection().Len())
	}

	e.ExitKeyboardMode()
	if e.Keyboard().Active {
		t.Error("expected keyboard mode inactive")
	}
}

func TestMoveCursor_Clamping(t *testing.T) {
	e, doc := newTestEngine(t, Config{})
	g := grid.Generic{}
	table := doc.QuerySelector("table")

	if err := e.EnterKeyboardMode(g.Cell(table, 0, 0)); err != nil {
		t.Fatal(err)
	}
	// Rows clamp at both ends; the fixture has 5 rows.
	e.MoveCursor(-5, 0, false)
	if e.Keyboard().Cursor.Row != 0 {
		t.Errorf("expected row clamped at 0, got %d", e.Keyboard().Cursor.Row)
	}
	e.MoveCursor(100, 0, false)
	if e.Keyboard().Cursor.Row != 4 {
		t.Errorf("expected row clamped at 4, got %d", e.Keyboard().Cursor.Row)
	}
	// Columns clamp at zero but are unbounded above.
	e.MoveCursor(0, -10, false)
	if e.Keyboard().Cursor.Col != 0 {
		t.Errorf("expected col clamped at 0, got %d", e.Keyboard().Cursor.Col)
	}
	e.MoveCursor(0, 50, false)
	if e.Keyboard().Cursor.Col != 50 {
		t.Errorf("expected col 50, got %d", e.Keyboard().Cursor.Col)
	}
}

func TestKeyboardMode_UnreachableDuringDrag(t *testing.T) {
	e, doc := newTestEngine(t, Config{})
	g := grid.Generic{}
	table := doc.QuerySelector("table")

	if err := e.BeginDrag(g.Cell(table, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if err := e.EnterKeyboardMode(g.Cell(table, 2, 2)); !IsError(err, StateConflict) {
		t.Errorf("expected StateConflict, got %v", err)
	}

	// Conversely, beginning a drag exits keyboard mode.
	e.EndDrag()
	if err := e.EnterKeyboardMode(g.Cell(table, 2, 2)); err != nil {
		t.Fatal(err)
	}
	if err := e.BeginDrag(g.Cell(table, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if e.Keyboard().Active {
		t.Error("expected keyboard mode exited by BeginDrag")
	}
}

func TestClearAndEmergencyReset(t *testing.T) {
	e, doc := newTestEngine(t, Config{})
	g := grid.Generic{}
	table := doc.QuerySelector("table")

	e.AddRectangle(Coord{0, 0}, Coord{2, 2})
	e.Clear()
	if e.Selection().Len() != 0 {
		t.Error("expected empty selection after Clear")
	}
	_, remove := e.DrainPaint()
	if len(remove) != 9 {
		t.Errorf("expected 9 unpaint entries after Clear, got %d", len(remove))
	}

	e.BeginDrag(g.Cell(table, 0, 0))
	e.AddRectangle(Coord{0, 0}, Coord{1, 1})
	e.EmergencyReset()
	if e.Selection().Len() != 0 || e.Drag().Active || e.Keyboard().Active {
		t.Error("expected all state cleared by EmergencyReset")
	}
	add, removed := e.DrainPaint()
	if len(add) != 0 {
		t.Error("expected pending paint work discarded by EmergencyReset")
	}
	// The unpaint queue survives the reset so highlights already in the DOM
	// can still be stripped.
	if len(removed) != 4 {
		t.Errorf("expected 4 unpaint entries retained, got %d", len(removed))
	}
}

func TestCapacity_OversizeRectangleRejectedArithmetically(t *testing.T) {
	e, _ := newTestEngine(t, Config{MaxSelectionSize: 100})

	// Corners spanning ~10^18 cells: the rejection must come from the
	// dimension pre-check, long before any per-cell scan could finish.
	huge := Coord{Row: 1 << 30, Col: 1 << 30}
	if _, err := e.AddRectangle(Coord{0, 0}, huge); !IsError(err, CapacityExceeded) {
		t.Fatalf("expected CapacityExceeded, got %v", err)
	}
	if _, err := e.ReplaceWithRectangle(Coord{0, 0}, huge); !IsError(err, CapacityExceeded) {
		t.Fatalf("expected CapacityExceeded, got %v", err)
	}
	if e.Selection().Len() != 0 {
		t.Errorf("expected selection untouched, got %d cells", e.Selection().Len())
	}

	// A single oversized axis is enough.
	if _, err := e.AddRectangle(Coord{0, 0}, Coord{Row: 200, Col: 0}); !IsError(err, CapacityExceeded) {
		t.Fatalf("expected CapacityExceeded for a 201-row column, got %v", err)
	}

	// A rectangle within the ceiling still passes the pre-check and lands.
	if _, err := e.AddRectangle(Coord{0, 0}, Coord{9, 9}); err != nil {
		t.Fatalf("expected 100-cell rectangle accepted, got %v", err)
	}
	if e.Selection().Len() != 100 {
		t.Errorf("expected 100 cells, got %d", e.Selection().Len())
	}
}

func TestCellAtAndCoordOf(t *testing.T) {
	e, doc := newTestEngine(t, Config{})
	g := grid.Generic{}
	table := doc.QuerySelector("table")

	cell := e.CellAt(Coord{2, 1})
	if cell == nil || cell.TextContent() != "b2" {
		t.Fatalf("expected cell b2, got %v", cell)
	}
	if e.CellAt(Coord{9, 9}) != nil {
		t.Error("expected nil for out-of-bounds coordinate")
	}

	c, err := e.CoordOf(g.Cell(table, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	if c != (Coord{3, 2}) {
		t.Errorf("expected (3,2), got %v", c)
	}
}

func TestRebuildPaintQueue(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	e.AddRectangle(Coord{0, 0}, Coord{1, 1})
	e.DrainPaint()

	e.RebuildPaintQueue()
	add, _ := e.DrainPaint()
	if len(add) != 4 {
		t.Errorf("expected rebuilt queue of 4, got %d", len(add))
	}
}

func TestOnChange_Notification(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	var gotLen int
	var gotScope *dom.Node
	e.OnChange(func(s *Set, scope *dom.Node) {
		gotLen = s.Len()
		gotScope = scope
	})
	e.AddRectangle(Coord{0, 0}, Coord{0, 2})
	if gotLen != 3 {
		t.Errorf("expected notification with 3 cells, got %d", gotLen)
	}
	if gotScope == nil || gotScope.Tag() != "table" {
		t.Error("expected notification to carry the scope")
	}
}
