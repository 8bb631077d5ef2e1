// Package grid maps heterogeneous DOM structures onto a uniform
// (row, column) coordinate space. Each grid layout convention is covered by
// an Adapter; the Resolver sniffs a scope element and picks the right one.
package grid

import "github.com/AYColumbia/gridgrab/dom"

// Selectors covering native tables, ARIA grids and the div-grid class
// conventions of common table widgets.
const (
	// RowSelector matches elements acting as logical rows.
	RowSelector = "tr, [role=row], .rt-tr, .ag-row, .table-row, .grid-row"
	// CellSelector matches elements acting as logical cells.
	CellSelector = "td, th, [role=cell], [role=gridcell], [role=columnheader], [role=rowheader], .rt-td, .ag-cell, .table-cell, .grid-cell"
)

// Adapter translates between (row, col) coordinates and DOM cell elements
// for one grid layout convention. Adapters are stateless; all of them must
// tolerate out-of-bounds coordinates by returning nil rather than panicking.
type Adapter interface {
	// Name identifies the adapter variant.
	Name() string
	// Rows returns the ordered logical row elements of the scope.
	Rows(scope *dom.Node) []*dom.Node
	// Cell returns the cell element at (row, col), or nil when out of bounds.
	Cell(scope *dom.Node, row, col int) *dom.Node
	// RowIndex returns the logical row index of the row containing el within
	// rows, or -1 if not found.
	RowIndex(el *dom.Node, rows []*dom.Node) int
	// ColumnIndex returns the column position of the cell containing el
	// within its row, or -1 if el is not inside a cell.
	ColumnIndex(el *dom.Node) int
}

// Generic is the default adapter. It handles native <table> markup, ARIA
// row/cell roles and class-based div grids.
type Generic struct{}

// Name implements Adapter.
func (Generic) Name() string { return "generic" }

// Rows implements Adapter.
func (Generic) Rows(scope *dom.Node) []*dom.Node {
	if scope == nil {
		return nil
	}
	return rowsUnder(scope)
}

// Cell implements Adapter.
func (g Generic) Cell(scope *dom.Node, row, col int) *dom.Node {
	return CellInRows(g.Rows(scope), row, col)
}

// RowIndex implements Adapter.
func (Generic) RowIndex(el *dom.Node, rows []*dom.Node) int {
	return rowIndexIn(el, rows)
}

// ColumnIndex implements Adapter.
func (Generic) ColumnIndex(el *dom.Node) int {
	return columnIndexOf(el)
}

// rowsUnder collects logical row elements under root in document order,
// skipping rows nested inside other rows (inner tables keep their own grid).
func rowsUnder(root *dom.Node) []*dom.Node {
	var rows []*dom.Node
	for _, row := range root.QuerySelectorAll(RowSelector) {
		if row.Parent != nil {
			if enclosing := row.Parent.Closest(RowSelector); enclosing != nil && isDescendantOf(enclosing, root) {
				continue
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// CellsInRow returns the cell elements of a logical row in order. Direct
// child cells win; div grids that wrap their cells fall back to descendants.
func CellsInRow(row *dom.Node) []*dom.Node {
	if row == nil {
		return nil
	}
	var cells []*dom.Node
	for _, child := range row.ChildElements() {
		if child.Matches(CellSelector) {
			cells = append(cells, child)
		}
	}
	if len(cells) > 0 {
		return cells
	}
	return row.QuerySelectorAll(CellSelector)
}

// CellInRows resolves (row, col) against a previously resolved row sequence.
// Returns nil when either axis is out of bounds.
func CellInRows(rows []*dom.Node, row, col int) *dom.Node {
	if row < 0 || row >= len(rows) || col < 0 {
		return nil
	}
	cells := CellsInRow(rows[row])
	if col >= len(cells) {
		return nil
	}
	return cells[col]
}

// rowIndexIn finds the index of the row containing el by identity.
func rowIndexIn(el *dom.Node, rows []*dom.Node) int {
	if el == nil {
		return -1
	}
	row := el.Closest(RowSelector)
	if row == nil {
		return -1
	}
	for i, r := range rows {
		if r == row {
			return i
		}
	}
	return -1
}

// columnIndexOf counts preceding sibling cells of the cell containing el.
func columnIndexOf(el *dom.Node) int {
	if el == nil {
		return -1
	}
	cell := el.Closest(CellSelector)
	if cell == nil {
		return -1
	}
	idx := 0
	for s := cell.PreviousElementSibling(); s != nil; s = s.PreviousElementSibling() {
		if s.Matches(CellSelector) {
			idx++
		}
	}
	return idx
}

// isDescendantOf reports whether n is a strict descendant of root.
func isDescendantOf(n, root *dom.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}
