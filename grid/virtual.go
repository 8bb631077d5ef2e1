package grid

import "github.com/AYColumbia/gridgrab/dom"

// Selectors marking virtualized/windowed grids, whose header rows and body
// rows live in disjoint DOM branches.
const (
	// VirtualizedMarker identifies a scope rendered by a windowed grid widget.
	VirtualizedMarker = ".rt-table, .ag-root, [class*=virtualized], [class*=virtual-table]"

	virtualHeaderSelector = ".rt-thead, .ag-header, [class*=header-group], [class*=table-head]"
	virtualBodySelector   = ".rt-tbody, .ag-body-viewport, [class*=virtual-body], [class*=table-body]"
)

// Virtualized adapts windowed grids: the logical row sequence concatenates
// the header branch's rows with the body branch's rows, header first.
type Virtualized struct{}

// Name implements Adapter.
func (Virtualized) Name() string { return "virtualized" }

// Rows implements Adapter.
func (Virtualized) Rows(scope *dom.Node) []*dom.Node {
	if scope == nil {
		return nil
	}
	header := scope.QuerySelector(virtualHeaderSelector)
	body := scope.QuerySelector(virtualBodySelector)
	if header == nil && body == nil {
		// Structure changed under us; behave like the generic adapter.
		return rowsUnder(scope)
	}
	var rows []*dom.Node
	if header != nil {
		rows = append(rows, rowsUnder(header)...)
	}
	if body != nil {
		rows = append(rows, rowsUnder(body)...)
	}
	return rows
}

// Cell implements Adapter.
func (v Virtualized) Cell(scope *dom.Node, row, col int) *dom.Node {
	return CellInRows(v.Rows(scope), row, col)
}

// RowIndex implements Adapter.
func (Virtualized) RowIndex(el *dom.Node, rows []*dom.Node) int {
	return rowIndexIn(el, rows)
}

// ColumnIndex implements Adapter.
func (Virtualized) ColumnIndex(el *dom.Node) int {
	return columnIndexOf(el)
}
