package grid

import "github.com/AYColumbia/gridgrab/dom"

// ScopeSelector matches elements that bound one logical grid instance.
const ScopeSelector = "table, [role=grid], [role=table], [role=treegrid], .rt-table, .ag-root, .data-table, .grid"

// headerRowSelector matches the groupings and roles that mark header rows.
const headerRowSelector = "thead, .rt-thead, .ag-header, [class*=header-group], [class*=table-head]"

// ScopeFor returns the nearest enclosing grid scope of el, or the document
// root when no grid ancestor exists.
func ScopeFor(el *dom.Node) *dom.Node {
	if el == nil {
		return nil
	}
	if scope := el.Closest(ScopeSelector); scope != nil {
		return scope
	}
	root := el
	for root.Parent != nil {
		root = root.Parent
	}
	return root
}

// Resolver picks the Adapter for a scope by structural sniffing and caches
// the resolved row sequence for the active scope. The engine runs on a
// single goroutine, so the cache needs no locking.
type Resolver struct {
	virtualized Adapter
	generic     Adapter

	scope   *dom.Node
	adapter Adapter
	rows    []*dom.Node

	// Cell-text memo, valid for the lifetime of the cached row sequence.
	texts map[*dom.Node]string
}

// NewResolver creates a Resolver with the built-in adapter variants.
func NewResolver() *Resolver {
	return &Resolver{
		virtualized: Virtualized{},
		generic:     Generic{},
	}
}

// Resolve inspects el for structural fingerprints and returns the matching
// adapter, in priority order: virtualized markers first, generic fallback
// last. Resolution is pure; it never touches the cache.
func (r *Resolver) Resolve(el *dom.Node) Adapter {
	if el == nil {
		return r.generic
	}
	if el.Matches(VirtualizedMarker) || el.QuerySelector(VirtualizedMarker) != nil {
		return r.virtualized
	}
	return r.generic
}

// SetScope makes scope the active grid instance, resolving its adapter and
// caching its row sequence. A repeated call with the same scope refreshes
// the row cache (the host page may have mutated the subtree).
func (r *Resolver) SetScope(scope *dom.Node) {
	r.scope = scope
	r.adapter = r.Resolve(scope)
	r.rows = r.adapter.Rows(scope)
	r.texts = nil
}

// Scope returns the active scope element, or nil if none has been set.
func (r *Resolver) Scope() *dom.Node { return r.scope }

// Adapter returns the adapter resolved for the active scope.
func (r *Resolver) Adapter() Adapter {
	if r.adapter == nil {
		return r.generic
	}
	return r.adapter
}

// Rows returns the cached row sequence for the active scope.
func (r *Resolver) Rows() []*dom.Node { return r.rows }

// Invalidate drops the cached scope and row sequence. Callers use this when
// an external mutation signal indicates the scope's structure changed.
func (r *Resolver) Invalidate() {
	r.scope = nil
	r.adapter = nil
	r.rows = nil
	r.texts = nil
}

// Refresh recomputes the row cache for the current scope.
func (r *Resolver) Refresh() {
	if r.scope != nil {
		r.rows = r.Adapter().Rows(r.scope)
	}
	r.texts = nil
}

// TextOf returns the cell's rendered text, memoized per cell element. The
// memo lives only as long as the cached row sequence; SetScope, Invalidate
// and Refresh all drop it.
func (r *Resolver) TextOf(cell *dom.Node) string {
	if cell == nil {
		return ""
	}
	if text, ok := r.texts[cell]; ok {
		return text
	}
	if r.texts == nil {
		r.texts = make(map[*dom.Node]string)
	}
	text := dom.CellText(cell)
	r.texts[cell] = text
	return text
}

// IsHeaderRow reports whether row carries column-label metadata rather than
// data: it sits inside a head grouping, contains a columnheader role, or
// consists entirely of <th> cells.
func IsHeaderRow(row *dom.Node) bool {
	if row == nil {
		return false
	}
	if row.Closest(headerRowSelector) != nil {
		return true
	}
	if row.QuerySelector("[role=columnheader]") != nil {
		return true
	}
	cells := CellsInRow(row)
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if c.Tag() != "th" {
			return false
		}
	}
	return true
}
