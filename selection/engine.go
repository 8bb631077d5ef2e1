package selection

import (
	"fmt"

	"github.com/AYColumbia/gridgrab/dom"
	"github.com/AYColumbia/gridgrab/grid"
)

// DefaultMaxSelectionSize is the selection ceiling used when the host does
// not configure one.
const DefaultMaxSelectionSize = 5000

// Config holds the engine's tunables.
type Config struct {
	// MaxSelectionSize is the cell ceiling. Any operation that would grow
	// the selection past it is rejected atomically.
	MaxSelectionSize int
}

func (c Config) withDefaults() Config {
	if c.MaxSelectionSize <= 0 {
		c.MaxSelectionSize = DefaultMaxSelectionSize
	}
	return c
}

// DragState tracks an in-progress drag gesture. Exactly one exists per
// engine.
type DragState struct {
	Active  bool
	Start   Coord
	Current Coord
}

// KeyboardState tracks keyboard-navigation mode. Keyboard mode and drag are
// mutually exclusive: entering keyboard mode fails while a drag is active,
// and beginning a drag exits keyboard mode.
type KeyboardState struct {
	Active bool
	Anchor Coord
	Cursor Coord
}

// Engine owns the current selection, the active scope and all mutation
// operations. It is event-driven and must be used from a single goroutine;
// there is no internal locking.
type Engine struct {
	cfg      Config
	resolver *grid.Resolver

	sel      *Set
	drag     DragState
	keyboard KeyboardState

	// Paint bookkeeping for the render pipeline. Not authoritative; the
	// selection is the source of truth and the queues can be rebuilt from
	// it at any time.
	paintQ   map[uint64]Coord
	unpaintQ map[uint64]Coord

	onChange func(*Set, *dom.Node)
}

// NewEngine creates an engine with the given config and resolver.
func NewEngine(cfg Config, resolver *grid.Resolver) *Engine {
	if resolver == nil {
		resolver = grid.NewResolver()
	}
	return &Engine{
		cfg:      cfg.withDefaults(),
		resolver: resolver,
		sel:      NewSet(),
		paintQ:   make(map[uint64]Coord),
		unpaintQ: make(map[uint64]Coord),
	}
}

// Selection returns the live selection set.
func (e *Engine) Selection() *Set { return e.sel }

// Resolver returns the engine's grid resolver.
func (e *Engine) Resolver() *grid.Resolver { return e.resolver }

// Scope returns the active scope element, or nil.
func (e *Engine) Scope() *dom.Node { return e.resolver.Scope() }

// Drag returns the current drag state.
func (e *Engine) Drag() DragState { return e.drag }

// Keyboard returns the current keyboard-mode state.
func (e *Engine) Keyboard() KeyboardState { return e.keyboard }

// MaxSelectionSize returns the configured cell ceiling.
func (e *Engine) MaxSelectionSize() int { return e.cfg.MaxSelectionSize }

// OnChange registers a notification hook invoked after every selection
// mutation.
func (e *Engine) OnChange(fn func(sel *Set, scope *dom.Node)) {
	e.onChange = fn
}

func (e *Engine) notify() {
	if e.onChange != nil {
		e.onChange(e.sel, e.resolver.Scope())
	}
}

// SetScope resolves the nearest enclosing grid scope of el (the document
// root when none exists) and caches its adapter and row sequence. Called at
// the start of every new gesture.
func (e *Engine) SetScope(el *dom.Node) {
	e.resolver.SetScope(grid.ScopeFor(el))
}

// InvalidateScope drops the cached scope. Hosts call this when an external
// mutation signal indicates the scope's structure changed.
func (e *Engine) InvalidateScope() {
	e.resolver.Invalidate()
}

// CoordOf resolves a cell element to its coordinate within the active scope.
func (e *Engine) CoordOf(cell *dom.Node) (Coord, error) {
	if e.resolver.Scope() == nil {
		return Coord{}, ErrNoScope("no active grid scope")
	}
	adapter := e.resolver.Adapter()
	row := adapter.RowIndex(cell, e.resolver.Rows())
	col := adapter.ColumnIndex(cell)
	if row < 0 || col < 0 {
		return Coord{}, ErrResolutionMiss("element does not resolve to a grid cell")
	}
	return Coord{Row: row, Col: col}, nil
}

// CellAt resolves a coordinate to its live DOM cell, or nil when the
// coordinate no longer resolves.
func (e *Engine) CellAt(c Coord) *dom.Node {
	return grid.CellInRows(e.resolver.Rows(), c.Row, c.Col)
}

// addCoord inserts c into the selection and records it for painting.
func (e *Engine) addCoord(c Coord) bool {
	if !e.sel.Add(c) {
		return false
	}
	k := c.Key()
	delete(e.unpaintQ, k)
	e.paintQ[k] = c
	return true
}

// clearInternal empties the selection, queueing every cell for unpaint.
// Does not notify.
func (e *Engine) clearInternal() {
	e.sel.Each(func(c Coord) bool {
		k := c.Key()
		delete(e.paintQ, k)
		e.unpaintQ[k] = c
		return true
	})
	e.sel.Clear()
}

// eachRectCoord visits every coordinate of the closed rectangle spanned by
// a and b. Corners may arrive in any order; negative components clamp to 0.
func eachRectCoord(a, b Coord, fn func(Coord)) {
	tl, br := normalizeRect(a, b)
	if tl.Row < 0 {
		tl.Row = 0
	}
	if tl.Col < 0 {
		tl.Col = 0
	}
	for r := tl.Row; r <= br.Row; r++ {
		for c := tl.Col; c <= br.Col; c++ {
			fn(Coord{Row: r, Col: c})
		}
	}
}

// AddRectangle unions the closed rectangle spanned by the two corners into
// the selection. Returns the number of cells added. Fails atomically with
// CapacityExceeded when the union would exceed the ceiling; a rectangle
// that is oversize on its own is rejected arithmetically, before any
// per-cell scan.
func (e *Engine) AddRectangle(a, b Coord) (int, error) {
	if rectExceeds(a, b, e.cfg.MaxSelectionSize) {
		return 0, ErrCapacityExceeded(fmt.Sprintf(
			"rectangle exceeds the %d-cell limit", e.cfg.MaxSelectionSize))
	}
	missing := 0
	eachRectCoord(a, b, func(c Coord) {
		if !e.sel.Has(c) {
			missing++
		}
	})
	if e.sel.Len()+missing > e.cfg.MaxSelectionSize {
		return 0, ErrCapacityExceeded(fmt.Sprintf(
			"selecting %d more cells would exceed the %d-cell limit", missing, e.cfg.MaxSelectionSize))
	}
	eachRectCoord(a, b, func(c Coord) {
		e.addCoord(c)
	})
	if missing > 0 {
		e.notify()
	}
	return missing, nil
}

// ReplaceWithRectangle clears the selection and selects the rectangle.
// The capacity check happens before anything is cleared, so a rejected call
// leaves the selection untouched.
func (e *Engine) ReplaceWithRectangle(a, b Coord) (int, error) {
	if rectExceeds(a, b, e.cfg.MaxSelectionSize) {
		return 0, ErrCapacityExceeded(fmt.Sprintf(
			"rectangle exceeds the %d-cell limit", e.cfg.MaxSelectionSize))
	}
	e.clearInternal()
	added := 0
	eachRectCoord(a, b, func(c Coord) {
		if e.addCoord(c) {
			added++
		}
	})
	e.notify()
	return added, nil
}

// SelectColumn replaces the selection with every cell of the column across
// the resolved rows. Header rows are skipped unless includeHeaders is set;
// rows too short to reach the column are skipped.
func (e *Engine) SelectColumn(col int, includeHeaders bool) (int, error) {
	if e.resolver.Scope() == nil {
		return 0, ErrNoScope("no active grid scope")
	}
	if col < 0 {
		return 0, ErrResolutionMiss(fmt.Sprintf("column %d out of range", col))
	}
	rows := e.resolver.Rows()
	var eligible []int
	for i, row := range rows {
		if !includeHeaders && grid.IsHeaderRow(row) {
			continue
		}
		if col < len(grid.CellsInRow(row)) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) > e.cfg.MaxSelectionSize {
		return 0, ErrCapacityExceeded(fmt.Sprintf(
			"column spans %d rows, exceeding the %d-cell limit", len(eligible), e.cfg.MaxSelectionSize))
	}
	e.clearInternal()
	for _, rowIdx := range eligible {
		e.addCoord(Coord{Row: rowIdx, Col: col})
	}
	e.notify()
	return len(eligible), nil
}

// SelectRow replaces the selection with every cell of the row.
func (e *Engine) SelectRow(row int) (int, error) {
	if e.resolver.Scope() == nil {
		return 0, ErrNoScope("no active grid scope")
	}
	rows := e.resolver.Rows()
	if row < 0 || row >= len(rows) {
		return 0, ErrResolutionMiss(fmt.Sprintf("row %d out of range", row))
	}
	cells := grid.CellsInRow(rows[row])
	if len(cells) > e.cfg.MaxSelectionSize {
		return 0, ErrCapacityExceeded(fmt.Sprintf(
			"row spans %d cells, exceeding the %d-cell limit", len(cells), e.cfg.MaxSelectionSize))
	}
	e.clearInternal()
	for c := range cells {
		e.addCoord(Coord{Row: row, Col: c})
	}
	e.notify()
	return len(cells), nil
}

// Clear empties the selection.
func (e *Engine) Clear() {
	e.clearInternal()
	e.notify()
}

// EmergencyReset clears the selection and forces drag and keyboard state to
// idle. Pending paint work is discarded, but the unpaint queue keeps every
// previously selected cell so the pipeline can strip highlights already in
// the DOM. Used from the failure path only.
func (e *Engine) EmergencyReset() {
	e.clearInternal()
	e.paintQ = make(map[uint64]Coord)
	e.drag = DragState{}
	e.keyboard = KeyboardState{}
	e.notify()
}

// BeginDrag starts a drag gesture anchored at cell. Any active keyboard
// mode is exited first.
func (e *Engine) BeginDrag(cell *dom.Node) error {
	if e.keyboard.Active {
		e.ExitKeyboardMode()
	}
	c, err := e.CoordOf(cell)
	if err != nil {
		return err
	}
	e.drag = DragState{Active: true, Start: c, Current: c}
	return nil
}

// UpdateDrag recomputes the drag rectangle for the cell under the pointer.
// Returns true when the selection changed. No-ops when the resolved
// coordinate is unchanged since the last call, since pointer events fire far
// more often than the grid resolution changes.
func (e *Engine) UpdateDrag(cell *dom.Node, extending bool) (bool, error) {
	if !e.drag.Active {
		return false, nil
	}
	c, err := e.CoordOf(cell)
	if err != nil {
		// The pointer is outside the grid or the DOM moved; keep the
		// current rectangle.
		return false, nil
	}
	if c == e.drag.Current {
		return false, nil
	}
	e.drag.Current = c
	if extending {
		if _, err := e.AddRectangle(e.drag.Start, c); err != nil {
			return false, err
		}
		return true, nil
	}
	if _, err := e.ReplaceWithRectangle(e.drag.Start, c); err != nil {
		return false, err
	}
	return true, nil
}

// EndDrag finishes the drag gesture.
func (e *Engine) EndDrag() {
	e.drag.Active = false
}

// EnterKeyboardMode activates keyboard navigation anchored at cell. Fails
// with StateConflict while a drag is active.
func (e *Engine) EnterKeyboardMode(cell *dom.Node) error {
	if e.drag.Active {
		return ErrStateConflict("keyboard mode is unreachable while a drag is active")
	}
	c, err := e.CoordOf(cell)
	if err != nil {
		return err
	}
	e.keyboard = KeyboardState{Active: true, Anchor: c, Cursor: c}
	_, err = e.ReplaceWithRectangle(c, c)
	return err
}

// ExitKeyboardMode deactivates keyboard navigation. The selection is left
// in place.
func (e *Engine) ExitKeyboardMode() {
	e.keyboard.Active = false
}

// MoveCursor moves the keyboard cursor by the given deltas and recomputes
// the rectangle between anchor and cursor. The row axis clamps to the
// resolved row bounds; the column axis clamps at zero and is unbounded
// above, since the column count may not be known. Without extending, the
// anchor follows the cursor.
func (e *Engine) MoveCursor(dRow, dCol int, extending bool) error {
	if !e.keyboard.Active {
		return ErrStateConflict("keyboard mode is not active")
	}
	maxRow := len(e.resolver.Rows()) - 1
	if maxRow < 0 {
		maxRow = 0
	}
	cur := e.keyboard.Cursor
	cur.Row = min(max(cur.Row+dRow, 0), maxRow)
	cur.Col = max(cur.Col+dCol, 0)
	e.keyboard.Cursor = cur
	if !extending {
		e.keyboard.Anchor = cur
	}
	_, err := e.ReplaceWithRectangle(e.keyboard.Anchor, e.keyboard.Cursor)
	return err
}

// DrainPaint returns and clears the pending paint and unpaint queues.
func (e *Engine) DrainPaint() (add, remove []Coord) {
	add = make([]Coord, 0, len(e.paintQ))
	for _, c := range e.paintQ {
		add = append(add, c)
	}
	remove = make([]Coord, 0, len(e.unpaintQ))
	for _, c := range e.unpaintQ {
		remove = append(remove, c)
	}
	e.paintQ = make(map[uint64]Coord)
	e.unpaintQ = make(map[uint64]Coord)
	return add, remove
}

// RebuildPaintQueue repopulates the paint queue from the full selection.
// Used when the pipeline needs a from-scratch repaint.
func (e *Engine) RebuildPaintQueue() {
	e.paintQ = make(map[uint64]Coord)
	e.sel.Each(func(c Coord) bool {
		e.paintQ[c.Key()] = c
		return true
	})
}
