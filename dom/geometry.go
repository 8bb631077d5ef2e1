package dom

// Rect represents an axis-aligned rectangle in page coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x := min(r.X, o.X)
	y := min(r.Y, o.Y)
	right := max(r.Right(), o.Right())
	bottom := max(r.Bottom(), o.Bottom())
	return Rect{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// SetRect records the element's layout rectangle. Layout is computed by the
// host environment, not by this package.
func (n *Node) SetRect(r Rect) {
	n.rect = &r
	n.hasRect = true
}

// HasRect returns true if a layout rectangle has been recorded.
func (n *Node) HasRect() bool {
	return n.hasRect
}

// BoundingRect returns the element's recorded layout rectangle, or a
// zero-sized rect if layout has not been reported.
func (n *Node) BoundingRect() Rect {
	if n.rect == nil {
		return Rect{}
	}
	return *n.rect
}
