// Package selection owns the selected-cell set and the gesture state
// machines that mutate it: drag selection, row/column selection and
// keyboard navigation.
package selection

import (
	"fmt"
	"sort"
)

// Coord identifies one logical cell within a scope. Row and Col are both
// zero-based and non-negative.
type Coord struct {
	Row int
	Col int
}

// Key packs the coordinate into a 64-bit integer. Equality and set
// membership are defined by this key.
func (c Coord) Key() uint64 {
	return uint64(uint32(c.Row))<<32 | uint64(uint32(c.Col))
}

// FromKey unpacks a coordinate key.
func FromKey(k uint64) Coord {
	return Coord{Row: int(uint32(k >> 32)), Col: int(uint32(k))}
}

// String renders the canonical "row|col" form.
func (c Coord) String() string {
	return fmt.Sprintf("%d|%d", c.Row, c.Col)
}

// Set is a set of unique coordinates. Insertion order is irrelevant.
type Set struct {
	m map[uint64]Coord
}

// NewSet creates an empty coordinate set.
func NewSet() *Set {
	return &Set{m: make(map[uint64]Coord)}
}

// Len returns the number of coordinates in the set.
func (s *Set) Len() int { return len(s.m) }

// Has reports membership.
func (s *Set) Has(c Coord) bool {
	_, ok := s.m[c.Key()]
	return ok
}

// Add inserts a coordinate. Returns true if it was not already present.
func (s *Set) Add(c Coord) bool {
	k := c.Key()
	if _, ok := s.m[k]; ok {
		return false
	}
	s.m[k] = c
	return true
}

// Remove deletes a coordinate. Returns true if it was present.
func (s *Set) Remove(c Coord) bool {
	k := c.Key()
	if _, ok := s.m[k]; !ok {
		return false
	}
	delete(s.m, k)
	return true
}

// Clear empties the set.
func (s *Set) Clear() {
	s.m = make(map[uint64]Coord)
}

// Each calls fn for every coordinate until fn returns false. Iteration
// order is unspecified.
func (s *Set) Each(fn func(Coord) bool) {
	for _, c := range s.m {
		if !fn(c) {
			return
		}
	}
}

// Coords returns the coordinates sorted by row, then column.
func (s *Set) Coords() []Coord {
	out := make([]Coord, 0, len(s.m))
	for _, c := range s.m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// ByRow groups the coordinates' columns by row. Column slices are sorted
// ascending.
func (s *Set) ByRow() map[int][]int {
	grouped := make(map[int][]int)
	for _, c := range s.m {
		grouped[c.Row] = append(grouped[c.Row], c.Col)
	}
	for row := range grouped {
		sort.Ints(grouped[row])
	}
	return grouped
}

// normalizeRect returns the min/max-normalized corners of the rectangle
// spanned by a and b, order-independent.
func normalizeRect(a, b Coord) (topLeft, bottomRight Coord) {
	topLeft = Coord{Row: min(a.Row, b.Row), Col: min(a.Col, b.Col)}
	bottomRight = Coord{Row: max(a.Row, b.Row), Col: max(a.Col, b.Col)}
	return topLeft, bottomRight
}

// rectArea returns the inclusive cell count of the rectangle spanned by a
// and b.
func rectArea(a, b Coord) int {
	tl, br := normalizeRect(a, b)
	return (br.Row - tl.Row + 1) * (br.Col - tl.Col + 1)
}

// rectExceeds reports whether the rectangle spanned by a and b covers more
// than limit cells, clamping negative corners the way rectangle iteration
// does. Each dimension is checked against the limit before multiplying, so
// extreme corners cannot overflow the product.
func rectExceeds(a, b Coord, limit int) bool {
	tl, br := normalizeRect(a, b)
	if tl.Row < 0 {
		tl.Row = 0
	}
	if tl.Col < 0 {
		tl.Col = 0
	}
	rows := br.Row - tl.Row + 1
	cols := br.Col - tl.Col + 1
	if rows <= 0 || cols <= 0 {
		return false
	}
	if rows > limit || cols > limit {
		return true
	}
	return rows*cols > limit
}
