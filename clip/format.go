// Package clip serializes the current selection to tabular text and hands
// it to the host's clipboard capability.
package clip

import (
	"errors"
	"sort"
	"strings"

	"github.com/AYColumbia/gridgrab/dom"
	"github.com/AYColumbia/gridgrab/grid"
	"github.com/AYColumbia/gridgrab/selection"
)

// HeaderPolicy decides whether header rows appear in the export.
type HeaderPolicy int

const (
	// HeaderAuto includes header rows only when the selection already
	// touches one.
	HeaderAuto HeaderPolicy = iota
	// HeaderAlways prepends the grid's header cells for the selected
	// columns even when no header row is selected.
	HeaderAlways
	// HeaderNever drops header rows from the export.
	HeaderNever
)

// Options control the export format.
type Options struct {
	// Markdown renders a text table with a header separator line instead
	// of tab-separated values.
	Markdown bool
	// Headers is the header-row inclusion policy.
	Headers HeaderPolicy
}

// WriteClipboard is the host-provided clipboard capability. Writing to the
// clipboard is only reachable from a direct user gesture; the host enforces
// that boundary.
type WriteClipboard func(text string) error

// ErrNoClipboard is returned by Copy when no clipboard capability was
// provided.
var ErrNoClipboard = errors.New("no clipboard capability")

// Format serializes the engine's selection: coordinates grouped by row,
// rows ascending, columns ascending within each row. Coordinates that no
// longer resolve to a live cell are skipped. The formatter has no side
// effects beyond producing the string.
func Format(e *selection.Engine, opts Options) string {
	resolver := e.Resolver()
	rows := resolver.Rows()
	grouped := e.Selection().ByRow()

	rowKeys := make([]int, 0, len(grouped))
	for r := range grouped {
		rowKeys = append(rowKeys, r)
	}
	sort.Ints(rowKeys)

	isHeader := func(r int) bool {
		return r >= 0 && r < len(rows) && grid.IsHeaderRow(rows[r])
	}

	headerTouched := false
	for _, r := range rowKeys {
		if isHeader(r) {
			headerTouched = true
			break
		}
	}

	var lines [][]string
	if opts.Headers == HeaderAlways && !headerTouched {
		if line := syntheticHeader(resolver, rows, grouped); line != nil {
			lines = append(lines, line)
		}
	}
	for _, r := range rowKeys {
		if opts.Headers == HeaderNever && isHeader(r) {
			continue
		}
		var fields []string
		for _, c := range grouped[r] {
			cell := grid.CellInRows(rows, r, c)
			if cell == nil {
				continue
			}
			fields = append(fields, resolver.TextOf(cell))
		}
		if len(fields) > 0 {
			lines = append(lines, fields)
		}
	}

	if opts.Markdown {
		return renderMarkdown(lines)
	}
	return renderTSV(lines)
}

// syntheticHeader builds a header line for the union of the selected
// columns from the grid's first header row. Returns nil when the grid has
// no header row.
func syntheticHeader(resolver *grid.Resolver, rows []*dom.Node, grouped map[int][]int) []string {
	headerIdx := -1
	for i, row := range rows {
		if grid.IsHeaderRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}
	colSet := make(map[int]struct{})
	for _, cols := range grouped {
		for _, c := range cols {
			colSet[c] = struct{}{}
		}
	}
	cols := make([]int, 0, len(colSet))
	for c := range colSet {
		cols = append(cols, c)
	}
	sort.Ints(cols)

	var fields []string
	for _, c := range cols {
		if cell := grid.CellInRows(rows, headerIdx, c); cell != nil {
			fields = append(fields, resolver.TextOf(cell))
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func renderTSV(lines [][]string) string {
	var sb strings.Builder
	for i, fields := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(fields, "\t"))
	}
	return sb.String()
}

func renderMarkdown(lines [][]string) string {
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	writeRow := func(fields []string) {
		sb.WriteString("| ")
		sb.WriteString(strings.Join(fields, " | "))
		sb.WriteString(" |")
	}
	writeRow(lines[0])
	sb.WriteString("\n")
	seps := make([]string, len(lines[0]))
	for i := range seps {
		seps[i] = "---"
	}
	writeRow(seps)
	for _, fields := range lines[1:] {
		sb.WriteString("\n")
		writeRow(fields)
	}
	return sb.String()
}

// Copy formats the selection and writes it through the clipboard
// capability.
func Copy(e *selection.Engine, opts Options, write WriteClipboard) error {
	if write == nil {
		return ErrNoClipboard
	}
	return write(Format(e, opts))
}
