package script

import (
	"github.com/dop251/goja"

	"github.com/AYColumbia/gridgrab/clip"
	"github.com/AYColumbia/gridgrab/dom"
	"github.com/AYColumbia/gridgrab/render"
	"github.com/AYColumbia/gridgrab/selection"
)

// Binder exposes the selection engine to scripts as a global `gridgrab`
// object. Engine errors surface as thrown JavaScript exceptions.
type Binder struct {
	rt       *Runtime
	doc      *dom.Node
	engine   *selection.Engine
	pipeline *render.Pipeline
	write    clip.WriteClipboard
}

// NewBinder creates a binder over the document and engine. write may be nil
// when the host provides no clipboard.
func NewBinder(rt *Runtime, doc *dom.Node, engine *selection.Engine, pipeline *render.Pipeline, write clip.WriteClipboard) *Binder {
	return &Binder{rt: rt, doc: doc, engine: engine, pipeline: pipeline, write: write}
}

// throw raises err as a JavaScript exception.
func (b *Binder) throw(err error) {
	panic(b.rt.vm.NewGoError(err))
}

// Install registers the gridgrab global.
func (b *Binder) Install() {
	vm := b.rt.vm
	obj := vm.NewObject()

	// gridgrab.scope(selector) - activate the grid containing the first
	// match of selector.
	obj.Set("scope", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			b.throw(selection.ErrNoScope("scope requires a selector"))
		}
		el := b.doc.QuerySelector(call.Arguments[0].String())
		if el == nil {
			b.throw(selection.ErrNoScope("no element matches " + call.Arguments[0].String()))
		}
		b.engine.SetScope(el)
		return goja.Undefined()
	})

	// gridgrab.selectRect(r1, c1, r2, c2) - replace the selection with the
	// rectangle. Returns the cell count.
	obj.Set("selectRect", func(call goja.FunctionCall) goja.Value {
		a, c := rectArgs(call)
		n, err := b.engine.ReplaceWithRectangle(a, c)
		if err != nil {
			b.throw(err)
		}
		b.pipeline.PaintNow()
		return vm.ToValue(n)
	})

	// gridgrab.extendRect(r1, c1, r2, c2) - union the rectangle into the
	// selection. Returns the number of newly selected cells.
	obj.Set("extendRect", func(call goja.FunctionCall) goja.Value {
		a, c := rectArgs(call)
		n, err := b.engine.AddRectangle(a, c)
		if err != nil {
			b.throw(err)
		}
		b.pipeline.PaintNow()
		return vm.ToValue(n)
	})

	// gridgrab.selectColumn(col, includeHeaders)
	obj.Set("selectColumn", func(call goja.FunctionCall) goja.Value {
		col := 0
		if len(call.Arguments) > 0 {
			col = int(call.Arguments[0].ToInteger())
		}
		includeHeaders := len(call.Arguments) > 1 && call.Arguments[1].ToBoolean()
		n, err := b.engine.SelectColumn(col, includeHeaders)
		if err != nil {
			b.throw(err)
		}
		b.pipeline.PaintNow()
		return vm.ToValue(n)
	})

	// gridgrab.selectRow(row)
	obj.Set("selectRow", func(call goja.FunctionCall) goja.Value {
		row := 0
		if len(call.Arguments) > 0 {
			row = int(call.Arguments[0].ToInteger())
		}
		n, err := b.engine.SelectRow(row)
		if err != nil {
			b.throw(err)
		}
		b.pipeline.PaintNow()
		return vm.ToValue(n)
	})

	obj.Set("clear", func(call goja.FunctionCall) goja.Value {
		b.engine.Clear()
		b.pipeline.PaintNow()
		return goja.Undefined()
	})

	obj.Set("reset", func(call goja.FunctionCall) goja.Value {
		b.engine.EmergencyReset()
		b.pipeline.Reset()
		return goja.Undefined()
	})

	obj.Set("count", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(b.engine.Selection().Len())
	})

	// gridgrab.stats() - aggregate of the current selection.
	obj.Set("stats", func(call goja.FunctionCall) goja.Value {
		st := b.pipeline.Summarize()
		out := vm.NewObject()
		out.Set("cells", st.Cells)
		out.Set("rows", st.Rows)
		out.Set("cols", st.Cols)
		out.Set("numericCells", st.NumericCells)
		out.Set("sum", st.Sum)
		out.Set("avg", st.Avg)
		out.Set("min", st.Min)
		out.Set("max", st.Max)
		out.Set("hasNumeric", st.HasNumeric)
		out.Set("partial", st.Partial)
		return out
	})

	// gridgrab.format(markdown) - serialize the selection.
	obj.Set("format", func(call goja.FunctionCall) goja.Value {
		markdown := len(call.Arguments) > 0 && call.Arguments[0].ToBoolean()
		return vm.ToValue(clip.Format(b.engine, clip.Options{Markdown: markdown}))
	})

	// gridgrab.copy(markdown) - serialize and write to the clipboard.
	obj.Set("copy", func(call goja.FunctionCall) goja.Value {
		markdown := len(call.Arguments) > 0 && call.Arguments[0].ToBoolean()
		if err := clip.Copy(b.engine, clip.Options{Markdown: markdown}, b.write); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})

	vm.Set("gridgrab", obj)
}

// rectArgs reads the four corner integers of a rectangle call.
func rectArgs(call goja.FunctionCall) (selection.Coord, selection.Coord) {
	get := func(i int) int {
		if i < len(call.Arguments) {
			return int(call.Arguments[i].ToInteger())
		}
		return 0
	}
	a := selection.Coord{Row: get(0), Col: get(1)}
	b := selection.Coord{Row: get(2), Col: get(3)}
	return a, b
}
