package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AYColumbia/gridgrab/clip"
	"github.com/AYColumbia/gridgrab/dom"
	"github.com/AYColumbia/gridgrab/grid"
	"github.com/AYColumbia/gridgrab/render"
	"github.com/AYColumbia/gridgrab/script"
	"github.com/AYColumbia/gridgrab/selection"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: gridgrab <page.html> <r1,c1:r2,c2 | script.js>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "gridgrab:", err)
		os.Exit(1)
	}
	doc, err := dom.Parse(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, "gridgrab:", err)
		os.Exit(1)
	}

	engine := selection.NewEngine(selection.Config{}, grid.NewResolver())
	pipeline := render.NewPipeline(render.Config{}, engine, nil, nil)
	writeStdout := func(text string) error {
		_, err := fmt.Println(text)
		return err
	}

	arg := os.Args[2]
	if strings.HasSuffix(arg, ".js") {
		code, err := os.ReadFile(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "gridgrab:", err)
			os.Exit(1)
		}
		rt := script.NewRuntime()
		script.NewBinder(rt, doc, engine, pipeline, writeStdout).Install()
		if _, err := rt.Execute(string(code)); err != nil {
			fmt.Fprintln(os.Stderr, "gridgrab:", err)
			os.Exit(1)
		}
		return
	}

	a, b, err := parseRect(arg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gridgrab:", err)
		os.Exit(1)
	}
	engine.SetScope(doc.QuerySelector("td, th, [role=cell], [role=gridcell]"))
	if _, err := engine.ReplaceWithRectangle(a, b); err != nil {
		fmt.Fprintln(os.Stderr, "gridgrab:", err)
		os.Exit(1)
	}

	fmt.Println(clip.Format(engine, clip.Options{}))
	st := pipeline.Summarize()
	if st.HasNumeric {
		fmt.Fprintf(os.Stderr, "%d cells, sum %g, avg %g\n", st.Cells, st.Sum, st.Avg)
	} else {
		fmt.Fprintf(os.Stderr, "%d cells\n", st.Cells)
	}
}

// parseRect reads a "r1,c1:r2,c2" rectangle argument.
func parseRect(s string) (selection.Coord, selection.Coord, error) {
	corners := strings.SplitN(s, ":", 2)
	if len(corners) != 2 {
		return selection.Coord{}, selection.Coord{}, fmt.Errorf("invalid rectangle %q", s)
	}
	parse := func(corner string) (selection.Coord, error) {
		var c selection.Coord
		if _, err := fmt.Sscanf(corner, "%d,%d", &c.Row, &c.Col); err != nil {
			return c, fmt.Errorf("invalid corner %q", corner)
		}
		return c, nil
	}
	a, err := parse(corners[0])
	if err != nil {
		return selection.Coord{}, selection.Coord{}, err
	}
	b, err := parse(corners[1])
	if err != nil {
		return selection.Coord{}, selection.Coord{}, err
	}
	return a, b, nil
}
