// Package input translates host pointer and keyboard events into selection
// engine operations. It carries the failure boundary: every handler runs
// under a recover guard, and repeated faults disable the controller for the
// rest of the session.
package input

import (
	"fmt"

	"github.com/AYColumbia/gridgrab/clip"
	"github.com/AYColumbia/gridgrab/dom"
	"github.com/AYColumbia/gridgrab/render"
	"github.com/AYColumbia/gridgrab/selection"
)

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModAlt Modifier = 1 << iota
	ModShift
	ModCtrl
	ModMeta
)

// Has reports whether all modifiers in m are held.
func (mods Modifier) Has(m Modifier) bool { return mods&m == m }

// PointerKind distinguishes the pointer events the controller reacts to.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	DoubleClick
)

// PointerEvent is a host pointer event reduced to what the controller needs.
type PointerEvent struct {
	Kind   PointerKind
	Target *dom.Node
	Mods   Modifier
}

// KeyEvent is a host keyboard event. Key uses the DOM KeyboardEvent key
// names ("ArrowDown", "Escape", "c").
type KeyEvent struct {
	Key  string
	Mods Modifier
}

// DefaultMaxFaults is the number of recovered panics after which the
// controller disables itself.
const DefaultMaxFaults = 3

// Config holds the controller's bindings and tunables.
type Config struct {
	// Activation must be held for a pointer gesture to start a selection.
	// Unmodified clicks pass through to the page untouched.
	Activation Modifier
	// Extend adds to the existing selection instead of replacing it.
	Extend Modifier
	// KeyboardToggle enters keyboard mode when pressed with Activation held.
	KeyboardToggle string
	// CopyKey exports the selection when pressed with ctrl or meta held.
	CopyKey string
	// Export controls the clipboard serialization.
	Export clip.Options
	// MaxFaults is the recovered-panic ceiling before the session fuse
	// trips.
	MaxFaults int
}

func (c Config) withDefaults() Config {
	if c.Activation == 0 {
		c.Activation = ModAlt
	}
	if c.Extend == 0 {
		c.Extend = ModShift
	}
	if c.KeyboardToggle == "" {
		c.KeyboardToggle = "k"
	}
	if c.CopyKey == "" {
		c.CopyKey = "c"
	}
	if c.MaxFaults <= 0 {
		c.MaxFaults = DefaultMaxFaults
	}
	return c
}

// Controller drives the engine and pipeline from host events. Like the
// engine it is single-goroutine.
type Controller struct {
	cfg      Config
	engine   *selection.Engine
	pipeline *render.Pipeline
	write    clip.WriteClipboard
	onError  func(error)

	faults     int
	disabled   bool
	lastTarget *dom.Node
}

// NewController creates a controller. write and onError may be nil.
func NewController(cfg Config, engine *selection.Engine, pipeline *render.Pipeline, write clip.WriteClipboard, onError func(error)) *Controller {
	return &Controller{
		cfg:      cfg.withDefaults(),
		engine:   engine,
		pipeline: pipeline,
		write:    write,
		onError:  onError,
	}
}

// Disabled reports whether the session fuse has tripped.
func (c *Controller) Disabled() bool { return c.disabled }

// Faults returns the recovered-panic count.
func (c *Controller) Faults() int { return c.faults }

// recoverFault converts a handler panic into an error, resets the engine
// and pipeline to a safe idle state and trips the session fuse once the
// fault ceiling is reached.
func (c *Controller) recoverFault(err *error) {
	r := recover()
	if r == nil {
		return
	}
	c.engine.EmergencyReset()
	c.pipeline.Reset()
	c.faults++
	if c.faults >= c.cfg.MaxFaults {
		c.disabled = true
	}
	*err = fmt.Errorf("input handler panicked: %v", r)
	c.report(*err)
}

// report forwards non-fatal errors to the host's sink. Capacity rejections
// and resolution misses are expected outcomes, not faults.
func (c *Controller) report(err error) {
	if err != nil && c.onError != nil {
		c.onError(err)
	}
}

// HandlePointer processes a pointer event. Returns true when the event was
// consumed and the host should suppress its default handling.
func (c *Controller) HandlePointer(ev PointerEvent) (consumed bool, err error) {
	if c.disabled {
		return false, selection.ErrInputDisabled("input controller is disabled for this session")
	}
	defer c.recoverFault(&err)

	switch ev.Kind {
	case PointerDown:
		if !ev.Mods.Has(c.cfg.Activation) || ev.Target == nil {
			return false, nil
		}
		c.lastTarget = ev.Target
		c.engine.SetScope(ev.Target)
		if err := c.engine.BeginDrag(ev.Target); err != nil {
			c.report(err)
			return false, nil
		}
		start := c.engine.Drag().Start
		var selErr error
		if ev.Mods.Has(c.cfg.Extend) {
			_, selErr = c.engine.AddRectangle(start, start)
		} else {
			_, selErr = c.engine.ReplaceWithRectangle(start, start)
		}
		c.report(selErr)
		c.pipeline.Paint()
		return true, nil

	case PointerMove:
		if !c.engine.Drag().Active || ev.Target == nil {
			return false, nil
		}
		c.lastTarget = ev.Target
		changed, err := c.engine.UpdateDrag(ev.Target, ev.Mods.Has(c.cfg.Extend))
		if err != nil {
			c.report(err)
			return true, nil
		}
		if changed {
			c.pipeline.Paint()
		}
		return true, nil

	case PointerUp:
		if !c.engine.Drag().Active {
			return false, nil
		}
		c.engine.EndDrag()
		c.pipeline.PaintNow()
		return true, nil

	case DoubleClick:
		if !ev.Mods.Has(c.cfg.Activation) || ev.Target == nil {
			return false, nil
		}
		c.lastTarget = ev.Target
		c.engine.SetScope(ev.Target)
		coord, err := c.engine.CoordOf(ev.Target)
		if err != nil {
			c.report(err)
			return false, nil
		}
		if _, err := c.engine.SelectColumn(coord.Col, ev.Mods.Has(c.cfg.Extend)); err != nil {
			c.report(err)
			return true, nil
		}
		c.pipeline.PaintNow()
		return true, nil
	}
	return false, nil
}

// HandleKey processes a keyboard event. Returns true when the event was
// consumed.
func (c *Controller) HandleKey(ev KeyEvent) (consumed bool, err error) {
	if c.disabled {
		return false, selection.ErrInputDisabled("input controller is disabled for this session")
	}
	defer c.recoverFault(&err)

	extend := ev.Mods.Has(c.cfg.Extend)

	switch ev.Key {
	case "Escape":
		if c.engine.Keyboard().Active {
			c.engine.ExitKeyboardMode()
		}
		c.engine.Clear()
		c.pipeline.PaintNow()
		return true, nil

	case "ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight":
		if !c.engine.Keyboard().Active {
			return false, nil
		}
		dRow, dCol := arrowDelta(ev.Key)
		if err := c.engine.MoveCursor(dRow, dCol, extend); err != nil {
			c.report(err)
		}
		c.pipeline.Paint()
		return true, nil

	case c.cfg.KeyboardToggle:
		if !ev.Mods.Has(c.cfg.Activation) {
			return false, nil
		}
		if c.engine.Keyboard().Active {
			c.engine.ExitKeyboardMode()
			return true, nil
		}
		if c.lastTarget == nil {
			return false, nil
		}
		c.engine.SetScope(c.lastTarget)
		if err := c.engine.EnterKeyboardMode(c.lastTarget); err != nil {
			c.report(err)
			return false, nil
		}
		c.pipeline.PaintNow()
		return true, nil

	case c.cfg.CopyKey:
		if !ev.Mods.Has(ModCtrl) && !ev.Mods.Has(ModMeta) {
			return false, nil
		}
		if c.engine.Selection().Len() == 0 {
			return false, nil
		}
		if err := clip.Copy(c.engine, c.cfg.Export, c.write); err != nil {
			c.report(err)
			return true, nil
		}
		return true, nil
	}
	return false, nil
}

func arrowDelta(key string) (dRow, dCol int) {
	switch key {
	case "ArrowUp":
		return -1, 0
	case "ArrowDown":
		return 1, 0
	case "ArrowLeft":
		return 0, -1
	case "ArrowRight":
		return 0, 1
	}
	return 0, 0
}
