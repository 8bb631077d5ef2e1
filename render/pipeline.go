package render

import (
	"time"

	"github.com/AYColumbia/gridgrab/dom"
	"github.com/AYColumbia/gridgrab/selection"
)

// Defaults for the pipeline config.
const (
	DefaultHighlightClass   = "gg-selected"
	DefaultInterval         = 50 * time.Millisecond
	DefaultFrameBudget      = 16 * time.Millisecond
	DefaultQuietPeriod      = 2 * time.Second
	DefaultMaxCellsPerFlush = 400
	DefaultStatsCellCap     = 2000
)

// Config holds the pipeline's tunables.
type Config struct {
	// HighlightClass is the class token painted onto selected cells.
	HighlightClass string
	// Interval is the minimum spacing between repaints.
	Interval time.Duration
	// FrameBudget is the per-flush time budget; flushes costing more trip
	// the adaptive backoff.
	FrameBudget time.Duration
	// QuietPeriod without budget violations resets the backoff.
	QuietPeriod time.Duration
	// MaxCellsPerFlush caps the cells touched per flush; the remainder is
	// deferred to a subsequent tick.
	MaxCellsPerFlush int
	// StatsCellCap caps the cells visited for numeric aggregation.
	StatsCellCap int
}

func (c Config) withDefaults() Config {
	if c.HighlightClass == "" {
		c.HighlightClass = DefaultHighlightClass
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.FrameBudget <= 0 {
		c.FrameBudget = DefaultFrameBudget
	}
	if c.QuietPeriod <= 0 {
		c.QuietPeriod = DefaultQuietPeriod
	}
	if c.MaxCellsPerFlush <= 0 {
		c.MaxCellsPerFlush = DefaultMaxCellsPerFlush
	}
	if c.StatsCellCap <= 0 {
		c.StatsCellCap = DefaultStatsCellCap
	}
	return c
}

// Pipeline paints selection highlights. Paint may be invoked at high
// frequency; it is throttled internally and each flush touches at most
// MaxCellsPerFlush cells, carrying the remainder over to the next tick.
// Like the engine, the pipeline is single-goroutine: with the default
// scheduler, deferred flushes run only when the host calls Tick from its
// event loop.
type Pipeline struct {
	cfg    Config
	engine *selection.Engine

	throttle *Throttle
	timers   *TimerQueue

	// Carry-over work deferred by the per-flush cap.
	pendingAdd    map[uint64]selection.Coord
	pendingRemove map[uint64]selection.Coord
}

// NewPipeline creates a pipeline for the engine. A nil clock uses time.Now.
// A nil scheduler installs a polled TimerQueue drained by Tick; an injected
// scheduler must marshal its callbacks onto the engine's goroutine.
func NewPipeline(cfg Config, engine *selection.Engine, clock Clock, sched Scheduler) *Pipeline {
	p := &Pipeline{
		cfg:           cfg.withDefaults(),
		engine:        engine,
		pendingAdd:    make(map[uint64]selection.Coord),
		pendingRemove: make(map[uint64]selection.Coord),
	}
	if clock == nil {
		clock = time.Now
	}
	if sched == nil {
		p.timers = NewTimerQueue(clock)
		sched = p.timers
	}
	p.throttle = NewThrottle(p.cfg.Interval, p.cfg.FrameBudget, p.cfg.QuietPeriod, clock, sched, func() {
		p.flush()
	})
	return p
}

// Tick runs due deferred paint work on the calling goroutine. Hosts using
// the default scheduler call this from their event loop; with an injected
// scheduler it is a no-op. Returns the number of flushes that ran.
func (p *Pipeline) Tick() int {
	if p.timers == nil {
		return 0
	}
	return p.timers.Process()
}

// Paint requests a repaint. Safe to call on every pointer move; bursts are
// coalesced by the throttle.
func (p *Pipeline) Paint() {
	p.throttle.Call()
}

// PaintNow flushes immediately, bypassing the throttle, and returns the
// number of cells touched. Used for the final paint at gesture end.
func (p *Pipeline) PaintNow() int {
	return p.flush()
}

// flush drains the engine's paint queues into the carry-over maps and
// applies up to MaxCellsPerFlush class mutations. Coordinates that no
// longer resolve to a live cell are skipped. Painting is idempotent: an
// unchanged selection produces no queue entries and therefore no DOM
// mutations.
func (p *Pipeline) flush() int {
	add, remove := p.engine.DrainPaint()
	for _, c := range add {
		k := c.Key()
		delete(p.pendingRemove, k)
		p.pendingAdd[k] = c
	}
	for _, c := range remove {
		k := c.Key()
		delete(p.pendingAdd, k)
		p.pendingRemove[k] = c
	}

	touched := 0
	for k, c := range p.pendingRemove {
		if touched >= p.cfg.MaxCellsPerFlush {
			break
		}
		delete(p.pendingRemove, k)
		if cell := p.engine.CellAt(c); cell != nil {
			cell.RemoveClass(p.cfg.HighlightClass)
			touched++
		}
	}
	for k, c := range p.pendingAdd {
		if touched >= p.cfg.MaxCellsPerFlush {
			break
		}
		delete(p.pendingAdd, k)
		if cell := p.engine.CellAt(c); cell != nil {
			cell.AddClass(p.cfg.HighlightClass)
			touched++
		}
	}

	if len(p.pendingAdd) > 0 || len(p.pendingRemove) > 0 {
		// Deferred remainder; schedule another tick.
		p.throttle.Schedule()
	}
	return touched
}

// PendingCells returns how many cell mutations are deferred to later ticks.
func (p *Pipeline) PendingCells() int {
	return len(p.pendingAdd) + len(p.pendingRemove)
}

// Backoff returns the throttle's current effective interval.
func (p *Pipeline) Backoff() time.Duration {
	return p.throttle.Effective()
}

// Reset discards deferred paint additions and synchronously strips the
// highlight class from every cell still queued for removal, so a failure
// leaves no stale highlights in the page. The per-flush cap does not apply
// here. Called after the engine's emergency reset.
func (p *Pipeline) Reset() {
	_, remove := p.engine.DrainPaint()
	for _, c := range remove {
		p.pendingRemove[c.Key()] = c
	}
	for _, c := range p.pendingRemove {
		if cell := p.engine.CellAt(c); cell != nil {
			cell.RemoveClass(p.cfg.HighlightClass)
		}
	}
	p.pendingAdd = make(map[uint64]selection.Coord)
	p.pendingRemove = make(map[uint64]selection.Coord)
}

// BoundingBox returns the union of the drag start and current cells' layout
// rects. The second return is false when no drag is active or neither cell
// reports layout.
func (p *Pipeline) BoundingBox() (dom.Rect, bool) {
	drag := p.engine.Drag()
	if !drag.Active {
		return dom.Rect{}, false
	}
	var box dom.Rect
	have := false
	for _, c := range []selection.Coord{drag.Start, drag.Current} {
		cell := p.engine.CellAt(c)
		if cell == nil || !cell.HasRect() {
			continue
		}
		if !have {
			box = cell.BoundingRect()
			have = true
		} else {
			box = box.Union(cell.BoundingRect())
		}
	}
	return box, have
}
