// Package analysis implements the marker placement mode.
//
// A click away from existing markers drops a crosshair marker; a click
// within the hit radius of one starts dragging it. The selected marker can
// be nudged with the arrow keys and removed with Delete.
package analysis

import (
	"math"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/render/overlay"
	"github.com/matzehuels/gramframe/pkg/state"
)

const (
	markerRadius   = 8
	selectedRadius = 12
)

// Mode is the Analysis interaction mode.
type Mode struct {
	opts mode.Options
}

// New returns an Analysis mode using opts for hit radius, palette and
// nudge steps.
func New(opts mode.Options) *Mode { return &Mode{opts: opts} }

// Name returns [state.ModeAnalysis].
func (m *Mode) Name() state.Mode { return state.ModeAnalysis }

// GuidanceText describes marker placement and keyboard editing.
func (m *Mode) GuidanceText() string {
	return "Click to place a marker. Drag a marker to move it. Arrow keys nudge the selected marker; Delete removes it."
}

func (m *Mode) InitialState(st *state.State) { st.Analysis.Dragging = "" }

func (m *Mode) Cleanup(st *state.State) { st.Analysis.Dragging = "" }

func (m *Mode) PointerDown(c *mode.Context, ev mode.PointerEvent) {
	if ev.Button != mode.ButtonPrimary {
		return
	}
	if c.State().Analysis.Dragging != "" {
		c.Log().Debug("cancelled stale marker drag", "marker", c.State().Analysis.Dragging)
	}

	if id, ok := Nearest(c, ev.Point(), m.opts.MarkerHitRadius); ok {
		c.Commit(func(st *state.State) {
			st.Analysis.Dragging = id
			st.Analysis.Selected = id
		})
		return
	}

	dp, ok := c.ToData(ev.Point())
	if !ok {
		if c.State().Analysis.Dragging != "" {
			c.Commit(func(st *state.State) { st.Analysis.Dragging = "" })
		}
		return
	}

	id := c.NewID()
	c.Commit(func(st *state.State) {
		st.Analysis.Dragging = ""
		Add(st, state.Marker{ID: id, Time: dp.Time, Freq: dp.Freq}, m.opts)
	})
	c.FeatureAdded(state.ModeAnalysis, id)
}

func (m *Mode) PointerMove(c *mode.Context, ev mode.PointerEvent) {
	id := c.State().Analysis.Dragging
	if id == "" {
		return
	}
	dp, ok := c.ToDataUnclamped(ev.Point())
	if !ok {
		return
	}
	dp = c.State().Config.Clamp(dp)
	c.Commit(func(st *state.State) {
		if mk, ok := st.Analysis.Marker(id); ok {
			mk.Time, mk.Freq = dp.Time, dp.Freq
		}
	})
}

func (m *Mode) PointerUp(c *mode.Context, ev mode.PointerEvent) {
	if c.State().Analysis.Dragging == "" {
		return
	}
	c.Commit(func(st *state.State) { st.Analysis.Dragging = "" })
}

// ContextMenu removes the marker under the pointer.
func (m *Mode) ContextMenu(c *mode.Context, ev mode.PointerEvent) {
	id, ok := Nearest(c, ev.Point(), m.opts.MarkerHitRadius)
	if !ok {
		return
	}
	c.Commit(func(st *state.State) { Remove(st, id) })
}

func (m *Mode) KeyDown(c *mode.Context, ev mode.KeyEvent) bool {
	sel := c.State().Analysis.Selected
	if ev.Key == mode.KeyEscape {
		if sel == "" {
			return false
		}
		c.Commit(func(st *state.State) { st.Analysis.Selected = "" })
		return true
	}

	mk, ok := c.State().Analysis.Marker(sel)
	if !ok {
		return false
	}

	if ev.IsDelete() {
		c.Commit(func(st *state.State) { Remove(st, sel) })
		return true
	}

	dx, dy, ok := ev.Arrow()
	if !ok {
		return false
	}
	d := c.State().Config
	spf, spt := coords.ScreenPerFreq(c.Viewport, d), coords.ScreenPerTime(c.Viewport, d)
	if c.Viewport.Disabled || !(spf > 0) || !(spt > 0) {
		return false
	}
	// Time grows upward, screen y downward.
	step := m.opts.Nudge(ev.Shift)
	dp := d.Clamp(coords.DataPoint{
		Time: mk.Time - dy*step/spt,
		Freq: mk.Freq + dx*step/spf,
	})
	c.Commit(func(st *state.State) {
		if mk, ok := st.Analysis.Marker(sel); ok {
			mk.Time, mk.Freq = dp.Time, dp.Freq
		}
	})
	return true
}

func (m *Mode) RenderPersistentFeatures(l *overlay.Layer, rc overlay.RenderContext) {
	a := rc.State.Analysis
	for _, mk := range a.Markers {
		p := rc.ToSVG(mk.Point())
		l.Add(overlay.Shape{
			Kind: overlay.KindCrosshair, Feature: mk.ID, Role: "marker",
			X1: p.X, Y1: p.Y, R: markerRadius, Color: mk.Color,
		})
		if mk.ID == a.Selected && rc.Active {
			l.Add(overlay.Shape{
				Kind: overlay.KindCircle, Feature: mk.ID, Role: "marker-selected",
				X1: p.X, Y1: p.Y, R: selectedRadius, Color: mk.Color,
			})
		}
	}
}

// Nearest returns the id of the marker closest to screen point p within
// radius pixels.
func Nearest(c *mode.Context, p coords.Point, radius float64) (string, bool) {
	best, bestD := "", math.Inf(1)
	for _, mk := range c.State().Analysis.Markers {
		d := coords.Distance(p, c.ToScreen(mk.Point()))
		if d <= radius && d < bestD {
			best, bestD = mk.ID, d
		}
	}
	return best, best != ""
}

// Add appends mk with the next palette color when it has none, and selects
// it.
func Add(st *state.State, mk state.Marker, opts mode.Options) {
	if mk.Color == "" {
		mk.Color = opts.Color(st.Analysis.ColorIndex)
		st.Analysis.ColorIndex++
	}
	st.Analysis.Markers = append(st.Analysis.Markers, mk)
	st.Analysis.Selected = mk.ID
}

// Remove deletes the marker with the given id. It reports whether a marker
// was removed.
func Remove(st *state.State, id string) bool {
	a := &st.Analysis
	for i := range a.Markers {
		if a.Markers[i].ID != id {
			continue
		}
		a.Markers = append(a.Markers[:i], a.Markers[i+1:]...)
		if a.Selected == id {
			a.Selected = ""
		}
		if a.Dragging == id {
			a.Dragging = ""
		}
		return true
	}
	return false
}

// Clear removes every marker.
func Clear(st *state.State) {
	st.Analysis.Markers = nil
	st.Analysis.Selected = ""
	st.Analysis.Dragging = ""
}
