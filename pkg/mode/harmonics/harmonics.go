// Package harmonics implements the harmonic ladder mode.
//
// Dragging on the spectrogram builds a set of vertical lines at integer
// multiples of a fundamental frequency. Horizontal pointer movement runs
// along the frequency axis and sets the fundamental (cursor frequency
// divided by the grabbed harmonic number); vertical movement runs along the
// time axis and shifts the set's anchor time. Both follow the pointer
// continuously; the dominant axis is recorded as the candidate's emphasis.
package harmonics

import (
	"fmt"
	"math"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/render/overlay"
	"github.com/matzehuels/gramframe/pkg/state"
)

// MinSpacing is the smallest screen distance, in pixels, between adjacent
// lines of a set built by pointer.
const MinSpacing = 1.0

// Mode is the Harmonics interaction mode.
type Mode struct {
	opts mode.Options
}

// New returns the Harmonics mode.
func New(opts mode.Options) *Mode { return &Mode{opts: opts} }

// Name returns [state.ModeHarmonics].
func (m *Mode) Name() state.Mode { return state.ModeHarmonics }

// GuidanceText describes how to build and edit sets.
func (m *Mode) GuidanceText() string {
	return "Drag to build a harmonic set: left/right sets the fundamental, up/down moves the anchor time. Drag a line to adjust a set; Delete removes the selected set."
}

func (m *Mode) InitialState(st *state.State) { st.Harmonics.Candidate = nil }

func (m *Mode) Cleanup(st *state.State) { st.Harmonics.Candidate = nil }

// Line is one rendered harmonic.
type Line struct {
	N    int
	Freq float64
}

// Lines returns the harmonics of a fundamental f that fall at or below the
// top of the frequency domain. Every such harmonic is returned.
func Lines(f float64, d coords.Domain) []Line {
	if !(f > 0) || math.IsInf(f, 0) {
		return nil
	}
	var out []Line
	for n := 1; float64(n)*f <= d.FreqMax; n++ {
		out = append(out, Line{N: n, Freq: float64(n) * f})
	}
	return out
}

func (m *Mode) PointerDown(c *mode.Context, ev mode.PointerEvent) {
	if ev.Button != mode.ButtonPrimary {
		return
	}
	if c.State().Harmonics.Candidate != nil {
		c.Log().Debug("cancelled stale harmonic drag")
	}

	p := ev.Point()
	dp, ok := c.ToData(p)
	if !ok {
		if c.State().Harmonics.Candidate != nil {
			c.Commit(func(st *state.State) { st.Harmonics.Candidate = nil })
		}
		return
	}

	cand := &state.HarmonicCandidate{
		Origin:          p,
		AnchorFreq:      dp.Freq,
		AnchorTime:      dp.Time,
		DownTime:        dp.Time,
		BaseAnchorTime:  dp.Time,
		FundamentalFreq: math.Max(dp.Freq, MinFundamental(c.Viewport, c.State().Config)),
		Harmonic:        1,
	}
	if set, n, ok := m.hit(c, p); ok {
		cand.SetID = set.ID
		cand.AnchorTime = set.AnchorTime
		cand.BaseAnchorTime = set.AnchorTime
		cand.FundamentalFreq = set.FundamentalFreq
		cand.Harmonic = n
	}
	c.Commit(func(st *state.State) {
		st.Harmonics.Candidate = cand
		if cand.SetID != "" {
			st.Harmonics.Selected = cand.SetID
		}
	})
}

func (m *Mode) PointerMove(c *mode.Context, ev mode.PointerEvent) {
	cand := c.State().Harmonics.Candidate
	if cand == nil {
		return
	}
	p := ev.Point()
	dp, ok := c.ToDataUnclamped(p)
	if !ok {
		return
	}
	d := c.State().Config
	dp = d.Clamp(dp)

	next := *cand
	dx, dy := math.Abs(p.X-cand.Origin.X), math.Abs(p.Y-cand.Origin.Y)
	switch {
	case dx == 0 && dy == 0:
		next.Emphasis = state.AxisNone
	case dx >= dy:
		next.Emphasis = state.AxisFreq
	default:
		next.Emphasis = state.AxisTime
	}
	next.AnchorTime = clampTime(cand.BaseAnchorTime+dp.Time-cand.DownTime, d)
	if f := dp.Freq / float64(cand.Harmonic); f > 0 {
		next.FundamentalFreq = math.Max(f, MinFundamental(c.Viewport, d))
	}
	c.Commit(func(st *state.State) { st.Harmonics.Candidate = &next })
}

func (m *Mode) PointerUp(c *mode.Context, ev mode.PointerEvent) {
	cand := c.State().Harmonics.Candidate
	if cand == nil {
		return
	}
	if !(cand.FundamentalFreq > 0) {
		c.Commit(func(st *state.State) { st.Harmonics.Candidate = nil })
		return
	}

	if cand.SetID != "" {
		c.Commit(func(st *state.State) {
			if set, ok := st.Harmonics.Set(cand.SetID); ok {
				set.AnchorTime = cand.AnchorTime
				set.FundamentalFreq = cand.FundamentalFreq
				set.Rate = cand.FundamentalFreq
			}
			st.Harmonics.Candidate = nil
		})
		return
	}

	id := c.NewID()
	c.Commit(func(st *state.State) {
		st.Harmonics.Candidate = nil
		Add(st, state.HarmonicSet{
			ID:              id,
			AnchorTime:      cand.AnchorTime,
			FundamentalFreq: cand.FundamentalFreq,
			Rate:            cand.FundamentalFreq,
		}, m.opts)
	})
	c.FeatureAdded(state.ModeHarmonics, id)
}

// ContextMenu abandons the candidate, or removes the set under the pointer.
func (m *Mode) ContextMenu(c *mode.Context, ev mode.PointerEvent) {
	if c.State().Harmonics.Candidate != nil {
		c.Commit(func(st *state.State) { st.Harmonics.Candidate = nil })
		return
	}
	if set, _, ok := m.hit(c, ev.Point()); ok {
		id := set.ID
		c.Commit(func(st *state.State) { Remove(st, id) })
	}
}

func (m *Mode) KeyDown(c *mode.Context, ev mode.KeyEvent) bool {
	h := c.State().Harmonics
	switch {
	case ev.Key == mode.KeyEscape && h.Candidate != nil:
		c.Commit(func(st *state.State) { st.Harmonics.Candidate = nil })
		return true
	case ev.Key == mode.KeyEscape && h.Selected != "":
		c.Commit(func(st *state.State) { st.Harmonics.Selected = "" })
		return true
	case ev.IsDelete() && h.Selected != "":
		id := h.Selected
		c.Commit(func(st *state.State) { Remove(st, id) })
		return true
	}
	return false
}

// hit returns the set whose line lies closest to screen point p within the
// harmonic hit radius, along with the grabbed harmonic number.
func (m *Mode) hit(c *mode.Context, p coords.Point) (state.HarmonicSet, int, bool) {
	st := c.State()
	half := c.Viewport.ToScreen(coords.Point{Y: m.lineHeight() * c.Viewport.Box.Height / 2}).Y

	best, bestN, bestD := state.HarmonicSet{}, 0, math.Inf(1)
	for _, set := range st.Harmonics.Sets {
		for _, ln := range Lines(set.FundamentalFreq, st.Config) {
			center := c.ToScreen(coords.DataPoint{Time: set.AnchorTime, Freq: ln.Freq})
			d := distanceToVertical(p, center, half)
			if d <= m.opts.HarmonicHitRadius && d < bestD {
				best, bestN, bestD = set, ln.N, d
			}
		}
	}
	return best, bestN, bestN > 0
}

// MinFundamental returns the fundamental whose lines lie [MinSpacing]
// pixels apart in v. It is zero when the viewport has no extent.
func MinFundamental(v coords.Viewport, d coords.Domain) float64 {
	spf := coords.ScreenPerFreq(v, d)
	if !(spf > 0) {
		return 0
	}
	return MinSpacing / spf
}

func distanceToVertical(p, center coords.Point, half float64) float64 {
	dy := 0.0
	switch {
	case p.Y < center.Y-half:
		dy = center.Y - half - p.Y
	case p.Y > center.Y+half:
		dy = p.Y - center.Y - half
	}
	return math.Hypot(p.X-center.X, dy)
}

func (m *Mode) lineHeight() float64 {
	if m.opts.LineHeight <= 0 || m.opts.LineHeight > 1 {
		return 0.2
	}
	return m.opts.LineHeight
}

func clampTime(t float64, d coords.Domain) float64 {
	return math.Max(d.TimeMin, math.Min(d.TimeMax, t))
}

func (m *Mode) RenderPersistentFeatures(l *overlay.Layer, rc overlay.RenderContext) {
	h := rc.State.Harmonics
	for _, set := range h.Sets {
		if h.Candidate != nil && h.Candidate.SetID == set.ID {
			continue
		}
		m.renderSet(l, rc, set.ID, set.AnchorTime, set.FundamentalFreq, set.Color, false)
		if set.ID == h.Selected && rc.Active {
			top := m.top(rc, set.AnchorTime, set.FundamentalFreq)
			l.Add(overlay.Shape{
				Kind: overlay.KindLabel, Feature: set.ID, Role: "harmonic-rate",
				X1: top.X, Y1: top.Y - 6, Text: fmt.Sprintf("%.1f Hz", set.Rate), Color: set.Color,
			})
		}
	}
	if c := h.Candidate; c != nil && rc.Active {
		color := ""
		if set, ok := h.Set(c.SetID); ok {
			color = set.Color
		}
		m.renderSet(l, rc, "", c.AnchorTime, c.FundamentalFreq, color, true)
	}
}

func (m *Mode) top(rc overlay.RenderContext, anchor, f float64) coords.Point {
	p := rc.ToSVG(coords.DataPoint{Time: anchor, Freq: f})
	p.Y -= m.lineHeight() * rc.Viewport.Box.Height / 2
	return p
}

func (m *Mode) renderSet(l *overlay.Layer, rc overlay.RenderContext, id string, anchor, f float64, color string, candidate bool) {
	half := m.lineHeight() * rc.Viewport.Box.Height / 2
	role := "harmonic"
	if candidate {
		role = "harmonic-candidate"
	}
	for _, ln := range Lines(f, rc.State.Config) {
		if ln.Freq < rc.State.Config.FreqMin {
			continue
		}
		c := rc.ToSVG(coords.DataPoint{Time: anchor, Freq: ln.Freq})
		l.Add(overlay.Shape{
			Kind: overlay.KindLine, Feature: id, Role: role,
			X1: c.X, Y1: c.Y - half, X2: c.X, Y2: c.Y + half,
			Color: color, Dashed: candidate,
		})
		l.Add(overlay.Shape{
			Kind: overlay.KindLabel, Role: role + "-number",
			X1: c.X, Y1: c.Y + half + 12, Text: fmt.Sprint(ln.N), Color: color,
		})
	}
}

// Add appends set with the next palette color when it has none, and
// selects it.
func Add(st *state.State, set state.HarmonicSet, opts mode.Options) {
	if set.Color == "" {
		set.Color = opts.Color(st.Harmonics.ColorIndex)
		st.Harmonics.ColorIndex++
	}
	if set.Rate == 0 {
		set.Rate = set.FundamentalFreq
	}
	st.Harmonics.Sets = append(st.Harmonics.Sets, set)
	st.Harmonics.Selected = set.ID
}

// Remove deletes the set with the given id.
func Remove(st *state.State, id string) bool {
	h := &st.Harmonics
	for i := range h.Sets {
		if h.Sets[i].ID != id {
			continue
		}
		h.Sets = append(h.Sets[:i], h.Sets[i+1:]...)
		if h.Selected == id {
			h.Selected = ""
		}
		if h.Candidate != nil && h.Candidate.SetID == id {
			h.Candidate = nil
		}
		return true
	}
	return false
}

// Clear removes every set.
func Clear(st *state.State) {
	st.Harmonics.Sets = nil
	st.Harmonics.Selected = ""
	st.Harmonics.Candidate = nil
}
