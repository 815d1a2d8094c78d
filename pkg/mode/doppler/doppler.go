// Package doppler implements the Doppler fit mode.
//
// The fit is a small state machine over three markers: f+ (the later-time
// end of the curve), f− (the earlier-time end) and f₀ (the inflection).
//
//	Idle ──down──▶ PlacingPreview ──up──▶ Placed ──down on marker──▶ Dragging
//	  ▲                                     ▲  ◀──────────up───────────┘
//	  └──────────── context menu / Escape ──┘
//
// f₀ is set to the midpoint of the endpoints only when the fit is first
// placed; afterwards it is an independent marker and dragging an endpoint
// leaves it where it is.
package doppler

import (
	"fmt"
	"math"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/render/overlay"
	"github.com/matzehuels/gramframe/pkg/state"
	"github.com/matzehuels/gramframe/pkg/units"
)

const (
	markerRadius = 7
	curveSamples = 24
)

// Mode is the Doppler interaction mode.
type Mode struct {
	opts mode.Options
}

// New returns a Doppler mode using opts for hit radius, sound speed and
// speed unit.
func New(opts mode.Options) *Mode { return &Mode{opts: opts} }

// Name returns [state.ModeDoppler].
func (m *Mode) Name() state.Mode { return state.ModeDoppler }

// GuidanceText describes how to place and refine the fit.
func (m *Mode) GuidanceText() string {
	return "Drag along the Doppler curve to place f+ and f−. Drag any marker to refine the fit; right-click or Escape clears it."
}

func (m *Mode) InitialState(st *state.State) {
	if st.Doppler.Phase == "" {
		st.Doppler.Phase = state.DopplerIdle
	}
}

// Cleanup finishes an interrupted interaction: an unfinished placement is
// discarded and an unfinished drag is completed in place.
func (m *Mode) Cleanup(st *state.State) {
	switch st.Doppler.Phase {
	case state.DopplerPlacingPreview:
		st.Doppler.Reset()
	case state.DopplerDragging:
		m.finishDrag(st)
	}
}

func (m *Mode) PointerDown(c *mode.Context, ev mode.PointerEvent) {
	if ev.Button != mode.ButtonPrimary {
		return
	}
	if ph := c.State().Doppler.Phase; ph == state.DopplerPlacingPreview || ph == state.DopplerDragging {
		c.Log().Debug("cancelled stale doppler interaction", "phase", ph)
		c.Commit(m.Cleanup)
	}

	p := ev.Point()
	switch c.State().Doppler.Phase {
	case state.DopplerPlaced:
		target, ok := m.nearest(c, p)
		if !ok {
			return
		}
		c.Commit(func(st *state.State) {
			st.Doppler.Phase = state.DopplerDragging
			st.Doppler.DragTarget = target
		})

	default:
		dp, ok := c.ToData(p)
		if !ok {
			return
		}
		c.Commit(func(st *state.State) {
			d := &st.Doppler
			d.Reset()
			d.FPlus = point(dp)
			d.FMinus = point(dp)
			d.FZero = point(dp)
			d.Phase = state.DopplerPlacingPreview
		})
	}
}

func (m *Mode) PointerMove(c *mode.Context, ev mode.PointerEvent) {
	ph := c.State().Doppler.Phase
	if ph != state.DopplerPlacingPreview && ph != state.DopplerDragging {
		return
	}
	dp, ok := c.ToDataUnclamped(ev.Point())
	if !ok {
		return
	}
	dp = c.State().Config.Clamp(dp)

	c.Commit(func(st *state.State) {
		d := &st.Doppler
		switch d.Phase {
		case state.DopplerPlacingPreview:
			d.FMinus = point(dp)
			mid := coords.Midpoint(*d.FPlus, *d.FMinus)
			d.FZero = &mid
		case state.DopplerDragging:
			if mk := d.Point(d.DragTarget); mk != nil {
				*mk = dp
			}
		}
		m.updateSpeed(d)
	})
}

func (m *Mode) PointerUp(c *mode.Context, ev mode.PointerEvent) {
	switch c.State().Doppler.Phase {
	case state.DopplerPlacingPreview:
		c.Commit(func(st *state.State) {
			d := &st.Doppler
			if d.FPlus.Time <= d.FMinus.Time {
				d.FPlus, d.FMinus = d.FMinus, d.FPlus
			}
			mid := coords.Midpoint(*d.FPlus, *d.FMinus)
			d.FZero = &mid
			d.Phase = state.DopplerPlaced
			m.updateSpeed(d)
		})
		c.FeatureAdded(state.ModeDoppler, "fit")
	case state.DopplerDragging:
		c.Commit(m.finishDrag)
	}
}

// ContextMenu clears the fit.
func (m *Mode) ContextMenu(c *mode.Context, ev mode.PointerEvent) {
	c.Commit(func(st *state.State) { st.Doppler.Reset() })
}

func (m *Mode) KeyDown(c *mode.Context, ev mode.KeyEvent) bool {
	if ev.Key != mode.KeyEscape && !ev.IsDelete() {
		return false
	}
	if c.State().Doppler.Phase == state.DopplerIdle {
		return false
	}
	c.Commit(func(st *state.State) { st.Doppler.Reset() })
	return true
}

func (m *Mode) finishDrag(st *state.State) {
	d := &st.Doppler
	Normalize(d)
	d.Phase = state.DopplerPlaced
	d.DragTarget = state.PointNone
	m.updateSpeed(d)
}

// nearest returns the fit marker closest to p within the hit radius.
func (m *Mode) nearest(c *mode.Context, p coords.Point) (state.DopplerPoint, bool) {
	d := &c.State().Doppler
	best, bestD := state.PointNone, math.Inf(1)
	for _, which := range []state.DopplerPoint{state.PointFPlus, state.PointFMinus, state.PointFZero} {
		mk := d.Point(which)
		if mk == nil {
			continue
		}
		dist := coords.Distance(p, c.ToScreen(*mk))
		if dist <= m.opts.DopplerHitRadius && dist < bestD {
			best, bestD = which, dist
		}
	}
	return best, best != state.PointNone
}

func (m *Mode) updateSpeed(d *state.DopplerFit) {
	d.SpeedMPS, d.Speed, d.Unit = nil, nil, ""
	if d.FPlus == nil || d.FMinus == nil || d.FZero == nil {
		return
	}
	mps, ok := units.DopplerSpeed(d.FPlus.Freq, d.FMinus.Freq, d.FZero.Freq, m.soundSpeed())
	if !ok {
		return
	}
	shown := units.ConvertSpeed(mps, m.unit())
	d.SpeedMPS, d.Speed, d.Unit = &mps, &shown, m.unit()
}

func (m *Mode) soundSpeed() float64 {
	if m.opts.SoundSpeed > 0 {
		return m.opts.SoundSpeed
	}
	return units.DefaultSoundSpeed
}

// Normalize swaps the endpoints so that FPlus is the later-time point.
func Normalize(d *state.DopplerFit) {
	if d.FPlus != nil && d.FMinus != nil && d.FPlus.Time < d.FMinus.Time {
		d.FPlus, d.FMinus = d.FMinus, d.FPlus
	}
}

// Set replaces the fit with the given markers, normalizes it and computes
// the speed. A nil fZero is placed at the midpoint of the endpoints.
func (m *Mode) Set(st *state.State, fPlus, fMinus coords.DataPoint, fZero *coords.DataPoint) {
	d := &st.Doppler
	d.Reset()
	d.FPlus, d.FMinus = point(fPlus), point(fMinus)
	Normalize(d)
	if fZero == nil {
		mid := coords.Midpoint(*d.FPlus, *d.FMinus)
		fZero = &mid
	}
	d.FZero = point(*fZero)
	d.Phase = state.DopplerPlaced
	m.updateSpeed(d)
}

func (m *Mode) RenderPersistentFeatures(l *overlay.Layer, rc overlay.RenderContext) {
	d := rc.State.Doppler
	if d.FPlus == nil || d.FMinus == nil || d.FZero == nil {
		return
	}

	l.Add(overlay.Shape{
		Kind: overlay.KindPolyline, Role: "doppler-curve",
		Points: curve(rc, *d.FMinus, *d.FZero, *d.FPlus), Dashed: d.Phase == state.DopplerPlacingPreview,
	})

	for _, mk := range []struct {
		which state.DopplerPoint
		at    coords.DataPoint
		label string
		kind  overlay.Kind
	}{
		{state.PointFPlus, *d.FPlus, "f+", overlay.KindCircle},
		{state.PointFMinus, *d.FMinus, "f−", overlay.KindCircle},
		{state.PointFZero, *d.FZero, "f₀", overlay.KindCrosshair},
	} {
		p := rc.ToSVG(mk.at)
		role := "doppler-marker"
		if d.Phase == state.DopplerDragging && d.DragTarget == mk.which {
			role = "doppler-marker-dragging"
		}
		l.Add(
			overlay.Shape{Kind: mk.kind, Feature: string(mk.which), Role: role, X1: p.X, Y1: p.Y, R: markerRadius},
			overlay.Shape{Kind: overlay.KindLabel, Role: "doppler-label", X1: p.X + 12, Y1: p.Y - 8, Text: mk.label},
		)
	}

	if d.Speed != nil && rc.Active {
		p := rc.ToSVG(*d.FZero)
		l.Add(overlay.Shape{
			Kind: overlay.KindLabel, Role: "doppler-speed",
			X1: p.X + 12, Y1: p.Y + 16, Text: fmt.Sprintf("%.1f %s", *d.Speed, m.unit()),
		})
	}
}

func (m *Mode) unit() string {
	if units.IsValid(m.opts.SpeedUnit) {
		return m.opts.SpeedUnit
	}
	return units.Knots
}

// curve samples an S-shaped curve from fMinus through fZero to fPlus in SVG
// units: flat at the endpoints, steepest at fZero.
func curve(rc overlay.RenderContext, fMinus, fZero, fPlus coords.DataPoint) []coords.Point {
	pts := make([]coords.Point, 0, 2*curveSamples+1)
	seg := func(a, b coords.DataPoint, ease func(float64) float64, from int) {
		for i := from; i <= curveSamples; i++ {
			u := float64(i) / curveSamples
			pts = append(pts, rc.ToSVG(coords.DataPoint{
				Time: a.Time + u*(b.Time-a.Time),
				Freq: a.Freq + ease(u)*(b.Freq-a.Freq),
			}))
		}
	}
	seg(fMinus, fZero, func(u float64) float64 { return u * u }, 0)
	seg(fZero, fPlus, func(u float64) float64 { return 1 - (1-u)*(1-u) }, 1)
	return pts
}

func point(dp coords.DataPoint) *coords.DataPoint { return &dp }
