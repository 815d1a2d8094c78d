package overlay

import (
	"fmt"
	"math"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/state"
	"github.com/matzehuels/gramframe/pkg/zoom"
)

// Kind is the primitive a [Shape] draws.
type Kind string

// Shape kinds.
const (
	KindLine      Kind = "line"
	KindCrosshair Kind = "crosshair"
	KindCircle    Kind = "circle"
	KindLabel     Kind = "label"
	KindPolyline  Kind = "polyline"
)

// Shape is a single drawable primitive.
//
// Lines use (X1,Y1)-(X2,Y2). Crosshairs and circles are centered at (X1,Y1)
// with radius R. Labels anchor their text at (X1,Y1). Polylines use Points.
type Shape struct {
	Kind    Kind           `json:"kind"`
	Feature string         `json:"feature,omitempty"`
	Role    string         `json:"role,omitempty"`
	X1      float64        `json:"x1"`
	Y1      float64        `json:"y1"`
	X2      float64        `json:"x2,omitempty"`
	Y2      float64        `json:"y2,omitempty"`
	R       float64        `json:"r,omitempty"`
	Points  []coords.Point `json:"points,omitempty"`
	Text    string         `json:"text,omitempty"`
	Color   string         `json:"color,omitempty"`
	Dashed  bool           `json:"dashed,omitempty"`
}

// Layer groups the shapes of one feature owner.
type Layer struct {
	Name        string  `json:"name"`
	Interactive bool    `json:"interactive"`
	HitTestable bool    `json:"hit_testable"`
	Shapes      []Shape `json:"shapes"`
}

// Add appends shapes to the layer.
func (l *Layer) Add(s ...Shape) { l.Shapes = append(l.Shapes, s...) }

// Readout is the live coordinate display text.
type Readout struct {
	Time  float64 `json:"time"`
	Freq  float64 `json:"freq"`
	Text  string  `json:"text"`
	Speed string  `json:"speed,omitempty"`
}

// Scene is the full overlay for one instance at one moment.
type Scene struct {
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	Image    coords.Box `json:"image"`
	Source   string     `json:"source,omitempty"`
	Mode     state.Mode `json:"mode"`
	Guidance string     `json:"guidance,omitempty"`
	Degraded string     `json:"degraded,omitempty"`
	Readout  *Readout   `json:"readout,omitempty"`
	Layers   []Layer    `json:"layers"`
}

// Layer returns the layer with the given name.
func (s *Scene) Layer(name string) (*Layer, bool) {
	for i := range s.Layers {
		if s.Layers[i].Name == name {
			return &s.Layers[i], true
		}
	}
	return nil, false
}

// RenderContext gives feature sources what they need to place shapes.
type RenderContext struct {
	State    *state.State
	Viewport coords.Viewport
	Active   bool
}

// ToSVG maps a data point into SVG user units.
func (rc RenderContext) ToSVG(dp coords.DataPoint) coords.Point {
	return coords.DataToSVG(dp, rc.Viewport, rc.State.Config)
}

// FeatureSource draws the persistent features of one mode.
type FeatureSource interface {
	Name() state.Mode
	RenderPersistentFeatures(l *Layer, rc RenderContext)
}

// Layer names that are not modes.
const (
	LayerAxes   = "axes"
	LayerCursor = "cursor"
)

// Build renders every source's persistent features plus the axes and
// cursor layers. It is pure: calling it twice on the same inputs yields
// the same scene.
func Build(st *state.State, sources []FeatureSource, vp coords.Viewport) Scene {
	w, h := zoom.Frame(vp.Box, st.Margins)
	sc := Scene{
		Width:    w,
		Height:   h,
		Image:    vp.Box,
		Source:   st.Image.Source,
		Mode:     st.Mode,
		Guidance: st.Guidance,
		Degraded: st.ConfigError,
	}

	if st.Degraded() {
		// Without a valid domain there is no way to place anything.
		return sc
	}

	sc.Layers = append(sc.Layers, axesLayer(st, vp))
	for _, src := range sources {
		active := src.Name() == st.Mode
		l := Layer{
			Name:        string(src.Name()),
			Interactive: active,
			HitTestable: active || src.Name() == state.ModeAnalysis,
		}
		src.RenderPersistentFeatures(&l, RenderContext{State: st, Viewport: vp, Active: active})
		sc.Layers = append(sc.Layers, l)
	}

	if st.Cursor != nil {
		sc.Layers = append(sc.Layers, cursorLayer(st, vp))
		sc.Readout = readout(st)
	}
	return sc
}

// Hit is the result of [Scene.HitTest].
type Hit struct {
	Layer    string  `json:"layer"`
	Feature  string  `json:"feature"`
	Role     string  `json:"role,omitempty"`
	Distance float64 `json:"distance"`
}

// HitTest returns the closest feature shape within radius of p (SVG
// units). Only hit-testable layers are searched.
func (s *Scene) HitTest(p coords.Point, radius float64) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	for _, l := range s.Layers {
		if !l.HitTestable {
			continue
		}
		for _, sh := range l.Shapes {
			if sh.Feature == "" {
				continue
			}
			d := shapeDistance(sh, p)
			if d <= radius && d < best.Distance {
				best = Hit{Layer: l.Name, Feature: sh.Feature, Role: sh.Role, Distance: d}
			}
		}
	}
	return best, !math.IsInf(best.Distance, 1)
}

func shapeDistance(sh Shape, p coords.Point) float64 {
	switch sh.Kind {
	case KindLine:
		return segmentDistance(p, coords.Point{X: sh.X1, Y: sh.Y1}, coords.Point{X: sh.X2, Y: sh.Y2})
	case KindCrosshair, KindCircle:
		return coords.Distance(p, coords.Point{X: sh.X1, Y: sh.Y1})
	}
	return math.Inf(1)
}

func segmentDistance(p, a, b coords.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return coords.Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return coords.Distance(p, coords.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

const axisTicks = 5

func axesLayer(st *state.State, vp coords.Viewport) Layer {
	l := Layer{Name: LayerAxes}
	b := vp.Box
	d := st.Config
	for i := 0; i <= axisTicks; i++ {
		f := float64(i) / axisTicks

		x := b.Left + f*b.Width
		freq := d.FreqMin + f*d.FreqSpan()
		l.Add(
			Shape{Kind: KindLine, Role: "freq-tick", X1: x, Y1: b.Bottom(), X2: x, Y2: b.Bottom() + 6},
			Shape{Kind: KindLabel, Role: "freq-tick", X1: x, Y1: b.Bottom() + 20, Text: formatValue(freq)},
		)

		y := b.Top + f*b.Height
		t := d.TimeMax - f*d.TimeSpan()
		l.Add(
			Shape{Kind: KindLine, Role: "time-tick", X1: b.Left - 6, Y1: y, X2: b.Left, Y2: y},
			Shape{Kind: KindLabel, Role: "time-tick", X1: b.Left - 10, Y1: y + 4, Text: formatValue(t)},
		)
	}
	return l
}

func cursorLayer(st *state.State, vp coords.Viewport) Layer {
	l := Layer{Name: LayerCursor}
	p := coords.DataToSVG(*st.Cursor, vp, st.Config)
	b := vp.Box
	l.Add(
		Shape{Kind: KindLine, Role: "cursor-v", X1: p.X, Y1: b.Top, X2: p.X, Y2: b.Bottom(), Dashed: true},
		Shape{Kind: KindLine, Role: "cursor-h", X1: b.Left, Y1: p.Y, X2: b.Right(), Y2: p.Y, Dashed: true},
	)
	return l
}

func readout(st *state.State) *Readout {
	r := &Readout{
		Time: st.Cursor.Time,
		Freq: st.Cursor.Freq,
		Text: fmt.Sprintf("Time %.2f s  Freq %.2f Hz", st.Cursor.Time, st.Cursor.Freq),
	}
	if st.Doppler.Speed != nil {
		unit := st.Doppler.Unit
		if unit == "" {
			unit = "kn"
		}
		r.Speed = fmt.Sprintf("%.1f %s", *st.Doppler.Speed, unit)
	}
	return r
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
