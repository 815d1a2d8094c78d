package coords

import "math"

// Point is a position in screen or SVG space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DataPoint is a position in the data domain.
type DataPoint struct {
	Time float64 `json:"time" toml:"time"`
	Freq float64 `json:"freq" toml:"freq"`
}

// Box is an axis-aligned rectangle in SVG user units.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.Left + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Top + b.Height }

// Contains reports whether p lies inside or on the edge of b.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Left && p.X <= b.Right() && p.Y >= b.Top && p.Y <= b.Bottom()
}

// Empty reports whether b has no area.
func (b Box) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// Domain holds the logical bounds of the spectrogram.
type Domain struct {
	TimeMin float64 `json:"time_min" toml:"time_min"`
	TimeMax float64 `json:"time_max" toml:"time_max"`
	FreqMin float64 `json:"freq_min" toml:"freq_min"`
	FreqMax float64 `json:"freq_max" toml:"freq_max"`
}

// TimeSpan returns TimeMax - TimeMin.
func (d Domain) TimeSpan() float64 { return d.TimeMax - d.TimeMin }

// FreqSpan returns FreqMax - FreqMin.
func (d Domain) FreqSpan() float64 { return d.FreqMax - d.FreqMin }

// Contains reports whether p lies within the domain bounds.
func (d Domain) Contains(p DataPoint) bool {
	return p.Time >= d.TimeMin && p.Time <= d.TimeMax &&
		p.Freq >= d.FreqMin && p.Freq <= d.FreqMax
}

// Clamp returns p limited to the domain bounds.
func (d Domain) Clamp(p DataPoint) DataPoint {
	return DataPoint{
		Time: math.Min(math.Max(p.Time, d.TimeMin), d.TimeMax),
		Freq: math.Min(math.Max(p.Freq, d.FreqMin), d.FreqMax),
	}
}

// Viewport describes where the image is currently rendered.
//
// Box is the zoom-scaled image box in SVG user units. Scale converts SVG
// units to screen pixels (screen = svg × Scale); zero is treated as 1.
// A viewport with Disabled set maps every screen point out of bounds; it is
// used while the instance runs with an invalid domain.
type Viewport struct {
	Box      Box
	Scale    float64
	Disabled bool
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// ToSVG converts a screen pixel position into SVG user units.
func (v Viewport) ToSVG(p Point) Point {
	s := v.scale()
	return Point{X: p.X / s, Y: p.Y / s}
}

// ToScreen converts an SVG user unit position into screen pixels.
func (v Viewport) ToScreen(p Point) Point {
	s := v.scale()
	return Point{X: p.X * s, Y: p.Y * s}
}

// Fraction returns the normalized position of screen point p inside the
// rendered image box. (0,0) is the top-left corner, (1,1) the bottom-right.
func (v Viewport) Fraction(p Point) (fx, fy float64) {
	if v.Box.Empty() {
		return math.NaN(), math.NaN()
	}
	svg := v.ToSVG(p)
	return (svg.X - v.Box.Left) / v.Box.Width, (svg.Y - v.Box.Top) / v.Box.Height
}

// ScreenToData maps a screen point to the data domain.
// ok is false when the point lies outside the rendered image box or the
// viewport is disabled.
func ScreenToData(p Point, v Viewport, d Domain) (dp DataPoint, ok bool) {
	if v.Disabled {
		return DataPoint{}, false
	}
	fx, fy := v.Fraction(p)
	if !inUnit(fx) || !inUnit(fy) {
		return DataPoint{}, false
	}
	return DataPoint{
		Freq: d.FreqMin + fx*d.FreqSpan(),
		Time: d.TimeMax - fy*d.TimeSpan(),
	}, true
}

// DataToScreen maps a data point to screen pixels. Points outside the
// domain extrapolate linearly past the image edges.
func DataToScreen(dp DataPoint, v Viewport, d Domain) Point {
	fx, fy := 0.0, 0.0
	if span := d.FreqSpan(); span != 0 {
		fx = (dp.Freq - d.FreqMin) / span
	}
	if span := d.TimeSpan(); span != 0 {
		fy = (d.TimeMax - dp.Time) / span
	}
	return v.ToScreen(Point{
		X: v.Box.Left + fx*v.Box.Width,
		Y: v.Box.Top + fy*v.Box.Height,
	})
}

// DataToSVG maps a data point to SVG user units inside the image box.
func DataToSVG(dp DataPoint, v Viewport, d Domain) Point {
	return v.ToSVG(DataToScreen(dp, v, d))
}

// ScreenPerFreq returns how many screen pixels one unit of frequency spans.
func ScreenPerFreq(v Viewport, d Domain) float64 {
	if d.FreqSpan() == 0 {
		return 0
	}
	return v.Box.Width * v.scale() / d.FreqSpan()
}

// ScreenPerTime returns how many screen pixels one unit of time spans.
func ScreenPerTime(v Viewport, d Domain) float64 {
	if d.TimeSpan() == 0 {
		return 0
	}
	return v.Box.Height * v.scale() / d.TimeSpan()
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b in data space.
func Midpoint(a, b DataPoint) DataPoint {
	return DataPoint{Time: (a.Time + b.Time) / 2, Freq: (a.Freq + b.Freq) / 2}
}

func inUnit(f float64) bool {
	return f >= 0 && f <= 1
}

// Margins are the axis gutters around the image, in SVG user units.
type Margins struct {
	Left   float64 `json:"left" toml:"left"`
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
}

// DefaultMargins leave room for the time axis labels on the left and the
// frequency axis labels below the image.
var DefaultMargins = Margins{Left: 60, Top: 15, Right: 15, Bottom: 50}
