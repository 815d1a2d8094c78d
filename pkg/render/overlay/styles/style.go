// Package styles controls how overlay shapes are drawn as SVG.
//
// A [Style] receives fully positioned shapes and decides stroke widths,
// fonts and fallback colors. Shape colors chosen by a mode (marker palette,
// harmonic set colors) always win over the style's defaults.
package styles

import "bytes"

// Style defines the visual appearance of the overlay.
type Style interface {
	// Name is the identifier used on the command line.
	Name() string
	// RenderDefs writes SVG <defs> and <style> content.
	RenderDefs(buf *bytes.Buffer)
	// RenderLine writes a straight segment.
	RenderLine(buf *bytes.Buffer, l Line)
	// RenderMarker writes a crosshair or circular marker.
	RenderMarker(buf *bytes.Buffer, m Marker)
	// RenderLabel writes a text label.
	RenderLabel(buf *bytes.Buffer, t Label)
	// RenderPolyline writes a connected curve.
	RenderPolyline(buf *bytes.Buffer, p Polyline)
}

// Line is a positioned segment.
type Line struct {
	Class          string  // CSS class (role)
	X1, Y1, X2, Y2 float64 // Endpoints
	Color          string  // Empty means the style default
	Dashed         bool
}

// Marker is a positioned point feature.
type Marker struct {
	ID     string
	Class  string
	CX, CY float64
	R      float64
	Color  string
	Cross  bool // Crosshair instead of circle
}

// Label is a positioned text run.
type Label struct {
	Class  string
	X, Y   float64
	Text   string
	Color  string
	Anchor string // SVG text-anchor; empty means "middle"
}

// Polyline is a connected sequence of points.
type Polyline struct {
	Class  string
	Points [][2]float64
	Color  string
	Dashed bool
}

// ByName returns the style registered under name.
func ByName(name string) (Style, bool) {
	switch name {
	case "", "simple":
		return Simple{}, true
	case "contrast":
		return Contrast{}, true
	}
	return nil, false
}

// Names lists the available style names.
func Names() []string { return []string{"simple", "contrast"} }
