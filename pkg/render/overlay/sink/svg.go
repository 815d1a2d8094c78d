package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/gramframe/pkg/render/overlay"
	"github.com/matzehuels/gramframe/pkg/render/overlay/styles"
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style    styles.Style
	image    bool
	readout  bool
	guidance bool
}

// WithStyle selects the visual style. The default is simple.
func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithoutImage omits the <image> element, leaving only the overlay.
func WithoutImage() SVGOption { return func(r *svgRenderer) { r.image = false } }

// WithReadout draws the cursor readout.
func WithReadout() SVGOption { return func(r *svgRenderer) { r.readout = true } }

// WithGuidance draws the active mode's guidance text.
func WithGuidance() SVGOption { return func(r *svgRenderer) { r.guidance = true } }

// RenderSVG draws sc as a standalone SVG document.
func RenderSVG(sc overlay.Scene, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" data-mode="%s">`+"\n",
		sc.Width, sc.Height, sc.Width, sc.Height, sc.Mode)

	r.style.RenderDefs(&buf)

	if r.image && sc.Source != "" {
		fmt.Fprintf(&buf, `  <image href="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" preserveAspectRatio="none"/>`+"\n",
			styles.EscapeXML(sc.Source), sc.Image.Left, sc.Image.Top, sc.Image.Width, sc.Image.Height)
	}
	fmt.Fprintf(&buf, `  <rect class="image-bounds" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#888888"/>`+"\n",
		sc.Image.Left, sc.Image.Top, sc.Image.Width, sc.Image.Height)

	if sc.Degraded != "" {
		renderDegraded(&buf, r.style, sc)
	}

	for _, l := range sc.Layers {
		renderLayer(&buf, r.style, l)
	}

	if r.readout && sc.Readout != nil {
		r.style.RenderLabel(&buf, styles.Label{
			Class: "readout", X: sc.Image.Right(), Y: sc.Height - 8, Text: sc.Readout.Text, Anchor: "end",
		})
		if sc.Readout.Speed != "" {
			r.style.RenderLabel(&buf, styles.Label{
				Class: "readout-speed", X: sc.Image.Left, Y: sc.Height - 8, Text: sc.Readout.Speed, Anchor: "start",
			})
		}
	}
	if r.guidance && sc.Guidance != "" {
		r.style.RenderLabel(&buf, styles.Label{
			Class: "guidance", X: sc.Image.Left + 4, Y: sc.Image.Top + 14, Text: sc.Guidance, Anchor: "start",
		})
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Simple{}, image: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderDegraded(buf *bytes.Buffer, s styles.Style, sc overlay.Scene) {
	cx := sc.Image.Left + sc.Image.Width/2
	cy := sc.Image.Top + sc.Image.Height/2
	s.RenderLabel(buf, styles.Label{Class: "config-error", X: cx, Y: cy, Text: "Invalid configuration: " + sc.Degraded, Color: "#cc0000"})
}

func renderLayer(buf *bytes.Buffer, s styles.Style, l overlay.Layer) {
	events := ""
	if !l.Interactive {
		events = ` pointer-events="none"`
	}
	fmt.Fprintf(buf, `  <g class="layer layer-%s"%s>`+"\n", l.Name, events)
	for _, sh := range l.Shapes {
		renderShape(buf, s, sh)
	}
	buf.WriteString("  </g>\n")
}

func renderShape(buf *bytes.Buffer, s styles.Style, sh overlay.Shape) {
	switch sh.Kind {
	case overlay.KindLine:
		s.RenderLine(buf, styles.Line{
			Class: sh.Role, X1: sh.X1, Y1: sh.Y1, X2: sh.X2, Y2: sh.Y2, Color: sh.Color, Dashed: sh.Dashed,
		})
	case overlay.KindCrosshair, overlay.KindCircle:
		s.RenderMarker(buf, styles.Marker{
			ID: sh.Feature, Class: sh.Role, CX: sh.X1, CY: sh.Y1, R: sh.R, Color: sh.Color, Cross: sh.Kind == overlay.KindCrosshair,
		})
	case overlay.KindLabel:
		s.RenderLabel(buf, styles.Label{Class: sh.Role, X: sh.X1, Y: sh.Y1, Text: sh.Text, Color: sh.Color})
	case overlay.KindPolyline:
		pts := make([][2]float64, len(sh.Points))
		for i, p := range sh.Points {
			pts[i] = [2]float64{p.X, p.Y}
		}
		s.RenderPolyline(buf, styles.Polyline{Class: sh.Role, Points: pts, Color: sh.Color, Dashed: sh.Dashed})
	}
}
