package styles

import (
	"bytes"
	"fmt"
)

// Contrast draws heavy black-outlined strokes for projection and print,
// where thin colored lines over a noisy spectrogram disappear.
type Contrast struct{}

const (
	contrastOutline = "#000000"
	contrastStroke  = "#ffff00"
)

func (Contrast) Name() string { return "contrast" }

func (Contrast) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <style>\n    text { font-family: monospace; font-size: 13px; font-weight: bold; paint-order: stroke; stroke: #ffffff; stroke-width: 3px; }\n  </style>\n")
}

func (Contrast) RenderLine(buf *bytes.Buffer, l Line) {
	dash := ""
	if l.Dashed {
		dash = ` stroke-dasharray="6 4"`
	}
	for _, pass := range []struct {
		color string
		width float64
	}{{contrastOutline, 4}, {pick(l.Color, contrastStroke), 2}} {
		fmt.Fprintf(buf, `    <line class="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.0f"%s/>`+"\n",
			l.Class, l.X1, l.Y1, l.X2, l.Y2, pass.color, pass.width, dash)
	}
}

func (Contrast) RenderMarker(buf *bytes.Buffer, m Marker) {
	c := pick(m.Color, contrastStroke)
	fmt.Fprintf(buf, `    <g id="%s" class="%s">`+"\n", EscapeXML(m.ID), m.Class)
	fmt.Fprintf(buf, `      <circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="5"/>`+"\n", m.CX, m.CY, m.R, contrastOutline)
	fmt.Fprintf(buf, `      <circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="3"/>`+"\n", m.CX, m.CY, m.R, c)
	if m.Cross {
		fmt.Fprintf(buf, `      <circle cx="%.1f" cy="%.1f" r="2" fill="%s"/>`+"\n", m.CX, m.CY, c)
	}
	buf.WriteString("    </g>\n")
}

func (Contrast) RenderLabel(buf *bytes.Buffer, t Label) {
	fmt.Fprintf(buf, `    <text class="%s" x="%.1f" y="%.1f" text-anchor="%s" fill="%s">%s</text>`+"\n",
		t.Class, t.X, t.Y, anchor(t.Anchor), pick(t.Color, contrastOutline), EscapeXML(t.Text))
}

func (Contrast) RenderPolyline(buf *bytes.Buffer, p Polyline) {
	pts := Points(p.Points)
	fmt.Fprintf(buf, `    <polyline class="%s" points="%s" fill="none" stroke="%s" stroke-width="5"/>`+"\n", p.Class, pts, contrastOutline)
	fmt.Fprintf(buf, `    <polyline class="%s" points="%s" fill="none" stroke="%s" stroke-width="3"/>`+"\n", p.Class, pts, pick(p.Color, contrastStroke))
}
