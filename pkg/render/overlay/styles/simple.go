package styles

import (
	"bytes"
	"fmt"
)

// Simple draws thin colored strokes suited to on-screen display.
type Simple struct{}

const (
	simpleStroke = "#ffffff"
	simpleText   = "#333333"
	simpleFont   = "Helvetica, Arial, sans-serif"
)

func (Simple) Name() string { return "simple" }

func (Simple) RenderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>\n    text { font-family: %s; font-size: 11px; }\n    .cursor-v, .cursor-h { opacity: 0.7; }\n  </style>\n", simpleFont)
}

func (Simple) RenderLine(buf *bytes.Buffer, l Line) {
	dash := ""
	if l.Dashed {
		dash = ` stroke-dasharray="4 3"`
	}
	fmt.Fprintf(buf, `    <line class="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5"%s/>`+"\n",
		l.Class, l.X1, l.Y1, l.X2, l.Y2, pick(l.Color, simpleStroke), dash)
}

func (Simple) RenderMarker(buf *bytes.Buffer, m Marker) {
	c := pick(m.Color, simpleStroke)
	if !m.Cross {
		fmt.Fprintf(buf, `    <circle id="%s" class="%s" cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
			EscapeXML(m.ID), m.Class, m.CX, m.CY, m.R, c)
		return
	}
	fmt.Fprintf(buf, `    <g id="%s" class="%s" stroke="%s" stroke-width="2">`+"\n", EscapeXML(m.ID), m.Class, c)
	fmt.Fprintf(buf, `      <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", m.CX-m.R, m.CY, m.CX+m.R, m.CY)
	fmt.Fprintf(buf, `      <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", m.CX, m.CY-m.R, m.CX, m.CY+m.R)
	buf.WriteString("    </g>\n")
}

func (Simple) RenderLabel(buf *bytes.Buffer, t Label) {
	fmt.Fprintf(buf, `    <text class="%s" x="%.1f" y="%.1f" text-anchor="%s" fill="%s">%s</text>`+"\n",
		t.Class, t.X, t.Y, anchor(t.Anchor), pick(t.Color, simpleText), EscapeXML(t.Text))
}

func (Simple) RenderPolyline(buf *bytes.Buffer, p Polyline) {
	dash := ""
	if p.Dashed {
		dash = ` stroke-dasharray="4 3"`
	}
	fmt.Fprintf(buf, `    <polyline class="%s" points="%s" fill="none" stroke="%s" stroke-width="2"%s/>`+"\n",
		p.Class, Points(p.Points), pick(p.Color, simpleStroke), dash)
}
