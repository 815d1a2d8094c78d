package styles

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Points formats a polyline point list for the SVG points attribute.
func Points(pts [][2]float64) string {
	var sb strings.Builder
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatFloat(p[0], 'f', 1, 64))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(p[1], 'f', 1, 64))
	}
	return sb.String()
}

func anchor(a string) string {
	if a == "" {
		return "middle"
	}
	return a
}

func pick(color, fallback string) string {
	if color == "" {
		return fallback
	}
	return color
}
