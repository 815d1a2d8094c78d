// Package statechart renders the interaction state machines of the three
// modes as Graphviz diagrams.
//
// Each mode has a fixed [Chart]. [Current] maps a live state tree onto the
// chart node it is in, so a diagram can highlight where an instance is:
//
//	c, _ := statechart.For(state.ModeDoppler)
//	dot := statechart.ToDOT(c, statechart.Options{Highlight: statechart.Current(&st, c.Mode)})
//	svg, err := statechart.RenderSVG(ctx, dot)
//
// SVG rendering runs Graphviz in-process through [github.com/goccy/go-graphviz].
package statechart
