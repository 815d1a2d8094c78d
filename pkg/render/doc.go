// Package render holds the output side of GramFrame.
//
// The overlay a frame draws on top of its spectrogram is built in
// [overlay] as a plain scene of layers and shapes, then written by
// [overlay/sink] as SVG or JSON using a style from [overlay/styles].
// [statechart] draws the mode state machines with Graphviz.
//
// [ToPDF] and [ToPNG] convert any SVG produced here using the external
// rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(f.Scene(), sink.WithStyle(styles.Contrast{}))
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [overlay]: github.com/matzehuels/gramframe/pkg/render/overlay
// [overlay/sink]: github.com/matzehuels/gramframe/pkg/render/overlay/sink
// [overlay/styles]: github.com/matzehuels/gramframe/pkg/render/overlay/styles
// [statechart]: github.com/matzehuels/gramframe/pkg/render/statechart
package render
