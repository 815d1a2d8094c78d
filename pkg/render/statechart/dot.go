package statechart

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gramframe/pkg/errors"
)

// Options configures DOT generation.
type Options struct {
	// Highlight fills the named state.
	Highlight string
	// Color is the highlight fill. Defaults to a light blue.
	Color string
}

const defaultHighlight = "#cfe3ff"

// ToDOT converts a chart to Graphviz DOT source.
func ToDOT(c Chart, opts Options) string {
	fill := opts.Color
	if fill == "" {
		fill = defaultHighlight
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", string(c.Mode))
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  __start [shape=point, width=0.15, label=\"\"];\n")
	buf.WriteString("\n")

	for _, s := range c.States {
		if s == opts.Highlight {
			fmt.Fprintf(&buf, "  %q [fillcolor=%q, penwidth=2];\n", s, fill)
			continue
		}
		fmt.Fprintf(&buf, "  %q;\n", s)
	}

	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  __start -> %q;\n", c.Initial)
	for _, t := range c.Transitions {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", t.From, t.To, t.Event)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG lays out DOT source with Graphviz and returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return buf.Bytes(), nil
}
