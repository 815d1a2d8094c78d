package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gramframe/pkg/config"
	"github.com/matzehuels/gramframe/pkg/focus"
	"github.com/matzehuels/gramframe/pkg/frame"
	"github.com/matzehuels/gramframe/pkg/render"
	"github.com/matzehuels/gramframe/pkg/render/overlay/sink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	config    configFlags
	output    string   // output file, or base path for several formats
	formats   []string // svg, json, pdf, png
	markers   []string // "time,freq"
	harmonics []string // "anchor_time,fundamental"
	doppler   string   // "t+,f+,t-,f-[,t0,f0]"
	zoom      int      // zoom-in steps applied before rendering
	noImage   bool
	readout   bool
	scale     float64 // png scale
}

var validFormats = map[string]bool{"svg": true, "json": true, "pdf": true, "png": true}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'json', 'pdf', or 'png')", f)
		}
	}
	return nil
}

// renderCommand renders the overlay of a single frame.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a frame overlay to SVG, JSON, PDF or PNG",
		Long: `Render builds one frame from the config, places the requested features
and writes the resulting overlay.

  gramframe render -c gram.toml --marker 30,50 --marker 12,80 -o overlay.svg
  gramframe render --mode doppler --doppler 40,52,10,48 -f svg,json -o fit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if len(opts.formats) > 1 && (opts.output == "" || opts.output == "-") {
				return fmt.Errorf("several formats need --output as a base path")
			}
			cfg, err := opts.config.load(cmd)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), cfg, &opts)
		},
	}

	opts.config.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (several)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().StringArrayVar(&opts.markers, "marker", nil, "analysis marker at time,freq (repeatable)")
	cmd.Flags().StringArrayVar(&opts.harmonics, "harmonic", nil, "harmonic set at anchor_time,fundamental (repeatable)")
	cmd.Flags().StringVar(&opts.doppler, "doppler", "", "Doppler fit t+,f+,t-,f- with optional t0,f0")
	cmd.Flags().IntVar(&opts.zoom, "zoom", 0, "zoom-in steps before rendering")
	cmd.Flags().BoolVar(&opts.noImage, "no-image", false, "omit the spectrogram image element")
	cmd.Flags().BoolVar(&opts.readout, "readout", false, "include the cursor readout and guidance text")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, cfg config.Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	frames, err := newPage(cfg, []string{"render"}, focus.NewRegistry(), logger)
	if err != nil {
		return err
	}
	f := frames[0]
	defer f.Close()

	if err := placeFeatures(f, opts); err != nil {
		return err
	}
	for i := 0; i < opts.zoom; i++ {
		f.ZoomIn()
	}
	if st := f.Snapshot(); st.Degraded() {
		logger.Warn("rendering degraded overlay", "reason", st.ConfigError)
	}

	sc := f.Scene()
	svgOpts := []sink.SVGOption{sink.WithStyle(cfg.Style())}
	if opts.noImage {
		svgOpts = append(svgOpts, sink.WithoutImage())
	}
	if opts.readout {
		svgOpts = append(svgOpts, sink.WithReadout(), sink.WithGuidance())
	}

	for _, format := range opts.formats {
		var data []byte
		switch format {
		case "json":
			data, err = sink.RenderJSON(sc, sink.WithJSONStyle(cfg.Style().Name()), sink.WithJSONIndent())
		case "svg":
			data = sink.RenderSVG(sc, svgOpts...)
		case "pdf":
			data, err = render.ToPDF(sink.RenderSVG(sc, svgOpts...))
		case "png":
			data, err = render.ToPNG(sink.RenderSVG(sc, svgOpts...), opts.scale)
		}
		if err != nil {
			return err
		}
		if err := writeOutput(w, outputPath(opts.output, format, len(opts.formats) > 1), data); err != nil {
			return err
		}
	}
	prog.done(fmt.Sprintf("Rendered %s overlay", f.Mode()))
	return nil
}

func placeFeatures(f *frame.Frame, opts *renderOpts) error {
	for _, s := range opts.markers {
		pts, err := parsePoints(s)
		if err != nil || len(pts) != 1 {
			return fmt.Errorf("invalid --marker %q (want time,freq)", s)
		}
		if _, err := f.AddMarker(pts[0].Time, pts[0].Freq, ""); err != nil {
			return err
		}
	}
	for _, s := range opts.harmonics {
		pts, err := parsePoints(s)
		if err != nil || len(pts) != 1 {
			return fmt.Errorf("invalid --harmonic %q (want anchor_time,fundamental)", s)
		}
		if _, err := f.AddHarmonicSet(pts[0].Time, pts[0].Freq); err != nil {
			return err
		}
	}
	if opts.doppler != "" {
		pts, err := parsePoints(opts.doppler)
		if err != nil || (len(pts) != 2 && len(pts) != 3) {
			return fmt.Errorf("invalid --doppler %q (want t+,f+,t-,f-[,t0,f0])", opts.doppler)
		}
		if len(pts) == 3 {
			return f.SetDopplerFit(pts[0], pts[1], &pts[2])
		}
		return f.SetDopplerFit(pts[0], pts[1], nil)
	}
	return nil
}

// outputPath resolves the file for format. With several formats, base is
// a prefix and the extension is appended.
func outputPath(base, format string, multi bool) string {
	if !multi {
		return base
	}
	if strings.HasSuffix(base, "."+format) {
		return base
	}
	return base + "." + format
}
