package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gramframe/pkg/buildinfo"
	"github.com/matzehuels/gramframe/pkg/config"
	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/focus"
	"github.com/matzehuels/gramframe/pkg/frame"
	"github.com/matzehuels/gramframe/pkg/render/overlay/styles"
	"github.com/matzehuels/gramframe/pkg/state"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "gramframe"

	// pageGap is the horizontal gap between instances on one page, in pixels.
	pageGap = 40
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "GramFrame annotates spectrograms with time/frequency overlays",
		Long:         `GramFrame is an interaction engine for spectrogram annotation: analysis markers, harmonic ladders and Doppler speed fits, rendered as SVG overlays and driven from a terminal, a replay script or a loopback HTTP API.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.statesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration Flags
// =============================================================================

// configFlags are the flags shared by every command that builds frames.
// Flags the user set override the config file.
type configFlags struct {
	path   string
	mode   string
	style  string
	image  string
	width  float64
	height float64
}

func (cf *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&cf.path, "config", "c", "", "TOML config file")
	cmd.Flags().StringVarP(&cf.mode, "mode", "m", "", "initial mode: analysis, harmonics, doppler")
	cmd.Flags().StringVar(&cf.style, "style", "", "overlay style: simple, contrast")
	cmd.Flags().StringVar(&cf.image, "image", "", "spectrogram image href")
	cmd.Flags().Float64Var(&cf.width, "image-width", 0, "natural image width in pixels")
	cmd.Flags().Float64Var(&cf.height, "image-height", 0, "natural image height in pixels")

	_ = cmd.RegisterFlagCompletionFunc("mode", fixedCompletion(modeNames()))
	_ = cmd.RegisterFlagCompletionFunc("style", fixedCompletion(styles.Names()))
}

func fixedCompletion(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func modeNames() []string {
	names := make([]string, len(state.Modes))
	for i, m := range state.Modes {
		names[i] = string(m)
	}
	return names
}

func (cf *configFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if cf.path != "" {
		var err error
		if cfg, err = config.Load(cf.path); err != nil {
			return config.Config{}, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("mode") {
		cfg.Display.Mode = state.Mode(cf.mode)
	}
	if changed("style") {
		cfg.Display.Style = cf.style
	}
	if changed("image") {
		cfg.Image.Source = cf.image
	}
	if changed("image-width") {
		cfg.Image.Width = cf.width
	}
	if changed("image-height") {
		cfg.Image.Height = cf.height
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// =============================================================================
// Page Helpers
// =============================================================================

// newPage creates one frame per id, side by side on a shared registry.
func newPage(cfg config.Config, ids []string, reg *focus.Registry, logger *log.Logger) ([]*frame.Frame, error) {
	frames := make([]*frame.Frame, 0, len(ids))
	left := 0.0
	for _, id := range ids {
		opts := append(cfg.FrameOptions(),
			frame.WithRegistry(reg),
			frame.WithLogger(logger),
			frame.WithInstanceID(id),
		)
		f, err := frame.New(cfg.Domain, cfg.FrameImage(), opts...)
		if err != nil {
			closeAll(frames)
			return nil, err
		}
		b := f.Bounds()
		f.Place(coords.Box{Left: left, Width: b.Width, Height: b.Height})
		left += b.Width + pageGap
		frames = append(frames, f)
	}
	return frames, nil
}

func closeAll(frames []*frame.Frame) {
	for _, f := range frames {
		f.Close()
	}
}

// =============================================================================
// Parsing Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// parsePoints parses "time,freq[,time,freq...]" into data points.
func parsePoints(s string) ([]coords.DataPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("invalid point %q (want time,freq)", s)
	}
	pts := make([]coords.DataPoint, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		t, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid time in %q: %w", s, err)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid frequency in %q: %w", s, err)
		}
		pts = append(pts, coords.DataPoint{Time: t, Freq: f})
	}
	return pts, nil
}

// writeOutput writes data to path, or to w when path is "" or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

func jsonIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
