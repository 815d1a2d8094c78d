package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gramframe/pkg/config"
	"github.com/matzehuels/gramframe/pkg/focus"
	"github.com/matzehuels/gramframe/pkg/render/overlay/sink"
	"github.com/matzehuels/gramframe/pkg/script"
)

const defaultInstance = "main"

type replayOpts struct {
	config configFlags
	outDir string
	quiet  bool
}

// replayCommand plays a scenario file against fresh frames.
func (c *CLI) replayCommand() *cobra.Command {
	var opts replayOpts

	cmd := &cobra.Command{
		Use:   "replay [scenario.toml]",
		Short: "Replay recorded pointer and key events",
		Long: `Replay creates the instances a scenario names (or a single "main"
instance), plays every step and checks the expectations attached to them.
With --out-dir the final overlay of each instance is written as SVG and
its state snapshot as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config.load(cmd)
			if err != nil {
				return err
			}
			sc, err := script.Load(args[0])
			if err != nil {
				return err
			}
			return c.runReplay(cmd.Context(), cfg, sc, &opts)
		},
	}

	opts.config.register(cmd)
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "write final overlays and snapshots to this directory")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "skip the summary table")

	return cmd
}

func (c *CLI) runReplay(ctx context.Context, cfg config.Config, sc script.Scenario, opts *replayOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	ids := sc.Instances
	if len(ids) == 0 {
		ids = []string{defaultInstance}
	}
	reg := focus.NewRegistry()
	frames, err := newPage(cfg, ids, reg, logger)
	if err != nil {
		return err
	}
	defer closeAll(frames)

	player := script.NewPlayer(reg, logger, frames...)
	if err := player.Run(ctx, sc); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Replayed %d steps", len(sc.Steps)))

	if !opts.quiet {
		fmt.Println(summaryTable(player.Summaries(), reg.Focused()))
	}
	if opts.outDir == "" {
		return nil
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	for _, f := range frames {
		svg := sink.RenderSVG(f.Scene(), sink.WithStyle(cfg.Style()))
		if err := writeOutput(nil, filepath.Join(opts.outDir, f.ID()+".svg"), svg); err != nil {
			return err
		}
		snap, err := jsonIndent(f.Snapshot())
		if err != nil {
			return err
		}
		if err := writeOutput(nil, filepath.Join(opts.outDir, f.ID()+".json"), snap); err != nil {
			return err
		}
	}
	printSuccess("Replay %s passed", scenarioName(sc))
	return nil
}

func scenarioName(sc script.Scenario) string {
	if sc.Name != "" {
		return strconv.Quote(sc.Name)
	}
	return "scenario"
}

func summaryTable(rows []script.Summary, focused string) string {
	data := make([][]string, 0, len(rows))
	for _, s := range rows {
		speed := "-"
		if s.Speed != nil {
			speed = strconv.FormatFloat(*s.Speed, 'f', 1, 64)
		}
		marker := " "
		if s.Instance == focused {
			marker = "▸"
		}
		data = append(data, []string{
			marker, s.Instance, string(s.Mode),
			strconv.Itoa(s.Markers), strconv.Itoa(s.HarmonicSets),
			string(s.Phase), speed,
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Instance", "Mode", "Markers", "Harmonics", "Doppler", "Speed").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 1 {
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
