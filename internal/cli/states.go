package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gramframe/pkg/render/statechart"
	"github.com/matzehuels/gramframe/pkg/state"
)

// statesCommand draws the state machine of a mode.
func (c *CLI) statesCommand() *cobra.Command {
	var (
		output    string
		format    string
		highlight string
	)

	cmd := &cobra.Command{
		Use:       "states [analysis|harmonics|doppler]",
		Short:     "Draw the interaction state machine of a mode",
		ValidArgs: modeNames(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, ok := statechart.For(state.Mode(args[0]))
			if !ok {
				return fmt.Errorf("unknown mode %q", args[0])
			}
			if highlight != "" && !hasState(chart, highlight) {
				return fmt.Errorf("mode %s has no state %q", chart.Mode, highlight)
			}
			dot := statechart.ToDOT(chart, statechart.Options{Highlight: highlight})

			switch format {
			case "dot":
				return writeOutput(cmd.OutOrStdout(), output, []byte(dot))
			case "svg":
				svg, err := statechart.RenderSVG(cmd.Context(), dot)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, svg)
			}
			return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, dot")
	cmd.Flags().StringVar(&highlight, "highlight", "", "state to highlight")

	return cmd
}

func hasState(c statechart.Chart, name string) bool {
	for _, s := range c.States {
		if s == name {
			return true
		}
	}
	return false
}
