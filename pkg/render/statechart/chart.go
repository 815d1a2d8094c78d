package statechart

import (
	"github.com/matzehuels/gramframe/pkg/state"
)

// Transition is an edge between two chart states.
type Transition struct {
	From  string
	To    string
	Event string
}

// Chart is the state machine of one mode.
type Chart struct {
	Mode        state.Mode
	Initial     string
	States      []string
	Transitions []Transition
}

// Analysis chart states.
const (
	AnalysisIdle     = "idle"
	AnalysisSelected = "selected"
	AnalysisDragging = "dragging"
)

// Harmonics chart states.
const (
	HarmonicsIdle     = "idle"
	HarmonicsSelected = "selected"
	HarmonicsDrafting = "drafting"
	HarmonicsEditing  = "editing"
)

var charts = []Chart{
	{
		Mode:    state.ModeAnalysis,
		Initial: AnalysisIdle,
		States:  []string{AnalysisIdle, AnalysisSelected, AnalysisDragging},
		Transitions: []Transition{
			{AnalysisIdle, AnalysisSelected, "down in image / add marker"},
			{AnalysisIdle, AnalysisDragging, "down on marker"},
			{AnalysisSelected, AnalysisDragging, "down on marker"},
			{AnalysisSelected, AnalysisSelected, "down in image / add marker\narrow / nudge"},
			{AnalysisDragging, AnalysisSelected, "up"},
			{AnalysisDragging, AnalysisDragging, "move / drag"},
			{AnalysisSelected, AnalysisIdle, "escape\ndelete"},
		},
	},
	{
		Mode:    state.ModeHarmonics,
		Initial: HarmonicsIdle,
		States:  []string{HarmonicsIdle, HarmonicsSelected, HarmonicsDrafting, HarmonicsEditing},
		Transitions: []Transition{
			{HarmonicsIdle, HarmonicsDrafting, "down in image"},
			{HarmonicsSelected, HarmonicsDrafting, "down in image"},
			{HarmonicsIdle, HarmonicsEditing, "down on line"},
			{HarmonicsSelected, HarmonicsEditing, "down on line"},
			{HarmonicsDrafting, HarmonicsDrafting, "move"},
			{HarmonicsEditing, HarmonicsEditing, "move"},
			{HarmonicsDrafting, HarmonicsSelected, "up / add set"},
			{HarmonicsEditing, HarmonicsSelected, "up / update set"},
			{HarmonicsDrafting, HarmonicsIdle, "escape\ncontext menu"},
			{HarmonicsEditing, HarmonicsIdle, "escape\ncontext menu"},
			{HarmonicsSelected, HarmonicsIdle, "escape\ndelete"},
		},
	},
	{
		Mode:    state.ModeDoppler,
		Initial: string(state.DopplerIdle),
		States: []string{
			string(state.DopplerIdle),
			string(state.DopplerPlacingPreview),
			string(state.DopplerPlaced),
			string(state.DopplerDragging),
		},
		Transitions: []Transition{
			{string(state.DopplerIdle), string(state.DopplerPlacingPreview), "down in image"},
			{string(state.DopplerPlacingPreview), string(state.DopplerPlacingPreview), "move / preview"},
			{string(state.DopplerPlacingPreview), string(state.DopplerPlaced), "up / order, midpoint"},
			{string(state.DopplerPlaced), string(state.DopplerDragging), "down on marker"},
			{string(state.DopplerDragging), string(state.DopplerDragging), "move / drag"},
			{string(state.DopplerDragging), string(state.DopplerPlaced), "up / reorder"},
			{string(state.DopplerPlaced), string(state.DopplerIdle), "context menu\nescape"},
			{string(state.DopplerPlacingPreview), string(state.DopplerIdle), "mode switch"},
		},
	},
}

// Charts returns the chart of every mode in display order.
func Charts() []Chart {
	out := make([]Chart, len(charts))
	copy(out, charts)
	return out
}

// For returns the chart of mode m.
func For(m state.Mode) (Chart, bool) {
	for _, c := range charts {
		if c.Mode == m {
			return c, true
		}
	}
	return Chart{}, false
}

// Current returns the chart state st is in for mode m.
func Current(st *state.State, m state.Mode) string {
	switch m {
	case state.ModeAnalysis:
		switch {
		case st.Analysis.Dragging != "":
			return AnalysisDragging
		case st.Analysis.Selected != "":
			return AnalysisSelected
		}
		return AnalysisIdle
	case state.ModeHarmonics:
		h := st.Harmonics
		switch {
		case h.Candidate != nil && h.Candidate.SetID != "":
			return HarmonicsEditing
		case h.Candidate != nil:
			return HarmonicsDrafting
		case h.Selected != "":
			return HarmonicsSelected
		}
		return HarmonicsIdle
	case state.ModeDoppler:
		if st.Doppler.Phase == "" {
			return string(state.DopplerIdle)
		}
		return string(st.Doppler.Phase)
	}
	return ""
}
