// Package pkg provides the core libraries for GramFrame spectrogram annotation.
//
// # Overview
//
// GramFrame turns a spectrogram image with a known time/frequency domain into
// an interactive instance. Pointer and key events are converted into data
// coordinates and feed three modes: analysis markers, harmonic ladders and
// Doppler speed fits. Every change commits a new state snapshot and rebuilds
// an overlay scene that sinks render as SVG or JSON.
//
// # Architecture
//
// The typical data flow through GramFrame:
//
//	pointer / key event
//	         ↓
//	    [frame] (focus, viewport, dispatch)
//	         ↓
//	    [mode] analysis | harmonics | doppler
//	         ↓
//	    [state] store (commit, snapshot, listeners)
//	         ↓
//	    [render/overlay] scene → sink (SVG, JSON) → [render] (PDF, PNG)
//
// # Quick Start
//
//	f, _ := frame.New(state.Config{TimeMax: 60, FreqMax: 100},
//	    frame.Image{Source: "gram.png", Width: 800, Height: 400})
//	defer f.Close()
//
//	f.AddMarker(30, 50, "")
//	svg := sink.RenderSVG(f.Scene())
//
// # Main Packages
//
// [coords] - Screen, SVG and data coordinate conversions.
//
// [state] - The per-instance state tree and its store.
//
// [mode] - The mode contract plus the analysis, harmonics and doppler modes.
//
// [zoom] - Zoom levels and the viewport they produce.
//
// [focus] - The registry that routes pointer downs and keys between instances.
//
// [frame] - One instance: events, control operations and mutators.
//
// [render/overlay] - Scene building, sinks and styles.
//
// [render/statechart] - Mode state machines as Graphviz diagrams.
//
// [script] - Scenario replay against frames.
//
// [config] - TOML configuration.
//
// [units] - Speed units and the Doppler speed formula.
//
// [errors] - Error codes shared by every package.
//
// [observability] - Hooks for commits, mode switches and focus changes.
package pkg
