// Package overlay builds the annotation scene drawn over the spectrogram.
//
// # Overview
//
// [Build] is a stateless pass that runs after every commit and every
// container resize. It asks every registered [FeatureSource] (one per mode)
// to draw its persistent features into its own [Layer], regardless of which
// mode is active, so markers, harmonic sets and Doppler fits stay visible
// across mode switches.
//
// Layers belonging to modes other than the active one are emitted with
// Interactive unset. Sinks translate this into disabled pointer events so a
// feature of an inactive mode can never be mutated by accident. Analysis
// markers stay hit-testable in every mode (for hover readouts) even when they
// are not draggable.
//
// # Pipeline Position
//
//	state.State → [Build] → Scene → sink.RenderSVG / sink.RenderJSON
//
// All shape coordinates are SVG user units inside the frame returned by
// [Scene.Width] and [Scene.Height].
package overlay
