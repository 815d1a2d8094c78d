// Package sink serializes an [overlay.Scene] to output formats.
//
// # Formats
//
//   - SVG ([RenderSVG]): the spectrogram as an <image> element under one
//     <g> group per layer. Layers that are not interactive carry
//     pointer-events="none", so only the active mode's features can be
//     grabbed in a browser.
//   - JSON ([RenderJSON]): the scene as data, for automation and tests.
//
// Both sinks are pure: the same scene always produces the same bytes.
package sink
