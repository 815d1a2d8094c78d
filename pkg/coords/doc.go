// Package coords maps between screen pixels, the zoom-scaled image box and
// the logical (time, frequency) data domain of a spectrogram.
//
// # Axes
//
// Frequency runs along the horizontal axis, increasing to the right. Time
// runs along the vertical axis and increases upward: the top row of the
// image is the latest time ([Domain].TimeMax) and the bottom row the
// earliest.
//
// # Pipeline
//
// A screen point (container pixels) is converted in three steps:
//
//	screen px ── ÷ Viewport.Scale ──▶ SVG units ── − Box origin, ÷ Box extent ──▶ fraction ──▶ data
//
// [ScreenToData] and [DataToScreen] are exact inverses of each other. Both
// are pure and total: they never panic and never return an error. A point
// whose fraction falls outside [0,1] on either axis is reported as out of
// bounds through the boolean result.
//
// Callers must build the [Viewport] from the currently rendered image box
// (after zoom), never from the natural image dimensions.
package coords
