package zoom

import (
	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/state"
)

// Viewport derives the transform input from state alone, so recomputing it
// any number of times yields the same result.
//
// The display scale fits the unzoomed frame to the container width; zoom
// then enlarges the image on screen.
func Viewport(st *state.State) coords.Viewport {
	w, h := st.Image.Width(), st.Image.Height()
	base, _ := Frame(RenderedBox(w, h, DefaultLevel, st.Margins), st.Margins)
	return coords.Viewport{
		Box:      RenderedBox(w, h, st.Zoom.Level, st.Margins),
		Scale:    DisplayScale(st.Container.Width, base),
		Disabled: st.Degraded(),
	}
}
