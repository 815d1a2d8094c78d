package frame

import (
	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/errors"
	"github.com/matzehuels/gramframe/pkg/observability"
	"github.com/matzehuels/gramframe/pkg/state"
	"github.com/matzehuels/gramframe/pkg/zoom"
)

// AddListener registers fn to receive a snapshot after every change.
func (f *Frame) AddListener(fn state.Listener) state.ListenerID { return f.store.AddListener(fn) }

// RemoveListener unregisters a listener. It reports whether id was
// registered.
func (f *Frame) RemoveListener(id state.ListenerID) bool { return f.store.RemoveListener(id) }

// ForceUpdate re-renders and re-broadcasts the current state unchanged.
func (f *Frame) ForceUpdate() state.State {
	f.redraw()
	return f.store.ForceUpdate()
}

// SwitchMode cleans up the outgoing mode's transient state and installs
// name. Switching to the active mode is a no-op.
func (f *Frame) SwitchMode(name state.Mode) error {
	next, ok := f.modes[name]
	if !ok {
		return errors.New(errors.ErrCodeInvalidMode, "unknown mode %q", name)
	}
	if next == f.active {
		return nil
	}
	prev := f.active
	f.active = next
	f.commit(func(st *state.State) {
		prev.Cleanup(st)
		st.Mode = name
		next.InitialState(st)
		st.Guidance = next.GuidanceText()
	})
	observability.Mode().OnModeSwitch(f.id, string(prev.Name()), string(name))
	f.logger.Info("mode switched", "from", prev.Name(), "to", name)
	return nil
}

// ZoomIn multiplies the zoom level by one step and returns the new level.
func (f *Frame) ZoomIn() float64 { return f.setZoom(zoom.In(f.store.State().Zoom.Level)) }

// ZoomOut divides the zoom level by one step and returns the new level.
func (f *Frame) ZoomOut() float64 { return f.setZoom(zoom.Out(f.store.State().Zoom.Level)) }

// ResetZoom returns to the default zoom level.
func (f *Frame) ResetZoom() float64 { return f.setZoom(zoom.Reset()) }

func (f *Frame) setZoom(level float64) float64 {
	if level == f.store.State().Zoom.Level {
		return level
	}
	st := f.commit(func(st *state.State) { st.Zoom.Level = level })
	f.logger.Debug("zoom", "level", level)
	return st.Zoom.Level
}

// Resize records the container size in screen pixels. Geometry is derived
// from state on every call, so repeated notifications are harmless.
func (f *Frame) Resize(width, height float64) {
	c := state.Container{Width: width, Height: height}
	if f.store.State().Container == c {
		f.redraw()
		return
	}
	f.commit(func(st *state.State) { st.Container = c })
}

// Place moves the container on the page and resizes it.
func (f *Frame) Place(b coords.Box) {
	f.origin = coords.Point{X: b.Left, Y: b.Top}
	f.Resize(b.Width, b.Height)
}

// ToLocal converts a page point to container-local screen pixels.
func (f *Frame) ToLocal(p coords.Point) coords.Point {
	return coords.Point{X: p.X - f.origin.X, Y: p.Y - f.origin.Y}
}
