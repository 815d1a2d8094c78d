package frame

import (
	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/render/overlay"
	"github.com/matzehuels/gramframe/pkg/state"
)

// Dispatch routes ev by its kind. A secondary-button down is delivered as
// a context menu.
func (f *Frame) Dispatch(ev mode.PointerEvent) {
	switch ev.Kind {
	case mode.PointerDown:
		if ev.Button == mode.ButtonSecondary {
			f.ContextMenu(ev)
			return
		}
		f.PointerDown(ev)
	case mode.PointerMove:
		f.PointerMove(ev)
	case mode.PointerUp:
		f.PointerUp(ev)
	case mode.PointerLeave:
		f.PointerLeave()
	case mode.PointerContextMenu:
		f.ContextMenu(ev)
	}
}

// PointerDown claims keyboard focus for the instance and forwards the event
// to the active mode.
func (f *Frame) PointerDown(ev mode.PointerEvent) {
	if f.closed {
		return
	}
	f.registry.Claim(f.id)
	f.updateCursor(ev.Point())
	f.active.PointerDown(f.context(), ev)
}

// PointerMove updates the cursor readout and forwards the event.
func (f *Frame) PointerMove(ev mode.PointerEvent) {
	if f.closed {
		return
	}
	f.updateCursor(ev.Point())
	f.active.PointerMove(f.context(), ev)
}

// PointerUp ends the gesture in progress.
func (f *Frame) PointerUp(ev mode.PointerEvent) {
	if f.closed {
		return
	}
	f.active.PointerUp(f.context(), ev)
}

// PointerLeave clears the cursor. Any drag in progress stays recorded until
// the next pointer-down.
func (f *Frame) PointerLeave() {
	if f.closed || f.store.State().Cursor == nil {
		return
	}
	f.commit(func(st *state.State) { st.Cursor = nil })
}

// ContextMenu forwards a right-click to the active mode.
func (f *Frame) ContextMenu(ev mode.PointerEvent) {
	if f.closed {
		return
	}
	f.active.ContextMenu(f.context(), ev)
}

// KeyDown delivers a key event to the active mode and reports whether it
// was consumed. Hosts normally reach it through the focus registry.
func (f *Frame) KeyDown(ev mode.KeyEvent) bool {
	if f.closed {
		return false
	}
	return f.active.KeyDown(f.context(), ev)
}

// HandleKey implements [focus.Handle].
func (f *Frame) HandleKey(ev mode.KeyEvent) bool { return f.KeyDown(ev) }

// HitTest returns the feature under the container-local screen point p,
// searching every hit-testable layer regardless of the active mode.
func (f *Frame) HitTest(p coords.Point) (overlay.Hit, bool) {
	vp := f.Viewport()
	radius := f.opts.MarkerHitRadius
	if f.opts.DopplerHitRadius > radius {
		radius = f.opts.DopplerHitRadius
	}
	return f.scene.HitTest(vp.ToSVG(p), vp.ToSVG(coords.Point{X: radius}).X)
}

func (f *Frame) updateCursor(p coords.Point) {
	st := f.store.State()
	dp, ok := coords.ScreenToData(p, f.Viewport(), st.Config)
	switch {
	case !ok && st.Cursor == nil:
		return
	case ok && st.Cursor != nil && *st.Cursor == dp:
		return
	}
	f.commit(func(st *state.State) {
		if !ok {
			st.Cursor = nil
			return
		}
		st.Cursor = &dp
	})
}
