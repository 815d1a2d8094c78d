package mode

import (
	"github.com/matzehuels/gramframe/pkg/render/overlay"
	"github.com/matzehuels/gramframe/pkg/state"
)

// Mode is an interaction mode.
type Mode interface {
	overlay.FeatureSource

	PointerDown(c *Context, ev PointerEvent)
	PointerMove(c *Context, ev PointerEvent)
	PointerUp(c *Context, ev PointerEvent)
	// ContextMenu handles a secondary-button press.
	ContextMenu(c *Context, ev PointerEvent)
	// KeyDown reports whether the key was consumed.
	KeyDown(c *Context, ev KeyEvent) bool

	// InitialState prepares the mode's sub-state when the mode is installed.
	InitialState(st *state.State)
	// Cleanup clears transient interaction state when the mode is left.
	Cleanup(st *state.State)
	GuidanceText() string
}

// PointerKind is the phase of a pointer event.
type PointerKind string

// Pointer event kinds.
const (
	PointerDown        PointerKind = "down"
	PointerMove        PointerKind = "move"
	PointerUp          PointerKind = "up"
	PointerLeave       PointerKind = "leave"
	PointerContextMenu PointerKind = "contextmenu"
)

// Pointer buttons.
const (
	ButtonPrimary   = 0
	ButtonSecondary = 2
)

// PointerEvent is a pointer event in container-local screen pixels.
type PointerEvent struct {
	Kind   PointerKind `json:"kind" toml:"kind"`
	X      float64     `json:"x" toml:"x"`
	Y      float64     `json:"y" toml:"y"`
	Button int         `json:"button,omitempty" toml:"button"`
	Shift  bool        `json:"shift,omitempty" toml:"shift"`
}

// Key names, matching DOM KeyboardEvent.key values.
const (
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyDelete     = "Delete"
	KeyBackspace  = "Backspace"
	KeyEscape     = "Escape"
)

// KeyEvent is a key press.
type KeyEvent struct {
	Key   string `json:"key" toml:"key"`
	Shift bool   `json:"shift,omitempty" toml:"shift"`
}

// Arrow returns the unit screen direction of an arrow key.
func (k KeyEvent) Arrow() (dx, dy float64, ok bool) {
	switch k.Key {
	case KeyArrowUp:
		return 0, -1, true
	case KeyArrowDown:
		return 0, 1, true
	case KeyArrowLeft:
		return -1, 0, true
	case KeyArrowRight:
		return 1, 0, true
	}
	return 0, 0, false
}

// IsDelete reports whether the key removes the selected feature.
func (k KeyEvent) IsDelete() bool {
	return k.Key == KeyDelete || k.Key == KeyBackspace
}
