package mode

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/observability"
	"github.com/matzehuels/gramframe/pkg/state"
)

// IDSource generates feature identifiers.
type IDSource func() string

// NewUUID is the default [IDSource].
func NewUUID() string { return uuid.New().String() }

// Store is the state access handlers need. [*state.Store] implements it.
type Store interface {
	State() *state.State
	Commit(fn func(*state.State)) state.State
}

// Context is what handlers see of their instance.
type Context struct {
	Store    Store
	Viewport coords.Viewport
	Options  Options
	Logger   *log.Logger
	IDs      IDSource
}

// State returns the canonical state for reading. Mutate through Commit.
func (c *Context) State() *state.State { return c.Store.State() }

// Commit applies fn to the canonical state and broadcasts.
func (c *Context) Commit(fn func(*state.State)) state.State { return c.Store.Commit(fn) }

// ToData maps a screen point to the data domain.
func (c *Context) ToData(p coords.Point) (coords.DataPoint, bool) {
	return coords.ScreenToData(p, c.Viewport, c.State().Config)
}

// ToDataUnclamped maps a screen point to the data domain even when it lies
// outside the image. It reports false only when transforms are disabled.
func (c *Context) ToDataUnclamped(p coords.Point) (coords.DataPoint, bool) {
	if c.Viewport.Disabled || c.Viewport.Box.Empty() {
		return coords.DataPoint{}, false
	}
	d := c.State().Config
	fx, fy := c.Viewport.Fraction(p)
	return coords.DataPoint{
		Freq: d.FreqMin + fx*d.FreqSpan(),
		Time: d.TimeMax - fy*d.TimeSpan(),
	}, true
}

// ToScreen maps a data point to screen pixels.
func (c *Context) ToScreen(dp coords.DataPoint) coords.Point {
	return coords.DataToScreen(dp, c.Viewport, c.State().Config)
}

// NewID returns a fresh feature identifier.
func (c *Context) NewID() string {
	if c.IDs == nil {
		return NewUUID()
	}
	return c.IDs()
}

// Log returns the context logger, falling back to the default logger.
func (c *Context) Log() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// FeatureAdded reports a new persistent feature to the mode hooks.
func (c *Context) FeatureAdded(m state.Mode, id string) {
	observability.Mode().OnFeatureAdded(c.State().InstanceID, string(m), id)
	c.Log().Debug("feature added", "mode", m, "id", id)
}

// Point returns the screen point of ev.
func (ev PointerEvent) Point() coords.Point { return coords.Point{X: ev.X, Y: ev.Y} }
