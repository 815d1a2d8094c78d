package script

import (
	"context"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/errors"
	"github.com/matzehuels/gramframe/pkg/focus"
	"github.com/matzehuels/gramframe/pkg/frame"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/state"
)

// Player drives a set of frames that share one focus registry.
type Player struct {
	frames   map[string]*frame.Frame
	order    []string
	registry *focus.Registry
	logger   *log.Logger
	captured string // instance that received the last page pointer-down
}

// NewPlayer returns a player for frames, keyed by their instance ids.
// Keys without an instance go to the focused frame of registry.
func NewPlayer(registry *focus.Registry, logger *log.Logger, frames ...*frame.Frame) *Player {
	if logger == nil {
		logger = log.Default()
	}
	p := &Player{
		frames:   make(map[string]*frame.Frame, len(frames)),
		registry: registry,
		logger:   logger,
	}
	for _, f := range frames {
		p.Add(f)
	}
	return p
}

// Add appends f to the page.
func (p *Player) Add(f *frame.Frame) {
	if _, ok := p.frames[f.ID()]; ok {
		return
	}
	p.frames[f.ID()] = f
	p.order = append(p.order, f.ID())
}

// Remove drops the frame with the given id. It does not close it.
func (p *Player) Remove(id string) {
	if _, ok := p.frames[id]; !ok {
		return
	}
	delete(p.frames, id)
	for i, v := range p.order {
		if v == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	if p.captured == id {
		p.captured = ""
	}
}

// IDs returns the frame ids in page order.
func (p *Player) IDs() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Frame returns the frame with the given id.
func (p *Player) Frame(id string) (*frame.Frame, bool) {
	f, ok := p.frames[id]
	return f, ok
}

// Run plays every step in order and stops at the first error.
func (p *Player) Run(ctx context.Context, sc Scenario) error {
	p.logger.Debug("replay", "scenario", sc.Name, "steps", len(sc.Steps))
	for i, s := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Step(s); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "step %d (%s)", i+1, s.Action)
		}
	}
	return nil
}

// Step plays a single step and checks its expectations.
func (p *Player) Step(s Step) error {
	if err := s.validate(); err != nil {
		return err
	}
	target, err := p.run(s)
	if err != nil {
		return err
	}
	if s.Expect == nil {
		return nil
	}
	if target == nil {
		if target, err = p.target(s); err != nil {
			return err
		}
	}
	return p.check(target, *s.Expect)
}

func (p *Player) run(s Step) (*frame.Frame, error) {
	switch {
	case s.Action == ActionExpect:
		return nil, nil
	case s.Action == ActionKey && s.Instance == "":
		ev := mode.KeyEvent{Key: s.Key, Shift: s.Shift}
		consumed := p.registry.DispatchKey(ev)
		p.logger.Debug("key", "key", s.Key, "focused", p.registry.Focused(), "consumed", consumed)
		return nil, nil
	case s.Page:
		return p.page(s)
	}

	f, err := p.target(s)
	if err != nil {
		return nil, err
	}
	switch s.Action {
	case ActionKey:
		f.KeyDown(mode.KeyEvent{Key: s.Key, Shift: s.Shift})
	case ActionMode:
		err = f.SwitchMode(s.Mode)
	case ActionZoomIn:
		f.ZoomIn()
	case ActionZoomOut:
		f.ZoomOut()
	case ActionResetZoom:
		f.ResetZoom()
	case ActionResize:
		f.Resize(s.Width, s.Height)
	case ActionMarker:
		_, err = f.AddMarker(*s.Time, *s.Freq, s.Color)
	case ActionHarmonic:
		_, err = f.AddHarmonicSet(*s.Time, *s.Freq)
	case ActionClear:
		f.ClearMarkers()
		f.ClearHarmonicSets()
		f.ResetDoppler()
	case ActionLeave:
		f.PointerLeave()
	default:
		f.Dispatch(pointerEvent(s, local(f, s)))
	}
	return f, err
}

// page delivers a pointer step given in page pixels. A down is routed to
// the container under the pointer; later events follow the same container
// until the next down.
func (p *Player) page(s Step) (*frame.Frame, error) {
	pt := coords.Point{X: *s.X, Y: *s.Y}
	if s.Action == ActionDown && s.Button != mode.ButtonSecondary {
		id, hit := p.registry.RoutePointerDown(pt)
		if !hit {
			p.logger.Debug("pointer down outside every container", "x", pt.X, "y", pt.Y)
			p.captured = ""
			return nil, nil
		}
		p.captured = id
	}
	id := p.captured
	if id == "" {
		for _, candidate := range p.order {
			if p.frames[candidate].Bounds().Contains(pt) {
				id = candidate
				break
			}
		}
	}
	f, ok := p.frames[id]
	if !ok {
		return nil, nil
	}
	if s.Action == ActionLeave {
		f.PointerLeave()
		return f, nil
	}
	f.Dispatch(pointerEvent(s, f.ToLocal(pt)))
	return f, nil
}

// target resolves the frame a step addresses: the named instance, the only
// frame, or the focused one.
func (p *Player) target(s Step) (*frame.Frame, error) {
	if s.Instance != "" {
		f, ok := p.frames[s.Instance]
		if !ok {
			return nil, errors.New(errors.ErrCodeInstanceNotFound, "unknown instance %q", s.Instance)
		}
		return f, nil
	}
	if len(p.order) == 1 {
		return p.frames[p.order[0]], nil
	}
	if f, ok := p.frames[p.registry.Focused()]; ok {
		return f, nil
	}
	return nil, errors.New(errors.ErrCodeInstanceNotFound, "%s: no instance named and none focused", s.Action)
}

// local returns the step point in container-local screen pixels.
func local(f *frame.Frame, s Step) coords.Point {
	if s.X != nil {
		return coords.Point{X: *s.X, Y: *s.Y}
	}
	dp := coords.DataPoint{Time: *s.Time, Freq: *s.Freq}
	return coords.DataToScreen(dp, f.Viewport(), f.Snapshot().Config)
}

func pointerEvent(s Step, pt coords.Point) mode.PointerEvent {
	ev := mode.PointerEvent{X: pt.X, Y: pt.Y, Button: s.Button, Shift: s.Shift}
	switch s.Action {
	case ActionDown:
		ev.Kind = mode.PointerDown
	case ActionMove:
		ev.Kind = mode.PointerMove
	case ActionUp:
		ev.Kind = mode.PointerUp
	case ActionContextMenu:
		ev.Kind = mode.PointerContextMenu
	}
	return ev
}

func (p *Player) check(f *frame.Frame, e Expect) error {
	st := f.Snapshot()
	fail := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeExpectationFailed, "%s: "+format, append([]any{f.ID()}, args...)...)
	}

	if e.Mode != "" && st.Mode != e.Mode {
		return fail("mode = %s, want %s", st.Mode, e.Mode)
	}
	if e.Markers != nil && len(st.Analysis.Markers) != *e.Markers {
		return fail("markers = %d, want %d", len(st.Analysis.Markers), *e.Markers)
	}
	if e.HarmonicSets != nil && len(st.Harmonics.Sets) != *e.HarmonicSets {
		return fail("harmonic sets = %d, want %d", len(st.Harmonics.Sets), *e.HarmonicSets)
	}
	if e.Phase != "" && st.Doppler.Phase != e.Phase {
		return fail("doppler phase = %s, want %s", st.Doppler.Phase, e.Phase)
	}
	if e.Speed != nil {
		tol := e.Tolerance
		if tol <= 0 {
			tol = DefaultTolerance
		}
		if st.Doppler.Speed == nil {
			return fail("speed unset, want %g", *e.Speed)
		}
		if math.Abs(*st.Doppler.Speed-*e.Speed) > tol {
			return fail("speed = %g, want %g ± %g", *st.Doppler.Speed, *e.Speed, tol)
		}
	}
	if e.Focused != "" && p.registry.Focused() != e.Focused {
		return fail("focused = %q, want %q", p.registry.Focused(), e.Focused)
	}
	if e.Cursor != nil && (st.Cursor != nil) != *e.Cursor {
		return fail("cursor set = %t, want %t", st.Cursor != nil, *e.Cursor)
	}
	if e.Degraded != nil && st.Degraded() != *e.Degraded {
		return fail("degraded = %t, want %t", st.Degraded(), *e.Degraded)
	}
	return nil
}

// Summary is the outcome of a replay for one frame.
type Summary struct {
	Instance     string             `json:"instance"`
	Mode         state.Mode         `json:"mode"`
	Markers      int                `json:"markers"`
	HarmonicSets int                `json:"harmonic_sets"`
	Phase        state.DopplerPhase `json:"doppler_phase"`
	Speed        *float64           `json:"speed,omitempty"`
}

// Summaries describes every frame in page order.
func (p *Player) Summaries() []Summary {
	out := make([]Summary, 0, len(p.order))
	for _, id := range p.order {
		st := p.frames[id].Snapshot()
		out = append(out, Summary{
			Instance:     id,
			Mode:         st.Mode,
			Markers:      len(st.Analysis.Markers),
			HarmonicSets: len(st.Harmonics.Sets),
			Phase:        st.Doppler.Phase,
			Speed:        st.Doppler.Speed,
		})
	}
	return out
}
