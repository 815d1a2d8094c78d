package mode

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/observability"
	"github.com/matzehuels/gramframe/pkg/state"
)

func TestOptionsColor(t *testing.T) {
	o := Options{Palette: []string{"#111111", "#222222"}}
	tests := []struct {
		i    int
		want string
	}{
		{0, "#111111"},
		{1, "#222222"},
		{2, "#111111"},
		{-1, "#222222"},
	}
	for _, tt := range tests {
		if got := o.Color(tt.i); got != tt.want {
			t.Errorf("Color(%d) = %q, want %q", tt.i, got, tt.want)
		}
	}
	if got := (Options{}).Color(0); got != DefaultPalette[0] {
		t.Errorf("empty palette Color(0) = %q", got)
	}
}

func TestDefaultOptionsOwnPalette(t *testing.T) {
	o := DefaultOptions()
	o.Palette[0] = "#000000"
	if DefaultPalette[0] == "#000000" {
		t.Error("writing to DefaultOptions().Palette changed DefaultPalette")
	}
}

func TestOptionsNudge(t *testing.T) {
	o := DefaultOptions()
	if o.Nudge(false) != 1 || o.Nudge(true) != 10 {
		t.Errorf("Nudge = %v/%v, want 1/10", o.Nudge(false), o.Nudge(true))
	}
}

func TestKeyEventArrow(t *testing.T) {
	tests := []struct {
		key    string
		dx, dy float64
		ok     bool
	}{
		{KeyArrowUp, 0, -1, true},
		{KeyArrowDown, 0, 1, true},
		{KeyArrowLeft, -1, 0, true},
		{KeyArrowRight, 1, 0, true},
		{"x", 0, 0, false},
	}
	for _, tt := range tests {
		dx, dy, ok := KeyEvent{Key: tt.key}.Arrow()
		if dx != tt.dx || dy != tt.dy || ok != tt.ok {
			t.Errorf("%s.Arrow() = (%v,%v,%v)", tt.key, dx, dy, ok)
		}
	}
	if !(KeyEvent{Key: KeyBackspace}).IsDelete() || (KeyEvent{Key: KeyEscape}).IsDelete() {
		t.Error("IsDelete mismatch")
	}
}

func newContext() *Context {
	st := state.State{Config: coords.Domain{TimeMin: 0, TimeMax: 60, FreqMin: 0, FreqMax: 100}}
	return &Context{
		Store:    state.NewStore(st, log.New(io.Discard)),
		Viewport: coords.Viewport{Box: coords.Box{Left: 60, Top: 15, Width: 800, Height: 400}, Scale: 1},
	}
}

func TestContextTransforms(t *testing.T) {
	c := newContext()

	dp, ok := c.ToData(coords.Point{X: 460, Y: 215})
	if !ok || dp.Time != 30 || dp.Freq != 50 {
		t.Errorf("ToData = %+v, %v", dp, ok)
	}
	if _, ok := c.ToData(coords.Point{X: 10, Y: 215}); ok {
		t.Error("ToData outside image should fail")
	}

	dp, ok = c.ToDataUnclamped(coords.Point{X: 1260, Y: 215})
	if !ok || dp.Freq != 150 {
		t.Errorf("ToDataUnclamped = %+v, %v", dp, ok)
	}

	c.Viewport.Disabled = true
	if _, ok := c.ToDataUnclamped(coords.Point{X: 460, Y: 215}); ok {
		t.Error("disabled viewport should not map")
	}
}

func TestContextNewID(t *testing.T) {
	c := newContext()
	a, b := c.NewID(), c.NewID()
	if a == "" || a == b {
		t.Errorf("NewID = %q, %q", a, b)
	}
	c.IDs = func() string { return "fixed" }
	if got := c.NewID(); got != "fixed" {
		t.Errorf("NewID = %q, want fixed", got)
	}
}

type recordingModeHooks struct {
	observability.NoopModeHooks
	added []string
}

func (r *recordingModeHooks) OnFeatureAdded(_, mode, id string) {
	r.added = append(r.added, mode+":"+id)
}

func TestContextFeatureAdded(t *testing.T) {
	defer observability.Reset()
	h := &recordingModeHooks{}
	observability.SetModeHooks(h)

	c := newContext()
	c.FeatureAdded(state.ModeAnalysis, "m1")
	if len(h.added) != 1 || h.added[0] != "analysis:m1" {
		t.Errorf("hooks saw %v", h.added)
	}
}
