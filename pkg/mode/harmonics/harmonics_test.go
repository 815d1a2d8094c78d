package harmonics

import (
	"fmt"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/render/overlay"
	"github.com/matzehuels/gramframe/pkg/state"
)

// Domain 0..100 on both axes over an 800×400 box at (60,15):
// x = 60 + 8·freq, y = 15 + 4·(100 − time).
func newContext(t *testing.T) *mode.Context {
	t.Helper()
	st := state.State{
		Config:  coords.Domain{TimeMin: 0, TimeMax: 100, FreqMin: 0, FreqMax: 100},
		Margins: coords.DefaultMargins,
		Mode:    state.ModeHarmonics,
	}
	n := 0
	return &mode.Context{
		Store:    state.NewStore(st, log.New(io.Discard)),
		Viewport: coords.Viewport{Box: coords.Box{Left: 60, Top: 15, Width: 800, Height: 400}, Scale: 1},
		Options:  mode.DefaultOptions(),
		IDs: func() string {
			n++
			return fmt.Sprintf("h%d", n)
		},
	}
}

func at(tm, freq float64) mode.PointerEvent {
	return mode.PointerEvent{X: 60 + 8*freq, Y: 15 + 4*(100-tm)}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLines(t *testing.T) {
	d := coords.Domain{TimeMin: 0, TimeMax: 10, FreqMin: 0, FreqMax: 100}
	tests := []struct {
		name string
		f    float64
		want int
	}{
		{"20 Hz", 20, 5},
		{"30 Hz", 30, 3},
		{"above max", 150, 0},
		{"zero", 0, 0},
		{"negative", -5, 0},
		{"NaN", math.NaN(), 0},
		{"half hertz", 0.5, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(tt.f, d)
			if len(got) != tt.want {
				t.Errorf("len(Lines(%v)) = %d, want %d", tt.f, len(got), tt.want)
			}
			for i, ln := range got {
				if ln.N != i+1 || ln.Freq > d.FreqMax {
					t.Errorf("line %d = %+v", i, ln)
				}
			}
		})
	}
}

func TestLinesReachTopOfDomain(t *testing.T) {
	d := coords.Domain{TimeMin: 0, TimeMax: 10, FreqMin: 0, FreqMax: 22050}
	got := Lines(50, d)
	if len(got) != 441 {
		t.Fatalf("len(Lines(50)) = %d, want 441", len(got))
	}
	if last := got[len(got)-1]; last.N != 441 || last.Freq != 22050 {
		t.Errorf("last line = %+v, want n=441 at 22050 Hz", last)
	}
}

func TestGrabHighHarmonic(t *testing.T) {
	c := newContext(t)
	m := New(c.Options)
	// 0.25 Hz puts 400 lines 2 px apart; grab the 300th at 75 Hz.
	c.Commit(func(st *state.State) {
		Add(st, state.HarmonicSet{ID: "s", AnchorTime: 50, FundamentalFreq: 0.25}, c.Options)
	})
	m.PointerDown(c, at(50, 75))
	cand := c.State().Harmonics.Candidate
	if cand == nil || cand.SetID != "s" || cand.Harmonic != 300 {
		t.Fatalf("candidate = %+v, want edit of s at harmonic 300", cand)
	}
}

func TestMinFundamental(t *testing.T) {
	c := newContext(t)
	if got := MinFundamental(c.Viewport, c.State().Config); !near(got, 0.125) {
		t.Errorf("MinFundamental = %v, want 0.125 (1 px at 8 px/Hz)", got)
	}
	if got := MinFundamental(coords.Viewport{}, c.State().Config); got != 0 {
		t.Errorf("MinFundamental(empty) = %v, want 0", got)
	}

	m := New(c.Options)
	m.PointerDown(c, at(50, 40))
	m.PointerMove(c, mode.PointerEvent{X: 60.5, Y: 215})
	if cand := c.State().Harmonics.Candidate; cand == nil || !near(cand.FundamentalFreq, 0.125) {
		t.Errorf("candidate = %+v, want fundamental held at 0.125", cand)
	}
}

func TestBuildSet(t *testing.T) {
	c := newContext(t)
	m := New(c.Options)

	m.PointerDown(c, at(50, 10))
	cand := c.State().Harmonics.Candidate
	if cand == nil || cand.Harmonic != 1 || !near(cand.FundamentalFreq, 10) || !near(cand.AnchorFreq, 10) {
		t.Fatalf("candidate = %+v", cand)
	}

	// Mostly horizontal: fundamental follows the cursor frequency.
	m.PointerMove(c, at(48, 25))
	cand = c.State().Harmonics.Candidate
	if cand.Emphasis != state.AxisFreq {
		t.Errorf("Emphasis = %q, want frequency", cand.Emphasis)
	}
	if !near(cand.FundamentalFreq, 25) || !near(cand.AnchorTime, 48) {
		t.Errorf("candidate = %+v, want f=25 t=48", cand)
	}

	// Mostly vertical: anchor time follows the cursor.
	m.PointerMove(c, at(20, 12))
	cand = c.State().Harmonics.Candidate
	if cand.Emphasis != state.AxisTime {
		t.Errorf("Emphasis = %q, want time", cand.Emphasis)
	}
	if !near(cand.AnchorTime, 20) || !near(cand.FundamentalFreq, 12) {
		t.Errorf("candidate = %+v, want t=20 f=12", cand)
	}

	m.PointerUp(c, at(20, 12))
	h := c.State().Harmonics
	if h.Candidate != nil {
		t.Error("candidate not cleared on up")
	}
	if len(h.Sets) != 1 {
		t.Fatalf("sets = %d, want 1", len(h.Sets))
	}
	set := h.Sets[0]
	if set.ID != "h1" || !near(set.FundamentalFreq, 12) || !near(set.Rate, 12) || !near(set.AnchorTime, 20) {
		t.Errorf("set = %+v", set)
	}
	if set.Color != mode.DefaultPalette[0] || h.Selected != "h1" {
		t.Errorf("color/selection = %q/%q", set.Color, h.Selected)
	}
}

func TestEditSetKeepsHarmonicNumber(t *testing.T) {
	c := newContext(t)
	m := New(c.Options)
	c.Commit(func(st *state.State) {
		Add(st, state.HarmonicSet{ID: "s", AnchorTime: 50, FundamentalFreq: 20}, c.Options)
	})

	// Grab the third harmonic (60 Hz) 4 px off its line.
	ev := at(50, 60)
	ev.X += 4
	m.PointerDown(c, ev)
	cand := c.State().Harmonics.Candidate
	if cand == nil || cand.SetID != "s" || cand.Harmonic != 3 {
		t.Fatalf("candidate = %+v, want edit of s at harmonic 3", cand)
	}

	// Drag the third harmonic to 75 Hz: fundamental becomes 25.
	m.PointerMove(c, at(50, 75))
	m.PointerUp(c, at(50, 75))

	h := c.State().Harmonics
	if len(h.Sets) != 1 {
		t.Fatalf("sets = %d, want 1 (edit, not create)", len(h.Sets))
	}
	if got := h.Sets[0]; !near(got.FundamentalFreq, 25) || !near(got.Rate, 25) || !near(got.AnchorTime, 50) {
		t.Errorf("set = %+v, want f=25 t=50", got)
	}
}

func TestEditShiftsAnchorRelative(t *testing.T) {
	c := newContext(t)
	m := New(c.Options)
	c.Commit(func(st *state.State) {
		Add(st, state.HarmonicSet{ID: "s", AnchorTime: 50, FundamentalFreq: 20}, c.Options)
	})
	// Grab near the top end of the line (line spans ±40 px around y=215).
	ev := at(50, 20)
	ev.Y -= 30
	m.PointerDown(c, ev)
	ev.Y -= 40 // +10 time units
	m.PointerMove(c, ev)
	m.PointerUp(c, ev)

	if got := c.State().Harmonics.Sets[0].AnchorTime; !near(got, 60) {
		t.Errorf("AnchorTime = %v, want 60", got)
	}
}

func TestClickAwayFromLinesCreates(t *testing.T) {
	c := newContext(t)
	m := New(c.Options)
	c.Commit(func(st *state.State) {
		Add(st, state.HarmonicSet{ID: "s", AnchorTime: 50, FundamentalFreq: 20}, c.Options)
	})
	m.PointerDown(c, at(90, 30)) // far above the 20% line span
	if c.State().Harmonics.Candidate.SetID != "" {
		t.Error("pointer-down away from lines started an edit")
	}
	m.PointerUp(c, at(90, 30))
	if n := len(c.State().Harmonics.Sets); n != 2 {
		t.Errorf("sets = %d, want 2", n)
	}
}

func TestStaleCandidateCancelled(t *testing.T) {
	c := newContext(t)
	m := New(c.Options)
	m.PointerDown(c, at(50, 10))
	m.PointerMove(c, at(50, 30))
	m.PointerDown(c, at(70, 40)) // up was lost
	cand := c.State().Harmonics.Candidate
	if cand == nil || !near(cand.AnchorFreq, 40) {
		t.Errorf("candidate = %+v, want fresh candidate at 40 Hz", cand)
	}
	if n := len(c.State().Harmonics.Sets); n != 0 {
		t.Errorf("stale candidate was finalized: %d sets", n)
	}
}

func TestSetIDsUnique(t *testing.T) {
	c := newContext(t)
	c.IDs = nil
	m := New(c.Options)
	// 15 time units = 60 px apart, clear of each set's ±40 px line span.
	const n = 7
	for i := 0; i < n; i++ {
		ev := at(float64(5+i*15), 50)
		m.PointerDown(c, ev)
		m.PointerUp(c, ev)
	}
	sets := c.State().Harmonics.Sets
	if len(sets) != n {
		t.Fatalf("sets = %d, want %d", len(sets), n)
	}
	seen := make(map[string]bool)
	for _, s := range sets {
		seen[s.ID] = true
	}
	if len(seen) != n {
		t.Errorf("ids not unique: %d distinct of %d", len(seen), n)
	}
}

func TestDeleteAndEscape(t *testing.T) {
	c := newContext(t)
	m := New(c.Options)
	c.Commit(func(st *state.State) {
		Add(st, state.HarmonicSet{ID: "s", AnchorTime: 50, FundamentalFreq: 20}, c.Options)
	})

	m.PointerDown(c, at(10, 10))
	if !m.KeyDown(c, mode.KeyEvent{Key: mode.KeyEscape}) || c.State().Harmonics.Candidate != nil {
		t.Error("Escape did not cancel candidate")
	}
	if !m.KeyDown(c, mode.KeyEvent{Key: mode.KeyDelete}) {
		t.Fatal("Delete not consumed")
	}
	if n := len(c.State().Harmonics.Sets); n != 0 {
		t.Errorf("sets = %d after delete", n)
	}
	if m.KeyDown(c, mode.KeyEvent{Key: mode.KeyDelete}) {
		t.Error("Delete consumed with nothing selected")
	}
}

func TestContextMenuRemovesSet(t *testing.T) {
	c := newContext(t)
	m := New(c.Options)
	c.Commit(func(st *state.State) {
		Add(st, state.HarmonicSet{ID: "s", AnchorTime: 50, FundamentalFreq: 20}, c.Options)
	})
	m.ContextMenu(c, at(50, 40))
	if n := len(c.State().Harmonics.Sets); n != 0 {
		t.Errorf("sets = %d, want 0", n)
	}
}

func TestRenderPersistentFeatures(t *testing.T) {
	c := newContext(t)
	m := New(c.Options)
	c.Commit(func(st *state.State) {
		Add(st, state.HarmonicSet{ID: "s", AnchorTime: 50, FundamentalFreq: 25}, c.Options)
	})

	var l overlay.Layer
	m.RenderPersistentFeatures(&l, overlay.RenderContext{State: c.State(), Viewport: c.Viewport})

	var lines []overlay.Shape
	for _, s := range l.Shapes {
		if s.Kind == overlay.KindLine {
			lines = append(lines, s)
		}
	}
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4 (25, 50, 75, 100 Hz)", len(lines))
	}
	for i, s := range lines {
		wantX := 60 + 8*25*float64(i+1)
		if !near(s.X1, wantX) || !near(s.Y2-s.Y1, 80) || !near((s.Y1+s.Y2)/2, 215) {
			t.Errorf("line %d = %+v, want x=%v height 80 centered at 215", i, s, wantX)
		}
		if s.Feature != "s" {
			t.Errorf("line %d feature = %q", i, s.Feature)
		}
	}
}
