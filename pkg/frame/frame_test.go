package frame

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/errors"
	"github.com/matzehuels/gramframe/pkg/focus"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/state"
)

var testConfig = state.Config{TimeMin: 0, TimeMax: 60, FreqMin: 0, FreqMax: 100}

func sequentialIDs() mode.IDSource {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newFrame(t *testing.T, opts ...Option) *Frame {
	t.Helper()
	base := []Option{
		WithLogger(log.New(io.Discard)),
		WithRegistry(focus.NewRegistry()),
		WithIDSource(sequentialIDs()),
	}
	f, err := New(testConfig, Image{Width: 800, Height: 400}, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(f.Close)
	return f
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// Image box sits at (60,15) and is 800×400 at zoom 1, scale 1.
func at(time, freq float64) mode.PointerEvent {
	return mode.PointerEvent{X: 60 + 8*freq, Y: 15 + 400*(60-time)/60}
}

func TestNewDefaults(t *testing.T) {
	f := newFrame(t)
	s := f.Snapshot()

	if s.InstanceID != "id-1" || f.ID() != "id-1" {
		t.Errorf("InstanceID = %q", s.InstanceID)
	}
	if s.Mode != state.ModeAnalysis || f.Mode() != state.ModeAnalysis {
		t.Errorf("Mode = %q", s.Mode)
	}
	if s.Zoom.Level != 1 || s.Image.AppliedScaleFactor != 1 {
		t.Errorf("zoom/scale = %v/%v", s.Zoom.Level, s.Image.AppliedScaleFactor)
	}
	if s.Guidance == "" {
		t.Error("Guidance empty")
	}
	if s.Doppler.Phase != state.DopplerIdle {
		t.Errorf("Doppler.Phase = %q", s.Doppler.Phase)
	}
	sc := f.Scene()
	if sc.Width != 875 || sc.Height != 465 || len(sc.Layers) == 0 {
		t.Errorf("scene = %vx%v with %d layers", sc.Width, sc.Height, len(sc.Layers))
	}
}

func TestNewAutoScale(t *testing.T) {
	var buf bytes.Buffer
	f, err := New(testConfig, Image{Width: 2000, Height: 1000},
		WithLogger(log.New(&buf)), WithRegistry(focus.NewRegistry()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer f.Close()

	s := f.Snapshot()
	if !near(s.Image.AppliedScaleFactor, 0.6) {
		t.Errorf("AppliedScaleFactor = %v, want 0.6", s.Image.AppliedScaleFactor)
	}
	if vp := f.Viewport(); !near(vp.Box.Width, 1200) || !near(vp.Box.Height, 600) {
		t.Errorf("rendered box = %+v, want 1200x600", vp.Box)
	}
	if !strings.Contains(buf.String(), "auto-scaled") {
		t.Errorf("auto-scale not logged: %q", buf.String())
	}
}

func TestNewInvalidImage(t *testing.T) {
	for _, img := range []Image{{Width: 0, Height: 10}, {Width: 10, Height: -1}, {Width: math.NaN(), Height: 5}} {
		_, err := New(testConfig, img, WithRegistry(focus.NewRegistry()))
		if !errors.Is(err, errors.ErrCodeInvalidImage) {
			t.Errorf("New(%+v) error = %v, want INVALID_IMAGE", img, err)
		}
	}
}

func TestNewInvalidMode(t *testing.T) {
	_, err := New(testConfig, Image{Width: 10, Height: 10}, WithInitialMode("spectral"), WithRegistry(focus.NewRegistry()))
	if !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Errorf("error = %v, want INVALID_MODE", err)
	}
}

func TestInvalidConfigDegrades(t *testing.T) {
	var buf bytes.Buffer
	reg := focus.NewRegistry()
	f, err := New(state.Config{TimeMin: 10, TimeMax: 5, FreqMin: 0, FreqMax: 100}, Image{Width: 800, Height: 400},
		WithLogger(log.New(&buf)), WithRegistry(reg))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer f.Close()

	s := f.Snapshot()
	if s.ConfigError == "" {
		t.Fatal("ConfigError not set")
	}
	if !f.Viewport().Disabled {
		t.Error("viewport not disabled")
	}
	if f.Scene().Degraded == "" {
		t.Error("scene does not carry the degraded indicator")
	}

	f.PointerDown(at(30, 50))
	f.PointerMove(at(30, 50))
	s = f.Snapshot()
	if len(s.Analysis.Markers) != 0 || s.Cursor != nil {
		t.Errorf("degraded instance reacted to pointer: %+v", s.Analysis)
	}
	if _, err := f.AddMarker(1, 1, ""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("AddMarker error = %v, want INVALID_CONFIG", err)
	}
	if !strings.Contains(buf.String(), "degraded") {
		t.Error("invalid config not logged")
	}
}

func TestCursorTracking(t *testing.T) {
	f := newFrame(t)

	f.PointerMove(at(30, 50))
	s := f.Snapshot()
	if s.Cursor == nil || !near(s.Cursor.Time, 30) || !near(s.Cursor.Freq, 50) {
		t.Fatalf("Cursor = %+v, want (30,50)", s.Cursor)
	}
	if f.Scene().Readout == nil {
		t.Error("scene missing readout")
	}

	f.PointerMove(mode.PointerEvent{X: 5, Y: 5})
	if f.Snapshot().Cursor != nil {
		t.Error("cursor not cleared out of bounds")
	}

	f.PointerMove(at(30, 50))
	f.PointerLeave()
	if f.Snapshot().Cursor != nil {
		t.Error("cursor not cleared on leave")
	}
}

func TestFeaturesPersistAcrossModes(t *testing.T) {
	f := newFrame(t)

	f.PointerDown(at(30, 50))
	f.PointerUp(at(30, 50))

	if err := f.SwitchMode(state.ModeHarmonics); err != nil {
		t.Fatalf("SwitchMode() error: %v", err)
	}
	f.PointerDown(at(10, 20))
	f.PointerMove(at(12, 25))
	f.PointerUp(at(12, 25))

	if err := f.SwitchMode(state.ModeDoppler); err != nil {
		t.Fatalf("SwitchMode() error: %v", err)
	}
	s := f.Snapshot()
	if len(s.Analysis.Markers) != 1 || len(s.Harmonics.Sets) != 1 {
		t.Errorf("features lost: %d markers, %d sets", len(s.Analysis.Markers), len(s.Harmonics.Sets))
	}
	if s.Mode != state.ModeDoppler || !strings.Contains(s.Guidance, "Doppler") {
		t.Errorf("mode/guidance = %q/%q", s.Mode, s.Guidance)
	}

	sc := f.Scene()
	for _, name := range []string{"analysis", "harmonics", "doppler"} {
		l, ok := sc.Layer(name)
		if !ok {
			t.Fatalf("layer %s missing", name)
		}
		if l.Interactive != (name == "doppler") {
			t.Errorf("layer %s Interactive = %v", name, l.Interactive)
		}
	}
	if l, _ := sc.Layer("analysis"); len(l.Shapes) == 0 {
		t.Error("analysis markers not rendered in doppler mode")
	}

	// Dragging a marker in Doppler mode must not move it.
	f.PointerDown(at(30, 50))
	f.PointerMove(at(40, 60))
	f.PointerUp(at(40, 60))
	mk := f.Snapshot().Analysis.Markers[0]
	if !near(mk.Time, 30) || !near(mk.Freq, 50) {
		t.Errorf("marker moved in doppler mode: %+v", mk)
	}
}

func TestSwitchModeCleansUpTransientState(t *testing.T) {
	f := newFrame(t)
	f.PointerDown(at(30, 50))
	f.PointerDown(at(30, 50)) // drag begins
	if f.Snapshot().Analysis.Dragging == "" {
		t.Fatal("drag not started")
	}
	if err := f.SwitchMode(state.ModeDoppler); err != nil {
		t.Fatal(err)
	}
	s := f.Snapshot()
	if s.Analysis.Dragging != "" || len(s.Analysis.Markers) != 1 {
		t.Errorf("after switch: %+v", s.Analysis)
	}
}

func TestSwitchModeErrors(t *testing.T) {
	f := newFrame(t)
	if err := f.SwitchMode("nope"); !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Errorf("error = %v, want INVALID_MODE", err)
	}

	calls := 0
	f.AddListener(func(state.State) { calls++ })
	if err := f.SwitchMode(state.ModeAnalysis); err != nil || calls != 0 {
		t.Errorf("switch to active mode: err=%v calls=%d", err, calls)
	}
}

func TestZoomAware(t *testing.T) {
	f := newFrame(t)

	levels := []float64{f.ZoomIn(), f.ZoomIn()}
	if !near(levels[0], 1.5) || !near(levels[1], 2.25) {
		t.Errorf("levels = %v", levels)
	}
	// At 2.25 the image is 1800×900; the center maps to the domain center.
	f.PointerMove(mode.PointerEvent{X: 60 + 900, Y: 15 + 450})
	if c := f.Snapshot().Cursor; c == nil || !near(c.Freq, 50) || !near(c.Time, 30) {
		t.Errorf("Cursor = %+v at zoom 2.25", c)
	}

	for i := 0; i < 10; i++ {
		f.ZoomIn()
	}
	if got := f.Snapshot().Zoom.Level; got != 5 {
		t.Errorf("level = %v, want 5", got)
	}
	for i := 0; i < 20; i++ {
		f.ZoomOut()
	}
	if got := f.Snapshot().Zoom.Level; got != 0.5 {
		t.Errorf("level = %v, want 0.5", got)
	}
	if got := f.ResetZoom(); got != 1 {
		t.Errorf("ResetZoom = %v", got)
	}
}

func TestResizeIdempotent(t *testing.T) {
	f := newFrame(t)
	calls := 0
	f.AddListener(func(state.State) { calls++ })

	f.Resize(1750, 930)
	first := f.Viewport()
	f.Resize(1750, 930)
	f.Resize(1750, 930)
	if f.Viewport() != first {
		t.Errorf("viewport changed on repeated resize")
	}
	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}
	if first.Scale != 2 {
		t.Errorf("Scale = %v, want 2", first.Scale)
	}

	// Screen pixels are halved into SVG units.
	f.PointerMove(mode.PointerEvent{X: 2 * 460, Y: 2 * 215})
	if c := f.Snapshot().Cursor; c == nil || !near(c.Freq, 50) || !near(c.Time, 30) {
		t.Errorf("Cursor = %+v at scale 2", c)
	}
	if b := f.Bounds(); b.Width != 1750 || b.Height != 930 {
		t.Errorf("Bounds = %+v", b)
	}
}

func TestListenersReceiveSnapshots(t *testing.T) {
	f := newFrame(t)
	var got []state.State
	id := f.AddListener(func(s state.State) {
		if s.Analysis.Markers != nil {
			s.Analysis.Markers[0].Freq = -1 // must not leak into canonical state
		}
		got = append(got, s)
	})

	f.PointerDown(at(30, 50))
	if len(got) == 0 {
		t.Fatal("listener not called")
	}
	if f.Snapshot().Analysis.Markers[0].Freq == -1 {
		t.Error("listener mutated canonical state")
	}
	if !f.RemoveListener(id) || f.RemoveListener(id) {
		t.Error("RemoveListener result mismatch")
	}

	n := len(got)
	f.ForceUpdate()
	if len(got) != n {
		t.Error("removed listener still called")
	}
}

func TestListenerSeesFreshScene(t *testing.T) {
	f := newFrame(t)
	var layers int
	f.AddListener(func(state.State) {
		sc := f.Scene()
		l, _ := sc.Layer("analysis")
		layers = len(l.Shapes)
	})
	f.PointerDown(at(30, 50))
	if layers == 0 {
		t.Error("scene not rebuilt before listeners ran")
	}
}

func TestPanickingListenerIsolated(t *testing.T) {
	f := newFrame(t)
	f.AddListener(func(state.State) { panic("boom") })
	calls := 0
	f.AddListener(func(state.State) { calls++ })

	f.ForceUpdate()
	if calls != 1 {
		t.Errorf("second listener calls = %d, want 1", calls)
	}
}

func TestHitTest(t *testing.T) {
	f := newFrame(t)
	id, err := f.AddMarker(30, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SwitchMode(state.ModeDoppler); err != nil {
		t.Fatal(err)
	}

	ev := at(30, 50)
	h, ok := f.HitTest(coords.Point{X: ev.X + 3, Y: ev.Y})
	if !ok || h.Feature != id || h.Layer != "analysis" {
		t.Errorf("HitTest = %+v, %v; want marker %s in any mode", h, ok, id)
	}
	if _, ok := f.HitTest(coords.Point{X: 300, Y: 100}); ok {
		t.Error("HitTest hit empty space")
	}
}

func TestDispatch(t *testing.T) {
	f := newFrame(t)
	ev := at(30, 50)
	ev.Kind = mode.PointerDown
	f.Dispatch(ev)
	ev.Kind = mode.PointerUp
	f.Dispatch(ev)
	if n := len(f.Snapshot().Analysis.Markers); n != 1 {
		t.Fatalf("markers = %d, want 1", n)
	}

	ev.Kind = mode.PointerDown
	ev.Button = mode.ButtonSecondary
	f.Dispatch(ev)
	if n := len(f.Snapshot().Analysis.Markers); n != 0 {
		t.Errorf("secondary down did not act as context menu: %d markers", n)
	}
}

func TestClose(t *testing.T) {
	reg := focus.NewRegistry()
	f, err := New(testConfig, Image{Width: 800, Height: 400}, WithRegistry(reg), WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	f.AddListener(func(state.State) { calls++ })
	select {
	case <-f.Done():
		t.Fatal("Done closed before Close")
	default:
	}
	f.PointerDown(at(30, 50))
	if reg.Focused() != f.ID() {
		t.Errorf("pointer-down did not claim focus")
	}

	f.Close()
	f.Close()
	select {
	case <-f.Done():
	default:
		t.Error("Done still open after Close")
	}
	if reg.Registered(f.ID()) || reg.Focused() != "" {
		t.Error("instance still registered after Close")
	}
	before := calls
	f.ForceUpdate()
	f.PointerDown(at(10, 10))
	if calls != before || !f.Closed() {
		t.Errorf("listeners called after Close")
	}
}

func TestAddHarmonicSetSpacing(t *testing.T) {
	f := newFrame(t)
	// 8 px per Hz: 0.125 Hz is the densest ladder allowed.
	if _, err := f.AddHarmonicSet(30, 0.125); err != nil {
		t.Errorf("AddHarmonicSet(0.125) error: %v", err)
	}
	if _, err := f.AddHarmonicSet(30, 1e-9); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AddHarmonicSet(1e-9) error = %v, want INVALID_INPUT", err)
	}
	if n := len(f.Snapshot().Harmonics.Sets); n != 1 {
		t.Errorf("sets = %d, want 1", n)
	}
}
