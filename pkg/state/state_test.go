package state

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gramframe/pkg/coords"
)

func fullState() State {
	speed := 12.5
	return State{
		InstanceID: "frame-1",
		Config:     Config{TimeMin: 0, TimeMax: 60, FreqMin: 0, FreqMax: 100},
		Image:      ImageDetails{NaturalWidth: 800, NaturalHeight: 400, AppliedScaleFactor: 1},
		Zoom:       Zoom{Level: 1},
		Cursor:     &coords.DataPoint{Time: 1, Freq: 2},
		Mode:       ModeAnalysis,
		Analysis: AnalysisState{
			Markers: []Marker{{ID: "m1", Time: 10, Freq: 20, Color: "#e63946"}},
		},
		Harmonics: HarmonicsState{
			Sets:      []HarmonicSet{{ID: "h1", AnchorTime: 30, FundamentalFreq: 10, Rate: 10}},
			Candidate: &HarmonicCandidate{AnchorFreq: 5, Harmonic: 1},
		},
		Doppler: DopplerFit{
			FPlus:  &coords.DataPoint{Time: 40, Freq: 20},
			FMinus: &coords.DataPoint{Time: 10, Freq: 70},
			FZero:  &coords.DataPoint{Time: 25, Freq: 45},
			Speed:  &speed,
			Phase:  DopplerPlaced,
		},
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := fullState()
	c := orig.Clone()

	c.Cursor.Time = 99
	c.Analysis.Markers[0].Time = 99
	c.Harmonics.Sets[0].Rate = 99
	c.Harmonics.Candidate.AnchorFreq = 99
	c.Doppler.FPlus.Freq = 99
	*c.Doppler.Speed = 99

	if orig.Cursor.Time != 1 {
		t.Error("Clone shares Cursor")
	}
	if orig.Analysis.Markers[0].Time != 10 {
		t.Error("Clone shares Markers")
	}
	if orig.Harmonics.Sets[0].Rate != 10 {
		t.Error("Clone shares harmonic Sets")
	}
	if orig.Harmonics.Candidate.AnchorFreq != 5 {
		t.Error("Clone shares Candidate")
	}
	if orig.Doppler.FPlus.Freq != 20 {
		t.Error("Clone shares Doppler points")
	}
	if *orig.Doppler.Speed != 12.5 {
		t.Error("Clone shares Speed")
	}
}

func TestStateSerializable(t *testing.T) {
	s := fullState()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}
	var back State
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if back.Doppler.FZero == nil || *back.Doppler.FZero != (coords.DataPoint{Time: 25, Freq: 45}) {
		t.Errorf("FZero = %v, want {25 45}", back.Doppler.FZero)
	}
	if len(back.Analysis.Markers) != 1 || back.Analysis.Markers[0].ID != "m1" {
		t.Errorf("Markers = %+v", back.Analysis.Markers)
	}
}

func TestModeValid(t *testing.T) {
	for _, m := range Modes {
		if !m.Valid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if Mode("spectral").Valid() {
		t.Error("unknown mode should be invalid")
	}
}

func TestImageDetailsScaled(t *testing.T) {
	d := ImageDetails{NaturalWidth: 2000, NaturalHeight: 1000, AppliedScaleFactor: 0.6}
	if d.Width() != 1200 || d.Height() != 600 {
		t.Errorf("scaled size = %vx%v, want 1200x600", d.Width(), d.Height())
	}
	unset := ImageDetails{NaturalWidth: 800, NaturalHeight: 400}
	if unset.Width() != 800 {
		t.Errorf("unset factor width = %v, want 800", unset.Width())
	}
}

func TestDopplerReset(t *testing.T) {
	s := fullState()
	s.Doppler.Reset()
	if s.Doppler.FPlus != nil || s.Doppler.FMinus != nil || s.Doppler.FZero != nil || s.Doppler.Speed != nil {
		t.Errorf("Reset left values: %+v", s.Doppler)
	}
	if s.Doppler.Phase != DopplerIdle {
		t.Errorf("Phase = %v, want idle", s.Doppler.Phase)
	}
}

func TestStoreListenerIsolation(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	s := NewStore(fullState(), logger)

	s.AddListener(func(State) { panic("listener A exploded") })
	var received []State
	s.AddListener(func(snap State) { received = append(received, snap) })

	s.Commit(func(st *State) { st.Zoom.Level = 1.5 })

	if len(received) != 1 {
		t.Fatalf("listener B called %d times, want 1", len(received))
	}
	if received[0].Zoom.Level != 1.5 {
		t.Errorf("listener B saw level %v, want 1.5", received[0].Zoom.Level)
	}
	if s.State().Zoom.Level != 1.5 {
		t.Errorf("canonical level = %v, want 1.5", s.State().Zoom.Level)
	}
	if !strings.Contains(buf.String(), "listener A exploded") {
		t.Errorf("failure not logged: %q", buf.String())
	}
}

func TestStoreSnapshotsAreCopies(t *testing.T) {
	s := NewStore(fullState(), log.New(&bytes.Buffer{}))
	s.AddListener(func(snap State) {
		snap.Analysis.Markers[0].Time = -1
		snap.Doppler.FPlus.Time = -1
	})
	var second State
	s.AddListener(func(snap State) { second = snap })

	s.ForceUpdate()

	if s.State().Analysis.Markers[0].Time != 10 || s.State().Doppler.FPlus.Time != 40 {
		t.Error("listener mutated canonical state")
	}
	if second.Analysis.Markers[0].Time != 10 {
		t.Error("listener mutation leaked into the next listener's snapshot")
	}
}

func TestStoreRemoveListener(t *testing.T) {
	s := NewStore(State{}, log.New(&bytes.Buffer{}))
	calls := 0
	id := s.AddListener(func(State) { calls++ })

	s.ForceUpdate()
	if !s.RemoveListener(id) {
		t.Error("RemoveListener should report removal")
	}
	if s.RemoveListener(id) {
		t.Error("second RemoveListener should report false")
	}
	s.ForceUpdate()

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if s.Listeners() != 0 {
		t.Errorf("Listeners() = %d, want 0", s.Listeners())
	}
}

func TestStoreListenerOrder(t *testing.T) {
	s := NewStore(State{}, log.New(&bytes.Buffer{}))
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		s.AddListener(func(State) { order = append(order, i) })
	}
	s.Commit(nil)
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("order = %v, want [0 1 2]", order)
	}
}

func TestStoreRemoveDuringBroadcast(t *testing.T) {
	s := NewStore(State{}, log.New(&bytes.Buffer{}))
	var second ListenerID
	calls := 0
	s.AddListener(func(State) { s.RemoveListener(second) })
	second = s.AddListener(func(State) { calls++ })

	s.ForceUpdate() // still delivered: the broadcast list was taken before
	s.ForceUpdate()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore(State{}, nil)
	s.AddListener(func(State) {})
	s.AddListener(func(State) {})
	s.Clear()
	if s.Listeners() != 0 {
		t.Errorf("Listeners() = %d after Clear, want 0", s.Listeners())
	}
}
