package cli

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/gramframe/pkg/config"
	"github.com/matzehuels/gramframe/pkg/focus"
	"github.com/matzehuels/gramframe/pkg/state"
)

func newTestTUI(t *testing.T) tuiModel {
	t.Helper()
	reg := focus.NewRegistry()
	frames, err := newPage(config.Default(), []string{"A", "B"}, reg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("newPage: %v", err)
	}
	t.Cleanup(func() { closeAll(frames) })
	return newTUIModel(frames, reg)
}

func send(m tuiModel, msgs ...tea.Msg) tuiModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(tuiModel)
	}
	return m
}

func click(col, row int) []tea.Msg {
	return []tea.Msg{
		tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: col, Y: row, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone},
	}
}

func TestTUIClickPlacesMarker(t *testing.T) {
	m := send(newTestTUI(t), click(23, 9)...)

	a := m.frames[0].Snapshot().Analysis.Markers
	if len(a) != 1 {
		t.Fatalf("markers on A = %d, want 1", len(a))
	}
	if n := len(m.frames[1].Snapshot().Analysis.Markers); n != 0 {
		t.Errorf("markers on B = %d, want 0", n)
	}
	if got := m.registry.Focused(); got != "A" {
		t.Errorf("focused = %q, want A", got)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyRight})
	after := m.frames[0].Snapshot().Analysis.Markers[0]
	if after.Freq <= a[0].Freq {
		t.Errorf("freq after right = %v, want > %v", after.Freq, a[0].Freq)
	}

	view := m.View()
	for _, want := range []string{"GramFrame", "▸ ", "+", "analysis"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTUIFocusAndModes(t *testing.T) {
	m := send(newTestTUI(t), click(70, 9)...)
	if got := m.registry.Focused(); got != "B" {
		t.Fatalf("focused = %q, want B", got)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if got := m.frames[1].Mode(); got != state.ModeHarmonics {
		t.Errorf("B mode = %q, want harmonics", got)
	}
	if got := m.frames[0].Mode(); got != state.ModeAnalysis {
		t.Errorf("A mode = %q, want analysis", got)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.registry.Focused(); got != "A" {
		t.Errorf("focused after tab = %q, want A", got)
	}

	// A click in the gap between instances keeps focus.
	m = send(m, click(44, 9)...)
	if got := m.registry.Focused(); got != "A" {
		t.Errorf("focused after gap click = %q, want A", got)
	}
}

func TestTUIZoom(t *testing.T) {
	m := send(newTestTUI(t),
		tea.MouseMsg{X: 23, Y: 9, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp},
	)
	if lvl := m.frames[0].Snapshot().Zoom.Level; lvl <= 1 {
		t.Errorf("A zoom = %v, want > 1", lvl)
	}
	if lvl := m.frames[1].Snapshot().Zoom.Level; lvl != 1 {
		t.Errorf("B zoom = %v, want 1", lvl)
	}

	m = send(m, click(23, 9)...)
	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'0'}})
	if lvl := m.frames[0].Snapshot().Zoom.Level; lvl != 1 {
		t.Errorf("A zoom after reset = %v, want 1", lvl)
	}
}

func TestTUIQuit(t *testing.T) {
	m := newTestTUI(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestLineRune(t *testing.T) {
	tests := []struct {
		dc, dr float64
		dashed bool
		want   rune
	}{
		{10, 0, false, '─'},
		{10, 1, true, '╌'},
		{0, 5, false, '│'},
		{0, 5, true, '┆'},
		{4, 4, false, '·'},
	}
	for _, tt := range tests {
		if got := lineRune(tt.dc, tt.dr, tt.dashed); got != tt.want {
			t.Errorf("lineRune(%v, %v, %v) = %q, want %q", tt.dc, tt.dr, tt.dashed, got, tt.want)
		}
	}
}
