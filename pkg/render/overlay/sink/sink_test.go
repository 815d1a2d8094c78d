package sink

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/render/overlay"
	"github.com/matzehuels/gramframe/pkg/render/overlay/styles"
	"github.com/matzehuels/gramframe/pkg/state"
)

func testScene() overlay.Scene {
	return overlay.Scene{
		Width:  875,
		Height: 465,
		Image:  coords.Box{Left: 60, Top: 15, Width: 800, Height: 400},
		Source: "spectrogram.png",
		Mode:   state.ModeDoppler,
		Layers: []overlay.Layer{
			{
				Name:        "analysis",
				HitTestable: true,
				Shapes: []overlay.Shape{
					{Kind: overlay.KindCrosshair, Feature: "m1", Role: "marker", X1: 100, Y1: 100, R: 8, Color: "#ff0000"},
				},
			},
			{
				Name:        "doppler",
				Interactive: true,
				HitTestable: true,
				Shapes: []overlay.Shape{
					{Kind: overlay.KindPolyline, Role: "doppler-curve", Points: []coords.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}},
				},
			},
		},
		Readout: &overlay.Readout{Text: "Time 1.00 s  Freq 2.00 Hz"},
	}
}

func TestRenderSVG(t *testing.T) {
	out := string(RenderSVG(testScene(), WithReadout()))

	checks := []string{
		`viewBox="0 0 875.0 465.0"`,
		`<image href="spectrogram.png"`,
		`<g class="layer layer-analysis" pointer-events="none">`,
		`<g class="layer layer-doppler">`,
		`id="m1"`,
		`<polyline class="doppler-curve"`,
		"Time 1.00 s",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("SVG not terminated")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	out := string(RenderSVG(testScene(), WithoutImage(), WithStyle(styles.Contrast{})))
	if strings.Contains(out, "<image") {
		t.Error("WithoutImage still rendered <image>")
	}
	if strings.Contains(out, "Time 1.00 s") {
		t.Error("readout rendered without WithReadout")
	}
	if !strings.Contains(out, "monospace") {
		t.Error("contrast style defs missing")
	}
}

func TestRenderSVGDegraded(t *testing.T) {
	sc := overlay.Scene{Width: 100, Height: 100, Degraded: "time_min must be less than time_max"}
	out := string(RenderSVG(sc))
	if !strings.Contains(out, "Invalid configuration: time_min must be less than time_max") {
		t.Errorf("degraded indicator missing:\n%s", out)
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	a := RenderSVG(testScene())
	b := RenderSVG(testScene())
	if string(a) != string(b) {
		t.Error("RenderSVG is not deterministic")
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testScene(), WithJSONStyle("simple"))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out struct {
		Style  string          `json:"style"`
		Width  float64         `json:"width"`
		Mode   string          `json:"mode"`
		Layers []overlay.Layer `json:"layers"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Style != "simple" {
		t.Errorf("Style = %q, want simple", out.Style)
	}
	if out.Width != 875 {
		t.Errorf("Width = %v, want 875", out.Width)
	}
	if out.Mode != "doppler" {
		t.Errorf("Mode = %q, want doppler", out.Mode)
	}
	if len(out.Layers) != 2 || out.Layers[0].Interactive || !out.Layers[1].Interactive {
		t.Errorf("Layers = %+v", out.Layers)
	}
}

func TestRenderJSONEmptyLayers(t *testing.T) {
	data, err := RenderJSON(overlay.Scene{}, WithJSONIndent())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	if !strings.Contains(string(data), `"layers": []`) {
		t.Errorf("expected empty layers array, got %s", data)
	}
}
