package sink

import (
	"encoding/json"

	"github.com/matzehuels/gramframe/pkg/render/overlay"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style  string
	indent bool
}

// WithJSONStyle records the style name in the output.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Style string `json:"style,omitempty"`
	overlay.Scene
}

// RenderJSON encodes sc together with the name of its style.
func RenderJSON(sc overlay.Scene, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Style: r.style, Scene: sc}
	if out.Layers == nil {
		out.Layers = []overlay.Layer{}
	}
	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
