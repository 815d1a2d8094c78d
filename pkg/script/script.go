package script

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gramframe/pkg/errors"
	"github.com/matzehuels/gramframe/pkg/state"
)

// Action names a step.
type Action string

// Step actions.
const (
	ActionDown        Action = "down"
	ActionMove        Action = "move"
	ActionUp          Action = "up"
	ActionLeave       Action = "leave"
	ActionContextMenu Action = "contextmenu"
	ActionKey         Action = "key"
	ActionMode        Action = "mode"
	ActionZoomIn      Action = "zoom_in"
	ActionZoomOut     Action = "zoom_out"
	ActionResetZoom   Action = "reset_zoom"
	ActionResize      Action = "resize"
	ActionMarker      Action = "marker"
	ActionHarmonic    Action = "harmonic"
	ActionClear       Action = "clear"
	ActionExpect      Action = "expect"
)

var actions = []Action{
	ActionDown, ActionMove, ActionUp, ActionLeave, ActionContextMenu,
	ActionKey, ActionMode, ActionZoomIn, ActionZoomOut, ActionResetZoom,
	ActionResize, ActionMarker, ActionHarmonic, ActionClear, ActionExpect,
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, v := range actions {
		if a == v {
			return true
		}
	}
	return false
}

func (a Action) pointer() bool {
	switch a {
	case ActionDown, ActionMove, ActionUp, ActionContextMenu:
		return true
	}
	return false
}

// Scenario is a decoded replay file.
type Scenario struct {
	Name      string   `toml:"name"`
	Instances []string `toml:"instances"` // frames the host should create, in page order
	Steps     []Step   `toml:"step"`
}

// Step is one replayed event or control call.
type Step struct {
	Action   Action     `toml:"action"`
	Instance string     `toml:"instance"`
	Time     *float64   `toml:"time"`
	Freq     *float64   `toml:"freq"`
	X        *float64   `toml:"x"`
	Y        *float64   `toml:"y"`
	Page     bool       `toml:"page"`
	Button   int        `toml:"button"`
	Shift    bool       `toml:"shift"`
	Key      string     `toml:"key"`
	Mode     state.Mode `toml:"mode"`
	Width    float64    `toml:"width"`
	Height   float64    `toml:"height"`
	Color    string     `toml:"color"`
	Expect   *Expect    `toml:"expect"`
}

// Expect is a set of assertions on the target frame after a step. Zero
// fields are not checked.
type Expect struct {
	Mode         state.Mode         `toml:"mode"`
	Markers      *int               `toml:"markers"`
	HarmonicSets *int               `toml:"harmonic_sets"`
	Phase        state.DopplerPhase `toml:"phase"`
	Speed        *float64           `toml:"speed"`
	Tolerance    float64            `toml:"tolerance"`
	Focused      string             `toml:"focused"`
	Cursor       *bool              `toml:"cursor"`
	Degraded     *bool              `toml:"degraded"`
}

// DefaultTolerance is the absolute tolerance for speed expectations.
const DefaultTolerance = 0.05

// Load reads the scenario at path.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Scenario{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "scenario %s not found", path)
		}
		return Scenario{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read scenario %s", path)
	}
	sc, err := Parse(data)
	if err != nil {
		return Scenario{}, errors.Wrap(errors.GetCode(err), err, "scenario %s", path)
	}
	return sc, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (Scenario, error) {
	var sc Scenario
	md, err := toml.Decode(string(data), &sc)
	if err != nil {
		return Scenario{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Scenario{}, errors.New(errors.ErrCodeInvalidFormat, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate checks that every step is well formed.
func (sc Scenario) Validate() error {
	seen := make(map[string]bool, len(sc.Instances))
	for _, name := range sc.Instances {
		if name == "" || seen[name] {
			return errors.New(errors.ErrCodeInvalidFormat, "instance names must be unique and non-empty")
		}
		seen[name] = true
	}
	for i, s := range sc.Steps {
		if err := s.validate(); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "step %d", i+1)
		}
		if s.Instance != "" && len(seen) > 0 && !seen[s.Instance] {
			return errors.New(errors.ErrCodeInstanceNotFound, "step %d: unknown instance %q", i+1, s.Instance)
		}
	}
	return nil
}

func (s Step) validate() error {
	if !s.Action.Valid() {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown action %q", s.Action)
	}
	hasData := s.Time != nil || s.Freq != nil
	hasPixel := s.X != nil || s.Y != nil
	if hasData && (s.Time == nil || s.Freq == nil) {
		return errors.New(errors.ErrCodeInvalidFormat, "%s: time and freq go together", s.Action)
	}
	if hasPixel && (s.X == nil || s.Y == nil) {
		return errors.New(errors.ErrCodeInvalidFormat, "%s: x and y go together", s.Action)
	}
	if hasData && hasPixel {
		return errors.New(errors.ErrCodeInvalidFormat, "%s: give either time/freq or x/y", s.Action)
	}
	if s.Page && !hasPixel {
		return errors.New(errors.ErrCodeInvalidFormat, "%s: page points need x and y", s.Action)
	}

	switch {
	case s.Action.pointer() && !hasData && !hasPixel:
		return errors.New(errors.ErrCodeInvalidFormat, "%s needs a point", s.Action)
	case (s.Action == ActionMarker || s.Action == ActionHarmonic) && !hasData:
		return errors.New(errors.ErrCodeInvalidFormat, "%s needs time and freq", s.Action)
	case s.Action == ActionKey && s.Key == "":
		return errors.New(errors.ErrCodeInvalidFormat, "key needs a key name")
	case s.Action == ActionMode && !s.Mode.Valid():
		return errors.New(errors.ErrCodeInvalidMode, "unknown mode %q", s.Mode)
	case s.Action == ActionResize && (s.Width <= 0 || s.Height <= 0):
		return errors.New(errors.ErrCodeInvalidFormat, "resize needs a positive width and height")
	case s.Action == ActionExpect && s.Expect == nil:
		return errors.New(errors.ErrCodeInvalidFormat, "expect step without an expect table")
	}
	return nil
}
