// Package state defines the canonical per-instance state tree and the store
// that commits mutations and broadcasts snapshots.
//
// All three mode sub-states (Analysis, Harmonics, Doppler) live in the tree
// at the same time regardless of which mode is active, so features persist
// across mode switches.
//
// Listeners never see the canonical tree: every broadcast hands them a deep
// copy produced by [State.Clone].
package state

import (
	"github.com/matzehuels/gramframe/pkg/coords"
)

// Mode identifies one of the closed set of interaction modes.
type Mode string

// Interaction modes.
const (
	ModeAnalysis  Mode = "analysis"
	ModeHarmonics Mode = "harmonics"
	ModeDoppler   Mode = "doppler"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeAnalysis, ModeHarmonics, ModeDoppler}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeAnalysis, ModeHarmonics, ModeDoppler:
		return true
	}
	return false
}

// Config holds the domain bounds of the spectrogram.
type Config = coords.Domain

// ImageDetails describes the opaque spectrogram bitmap.
type ImageDetails struct {
	Source             string  `json:"source,omitempty"`
	NaturalWidth       float64 `json:"natural_width"`
	NaturalHeight      float64 `json:"natural_height"`
	AppliedScaleFactor float64 `json:"applied_scale_factor"`
}

// Width returns the image width after the load-time scale factor.
func (d ImageDetails) Width() float64 { return d.NaturalWidth * d.factor() }

// Height returns the image height after the load-time scale factor.
func (d ImageDetails) Height() float64 { return d.NaturalHeight * d.factor() }

func (d ImageDetails) factor() float64 {
	if d.AppliedScaleFactor <= 0 {
		return 1
	}
	return d.AppliedScaleFactor
}

// Zoom holds the interactive zoom level.
type Zoom struct {
	Level float64 `json:"level"`
}

// Container is the last reported size of the hosting container in pixels.
type Container struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Marker is an analysis crosshair placed on the spectrogram.
type Marker struct {
	ID    string  `json:"id"`
	Time  float64 `json:"time"`
	Freq  float64 `json:"freq"`
	Color string  `json:"color"`
}

// Point returns the marker position.
func (m Marker) Point() coords.DataPoint {
	return coords.DataPoint{Time: m.Time, Freq: m.Freq}
}

// AnalysisState is the Analysis mode sub-state.
type AnalysisState struct {
	Markers    []Marker `json:"markers"`
	Selected   string   `json:"selected,omitempty"`
	Dragging   string   `json:"dragging,omitempty"`
	ColorIndex int      `json:"color_index"`
}

// Marker returns the marker with the given id.
func (a *AnalysisState) Marker(id string) (*Marker, bool) {
	for i := range a.Markers {
		if a.Markers[i].ID == id {
			return &a.Markers[i], true
		}
	}
	return nil, false
}

// Axis names the dominant direction of a harmonics drag.
type Axis string

// Drag axes. Horizontal movement runs along the frequency axis, vertical
// movement along the time axis.
const (
	AxisNone Axis = ""
	AxisFreq Axis = "frequency"
	AxisTime Axis = "time"
)

// HarmonicSet is a ladder of harmonic lines at FundamentalFreq × n.
type HarmonicSet struct {
	ID              string  `json:"id"`
	AnchorTime      float64 `json:"anchor_time"`
	FundamentalFreq float64 `json:"fundamental_freq"`
	Rate            float64 `json:"rate"`
	Color           string  `json:"color"`
}

// HarmonicCandidate is a harmonic set under construction or being edited.
// AnchorTime moves with the pointer relative to BaseAnchorTime, by the time
// elapsed since DownTime.
type HarmonicCandidate struct {
	SetID           string       `json:"set_id,omitempty"`
	Origin          coords.Point `json:"origin"`
	AnchorFreq      float64      `json:"anchor_freq"`
	AnchorTime      float64      `json:"anchor_time"`
	DownTime        float64      `json:"down_time"`
	BaseAnchorTime  float64      `json:"base_anchor_time"`
	FundamentalFreq float64      `json:"fundamental_freq"`
	Harmonic        int          `json:"harmonic"`
	Emphasis        Axis         `json:"emphasis,omitempty"`
}

// HarmonicsState is the Harmonics mode sub-state.
type HarmonicsState struct {
	Sets       []HarmonicSet      `json:"sets"`
	Candidate  *HarmonicCandidate `json:"candidate,omitempty"`
	Selected   string             `json:"selected,omitempty"`
	ColorIndex int                `json:"color_index"`
}

// Set returns the harmonic set with the given id.
func (h *HarmonicsState) Set(id string) (*HarmonicSet, bool) {
	for i := range h.Sets {
		if h.Sets[i].ID == id {
			return &h.Sets[i], true
		}
	}
	return nil, false
}

// DopplerPhase is the state of the Doppler fit state machine.
type DopplerPhase string

// Doppler phases.
const (
	DopplerIdle           DopplerPhase = "idle"
	DopplerPlacingPreview DopplerPhase = "placing_preview"
	DopplerPlaced         DopplerPhase = "placed"
	DopplerDragging       DopplerPhase = "dragging"
)

// DopplerPoint names one of the three fit markers.
type DopplerPoint string

// Doppler fit markers.
const (
	PointNone   DopplerPoint = ""
	PointFPlus  DopplerPoint = "f_plus"
	PointFMinus DopplerPoint = "f_minus"
	PointFZero  DopplerPoint = "f_zero"
)

// DopplerFit is the Doppler mode sub-state.
//
// Once placed, FPlus is the later-time point: FPlus.Time >= FMinus.Time.
type DopplerFit struct {
	FPlus      *coords.DataPoint `json:"f_plus"`
	FMinus     *coords.DataPoint `json:"f_minus"`
	FZero      *coords.DataPoint `json:"f_zero"`
	SpeedMPS   *float64          `json:"speed_mps"`
	Speed      *float64          `json:"speed"`
	Unit       string            `json:"unit,omitempty"`
	Phase      DopplerPhase      `json:"phase"`
	DragTarget DopplerPoint      `json:"drag_target,omitempty"`
}

// Point returns the marker named by p.
func (d *DopplerFit) Point(p DopplerPoint) *coords.DataPoint {
	switch p {
	case PointFPlus:
		return d.FPlus
	case PointFMinus:
		return d.FMinus
	case PointFZero:
		return d.FZero
	}
	return nil
}

// Reset clears every marker and the speed, returning the fit to idle.
func (d *DopplerFit) Reset() {
	*d = DopplerFit{Phase: DopplerIdle}
}

// State is the aggregate root of one widget instance.
type State struct {
	InstanceID  string            `json:"instance_id"`
	Config      Config            `json:"config"`
	ConfigError string            `json:"config_error,omitempty"`
	Image       ImageDetails      `json:"image"`
	Zoom        Zoom              `json:"zoom"`
	Margins     coords.Margins    `json:"margins"`
	Container   Container         `json:"container"`
	Cursor      *coords.DataPoint `json:"cursor"`
	Mode        Mode              `json:"mode"`
	Guidance    string            `json:"guidance"`
	Analysis    AnalysisState     `json:"analysis"`
	Harmonics   HarmonicsState    `json:"harmonics"`
	Doppler     DopplerFit        `json:"doppler"`
}

// Degraded reports whether the instance runs without transforms because
// its configuration was rejected.
func (s *State) Degraded() bool { return s.ConfigError != "" }

// Clone returns a deep copy of s that shares no memory with it.
func (s *State) Clone() State {
	out := *s
	out.Cursor = clonePoint(s.Cursor)
	out.Analysis.Markers = cloneSlice(s.Analysis.Markers)
	out.Harmonics.Sets = cloneSlice(s.Harmonics.Sets)
	if s.Harmonics.Candidate != nil {
		c := *s.Harmonics.Candidate
		out.Harmonics.Candidate = &c
	}
	out.Doppler.FPlus = clonePoint(s.Doppler.FPlus)
	out.Doppler.FMinus = clonePoint(s.Doppler.FMinus)
	out.Doppler.FZero = clonePoint(s.Doppler.FZero)
	out.Doppler.SpeedMPS = cloneFloat(s.Doppler.SpeedMPS)
	out.Doppler.Speed = cloneFloat(s.Doppler.Speed)
	return out
}

func clonePoint(p *coords.DataPoint) *coords.DataPoint {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
