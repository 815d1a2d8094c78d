package frame

import (
	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/errors"
	"github.com/matzehuels/gramframe/pkg/mode/analysis"
	"github.com/matzehuels/gramframe/pkg/mode/doppler"
	"github.com/matzehuels/gramframe/pkg/mode/harmonics"
	"github.com/matzehuels/gramframe/pkg/observability"
	"github.com/matzehuels/gramframe/pkg/state"
)

func (f *Frame) checkPoint(dp coords.DataPoint) error {
	st := f.store.State()
	if st.Degraded() {
		return errors.New(errors.ErrCodeInvalidConfig, "instance is degraded: %s", st.ConfigError)
	}
	if !st.Config.Contains(dp) {
		return errors.New(errors.ErrCodeInvalidInput, "point (t=%g, f=%g) outside domain", dp.Time, dp.Freq)
	}
	return nil
}

// AddMarker places an analysis marker and returns its id. An empty color
// takes the next palette entry.
func (f *Frame) AddMarker(time, freq float64, color string) (string, error) {
	if err := f.checkPoint(coords.DataPoint{Time: time, Freq: freq}); err != nil {
		return "", err
	}
	if color != "" {
		if err := errors.ValidateColor(color); err != nil {
			return "", err
		}
	}
	id := f.ids()
	f.commit(func(st *state.State) {
		analysis.Add(st, state.Marker{ID: id, Time: time, Freq: freq, Color: color}, f.opts)
	})
	observability.Mode().OnFeatureAdded(f.id, string(state.ModeAnalysis), id)
	return id, nil
}

// RemoveMarker deletes the marker with the given id.
func (f *Frame) RemoveMarker(id string) error {
	if _, ok := f.store.State().Analysis.Marker(id); !ok {
		return errors.New(errors.ErrCodeMarkerNotFound, "marker %q not found", id)
	}
	f.commit(func(st *state.State) { analysis.Remove(st, id) })
	return nil
}

// ClearMarkers deletes every marker.
func (f *Frame) ClearMarkers() { f.commit(analysis.Clear) }

// SelectMarker makes id the target of keyboard nudges. An empty id clears
// the selection.
func (f *Frame) SelectMarker(id string) error {
	if id != "" {
		if _, ok := f.store.State().Analysis.Marker(id); !ok {
			return errors.New(errors.ErrCodeMarkerNotFound, "marker %q not found", id)
		}
	}
	f.commit(func(st *state.State) { st.Analysis.Selected = id })
	return nil
}

// AddHarmonicSet adds a harmonic set with the given anchor time and
// fundamental and returns its id. Fundamentals whose lines would sit closer
// than [harmonics.MinSpacing] pixels are rejected.
func (f *Frame) AddHarmonicSet(anchorTime, fundamental float64) (string, error) {
	if err := errors.ValidatePositive("fundamental", fundamental); err != nil {
		return "", err
	}
	st := f.store.State()
	if err := f.checkPoint(coords.DataPoint{Time: anchorTime, Freq: st.Config.FreqMin}); err != nil {
		return "", err
	}
	if lowest := harmonics.MinFundamental(f.Viewport(), st.Config); fundamental < lowest {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"fundamental %g Hz puts lines less than %g px apart (minimum %g Hz)", fundamental, harmonics.MinSpacing, lowest)
	}
	id := f.ids()
	f.commit(func(st *state.State) {
		harmonics.Add(st, state.HarmonicSet{ID: id, AnchorTime: anchorTime, FundamentalFreq: fundamental}, f.opts)
	})
	observability.Mode().OnFeatureAdded(f.id, string(state.ModeHarmonics), id)
	return id, nil
}

// RemoveHarmonicSet deletes the set with the given id.
func (f *Frame) RemoveHarmonicSet(id string) error {
	if _, ok := f.store.State().Harmonics.Set(id); !ok {
		return errors.New(errors.ErrCodeNotFound, "harmonic set %q not found", id)
	}
	f.commit(func(st *state.State) { harmonics.Remove(st, id) })
	return nil
}

func (f *Frame) ClearHarmonicSets() { f.commit(harmonics.Clear) }

// ResetDoppler clears the Doppler fit.
func (f *Frame) ResetDoppler() {
	f.commit(func(st *state.State) { st.Doppler.Reset() })
}

// SetDopplerFit places a complete fit. The endpoints are ordered so that
// fPlus is the later one; a nil fZero defaults to their midpoint.
func (f *Frame) SetDopplerFit(fPlus, fMinus coords.DataPoint, fZero *coords.DataPoint) error {
	for _, p := range []*coords.DataPoint{&fPlus, &fMinus, fZero} {
		if p == nil {
			continue
		}
		if err := f.checkPoint(*p); err != nil {
			return err
		}
	}
	dm := f.modes[state.ModeDoppler].(*doppler.Mode)
	f.commit(func(st *state.State) { dm.Set(st, fPlus, fMinus, fZero) })
	return nil
}
