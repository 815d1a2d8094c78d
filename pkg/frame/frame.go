package frame

import (
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/errors"
	"github.com/matzehuels/gramframe/pkg/focus"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/mode/analysis"
	"github.com/matzehuels/gramframe/pkg/mode/doppler"
	"github.com/matzehuels/gramframe/pkg/mode/harmonics"
	"github.com/matzehuels/gramframe/pkg/render/overlay"
	"github.com/matzehuels/gramframe/pkg/state"
	"github.com/matzehuels/gramframe/pkg/zoom"
)

// Image describes the spectrogram bitmap by its natural size.
type Image struct {
	Source string
	Width  float64
	Height float64
}

// Frame is one annotation instance.
type Frame struct {
	id       string
	store    *state.Store
	modes    map[state.Mode]mode.Mode
	sources  []overlay.FeatureSource
	active   mode.Mode
	opts     mode.Options
	logger   *log.Logger
	registry *focus.Registry
	ids      mode.IDSource
	origin   coords.Point
	scene    overlay.Scene
	closed   bool
	done     chan struct{}
}

// Option configures a Frame.
type Option func(*settings)

type settings struct {
	logger   *log.Logger
	registry *focus.Registry
	ids      mode.IDSource
	opts     mode.Options
	mode     state.Mode
	margins  coords.Margins
	bounds   *coords.Box
	id       string
}

// WithLogger sets the base logger. A nil logger falls back to the default.
func WithLogger(l *log.Logger) Option { return func(s *settings) { s.logger = l } }

// WithRegistry joins r instead of the process-wide focus registry.
func WithRegistry(r *focus.Registry) Option { return func(s *settings) { s.registry = r } }

// WithIDSource replaces the uuid generator for instance and feature ids.
func WithIDSource(ids mode.IDSource) Option { return func(s *settings) { s.ids = ids } }

// WithModeOptions sets the hit radius, palette and nudge steps shared by every mode.
func WithModeOptions(o mode.Options) Option { return func(s *settings) { s.opts = o } }

// WithInitialMode selects the mode active after New.
func WithInitialMode(m state.Mode) Option { return func(s *settings) { s.mode = m } }

// WithMargins sets the axis margins around the image.
func WithMargins(m coords.Margins) Option { return func(s *settings) { s.margins = m } }

// WithBounds places the container on the page. Its size is reported as by
// [Frame.Resize].
func WithBounds(b coords.Box) Option { return func(s *settings) { s.bounds = &b } }

// WithInstanceID fixes the instance id.
func WithInstanceID(id string) Option { return func(s *settings) { s.id = id } }

// NewModes is the factory for the closed set of modes, keyed by name.
func NewModes(opts mode.Options) map[state.Mode]mode.Mode {
	return map[state.Mode]mode.Mode{
		state.ModeAnalysis:  analysis.New(opts),
		state.ModeHarmonics: harmonics.New(opts),
		state.ModeDoppler:   doppler.New(opts),
	}
}

// New creates an instance for the given domain and image.
func New(cfg state.Config, img Image, options ...Option) (*Frame, error) {
	s := settings{
		logger:   log.Default(),
		registry: focus.Default(),
		ids:      mode.NewUUID,
		opts:     mode.DefaultOptions(),
		mode:     state.ModeAnalysis,
		margins:  coords.DefaultMargins,
	}
	for _, o := range options {
		o(&s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	if err := errors.ValidateImageSize(img.Width, img.Height); err != nil {
		return nil, err
	}
	if !s.mode.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidMode, "unknown mode %q", s.mode)
	}

	st := state.State{
		InstanceID: s.id,
		Config:     cfg,
		Image: state.ImageDetails{
			Source:             img.Source,
			NaturalWidth:       img.Width,
			NaturalHeight:      img.Height,
			AppliedScaleFactor: 1,
		},
		Zoom:    state.Zoom{Level: zoom.DefaultLevel},
		Margins: s.margins,
		Mode:    s.mode,
		Doppler: state.DopplerFit{Phase: state.DopplerIdle},
	}
	if st.InstanceID == "" {
		st.InstanceID = s.ids()
	}
	logger := s.logger.With("instance", shortID(st.InstanceID))

	if factor, w, h, scaled := zoom.AutoScale(img.Width, img.Height); scaled {
		st.Image.AppliedScaleFactor = factor
		logger.Info("image auto-scaled", "natural", dims(img.Width, img.Height), "rendered", dims(w, h), "factor", factor)
	}
	if err := errors.ValidateDomain(cfg.TimeMin, cfg.TimeMax, cfg.FreqMin, cfg.FreqMax); err != nil {
		st.ConfigError = errors.UserMessage(err)
		logger.Warn("invalid config, running degraded", "err", st.ConfigError)
	}

	f := &Frame{
		id:       st.InstanceID,
		modes:    NewModes(s.opts),
		opts:     s.opts,
		logger:   logger,
		registry: s.registry,
		ids:      s.ids,
		done:     make(chan struct{}),
	}
	for _, m := range state.Modes {
		f.sources = append(f.sources, f.modes[m])
	}
	f.active = f.modes[st.Mode]
	f.active.InitialState(&st)
	st.Guidance = f.active.GuidanceText()
	if s.bounds != nil {
		f.origin = coords.Point{X: s.bounds.Left, Y: s.bounds.Top}
		st.Container = state.Container{Width: s.bounds.Width, Height: s.bounds.Height}
	}

	f.store = state.NewStore(st, logger)
	f.redraw()
	f.registry.Register(f.id, f)
	return f, nil
}

// ID returns the instance id.
func (f *Frame) ID() string { return f.id }

// Mode returns the active mode.
func (f *Frame) Mode() state.Mode { return f.active.Name() }

// Snapshot returns a deep copy of the current state.
func (f *Frame) Snapshot() state.State { return f.store.Snapshot() }

// Scene returns the overlay rendered after the last change.
func (f *Frame) Scene() overlay.Scene { return f.scene }

// Viewport returns the current screen transform.
func (f *Frame) Viewport() coords.Viewport { return zoom.Viewport(f.store.State()) }

// Bounds returns the container box in page coordinates. When no container
// size has been reported, the frame's own displayed size is used.
func (f *Frame) Bounds() coords.Box {
	st := f.store.State()
	w, h := st.Container.Width, st.Container.Height
	if w <= 0 || h <= 0 {
		vp := f.Viewport()
		fw, fh := zoom.Frame(vp.Box, st.Margins)
		p := vp.ToScreen(coords.Point{X: fw, Y: fh})
		w, h = p.X, p.Y
	}
	return coords.Box{Left: f.origin.X, Top: f.origin.Y, Width: w, Height: h}
}

// Logger returns the instance logger.
func (f *Frame) Logger() *log.Logger { return f.logger }

// Closed reports whether Close has been called.
func (f *Frame) Closed() bool { return f.closed }

// Done returns a channel that is closed when the instance is closed.
func (f *Frame) Done() <-chan struct{} { return f.done }

// Close unregisters the instance from the focus registry and drops every
// listener. Further events are ignored.
func (f *Frame) Close() {
	if f.closed {
		return
	}
	f.closed = true
	close(f.done)
	f.registry.Unregister(f.id)
	f.store.Clear()
	f.logger.Debug("instance closed")
}

func (f *Frame) context() *mode.Context {
	return &mode.Context{
		Store:    frameStore{f},
		Viewport: f.Viewport(),
		Options:  f.opts,
		Logger:   f.logger,
		IDs:      f.ids,
	}
}

// commit applies fn, re-renders the scene and then broadcasts.
func (f *Frame) commit(fn func(*state.State)) state.State {
	return f.store.Commit(func(st *state.State) {
		fn(st)
		f.scene = overlay.Build(st, f.sources, zoom.Viewport(st))
	})
}

// frameStore routes mode commits through the frame so the scene is rebuilt
// before listeners run.
type frameStore struct{ f *Frame }

func (s frameStore) State() *state.State                      { return s.f.store.State() }
func (s frameStore) Commit(fn func(*state.State)) state.State { return s.f.commit(fn) }

func (f *Frame) redraw() {
	st := f.store.State()
	f.scene = overlay.Build(st, f.sources, zoom.Viewport(st))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dims(w, h float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64) + "x" + strconv.FormatFloat(h, 'f', -1, 64)
}
