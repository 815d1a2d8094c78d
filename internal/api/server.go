// Package api exposes frames over a loopback HTTP API for automation.
//
// Every request is serialized through one mutex, since a frame is not safe
// for concurrent use. Routes:
//
//	GET    /healthz
//	GET    /instances
//	POST   /instances
//	DELETE /instances/{id}
//	GET    /instances/{id}/state
//	GET    /instances/{id}/stream          server-sent snapshots
//	GET    /instances/{id}/scene.svg
//	GET    /instances/{id}/scene.json
//	POST   /instances/{id}/events          pointer event, pixels or time/freq
//	POST   /instances/{id}/keys
//	PUT    /instances/{id}/mode
//	POST   /instances/{id}/zoom
//	PUT    /instances/{id}/container
//	POST   /instances/{id}/markers
//	DELETE /instances/{id}/markers[/{marker}]
//	POST   /instances/{id}/harmonics
//	DELETE /instances/{id}/harmonics[/{set}]
//	PUT    /instances/{id}/doppler
//	DELETE /instances/{id}/doppler
//	POST   /keys                           to the focused instance
//	POST   /replay                         TOML scenario body
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gramframe/pkg/buildinfo"
	"github.com/matzehuels/gramframe/pkg/config"
	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/errors"
	"github.com/matzehuels/gramframe/pkg/focus"
	"github.com/matzehuels/gramframe/pkg/frame"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/script"
)

// Server owns a page of frames that share one focus registry.
type Server struct {
	mu       sync.Mutex
	cfg      config.Config
	registry *focus.Registry
	player   *script.Player
	logger   *log.Logger
	ids      mode.IDSource
	gap      float64
}

// Option configures a Server.
type Option func(*Server)

// WithIDSource replaces the uuid generator for instance and feature ids.
func WithIDSource(ids mode.IDSource) Option { return func(s *Server) { s.ids = ids } }

// NewServer returns a server creating frames from cfg.
func NewServer(cfg config.Config, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:      cfg,
		registry: focus.NewRegistry(),
		logger:   logger,
		ids:      mode.NewUUID,
		gap:      40,
	}
	for _, o := range opts {
		o(s)
	}
	s.player = script.NewPlayer(s.registry, logger)
	return s
}

// Create adds a frame to the right of the existing ones. An empty id is
// generated.
func (s *Server) Create(id string) (*frame.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(id)
}

func (s *Server) create(id string) (*frame.Frame, error) {
	if id != "" {
		if _, ok := s.player.Frame(id); ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "instance %q already exists", id)
		}
	}
	left := 0.0
	for _, other := range s.player.IDs() {
		f, _ := s.player.Frame(other)
		if b := f.Bounds(); b.Right()+s.gap > left {
			left = b.Right() + s.gap
		}
	}

	opts := append(s.cfg.FrameOptions(),
		frame.WithRegistry(s.registry),
		frame.WithLogger(s.logger),
		frame.WithIDSource(s.ids),
		frame.WithInstanceID(id),
	)
	f, err := frame.New(s.cfg.Domain, s.cfg.FrameImage(), opts...)
	if err != nil {
		return nil, err
	}
	b := f.Bounds()
	f.Place(coords.Box{Left: left, Top: 0, Width: b.Width, Height: b.Height})
	s.player.Add(f)
	s.logger.Info("instance created", "id", f.ID(), "left", left)
	return f, nil
}

// Close closes every frame.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.player.IDs() {
		f, _ := s.player.Frame(id)
		f.Close()
		s.player.Remove(id)
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})
	r.Post("/keys", s.focusedKey)
	r.Post("/replay", s.replay)

	r.Route("/instances", func(r chi.Router) {
		r.Get("/", s.listInstances)
		r.Post("/", s.createInstance)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.withFrame(s.deleteInstance))
			r.Get("/state", s.withFrame(s.getState))
			r.Get("/stream", s.stream)
			r.Get("/scene.svg", s.withFrame(s.sceneSVG))
			r.Get("/scene.json", s.withFrame(s.sceneJSON))
			r.Post("/events", s.withFrame(s.pointerEvent))
			r.Post("/keys", s.withFrame(s.key))
			r.Put("/mode", s.withFrame(s.switchMode))
			r.Post("/zoom", s.withFrame(s.zoom))
			r.Put("/container", s.withFrame(s.resize))
			r.Post("/markers", s.withFrame(s.addMarker))
			r.Delete("/markers", s.withFrame(s.clearMarkers))
			r.Delete("/markers/{marker}", s.withFrame(s.removeMarker))
			r.Post("/harmonics", s.withFrame(s.addHarmonicSet))
			r.Delete("/harmonics", s.withFrame(s.clearHarmonicSets))
			r.Delete("/harmonics/{set}", s.withFrame(s.removeHarmonicSet))
			r.Put("/doppler", s.withFrame(s.setDoppler))
			r.Delete("/doppler", s.withFrame(s.resetDoppler))
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start).Round(time.Microsecond),
			"req", middleware.GetReqID(r.Context()))
	})
}

// frameHandler runs with the server lock held.
type frameHandler func(w http.ResponseWriter, r *http.Request, f *frame.Frame)

func (s *Server) withFrame(h frameHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		id := chi.URLParam(r, "id")
		f, ok := s.player.Frame(id)
		if !ok {
			writeError(w, errors.New(errors.ErrCodeInstanceNotFound, "unknown instance %q", id))
			return
		}
		h(w, r, f)
	}
}
