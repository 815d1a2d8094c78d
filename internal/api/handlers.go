package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/errors"
	"github.com/matzehuels/gramframe/pkg/frame"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/render/overlay/sink"
	"github.com/matzehuels/gramframe/pkg/script"
	"github.com/matzehuels/gramframe/pkg/state"
)

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps an error code onto an HTTP status.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidImage,
		errors.ErrCodeInvalidMode, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStyle:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeMarkerNotFound, errors.ErrCodeInstanceNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeExpectationFailed:
		status = http.StatusConflict
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "code": string(errors.GetCode(err))})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode body")
	}
	return nil
}

func (s *Server) listInstances(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"instances": s.player.Summaries(),
		"focused":   s.registry.Focused(),
	})
}

func (s *Server) createInstance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.create(req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f.Snapshot())
}

func (s *Server) deleteInstance(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	f.Close()
	s.player.Remove(f.ID())
	s.logger.Info("instance closed", "id", f.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	writeJSON(w, http.StatusOK, f.Snapshot())
}

func (s *Server) sceneSVG(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	opts := []sink.SVGOption{sink.WithStyle(s.cfg.Style()), sink.WithReadout(), sink.WithGuidance()}
	if r.URL.Query().Get("image") == "false" {
		opts = append(opts, sink.WithoutImage())
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(sink.RenderSVG(f.Scene(), opts...))
}

func (s *Server) sceneJSON(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	data, err := sink.RenderJSON(f.Scene(), sink.WithJSONStyle(s.cfg.Style().Name()))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode scene"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// eventRequest is a pointer event in container pixels, or at a data point
// when time and freq are given.
type eventRequest struct {
	mode.PointerEvent
	Time *float64 `json:"time"`
	Freq *float64 `json:"freq"`
}

func (s *Server) pointerEvent(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	var req eventRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ev := req.PointerEvent
	if (req.Time == nil) != (req.Freq == nil) {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "time and freq go together"))
		return
	}
	if req.Time != nil {
		p := coords.DataToScreen(coords.DataPoint{Time: *req.Time, Freq: *req.Freq}, f.Viewport(), f.Snapshot().Config)
		ev.X, ev.Y = p.X, p.Y
	}
	switch ev.Kind {
	case mode.PointerDown, mode.PointerMove, mode.PointerUp, mode.PointerLeave, mode.PointerContextMenu:
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown event kind %q", ev.Kind))
		return
	}
	f.Dispatch(ev)
	writeJSON(w, http.StatusOK, f.Snapshot())
}

func (s *Server) key(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	var ev mode.KeyEvent
	if err := decode(r, &ev); err != nil {
		writeError(w, err)
		return
	}
	consumed := f.KeyDown(ev)
	writeJSON(w, http.StatusOK, map[string]any{"consumed": consumed, "state": f.Snapshot()})
}

func (s *Server) focusedKey(w http.ResponseWriter, r *http.Request) {
	var ev mode.KeyEvent
	if err := decode(r, &ev); err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	consumed := s.registry.DispatchKey(ev)
	writeJSON(w, http.StatusOK, map[string]any{"consumed": consumed, "focused": s.registry.Focused()})
}

func (s *Server) switchMode(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	var req struct {
		Mode state.Mode `json:"mode"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := f.SwitchMode(req.Mode); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f.Snapshot())
}

func (s *Server) zoom(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	var req struct {
		Action string `json:"action"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	switch req.Action {
	case "in":
		f.ZoomIn()
	case "out":
		f.ZoomOut()
	case "reset":
		f.ResetZoom()
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "zoom action %q (want in, out or reset)", req.Action))
		return
	}
	writeJSON(w, http.StatusOK, f.Snapshot())
}

func (s *Server) resize(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	var c state.Container
	if err := decode(r, &c); err != nil {
		writeError(w, err)
		return
	}
	if c.Width <= 0 || c.Height <= 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "container size must be positive"))
		return
	}
	f.Resize(c.Width, c.Height)
	writeJSON(w, http.StatusOK, f.Snapshot())
}

type pointRequest struct {
	Time  float64 `json:"time"`
	Freq  float64 `json:"freq"`
	Color string  `json:"color"`
}

func (s *Server) addMarker(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	var req pointRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := f.AddMarker(req.Time, req.Freq, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "state": f.Snapshot()})
}

func (s *Server) removeMarker(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	if err := f.RemoveMarker(chi.URLParam(r, "marker")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearMarkers(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	f.ClearMarkers()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addHarmonicSet(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	var req struct {
		AnchorTime  float64 `json:"anchor_time"`
		Fundamental float64 `json:"fundamental_freq"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := f.AddHarmonicSet(req.AnchorTime, req.Fundamental)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "state": f.Snapshot()})
}

func (s *Server) removeHarmonicSet(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	if err := f.RemoveHarmonicSet(chi.URLParam(r, "set")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearHarmonicSets(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	f.ClearHarmonicSets()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setDoppler(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	var req struct {
		FPlus  *coords.DataPoint `json:"f_plus"`
		FMinus *coords.DataPoint `json:"f_minus"`
		FZero  *coords.DataPoint `json:"f_zero"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.FPlus == nil || req.FMinus == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "f_plus and f_minus are required"))
		return
	}
	if err := f.SetDopplerFit(*req.FPlus, *req.FMinus, req.FZero); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f.Snapshot())
}

func (s *Server) resetDoppler(w http.ResponseWriter, r *http.Request, f *frame.Frame) {
	f.ResetDoppler()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) replay(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	sc, err := script.Parse(data)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sc.Instances {
		if _, ok := s.player.Frame(id); ok {
			continue
		}
		if _, err := s.create(id); err != nil {
			writeError(w, err)
			return
		}
	}
	if err := s.player.Run(r.Context(), sc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"instances": s.player.Summaries()})
}

// stream sends a snapshot after every change as server-sent events.
// Slow readers miss intermediate snapshots rather than stall the frame.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSONError(w, http.StatusNotImplemented, "streaming unsupported")
		return
	}

	s.mu.Lock()
	f, ok := s.player.Frame(chi.URLParam(r, "id"))
	if !ok {
		s.mu.Unlock()
		writeError(w, errors.New(errors.ErrCodeInstanceNotFound, "unknown instance %q", chi.URLParam(r, "id")))
		return
	}
	updates := make(chan state.State, 16)
	lid := f.AddListener(func(st state.State) {
		select {
		case updates <- st:
		default:
		}
	})
	initial := f.Snapshot()
	done := f.Done()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		f.RemoveListener(lid)
		s.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	send := func(st state.State) bool {
		data, err := json.Marshal(st)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !send(initial) {
		return
	}
	for {
		select {
		case st := <-updates:
			if !send(st) {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
