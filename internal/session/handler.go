package session

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"parallel-timeline/internal/navigation"

	"github.com/go-chi/chi/v5"
)

const playlistContentType = "audio/x-mpegurl"

// Handler exposes session HTTP endpoints using go-chi.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler returns a Handler that uses the given Service and Logger.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts the timeline and session routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/timeline", h.GetTimeline)
	r.Post("/sessions", h.OpenSession)
	r.Route("/sessions/{session_id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Post("/viewport", h.Viewport)
		r.Route("/input", func(r chi.Router) {
			r.Post("/arrow", h.Arrow)
			r.Post("/drawer", h.DrawerCard)
			r.Post("/era-title", h.EraTitle)
			r.Post("/wheel", h.Wheel)
			r.Post("/touch", h.Touch)
			r.Post("/touch-move", h.TouchMove)
			r.Post("/scroll", h.Scroll)
			r.Post("/scroll-settled", h.ScrollSettled)
		})
		r.Route("/audio", func(r chi.Router) {
			r.Post("/toggle", h.TogglePlayPause)
			r.Post("/mute", h.ToggleMute)
			r.Post("/volume", h.SetVolume)
			r.Post("/ended", h.TrackEnded)
			r.Post("/error", h.TrackError)
			r.Get("/playlist.m3u8", h.GetPlaylist)
		})
	})
}

// OpenResponse is the body of a successful POST /sessions.
type OpenResponse struct {
	ID   ID   `json:"id"`
	View View `json:"view"`
}

// WheelResponse is the body of POST /sessions/{id}/input/wheel and
// /input/touch-move.
type WheelResponse struct {
	View           View `json:"view"`
	PreventDefault bool `json:"preventDefault"`
}

// GetTimeline handles GET /timeline.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Timeline())
}

// OpenSession handles POST /sessions.
// Body (optional): { "touchPrimary": false, "viewportWidth": 1280 }.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var opts Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		h.log.Debug("invalid session options", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	v, err := h.svc.Open(opts)
	if err != nil {
		h.log.Error("open session failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, OpenResponse{ID: v.ID, View: v})
}

// GetSession handles GET /sessions/{session_id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(sessionID(r))
	h.respond(w, v, err)
}

// CloseSession handles DELETE /sessions/{session_id}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Close(sessionID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Viewport handles POST /sessions/{session_id}/viewport.
// Body: { "width": 1280 }.
func (h *Handler) Viewport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Width float64 `json:"width"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	v, err := h.svc.Viewport(sessionID(r), body.Width)
	h.respond(w, v, err)
}

// Arrow handles POST /sessions/{session_id}/input/arrow.
// Body: { "direction": "left" | "right" }.
func (h *Handler) Arrow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Direction string `json:"direction"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	dir, err := navigation.ParseDirection(body.Direction)
	if err != nil {
		h.log.Debug("invalid arrow direction", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	v, err := h.svc.Arrow(sessionID(r), dir)
	h.respond(w, v, err)
}

// DrawerCard handles POST /sessions/{session_id}/input/drawer.
// Body: { "eraId": 2 }.
func (h *Handler) DrawerCard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EraID *int `json:"eraId"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if body.EraID == nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	v, err := h.svc.DrawerCard(sessionID(r), *body.EraID)
	h.respond(w, v, err)
}

// EraTitle handles POST /sessions/{session_id}/input/era-title.
func (h *Handler) EraTitle(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.EraTitle(sessionID(r))
	h.respond(w, v, err)
}

// Wheel handles POST /sessions/{session_id}/input/wheel.
// Body: { "deltaY": 3, "region": { "scrollTop": 0, "clientHeight": 600, "scrollHeight": 900 } }.
func (h *Handler) Wheel(w http.ResponseWriter, r *http.Request) {
	var ev navigation.WheelEvent
	if !h.decode(w, r, &ev) {
		return
	}
	v, prevent, err := h.svc.Wheel(sessionID(r), ev)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, WheelResponse{View: v, PreventDefault: prevent})
}

// Touch handles POST /sessions/{session_id}/input/touch.
// Body: { "startX": 300, "endX": 250 }.
func (h *Handler) Touch(w http.ResponseWriter, r *http.Request) {
	var seq navigation.TouchSequence
	if !h.decode(w, r, &seq) {
		return
	}
	v, err := h.svc.Touch(sessionID(r), seq)
	h.respond(w, v, err)
}

// TouchMove handles POST /sessions/{session_id}/input/touch-move.
// Body: { "inVerticalRegion": true }.
func (h *Handler) TouchMove(w http.ResponseWriter, r *http.Request) {
	var m navigation.TouchMove
	if !h.decode(w, r, &m) {
		return
	}
	v, prevent, err := h.svc.TouchMove(sessionID(r), m)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, WheelResponse{View: v, PreventDefault: prevent})
}

// Scroll handles POST /sessions/{session_id}/input/scroll.
// Body: { "offset": 1280 }.
func (h *Handler) Scroll(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Offset float64 `json:"offset"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	v, err := h.svc.Scroll(sessionID(r), body.Offset)
	h.respond(w, v, err)
}

// ScrollSettled handles POST /sessions/{session_id}/input/scroll-settled.
func (h *Handler) ScrollSettled(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.ScrollSettled(sessionID(r))
	h.respond(w, v, err)
}

// TogglePlayPause handles POST /sessions/{session_id}/audio/toggle.
func (h *Handler) TogglePlayPause(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.TogglePlayPause(r.Context(), sessionID(r))
	h.respond(w, v, err)
}

// ToggleMute handles POST /sessions/{session_id}/audio/mute.
func (h *Handler) ToggleMute(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.ToggleMute(sessionID(r))
	h.respond(w, v, err)
}

// SetVolume handles POST /sessions/{session_id}/audio/volume.
// Body: { "volume": 0.3 }.
func (h *Handler) SetVolume(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Volume *float64 `json:"volume"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if body.Volume == nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	v, err := h.svc.SetVolume(sessionID(r), *body.Volume)
	h.respond(w, v, err)
}

// TrackEnded handles POST /sessions/{session_id}/audio/ended.
func (h *Handler) TrackEnded(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.TrackEnded(r.Context(), sessionID(r))
	h.respond(w, v, err)
}

// TrackError handles POST /sessions/{session_id}/audio/error.
// Body (optional): { "message": "MEDIA_ERR_NETWORK" }.
func (h *Handler) TrackError(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	v, err := h.svc.TrackError(sessionID(r), body.Message)
	h.respond(w, v, err)
}

// GetPlaylist handles GET /sessions/{session_id}/audio/playlist.m3u8.
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	m3u, err := h.svc.Playlist(sessionID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", playlistContentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(m3u))
}

func sessionID(r *http.Request) ID {
	return ID(chi.URLParam(r, "session_id"))
}

// decode reads a JSON body into dst, answering 400 itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.log.Debug("invalid request body",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, v View, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		w.WriteHeader(http.StatusNotFound)
	default:
		h.log.Error("session request failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response failed", slog.String("error", err.Error()))
	}
}
