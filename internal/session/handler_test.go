package session

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	svc := newTestService(t, nil)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	r := chi.NewRouter()
	NewHandler(svc, log).Register(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func openSession(t *testing.T, r http.Handler, body string) OpenResponse {
	t.Helper()
	rec := do(r, http.MethodPost, "/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open session: expected 201, got %d", rec.Code)
	}
	var resp OpenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode open response: %v", err)
	}
	return resp
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) View {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var v View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func TestHandler_GetTimeline(t *testing.T) {
	r := newTestRouter(t)

	rec := do(r, http.MethodGet, "/timeline", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var tv TimelineView
	if err := json.Unmarshal(rec.Body.Bytes(), &tv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tv.Title != "Parallel Timeline" || len(tv.Pages) != 2 || len(tv.DrawerCards) != 2 || tv.AppTrackCount != 1 {
		t.Errorf("unexpected timeline %+v", tv)
	}
}

func TestHandler_OpenSession(t *testing.T) {
	r := newTestRouter(t)

	resp := openSession(t, r, `{"touchPrimary":false,"viewportWidth":1280}`)
	if resp.ID == "" || resp.View.ID != resp.ID {
		t.Errorf("unexpected response %+v", resp)
	}

	// An empty body opens a desktop session.
	openSession(t, r, "")
}

func TestHandler_OpenSession_bad_request(t *testing.T) {
	r := newTestRouter(t)

	rec := do(r, http.MethodPost, "/sessions", "not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_inputs(t *testing.T) {
	r := newTestRouter(t)
	id := string(openSession(t, r, `{"viewportWidth":1000}`).ID)
	base := "/sessions/" + id

	v := decodeView(t, do(r, http.MethodPost, base+"/input/arrow", `{"direction":"right"}`))
	if v.Navigation.CurrentIndex != 1 || v.Scroll.Index != 1 {
		t.Errorf("arrow right: %+v", v.Navigation)
	}

	v = decodeView(t, do(r, http.MethodPost, base+"/input/scroll-settled", ""))
	if v.Navigation.ProgrammaticScroll {
		t.Error("scroll-settled should clear the programmatic flag")
	}

	v = decodeView(t, do(r, http.MethodPost, base+"/input/era-title", ""))
	if !v.Navigation.DrawerOpen {
		t.Error("era-title should open the drawer")
	}

	v = decodeView(t, do(r, http.MethodPost, base+"/input/drawer", `{"eraId":0}`))
	if v.Navigation.CurrentIndex != 0 || v.Navigation.DrawerOpen {
		t.Errorf("drawer card: %+v", v.Navigation)
	}

	decodeView(t, do(r, http.MethodPost, base+"/input/scroll-settled", ""))
	rec := do(r, http.MethodPost, base+"/input/wheel", `{"deltaY":4}`)
	var wr WheelResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &wr); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("wheel: code %d err %v", rec.Code, err)
	}
	if !wr.PreventDefault || wr.View.Navigation.CurrentIndex != 1 {
		t.Errorf("wheel: %+v", wr)
	}

	v = decodeView(t, do(r, http.MethodPost, base+"/viewport", `{"width":800}`))
	if v.Navigation.CurrentIndex != 1 {
		t.Errorf("viewport change moved the index to %d", v.Navigation.CurrentIndex)
	}
	decodeView(t, do(r, http.MethodPost, base+"/input/scroll", `{"offset":800}`))
	decodeView(t, do(r, http.MethodPost, base+"/input/touch", `{"startX":300,"endX":250}`))
}

func TestHandler_TouchMove(t *testing.T) {
	r := newTestRouter(t)
	touch := "/sessions/" + string(openSession(t, r, `{"touchPrimary":true,"viewportWidth":400}`).ID)
	desktop := "/sessions/" + string(openSession(t, r, `{"viewportWidth":1000}`).ID)

	tests := []struct {
		name string
		base string
		body string
		want bool
	}{
		{"inside vertical region", touch, `{"inVerticalRegion":true}`, false},
		{"outside vertical region", touch, `{"inVerticalRegion":false}`, true},
		{"desktop session", desktop, `{"inVerticalRegion":false}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, tt.base+"/input/touch-move", tt.body)
			var resp WheelResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || rec.Code != http.StatusOK {
				t.Fatalf("touch-move: code %d err %v", rec.Code, err)
			}
			if resp.PreventDefault != tt.want {
				t.Errorf("preventDefault %v, want %v", resp.PreventDefault, tt.want)
			}
			if resp.View.Navigation.CurrentIndex != 0 {
				t.Errorf("touch-move moved the index to %d", resp.View.Navigation.CurrentIndex)
			}
		})
	}
}

func TestHandler_inputs_bad_request(t *testing.T) {
	r := newTestRouter(t)
	base := "/sessions/" + string(openSession(t, r, "").ID)

	tests := []struct {
		path string
		body string
	}{
		{"/input/arrow", `{"direction":"up"}`},
		{"/input/arrow", "not json"},
		{"/input/drawer", `{}`},
		{"/input/wheel", "not json"},
		{"/input/touch-move", "not json"},
		{"/input/scroll", `{"offset":"far"}`},
		{"/audio/volume", `{}`},
		{"/viewport", ""},
	}
	for _, tt := range tests {
		rec := do(r, http.MethodPost, base+tt.path, tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("POST %s %q: expected 400, got %d", tt.path, tt.body, rec.Code)
		}
	}
}

func TestHandler_audio(t *testing.T) {
	r := newTestRouter(t)
	base := "/sessions/" + string(openSession(t, r, "").ID)

	v := decodeView(t, do(r, http.MethodPost, base+"/audio/toggle", ""))
	if !v.Audio.IsPlaying || !v.Sink.Playing {
		t.Errorf("toggle should start playback: %+v", v.Audio)
	}

	v = decodeView(t, do(r, http.MethodPost, base+"/audio/volume", `{"volume":0.2}`))
	if v.Audio.Volume != 0.2 {
		t.Errorf("volume %v, want 0.2", v.Audio.Volume)
	}

	v = decodeView(t, do(r, http.MethodPost, base+"/audio/mute", ""))
	if !v.Audio.IsMuted {
		t.Error("mute should mute")
	}

	v = decodeView(t, do(r, http.MethodPost, base+"/audio/ended", ""))
	if v.Audio.TrackIndex != 1 {
		t.Errorf("ended should advance, index %d", v.Audio.TrackIndex)
	}

	rec := do(r, http.MethodGet, base+"/audio/playlist.m3u8", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("playlist: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != playlistContentType {
		t.Errorf("Content-Type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "#EXTM3U") {
		t.Errorf("unexpected playlist %q", rec.Body.String())
	}

	// A play failure is still a 200 with isPlaying false.
	v = decodeView(t, do(r, http.MethodPost, base+"/audio/error", `{"message":"decode failed"}`))
	if v.Audio.IsPlaying {
		t.Error("error report should stop playback")
	}
}

func TestHandler_unknown_session(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/sessions/nope", ""},
		{http.MethodDelete, "/sessions/nope", ""},
		{http.MethodPost, "/sessions/nope/input/arrow", `{"direction":"left"}`},
		{http.MethodPost, "/sessions/nope/input/era-title", ""},
		{http.MethodPost, "/sessions/nope/input/touch-move", `{"inVerticalRegion":false}`},
		{http.MethodPost, "/sessions/nope/audio/toggle", ""},
		{http.MethodGet, "/sessions/nope/audio/playlist.m3u8", ""},
	}
	for _, tt := range tests {
		rec := do(r, tt.method, tt.path, tt.body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tt.method, tt.path, rec.Code)
		}
	}
}

func TestHandler_CloseSession(t *testing.T) {
	r := newTestRouter(t)
	base := "/sessions/" + string(openSession(t, r, "").ID)

	if rec := do(r, http.MethodDelete, base, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := do(r, http.MethodGet, base, ""); rec.Code != http.StatusNotFound {
		t.Errorf("closed session: expected 404, got %d", rec.Code)
	}
}
