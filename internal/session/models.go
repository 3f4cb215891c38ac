package session

import (
	"sync"
	"time"

	"parallel-timeline/internal/audio"
	"parallel-timeline/internal/navigation"
	"parallel-timeline/internal/timeline"
)

// ID uniquely identifies a session.
type ID string

// Options is the input payload for opening a session.
type Options struct {
	// TouchPrimary comes from device detection on the client and selects
	// swipe handling instead of the mouse wheel.
	TouchPrimary  bool    `json:"touchPrimary"`
	ViewportWidth float64 `json:"viewportWidth"`
}

// View is everything a client needs to render a session after an input:
// navigation state, audio state, and the commands for its scroll container
// and audio element.
type View struct {
	ID         ID                  `json:"id"`
	Navigation navigation.Snapshot `json:"navigation"`
	Audio      audio.State         `json:"audio"`
	Scroll     ScrollCommand       `json:"scroll"`
	Sink       audio.Command       `json:"sink"`
}

// TimelineView is the shared, read-only document rendering data.
type TimelineView struct {
	Title         string                `json:"title"`
	Pages         []timeline.Page       `json:"pages"`
	DrawerCards   []timeline.DrawerCard `json:"drawerCards"`
	AppTrackCount int                   `json:"appTrackCount"`
}

// Session is one mounted view of the timeline.
type Session struct {
	ID        ID
	CreatedAt time.Time

	// mu serializes inputs so each session behaves as one logical thread.
	mu       sync.Mutex
	lastSeen time.Time
	closed   bool

	nav      *navigation.Controller
	audio    *audio.Switchboard
	controls *audio.Controls
	sink     *audio.RemoteSink
	gestures *Dispatcher
	scroll   *ScrollRecorder
}

// viewLocked assembles the current View. Caller must hold s.mu.
func (s *Session) viewLocked() View {
	return View{
		ID:         s.ID,
		Navigation: s.nav.Snapshot(),
		Audio:      s.audio.State(),
		Scroll:     s.scroll.Command(),
		Sink:       s.sink.Command(),
	}
}

// closeLocked tears the session down: navigation first so no transition can
// reach the switchboard, then audio. Caller must hold s.mu.
func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.nav.Close()
	s.audio.Destroy()
}

// LastSeen returns when the session last received an input.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
