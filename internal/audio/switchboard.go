// Package audio switches background audio between era track sets and the
// app-wide fallback set as the viewer moves through the timeline.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"parallel-timeline/internal/observable"
	"parallel-timeline/internal/platform/logger"
)

// DefaultVolume is the volume a new Switchboard starts with.
const DefaultVolume = 0.5

// Source identifies which track set is active.
type Source string

const (
	SourceNone Source = ""
	SourceEra  Source = "era"
	SourceApp  Source = "app"
)

// State is the externally observable audio state.
type State struct {
	IsPlaying    bool    `json:"isPlaying"`
	CurrentTrack string  `json:"currentTrack"`
	Volume       float64 `json:"volume"`
	IsMuted      bool    `json:"isMuted"`
	Source       Source  `json:"source"`
	TrackIndex   int     `json:"trackIndex"`
}

// ErrDestroyed is returned by operations on a destroyed Switchboard.
var ErrDestroyed = errors.New("audio switchboard destroyed")

// Switchboard owns a single Sink and the notion of the active track set.
// All operations are serialized; each decision reads the state current at
// call time, so when calls race the later one wins.
type Switchboard struct {
	mu        sync.Mutex
	sink      Sink
	log       *slog.Logger
	appTracks TrackSet
	active    TrackSet
	index     int
	destroyed bool

	state *observable.Value[State]

	onSwitch      func(Source)
	onPlayFailure func(error)
}

// Option configures a Switchboard.
type Option func(*Switchboard)

// WithLogger sets the logger used for playback failures and no-op decisions.
func WithLogger(log *slog.Logger) Option {
	return func(s *Switchboard) {
		if log != nil {
			s.log = log
		}
	}
}

// WithVolume sets the initial volume (clamped to [0,1]).
func WithVolume(v float64) Option {
	return func(s *Switchboard) {
		s.state = observable.New(State{Volume: clamp01(v)})
	}
}

// WithSwitchHook registers fn to be called after every effective track set switch.
func WithSwitchHook(fn func(Source)) Option {
	return func(s *Switchboard) { s.onSwitch = fn }
}

// WithPlayFailureHook registers fn to be called for every failed play attempt
// and every error reported by the sink.
func WithPlayFailureHook(fn func(error)) Option {
	return func(s *Switchboard) { s.onPlayFailure = fn }
}

// NewSwitchboard returns an idle Switchboard that plays through sink.
func NewSwitchboard(sink Sink, opts ...Option) *Switchboard {
	s := &Switchboard{
		sink:  sink,
		log:   logger.Discard(),
		state: observable.New(State{Volume: DefaultVolume}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sink.SetVolume(s.state.Get().Volume)
	return s
}

// InitializeAppTracks seeds the app-wide fallback set. When non-empty it also
// becomes the active set, positioned at its first track. Nothing is played.
func (s *Switchboard) InitializeAppTracks(tracks TrackSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || tracks.Empty() {
		return
	}
	s.appTracks = tracks.Clone()
	s.active = s.appTracks
	s.index = 0
	s.publishLocked(func(st State) State {
		st.CurrentTrack = s.active[0].URL
		st.Source = SourceApp
		st.TrackIndex = 0
		return st
	})
}

// HandleEraChange makes eraTracks the active set. It is a no-op when the
// tracks already are the active set. An empty set falls back to the app-wide
// tracks unless those are already active or there are none, in which case the
// current set is kept.
func (s *Switchboard) HandleEraChange(ctx context.Context, eraTracks TrackSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}

	if eraTracks.Equal(s.active) {
		s.log.Debug("era audio already active", slog.Int("tracks", len(eraTracks)))
		return
	}

	if !eraTracks.Empty() {
		s.switchLocked(ctx, eraTracks.Clone(), SourceEra)
		return
	}

	if s.active.Equal(s.appTracks) {
		s.log.Debug("app audio already active")
		return
	}
	if s.appTracks.Empty() {
		s.log.Warn("era has no audio and no app audio is configured, keeping current tracks")
		return
	}
	s.switchLocked(ctx, s.appTracks, SourceApp)
}

// Play starts the current track of the active set. A failure is logged,
// leaves the switchboard not playing, and is returned.
func (s *Switchboard) Play(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrDestroyed
	}
	return s.playLocked(ctx)
}

// Pause pauses playback without forgetting the active set or position.
func (s *Switchboard) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.sink.Pause()
	s.publishLocked(func(st State) State {
		st.IsPlaying = false
		return st
	})
}

// PlayNext advances to the next track of the active set, wrapping to the
// first one after the last, and plays it if audio is currently playing.
// It is fired when a track ends naturally.
func (s *Switchboard) PlayNext(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrDestroyed
	}
	if s.active.Empty() {
		return nil
	}

	s.index = (s.index + 1) % len(s.active)
	url := s.active[s.index].URL
	s.publishLocked(func(st State) State {
		st.CurrentTrack = url
		st.TrackIndex = s.index
		return st
	})
	if !s.state.Get().IsPlaying {
		return nil
	}
	return s.playLocked(ctx)
}

// SetVolume sets the volume, clamped to [0,1]. While muted the sink stays
// silent and the new volume applies on unmute.
func (s *Switchboard) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	v = clamp01(v)
	if !s.state.Get().IsMuted {
		s.sink.SetVolume(v)
	}
	s.publishLocked(func(st State) State {
		st.Volume = v
		return st
	})
}

// SetMuted silences or restores the sink. The stored volume is untouched.
func (s *Switchboard) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	st := s.state.Get()
	if muted {
		s.sink.SetVolume(0)
	} else {
		s.sink.SetVolume(st.Volume)
	}
	s.publishLocked(func(st State) State {
		st.IsMuted = muted
		return st
	})
}

// ReportError records a playback error raised by the sink after a play
// attempt had started, such as a media resource failing to load.
func (s *Switchboard) ReportError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.failLocked(s.state.Get().CurrentTrack, err)
}

// State returns the current audio state.
func (s *Switchboard) State() State {
	return s.state.Get()
}

// ActiveTracks returns a copy of the active track set.
func (s *Switchboard) ActiveTracks() (TrackSet, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Clone(), s.index
}

// Subscribe registers fn for state changes. fn receives the current state
// immediately. fn must not call mutating Switchboard methods.
func (s *Switchboard) Subscribe(fn func(State)) (cancel func()) {
	return s.state.Subscribe(fn)
}

// Destroy pauses, releases the sink and completes the state stream.
// It is safe to call more than once.
func (s *Switchboard) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.sink.Pause()
	s.publishLocked(func(st State) State {
		st.IsPlaying = false
		return st
	})
	if err := s.sink.Close(); err != nil && !errors.Is(err, ErrSinkClosed) {
		s.log.Warn("close audio sink", slog.String("error", err.Error()))
	}
	s.destroyed = true
	s.state.Close()
}

func (s *Switchboard) switchLocked(ctx context.Context, tracks TrackSet, source Source) {
	s.log.Debug("switching background audio",
		slog.String("source", string(source)),
		slog.Int("tracks", len(tracks)))

	s.active = tracks
	s.index = 0
	s.publishLocked(func(st State) State {
		st.CurrentTrack = tracks[0].URL
		st.Source = source
		st.TrackIndex = 0
		return st
	})
	if s.onSwitch != nil {
		s.onSwitch(source)
	}

	if s.state.Get().IsPlaying {
		// Failure is already logged and reflected in state.
		_ = s.playLocked(ctx)
	}
}

func (s *Switchboard) playLocked(ctx context.Context) error {
	if s.active.Empty() {
		s.publishLocked(func(st State) State {
			st.IsPlaying = false
			return st
		})
		return nil
	}
	if s.index < 0 || s.index >= len(s.active) {
		s.log.Warn("track index out of bounds, resetting to 0", slog.Int("index", s.index))
		s.index = 0
	}

	url := s.active[s.index].URL
	if err := s.sink.Load(url); err != nil {
		return s.failLocked(url, err)
	}
	st := s.state.Get()
	if st.IsMuted {
		s.sink.SetVolume(0)
	} else {
		s.sink.SetVolume(st.Volume)
	}
	if err := s.sink.Play(ctx); err != nil {
		return s.failLocked(url, err)
	}

	s.publishLocked(func(st State) State {
		st.IsPlaying = true
		st.CurrentTrack = url
		st.TrackIndex = s.index
		return st
	})
	return nil
}

func (s *Switchboard) failLocked(url string, err error) error {
	s.log.Error("background audio playback failed",
		slog.String("track", url),
		slog.String("error", err.Error()))
	s.publishLocked(func(st State) State {
		st.IsPlaying = false
		return st
	})
	if s.onPlayFailure != nil {
		s.onPlayFailure(err)
	}
	return fmt.Errorf("play %q: %w", url, err)
}

func (s *Switchboard) publishLocked(fn func(State) State) {
	s.state.Update(fn)
}
