// Package session hosts the navigation engine for remote clients. Each
// session is one mounted view with its own controller and audio switchboard
// over a timeline shared by all sessions.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parallel-timeline/internal/audio"
	"parallel-timeline/internal/navigation"
	"parallel-timeline/internal/platform/logger"
	"parallel-timeline/internal/platform/metrics"
	"parallel-timeline/internal/timeline"

	"github.com/google/uuid"
)

// Config holds per-session engine settings.
type Config struct {
	// Title is the application title, used for the drawer header and the
	// playlist name.
	Title      string
	Navigation navigation.Config
	// Volume is the starting volume of every session, clamped to [0,1].
	// Zero starts sessions silent.
	Volume float64
}

// DefaultConfig returns a Config with default navigation tuning and volume.
func DefaultConfig(title string) Config {
	return Config{
		Title:      title,
		Navigation: navigation.DefaultConfig(),
		Volume:     audio.DefaultVolume,
	}
}

// Service opens sessions over one shared Timeline and applies inputs to them.
type Service struct {
	tl      *timeline.Timeline
	repo    Repository
	cfg     Config
	log     *slog.Logger
	metrics *metrics.Metrics
	clock   navigation.Clock
	now     func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger. Session loggers derive from it.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics records session, transition and audio counters in m.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the clock driving each controller's settle debounce.
func WithClock(c navigation.Clock) ServiceOption {
	return func(s *Service) { s.clock = c }
}

// WithNow sets the time source used for idle tracking.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service over tl storing sessions in repo.
func NewService(tl *timeline.Timeline, repo Repository, cfg Config, opts ...ServiceOption) *Service {
	s := &Service{
		tl:    tl,
		repo:  repo,
		cfg:   cfg,
		log:   logger.Discard(),
		clock: navigation.SystemClock(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Timeline returns the shared rendering data.
func (s *Service) Timeline() TimelineView {
	return TimelineView{
		Title:         s.cfg.Title,
		Pages:         s.tl.Pages,
		DrawerCards:   s.tl.DrawerCards,
		AppTrackCount: len(s.tl.AppTracks),
	}
}

// Open mounts a new view: it wires a controller to a switchboard over a
// remote sink, seeds page 0 and its audio, and stores the session.
func (s *Service) Open(opts Options) (View, error) {
	id := ID(uuid.NewString())
	log := s.log.With(slog.String("session_id", string(id)))

	sink := audio.NewRemoteSink()
	audioOpts := []audio.Option{
		audio.WithLogger(log),
		audio.WithVolume(s.cfg.Volume),
	}
	navOpts := []navigation.Option{
		navigation.WithLogger(log),
		navigation.WithClock(s.clock),
	}
	if s.metrics != nil {
		m := s.metrics
		audioOpts = append(audioOpts,
			audio.WithSwitchHook(func(src audio.Source) { m.IncAudioSwitches(string(src)) }),
			audio.WithPlayFailureHook(func(error) { m.IncAudioPlayFailures() }))
		navOpts = append(navOpts, navigation.WithTransitionHook(func(_, _ int, cause navigation.Cause) {
			m.IncPageTransitions(string(cause))
		}))
	}

	sb := audio.NewSwitchboard(sink, audioOpts...)
	sb.InitializeAppTracks(s.tl.AppTracks)

	navCfg := s.cfg.Navigation
	navCfg.TouchPrimary = opts.TouchPrimary
	navCfg.PageWidth = opts.ViewportWidth
	scroll := &ScrollRecorder{}
	nav := navigation.NewController(s.tl, sb, scroll, navCfg, navOpts...)

	gestures := &Dispatcher{}
	nav.Attach(gestures)
	nav.Start()

	now := s.now()
	sess := &Session{
		ID:        id,
		CreatedAt: now,
		lastSeen:  now,
		nav:       nav,
		audio:     sb,
		controls:  audio.NewControls(sb),
		sink:      sink,
		gestures:  gestures,
		scroll:    scroll,
	}
	if err := s.repo.Add(sess); err != nil {
		nav.Close()
		sb.Destroy()
		return View{}, err
	}

	log.Info("session opened",
		slog.Bool("touch_primary", opts.TouchPrimary),
		slog.Float64("viewport_width", opts.ViewportWidth))
	if s.metrics != nil {
		s.metrics.IncSessionsOpened()
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.viewLocked(), nil
}

// Get returns the current view of a session.
func (s *Service) Get(id ID) (View, error) {
	return s.with(id, func(*Session) {})
}

// Close tears a session down and forgets it.
func (s *Service) Close(id ID) error {
	sess, ok := s.repo.Remove(id)
	if !ok {
		return ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.closeLocked()
	sess.mu.Unlock()

	s.log.Info("session closed", slog.String("session_id", string(id)))
	if s.metrics != nil {
		s.metrics.IncSessionsClosed()
	}
	return nil
}

// Reap closes every session without input for longer than idle and returns
// how many it closed.
func (s *Service) Reap(idle time.Duration) int {
	expired := s.repo.RemoveIdle(s.now().Add(-idle))
	for _, sess := range expired {
		sess.mu.Lock()
		sess.closeLocked()
		sess.mu.Unlock()
		s.log.Info("session reaped", slog.String("session_id", string(sess.ID)))
	}
	if s.metrics != nil && len(expired) > 0 {
		s.metrics.AddSessionsReaped(len(expired))
	}
	return len(expired)
}

// CloseAll tears down every open session. Used at shutdown.
func (s *Service) CloseAll() {
	for _, sess := range s.repo.RemoveAll() {
		sess.mu.Lock()
		sess.closeLocked()
		sess.mu.Unlock()
	}
}

// ActiveCount returns the number of open sessions.
func (s *Service) ActiveCount() int {
	return s.repo.Count()
}

// Arrow applies an arrow click.
func (s *Service) Arrow(id ID, dir navigation.Direction) (View, error) {
	return s.with(id, func(sess *Session) {
		sess.gestures.Click(navigation.Click{Kind: navigation.ClickArrow, Direction: dir})
	})
}

// DrawerCard applies a drawer card click.
func (s *Service) DrawerCard(id ID, eraID int) (View, error) {
	return s.with(id, func(sess *Session) {
		sess.gestures.Click(navigation.Click{Kind: navigation.ClickDrawerCard, EraID: eraID})
	})
}

// EraTitle applies a click on the era title, toggling the drawer.
func (s *Service) EraTitle(id ID) (View, error) {
	return s.with(id, func(sess *Session) {
		sess.gestures.Click(navigation.Click{Kind: navigation.ClickEraTitle})
	})
}

// Wheel applies a wheel tick. preventDefault reports whether the page took
// the tick, in which case the client must not scroll natively.
func (s *Service) Wheel(id ID, ev navigation.WheelEvent) (v View, preventDefault bool, err error) {
	v, err = s.with(id, func(sess *Session) {
		preventDefault = sess.gestures.Wheel(ev)
	})
	return v, preventDefault, err
}

// Touch applies a completed touch sequence.
func (s *Service) Touch(id ID, seq navigation.TouchSequence) (View, error) {
	return s.with(id, func(sess *Session) { sess.gestures.Touch(seq) })
}

// TouchMove asks whether a touchmove should be kept from scrolling natively.
func (s *Service) TouchMove(id ID, m navigation.TouchMove) (v View, preventDefault bool, err error) {
	v, err = s.with(id, func(sess *Session) {
		preventDefault = sess.gestures.TouchMove(m)
	})
	return v, preventDefault, err
}

// Scroll applies a native scroll offset sample.
func (s *Service) Scroll(id ID, offset float64) (View, error) {
	return s.with(id, func(sess *Session) { sess.gestures.Scroll(offset) })
}

// ScrollSettled applies the native scroll-settled signal.
func (s *Service) ScrollSettled(id ID) (View, error) {
	return s.with(id, func(sess *Session) { sess.gestures.Settled() })
}

// Viewport updates the page width of a session.
func (s *Service) Viewport(id ID, width float64) (View, error) {
	return s.with(id, func(sess *Session) { sess.nav.SetViewport(width) })
}

// TogglePlayPause flips playback. A failed play is not an error here: the
// switchboard logs it and the view reports isPlaying false.
func (s *Service) TogglePlayPause(ctx context.Context, id ID) (View, error) {
	return s.with(id, func(sess *Session) {
		_ = sess.controls.TogglePlayPause(ctx)
	})
}

// ToggleMute mutes or restores the last volume.
func (s *Service) ToggleMute(id ID) (View, error) {
	return s.with(id, func(sess *Session) { sess.controls.ToggleMute() })
}

// SetVolume changes the volume of a session.
func (s *Service) SetVolume(id ID, v float64) (View, error) {
	return s.with(id, func(sess *Session) { sess.controls.ChangeVolume(v) })
}

// TrackEnded advances to the next track after the client's element finished.
func (s *Service) TrackEnded(ctx context.Context, id ID) (View, error) {
	return s.with(id, func(sess *Session) {
		_ = sess.audio.PlayNext(ctx)
	})
}

// TrackError records a playback failure reported by the client.
func (s *Service) TrackError(id ID, message string) (View, error) {
	if message == "" {
		message = "unknown playback error"
	}
	return s.with(id, func(sess *Session) {
		sess.audio.ReportError(errors.New(message))
	})
}

// Playlist renders the active track set as an M3U playlist starting at the
// current track.
func (s *Service) Playlist(id ID) (string, error) {
	var out string
	_, err := s.with(id, func(sess *Session) {
		tracks, idx := sess.audio.ActiveTracks()
		out = audio.BuildPlaylist(tracks, idx, s.cfg.Title)
	})
	return out, err
}

// with runs fn on a live session under its lock, marks the session as seen
// and returns its resulting view.
func (s *Service) with(id ID, fn func(*Session)) (View, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return View{}, ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	fn(sess)
	return sess.viewLocked(), nil
}
