// Package navigation keeps the current page index, the scroll position of the
// paged view and the background audio in step across all input channels.
package navigation

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"parallel-timeline/internal/audio"
	"parallel-timeline/internal/observable"
	"parallel-timeline/internal/platform/logger"
	"parallel-timeline/internal/timeline"
)

// Config tunes gesture interpretation. Zero fields take the defaults.
type Config struct {
	// OverscrollBuffer is how many consecutive wheel ticks against the end of
	// a fully scrolled vertical region it takes to flip the page.
	// Default: 15
	OverscrollBuffer int

	// SwipeThreshold is the horizontal travel in pixels a touch needs to count
	// as a swipe.
	// Default: 40
	SwipeThreshold float64

	// SettleDebounce is how long scroll samples must be quiet before a
	// programmatic scroll counts as finished.
	// Default: 100ms
	SettleDebounce time.Duration

	// MinScrollDeltaRatio is the fraction of a page width the scroll offset
	// must move before an observation is considered.
	// Default: 0.25
	MinScrollDeltaRatio float64

	// TouchPrimary selects swipe handling instead of wheel handling.
	TouchPrimary bool

	// PageWidth is the initial viewport width in pixels.
	PageWidth float64
}

// DefaultConfig returns the standard gesture tuning.
func DefaultConfig() Config {
	return Config{
		OverscrollBuffer:    15,
		SwipeThreshold:      40,
		SettleDebounce:      100 * time.Millisecond,
		MinScrollDeltaRatio: 0.25,
	}
}

// maxJump is how many pages one scroll observation may move the index.
const maxJump = 1

// Cause names the input that produced a transition.
type Cause string

const (
	CauseStart  Cause = "start"
	CauseArrow  Cause = "arrow"
	CauseDrawer Cause = "drawer"
	CauseWheel  Cause = "wheel"
	CauseTouch  Cause = "touch"
	CauseScroll Cause = "scroll"
)

// Scroller realizes scroll commands on the paged view.
// Implementations must not call back into the Controller synchronously.
type Scroller interface {
	// ScrollToIndex starts an animated scroll to the page at index.
	ScrollToIndex(index int)
	// CancelScroll stops any animation still in flight.
	CancelScroll()
}

// AudioRouter receives the track set of every page the controller lands on.
// *audio.Switchboard implements it.
type AudioRouter interface {
	HandleEraChange(ctx context.Context, tracks audio.TrackSet)
}

// EraView is the era metadata of the current page.
type EraView struct {
	ID                          int                 `json:"id"`
	Kind                        timeline.PageKind   `json:"type"`
	Title                       timeline.Title      `json:"title"`
	MainEventsBackground        timeline.Background `json:"mainEventsBackground"`
	ComparativeEventsBackground timeline.Background `json:"comparativeEventsBackground"`
}

// Snapshot is the read-only navigation state published to the renderer.
type Snapshot struct {
	CurrentIndex       int     `json:"currentIndex"`
	PreviousIndex      int     `json:"previousIndex"`
	PageCount          int     `json:"pageCount"`
	CurrentEra         EraView `json:"currentEra"`
	ProgrammaticScroll bool    `json:"isProgrammaticScroll"`
	DrawerOpen         bool    `json:"drawerOpen"`
	CanGoLeft          bool    `json:"canGoLeft"`
	CanGoRight         bool    `json:"canGoRight"`
}

// Controller owns the navigation state of one mounted view. All methods are
// safe to call from any goroutine; they are serialized so no two transitions
// run at once, including the settle timer.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	tl       *timeline.Timeline
	audio    AudioRouter
	scroller Scroller
	clock    Clock
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	current      int
	previous     int
	programmatic bool
	lastOffset   float64
	pageWidth    float64
	touchStartX  float64
	touchEndX    float64
	overscroll   int
	drawerOpen   bool
	started      bool
	closed       bool

	settleTimer Timer
	settleGen   uint64

	snap         *observable.Value[Snapshot]
	onTransition func(from, to int, cause Cause)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger sets the logger used for transition tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTransitionHook registers fn to run after every accepted transition.
func WithTransitionHook(fn func(from, to int, cause Cause)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

// NewController returns a Controller positioned at page 0. Call Start to
// apply the first page's audio.
func NewController(tl *timeline.Timeline, router AudioRouter, scroller Scroller, cfg Config, opts ...Option) *Controller {
	def := DefaultConfig()
	if cfg.OverscrollBuffer <= 0 {
		cfg.OverscrollBuffer = def.OverscrollBuffer
	}
	if cfg.SwipeThreshold <= 0 {
		cfg.SwipeThreshold = def.SwipeThreshold
	}
	if cfg.SettleDebounce <= 0 {
		cfg.SettleDebounce = def.SettleDebounce
	}
	if cfg.MinScrollDeltaRatio <= 0 {
		cfg.MinScrollDeltaRatio = def.MinScrollDeltaRatio
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:       cfg,
		tl:        tl,
		audio:     router,
		scroller:  scroller,
		clock:     SystemClock(),
		log:       logger.Discard(),
		ctx:       ctx,
		cancel:    cancel,
		previous:  -1,
		pageWidth: cfg.PageWidth,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snap = observable.New(c.snapshotLocked())
	return c
}

// Attach registers the controller's handlers on src. Touch-primary
// controllers take swipes and ignore the wheel; the others take the wheel.
func (c *Controller) Attach(src GestureSource) {
	src.OnScroll(c.ScrollObserved)
	src.OnClick(c.HandleClick)
	if c.cfg.TouchPrimary {
		src.OnTouchSequence(func(t TouchSequence) { c.TouchGesture(t.StartX, t.EndX) })
		src.OnTouchMove(func(m TouchMove) bool { return c.InterceptTouchMove(m.InVerticalRegion) })
	} else {
		src.OnWheel(c.Wheel)
	}
	if s, ok := src.(SettleSource); ok {
		s.OnScrollSettled(c.ScrollSettled)
	}
}

// Start seeds the first page: its era audio is applied and the snapshot
// published. No scroll command is issued. Later calls do nothing.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.started {
		return
	}
	c.started = true
	if c.tl.PageCount() == 0 {
		c.publishLocked()
		return
	}
	c.audio.HandleEraChange(c.ctx, c.tl.TracksForPage(c.current))
	c.publishLocked()
	if c.onTransition != nil {
		c.onTransition(-1, c.current, CauseStart)
	}
}

// ArrowClick moves one page in dir, clamped to the page range.
func (c *Controller) ArrowClick(dir Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.goToLocked(c.current+dir.step(), CauseArrow)
}

// DrawerCardClick jumps to the first page of an era and closes the drawer.
// Unknown eras are ignored.
func (c *Controller) DrawerCardClick(eraID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	idx, ok := c.tl.FirstPageIndex(eraID)
	if !ok {
		c.log.Debug("drawer click for unknown era", slog.Int("era_id", eraID))
		return
	}
	c.drawerOpen = false
	c.goToLocked(idx, CauseDrawer)
}

// EraTitleClick toggles the drawer.
func (c *Controller) EraTitleClick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.drawerOpen = !c.drawerOpen
	c.publishLocked()
}

// HandleClick dispatches a click to the matching operation.
func (c *Controller) HandleClick(click Click) {
	switch click.Kind {
	case ClickArrow:
		c.ArrowClick(click.Direction)
	case ClickDrawerCard:
		c.DrawerCardClick(click.EraID)
	case ClickEraTitle:
		c.EraTitleClick()
	}
}

// Wheel interprets a wheel tick and reports whether the page consumed it,
// in which case the source should prevent the native default.
//
// Ticks inside a vertical region that can still scroll belong to the region.
// At the region's end, OverscrollBuffer consecutive ticks are needed before
// the page flips.
func (c *Controller) Wheel(ev WheelEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.programmatic || ev.DeltaY == 0 {
		return false
	}

	if ev.Region != nil && ev.Region.Scrollable() {
		if !ev.Region.FullyScrolled(ev.DeltaY) {
			c.overscroll = 0
			return false
		}
		c.overscroll++
		if c.overscroll < c.cfg.OverscrollBuffer {
			return false
		}
		c.overscroll = 0
	}

	step := 1
	if ev.DeltaY < 0 {
		step = -1
	}
	c.goToLocked(c.current+step, CauseWheel)
	return c.tl.PageCount() > 0
}

// TouchStart records where a touch began.
func (c *Controller) TouchStart(x float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchStartX = x
}

// TouchEnd records where a touch ended and interprets the swipe.
func (c *Controller) TouchEnd(x float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.touchEndX = x
	c.swipeLocked()
}

// TouchGesture interprets a whole touch: travel left beyond the threshold
// moves right, travel right moves left, anything shorter is ignored.
func (c *Controller) TouchGesture(startX, endX float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.touchStartX = startX
	c.touchEndX = endX
	c.swipeLocked()
}

// InterceptTouchMove reports whether a touchmove should be kept from
// scrolling natively. Moves inside a vertical region pass through, as do
// all moves once the controller is closed.
func (c *Controller) InterceptTouchMove(inVerticalRegion bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && !inVerticalRegion
}

// ScrollObserved takes one native scroll offset sample. Samples during a
// programmatic scroll only extend the settle debounce. Otherwise motion
// under MinScrollDeltaRatio of a page is ignored, and the index follows the
// nearest page but moves at most one page per sample.
func (c *Controller) ScrollObserved(offset float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.tl.PageCount() == 0 {
		return
	}
	if c.programmatic {
		c.rescheduleSettleLocked()
		return
	}
	if c.pageWidth <= 0 {
		return
	}
	if math.Abs(offset-c.lastOffset) < c.pageWidth*c.cfg.MinScrollDeltaRatio {
		return
	}

	candidate := int(math.Round(offset / c.pageWidth))
	if candidate-c.current > maxJump {
		candidate = c.current + maxJump
	} else if c.current-candidate > maxJump {
		candidate = c.current - maxJump
	}
	candidate = c.clampLocked(candidate)

	if candidate != c.current {
		c.goToLocked(candidate, CauseScroll)
		return
	}
	c.lastOffset = offset
}

// ScrollSettled ends a programmatic scroll immediately, for platforms that
// signal when scrolling comes to rest.
func (c *Controller) ScrollSettled() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.programmatic {
		return
	}
	c.stopSettleLocked()
	c.programmatic = false
	c.publishLocked()
}

// SetViewport sets the page width used to map scroll offsets to pages.
func (c *Controller) SetViewport(width float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || width <= 0 {
		return
	}
	c.pageWidth = width
	c.lastOffset = float64(c.current) * width
}

// Snapshot returns the current navigation state.
func (c *Controller) Snapshot() Snapshot {
	return c.snap.Get()
}

// Subscribe registers fn for snapshot changes. fn receives the current
// snapshot immediately and must not call back into the Controller.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	return c.snap.Subscribe(fn)
}

// Close tears the controller down: the pending scroll animation and settle
// timer are cancelled and every later call is ignored. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopSettleLocked()
	c.scroller.CancelScroll()
	c.cancel()
	c.snap.Close()
}

func (c *Controller) swipeLocked() {
	delta := c.touchEndX - c.touchStartX
	switch {
	case delta > c.cfg.SwipeThreshold:
		c.goToLocked(c.current+Left.step(), CauseTouch)
	case delta < -c.cfg.SwipeThreshold:
		c.goToLocked(c.current+Right.step(), CauseTouch)
	}
}

// goToLocked runs an accepted transition: resolve the page, hand its era
// audio to the router, move the index, then scroll to it.
func (c *Controller) goToLocked(target int, cause Cause) {
	if c.tl.PageCount() == 0 {
		return
	}
	target = c.clampLocked(target)
	if _, ok := c.tl.Page(target); !ok {
		return
	}

	c.audio.HandleEraChange(c.ctx, c.tl.TracksForPage(target))

	from := c.current
	c.previous = c.current
	c.current = target
	c.log.Debug("page transition",
		slog.Int("from", from),
		slog.Int("to", target),
		slog.String("cause", string(cause)))

	c.programmatic = true
	c.lastOffset = float64(target) * c.pageWidth
	c.scroller.ScrollToIndex(target)
	c.rescheduleSettleLocked()

	c.publishLocked()
	if c.onTransition != nil {
		c.onTransition(from, target, cause)
	}
}

// rescheduleSettleLocked cancels the pending settle and schedules a new one,
// so the flag clears only after SettleDebounce without scroll samples.
func (c *Controller) rescheduleSettleLocked() {
	c.stopSettleLocked()
	gen := c.settleGen
	c.settleTimer = c.clock.AfterFunc(c.cfg.SettleDebounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || gen != c.settleGen {
			return
		}
		c.settleTimer = nil
		c.programmatic = false
		c.publishLocked()
	})
}

func (c *Controller) stopSettleLocked() {
	c.settleGen++
	if c.settleTimer != nil {
		c.settleTimer.Stop()
		c.settleTimer = nil
	}
}

func (c *Controller) clampLocked(i int) int {
	n := c.tl.PageCount()
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (c *Controller) snapshotLocked() Snapshot {
	n := c.tl.PageCount()
	s := Snapshot{
		CurrentIndex:       c.current,
		PreviousIndex:      c.previous,
		PageCount:          n,
		ProgrammaticScroll: c.programmatic,
		DrawerOpen:         c.drawerOpen,
		CanGoLeft:          n > 0 && c.current > 0,
		CanGoRight:         c.current < n-1,
	}
	if p, ok := c.tl.Page(c.current); ok {
		s.CurrentEra = EraView{
			ID:                          p.EraID,
			Kind:                        p.Kind,
			Title:                       p.EraTitle,
			MainEventsBackground:        p.MainEventsBackground,
			ComparativeEventsBackground: p.ComparativeEventsBackground,
		}
	}
	return s
}

func (c *Controller) publishLocked() {
	c.snap.Set(c.snapshotLocked())
}
