package session

import (
	"sync"

	"parallel-timeline/internal/navigation"
)

// Dispatcher is the input surface of a remote session. HTTP inputs are fed
// into it and it forwards each one to the handler registered for its
// channel. Inputs on a channel nobody registered for are dropped.
type Dispatcher struct {
	mu      sync.RWMutex
	scroll  func(float64)
	wheel   func(navigation.WheelEvent) bool
	touch   func(navigation.TouchSequence)
	move    func(navigation.TouchMove) bool
	click   func(navigation.Click)
	settled func()
}

// OnScroll implements navigation.GestureSource.
func (d *Dispatcher) OnScroll(fn func(offset float64)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scroll = fn
}

// OnWheel implements navigation.GestureSource.
func (d *Dispatcher) OnWheel(fn func(navigation.WheelEvent) bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wheel = fn
}

// OnTouchSequence implements navigation.GestureSource.
func (d *Dispatcher) OnTouchSequence(fn func(navigation.TouchSequence)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touch = fn
}

// OnTouchMove implements navigation.GestureSource.
func (d *Dispatcher) OnTouchMove(fn func(navigation.TouchMove) bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.move = fn
}

// OnClick implements navigation.GestureSource.
func (d *Dispatcher) OnClick(fn func(navigation.Click)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.click = fn
}

// OnScrollSettled implements navigation.SettleSource.
func (d *Dispatcher) OnScrollSettled(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settled = fn
}

// Scroll forwards a native scroll offset sample.
func (d *Dispatcher) Scroll(offset float64) {
	d.mu.RLock()
	fn := d.scroll
	d.mu.RUnlock()
	if fn != nil {
		fn(offset)
	}
}

// Wheel forwards a wheel tick and reports whether the client should prevent
// the native default.
func (d *Dispatcher) Wheel(ev navigation.WheelEvent) bool {
	d.mu.RLock()
	fn := d.wheel
	d.mu.RUnlock()
	if fn == nil {
		return false
	}
	return fn(ev)
}

// Touch forwards a completed touch sequence.
func (d *Dispatcher) Touch(seq navigation.TouchSequence) {
	d.mu.RLock()
	fn := d.touch
	d.mu.RUnlock()
	if fn != nil {
		fn(seq)
	}
}

// TouchMove forwards one touchmove and reports whether the client should
// prevent native scrolling.
func (d *Dispatcher) TouchMove(m navigation.TouchMove) bool {
	d.mu.RLock()
	fn := d.move
	d.mu.RUnlock()
	if fn == nil {
		return false
	}
	return fn(m)
}

// Click forwards a tap.
func (d *Dispatcher) Click(c navigation.Click) {
	d.mu.RLock()
	fn := d.click
	d.mu.RUnlock()
	if fn != nil {
		fn(c)
	}
}

// Settled forwards the native scroll-settled signal.
func (d *Dispatcher) Settled() {
	d.mu.RLock()
	fn := d.settled
	d.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
