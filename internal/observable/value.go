// Package observable provides a latest-value subject: every change is pushed
// to subscribers, and a late subscriber receives the current value immediately.
package observable

import "sync"

// Handler receives a value each time it changes.
type Handler[T any] func(v T)

// Value holds the latest value of T and fans changes out to subscribers.
// Deliveries are serialized, so every subscriber sees changes in the order
// they were stored even with concurrent writers. A handler must not Set,
// Update or Subscribe on the Value that is calling it.
// The zero Value is not usable; construct one with New.
type Value[T any] struct {
	// deliver is held from storing a value until its handlers return.
	deliver  sync.Mutex
	mu       sync.Mutex
	current  T
	nextID   int
	handlers map[int]Handler[T]
	closed   bool
}

// New returns a Value seeded with initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current:  initial,
		handlers: make(map[int]Handler[T]),
	}
}

// Get returns the latest value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set stores next and pushes it to every subscriber, in no particular order
// among subscribers. Set on a closed Value is dropped.
func (v *Value[T]) Set(next T) {
	v.deliver.Lock()
	defer v.deliver.Unlock()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.current = next
	handlers := v.snapshotLocked()
	v.mu.Unlock()

	for _, h := range handlers {
		h(next)
	}
}

// Update applies fn to the latest value and stores the result, as one step.
func (v *Value[T]) Update(fn func(T) T) {
	v.deliver.Lock()
	defer v.deliver.Unlock()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	next := fn(v.current)
	v.current = next
	handlers := v.snapshotLocked()
	v.mu.Unlock()

	for _, h := range handlers {
		h(next)
	}
}

// Subscribe registers h and calls it once with the latest value. The returned
// function removes the subscription and may be called more than once.
// Subscribing to a closed Value delivers the final value and nothing after it.
func (v *Value[T]) Subscribe(h Handler[T]) (cancel func()) {
	v.deliver.Lock()
	defer v.deliver.Unlock()

	v.mu.Lock()
	current := v.current
	if v.closed {
		v.mu.Unlock()
		h(current)
		return func() {}
	}
	id := v.nextID
	v.nextID++
	v.handlers[id] = h
	v.mu.Unlock()

	h(current)

	return func() {
		v.mu.Lock()
		delete(v.handlers, id)
		v.mu.Unlock()
	}
}

// SubscriberCount returns the number of active subscriptions.
func (v *Value[T]) SubscriberCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.handlers)
}

// Close completes the stream: subscribers are released and later Sets are
// dropped. Close is idempotent.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.handlers = make(map[int]Handler[T])
}

// Closed reports whether Close has been called.
func (v *Value[T]) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *Value[T]) snapshotLocked() []Handler[T] {
	out := make([]Handler[T], 0, len(v.handlers))
	for _, h := range v.handlers {
		out = append(out, h)
	}
	return out
}
