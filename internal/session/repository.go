package session

import (
	"errors"
	"sync"
	"time"
)

// Repository defines the concurrency-safe contract for tracking open
// sessions.
type Repository interface {
	// Add records a new session. Adding an id that is already present
	// returns ErrSessionExists.
	Add(s *Session) error

	// Get returns the session with the given id.
	Get(id ID) (*Session, bool)

	// Remove drops the session and returns it. The ok return is false if it
	// was not present, which makes removal idempotent.
	Remove(id ID) (s *Session, ok bool)

	// RemoveIdle drops and returns every session last seen before cutoff.
	RemoveIdle(cutoff time.Time) []*Session

	// RemoveAll drops and returns every session.
	RemoveAll() []*Session

	// Count returns the number of open sessions. Used for metrics.
	Count() int
}

var (
	// ErrSessionNotFound is returned for operations on an unknown or closed
	// session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when adding a session whose id is taken.
	ErrSessionExists = errors.New("session already exists")
)

// InMemoryRepository is a concurrency-safe in-memory implementation of Repository.
// It uses a Store for persistence; by default that is an InMemoryStore.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store Store
}

// NewInMemoryRepository constructs a new repository with a default in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryRepositoryWithStore constructs a repository that uses the given Store.
func NewInMemoryRepositoryWithStore(store Store) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

// Add implements Repository.Add.
func (r *InMemoryRepository) Add(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store.GetSession(s.ID); exists {
		return ErrSessionExists
	}
	r.store.SetSession(s)
	return nil
}

// Get implements Repository.Get.
func (r *InMemoryRepository) Get(id ID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.GetSession(id)
}

// Remove implements Repository.Remove.
func (r *InMemoryRepository) Remove(id ID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.store.GetSession(id)
	if !ok {
		return nil, false
	}
	r.store.DeleteSession(id)
	return s, true
}

// RemoveIdle implements Repository.RemoveIdle.
func (r *InMemoryRepository) RemoveIdle(cutoff time.Time) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var idle []*Session
	for _, id := range r.store.ListSessionIDs() {
		s, ok := r.store.GetSession(id)
		if !ok || !s.LastSeen().Before(cutoff) {
			continue
		}
		r.store.DeleteSession(id)
		idle = append(idle, s)
	}
	return idle
}

// RemoveAll implements Repository.RemoveAll.
func (r *InMemoryRepository) RemoveAll() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*Session
	for _, id := range r.store.ListSessionIDs() {
		if s, ok := r.store.GetSession(id); ok {
			all = append(all, s)
		}
		r.store.DeleteSession(id)
	}
	return all
}

// Count implements Repository.Count.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store.ListSessionIDs())
}
