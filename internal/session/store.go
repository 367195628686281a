package session

import (
	"fmt"
	"sync"
	"time"

	"alfredoptarigan/mock-interview/internal/models"
)

// Store maps session ids to sessions. Lock gives scoped mutual exclusion for a
// single id and never blocks: a held lock means a submission is already in flight.
type Store interface {
	Get(id string) (*Session, error)
	Put(s *Session) error
	Lock(id string) (unlock func(), err error)
	Evict(id string) bool
	EvictIdle(maxIdle time.Duration) []string
	Len() int
}

type entry struct {
	session  *Session
	inFlight sync.Mutex
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Get implements Store.
func (m *memoryStore) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	return e.session, nil
}

// Put implements Store.
func (m *memoryStore) Put(s *Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("%w: session id is required", models.ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[s.ID]; ok {
		e.session = s
		return nil
	}
	m.entries[s.ID] = &entry{session: s}
	return nil
}

// Lock implements Store.
func (m *memoryStore) Lock(id string) (func(), error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	if !e.inFlight.TryLock() {
		return nil, models.ErrSubmissionInProgress
	}

	var once sync.Once
	return func() { once.Do(e.inFlight.Unlock) }, nil
}

// Evict implements Store.
func (m *memoryStore) Evict(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return false
	}
	delete(m.entries, id)
	return true
}

// EvictIdle implements Store. Sessions with a submission in flight are skipped.
func (m *memoryStore) EvictIdle(maxIdle time.Duration) []string {
	if maxIdle <= 0 {
		return nil
	}

	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	var evicted []string
	for id, e := range m.entries {
		if !e.session.LastActivity().Before(cutoff) {
			continue
		}
		if !e.inFlight.TryLock() {
			continue
		}
		delete(m.entries, id)
		e.inFlight.Unlock()
		evicted = append(evicted, id)
	}
	return evicted
}

// Len implements Store.
func (m *memoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
