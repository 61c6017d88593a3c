package otp

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"zirrmi/pkg/platform/sentinel"
)

type memoryEntry struct {
	code      string
	attempts  int
	expiresAt time.Time
}

type InMemoryCodeStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   clockwork.Clock
}

func NewInMemoryCodeStore(clock clockwork.Clock) *InMemoryCodeStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &InMemoryCodeStore{entries: make(map[string]memoryEntry), clock: clock}
}

func (s *InMemoryCodeStore) Save(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{code: code, expiresAt: s.clock.Now().Add(ttl)}
	return nil
}

func (s *InMemoryCodeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return e.code, nil
}

func (s *InMemoryCodeStore) Take(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return "", sentinel.ErrNotFound
	}
	delete(s.entries, key)
	return e.code, nil
}

func (s *InMemoryCodeStore) IncrAttempts(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	e.attempts++
	s.entries[key] = e
	return e.attempts, nil
}

// live returns the entry if present and unexpired, evicting it otherwise.
// Callers hold mu.
func (s *InMemoryCodeStore) live(key string) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.clock.Now().Before(e.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}
