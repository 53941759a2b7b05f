package guard

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

type entry struct {
	value   string
	expires time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped lazily.
type MemoryStore struct {
	mu      sync.Mutex
	clock   timex.Clock
	entries map[string]entry
}

func NewMemoryStore(clock timex.Clock) *MemoryStore {
	return &MemoryStore{clock: clock, entries: map[string]entry{}}
}

// live returns the unexpired entry at key. Callers hold mu.
func (s *MemoryStore) live(key string, now time.Time) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if !now.Before(e.expires) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

func (s *MemoryStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	if _, ok := s.live(key, now); ok {
		return false, nil
	}
	s.entries[key] = entry{value: "1", expires: now.Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expires: s.clock.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Take(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key, s.clock.Now())
	if !ok {
		return "", false, nil
	}
	delete(s.entries, key)
	return e.value, true, nil
}

func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	e, ok := s.live(key, now)
	if !ok {
		e = entry{value: "0", expires: now.Add(window)}
	}
	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, err
	}
	n++
	e.value = strconv.FormatInt(n, 10)
	s.entries[key] = e
	return n, nil
}

func (s *MemoryStore) Close() error { return nil }
