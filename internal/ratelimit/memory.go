package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Janitor interval for expired entry sweeps
const (
	DefaultSweepInterval = 5 * time.Minute
)

type entry struct {
	count       int64
	windowStart time.Time
}

// MemoryStore is the in-process quota store. Entries are created on the
// first attempt in a window and reset once the window elapses.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry

	// now is replaceable in tests
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Incr records an attempt for key within the fixed window
func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || now.Sub(e.windowStart) >= window {
		e = &entry{windowStart: now}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// StartJanitor sweeps expired entries until ctx is cancelled
func (s *MemoryStore) StartJanitor(ctx context.Context, interval, window time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(window)
			}
		}
	}()
}

// sweep drops entries whose window has elapsed
func (s *MemoryStore) sweep(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if now.Sub(e.windowStart) >= window {
			delete(s.entries, key)
		}
	}
}
