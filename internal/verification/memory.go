package verification

import (
	"context"
	"log"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. Entries are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Pending
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Pending)}
}

func (s *MemoryStore) Put(_ context.Context, p Pending) error {
	p.Email = NormalizeEmail(p.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[p.Email] = p
	return nil
}

func (s *MemoryStore) Reissue(_ context.Context, email, code string, expiresAt time.Time) (Pending, error) {
	key := NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.entries[key]
	if !ok {
		return Pending{}, ErrNotFound
	}
	p.Code = code
	p.ExpiresAt = expiresAt
	s.entries[key] = p
	return p, nil
}

func (s *MemoryStore) Consume(_ context.Context, email, code string, now time.Time) (Pending, error) {
	key := NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.entries[key]
	if !ok {
		return Pending{}, ErrNotFound
	}
	if !now.Before(p.ExpiresAt) {
		delete(s.entries, key)
		return Pending{}, ErrExpired
	}
	if p.Code != code {
		return Pending{}, ErrMismatch
	}
	delete(s.entries, key)
	return p, nil
}

// Sweep evicts every entry whose grace period ended before now and returns
// how many were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, p := range s.entries {
		if !now.Before(p.ExpiresAt.Add(expiredGrace)) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired entries every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				log.Printf("[verification] evicted %d expired codes", n)
			}
		}
	}
}
