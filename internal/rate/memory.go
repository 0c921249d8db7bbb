package rate

import (
	"context"
	"sync"
	"time"
)

// purgeThreshold bounds map growth from one-off keys (e.g. per-IP rules):
// once the table is larger than this, expired counters are swept on the next
// write.
const purgeThreshold = 4096

type memoryCounter struct {
	count     int
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded in-process [CounterStore].
//
// MemoryStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]memoryCounter
	now      func() time.Time
}

// NewMemoryStore creates an empty in-process counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]memoryCounter),
		now:      time.Now,
	}
}

// ConsumeAll implements [CounterStore] under a single mutex: the whole
// check-then-increment sequence is one critical section, so concurrent calls
// sharing a key serialize and cannot over-admit.
func (s *MemoryStore) ConsumeAll(ctx context.Context, rules []Rule) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	for _, r := range rules {
		c, exists := s.counters[r.Key]
		if exists && now.Before(c.expiresAt) && c.count+1 > r.Limit {
			return false, nil
		}
	}

	for _, r := range rules {
		c, exists := s.counters[r.Key]
		if !exists || !now.Before(c.expiresAt) {
			s.counters[r.Key] = memoryCounter{count: 1, expiresAt: now.Add(r.Window)}
			continue
		}
		c.count++
		s.counters[r.Key] = c
	}

	if len(s.counters) > purgeThreshold {
		s.purgeExpiredLocked(now)
	}

	return true, nil
}

// Count returns the live count for a key, treating expired windows as zero.
func (s *MemoryStore) Count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.counters[key]
	if !exists || !s.now().Before(c.expiresAt) {
		return 0
	}
	return c.count
}

func (s *MemoryStore) purgeExpiredLocked(now time.Time) {
	for key, c := range s.counters {
		if !now.Before(c.expiresAt) {
			delete(s.counters, key)
		}
	}
}
