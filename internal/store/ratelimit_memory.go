package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore keeps rate limit counters in process memory. It backs
// the limiter in standalone mode and in tests; counters reset on restart and
// are never shared across replicas.
type RateLimitMemoryStore struct {
	mu   sync.Mutex
	hits map[string][]int64
}

// NewRateLimitMemoryStore creates an empty in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{hits: make(map[string][]int64)}
}

// Record counts one hit under key and returns how many hits fall inside the
// window, mirroring the sorted-set semantics of the Redis store.
func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixNano()
	cutoff := now - window.Nanoseconds()

	kept := s.hits[key][:0]
	for _, hit := range s.hits[key] {
		if hit > cutoff {
			kept = append(kept, hit)
		}
	}

	kept = append(kept, now)
	s.hits[key] = kept

	return int64(len(kept)), nil
}
