// Package ratelimit tracks the last verification attempt per subject so the
// gateway can enforce a minimum interval between attempts. State is owned by
// the store instance, not process-wide ambient globals; the per-subject
// check-and-set happens under the store lock so two concurrent attempts for
// the same subject cannot both pass.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store reserves a verification attempt slot for a subject. When the gap
// since the subject's previous attempt is below minInterval, allowed is
// false and retryAfter reports how long the caller must wait. A denied
// attempt does not refresh the subject's timestamp.
type Store interface {
	Reserve(ctx context.Context, subjectID string, now time.Time, minInterval time.Duration) (retryAfter time.Duration, allowed bool, err error)
}

// InMemoryStore keeps last-attempt timestamps in a mutex-guarded map.
// Suitable for a single process; use RedisStore when multiple gateway
// instances share limiter state.
type InMemoryStore struct {
	mu       sync.Mutex
	attempts map[string]time.Time
}

// NewInMemory creates an empty in-memory limiter store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{attempts: make(map[string]time.Time)}
}

// Reserve implements Store. Calls for different subjects contend only on the
// map lock for the duration of one check-and-set.
func (s *InMemoryStore) Reserve(_ context.Context, subjectID string, now time.Time, minInterval time.Duration) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.attempts[subjectID]; ok {
		gap := now.Sub(last)
		if gap < minInterval {
			return minInterval - gap, false, nil
		}
	}
	s.attempts[subjectID] = now
	return 0, true, nil
}

// Reset clears a subject's attempt state. Test helper.
func (s *InMemoryStore) Reset(subjectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, subjectID)
}
