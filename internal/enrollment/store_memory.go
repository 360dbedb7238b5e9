package enrollment

import (
	"context"
	"sync"
)

// InMemoryStore keeps enrollment records in a mutex-guarded map keyed by
// subject.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewInMemoryStore creates an empty in-memory enrollment store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]Record)}
}

func (s *InMemoryStore) Add(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.SubjectID] = append(s.records[record.SubjectID], record)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record{}, s.records[subjectID]...), nil
}
