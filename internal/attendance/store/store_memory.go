package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"facegate/internal/attendance/models"
	"facegate/pkg/platform/sentinel"
)

// InMemoryStore keeps attendance records in a mutex-guarded map keyed by
// models.Key. Suitable for tests and single-node deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.AttendanceRecord
}

// NewInMemory creates an empty in-memory attendance store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]models.AttendanceRecord),
	}
}

func (s *InMemoryStore) Get(_ context.Context, subjectID string, day models.Day) (models.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[models.Key(subjectID, day)]
	if !ok {
		return models.AttendanceRecord{}, sentinel.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (s *InMemoryStore) Range(_ context.Context, subjectID string, from, to models.Day) ([]models.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AttendanceRecord
	for _, rec := range s.records {
		if rec.SubjectID != subjectID || rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context, from, to models.Day) ([]models.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AttendanceRecord
	for _, rec := range s.records {
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].SubjectID < out[j].SubjectID
	})
	return out, nil
}

func (s *InMemoryStore) PutCheckIn(_ context.Context, subjectID string, day models.Day, event models.CheckEvent) (models.AttendanceRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.Key(subjectID, day)
	rec, ok := s.records[key]
	if ok && rec.CheckIn != nil {
		return copyRecord(rec), false, nil
	}
	if !ok {
		rec = models.AttendanceRecord{SubjectID: subjectID, Date: day}
	}
	rec.CheckIn = &event
	rec.UpdatedAt = event.At
	s.records[key] = rec
	return copyRecord(rec), true, nil
}

func (s *InMemoryStore) PutCheckOut(_ context.Context, subjectID string, day models.Day, event models.CheckEvent) (models.AttendanceRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.Key(subjectID, day)
	rec, ok := s.records[key]
	if !ok || rec.CheckIn == nil {
		return models.AttendanceRecord{}, false, sentinel.ErrInvalidState
	}
	if rec.CheckOut != nil {
		return copyRecord(rec), false, nil
	}
	rec.CheckOut = &event
	rec.DurationMinutes = int(event.At.Sub(rec.CheckIn.At) / time.Minute)
	rec.UpdatedAt = event.At
	s.records[key] = rec
	return copyRecord(rec), true, nil
}

// copyRecord deep-copies the check slots so callers cannot mutate stored
// events through the returned pointers.
func copyRecord(rec models.AttendanceRecord) models.AttendanceRecord {
	if rec.CheckIn != nil {
		in := *rec.CheckIn
		rec.CheckIn = &in
	}
	if rec.CheckOut != nil {
		out := *rec.CheckOut
		rec.CheckOut = &out
	}
	return rec
}
