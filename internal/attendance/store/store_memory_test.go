package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"facegate/internal/attendance/models"
	"facegate/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func event(at time.Time, status models.Status) models.CheckEvent {
	return models.CheckEvent{
		At:         at,
		Status:     status,
		Matched:    true,
		Confidence: 0.99,
		Method:     "face-recognition",
	}
}

func (s *InMemoryStoreSuite) TestGet() {
	ctx := context.Background()
	day := models.Day("2026-03-02")
	at := day.Time().Add(9 * time.Hour)

	s.Run("missing record", func() {
		_, err := s.store.Get(ctx, "emp-7", day)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned record is a copy", func() {
		_, written, err := s.store.PutCheckIn(ctx, "emp-7", day, event(at, models.StatusOnTime))
		s.Require().NoError(err)
		s.True(written)

		got, err := s.store.Get(ctx, "emp-7", day)
		s.Require().NoError(err)
		got.CheckIn.Status = models.StatusLate

		again, err := s.store.Get(ctx, "emp-7", day)
		s.Require().NoError(err)
		s.Equal(models.StatusOnTime, again.CheckIn.Status)
	})
}

func (s *InMemoryStoreSuite) TestPutCheckIn() {
	ctx := context.Background()
	day := models.Day("2026-03-02")
	at := day.Time().Add(9 * time.Hour)

	s.Run("first write creates the record", func() {
		rec, written, err := s.store.PutCheckIn(ctx, "emp-7", day, event(at, models.StatusOnTime))
		s.Require().NoError(err)
		s.True(written)
		s.Equal("emp-7", rec.SubjectID)
		s.Equal(day, rec.Date)
		s.Require().NotNil(rec.CheckIn)
		s.True(rec.CheckIn.At.Equal(at))
		s.Nil(rec.CheckOut)
	})

	s.Run("second write is a no-op returning the stored event", func() {
		rec, written, err := s.store.PutCheckIn(ctx, "emp-7", day, event(at.Add(time.Hour), models.StatusLate))
		s.Require().NoError(err)
		s.False(written)
		s.True(rec.CheckIn.At.Equal(at))
		s.Equal(models.StatusOnTime, rec.CheckIn.Status)
	})

	s.Run("concurrent writes elect one winner", func() {
		const attempts = 16
		winners := make(chan bool, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, written, err := s.store.PutCheckIn(ctx, "emp-8", day, event(at, models.StatusOnTime))
				s.NoError(err)
				winners <- written
			}()
		}
		wg.Wait()
		close(winners)

		won := 0
		for w := range winners {
			if w {
				won++
			}
		}
		s.Equal(1, won)
	})
}

func (s *InMemoryStoreSuite) TestPutCheckOut() {
	ctx := context.Background()
	day := models.Day("2026-03-02")
	in := day.Time().Add(9 * time.Hour)
	out := in.Add(8*time.Hour + 30*time.Minute)

	s.Run("check-out before check-in is invalid", func() {
		_, _, err := s.store.PutCheckOut(ctx, "emp-7", day, event(out, models.StatusOnTime))
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("check-out completes the record with duration", func() {
		_, _, err := s.store.PutCheckIn(ctx, "emp-7", day, event(in, models.StatusOnTime))
		s.Require().NoError(err)

		rec, written, err := s.store.PutCheckOut(ctx, "emp-7", day, event(out, models.StatusOnTime))
		s.Require().NoError(err)
		s.True(written)
		s.Require().NotNil(rec.CheckOut)
		s.Equal(510, rec.DurationMinutes)
	})

	s.Run("second check-out is a no-op", func() {
		rec, written, err := s.store.PutCheckOut(ctx, "emp-7", day, event(out.Add(time.Hour), models.StatusOnTime))
		s.Require().NoError(err)
		s.False(written)
		s.True(rec.CheckOut.At.Equal(out))
		s.Equal(510, rec.DurationMinutes)
	})
}

func (s *InMemoryStoreSuite) TestRangeAndList() {
	ctx := context.Background()

	seed := []struct {
		subject string
		day     models.Day
	}{
		{"emp-7", "2026-03-02"},
		{"emp-7", "2026-03-03"},
		{"emp-7", "2026-03-09"},
		{"emp-8", "2026-03-03"},
	}
	for _, row := range seed {
		at := row.day.Time().Add(9 * time.Hour)
		_, _, err := s.store.PutCheckIn(ctx, row.subject, row.day, event(at, models.StatusOnTime))
		s.Require().NoError(err)
	}

	s.Run("range filters by subject and is date ordered", func() {
		recs, err := s.store.Range(ctx, "emp-7", "2026-03-02", "2026-03-06")
		s.Require().NoError(err)
		s.Require().Len(recs, 2)
		s.Equal(models.Day("2026-03-02"), recs[0].Date)
		s.Equal(models.Day("2026-03-03"), recs[1].Date)
	})

	s.Run("range bounds are inclusive", func() {
		recs, err := s.store.Range(ctx, "emp-7", "2026-03-03", "2026-03-09")
		s.Require().NoError(err)
		s.Len(recs, 2)
	})

	s.Run("list spans subjects ordered by date then subject", func() {
		recs, err := s.store.List(ctx, "2026-03-02", "2026-03-06")
		s.Require().NoError(err)
		s.Require().Len(recs, 3)
		s.Equal("emp-7", recs[0].SubjectID)
		s.Equal("emp-7", recs[1].SubjectID)
		s.Equal("emp-8", recs[2].SubjectID)
	})

	s.Run("empty range", func() {
		recs, err := s.store.Range(ctx, "emp-9", "2026-03-02", "2026-03-06")
		s.NoError(err)
		s.Empty(recs)
	})
}
