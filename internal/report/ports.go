package report

import (
	"context"

	"facegate/internal/attendance/models"
)

// LeaveSource reports a subject's approved leave days inside a range.
// Backed by an HR system in production; the static source covers
// deployments without one.
type LeaveSource interface {
	ApprovedLeave(ctx context.Context, subjectID string, from, to models.Day) ([]models.Day, error)
}

// HolidaySource reports company holidays inside a range.
type HolidaySource interface {
	Holidays(ctx context.Context, from, to models.Day) ([]models.Day, error)
}

// StaticLeaveSource serves leave days from a fixed map of subject to days.
type StaticLeaveSource struct {
	leave map[string][]models.Day
}

// NewStaticLeave creates a leave source over a fixed assignment.
func NewStaticLeave(leave map[string][]models.Day) *StaticLeaveSource {
	return &StaticLeaveSource{leave: leave}
}

func (s *StaticLeaveSource) ApprovedLeave(_ context.Context, subjectID string, from, to models.Day) ([]models.Day, error) {
	var out []models.Day
	for _, day := range s.leave[subjectID] {
		if !day.Before(from) && !day.After(to) {
			out = append(out, day)
		}
	}
	return out, nil
}

// StaticHolidaySource serves holidays from a fixed list.
type StaticHolidaySource struct {
	holidays []models.Day
}

// NewStaticHolidays creates a holiday source over a fixed list.
func NewStaticHolidays(holidays []models.Day) *StaticHolidaySource {
	return &StaticHolidaySource{holidays: holidays}
}

func (s *StaticHolidaySource) Holidays(_ context.Context, from, to models.Day) ([]models.Day, error) {
	var out []models.Day
	for _, day := range s.holidays {
		if !day.Before(from) && !day.After(to) {
			out = append(out, day)
		}
	}
	return out, nil
}
