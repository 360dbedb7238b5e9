// Package store persists attendance records. Check slots are written with
// conditional operations so concurrent attempts for the same (subject, day)
// collapse to a single winner; losers receive the stored record unchanged.
package store

import (
	"context"

	"facegate/internal/attendance/models"
)

// Store is the attendance record store. Implementations report conditional
// writes through the written flag: false means the slot was already
// populated and the returned record is the stored one.
//
// Get and Find return sentinel.ErrNotFound when no record exists.
// PutCheckOut returns sentinel.ErrInvalidState when no check-in exists for
// the (subject, day).
type Store interface {
	// Get returns the record for a subject on a day.
	Get(ctx context.Context, subjectID string, day models.Day) (models.AttendanceRecord, error)

	// Range returns one subject's records with from <= date <= to, ordered
	// by date ascending.
	Range(ctx context.Context, subjectID string, from, to models.Day) ([]models.AttendanceRecord, error)

	// List returns all subjects' records with from <= date <= to, ordered by
	// (date, subject) ascending.
	List(ctx context.Context, from, to models.Day) ([]models.AttendanceRecord, error)

	// PutCheckIn writes the check-in slot if it is empty, creating the record
	// as needed.
	PutCheckIn(ctx context.Context, subjectID string, day models.Day, event models.CheckEvent) (models.AttendanceRecord, bool, error)

	// PutCheckOut writes the check-out slot if it is empty and a check-in
	// exists, setting DurationMinutes from the stored check-in time.
	PutCheckOut(ctx context.Context, subjectID string, day models.Day, event models.CheckEvent) (models.AttendanceRecord, bool, error)
}
