package models

import (
	"fmt"
	"time"
)

// Day is a calendar day in the office timezone, formatted YYYY-MM-DD.
// Attendance records are keyed by (subject, day); the string form doubles as
// the storage key suffix.
type Day string

const dayLayout = "2006-01-02"

// NewDay truncates a timestamp to its calendar day in the given location.
func NewDay(t time.Time, loc *time.Location) Day {
	return Day(t.In(loc).Format(dayLayout))
}

// ParseDay validates a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(s), nil
}

// Time returns the day at midnight UTC. Invalid days return the zero time;
// days constructed through NewDay or ParseDay are always valid.
func (d Day) Time() time.Time {
	t, _ := time.Parse(dayLayout, string(d))
	return t
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	return Day(d.Time().AddDate(0, 0, 1).Format(dayLayout))
}

// Weekday returns the day of week.
func (d Day) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	return string(d) < string(other)
}

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool {
	return string(d) > string(other)
}

// Action is the presence action being attempted.
type Action string

const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

// Status classifies a check event relative to the office-hours window.
type Status string

const (
	StatusOnTime Status = "on-time"
	StatusLate   Status = "late"
	StatusEarly  Status = "early"
)

// CheckEvent is one check-in or check-out. Owned exclusively by its parent
// AttendanceRecord; once written its fields never change.
type CheckEvent struct {
	At         time.Time `json:"at"`
	Status     Status    `json:"status"`
	Matched    bool      `json:"matched"`
	Confidence float64   `json:"confidence"`
	Method     string    `json:"method"`
	Device     string    `json:"device,omitempty"`
}

// IsLate reports the lateness classification stored at write time.
func (e CheckEvent) IsLate() bool { return e.Status == StatusLate }

// IsEarly reports the earliness classification stored at write time.
func (e CheckEvent) IsEarly() bool { return e.Status == StatusEarly }

// AttendanceRecord is the one record per (subject, day). Created implicitly
// on first successful check-in, mutated exactly once more on check-out,
// never deleted here. Check slots are append-only: a later write to a
// populated slot is a no-op, not an overwrite.
type AttendanceRecord struct {
	SubjectID string      `json:"subject_id"`
	Date      Day         `json:"date"`
	CheckIn   *CheckEvent `json:"check_in,omitempty"`
	CheckOut  *CheckEvent `json:"check_out,omitempty"`

	// DurationMinutes is set with the check-out write, computed from the
	// stored check-in time.
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Key is the storage key for a (subject, day) pair.
func Key(subjectID string, day Day) string {
	return subjectID + "_" + string(day)
}
