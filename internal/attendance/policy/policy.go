// Package policy implements the office-hours window decision. Decide is a
// pure function: the caller supplies the clock, so the same inputs always
// produce the same decision.
package policy

import (
	"fmt"
	"time"

	"facegate/internal/attendance/models"
	"facegate/internal/platform/config"
)

// Clock is a time of day as minutes since midnight.
type Clock time.Duration

// ParseClock parses an "HH:MM" boundary.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return Clock(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

func (c Clock) String() string {
	d := time.Duration(c)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// Window holds the four office-hours boundaries plus classification
// thresholds. Bypass disables window checks entirely; it is wired explicitly
// from configuration so test and production builds differ by wiring, not by
// hidden conditionals.
type Window struct {
	CheckInOpen   Clock
	CheckInClose  Clock
	CheckOutOpen  Clock
	CheckOutClose Clock

	LateThreshold  time.Duration
	EarlyThreshold time.Duration

	Bypass bool
}

// WindowFromConfig parses the configured boundaries.
func WindowFromConfig(cfg config.OfficeHours) (Window, error) {
	w := Window{
		LateThreshold:  cfg.LateThreshold,
		EarlyThreshold: cfg.EarlyThreshold,
		Bypass:         cfg.Bypass,
	}
	var err error
	if w.CheckInOpen, err = ParseClock(cfg.CheckInOpen); err != nil {
		return Window{}, err
	}
	if w.CheckInClose, err = ParseClock(cfg.CheckInClose); err != nil {
		return Window{}, err
	}
	if w.CheckOutOpen, err = ParseClock(cfg.CheckOutOpen); err != nil {
		return Window{}, err
	}
	if w.CheckOutClose, err = ParseClock(cfg.CheckOutClose); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Violation names the boundary a disallowed attempt fell outside of, for the
// caller to render.
type Violation struct {
	Boundary string
	At       Clock
}

// Decision is the policy outcome. LateOrEarly means late for check-in and
// early for check-out, computed once here and stored immutably on the event.
type Decision struct {
	Allowed     bool
	LateOrEarly bool
	Violated    *Violation
}

// Status maps the decision onto the stored event classification.
func (d Decision) Status(action models.Action) models.Status {
	if !d.LateOrEarly {
		return models.StatusOnTime
	}
	if action == models.ActionCheckOut {
		return models.StatusEarly
	}
	return models.StatusLate
}

// Decide evaluates whether the action is legal at the given instant and how
// it classifies. Boundaries are inclusive on both ends; lateness is strictly
// past open+threshold and earliness strictly before open+threshold.
func Decide(action models.Action, now time.Time, w Window) Decision {
	if w.Bypass {
		return Decision{Allowed: true}
	}

	tod := timeOfDay(now)

	switch action {
	case models.ActionCheckOut:
		if tod < time.Duration(w.CheckOutOpen) {
			return Decision{Violated: &Violation{Boundary: "check-out-open", At: w.CheckOutOpen}}
		}
		if tod > time.Duration(w.CheckOutClose) {
			return Decision{Violated: &Violation{Boundary: "check-out-close", At: w.CheckOutClose}}
		}
		return Decision{
			Allowed:     true,
			LateOrEarly: tod < time.Duration(w.CheckOutOpen)+w.EarlyThreshold,
		}
	default:
		if tod < time.Duration(w.CheckInOpen) {
			return Decision{Violated: &Violation{Boundary: "check-in-open", At: w.CheckInOpen}}
		}
		if tod > time.Duration(w.CheckInClose) {
			return Decision{Violated: &Violation{Boundary: "check-in-close", At: w.CheckInClose}}
		}
		return Decision{
			Allowed:     true,
			LateOrEarly: tod > time.Duration(w.CheckInOpen)+w.LateThreshold,
		}
	}
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
