package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"facegate/internal/attendance/models"
	"facegate/internal/platform/config"
)

type PolicySuite struct {
	suite.Suite
	window Window
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

func (s *PolicySuite) SetupTest() {
	var err error
	s.window, err = WindowFromConfig(config.OfficeHours{
		CheckInOpen:    "09:00",
		CheckInClose:   "10:00",
		CheckOutOpen:   "17:00",
		CheckOutClose:  "19:00",
		LateThreshold:  0,
		EarlyThreshold: 15 * time.Minute,
	})
	s.Require().NoError(err)
}

func at(hour, min, sec int) time.Time {
	return time.Date(2026, 3, 2, hour, min, sec, 0, time.UTC)
}

func (s *PolicySuite) TestCheckInWindow() {
	s.Run("exactly at open is allowed and on time", func() {
		d := Decide(models.ActionCheckIn, at(9, 0, 0), s.window)
		s.True(d.Allowed)
		s.False(d.LateOrEarly)
		s.Equal(models.StatusOnTime, d.Status(models.ActionCheckIn))
	})

	s.Run("one second past open is late with zero threshold", func() {
		d := Decide(models.ActionCheckIn, at(9, 0, 1), s.window)
		s.True(d.Allowed)
		s.True(d.LateOrEarly)
		s.Equal(models.StatusLate, d.Status(models.ActionCheckIn))
	})

	s.Run("exactly at close is still allowed", func() {
		d := Decide(models.ActionCheckIn, at(10, 0, 0), s.window)
		s.True(d.Allowed)
	})

	s.Run("one second past close is disallowed with violated boundary", func() {
		d := Decide(models.ActionCheckIn, at(10, 0, 1), s.window)
		s.False(d.Allowed)
		s.Require().NotNil(d.Violated)
		s.Equal("check-in-close", d.Violated.Boundary)
		s.Equal("10:00", d.Violated.At.String())
	})

	s.Run("before open is disallowed", func() {
		d := Decide(models.ActionCheckIn, at(8, 59, 59), s.window)
		s.False(d.Allowed)
		s.Require().NotNil(d.Violated)
		s.Equal("check-in-open", d.Violated.Boundary)
	})
}

func (s *PolicySuite) TestCheckInLateThreshold() {
	window := s.window
	window.LateThreshold = 15 * time.Minute

	s.Run("inside grace period is on time", func() {
		d := Decide(models.ActionCheckIn, at(9, 15, 0), window)
		s.True(d.Allowed)
		s.False(d.LateOrEarly)
	})

	s.Run("past grace period is late", func() {
		d := Decide(models.ActionCheckIn, at(9, 15, 1), window)
		s.True(d.Allowed)
		s.True(d.LateOrEarly)
	})
}

func (s *PolicySuite) TestCheckOutWindow() {
	s.Run("before open is disallowed", func() {
		d := Decide(models.ActionCheckOut, at(16, 59, 59), s.window)
		s.False(d.Allowed)
		s.Require().NotNil(d.Violated)
		s.Equal("check-out-open", d.Violated.Boundary)
	})

	s.Run("within early threshold is early", func() {
		d := Decide(models.ActionCheckOut, at(17, 10, 0), s.window)
		s.True(d.Allowed)
		s.True(d.LateOrEarly)
		s.Equal(models.StatusEarly, d.Status(models.ActionCheckOut))
	})

	s.Run("past early threshold is on time", func() {
		d := Decide(models.ActionCheckOut, at(17, 15, 0), s.window)
		s.True(d.Allowed)
		s.False(d.LateOrEarly)
	})

	s.Run("past close is disallowed", func() {
		d := Decide(models.ActionCheckOut, at(19, 0, 1), s.window)
		s.False(d.Allowed)
		s.Require().NotNil(d.Violated)
		s.Equal("check-out-close", d.Violated.Boundary)
	})
}

func (s *PolicySuite) TestBypass() {
	window := s.window
	window.Bypass = true

	s.Run("any time is allowed", func() {
		d := Decide(models.ActionCheckIn, at(3, 0, 0), window)
		s.True(d.Allowed)
	})

	s.Run("lateness is never reported", func() {
		d := Decide(models.ActionCheckIn, at(23, 59, 0), window)
		s.True(d.Allowed)
		s.False(d.LateOrEarly)
	})
}

func (s *PolicySuite) TestWindowFromConfig() {
	s.Run("rejects malformed boundary", func() {
		_, err := WindowFromConfig(config.OfficeHours{
			CheckInOpen:   "9am",
			CheckInClose:  "10:00",
			CheckOutOpen:  "17:00",
			CheckOutClose: "19:00",
		})
		s.Error(err)
	})
}
