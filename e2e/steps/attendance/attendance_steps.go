package attendance

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	LastStatus() int
}

// RegisterSteps registers attendance step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &attendanceSteps{tc: tc}

	ctx.Step(`^I check in with image "([^"]*)"$`, steps.checkIn)
	ctx.Step(`^I check out with image "([^"]*)"$`, steps.checkOut)
	ctx.Step(`^I request today's attendance$`, steps.today)
	ctx.Step(`^the response status is (\d+)$`, steps.statusIs)
	ctx.Step(`^the response error is "([^"]*)"$`, steps.errorIs)
	ctx.Step(`^the record has a check-in$`, steps.hasCheckIn)
}

type attendanceSteps struct {
	tc TestContext
}

func (s *attendanceSteps) checkIn(ctx context.Context, image string) error {
	return s.tc.POST("/attendance/check-in", map[string]interface{}{
		"image": base64.StdEncoding.EncodeToString([]byte(image)),
	})
}

func (s *attendanceSteps) checkOut(ctx context.Context, image string) error {
	return s.tc.POST("/attendance/check-out", map[string]interface{}{
		"image": base64.StdEncoding.EncodeToString([]byte(image)),
	})
}

func (s *attendanceSteps) today(ctx context.Context) error {
	return s.tc.GET("/attendance/today", nil)
}

func (s *attendanceSteps) statusIs(ctx context.Context, status int) error {
	if s.tc.LastStatus() != status {
		return fmt.Errorf("expected status %d, got %d", status, s.tc.LastStatus())
	}
	return nil
}

func (s *attendanceSteps) errorIs(ctx context.Context, code string) error {
	got, err := s.tc.GetResponseField("error")
	if err != nil {
		return err
	}
	if got != code {
		return fmt.Errorf("expected error %q, got %v", code, got)
	}
	return nil
}

func (s *attendanceSteps) hasCheckIn(ctx context.Context) error {
	_, err := s.tc.GetResponseField("check_in")
	return err
}
