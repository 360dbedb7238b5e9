package station

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GetResponseField(field string) (interface{}, error)
	LastStatus() int
	SetToken(token string)
}

// RegisterSteps registers station authentication step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &stationSteps{tc: tc}

	ctx.Step(`^station "([^"]*)" exchanges key "([^"]*)" for a token serving "([^"]*)"$`, steps.exchangeToken)
	ctx.Step(`^I save the station token$`, steps.saveToken)
}

type stationSteps struct {
	tc TestContext
}

func (s *stationSteps) exchangeToken(ctx context.Context, stationID, apiKey, subjectID string) error {
	return s.tc.POST("/auth/station-token", map[string]interface{}{
		"station_id": stationID,
		"api_key":    apiKey,
		"subject_id": subjectID,
	})
}

func (s *stationSteps) saveToken(ctx context.Context) error {
	if s.tc.LastStatus() != 200 {
		return fmt.Errorf("token exchange failed with status %d", s.tc.LastStatus())
	}
	token, err := s.tc.GetResponseField("token")
	if err != nil {
		return err
	}
	s.tc.SetToken(token.(string))
	return nil
}
