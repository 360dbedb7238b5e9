package e2e

import (
	"github.com/cucumber/godog"

	"facegate/e2e/steps/attendance"
	"facegate/e2e/steps/station"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	station.RegisterSteps(ctx, tc)
	attendance.RegisterSteps(ctx, tc)
}
