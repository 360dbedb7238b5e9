package testutil_test

import (
	"testing"

	"facegate/pkg/testutil"
)

func TestStepMarkers(t *testing.T) {
	testutil.Given(t, "a subject standing at a station")
	testutil.When(t, "the step markers run")
	testutil.Then(t, "the test body continues on the same *testing.T")

	if t.Name() != "TestStepMarkers" {
		t.Fatalf("markers must not spawn subtests, got %s", t.Name())
	}
}
