package testutil

import "testing"

// Given, When, and Then mark the phases of a test body in its log output.
// They are plain markers rather than nested subtests so suite assertions
// keep reporting against the test's own *testing.T.
func Given(t *testing.T, desc string) {
	t.Helper()
	t.Log("Given " + desc)
}

func When(t *testing.T, desc string) {
	t.Helper()
	t.Log("When " + desc)
}

func Then(t *testing.T, desc string) {
	t.Helper()
	t.Log("Then " + desc)
}
