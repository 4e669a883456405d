package tutil

import (
	"os"
	"strings"
	"testing"
)

// IsIntegrationTest reports whether ODE_TEST=integration is set. Tests that need a
// real database or network services only run then.
func IsIntegrationTest() bool {
	testType := os.Getenv("ODE_TEST")
	return strings.ToLower(testType) == "integration"
}

func SkipUnlessIntegration(t *testing.T) {
	t.Helper()
	if !IsIntegrationTest() {
		t.Skip("set ODE_TEST=integration to run")
	}
}
