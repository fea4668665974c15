package ciutil

import (
	"os"
	"strconv"
	"testing"
)

// RequireEnv returns the value of the environment variable naming an
// integration backend. When it is unset the test is skipped, or failed
// when TASKBOARD_REQUIRE_INTEGRATION is true.
func RequireEnv(t testing.TB, name string) string {
	t.Helper()

	value := os.Getenv(name)
	if value != "" {
		t.Logf("using %s=%s", name, MaskSensitiveValue(value))
		return value
	}

	if required() {
		t.Fatalf("%s must be set when %s is true", name, EnvRequireIntegration)
	}
	t.Skipf("%s not set", name)
	return ""
}

func required() bool {
	v, err := strconv.ParseBool(os.Getenv(EnvRequireIntegration))
	return err == nil && v
}
