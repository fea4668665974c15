package ciutil

import "strings"

// Environment variables naming the integration test backends.
const (
	EnvTestDatabaseURL   = "TASKBOARD_TEST_DATABASE_URL"
	EnvTestMongoURL      = "TASKBOARD_TEST_MONGO_URL"
	EnvTestNeo4jURL      = "TASKBOARD_TEST_NEO4J_URL"
	EnvTestNeo4jUser     = "TASKBOARD_TEST_NEO4J_USER"
	EnvTestNeo4jPassword = "TASKBOARD_TEST_NEO4J_PASSWORD"

	// EnvRequireIntegration makes a missing backend fail the test instead of skipping it.
	EnvRequireIntegration = "TASKBOARD_REQUIRE_INTEGRATION"
)

// MaskSensitiveValue hides the password of a connection URL and the middle
// of anything that looks like a token.
func MaskSensitiveValue(value string) string {
	if scheme, rest, ok := strings.Cut(value, "://"); ok {
		if userinfo, host, ok := strings.Cut(rest, "@"); ok {
			if user, _, ok := strings.Cut(userinfo, ":"); ok {
				return scheme + "://" + user + ":****@" + host
			}
		}
		return value
	}

	lower := strings.ToLower(value)
	if len(value) > 8 && (strings.Contains(lower, "key") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "secret")) {
		return value[:4] + "****" + value[len(value)-4:]
	}

	return value
}
