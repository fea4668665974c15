// Package config loads and validates service configuration from .env files,
// an optional config.yaml and TASKBOARD_* environment variables.
package config
