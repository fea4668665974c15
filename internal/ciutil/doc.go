// Package ciutil locates the external backends used by integration tests
// and decides whether a missing one skips or fails the test run.
package ciutil
