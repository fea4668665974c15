// Package sqlite is the SQLite store backend, built on the pure Go
// modernc.org/sqlite driver. It suits local development and runs the store
// contract tests without any external service.
package sqlite
