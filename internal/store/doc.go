// Package store defines the persistence interfaces for tasks, users and
// notifications. Backends live under internal/platform and translate their
// driver errors onto the sentinels declared here, so services never see a
// database-specific error.
package store
