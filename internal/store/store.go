package store

import "context"

// Store bundles the entity stores of one backend.
type Store interface {
	Tasks() TaskStore
	Users() UserStore
	Notifications() NotificationStore

	// InTx runs fn against a Store whose operations share one unit of work.
	// SQL backends run fn inside a database transaction and roll back when it
	// returns an error. Backends without multi-entity transactions call fn
	// with the receiver, so its operations apply one after another.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's connections.
	Close() error
}
